// Package render generates print-ready markup from a canonical clinical
// document. The layout is a stable structure, not a layout engine: the same
// inputs always produce the same bytes, so the on-screen view and the print
// pipeline can never disagree.
package render

import (
	"html"
	"strings"
	"time"

	"github.com/carelane/printcore/internal/canonical"
)

// Config holds renderer configuration. The clock is injected so the
// printed-on timestamp, the only wall-clock-dependent field, stays isolated
// and maskable in tests.
type Config struct {
	// DateFormat is the locale-stable layout for all rendered dates.
	DateFormat string
	// Clock supplies the printed-on timestamp.
	Clock func() time.Time
}

// DefaultConfig returns the standard print layout settings.
func DefaultConfig() Config {
	return Config{
		DateFormat: "02 Jan 2006",
		Clock:      time.Now,
	}
}

// Renderer produces the printable document markup.
type Renderer struct {
	cfg Config
}

// New creates a renderer, filling unset config fields with defaults.
func New(cfg Config) *Renderer {
	if cfg.DateFormat == "" {
		cfg.DateFormat = DefaultConfig().DateFormat
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Renderer{cfg: cfg}
}

// Empty-table placeholder rows. A table is never silently absent.
const (
	NoMedicinesRow = "No medicines added."
	NoTestsRow     = "No tests prescribed."
)

// Document renders the full printable markup: letterhead header, patient
// row, medication table, test table, follow-up/remarks block, signing
// block. Apart from the printed-on span the output is a pure function of
// its inputs.
func (r *Renderer) Document(doc canonical.ClinicalDocument, center canonical.CenterInfo, patientSummary string) string {
	if strings.TrimSpace(patientSummary) == "" {
		patientSummary = doc.PatientSummary
	}

	var b strings.Builder
	b.WriteString(`<div class="clinical-document">`)

	r.writeHeader(&b, center)
	r.writePatientRow(&b, doc, patientSummary)
	r.writeMedications(&b, doc.Medications)
	r.writeTests(&b, doc.Tests)
	r.writeFollowUp(&b, doc)
	r.writeSigningBlock(&b, doc)

	b.WriteString(`</div>`)
	return b.String()
}

func (r *Renderer) writeHeader(b *strings.Builder, center canonical.CenterInfo) {
	b.WriteString(`<header class="letterhead">`)
	if center.LogoRef != "" {
		b.WriteString(`<img class="center-logo" src="` + html.EscapeString(center.LogoRef) + `" alt=""/>`)
	}
	b.WriteString(`<h1>` + esc(center.Name) + `</h1>`)
	b.WriteString(`<h2>` + esc(center.SubTitle) + `</h2>`)
	b.WriteString(`<p class="center-address">` + esc(center.Address) + `</p>`)
	b.WriteString(`<p class="center-contact">Phone: ` + esc(center.Phone) +
		` | Fax: ` + esc(center.Fax) +
		` | Email: ` + esc(center.Email) + `</p>`)
	b.WriteString(`<p class="center-web">` + esc(center.Website) +
		` | Lab: ` + esc(center.LabWebsite) +
		` | Missed call: ` + esc(center.MissCallNumber) +
		` | Appointments: ` + esc(center.AppointmentNumber) + `</p>`)
	b.WriteString(`</header>`)
}

func (r *Renderer) writePatientRow(b *strings.Builder, doc canonical.ClinicalDocument, patientSummary string) {
	b.WriteString(`<section class="patient-row">`)
	b.WriteString(`<span class="patient-summary">` + esc(patientSummary) + `</span>`)
	b.WriteString(`<span class="prescribed-by">Prescribed by: ` + esc(doc.PrescribedBy) + `</span>`)
	b.WriteString(`<span class="prescribed-date">Date: ` + esc(r.date(doc.PrescribedDate)) + `</span>`)
	b.WriteString(`</section>`)
}

func (r *Renderer) writeMedications(b *strings.Builder, meds []canonical.Medication) {
	b.WriteString(`<table class="medications"><thead><tr>` +
		`<th>Medicine</th><th>Dosage</th><th>Duration</th><th>Instructions</th>` +
		`</tr></thead><tbody>`)
	if len(meds) == 0 {
		b.WriteString(`<tr><td colspan="4" class="empty-row">` + NoMedicinesRow + `</td></tr>`)
	}
	for _, m := range meds {
		b.WriteString(`<tr><td>` + esc(m.Name) + `</td><td>` + esc(m.DosageText) +
			`</td><td>` + esc(m.Duration) + `</td><td>` + esc(m.Instruction) + `</td></tr>`)
	}
	b.WriteString(`</tbody></table>`)
}

func (r *Renderer) writeTests(b *strings.Builder, tests []canonical.TestItem) {
	b.WriteString(`<table class="tests"><thead><tr>` +
		`<th>Test</th><th>Instructions</th>` +
		`</tr></thead><tbody>`)
	if len(tests) == 0 {
		b.WriteString(`<tr><td colspan="2" class="empty-row">` + NoTestsRow + `</td></tr>`)
	}
	for _, t := range tests {
		b.WriteString(`<tr><td>` + esc(t.Name) + `</td><td>` + esc(t.Instruction) + `</td></tr>`)
	}
	b.WriteString(`</tbody></table>`)
}

func (r *Renderer) writeFollowUp(b *strings.Builder, doc canonical.ClinicalDocument) {
	followUp := strings.TrimSpace(doc.FollowUpInstruction)
	if followUp == "" {
		followUp = strings.Join(doc.DerivedInstructions, "\n")
	}
	if followUp == "" {
		followUp = canonical.Placeholder
	}

	b.WriteString(`<section class="notes">`)
	b.WriteString(`<p class="diagnosis">Diagnosis: ` + esc(doc.Diagnosis) + `</p>`)
	b.WriteString(`<p class="follow-up">Follow-up: ` + esc(followUp) + `</p>`)
	b.WriteString(`<p class="remarks">Remarks: ` + esc(doc.Remarks) + `</p>`)
	b.WriteString(`</section>`)
}

func (r *Renderer) writeSigningBlock(b *strings.Builder, doc canonical.ClinicalDocument) {
	b.WriteString(`<footer class="signing-block">`)
	b.WriteString(`<p class="prepared-by">Prepared by: ` + esc(doc.PreparedBy))
	if strings.TrimSpace(doc.PreparedByCredentials) != "" {
		b.WriteString(`, ` + esc(doc.PreparedByCredentials))
	}
	b.WriteString(`</p>`)
	b.WriteString(`<p class="council-number">Medical council no.: ` + esc(doc.MedicalCouncilNumber) + `</p>`)
	b.WriteString(`<p class="printed-by">Printed by: ` + esc(doc.PrintedBy) + `</p>`)
	b.WriteString(`<p class="generated-at">Report generated: ` + esc(r.date(doc.ReportGeneratedAt)) + `</p>`)
	// The single wall-clock-dependent node in the whole document.
	b.WriteString(`<span id="printed-on">Printed on ` +
		r.cfg.Clock().Format(r.cfg.DateFormat+" 15:04") + `</span>`)
	b.WriteString(`</footer>`)
}

// date renders a source date string in the configured layout. Unparsable
// values pass through as-is; a missing date is never an empty cell.
func (r *Renderer) date(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return canonical.Placeholder
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(r.cfg.DateFormat)
		}
	}
	return raw
}

// esc escapes a value for markup, substituting the placeholder for blanks
// so table cells are never empty.
func esc(s string) string {
	if strings.TrimSpace(s) == "" {
		s = canonical.Placeholder
	}
	return html.EscapeString(s)
}
