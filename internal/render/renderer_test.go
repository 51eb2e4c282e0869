package render

import (
	"strings"
	"testing"
	"time"

	"github.com/carelane/printcore/internal/canonical"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
}

func testRenderer() *Renderer {
	cfg := DefaultConfig()
	cfg.Clock = fixedClock
	return New(cfg)
}

func TestDocumentIsDeterministic(t *testing.T) {
	r := testRenderer()
	doc := canonical.ClinicalDocument{
		PrescribedBy:   "Dr. Rao",
		PrescribedDate: "2024-03-10",
		Medications: []canonical.Medication{
			{Name: "Folitrax", DosageText: "15mg weekly", Duration: "12 weeks", Instruction: "after food"},
		},
		Tests: []canonical.TestItem{{Name: "RAFU", Instruction: "—"}},
	}
	center := canonical.CenterInfo{Name: "CareLane Clinic"}

	first := r.Document(doc, center, "John Doe, 34/M")
	for i := 0; i < 5; i++ {
		if again := r.Document(doc, center, "John Doe, 34/M"); again != first {
			t.Fatal("same inputs produced different markup")
		}
	}
}

func TestDocumentContent(t *testing.T) {
	r := testRenderer()
	doc := canonical.ClinicalDocument{
		PrescribedBy:   "Dr. Rao",
		PrescribedDate: "2024-03-10",
		Medications: []canonical.Medication{
			{Name: "Folitrax", DosageText: "15mg weekly", Duration: "12 weeks", Instruction: "—"},
		},
		Tests:     []canonical.TestItem{{Name: "RAFU", Instruction: "—"}},
		Diagnosis: "RA",
	}
	out := r.Document(doc, canonical.CenterInfo{Name: "CareLane Clinic"}, "John Doe")

	for _, want := range []string{
		"<h1>CareLane Clinic</h1>",
		"<td>Folitrax</td><td>15mg weekly</td><td>12 weeks</td>",
		"<td>RAFU</td>",
		"Prescribed by: Dr. Rao",
		"Date: 10 Mar 2024",
		"Diagnosis: RA",
		`<span id="printed-on">Printed on 15 Mar 2024 10:30</span>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markup missing %q", want)
		}
	}
}

func TestEmptyTablesGetPlaceholderRows(t *testing.T) {
	r := testRenderer()
	out := r.Document(canonical.ClinicalDocument{}, canonical.CenterInfo{}, "")

	if !strings.Contains(out, NoMedicinesRow) {
		t.Error("empty medication table missing placeholder row")
	}
	if !strings.Contains(out, NoTestsRow) {
		t.Error("empty test table missing placeholder row")
	}
}

func TestMissingFieldsRenderPlaceholder(t *testing.T) {
	r := testRenderer()
	out := r.Document(canonical.ClinicalDocument{
		Medications: []canonical.Medication{{Name: "Folitrax"}},
	}, canonical.CenterInfo{}, "")

	// Blank dosage, duration and instruction cells all show the placeholder.
	if !strings.Contains(out, "<td>Folitrax</td><td>—</td><td>—</td><td>—</td>") {
		t.Error("blank medication cells do not render the placeholder")
	}
	if !strings.Contains(out, "Follow-up: —") {
		t.Error("missing follow-up does not render the placeholder")
	}
}

func TestFollowUpPrecedence(t *testing.T) {
	r := testRenderer()

	// Own instruction wins over derived ones.
	out := r.Document(canonical.ClinicalDocument{
		FollowUpInstruction: "review in 4 weeks",
		DerivedInstructions: []string{"fasting"},
	}, canonical.CenterInfo{}, "")
	if !strings.Contains(out, "Follow-up: review in 4 weeks") {
		t.Error("own follow-up instruction did not win")
	}

	// Derived instructions joined when own is absent.
	out = r.Document(canonical.ClinicalDocument{
		DerivedInstructions: []string{"fasting", "morning sample"},
	}, canonical.CenterInfo{}, "")
	if !strings.Contains(out, "Follow-up: fasting\nmorning sample") {
		t.Error("derived instructions not joined into follow-up")
	}
}

func TestPatientSummaryArgumentWins(t *testing.T) {
	r := testRenderer()
	doc := canonical.ClinicalDocument{PatientSummary: "from document"}

	out := r.Document(doc, canonical.CenterInfo{}, "from caller")
	if !strings.Contains(out, "from caller") {
		t.Error("caller-provided patient summary not used")
	}

	out = r.Document(doc, canonical.CenterInfo{}, "  ")
	if !strings.Contains(out, "from document") {
		t.Error("blank caller summary should fall back to the document's")
	}
}

func TestDateLayouts(t *testing.T) {
	r := testRenderer()
	cases := []struct {
		in, want string
	}{
		{"2024-03-10", "10 Mar 2024"},
		{"2024-03-10T08:00:00Z", "10 Mar 2024"},
		{"2024-03-10T08:00:00.000Z", "10 Mar 2024"},
		{"10/03/2024", "10 Mar 2024"},
		{"", "—"},
		{"next tuesday", "next tuesday"},
	}
	for _, tc := range cases {
		if got := r.date(tc.in); got != tc.want {
			t.Errorf("date(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMarkupEscapesValues(t *testing.T) {
	r := testRenderer()
	out := r.Document(canonical.ClinicalDocument{
		PrescribedBy: `<script>alert("x")</script>`,
	}, canonical.CenterInfo{}, "")

	if strings.Contains(out, "<script>") {
		t.Error("unescaped markup in output")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Error("escaped value missing from output")
	}
}
