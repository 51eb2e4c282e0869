// Package canonical defines the normalized clinical document model.
// Every source path (doctor authoring, lab intake, legacy imports, drafts)
// is reconciled into these shapes before rendering.
package canonical

import "strings"

// Placeholder is the value rendered whenever a field cannot be resolved
// from any known alias. Tables are never sparse; missing data shows as "—".
const Placeholder = "—"

// Medication is one row of the prescription's medication table.
type Medication struct {
	Name        string `json:"name"`
	DosageText  string `json:"dosageText"`
	Duration    string `json:"duration"`
	Instruction string `json:"instruction"`
}

// IsEmpty reports whether the medication carries no data at all, i.e. every
// field is the placeholder or blank. Empty rows are dropped only at
// form-submission validation, never during normalization or rendering.
func (m Medication) IsEmpty() bool {
	return isBlank(m.Name) && isBlank(m.DosageText) && isBlank(m.Duration) && isBlank(m.Instruction)
}

// TestItem is one row of the prescribed-tests table.
type TestItem struct {
	Name        string `json:"name"`
	Instruction string `json:"instruction"`
}

// CenterInfo holds the issuing center's letterhead fields. Every field falls
// back independently to a static default; resolution is per-field, never
// per-record.
type CenterInfo struct {
	Name              string `json:"name"`
	SubTitle          string `json:"subTitle"`
	Address           string `json:"address"`
	Phone             string `json:"phone"`
	Fax               string `json:"fax"`
	Email             string `json:"email"`
	Website           string `json:"website"`
	LabWebsite        string `json:"labWebsite"`
	MissCallNumber    string `json:"missCallNumber"`
	AppointmentNumber string `json:"appointmentNumber"`
	Code              string `json:"code"`
	LogoRef           string `json:"logoRef"`
}

// ClinicalDocument is the canonical, shape-stable representation of a
// prescription ready for rendering.
type ClinicalDocument struct {
	PatientSummary        string       `json:"patientSummary"`
	PrescribedBy          string       `json:"prescribedBy"`
	PreparedBy            string       `json:"preparedBy"`
	PreparedByCredentials string       `json:"preparedByCredentials"`
	MedicalCouncilNumber  string       `json:"medicalCouncilNumber"`
	PrintedBy             string       `json:"printedBy"`
	PrescribedDate        string       `json:"prescribedDate"`
	ReportGeneratedAt     string       `json:"reportGeneratedAt"`
	Medications           []Medication `json:"medications"`
	Tests                 []TestItem   `json:"tests"`
	FollowUpInstruction   string       `json:"followUpInstruction"`
	Remarks               string       `json:"remarks"`
	Diagnosis             string       `json:"diagnosis"`

	// DerivedInstructions holds the correlator's distinct per-request
	// instructions, used when FollowUpInstruction itself is empty.
	DerivedInstructions []string `json:"derivedInstructions,omitempty"`
}

// AttachmentReference is a loosely-typed pointer to a stored clinical file.
// It may arrive as a structured object or be promoted from a bare string.
type AttachmentReference struct {
	DocumentID   string `json:"documentId,omitempty"`
	Filename     string `json:"filename,omitempty"`
	OriginalName string `json:"originalName,omitempty"`
	Path         string `json:"path,omitempty"`
	Size         int64  `json:"size,omitempty"`
}

// IsResolvable reports whether the reference carries at least one of the
// fields a locator can be built from. References failing this check are
// discarded before reaching the resolver.
func (r AttachmentReference) IsResolvable() bool {
	return !isBlank(r.DocumentID) || !isBlank(r.Filename) || !isBlank(r.Path)
}

func isBlank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == Placeholder
}
