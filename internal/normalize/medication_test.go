package normalize

import (
	"testing"

	"github.com/carelane/printcore/internal/canonical"
)

func TestMedicationAllFieldsMissing(t *testing.T) {
	med := Medication(map[string]any{})
	want := canonical.Medication{
		Name:        canonical.Placeholder,
		DosageText:  canonical.Placeholder,
		Duration:    canonical.Placeholder,
		Instruction: canonical.Placeholder,
	}
	if med != want {
		t.Errorf("Medication(empty record) = %+v, want all placeholders", med)
	}
	if !med.IsEmpty() {
		t.Error("all-placeholder medication should report IsEmpty")
	}
}

func TestMedicationNonRecordInput(t *testing.T) {
	med := Medication("not a record")
	if med.Name != canonical.Placeholder || med.DosageText != canonical.Placeholder {
		t.Errorf("Medication(scalar) = %+v, want all placeholders", med)
	}
}

func TestMedicationDosageJoinsDoseAndFrequency(t *testing.T) {
	med := Medication(map[string]any{
		"drugName":  "Folitrax",
		"dose":      "15mg",
		"frequency": "weekly",
		"duration":  "12 weeks",
	})
	if med.Name != "Folitrax" {
		t.Errorf("Name = %q", med.Name)
	}
	if med.DosageText != "15mg weekly" {
		t.Errorf("DosageText = %q, want %q", med.DosageText, "15mg weekly")
	}
	if med.Duration != "12 weeks" {
		t.Errorf("Duration = %q", med.Duration)
	}
}

func TestMedicationDosagePartial(t *testing.T) {
	// Only one side present; no stray space in the join.
	med := Medication(map[string]any{"dosage": "5ml"})
	if med.DosageText != "5ml" {
		t.Errorf("DosageText = %q, want %q", med.DosageText, "5ml")
	}

	med = Medication(map[string]any{"medicineFrequency": "twice daily"})
	if med.DosageText != "twice daily" {
		t.Errorf("DosageText = %q, want %q", med.DosageText, "twice daily")
	}
}

func TestMedicationLegacyAliases(t *testing.T) {
	med := Medication(map[string]any{
		"medicine":         "Paracetamol",
		"medicineDose":     "500mg",
		"medicineDuration": "5 days",
		"instructions":     "after food",
	})
	if med.Name != "Paracetamol" || med.DosageText != "500mg" || med.Duration != "5 days" || med.Instruction != "after food" {
		t.Errorf("legacy aliases not resolved: %+v", med)
	}
}

func TestMedicationsSingleRecord(t *testing.T) {
	meds := Medications(map[string]any{
		"drugName":  "Folitrax",
		"dose":      "15mg",
		"frequency": "weekly",
	})
	if len(meds) != 1 {
		t.Fatalf("len = %d, want 1 (a record with medication fields is one entry)", len(meds))
	}
	if meds[0].Name != "Folitrax" || meds[0].DosageText != "15mg weekly" {
		t.Errorf("meds[0] = %+v", meds[0])
	}
}

func TestMedicationsKeyedContainer(t *testing.T) {
	meds := Medications(map[string]any{
		"m1": map[string]any{"drugName": "A"},
		"m2": map[string]any{"drugName": "B"},
	})
	if len(meds) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(meds), meds)
	}
	if meds[0].Name != "A" || meds[1].Name != "B" {
		t.Errorf("keyed container not in sorted key order: %+v", meds)
	}
}

func TestMedicationsPreservesLengthAndOrder(t *testing.T) {
	meds := Medications([]any{
		map[string]any{"drugName": "A"},
		"garbage",
		map[string]any{"drugName": "B"},
	})
	if len(meds) != 3 {
		t.Fatalf("len = %d, want 3 (one row per input element)", len(meds))
	}
	if meds[0].Name != "A" || meds[2].Name != "B" {
		t.Errorf("order not preserved: %+v", meds)
	}
	if meds[1].Name != canonical.Placeholder {
		t.Errorf("malformed element should degrade to placeholder row, got %+v", meds[1])
	}
}
