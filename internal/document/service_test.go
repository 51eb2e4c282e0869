package document

import (
	"strings"
	"testing"
	"time"

	"github.com/carelane/printcore/internal/canonical"
	"github.com/carelane/printcore/internal/render"
)

func testService() *Service {
	cfg := render.DefaultConfig()
	cfg.Clock = func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) }
	defaults := canonical.CenterInfo{Name: "CareLane Clinic", Phone: "000-1111"}
	return NewService(render.New(cfg), defaults, nil, nil)
}

func TestNormalizeAndRenderFullPrescription(t *testing.T) {
	svc := testService()

	prescription := map[string]any{
		"patientId":   "P1",
		"doctorName":  "Dr. Rao",
		"date":        "2024-03-10",
		"diagnosis":   "RA",
		"medications": []any{
			map[string]any{"drugName": "Folitrax", "dose": "15mg", "frequency": "weekly", "duration": "12 weeks"},
		},
	}
	pool := []any{
		map[string]any{"patientId": "P1", "testType": "RAFU"},
	}

	doc, fellBack := svc.NormalizeDocument(prescription, pool)
	if fellBack {
		t.Error("patient match should not flag full-pool fallback")
	}
	if len(doc.Medications) != 1 || doc.Medications[0].Name != "Folitrax" {
		t.Fatalf("Medications = %+v", doc.Medications)
	}
	if doc.Medications[0].DosageText != "15mg weekly" {
		t.Errorf("DosageText = %q", doc.Medications[0].DosageText)
	}
	if len(doc.Tests) != 1 || doc.Tests[0].Name != "RAFU" || doc.Tests[0].Instruction != canonical.Placeholder {
		t.Fatalf("Tests = %+v, want one RAFU row with placeholder instruction", doc.Tests)
	}

	markup := svc.RenderDocument(doc, nil, "John Doe, 34/M")
	for _, want := range []string{
		"CareLane Clinic",
		"<td>Folitrax</td><td>15mg weekly</td><td>12 weeks</td>",
		"<td>RAFU</td><td>—</td>",
		"John Doe, 34/M",
	} {
		if !strings.Contains(markup, want) {
			t.Errorf("markup missing %q", want)
		}
	}
}

func TestNormalizeEmptyInputsStillRenders(t *testing.T) {
	svc := testService()

	doc, fellBack := svc.NormalizeDocument(map[string]any{}, nil)
	if fellBack {
		t.Error("empty inputs should not flag fallback")
	}
	if len(doc.Medications) != 0 || len(doc.Tests) != 0 {
		t.Errorf("doc = %+v, want empty tables", doc)
	}

	markup := svc.RenderDocument(doc, nil, "")
	if !strings.Contains(markup, render.NoMedicinesRow) {
		t.Error("markup missing empty-medications row")
	}
	if !strings.Contains(markup, render.NoTestsRow) {
		t.Error("markup missing empty-tests row")
	}
}

func TestOwnTestListWinsOverCorrelation(t *testing.T) {
	svc := testService()

	prescription := map[string]any{
		"patientId": "P1",
		"tests":     []any{map[string]any{"testName": "CBC"}},
	}
	pool := []any{map[string]any{"patientId": "P1", "testType": "RAFU"}}

	doc, _ := svc.NormalizeDocument(prescription, pool)
	if len(doc.Tests) != 1 || doc.Tests[0].Name != "CBC" {
		t.Errorf("Tests = %+v, the prescription's own list must win", doc.Tests)
	}
}

func TestDerivedInstructionsFlowIntoFollowUp(t *testing.T) {
	svc := testService()

	prescription := map[string]any{"patientId": "P1"}
	pool := []any{
		map[string]any{"patientId": "P1", "testType": "RAFU", "testDescription": "review in 2 weeks"},
	}

	doc, _ := svc.NormalizeDocument(prescription, pool)
	if len(doc.DerivedInstructions) != 1 || doc.DerivedInstructions[0] != "review in 2 weeks" {
		t.Fatalf("DerivedInstructions = %v", doc.DerivedInstructions)
	}

	markup := svc.RenderDocument(doc, nil, "")
	if !strings.Contains(markup, "Follow-up: review in 2 weeks") {
		t.Error("derived instruction did not reach the follow-up block")
	}
}

func TestRenderUsesCenterRecordOverDefaults(t *testing.T) {
	svc := testService()
	doc, _ := svc.NormalizeDocument(map[string]any{}, nil)

	markup := svc.RenderDocument(doc, map[string]any{"centerName": "Branch Lab"}, "")
	if !strings.Contains(markup, "Branch Lab") {
		t.Error("center record name not used")
	}
	if !strings.Contains(markup, "000-1111") {
		t.Error("missing center fields should fall back to defaults")
	}
}

func TestPruneEmptyMedications(t *testing.T) {
	meds := []canonical.Medication{
		{Name: "Folitrax", DosageText: "—", Duration: "—", Instruction: "—"},
		{Name: "—", DosageText: "—", Duration: "—", Instruction: "—"},
	}
	pruned := PruneEmptyMedications(meds)
	if len(pruned) != 1 || pruned[0].Name != "Folitrax" {
		t.Errorf("pruned = %+v", pruned)
	}
}
