package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/carelane/printcore/internal/domain/document"
)

func preparedAggregate(t *testing.T) *document.Aggregate {
	t.Helper()
	canonical, _ := json.Marshal(map[string]any{"prescribedBy": "Dr. Rao"})
	agg := document.NewAggregate("doc-1")
	err := agg.Prepare(&document.DocumentPreparedData{
		DocumentID:   "doc-1",
		PatientID:    "P1",
		PrescribedBy: "Dr. Rao",
		Canonical:    canonical,
		PreparedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	return agg
}

func TestAdvanceToPrintedRendersPreparedDocument(t *testing.T) {
	agg := preparedAggregate(t)

	if err := advanceToPrinted(agg, 4096, "nurse-7"); err != nil {
		t.Fatalf("advanceToPrinted: %v", err)
	}
	if agg.Status() != document.StatusPrinted {
		t.Errorf("Status = %s, want printed", agg.Status())
	}

	// The render must be on the record, not skipped over.
	var sawRendered bool
	for _, ev := range agg.Changes() {
		if ev.EventType == document.EventDocumentRendered {
			sawRendered = true
		}
	}
	if !sawRendered {
		t.Error("printing a prepared document must record the render")
	}
}

func TestAdvanceToPrintedAlreadyRendered(t *testing.T) {
	agg := preparedAggregate(t)
	if err := agg.MarkRendered(2048); err != nil {
		t.Fatalf("MarkRendered: %v", err)
	}
	before := agg.Version()

	if err := advanceToPrinted(agg, 2048, "nurse-7"); err != nil {
		t.Fatalf("advanceToPrinted: %v", err)
	}
	if agg.Status() != document.StatusPrinted {
		t.Errorf("Status = %s, want printed", agg.Status())
	}
	if agg.Version() != before+1 {
		t.Errorf("Version = %d, want %d (no second render event)", agg.Version(), before+1)
	}
}

func TestAdvanceToPrintedRejectsDraft(t *testing.T) {
	agg := document.NewAggregate("doc-1")
	if err := advanceToPrinted(agg, 100, "nurse-7"); err == nil {
		t.Error("draft document must not be printable")
	}
}
