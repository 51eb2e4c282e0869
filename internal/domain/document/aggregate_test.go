package document

import (
	"encoding/json"
	"testing"
	"time"
)

func preparedData(id string) *DocumentPreparedData {
	canonical, _ := json.Marshal(map[string]any{"prescribedBy": "Dr. Rao"})
	return &DocumentPreparedData{
		DocumentID:      id,
		PatientID:       "P1",
		PrescribedBy:    "Dr. Rao",
		CenterCode:      "C-01",
		IdempotencyKey:  "key-1",
		MedicationCount: 2,
		TestCount:       1,
		Canonical:       canonical,
		PreparedAt:      time.Now().UTC(),
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	agg := NewAggregate("doc-1")
	if agg.Status() != StatusDraft {
		t.Fatalf("Status = %s, want draft", agg.Status())
	}

	if err := agg.Prepare(preparedData("doc-1")); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if agg.Status() != StatusPrepared || agg.Version() != 1 {
		t.Errorf("after Prepare: status %s version %d", agg.Status(), agg.Version())
	}
	if agg.IdempotencyKey() != "key-1" {
		t.Errorf("IdempotencyKey = %q", agg.IdempotencyKey())
	}

	if err := agg.MarkRendered(4096); err != nil {
		t.Fatalf("MarkRendered: %v", err)
	}
	if agg.Status() != StatusRendered || agg.Version() != 2 {
		t.Errorf("after MarkRendered: status %s version %d", agg.Status(), agg.Version())
	}

	if err := agg.MarkPrinted("nurse-7"); err != nil {
		t.Fatalf("MarkPrinted: %v", err)
	}
	if agg.Status() != StatusPrinted || agg.Version() != 3 {
		t.Errorf("after MarkPrinted: status %s version %d", agg.Status(), agg.Version())
	}

	if len(agg.Changes()) != 3 {
		t.Errorf("Changes = %d, want 3", len(agg.Changes()))
	}
}

func TestInvalidTransitions(t *testing.T) {
	agg := NewAggregate("doc-1")

	if err := agg.MarkRendered(100); err == nil {
		t.Error("MarkRendered on draft must fail")
	}
	if err := agg.MarkPrinted("x"); err == nil {
		t.Error("MarkPrinted on draft must fail")
	}

	if err := agg.Prepare(preparedData("doc-1")); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := agg.Prepare(preparedData("doc-1")); err == nil {
		t.Error("double Prepare must fail")
	}
	if err := agg.MarkPrinted("x"); err == nil {
		t.Error("MarkPrinted before MarkRendered must fail")
	}
}

func TestEventsCarryAuditFields(t *testing.T) {
	agg := NewAggregate("doc-1")
	if err := agg.Prepare(preparedData("doc-1")); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	ev := agg.Changes()[0]
	if ev.EventType != EventDocumentPrepared {
		t.Errorf("EventType = %s", ev.EventType)
	}
	if ev.PatientID != "P1" || ev.PrescribedBy != "Dr. Rao" || ev.CenterCode != "C-01" {
		t.Errorf("audit fields = %q %q %q", ev.PatientID, ev.PrescribedBy, ev.CenterCode)
	}
	if ev.AggregateType != "ClinicalDocument" {
		t.Errorf("AggregateType = %q", ev.AggregateType)
	}
}

func TestCanonicalFromHistory(t *testing.T) {
	agg := NewAggregate("doc-1")
	if err := agg.Prepare(preparedData("doc-1")); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := agg.MarkRendered(2048); err != nil {
		t.Fatalf("MarkRendered: %v", err)
	}

	doc, err := CanonicalFromHistory(agg.Changes())
	if err != nil {
		t.Fatalf("CanonicalFromHistory: %v", err)
	}
	if doc.PrescribedBy != "Dr. Rao" {
		t.Errorf("PrescribedBy = %q, want the prepared document", doc.PrescribedBy)
	}
}

func TestCanonicalFromHistoryWithoutPreparedEvent(t *testing.T) {
	if _, err := CanonicalFromHistory(nil); err != ErrNotPrepared {
		t.Errorf("err = %v, want ErrNotPrepared", err)
	}
}

func TestLoadFromHistoryRebuildsState(t *testing.T) {
	src := NewAggregate("doc-1")
	if err := src.Prepare(preparedData("doc-1")); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := src.MarkRendered(2048); err != nil {
		t.Fatalf("MarkRendered: %v", err)
	}
	if err := src.MarkPrinted("nurse-7"); err != nil {
		t.Fatalf("MarkPrinted: %v", err)
	}

	history := src.Changes()
	rebuilt := NewAggregate("doc-1")
	rebuilt.LoadFromHistory(history)

	if rebuilt.Status() != StatusPrinted {
		t.Errorf("Status = %s, want printed", rebuilt.Status())
	}
	if rebuilt.Version() != 3 {
		t.Errorf("Version = %d, want 3", rebuilt.Version())
	}
	if rebuilt.IdempotencyKey() != "key-1" {
		t.Errorf("IdempotencyKey = %q", rebuilt.IdempotencyKey())
	}
	if len(rebuilt.Changes()) != 0 {
		t.Error("replayed events must not appear as uncommitted changes")
	}
}
