package document

import (
	"encoding/json"
	"errors"
	"time"
)

// Status represents document lifecycle status
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPrepared Status = "prepared"
	StatusRendered Status = "rendered"
	StatusPrinted  Status = "printed"
	StatusFailed   Status = "failed"
)

// Aggregate represents the clinical-document aggregate root
type Aggregate struct {
	id              string
	version         int
	status          Status
	patientID       string
	prescribedBy    string
	centerCode      string
	idempotencyKey  string
	medicationCount int
	testCount       int
	printedBy       string
	createdAt       time.Time
	updatedAt       time.Time
	changes         []*Event
}

// NewAggregate creates a new document aggregate
func NewAggregate(id string) *Aggregate {
	return &Aggregate{
		id:        id,
		status:    StatusDraft,
		createdAt: time.Now().UTC(),
		updatedAt: time.Now().UTC(),
		changes:   make([]*Event, 0),
	}
}

// ID returns the aggregate ID
func (a *Aggregate) ID() string { return a.id }

// Version returns the current version
func (a *Aggregate) Version() int { return a.version }

// Status returns the current status
func (a *Aggregate) Status() Status { return a.status }

// IdempotencyKey returns the preparation idempotency key
func (a *Aggregate) IdempotencyKey() string { return a.idempotencyKey }

// Changes returns uncommitted events
func (a *Aggregate) Changes() []*Event { return a.changes }

// ClearChanges clears uncommitted events
func (a *Aggregate) ClearChanges() { a.changes = make([]*Event, 0) }

// Prepare records that the canonical document has been built
func (a *Aggregate) Prepare(data *DocumentPreparedData) error {
	if a.status != StatusDraft {
		return errors.New("document already prepared")
	}

	event, err := NewEvent(a.id, EventDocumentPrepared, data)
	if err != nil {
		return err
	}
	event.WithAuditInfo(data.PatientID, data.PrescribedBy, data.CenterCode)

	a.apply(event)
	a.changes = append(a.changes, event)
	return nil
}

// MarkRendered records that printable markup was produced
func (a *Aggregate) MarkRendered(markupSize int) error {
	if a.status != StatusPrepared {
		return errors.New("document not prepared")
	}

	data := &DocumentRenderedData{
		DocumentID: a.id,
		MarkupSize: markupSize,
		RenderedAt: time.Now().UTC(),
	}

	event, err := NewEvent(a.id, EventDocumentRendered, data)
	if err != nil {
		return err
	}

	a.apply(event)
	a.changes = append(a.changes, event)
	return nil
}

// MarkPrinted records the handoff to the print pipeline
func (a *Aggregate) MarkPrinted(printedBy string) error {
	if a.status != StatusRendered {
		return errors.New("document not rendered")
	}

	data := &DocumentPrintedData{
		DocumentID: a.id,
		PrintedBy:  printedBy,
		PrintedAt:  time.Now().UTC(),
	}

	event, err := NewEvent(a.id, EventDocumentPrinted, data)
	if err != nil {
		return err
	}

	a.apply(event)
	a.changes = append(a.changes, event)
	return nil
}

// apply applies an event to update state
func (a *Aggregate) apply(event *Event) {
	a.version++
	a.updatedAt = event.Timestamp

	switch event.EventType {
	case EventDocumentPrepared:
		a.applyPrepared(event)
	case EventDocumentRendered:
		a.status = StatusRendered
	case EventDocumentPrinted:
		a.applyPrinted(event)
	case EventDocumentFailed:
		a.status = StatusFailed
	}
}

func (a *Aggregate) applyPrepared(event *Event) {
	var data DocumentPreparedData
	if err := json.Unmarshal(event.EventData, &data); err != nil {
		return
	}
	a.status = StatusPrepared
	a.patientID = data.PatientID
	a.prescribedBy = data.PrescribedBy
	a.centerCode = data.CenterCode
	a.idempotencyKey = data.IdempotencyKey
	a.medicationCount = data.MedicationCount
	a.testCount = data.TestCount
}

func (a *Aggregate) applyPrinted(event *Event) {
	var data DocumentPrintedData
	if err := json.Unmarshal(event.EventData, &data); err != nil {
		return
	}
	a.status = StatusPrinted
	a.printedBy = data.PrintedBy
}

// LoadFromHistory rebuilds state from events
func (a *Aggregate) LoadFromHistory(events []*Event) {
	for _, event := range events {
		a.apply(event)
	}
}
