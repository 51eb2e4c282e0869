// Package document implements the clinical-document lifecycle aggregate
// and its domain events.
package document

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/carelane/printcore/internal/canonical"
)

// EventType represents the type of domain event
type EventType string

const (
	EventDocumentPrepared EventType = "DocumentPrepared"
	EventDocumentRendered EventType = "DocumentRendered"
	EventDocumentPrinted  EventType = "DocumentPrinted"
	EventDocumentFailed   EventType = "DocumentFailed"
)

// Event represents a domain event
type Event struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     EventType       `json:"event_type"`
	EventData     json.RawMessage `json:"event_data"`
	Version       int             `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	PatientID     string          `json:"patient_id,omitempty"`
	PrescribedBy  string          `json:"prescribed_by,omitempty"`
	CenterCode    string          `json:"center_code,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// NewEvent creates a new event
func NewEvent(aggregateID string, eventType EventType, data interface{}) (*Event, error) {
	eventData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: "ClinicalDocument",
		EventType:     eventType,
		EventData:     eventData,
		Timestamp:     time.Now().UTC(),
	}, nil
}

// DocumentPreparedData contains the canonical document built at preparation.
type DocumentPreparedData struct {
	DocumentID       string          `json:"document_id"`
	PatientID        string          `json:"patient_id"`
	PrescribedBy     string          `json:"prescribed_by"`
	CenterCode       string          `json:"center_code,omitempty"`
	IdempotencyKey   string          `json:"idempotency_key"`
	MedicationCount  int             `json:"medication_count"`
	TestCount        int             `json:"test_count"`
	FullPoolFallback bool            `json:"full_pool_fallback"`
	Canonical        json.RawMessage `json:"canonical"`
	PreparedAt       time.Time       `json:"prepared_at"`
}

// DocumentRenderedData contains rendering details.
type DocumentRenderedData struct {
	DocumentID string    `json:"document_id"`
	MarkupSize int       `json:"markup_size"`
	RenderedAt time.Time `json:"rendered_at"`
}

// DocumentPrintedData contains print-handoff details.
type DocumentPrintedData struct {
	DocumentID string    `json:"document_id"`
	PrintedBy  string    `json:"printed_by"`
	PrintedAt  time.Time `json:"printed_at"`
}

// ErrNotPrepared reports a history with no prepared event to replay.
var ErrNotPrepared = errors.New("document has no prepared event")

// CanonicalFromHistory replays the prepared event in events and returns the
// canonical document it captured.
func CanonicalFromHistory(events []*Event) (canonical.ClinicalDocument, error) {
	for _, ev := range events {
		if ev.EventType != EventDocumentPrepared {
			continue
		}
		var data DocumentPreparedData
		if err := json.Unmarshal(ev.EventData, &data); err != nil {
			return canonical.ClinicalDocument{}, err
		}
		var doc canonical.ClinicalDocument
		if err := json.Unmarshal(data.Canonical, &doc); err != nil {
			return canonical.ClinicalDocument{}, err
		}
		return doc, nil
	}
	return canonical.ClinicalDocument{}, ErrNotPrepared
}

// WithAuditInfo sets audit fields
func (e *Event) WithAuditInfo(patientID, prescribedBy, centerCode string) *Event {
	e.PatientID = patientID
	e.PrescribedBy = prescribedBy
	e.CenterCode = centerCode
	return e
}
