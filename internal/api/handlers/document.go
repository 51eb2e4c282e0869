// Package handlers provides HTTP handlers for the document API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/carelane/printcore/internal/api/middleware"
	"github.com/carelane/printcore/internal/canonical"
	docsvc "github.com/carelane/printcore/internal/document"
	"github.com/carelane/printcore/internal/domain/document"
	"github.com/carelane/printcore/internal/infrastructure/redpanda"
	"github.com/carelane/printcore/internal/normalize"
	"github.com/carelane/printcore/internal/observability/metrics"
	"github.com/carelane/printcore/pkg/idempotency"
)

// DocumentHandler handles clinical-document endpoints
type DocumentHandler struct {
	repo    *document.Repository
	svc     *docsvc.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewDocumentHandler creates a new handler. m may be nil.
func NewDocumentHandler(repo *document.Repository, svc *docsvc.Service, m *metrics.Metrics, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		repo:    repo,
		svc:     svc,
		metrics: m,
		logger:  logger,
	}
}

// Routes returns the handler routes
func (h *DocumentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/events", h.GetEvents)
	r.Post("/{id}/render", h.Render)
	return r
}

// CreateRequest is the request body for preparing a document
type CreateRequest struct {
	Prescription    map[string]any `json:"prescription"`
	TestRequestPool any            `json:"testRequestPool,omitempty"`
	CenterCode      string         `json:"centerCode,omitempty"`
}

// CreateResponse is the response for preparing a document
type CreateResponse struct {
	ID               string    `json:"id"`
	Status           string    `json:"status"`
	IdempotencyKey   string    `json:"idempotency_key"`
	MedicationCount  int       `json:"medication_count"`
	TestCount        int       `json:"test_count"`
	FullPoolFallback bool      `json:"full_pool_fallback"`
	CreatedAt        time.Time `json:"created_at"`
}

// Create handles POST /documents
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("document-handler")
	ctx, span := tracer.Start(ctx, "prepare_document")
	defer span.End()

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Prescription == nil {
		h.jsonError(w, "prescription is required", http.StatusBadRequest)
		return
	}

	documentID := uuid.New().String()
	span.SetAttributes(attribute.String("document_id", documentID))

	doc, fellBack := h.svc.NormalizeDocument(req.Prescription, req.TestRequestPool)

	patientID := normalize.Pick(req.Prescription, "", "patientId", "patient_id", "patient")
	prescriptionID := normalize.Pick(req.Prescription, "", "_id", "id", "prescriptionId")
	key := idempotency.GenerateKey(patientID, prescriptionID, req.CenterCode, time.Now().UTC())

	canonicalPayload, err := json.Marshal(doc)
	if err != nil {
		h.logger.Error("canonical marshal failed", zap.Error(err))
		h.fail(w, "failed to prepare document", http.StatusInternalServerError)
		return
	}

	agg := document.NewAggregate(documentID)
	prepareData := &document.DocumentPreparedData{
		DocumentID:       documentID,
		PatientID:        patientID,
		PrescribedBy:     doc.PrescribedBy,
		CenterCode:       req.CenterCode,
		IdempotencyKey:   key,
		MedicationCount:  len(doc.Medications),
		TestCount:        len(doc.Tests),
		FullPoolFallback: fellBack,
		Canonical:        canonicalPayload,
		PreparedAt:       time.Now().UTC(),
	}

	if err := agg.Prepare(prepareData); err != nil {
		h.logger.Error("aggregate prepare failed", zap.Error(err))
		h.fail(w, "failed to prepare document", http.StatusInternalServerError)
		return
	}

	if err := h.repo.SaveWithOutbox(ctx, agg, redpanda.TopicDocumentEvents); err != nil {
		h.logger.Error("save failed", zap.Error(err))
		h.fail(w, "failed to save document", http.StatusInternalServerError)
		return
	}

	h.logger.Info("document prepared",
		zap.String("id", documentID),
		zap.String("request_id", middleware.GetRequestID(ctx)),
		zap.Bool("full_pool_fallback", fellBack),
	)

	resp := CreateResponse{
		ID:               documentID,
		Status:           string(agg.Status()),
		IdempotencyKey:   key,
		MedicationCount:  len(doc.Medications),
		TestCount:        len(doc.Tests),
		FullPoolFallback: fellBack,
		CreatedAt:        time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// Get handles GET /documents/{id}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	agg, err := h.repo.Load(ctx, id)
	if err != nil {
		h.jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	resp := map[string]interface{}{
		"id":      agg.ID(),
		"status":  agg.Status(),
		"version": agg.Version(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetEvents handles GET /documents/{id}/events
func (h *DocumentHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	events, err := h.repo.GetEvents(ctx, id)
	if err != nil {
		h.jsonError(w, "failed to get events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

// RenderRequest is the request for rendering a prepared document
type RenderRequest struct {
	CenterInfo     map[string]any `json:"centerInfo,omitempty"`
	PatientSummary string         `json:"patientSummary,omitempty"`
}

// RenderResponse carries the printable markup
type RenderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Markup string `json:"markup"`
}

// Render handles POST /documents/{id}/render
func (h *DocumentHandler) Render(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("document-handler")
	ctx, span := tracer.Start(ctx, "render_document")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("document_id", id))

	var req RenderRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	agg, err := h.repo.Load(ctx, id)
	if err != nil {
		h.jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	doc, err := h.canonicalFor(ctx, id)
	if err != nil {
		h.logger.Error("canonical load failed", zap.Error(err))
		h.fail(w, "failed to load document", http.StatusInternalServerError)
		return
	}

	markup := h.svc.RenderDocument(doc, req.CenterInfo, req.PatientSummary)

	if err := agg.MarkRendered(len(markup)); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.SaveWithOutbox(ctx, agg, redpanda.TopicDocumentEvents); err != nil {
		h.logger.Error("save failed", zap.Error(err))
		h.fail(w, "failed to save", http.StatusInternalServerError)
		return
	}

	resp := RenderResponse{
		ID:     agg.ID(),
		Status: string(agg.Status()),
		Markup: markup,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// canonicalFor replays the prepared event and returns its canonical document.
func (h *DocumentHandler) canonicalFor(ctx context.Context, id string) (canonical.ClinicalDocument, error) {
	events, err := h.repo.GetEvents(ctx, id)
	if err != nil {
		return canonical.ClinicalDocument{}, err
	}
	return document.CanonicalFromHistory(events)
}

// fail reports a pipeline failure before answering with an error body.
func (h *DocumentHandler) fail(w http.ResponseWriter, message string, code int) {
	if h.metrics != nil {
		h.metrics.DocumentsFailed.Inc()
	}
	h.jsonError(w, message, code)
}

func (h *DocumentHandler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
