package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/carelane/printcore/internal/attachment"
	"github.com/carelane/printcore/internal/observability/metrics"
)

// AttachmentHandler handles attachment resolution and retrieval endpoints
type AttachmentHandler struct {
	resolver  *attachment.Resolver
	retriever *attachment.Retriever
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewAttachmentHandler creates a new handler. m may be nil.
func NewAttachmentHandler(resolver *attachment.Resolver, retriever *attachment.Retriever, m *metrics.Metrics, logger *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		resolver:  resolver,
		retriever: retriever,
		metrics:   m,
		logger:    logger,
	}
}

// Routes returns the handler routes
func (h *AttachmentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/resolve", h.Resolve)
	r.Post("/fetch", h.Fetch)
	return r
}

// ResolveResponse describes where an attachment can be fetched from
type ResolveResponse struct {
	URL     string `json:"url"`
	IsAPI   bool   `json:"is_api"`
	APIPath string `json:"api_path,omitempty"`
}

// Resolve handles POST /attachments/resolve. The body is a loosely-typed
// attachment reference, either a bare string path or a structured object.
func (h *AttachmentHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("attachment-handler").Start(r.Context(), "resolve_attachment")
	defer span.End()

	var raw any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ref, err := attachment.Normalize(raw)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	res, err := h.resolver.Resolve(ref)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	span.SetAttributes(
		attribute.String("attachment.url", res.URL),
		attribute.Bool("attachment.is_api", res.IsAPI),
	)
	h.countResolution(res.IsAPI)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ResolveResponse{URL: res.URL, IsAPI: res.IsAPI, APIPath: res.APIPath})
}

// Fetch handles POST /attachments/fetch. It resolves the reference and
// streams the file back, translating backend auth failures into the
// user-facing messages the print UI shows.
func (h *AttachmentHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("attachment-handler").Start(r.Context(), "fetch_attachment")
	defer span.End()

	var raw any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ref, err := attachment.Normalize(raw)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	res, err := h.resolver.Resolve(ref)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	h.countResolution(res.IsAPI)

	payload, err := h.retriever.Fetch(ctx, res)
	if err != nil {
		var rerr *attachment.RetrievalError
		if errors.As(err, &rerr) {
			span.SetAttributes(attribute.Int("attachment.status", rerr.StatusCode))
			h.countFetchError(strconv.Itoa(rerr.StatusCode))
			h.jsonError(w, rerr.UserMessage(), rerr.StatusCode)
			return
		}
		h.logger.Error("attachment fetch failed", zap.String("url", res.URL), zap.Error(err))
		h.countFetchError("transport")
		h.jsonError(w, "failed to fetch attachment", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", payload.ContentType)
	w.Write(payload.Body)
}

func (h *AttachmentHandler) countResolution(isAPI bool) {
	if h.metrics == nil {
		return
	}
	mode := "direct"
	if isAPI {
		mode = "api"
	}
	h.metrics.AttachmentResolutions.WithLabelValues(mode).Inc()
}

func (h *AttachmentHandler) countFetchError(status string) {
	if h.metrics == nil {
		return
	}
	h.metrics.AttachmentFetchErrors.WithLabelValues(status).Inc()
}

func (h *AttachmentHandler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
