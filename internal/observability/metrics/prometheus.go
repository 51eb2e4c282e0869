// Package metrics provides Prometheus metrics for the document pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	DocumentsNormalized   prometheus.Counter
	DocumentsRendered     prometheus.Counter
	DocumentsFailed       prometheus.Counter
	RenderDuration        prometheus.Histogram
	CorrelationFallbacks  prometheus.Counter
	AttachmentResolutions *prometheus.CounterVec
	AttachmentFetchErrors *prometheus.CounterVec
}

// New creates and registers all metrics
func New() *Metrics {
	m := &Metrics{
		DocumentsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "documents_normalized_total",
			Help: "Total raw records normalized into canonical documents",
		}),
		DocumentsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "documents_rendered_total",
			Help: "Total documents rendered to printable markup",
		}),
		DocumentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "documents_failed_total",
			Help: "Total failed document preparations",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "document_render_duration_seconds",
			Help:    "Document normalization and rendering duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		CorrelationFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "correlation_full_pool_fallbacks_total",
			Help: "Documents whose test list came from the unfiltered pool because no rule matched",
		}),
		AttachmentResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attachment_resolutions_total",
			Help: "Attachment references resolved, by authorization mode",
		}, []string{"mode"}),
		AttachmentFetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attachment_fetch_errors_total",
			Help: "Attachment retrieval failures, by status",
		}, []string{"status"}),
	}

	prometheus.MustRegister(
		m.DocumentsNormalized,
		m.DocumentsRendered,
		m.DocumentsFailed,
		m.RenderDuration,
		m.CorrelationFallbacks,
		m.AttachmentResolutions,
		m.AttachmentFetchErrors,
	)

	return m
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
