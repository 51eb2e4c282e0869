// Package document ties the normalizers, correlator, letterhead resolver
// and renderer together into the document-preparation entry points.
package document

import (
	"time"

	"go.uber.org/zap"

	"github.com/carelane/printcore/internal/canonical"
	"github.com/carelane/printcore/internal/correlate"
	"github.com/carelane/printcore/internal/letterhead"
	"github.com/carelane/printcore/internal/normalize"
	"github.com/carelane/printcore/internal/observability/metrics"
	"github.com/carelane/printcore/internal/render"
)

// Service prepares canonical documents and renders them. All operations are
// pure per call; the service holds only injected configuration.
type Service struct {
	renderer *render.Renderer
	defaults canonical.CenterInfo
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewService creates a document service. metrics may be nil.
func NewService(renderer *render.Renderer, defaults canonical.CenterInfo, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{renderer: renderer, defaults: defaults, logger: logger, metrics: m}
}

// Alias chains for top-level prescription fields.
var (
	medicationListKeys = []string{"medications", "medicines", "drugs", "medicationList"}
	testListKeys       = []string{"tests", "testList", "testItems", "labTests", "investigations"}
)

// NormalizeDocument reconciles a raw prescription and its test-request pool
// into one canonical clinical document. Malformed input never fails; fields
// degrade to placeholders so a document is always producible. The second
// return reports whether test correlation fell back to the full pool.
func (s *Service) NormalizeDocument(rawPrescription map[string]any, pool any) (canonical.ClinicalDocument, bool) {
	doc := canonical.ClinicalDocument{
		PatientSummary:        normalize.Pick(rawPrescription, "", "patientSummary", "patientName", "patient_name"),
		PrescribedBy:          normalize.Pick(rawPrescription, "", "prescribedBy", "doctorName", "prescriber", "doctor"),
		PreparedBy:            normalize.Pick(rawPrescription, "", "preparedBy", "prepared_by"),
		PreparedByCredentials: normalize.Pick(rawPrescription, "", "preparedByCredentials", "credentials", "qualification"),
		MedicalCouncilNumber:  normalize.Pick(rawPrescription, "", "medicalCouncilNumber", "councilNumber", "registrationNumber"),
		PrintedBy:             normalize.Pick(rawPrescription, "", "printedBy", "printed_by"),
		PrescribedDate:        normalize.Pick(rawPrescription, "", "prescribedDate", "date", "createdAt", "created_at"),
		ReportGeneratedAt:     normalize.Pick(rawPrescription, "", "reportGeneratedAt", "generatedAt"),
		FollowUpInstruction:   normalize.Pick(rawPrescription, "", "followUpInstruction", "followUp", "followup"),
		Remarks:               normalize.Pick(rawPrescription, "", "remarks", "remark", "comments"),
		Diagnosis:             normalize.Pick(rawPrescription, "", "diagnosis", "provisionalDiagnosis"),
	}

	doc.Medications = normalize.Medications(firstPresent(rawPrescription, medicationListKeys))

	// The prescription's own test list wins; correlation only fills gaps.
	doc.Tests = normalize.TestItems(firstPresent(rawPrescription, testListKeys))

	corr := correlate.TestRequests(rawPrescription, pool)
	if len(doc.Tests) == 0 {
		doc.Tests = corr.Items
	}
	doc.DerivedInstructions = corr.Instructions

	if corr.FullPoolFallback {
		s.logger.Warn("test-request correlation missed, using full pool",
			zap.String("patient", normalize.Pick(rawPrescription, "", "patientId", "patient_id")))
		if s.metrics != nil {
			s.metrics.CorrelationFallbacks.Inc()
		}
	}
	if s.metrics != nil {
		s.metrics.DocumentsNormalized.Inc()
	}

	return doc, corr.FullPoolFallback
}

// RenderDocument produces printable markup from a canonical document, a raw
// center record and a patient summary.
func (s *Service) RenderDocument(doc canonical.ClinicalDocument, centerRecord map[string]any, patientSummary string) string {
	start := time.Now()
	center := letterhead.ResolveRecord(centerRecord, s.defaults)
	markup := s.renderer.Document(doc, center, patientSummary)
	if s.metrics != nil {
		s.metrics.DocumentsRendered.Inc()
		s.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	}
	return markup
}

// PruneEmptyMedications drops entirely-empty rows. Applied only at
// form-submission validation; normalization and rendering keep empty rows
// verbatim.
func PruneEmptyMedications(meds []canonical.Medication) []canonical.Medication {
	out := make([]canonical.Medication, 0, len(meds))
	for _, m := range meds {
		if !m.IsEmpty() {
			out = append(out, m)
		}
	}
	return out
}

func firstPresent(rec map[string]any, keys []string) any {
	for _, key := range keys {
		if v, ok := rec[key]; ok && !normalize.IsEmpty(v) {
			return v
		}
	}
	return nil
}
