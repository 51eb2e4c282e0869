// Package correlate associates a prescription with the test-request records
// describing the same clinical episode. Real-world data is inconsistently
// linked, so matching widens progressively: exact request id, then visit,
// then patient, then the whole pool.
package correlate

import (
	"strings"

	"github.com/carelane/printcore/internal/canonical"
	"github.com/carelane/printcore/internal/normalize"
	"github.com/carelane/printcore/pkg/flatten"
)

// Result is the correlator's output: the synthesized fallback test list and
// the distinct non-empty per-request instructions in first-seen order.
type Result struct {
	Items        []canonical.TestItem
	Instructions []string

	// FullPoolFallback is set when no matching rule produced candidates and
	// the entire pool was used instead. Over-inclusion is preferred to
	// silently dropping clinically relevant tests.
	FullPoolFallback bool
}

// Alias chains for identifiers on prescriptions and pool records.
var (
	requestIDKeys   = []string{"testRequestId", "latestTestRequest", "testRequest"}
	recordIDKeys    = []string{"_id", "id", "requestId"}
	patientKeys     = []string{"patient", "patientId", "patient_id"}
	followUpKeys    = []string{"followUpInstruction", "followUp", "followup"}
	instructionKeys = []string{"testDescription", "followUpInstruction", "instructions", "notes", "remark", "remarks"}
	genericListKeys = []string{"tests", "testList", "testItems", "test_items", "labTests", "investigations"}
)

// TestRequests flattens the pool, selects the records belonging to the
// prescription's clinical episode, and derives the fallback test list and
// instruction set from them. The pool is read-only and never mutated.
func TestRequests(prescription map[string]any, pool any) Result {
	records := flatten.Records(pool)
	if len(records) == 0 {
		return Result{}
	}

	matched, fellBack := match(prescription, records)

	ownFollowUp := normalize.Pick(prescription, "", followUpKeys...)

	var res Result
	res.FullPoolFallback = fellBack
	seen := make(map[string]bool)
	for _, rec := range matched {
		instruction := normalize.Pick(rec, ownFollowUp, instructionKeys...)
		if instruction != "" && !seen[instruction] {
			seen[instruction] = true
			res.Instructions = append(res.Instructions, instruction)
		}
		res.Items = append(res.Items, extractItems(rec, instruction)...)
	}
	return res
}

// match applies the priority rules. The first rule yielding a non-empty set
// wins; if everything misses, the entire unfiltered pool is the result.
func match(prescription map[string]any, records []map[string]any) ([]map[string]any, bool) {
	requestID := resolveID(prescription, requestIDKeys)

	if requestID != "" {
		var byID []map[string]any
		for _, rec := range records {
			if recordRequestID(rec) == requestID {
				byID = append(byID, rec)
			}
		}
		if len(byID) > 0 {
			return byID, false
		}
	}

	if visit := normalize.Pick(prescription, "", "visit"); visit != "" {
		var byVisit []map[string]any
		for _, rec := range records {
			v := normalize.Pick(rec, "", "visit")
			if v != "" && strings.EqualFold(v, visit) {
				byVisit = append(byVisit, rec)
			}
		}
		if len(byVisit) > 0 {
			return byVisit, false
		}
	}

	if patientID := resolveID(prescription, patientKeys); patientID != "" {
		var byPatient []map[string]any
		for _, rec := range records {
			if resolveID(rec, patientKeys) == patientID {
				byPatient = append(byPatient, rec)
			}
		}
		if len(byPatient) > 0 {
			return byPatient, false
		}
	}

	// No request identifier at all, or every rule missed: the document must
	// never render an empty test list purely because correlation failed.
	return records, requestID != ""
}

// resolveID resolves a value that may be a bare id or a nested object
// carrying an _id/id.
func resolveID(rec map[string]any, keys []string) string {
	if rec == nil {
		return ""
	}
	for _, key := range keys {
		v, ok := rec[key]
		if !ok || normalize.IsEmpty(v) {
			continue
		}
		if nested, ok := normalize.AsRecord(v); ok {
			if id := normalize.Pick(nested, "", "_id", "id"); id != "" {
				return id
			}
			continue
		}
		if id := normalize.Stringify(v); id != "" {
			return id
		}
	}
	return ""
}

// recordRequestID resolves a pool record's own identifier, including the
// legacy nested testRequest._id shape.
func recordRequestID(rec map[string]any) string {
	if id := resolveID(rec, recordIDKeys); id != "" {
		return id
	}
	if nested, ok := normalize.AsRecord(rec["testRequest"]); ok {
		return normalize.Pick(nested, "", "_id", "id")
	}
	return ""
}

// extractItems pulls the test names out of a matched record, tolerating the
// same list shapes as the test-item normalizer. selectedTests carries the
// richest shape and is checked first; a bare testType/testName yields one
// synthetic item carrying the record's fallback instruction.
func extractItems(rec map[string]any, instruction string) []canonical.TestItem {
	if v, ok := rec["selectedTests"]; ok && !normalize.IsEmpty(v) {
		if items := withInstruction(normalize.TestItems(v), instruction); len(items) > 0 {
			return items
		}
	}
	for _, key := range genericListKeys {
		v, ok := rec[key]
		if !ok || normalize.IsEmpty(v) {
			continue
		}
		if items := withInstruction(normalize.TestItems(v), instruction); len(items) > 0 {
			return items
		}
	}
	if name := normalize.Pick(rec, "", "testType", "testName"); name != "" {
		item := canonical.TestItem{Name: name, Instruction: canonical.Placeholder}
		if instruction != "" {
			item.Instruction = instruction
		}
		return []canonical.TestItem{item}
	}
	return nil
}

// withInstruction fills placeholder instructions with the record's fallback
// instruction when one exists.
func withInstruction(items []canonical.TestItem, instruction string) []canonical.TestItem {
	if instruction == "" {
		return items
	}
	for i := range items {
		if items[i].Instruction == canonical.Placeholder {
			items[i].Instruction = instruction
		}
	}
	return items
}
