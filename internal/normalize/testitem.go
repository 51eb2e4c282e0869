package normalize

import (
	"sort"

	"github.com/carelane/printcore/internal/canonical"
)

// Alias chains for test records. Lab intake, doctor authoring, and legacy
// imports each use a different spelling for the same concept.
var (
	testNameKeys        = []string{"name", "testName", "test_name", "test", "title", "testCode", "code"}
	testInstructionKeys = []string{"instruction", "instructions", "note", "description", "details"}
	testEntryKeys       = append(append([]string{}, testNameKeys...), testInstructionKeys...)
)

// CoerceList flattens a "list" value of unknown shape into an ordered
// sequence: arrays pass through, a record carrying any of entryKeys is a
// single entry and becomes a one-element sequence, any other keyed object
// contributes its values, a bare scalar becomes a one-element sequence,
// absent becomes empty. Decoded JSON objects carry no insertion order, so
// keyed-object values are taken in sorted key order to keep output
// deterministic.
func CoerceList(v any, entryKeys ...string) []any {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		return val
	case map[string]any:
		if looksLikeEntry(val, entryKeys) {
			return []any{val}
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, val[k])
		}
		return out
	default:
		return []any{val}
	}
}

// looksLikeEntry reports whether a record resolves as a single entry
// rather than a keyed container of entries.
func looksLikeEntry(rec map[string]any, entryKeys []string) bool {
	for _, k := range entryKeys {
		if _, ok := rec[k]; ok {
			return true
		}
	}
	return false
}

// TestItem normalizes one list element into a canonical TestItem.
func TestItem(v any) canonical.TestItem {
	if rec, ok := AsRecord(v); ok {
		return canonical.TestItem{
			Name:        Pick(rec, canonical.Placeholder, testNameKeys...),
			Instruction: Pick(rec, canonical.Placeholder, testInstructionKeys...),
		}
	}
	name := Stringify(v)
	if name == "" {
		name = canonical.Placeholder
	}
	return canonical.TestItem{Name: name, Instruction: canonical.Placeholder}
}

// TestItems normalizes a test-list value of unknown shape into an ordered
// sequence of TestItem. Elements that resolve to nothing at all (a blank
// scalar with no underlying record) are dropped; the result may be empty
// but the call never fails.
func TestItems(v any) []canonical.TestItem {
	elems := CoerceList(v, testEntryKeys...)
	items := make([]canonical.TestItem, 0, len(elems))
	for _, e := range elems {
		if _, ok := AsRecord(e); !ok && Stringify(e) == "" {
			continue
		}
		items = append(items, TestItem(e))
	}
	return items
}
