// Package normalize maps loosely shaped source records onto the canonical
// clinical model. Each entry path spells the same concept differently, so
// every field resolves through an ordered alias chain with a final fallback.
package normalize

import (
	"strconv"
	"strings"
)

// IsEmpty reports whether a candidate value counts as absent. Only nil and
// blank/whitespace strings are empty; false and 0 are real values and must
// be preserved.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// First returns the first non-empty candidate in order, else fallback.
// Candidate order is part of the contract: callers encode domain priority
// as "explicit field, legacy alias, derived value, static default".
func First(fallback any, candidates ...any) any {
	for _, c := range candidates {
		if !IsEmpty(c) {
			return c
		}
	}
	return fallback
}

// Stringify renders a scalar candidate as a display string. Booleans and
// numbers keep their textual form so a false or a 0 survives resolution.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}

// Pick resolves a field from a record through an alias chain. The first key
// whose value stringifies to something non-blank wins; fallback otherwise.
func Pick(rec map[string]any, fallback string, keys ...string) string {
	if rec == nil {
		return fallback
	}
	for _, key := range keys {
		v, ok := rec[key]
		if !ok || IsEmpty(v) {
			continue
		}
		if s := Stringify(v); s != "" {
			return s
		}
	}
	return fallback
}

// AsRecord coerces a loosely-typed value into a record shape.
func AsRecord(v any) (map[string]any, bool) {
	rec, ok := v.(map[string]any)
	return rec, ok
}
