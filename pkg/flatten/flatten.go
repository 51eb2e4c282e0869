// Package flatten provides a generic recursive unwrap for records nested
// inside arbitrary container keys. Test-request pools and attachment lists
// arrive wrapped in one or more of these containers depending on which
// backend produced them.
package flatten

import "reflect"

// ContainerKeys are the keys a payload may nest further records under.
var ContainerKeys = []string{
	"data", "items", "results", "records", "rows", "entries", "requests", "testRequests",
}

// Records recursively unwraps a value into a flat ordered sequence of
// records. Every record encountered is included in the output, and each of
// its container-key values is unwrapped in turn. Duplicates are permitted;
// callers deduplicate at aggregation time. A visited set guards against
// cyclic structures.
func Records(v any) []map[string]any {
	var out []map[string]any
	visited := make(map[uintptr]bool)
	walk(v, visited, &out)
	return out
}

func walk(v any, visited map[uintptr]bool, out *[]map[string]any) {
	switch val := v.(type) {
	case []any:
		if seen(val, visited) {
			return
		}
		for _, e := range val {
			walk(e, visited, out)
		}
	case map[string]any:
		if seen(val, visited) {
			return
		}
		*out = append(*out, val)
		for _, key := range ContainerKeys {
			if nested, ok := val[key]; ok {
				walk(nested, visited, out)
			}
		}
	}
}

// seen marks a container and reports whether it was already walked.
func seen(v any, visited map[uintptr]bool) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return false
		}
		p := rv.Pointer()
		if visited[p] {
			return true
		}
		visited[p] = true
	}
	return false
}
