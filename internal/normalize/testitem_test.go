package normalize

import (
	"testing"

	"github.com/carelane/printcore/internal/canonical"
)

func TestCoerceListShapes(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int
	}{
		{"nil", nil, 0},
		{"array passthrough", []any{"a", "b"}, 2},
		{"single entry record", map[string]any{"testName": "CBC"}, 1},
		{"keyed container", map[string]any{"k1": map[string]any{"testName": "CBC"}, "k2": map[string]any{"testName": "ESR"}}, 2},
		{"bare scalar", "CBC", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CoerceList(tc.in, testEntryKeys...); len(got) != tc.want {
				t.Errorf("CoerceList len = %d, want %d", len(got), tc.want)
			}
		})
	}
}

func TestCoerceListKeyedContainerIsDeterministic(t *testing.T) {
	in := map[string]any{
		"b": map[string]any{"testName": "ESR"},
		"a": map[string]any{"testName": "CBC"},
		"c": map[string]any{"testName": "CRP"},
	}
	first := TestItems(in)
	for i := 0; i < 10; i++ {
		again := TestItems(in)
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("ordering unstable at element %d: %+v vs %+v", j, first[j], again[j])
			}
		}
	}
	if first[0].Name != "CBC" || first[1].Name != "CRP" || first[2].Name != "ESR" {
		t.Errorf("keyed container not in sorted key order: %+v", first)
	}
}

func TestTestItemFromRecord(t *testing.T) {
	item := TestItem(map[string]any{"test_name": "RA Factor", "note": "fasting"})
	if item.Name != "RA Factor" || item.Instruction != "fasting" {
		t.Errorf("TestItem = %+v", item)
	}
}

func TestTestItemFromScalar(t *testing.T) {
	item := TestItem("CBC")
	if item.Name != "CBC" {
		t.Errorf("Name = %q, want CBC", item.Name)
	}
	if item.Instruction != canonical.Placeholder {
		t.Errorf("Instruction = %q, want placeholder", item.Instruction)
	}
}

func TestTestItemsDropsBlankScalars(t *testing.T) {
	items := TestItems([]any{"CBC", "", "  ", nil, map[string]any{}})
	// Blank scalars vanish; an empty record still yields a placeholder row.
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(items), items)
	}
	if items[0].Name != "CBC" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].Name != canonical.Placeholder {
		t.Errorf("items[1] = %+v, want placeholder row", items[1])
	}
}
