package flatten

import "testing"

func TestRecordsUnwrapsNestedContainers(t *testing.T) {
	pool := map[string]any{
		"data": map[string]any{
			"testRequests": []any{
				map[string]any{"_id": "r1"},
				map[string]any{"_id": "r2"},
			},
		},
	}

	records := Records(pool)
	// The two wrapper records plus the two leaves.
	if len(records) != 4 {
		t.Fatalf("len = %d, want 4: %+v", len(records), records)
	}

	var ids []string
	for _, rec := range records {
		if id, ok := rec["_id"].(string); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) != 2 || ids[0] != "r1" || ids[1] != "r2" {
		t.Errorf("leaf ids = %v, want [r1 r2]", ids)
	}
}

func TestRecordsTopLevelArray(t *testing.T) {
	records := Records([]any{
		map[string]any{"_id": "a"},
		map[string]any{"_id": "b"},
	})
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
}

func TestRecordsIgnoresNonContainerValues(t *testing.T) {
	if got := Records(nil); len(got) != 0 {
		t.Errorf("Records(nil) = %v, want empty", got)
	}
	if got := Records("scalar"); len(got) != 0 {
		t.Errorf("Records(scalar) = %v, want empty", got)
	}
}

func TestRecordsMixedContainerKeys(t *testing.T) {
	pool := map[string]any{
		"results": []any{
			map[string]any{
				"rows": []any{map[string]any{"_id": "deep"}},
			},
		},
	}
	records := Records(pool)
	found := false
	for _, rec := range records {
		if rec["_id"] == "deep" {
			found = true
		}
	}
	if !found {
		t.Error("deeply nested record under mixed container keys not found")
	}
}

func TestRecordsCyclicStructureTerminates(t *testing.T) {
	a := map[string]any{"_id": "a"}
	b := map[string]any{"_id": "b"}
	a["data"] = b
	b["data"] = a

	records := Records(a)
	if len(records) != 2 {
		t.Errorf("cyclic walk yielded %d records, want 2", len(records))
	}
}
