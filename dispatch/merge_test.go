package dispatch

import (
	"reflect"
	"testing"
)

func TestMergeOptions(t *testing.T) {
	tests := []struct {
		name     string
		defaults Options
		options  Options
		expected Options
	}{
		{
			name:     "options_win_on_conflict",
			defaults: Options{"filter": "a", "limit": 10},
			options:  Options{"filter": "b"},
			expected: Options{"filter": "b", "limit": 10},
		},
		{
			name:     "explicit_nil_kept_as_present_key",
			defaults: Options{"filter": "a"},
			options:  Options{"filter": nil},
			expected: Options{"filter": nil},
		},
		{
			name:     "total_merge_keeps_both_sides",
			defaults: Options{"a": 1},
			options:  Options{"b": 2},
			expected: Options{"a": 1, "b": 2},
		},
		{
			name:     "empty_both",
			defaults: nil,
			options:  nil,
			expected: Options{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := mergeOptions(tt.defaults, tt.options)
			if !reflect.DeepEqual(merged, tt.expected) {
				t.Fatalf("expected %#v, got %#v", tt.expected, merged)
			}
		})
	}
}

func TestMergeOptionsNilClearsDefault(t *testing.T) {
	merged := mergeOptions(Options{"filter": "a"}, Options{"filter": nil})
	raw, present := merged["filter"]
	if !present {
		t.Fatalf("key should survive the merge")
	}
	if raw != nil {
		t.Fatalf("expected nil value, got %#v", raw)
	}
}

func TestSnapshotOptionsIsDeepCopy(t *testing.T) {
	merged := Options{
		"scalar": "a",
		"nested": map[string]any{"inner": []any{"x", "y"}},
	}

	snapshot, err := snapshotOptions(merged)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshot["scalar"] = "mutated"
	snapshot["nested"].(map[string]any)["inner"].([]any)[0] = "mutated"

	if merged["scalar"] != "a" {
		t.Fatalf("snapshot mutation leaked into merged options")
	}
	if inner := merged["nested"].(map[string]any)["inner"].([]any); inner[0] != "x" {
		t.Fatalf("nested snapshot mutation leaked: %#v", inner)
	}
}

func TestSnapshotOptionsEmpty(t *testing.T) {
	snapshot, err := snapshotOptions(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot) != 0 {
		t.Fatalf("expected empty snapshot, got %#v", snapshot)
	}
}
