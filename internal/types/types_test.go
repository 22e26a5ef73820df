package types

import "testing"

func TestRowLines(t *testing.T) {
	nested := Row{
		"lines": []any{
			map[string]any{"qty": 2.0},
			"not-a-line",
			map[string]any{"qty": 3.0},
		},
	}
	lines := nested.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 map-valued lines, got %d", len(lines))
	}
	if lines[1]["qty"] != 3.0 {
		t.Fatalf("unexpected line content: %v", lines)
	}

	if (Row{"invoice_id": "A1"}).Lines() != nil {
		t.Fatalf("flat rows have no lines")
	}
	if (Row{"lines": "oops"}).Lines() != nil {
		t.Fatalf("non-array lines value must yield nil")
	}
}
