package detector

import (
	"testing"

	"github.com/complyflow/invoice-readiness/internal/schema"
	"github.com/complyflow/invoice-readiness/internal/types"
)

// exactRow carries an exact synonym for every canonical field with a
// type-compatible sample value.
func exactRow() types.Row {
	return types.Row{
		"invoice_id":     "INV-1",
		"issue_date":     "2025-01-31",
		"currency":       "USD",
		"total_excl_vat": 100.0,
		"vat_amount":     5.0,
		"total_incl_vat": 105.0,
		"seller_name":    "Acme Trading",
		"seller_trn":     "TRN-1",
		"seller_country": "AE",
		"seller_city":    "Dubai",
		"buyer_name":     "Globex",
		"buyer_trn":      "TRN-2",
		"buyer_country":  "SA",
		"buyer_city":     "Riyadh",
		"line_sku":       "SKU-1",
		"description":    "Widget",
		"line_qty":       2.0,
		"unit_price":     50.0,
		"line_total":     100.0,
	}
}

func TestDetectFieldsEmptyDataset(t *testing.T) {
	coverage := DetectFields(nil)
	if len(coverage.Matched) != 0 || len(coverage.Close) != 0 {
		t.Fatalf("empty dataset expected no matches, got %d matched %d close",
			len(coverage.Matched), len(coverage.Close))
	}
	if len(coverage.Missing) != len(schema.Fields) {
		t.Fatalf("expected all %d fields missing, got %d", len(schema.Fields), len(coverage.Missing))
	}
}

func TestDetectFieldsAllExact(t *testing.T) {
	coverage := DetectFields([]types.Row{exactRow()})
	if len(coverage.Matched) != 19 {
		t.Fatalf("expected all 19 fields matched, got %d matched, %d close, %d missing\nclose: %v\nmissing: %v",
			len(coverage.Matched), len(coverage.Close), len(coverage.Missing),
			coverage.Close, coverage.Missing)
	}
	if got := CoverageScore(coverage); got != 100 {
		t.Fatalf("expected coverage score 100, got %d", got)
	}
}

func TestDetectFieldsPartitionInvariant(t *testing.T) {
	datasets := [][]types.Row{
		nil,
		{exactRow()},
		{{"foo": "x", "zzz": "y"}},
		{{"slr_country": "AE", "invoice_id": "A1"}},
		{{"invoice_id": "A1", "lines": []any{map[string]any{"qty": 2.0, "unit_price": 5.0}}}},
	}
	for i, rows := range datasets {
		coverage := DetectFields(rows)
		total := len(coverage.Matched) + len(coverage.Close) + len(coverage.Missing)
		if total != len(schema.Fields) {
			t.Fatalf("dataset %d: partition covers %d fields, expected %d", i, total, len(schema.Fields))
		}
	}
}

func TestDetectFieldsZeroOverlap(t *testing.T) {
	coverage := DetectFields([]types.Row{{"foo": "x", "zzz": "y"}})
	if len(coverage.Matched) != 0 || len(coverage.Close) != 0 {
		t.Fatalf("expected no matches, got matched %v close %v", coverage.Matched, coverage.Close)
	}
	if got := CoverageScore(coverage); got != 0 {
		t.Fatalf("expected coverage score 0, got %d", got)
	}
}

func TestExactVariantBeatsFuzzy(t *testing.T) {
	// invNo_x scores high fuzzy similarity to inv_no, but the literal
	// invoice_no variant must win with confidence 1.0.
	coverage := DetectFields([]types.Row{{"invoice_no": "A1", "invNo_x": "A2"}})

	found := false
	for _, path := range coverage.Matched {
		if path == schema.InvoiceID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected invoice.id in matched, got matched %v close %v",
			coverage.Matched, coverage.Close)
	}
	for _, cm := range coverage.Close {
		if cm.Target == schema.InvoiceID {
			t.Fatalf("invoice.id must not be a close match: %+v", cm)
		}
	}
}

func TestDetectFieldsCloseMatch(t *testing.T) {
	coverage := DetectFields([]types.Row{{"slr_country": "AE"}})

	var match *CloseMatch
	for i := range coverage.Close {
		if coverage.Close[i].Target == schema.SellerCountry {
			match = &coverage.Close[i]
		}
	}
	if match == nil {
		t.Fatalf("expected seller.country close match, got matched %v close %v missing %v",
			coverage.Matched, coverage.Close, coverage.Missing)
	}
	if match.Candidate != "slr_country" {
		t.Fatalf("expected candidate slr_country, got %q", match.Candidate)
	}
	if match.Confidence < similarityFloor || match.Confidence >= matchThreshold {
		t.Fatalf("expected confidence in [0.6, 0.8), got %v", match.Confidence)
	}
}

func TestTypeCompatible(t *testing.T) {
	cases := []struct {
		inferred ValueType
		expected schema.FieldType
		ok       bool
	}{
		{TypeEmpty, schema.TypeNumber, true},
		{TypeEmpty, schema.TypeEnum, true},
		{TypeString, schema.TypeEnum, true},
		{TypeNumber, schema.TypeEnum, false},
		{TypeNumber, schema.TypeNumber, true},
		{TypeDate, schema.TypeDate, true},
		{TypeString, schema.TypeNumber, false},
	}
	for _, tc := range cases {
		if got := typeCompatible(tc.inferred, tc.expected); got != tc.ok {
			t.Fatalf("typeCompatible(%s, %s) expected %v, got %v", tc.inferred, tc.expected, tc.ok, got)
		}
	}
}

func TestFlattenSampleNested(t *testing.T) {
	row := types.Row{
		"invoice_id": "A1",
		"seller":     map[string]any{"name": "Acme", "trn": "T1"},
		"lines":      []any{map[string]any{"qty": 2.0, "unit_price": 5.0}},
	}
	fields := flattenSample(row)

	names := make(map[string]bool, len(fields))
	for _, f := range fields {
		names[f.name] = true
	}
	for _, want := range []string{"invoice_id", "seller.name", "seller.trn", "lines[].qty", "lines[].unit_price"} {
		if !names[want] {
			t.Fatalf("expected flattened field %q, got %v", want, names)
		}
	}
	if names["seller"] || names["lines"] {
		t.Fatalf("container fields must not appear as candidates: %v", names)
	}
}

func TestFlattenSampleFlatLineHeuristic(t *testing.T) {
	fields := flattenSample(types.Row{"lineQty": 2.0, "seller_name": "Acme"})

	names := make(map[string]bool, len(fields))
	for _, f := range fields {
		names[f.name] = true
	}
	if !names["lineQty"] || !names["lines[].lineQty"] {
		t.Fatalf("line-looking field must appear under both names, got %v", names)
	}
	if names["lines[].seller_name"] {
		t.Fatalf("seller_name must not be re-exposed as a line candidate")
	}
}

func TestCoverageScore(t *testing.T) {
	allMatched := Coverage{Matched: []string{}, Close: []CloseMatch{}, Missing: []string{}}
	for i := range schema.Fields {
		allMatched.Matched = append(allMatched.Matched, schema.Fields[i].Path)
	}
	if got := CoverageScore(allMatched); got != 100 {
		t.Fatalf("all matched expected 100, got %d", got)
	}

	empty := Coverage{Matched: []string{}, Close: []CloseMatch{}, Missing: []string{}}
	if got := CoverageScore(empty); got != 0 {
		t.Fatalf("empty coverage expected 0, got %d", got)
	}

	// weight 3 * 0.7 confidence * 0.7 discount = 1.47 of 37 -> 4
	closeOnly := Coverage{Close: []CloseMatch{{Target: schema.InvoiceID, Confidence: 0.7}}}
	if got := CoverageScore(closeOnly); got != 4 {
		t.Fatalf("close-only coverage expected 4, got %d", got)
	}
}

func TestCoverageScoreMonotonicInConfidence(t *testing.T) {
	low := CoverageScore(Coverage{Close: []CloseMatch{{Target: schema.InvoiceIssueDate, Confidence: 0.61}}})
	high := CoverageScore(Coverage{Close: []CloseMatch{{Target: schema.InvoiceIssueDate, Confidence: 0.79}}})
	if high < low {
		t.Fatalf("coverage score must not decrease with confidence: %d -> %d", low, high)
	}
}
