// =============================================================================
// Invoice Readiness Analyzer - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - ingest
//   - detector
//   - rules
//   - analyzer
//
// =============================================================================

package types

// =============================================================================
// SOURCE ROW
// =============================================================================

// Row represents one record of uploaded invoice data: a mapping from
// arbitrary source field names to scalar or nested values.
//
// Two shapes are supported and both flow through the engine unchanged:
//
//	Flat (CSV style):    {"inv_id": "A1", "lineQty": 5, "linePrice": 10}
//	Nested (JSON style): {"invoice_id": "A1",
//	                      "seller": {"name": "...", "trn": "..."},
//	                      "lines": [{"qty": 5, "unit_price": 10}]}
//
// Scalar values are string or float64 (numbers are parsed during ingestion),
// nested objects are map[string]any, and line arrays are []any of
// map[string]any. All rows in one dataset are assumed structurally
// homogeneous.
type Row map[string]any

// Lines returns the nested line-item array of the row, or nil when the row
// uses the flat shape. Only map-valued elements are returned.
func (r Row) Lines() []Row {
	raw, ok := r["lines"]
	if !ok {
		return nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil
	}
	lines := make([]Row, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok {
			lines = append(lines, Row(m))
		}
	}
	return lines
}

// =============================================================================
// QUESTIONNAIRE
// =============================================================================

// Questionnaire is the three-item technical-readiness questionnaire supplied
// alongside the dataset. It drives the posture score only; it is never
// inferred from the data itself.
type Questionnaire struct {
	// Webhooks indicates whether the caller's system can receive webhooks.
	Webhooks bool `json:"webhooks"`

	// Sandbox indicates whether a sandbox environment is available.
	Sandbox bool `json:"sandbox_env"`

	// Retries indicates whether the caller's integration retries failed calls.
	Retries bool `json:"retries"`
}
