// =============================================================================
// Invoice Readiness Analyzer - JSON Parsing
// =============================================================================
//
// JSON ingestion: the content must be an array of objects. Nested
// seller/buyer objects and lines arrays are preserved as-is so the nested
// row shape reaches the engine unchanged.
//
// =============================================================================

package ingest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/complyflow/invoice-readiness/internal/types"
)

// parseJSON parses a JSON array of objects into rows. It returns the rows
// and the array length.
func parseJSON(content []byte) ([]types.Row, int, error) {
	var raw []any
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, 0, fmt.Errorf("JSON parsing error: %w", err)
	}
	if len(raw) == 0 {
		return nil, 0, errors.New("JSON array cannot be empty")
	}

	rows := make([]types.Row, 0, len(raw))
	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, 0, fmt.Errorf("item at index %d must be an object", i)
		}
		rows = append(rows, types.Row(obj))
	}

	return rows, len(raw), nil
}
