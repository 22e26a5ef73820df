// =============================================================================
// Invoice Readiness Analyzer - CSV Parsing
// =============================================================================
//
// CSV ingestion: the first record is the header row, every following record
// becomes one flat row keyed by the trimmed headers. Records with a field
// count that does not match the header are dropped (and counted, so the
// data score reflects them); blank lines are skipped by the reader.
//
// =============================================================================

package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/complyflow/invoice-readiness/internal/types"
)

// parseCSV parses CSV content into flat rows. It returns the rows, the
// number of data records in the raw content, and the number of records
// dropped for structural errors.
func parseCSV(content []byte) ([]types.Row, int, int, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, 0, errors.New("CSV content is empty")
		}
		return nil, 0, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var rows []types.Row
	original := 0
	dropped := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Malformed record: count it against the data score and move on.
			original++
			dropped++
			continue
		}

		original++

		if len(record) != len(headers) {
			dropped++
			continue
		}

		row := make(types.Row, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			row[header] = cleanCell(record[i])
		}
		rows = append(rows, row)
	}

	return rows, original, dropped, nil
}

// parseNumeric parses a fully numeric string into a float64. Partial parses
// and non-finite values are rejected.
func parseNumeric(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
