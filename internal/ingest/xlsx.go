// =============================================================================
// Invoice Readiness Analyzer - XLSX Parsing
// =============================================================================
//
// XLSX ingestion via excelize: the first sheet's first row is the header,
// every following row becomes one flat row with the same cell cleanup as
// CSV. Rows shorter than the header are padded with empty cells (trailing
// blank cells are omitted by the XLSX format); rows longer than the header
// are dropped and counted against the data score.
//
// =============================================================================

package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/complyflow/invoice-readiness/internal/types"
)

// parseXLSX parses the first sheet of an XLSX workbook into flat rows. It
// returns the rows, the number of data rows, and the number dropped for
// structural errors.
func parseXLSX(content []byte) ([]types.Row, int, int, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to open XLSX workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, 0, errors.New("XLSX workbook has no sheets")
	}

	records, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, 0, 0, errors.New("XLSX sheet is empty")
	}

	headers := records[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var rows []types.Row
	original := 0
	dropped := 0

	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}

		original++

		if len(record) > len(headers) {
			dropped++
			continue
		}

		row := make(types.Row, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			cell := ""
			if i < len(record) {
				cell = record[i]
			}
			row[header] = cleanCell(cell)
		}
		rows = append(rows, row)
	}

	return rows, original, dropped, nil
}

// isBlankRecord reports whether every cell of the record is blank.
func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
