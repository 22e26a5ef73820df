// =============================================================================
// Invoice Readiness Analyzer - Ingestion Module
// =============================================================================
//
// This module parses uploaded invoice datasets into the in-memory row shape
// the engine operates on. Three formats are supported:
//   - CSV  : header row + data rows (flat shape)
//   - JSON : array of objects, possibly with nested seller/buyer/lines
//   - XLSX : first sheet, header row + data rows
//
// FORMAT DETECTION:
//   When the caller does not know the format it is sniffed from the content:
//   a ZIP magic number means XLSX, a leading '[' or '{' means JSON, and a
//   comma in the first line means CSV.
//
// ROW CAP & DATA SCORE:
//   Datasets are capped at 200 rows. The data-quality score is the rounded
//   percentage of original rows that survived parsing, minus a 10-point
//   penalty when rows were dropped for structural errors.
//
// =============================================================================

package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/complyflow/invoice-readiness/internal/types"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// Supported dataset formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// DefaultMaxRows is the dataset-size cap. It bounds the worst-case runtime
// of the similarity search downstream.
const DefaultMaxRows = 200

// ErrEmptyContent is returned when the uploaded content is empty or blank.
var ErrEmptyContent = errors.New("content cannot be empty")

// xlsxMagic is the ZIP local-file-header signature XLSX files start with.
var xlsxMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of parsing one uploaded dataset.
type Result struct {
	// Rows contains the parsed rows, capped at the row limit.
	Rows []types.Row

	// Format is the detected or supplied dataset format.
	Format string

	// OriginalCount is the number of data rows in the raw content.
	OriginalCount int

	// ParsedCount is the number of rows that survived parsing and the cap.
	ParsedCount int

	// DataScore is the 0-100 parse-quality score.
	DataScore int

	// Truncated is true when the row cap dropped rows.
	Truncated bool
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses uploaded content into rows, sniffing the format when the
// supplied format is empty. The row cap is DefaultMaxRows.
func Parse(content []byte, format string) (*Result, error) {
	return ParseWithLimit(content, format, DefaultMaxRows)
}

// ParseWithLimit is Parse with an explicit row cap.
func ParseWithLimit(content []byte, format string, maxRows int) (*Result, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyContent
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	if format == "" {
		detected, err := DetectFormat(content)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	var (
		rows     []types.Row
		original int
		dropped  int
		err      error
	)

	switch format {
	case FormatCSV:
		rows, original, dropped, err = parseCSV(content)
	case FormatJSON:
		rows, original, err = parseJSON(content)
	case FormatXLSX:
		rows, original, dropped, err = parseXLSX(content)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", format)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("no data rows found")
	}

	truncated := len(rows) > maxRows
	if truncated {
		rows = rows[:maxRows]
	}

	return &Result{
		Rows:          rows,
		Format:        format,
		OriginalCount: original,
		ParsedCount:   len(rows),
		DataScore:     dataScore(original, len(rows), dropped > 0),
		Truncated:     truncated,
	}, nil
}

// DetectFormat sniffs the dataset format from raw content.
func DetectFormat(content []byte) (string, error) {
	if bytes.HasPrefix(content, xlsxMagic) {
		return FormatXLSX, nil
	}

	trimmed := strings.TrimSpace(string(content))
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		return FormatJSON, nil
	}

	firstLine, _, _ := strings.Cut(trimmed, "\n")
	if strings.Contains(firstLine, ",") {
		return FormatCSV, nil
	}

	return "", errors.New("unable to detect file type: content is not valid CSV, JSON, or XLSX")
}

// FormatForFilename maps a file name to a dataset format by extension.
// Unknown extensions return "" so Parse falls back to content sniffing.
func FormatForFilename(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON
	case strings.HasSuffix(lower, ".xlsx"):
		return FormatXLSX
	default:
		return ""
	}
}

// =============================================================================
// DATA SCORE
// =============================================================================

// dataScore computes the 0-100 parse-quality score: the rounded percentage
// of original rows that survived, minus 10 when rows were dropped for
// structural errors.
func dataScore(original, parsed int, hadErrors bool) int {
	if original <= 0 {
		return 0
	}

	score := int(math.Round(float64(parsed) / float64(original) * 100))
	if hadErrors {
		score -= 10
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// cleanCell canonicalizes one raw cell value: trimmed, and parsed to a
// float64 when the text is fully numeric. This keeps CSV and XLSX cells
// shaped like JSON-decoded values.
func cleanCell(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if f, ok := parseNumeric(trimmed); ok {
		return f
	}
	return trimmed
}
