// =============================================================================
// Invoice Readiness Analyzer - Type Inference
// =============================================================================
//
// This module classifies raw scalar values as number, date, string, or
// empty. The inferred type gates which source fields are eligible candidates
// for a canonical schema field during detection.
//
// CLASSIFICATION ORDER:
//   empty -> number -> date -> string
//
//   The ordering matters: a value must fail the number test before the date
//   test is attempted, so numeric-looking strings that would also parse as
//   dates (e.g. epoch seconds) are classified as numbers.
//
// =============================================================================

package detector

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// =============================================================================
// VALUE TYPE
// =============================================================================

// ValueType is the inferred type of a raw scalar value.
type ValueType string

const (
	// TypeEmpty marks nil values and empty strings.
	TypeEmpty ValueType = "empty"

	// TypeNumber marks values that parse fully as a finite float.
	TypeNumber ValueType = "number"

	// TypeDate marks values shaped like a calendar date.
	TypeDate ValueType = "date"

	// TypeString is the fallback for everything else.
	TypeString ValueType = "string"
)

// datePattern matches the accepted date shapes: 4-digit year, one or two
// digit month and day, separated by '-' or '/'.
var datePattern = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)

// =============================================================================
// INFERENCE
// =============================================================================

// InferType classifies a raw scalar value.
//
// RULES:
//   - nil or "" infers empty.
//   - Numeric Go types, and strings that parse entirely as a finite float,
//     infer number. Partial parses ("12abc") do not count.
//   - Strings matching YYYY[-/]M[M][-/]D[D] that denote a real calendar
//     date infer date.
//   - Everything else infers string.
func InferType(value any) ValueType {
	switch v := value.(type) {
	case nil:
		return TypeEmpty
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return TypeString
		}
		return TypeNumber
	case int:
		return TypeNumber
	case string:
		if v == "" {
			return TypeEmpty
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return TypeNumber
		}
		if isCalendarDate(v) {
			return TypeDate
		}
		return TypeString
	default:
		return TypeString
	}
}

// isCalendarDate reports whether s has the accepted date shape and denotes a
// valid calendar date (month 1-12, day valid for that month).
func isCalendarDate(s string) bool {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	if month < 1 || month > 12 || day < 1 {
		return false
	}

	// time.Date normalizes out-of-range days (Feb 30 -> Mar 2); a changed
	// component means the date was not real.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}
