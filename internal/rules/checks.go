// =============================================================================
// Invoice Readiness Analyzer - Rule Validators
// =============================================================================
//
// This module implements the five business-rule validators. Each validator
// scans the entire dataset (not just the sample row used for detection) and
// returns its findings plus a 0-100 pass-rate score.
//
// VALIDATORS:
//   1. TOTALS_BALANCE   : excl_vat + vat_amount vs incl_vat (0.01 tolerance)
//   2. LINE_MATH        : qty * unit_price vs line_total per line item
//   3. DATE_ISO         : issue date is a literal YYYY-MM-DD calendar date
//   4. CURRENCY_ALLOWED : currency in {AED, SAR, MYR, USD}, case-insensitive
//   5. TRN_PRESENT      : buyer and seller TRNs present and non-blank
//
// SYNONYM TOLERANCE:
//   All value lookups go through the shared schema synonym table, so the
//   validators accept the same alternate spellings the detector matches.
//   Missing required fields count as failures, not skips: an absent amount
//   resolves to zero and fails the arithmetic naturally.
//
// NUMERIC COMPARISON:
//   Amounts are compared with shopspring/decimal so that values like 0.1 +
//   0.2 balance exactly; the tolerance is a fixed 0.01.
//
// =============================================================================

package rules

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/complyflow/invoice-readiness/internal/schema"
	"github.com/complyflow/invoice-readiness/internal/types"
)

// tolerance is the maximum absolute difference two amounts may have while
// still being considered equal.
var tolerance = decimal.RequireFromString("0.01")

// maxLineExamples caps the number of reported LINE_MATH failure examples.
const maxLineExamples = 5

// isoDatePattern is the strict literal shape the DATE_ISO rule requires.
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// =============================================================================
// VALUE RESOLUTION
// =============================================================================

// resolveDecimal resolves a canonical numeric field within a row or line
// item. Missing or unparseable values resolve to zero, so absent amounts
// fail balance checks instead of skipping them.
func resolveDecimal(row types.Row, path string) decimal.Decimal {
	value, ok := schema.Resolve(row, path)
	if !ok || value == nil {
		return decimal.Zero
	}
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// withinTolerance reports whether two amounts differ by at most the 0.01
// tolerance.
func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().Cmp(tolerance) <= 0
}

// scoreOf converts a pass count over a denominator into a rounded 0-100
// score. A zero denominator scores zero; never divide by zero.
func scoreOf(passCount, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(passCount) / float64(total) * 100))
}

// =============================================================================
// TOTALS_BALANCE
// =============================================================================

// CheckTotalsBalance verifies total_excl_vat + vat_amount equals
// total_incl_vat for every row, within tolerance.
func CheckTotalsBalance(rows []types.Row) ([]Finding, int) {
	if len(rows) == 0 {
		return []Finding{noData(RuleTotalsBalance)}, 0
	}

	var findings []Finding
	passCount := 0

	for i, row := range rows {
		excl := resolveDecimal(row, schema.InvoiceTotalExclVAT)
		vat := resolveDecimal(row, schema.InvoiceVATAmount)
		incl := resolveDecimal(row, schema.InvoiceTotalInclVAT)

		computed := excl.Add(vat)
		if withinTolerance(computed, incl) {
			passCount++
			continue
		}

		findings = append(findings, Finding{
			Rule:        RuleTotalsBalance,
			OK:          false,
			ExampleLine: i + 1,
			Expected:    computed.String(),
			Got:         incl.String(),
			Message:     fmt.Sprintf("Total mismatch: %s + %s != %s", excl, vat, incl),
		})
	}

	if len(findings) == 0 {
		findings = append(findings, pass(RuleTotalsBalance))
	}

	return findings, scoreOf(passCount, len(rows))
}

// =============================================================================
// LINE_MATH
// =============================================================================

// CheckLineMath verifies qty * unit_price equals line_total for every line
// item, within tolerance. Nested rows contribute each element of their lines
// array; a flat row is itself one line item, but only when it carries at
// least one line field (qty, unit price, or line total) under any synonym.
// A dataset with no line items at all fails with a single "No line items
// found" finding rather than passing vacuously. The score denominator is the
// total number of line items across all rows, and failure examples are
// capped at maxLineExamples.
func CheckLineMath(rows []types.Row) ([]Finding, int) {
	if len(rows) == 0 {
		return []Finding{noData(RuleLineMath)}, 0
	}

	var findings []Finding
	passCount := 0
	totalLines := 0

	checkLine := func(line types.Row, rowIndex, lineIndex int, nested bool) {
		totalLines++

		qty := resolveDecimal(line, schema.LineQty)
		unitPrice := resolveDecimal(line, schema.LineUnitPrice)
		lineTotal := resolveDecimal(line, schema.LineTotal)

		computed := qty.Mul(unitPrice)
		if withinTolerance(computed, lineTotal) {
			passCount++
			return
		}

		if len(findings) >= maxLineExamples {
			return
		}

		message := fmt.Sprintf("Row %d: %s x %s != %s", rowIndex+1, qty, unitPrice, lineTotal)
		if nested {
			message = fmt.Sprintf("Line %d: %s x %s != %s", lineIndex+1, qty, unitPrice, lineTotal)
		}

		findings = append(findings, Finding{
			Rule:        RuleLineMath,
			OK:          false,
			ExampleLine: rowIndex + 1,
			Expected:    computed.String(),
			Got:         lineTotal.String(),
			Message:     message,
		})
	}

	for rowIndex, row := range rows {
		if lines := row.Lines(); len(lines) > 0 {
			for lineIndex, line := range lines {
				checkLine(line, rowIndex, lineIndex, true)
			}
			continue
		}
		if hasLineFields(row) {
			checkLine(row, rowIndex, 0, false)
		}
	}

	if totalLines == 0 {
		// Every row was flat with no line fields under any synonym.
		return []Finding{{Rule: RuleLineMath, OK: false, Message: "No line items found"}}, 0
	}
	if len(findings) == 0 {
		findings = append(findings, pass(RuleLineMath))
	}

	return findings, scoreOf(passCount, totalLines)
}

// hasLineFields reports whether a flat row carries any of the line-item
// fields under any known synonym.
func hasLineFields(row types.Row) bool {
	for _, path := range []string{schema.LineQty, schema.LineUnitPrice, schema.LineTotal} {
		if _, ok := schema.Resolve(row, path); ok {
			return true
		}
	}
	return false
}

// =============================================================================
// DATE_ISO
// =============================================================================

// CheckDateISO verifies the issue date of every row is a literal YYYY-MM-DD
// string denoting a real calendar date. The literal must round-trip through
// date parsing to the identical string; "2025-02-30" has the right shape but
// is not a date.
func CheckDateISO(rows []types.Row) ([]Finding, int) {
	if len(rows) == 0 {
		return []Finding{noData(RuleDateISO)}, 0
	}

	var findings []Finding
	passCount := 0

	for i, row := range rows {
		literal, ok := schema.ResolveString(row, schema.InvoiceIssueDate)
		if !ok || literal == "" {
			findings = append(findings, Finding{
				Rule:        RuleDateISO,
				OK:          false,
				ExampleLine: i + 1,
				Message:     "Missing date field",
			})
			continue
		}

		if !isoDatePattern.MatchString(literal) {
			findings = append(findings, Finding{
				Rule:        RuleDateISO,
				OK:          false,
				ExampleLine: i + 1,
				Value:       literal,
				Message:     "Date format must be YYYY-MM-DD",
			})
			continue
		}

		parsed, err := time.Parse("2006-01-02", literal)
		if err != nil || parsed.Format("2006-01-02") != literal {
			findings = append(findings, Finding{
				Rule:        RuleDateISO,
				OK:          false,
				ExampleLine: i + 1,
				Value:       literal,
				Message:     "Invalid date value",
			})
			continue
		}

		passCount++
	}

	if len(findings) == 0 {
		findings = append(findings, pass(RuleDateISO))
	}

	return findings, scoreOf(passCount, len(rows))
}

// =============================================================================
// CURRENCY_ALLOWED
// =============================================================================

// CheckCurrencyAllowed verifies the currency of every row is one of the
// allowed codes, case-insensitively.
func CheckCurrencyAllowed(rows []types.Row) ([]Finding, int) {
	if len(rows) == 0 {
		return []Finding{noData(RuleCurrencyAllowed)}, 0
	}

	var findings []Finding
	passCount := 0

	for i, row := range rows {
		currency, ok := schema.ResolveString(row, schema.InvoiceCurrency)
		if !ok || currency == "" {
			findings = append(findings, Finding{
				Rule:        RuleCurrencyAllowed,
				OK:          false,
				ExampleLine: i + 1,
				Message:     "Missing currency field",
			})
			continue
		}

		if currencyAllowed(currency) {
			passCount++
			continue
		}

		findings = append(findings, Finding{
			Rule:        RuleCurrencyAllowed,
			OK:          false,
			ExampleLine: i + 1,
			Value:       currency,
			Message: fmt.Sprintf("Currency '%s' not allowed. Must be one of: %s",
				currency, strings.Join(schema.AllowedCurrencies, ", ")),
		})
	}

	if len(findings) == 0 {
		findings = append(findings, pass(RuleCurrencyAllowed))
	}

	return findings, scoreOf(passCount, len(rows))
}

// currencyAllowed reports whether the code is in the allow-list.
func currencyAllowed(code string) bool {
	upper := strings.ToUpper(code)
	for _, allowed := range schema.AllowedCurrencies {
		if upper == allowed {
			return true
		}
	}
	return false
}

// =============================================================================
// TRN_PRESENT
// =============================================================================

// CheckTRNPresent verifies both the buyer and the seller tax registration
// numbers are present and non-blank after trimming.
func CheckTRNPresent(rows []types.Row) ([]Finding, int) {
	if len(rows) == 0 {
		return []Finding{noData(RuleTRNPresent)}, 0
	}

	var findings []Finding
	passCount := 0

	for i, row := range rows {
		buyerTRN, _ := schema.ResolveString(row, schema.BuyerTRN)
		sellerTRN, _ := schema.ResolveString(row, schema.SellerTRN)

		if buyerTRN != "" && sellerTRN != "" {
			passCount++
			continue
		}

		var missing []string
		if buyerTRN == "" {
			missing = append(missing, schema.BuyerTRN)
		}
		if sellerTRN == "" {
			missing = append(missing, schema.SellerTRN)
		}

		findings = append(findings, Finding{
			Rule:        RuleTRNPresent,
			OK:          false,
			ExampleLine: i + 1,
			Message:     fmt.Sprintf("Missing TRN fields: %s", strings.Join(missing, ", ")),
		})
	}

	if len(findings) == 0 {
		findings = append(findings, pass(RuleTRNPresent))
	}

	return findings, scoreOf(passCount, len(rows))
}
