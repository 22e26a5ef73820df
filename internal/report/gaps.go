// =============================================================================
// Invoice Readiness Analyzer - Gap Synthesizer
// =============================================================================
//
// This module turns the coverage partition and the rule findings into the
// ordered list of human-readable gap strings shown at the top of a report.
//
// EMISSION ORDER:
//   1. One gap per missing *required* canonical field, in schema order.
//      Optional fields (seller.city, buyer.city, lines[].description) never
//      become gaps.
//   2. One gap per failing rule finding, in finding order. A rule that fails
//      on many rows therefore repeats its gap sentence once per reported
//      finding.
//
// =============================================================================

package report

import (
	"fmt"

	"github.com/complyflow/invoice-readiness/internal/detector"
	"github.com/complyflow/invoice-readiness/internal/rules"
	"github.com/complyflow/invoice-readiness/internal/schema"
)

// SynthesizeGaps produces the ordered gap list for a report.
func SynthesizeGaps(coverage detector.Coverage, findings []rules.Finding) []string {
	gaps := []string{}

	for _, path := range coverage.Missing {
		field := schema.Lookup(path)
		if field == nil || !field.Required {
			continue
		}
		gaps = append(gaps, fmt.Sprintf("Missing required field: %s", path))
	}

	for _, finding := range findings {
		if finding.OK {
			continue
		}
		switch finding.Rule {
		case rules.RuleTotalsBalance:
			gaps = append(gaps, "Invoice totals do not balance correctly")
		case rules.RuleLineMath:
			gaps = append(gaps, "Line item calculations are incorrect")
		case rules.RuleDateISO:
			gaps = append(gaps, "Date format is not ISO standard (YYYY-MM-DD)")
		case rules.RuleCurrencyAllowed:
			value := finding.Value
			if value == "" {
				value = "unknown"
			}
			gaps = append(gaps, fmt.Sprintf("Invalid currency: %s", value))
		case rules.RuleTRNPresent:
			gaps = append(gaps, "Missing Tax Registration Numbers (TRN)")
		}
	}

	return gaps
}
