// =============================================================================
// Invoice Readiness Analyzer - Rule Findings
// =============================================================================
//
// This file defines the finding type shared by all five rule validators.
//
// FINDING LIFECYCLE:
//   - Created fresh per analysis run, never mutated afterwards
//   - Aggregated into one flat ordered sequence (rule execution order, then
//     occurrence order within a rule)
//   - A rule with zero failures still emits exactly one passing finding, so
//     presentation logic can rely on at least one finding per rule
//
// Rule violations are expected, common-case outcomes. They are always
// returned as data and never as errors; the engine completes a full pass
// over all rows even when every row fails every rule.
//
// =============================================================================

package rules

// =============================================================================
// RULE IDENTIFIERS
// =============================================================================

const (
	// RuleTotalsBalance checks total_excl_vat + vat_amount == total_incl_vat.
	RuleTotalsBalance = "TOTALS_BALANCE"

	// RuleLineMath checks qty * unit_price == line_total per line item.
	RuleLineMath = "LINE_MATH"

	// RuleDateISO checks the issue date is a literal YYYY-MM-DD string.
	RuleDateISO = "DATE_ISO"

	// RuleCurrencyAllowed checks the currency against the allow-list.
	RuleCurrencyAllowed = "CURRENCY_ALLOWED"

	// RuleTRNPresent checks both parties carry a tax registration number.
	RuleTRNPresent = "TRN_PRESENT"
)

// =============================================================================
// FINDING
// =============================================================================

// Finding is one validation outcome. Failure findings carry whatever context
// the rule could determine: the offending row, the expected and actual
// values, the raw value, and a human-readable message.
type Finding struct {
	// Rule is the identifier of the rule that produced this finding.
	Rule string `json:"rule"`

	// OK is true for passing findings.
	OK bool `json:"ok"`

	// ExampleLine is the 1-based row index of a failing example.
	// Zero when the failure is not tied to a specific row.
	ExampleLine int `json:"exampleLine,omitempty"`

	// Expected is the value the rule computed (e.g. excl_vat + vat_amount).
	Expected string `json:"expected,omitempty"`

	// Got is the value the dataset stated.
	Got string `json:"got,omitempty"`

	// Value is the raw offending value for format-style rules.
	Value string `json:"value,omitempty"`

	// Message is a human-readable description of the failure.
	Message string `json:"message,omitempty"`
}

// pass constructs the synthetic passing finding for a rule.
func pass(rule string) Finding {
	return Finding{Rule: rule, OK: true}
}

// noData constructs the failure finding used when a validator receives an
// empty dataset.
func noData(rule string) Finding {
	return Finding{Rule: rule, OK: false, Message: "No data to validate"}
}
