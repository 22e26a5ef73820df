// =============================================================================
// Invoice Readiness Analyzer - Rule Aggregator
// =============================================================================
//
// This module runs all five rule validators over a dataset and combines
// their outputs: a concatenated finding sequence in fixed rule order, the
// rounded mean of the per-rule scores, and the individual score breakdown.
//
// =============================================================================

package rules

import (
	"errors"
	"math"

	"github.com/complyflow/invoice-readiness/internal/types"
)

// ErrEmptyDataset is returned when rule checks are invoked without any rows.
// Callers must not run the rule engine on empty data; recovery is their
// concern, not the engine's.
var ErrEmptyDataset = errors.New("invalid dataset: must be a non-empty list of rows")

// =============================================================================
// RESULT TYPES
// =============================================================================

// Scores is the per-rule score breakdown.
type Scores struct {
	TotalsBalance   int `json:"totalsBalance"`
	LineMath        int `json:"lineMath"`
	DateISO         int `json:"dateISO"`
	CurrencyAllowed int `json:"currencyAllowed"`
	TRNPresent      int `json:"trnPresent"`
}

// Summary is the combined output of all five validators.
type Summary struct {
	// Findings is the concatenation of all validators' findings in fixed
	// order: totals, line math, date, currency, TRN.
	Findings []Finding `json:"ruleFindings"`

	// RulesScore is the rounded mean of the five per-rule scores.
	RulesScore int `json:"rulesScore"`

	// Individual is the per-rule breakdown.
	Individual Scores `json:"individualScores"`
}

// =============================================================================
// AGGREGATION
// =============================================================================

// RunAllChecks executes the five validators over the dataset and aggregates
// their results. It fails fast on an empty dataset; per-row anomalies are
// captured as findings, never as errors.
func RunAllChecks(rows []types.Row) (*Summary, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	totalsFindings, totalsScore := CheckTotalsBalance(rows)
	lineFindings, lineScore := CheckLineMath(rows)
	dateFindings, dateScore := CheckDateISO(rows)
	currencyFindings, currencyScore := CheckCurrencyAllowed(rows)
	trnFindings, trnScore := CheckTRNPresent(rows)

	findings := make([]Finding, 0,
		len(totalsFindings)+len(lineFindings)+len(dateFindings)+len(currencyFindings)+len(trnFindings))
	findings = append(findings, totalsFindings...)
	findings = append(findings, lineFindings...)
	findings = append(findings, dateFindings...)
	findings = append(findings, currencyFindings...)
	findings = append(findings, trnFindings...)

	return &Summary{
		Findings:   findings,
		RulesScore: meanScore(totalsScore, lineScore, dateScore, currencyScore, trnScore),
		Individual: Scores{
			TotalsBalance:   totalsScore,
			LineMath:        lineScore,
			DateISO:         dateScore,
			CurrencyAllowed: currencyScore,
			TRNPresent:      trnScore,
		},
	}, nil
}

// meanScore returns the rounded mean of the given scores.
func meanScore(scores ...int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, score := range scores {
		sum += score
	}
	return int(math.Round(float64(sum) / float64(len(scores))))
}
