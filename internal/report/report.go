// =============================================================================
// Invoice Readiness Analyzer - Report Types & Score Composition
// =============================================================================
//
// This module defines the externally visible report structure and the score
// composer that combines the four component scores into one overall
// readiness score.
//
// SCORE WEIGHTS (fixed):
//   data     25%   - parse quality of the uploaded dataset
//   coverage 35%   - canonical schema coverage
//   rules    30%   - business-rule pass rates
//   posture  10%   - technical-readiness questionnaire
//
// READINESS TIERS:
//   overall >= 80  -> High
//   overall >= 60  -> Medium
//   otherwise      -> Low
//
// =============================================================================

package report

import (
	"math"

	"github.com/complyflow/invoice-readiness/internal/detector"
	"github.com/complyflow/invoice-readiness/internal/rules"
	"github.com/complyflow/invoice-readiness/internal/types"
)

// =============================================================================
// SCORE WEIGHTS
// =============================================================================

const (
	weightData     = 0.25
	weightCoverage = 0.35
	weightRules    = 0.30
	weightPosture  = 0.10
)

// Posture contributions of the three questionnaire answers. The sum is
// capped at 100.
const (
	postureWebhooks = 40
	postureSandbox  = 40
	postureRetries  = 20
)

// Readiness labels.
const (
	ReadinessHigh   = "High"
	ReadinessMedium = "Medium"
	ReadinessLow    = "Low"
)

// =============================================================================
// REPORT STRUCTURE
// =============================================================================

// ComponentScores holds the four component scores plus the composed overall
// score, all integers in [0, 100].
type ComponentScores struct {
	Data     int `json:"data"`
	Coverage int `json:"coverage"`
	Rules    int `json:"rules"`
	Posture  int `json:"posture"`
	Overall  int `json:"overall"`
}

// Meta carries analysis metadata alongside the scores.
type Meta struct {
	// RowsParsed is the number of rows that survived ingestion.
	RowsParsed int `json:"rowsParsed"`

	// LinesTotal is the total number of line items across all rows.
	LinesTotal int `json:"linesTotal"`

	// Country and ERP describe the caller's context as supplied at upload.
	Country string `json:"country"`
	ERP     string `json:"erp"`

	// ProcessingMS is the wall-clock analysis time in milliseconds.
	ProcessingMS int64 `json:"processingTimeMs"`

	// ReadinessLabel is the three-tier classification of the overall score.
	ReadinessLabel string `json:"readinessLabel"`
}

// Report is the complete result of one analysis invocation. It is created
// once per invocation and never mutated afterwards; persistence and expiry
// are the caller's concern.
type Report struct {
	ReportID     string            `json:"reportId"`
	Scores       ComponentScores   `json:"scores"`
	Coverage     detector.Coverage `json:"coverage"`
	RuleFindings []rules.Finding   `json:"ruleFindings"`
	Gaps         []string          `json:"gaps"`
	Meta         Meta              `json:"meta"`
}

// =============================================================================
// SCORE COMPOSITION
// =============================================================================

// PostureScore converts the questionnaire into a 0-100 posture score.
func PostureScore(q types.Questionnaire) int {
	score := 0
	if q.Webhooks {
		score += postureWebhooks
	}
	if q.Sandbox {
		score += postureSandbox
	}
	if q.Retries {
		score += postureRetries
	}
	if score > 100 {
		score = 100
	}
	return score
}

// OverallScore combines the four component scores with the fixed weights.
// The result is clamped to [0, 100] regardless of the inputs, so adversarial
// component scores cannot push it out of range.
func OverallScore(data, coverage, rulesScore, posture int) int {
	overall := int(math.Round(
		float64(data)*weightData +
			float64(coverage)*weightCoverage +
			float64(rulesScore)*weightRules +
			float64(posture)*weightPosture))

	if overall < 0 {
		return 0
	}
	if overall > 100 {
		return 100
	}
	return overall
}

// ReadinessLabel maps an overall score to its three-tier classification.
func ReadinessLabel(overall int) string {
	switch {
	case overall >= 80:
		return ReadinessHigh
	case overall >= 60:
		return ReadinessMedium
	default:
		return ReadinessLow
	}
}
