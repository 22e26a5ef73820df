// =============================================================================
// Invoice Readiness Analyzer - Analysis Pipeline
// =============================================================================
//
// This module orchestrates one analysis run over a parsed dataset, from
// field detection to the assembled report.
//
// ANALYSIS PIPELINE:
//   1. Detect canonical fields on the sample row (coverage partition)
//   2. Score coverage
//   3. Run the five rule validators over all rows
//   4. Compose the posture and overall scores
//   5. Synthesize the gap list
//   6. Assemble the immutable report with metadata
//
// CONCURRENCY:
//   The pipeline is pure, synchronous computation with no shared mutable
//   state. An Analyzer can run any number of analyses concurrently; each
//   invocation receives its own row list and returns a freshly constructed
//   report with no aliasing into caller-owned structures.
//
// =============================================================================

package analyzer

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/complyflow/invoice-readiness/internal/detector"
	"github.com/complyflow/invoice-readiness/internal/report"
	"github.com/complyflow/invoice-readiness/internal/rules"
	"github.com/complyflow/invoice-readiness/internal/types"
	"github.com/complyflow/invoice-readiness/pkg/utils"
)

// =============================================================================
// INPUT STRUCTURE
// =============================================================================

// Input carries everything one analysis run needs. Rows and the data score
// come from ingestion; the questionnaire and country/ERP context come from
// the caller.
type Input struct {
	// Rows is the parsed dataset. Must be non-empty.
	Rows []types.Row

	// Questionnaire is the technical-readiness questionnaire.
	Questionnaire types.Questionnaire

	// DataScore is the 0-100 parse-quality score computed at ingestion.
	DataScore int

	// Country and ERP describe the caller's context.
	Country string
	ERP     string
}

// =============================================================================
// ANALYZER
// =============================================================================

// Analyzer runs analysis pipelines. The zero value is not usable; construct
// with New.
type Analyzer struct {
	log *logrus.Logger
}

// New creates an Analyzer that logs through the given logger.
func New(log *logrus.Logger) *Analyzer {
	return &Analyzer{log: log}
}

// Run executes the full analysis pipeline and returns the assembled report.
// It fails only on invalid input (empty dataset); every per-row anomaly is
// captured inside the report as findings and gaps.
func (a *Analyzer) Run(in Input) (*report.Report, error) {
	startTime := time.Now()

	if len(in.Rows) == 0 {
		return nil, fmt.Errorf("failed to analyze dataset: %w", rules.ErrEmptyDataset)
	}

	// =========================================================================
	// STEP 1-2: FIELD DETECTION & COVERAGE
	// =========================================================================

	coverage := detector.DetectFields(in.Rows)
	coverageScore := detector.CoverageScore(coverage)

	a.log.WithFields(logrus.Fields{
		"matched": len(coverage.Matched),
		"close":   len(coverage.Close),
		"missing": len(coverage.Missing),
		"score":   coverageScore,
	}).Debug("field detection complete")

	// =========================================================================
	// STEP 3: RULE CHECKS
	// =========================================================================

	summary, err := rules.RunAllChecks(in.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to run rule checks: %w", err)
	}

	a.log.WithFields(logrus.Fields{
		"findings": len(summary.Findings),
		"score":    summary.RulesScore,
	}).Debug("rule checks complete")

	// =========================================================================
	// STEP 4: SCORE COMPOSITION
	// =========================================================================

	postureScore := report.PostureScore(in.Questionnaire)
	overall := report.OverallScore(in.DataScore, coverageScore, summary.RulesScore, postureScore)

	// =========================================================================
	// STEP 5-6: GAPS & REPORT ASSEMBLY
	// =========================================================================

	gaps := report.SynthesizeGaps(coverage, summary.Findings)

	result := &report.Report{
		ReportID: utils.NewReportID(),
		Scores: report.ComponentScores{
			Data:     in.DataScore,
			Coverage: coverageScore,
			Rules:    summary.RulesScore,
			Posture:  postureScore,
			Overall:  overall,
		},
		Coverage:     coverage,
		RuleFindings: summary.Findings,
		Gaps:         gaps,
		Meta: report.Meta{
			RowsParsed:     len(in.Rows),
			LinesTotal:     countLineItems(in.Rows),
			Country:        in.Country,
			ERP:            in.ERP,
			ProcessingMS:   time.Since(startTime).Milliseconds(),
			ReadinessLabel: report.ReadinessLabel(overall),
		},
	}

	a.log.WithFields(logrus.Fields{
		"reportId":  result.ReportID,
		"overall":   overall,
		"readiness": result.Meta.ReadinessLabel,
	}).Info("analysis complete")

	return result, nil
}

// countLineItems sums the nested line-item counts across all rows. Flat rows
// contribute nothing here; the metadata mirrors the nested shape only.
func countLineItems(rows []types.Row) int {
	total := 0
	for _, row := range rows {
		total += len(row.Lines())
	}
	return total
}
