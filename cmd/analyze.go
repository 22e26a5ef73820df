// =============================================================================
// Invoice Readiness Analyzer - Analyze Command
// =============================================================================
//
// This file defines the 'analyze' command: offline analysis of a single
// dataset file, with the report printed to stdout or written to a file.
//
// COMMAND USAGE:
//   readiness analyze <file> [flags]
//
// FLAGS:
//   --output      : Write the report JSON to a file instead of stdout
//   --country     : Country context recorded in the report metadata
//   --erp         : ERP context recorded in the report metadata
//   --webhooks    : Questionnaire: the caller's system receives webhooks
//   --sandbox     : Questionnaire: a sandbox environment is available
//   --retries     : Questionnaire: failed calls are retried
//
// ANALYSIS PIPELINE:
//   1. Read the dataset file (CSV, JSON, or XLSX by extension, sniffed
//      otherwise)
//   2. Parse rows and compute the data-quality score
//   3. Run field detection, rule checks, and score composition
//   4. Print or write the assembled report JSON
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/complyflow/invoice-readiness/internal/analyzer"
	"github.com/complyflow/invoice-readiness/internal/config"
	"github.com/complyflow/invoice-readiness/internal/ingest"
	"github.com/complyflow/invoice-readiness/internal/types"
	"github.com/complyflow/invoice-readiness/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// outputPath is the file the report JSON is written to; stdout when empty.
var outputPath string

// country and erp describe the caller's context in the report metadata.
var country string
var erp string

// Questionnaire answers.
var qWebhooks bool
var qSandbox bool
var qRetries bool

// =============================================================================
// ANALYZE COMMAND DEFINITION
// =============================================================================

// analyzeCmd represents the 'analyze' command.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a dataset file and print the readiness report",
	Long: `The analyze command parses a single invoice dataset file, runs the full
readiness analysis (field detection, coverage scoring, business-rule checks,
score composition), and prints the report as JSON.

The file format is determined by extension (.csv, .json, .xlsx) and sniffed
from the content otherwise. Datasets are capped at the configured row limit.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(args[0])
	},
}

// init registers the analyze command and its flags.
func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(
		&outputPath,
		"output",
		"o",
		"",
		"Write the report JSON to this file instead of stdout",
	)

	analyzeCmd.Flags().StringVar(
		&country,
		"country",
		"Not specified",
		"Country context recorded in the report metadata",
	)

	analyzeCmd.Flags().StringVar(
		&erp,
		"erp",
		"Not specified",
		"ERP context recorded in the report metadata",
	)

	analyzeCmd.Flags().BoolVar(
		&qWebhooks,
		"webhooks",
		false,
		"Questionnaire: the caller's system can receive webhooks",
	)

	analyzeCmd.Flags().BoolVar(
		&qSandbox,
		"sandbox",
		false,
		"Questionnaire: a sandbox environment is available",
	)

	analyzeCmd.Flags().BoolVar(
		&qRetries,
		"retries",
		false,
		"Questionnaire: failed calls are retried",
	)
}

// =============================================================================
// MAIN ANALYSIS FUNCTION
// =============================================================================

// runAnalyze executes the offline analysis pipeline for one file.
func runAnalyze(path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := config.GetLogger()

	// =========================================================================
	// STEP 1: READ & PARSE THE DATASET
	// =========================================================================

	content, err := utils.ReadFileLimited(path, cfg.MaxUploadBytes)
	if err != nil {
		return err
	}

	result, err := ingest.ParseWithLimit(content, ingest.FormatForFilename(path), cfg.MaxRows)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	log.WithFields(logrus.Fields{
		"format":    result.Format,
		"rows":      result.ParsedCount,
		"dataScore": result.DataScore,
	}).Debug("dataset parsed")

	// =========================================================================
	// STEP 2: RUN THE ANALYSIS PIPELINE
	// =========================================================================

	rpt, err := analyzer.New(log).Run(analyzer.Input{
		Rows: result.Rows,
		Questionnaire: types.Questionnaire{
			Webhooks: qWebhooks,
			Sandbox:  qSandbox,
			Retries:  qRetries,
		},
		DataScore: result.DataScore,
		Country:   country,
		ERP:       erp,
	})
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: EMIT THE REPORT
	// =========================================================================

	if outputPath != "" {
		if err := utils.WriteJSONFile(outputPath, rpt); err != nil {
			return err
		}
		fmt.Printf("Report %s written to %s (overall %d, %s)\n",
			rpt.ReportID, outputPath, rpt.Scores.Overall, rpt.Meta.ReadinessLabel)
		return nil
	}

	encoded, err := json.MarshalIndent(rpt, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(encoded))
	return nil
}
