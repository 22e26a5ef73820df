// =============================================================================
// Invoice Readiness Analyzer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (readiness)
//   ├── analyzeCmd (readiness analyze)
//   ├── serveCmd   (readiness serve)
//   └── versionCmd (readiness version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/complyflow/invoice-readiness/internal/config"
)

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "readiness",
	Short: "Invoice Readiness Analyzer - score invoice datasets against the GETS schema",
	Long: `Invoice Readiness Analyzer ingests small tabular invoice datasets (CSV,
JSON, or XLSX), infers which columns correspond to the canonical GETS invoice
schema, validates business-rule consistency, and produces a weighted 0-100
readiness score with human-readable gaps.

Key Features:
  - Fuzzy field detection with confidence-weighted coverage scoring
  - Five business-rule validators (totals, line math, dates, currency, TRN)
  - Three-tier readiness classification (High / Medium / Low)
  - Offline CLI analysis and a JSON HTTP API

Example Usage:
  readiness analyze invoices.csv               # Analyze a file, report to stdout
  readiness analyze data.json --webhooks       # Include questionnaire answers
  readiness serve                              # Start the HTTP service`,

	Run: func(cmd *cobra.Command, args []string) {
		// No subcommand: print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the persistent flags shared by all subcommands.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (default is config.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// loadConfig loads the configuration and applies the --verbose override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	config.ConfigureLogger(cfg)
	return cfg, nil
}
