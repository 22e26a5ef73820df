// =============================================================================
// Invoice Readiness Analyzer - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Invoice Readiness Analyzer. It
// initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   readiness analyze <file>   - Analyze a dataset file and print the report
//   readiness serve            - Start the HTTP service
//   readiness version          - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : core engine and service plumbing
//   - pkg/           : shared utilities
//
// =============================================================================

package main

import (
	"github.com/complyflow/invoice-readiness/cmd"
)

// main simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
