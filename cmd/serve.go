// =============================================================================
// Invoice Readiness Analyzer - Serve Command
// =============================================================================
//
// This file defines the 'serve' command: run the HTTP API server backed by
// the SQLite store, exposing upload, analyze, and report endpoints.
//
// COMMAND USAGE:
//   readiness serve [flags]
//
// FLAGS:
//   --port : Override the configured listen port
//
// =============================================================================

package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/complyflow/invoice-readiness/internal/config"
	"github.com/complyflow/invoice-readiness/internal/server"
	"github.com/complyflow/invoice-readiness/internal/store"
)

// portOverride replaces the configured port when non-zero.
var portOverride int

// serveCmd represents the 'serve' command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the readiness analysis HTTP API",
	Long: `The serve command starts the HTTP API server. Uploaded datasets and
generated reports are persisted in the configured SQLite database.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// init registers the serve command and its flags.
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(
		&portOverride,
		"port",
		0,
		"Override the configured listen port",
	)
}

// runServe loads configuration, opens the store, and runs the server until
// it exits.
func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if portOverride != 0 {
		cfg.Port = portOverride
	}
	log := config.GetLogger()

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	log.WithFields(logrus.Fields{
		"port":     cfg.Port,
		"database": cfg.DatabasePath,
	}).Info("starting readiness API server")

	return server.New(cfg, st, log).Run()
}
