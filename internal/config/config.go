// =============================================================================
// Invoice Readiness Analyzer - Configuration Module
// =============================================================================
//
// This module loads and validates the application configuration. Settings
// come from a YAML file with environment-variable overrides for the values
// that differ between deployments; a .env file is honored when present.
//
// PRECEDENCE (highest wins):
//   1. Environment variables (PORT, DATABASE_PATH, LOG_LEVEL)
//   2. The YAML configuration file
//   3. Built-in defaults
//
// A missing configuration file is not an error: the defaults describe a
// fully working local setup.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// Port is the TCP port the HTTP service listens on.
	// Default: 8080
	Port int `yaml:"port"`

	// DatabasePath is the SQLite database file location.
	// Default: "./data/readiness.db"
	DatabasePath string `yaml:"database_path"`

	// MaxRows caps the number of dataset rows analyzed per upload.
	// Default: 200
	MaxRows int `yaml:"max_rows"`

	// MaxUploadBytes caps the upload size.
	// Default: 5 MB
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// LogLevel controls logging verbosity.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogJSON switches the log output to JSON (for shipped logs).
	// Default: false (human-readable text)
	LogJSON bool `yaml:"log_json"`

	// CORSOrigins lists the origins allowed to call the HTTP API.
	// Default: ["*"]
	CORSOrigins []string `yaml:"cors_origins"`

	// RecentReportsLimit is the default page size of the recent-reports
	// listing.
	// Default: 10
	RecentReportsLimit int `yaml:"recent_reports_limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:               8080,
		DatabasePath:       "./data/readiness.db",
		MaxRows:            200,
		MaxUploadBytes:     5 * 1024 * 1024,
		LogLevel:           "info",
		LogJSON:            false,
		CORSOrigins:        []string{"*"},
		RecentReportsLimit: 10,
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file, applies environment overrides, and
// validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	// A .env file is optional; ignore the error when it does not exist.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides overlays deployment-specific environment variables.
func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		cfg.DatabasePath = path
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
}

// Validate checks the configuration for values the application cannot run
// with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MaxRows <= 0 {
		return fmt.Errorf("max_rows must be positive, got %d", c.MaxRows)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %q", c.LogLevel)
	}
	return nil
}
