// =============================================================================
// Invoice Readiness Analyzer - File Utilities
// =============================================================================
//
// File helpers shared by the CLI and the service:
//   - Size-limited dataset reading (uploads are capped at a few megabytes)
//   - Directory preparation for the SQLite database and report output
//   - Pretty-printed report JSON writing
//
// =============================================================================

package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultMaxFileBytes is the upload size cap: 5 MB.
const DefaultMaxFileBytes = 5 * 1024 * 1024

// ReadFileLimited reads a dataset file, refusing anything larger than
// maxBytes. A non-positive maxBytes falls back to DefaultMaxFileBytes.
func ReadFileLimited(path string, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input file: %w", err)
	}
	if info.Size() > maxBytes {
		return nil, fmt.Errorf("file too large: %d bytes (maximum is %d)", info.Size(), maxBytes)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return content, nil
}

// ReadAllLimited drains a reader up to maxBytes and errors when the stream
// is longer. Used for HTTP upload bodies.
func ReadAllLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}

	content, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(content)) > maxBytes {
		return nil, fmt.Errorf("upload too large: maximum is %d bytes", maxBytes)
	}
	return content, nil
}

// EnsureDir creates the directory (and parents) for the given path when it
// does not already exist.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// WriteJSONFile pretty-prints a value as JSON into the given file, creating
// the parent directory when needed.
func WriteJSONFile(path string, value any) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	content, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(path, append(content, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
