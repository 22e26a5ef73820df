// =============================================================================
// Invoice Readiness Analyzer - Identifier Utilities
// =============================================================================
//
// Upload and report identifiers are short, prefixed, URL-safe tokens derived
// from random UUIDs:
//
//   uploads:  u_3f9c21ab04de
//   reports:  r_81b02e77c4aa
//
// =============================================================================

package utils

import (
	"strings"

	"github.com/google/uuid"
)

// idLength is the number of hex characters kept from the UUID.
const idLength = 12

// NewUploadID returns a fresh upload identifier.
func NewUploadID() string {
	return "u_" + shortToken()
}

// NewReportID returns a fresh report identifier.
func NewReportID() string {
	return "r_" + shortToken()
}

// shortToken derives a 12-character hex token from a random UUID.
func shortToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}
