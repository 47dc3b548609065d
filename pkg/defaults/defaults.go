// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for runtime configuration defaults.
//
// Usage:
//
//	cfg.ScannerURL = defaults.ScannerURL
//	req.Header.Set("Content-Type", defaults.ContentTypeJSON)
//
// DO NOT hardcode values like the scanner port or history limit anywhere.
// Reference the appropriate constant from this package instead.
package defaults

import "fmt"

// Version is the current PhishGuard version
const Version = "1.2.0"

// ToolName is the program name used in user agents, telemetry and reports.
const ToolName = "phishguard"

// ProductName is the human-readable product name.
const ProductName = "PhishGuard"

// ============================================================================
// SCANNER SERVICE
// ============================================================================

const (
	// ScannerURL is the base URL of the remote scanning service.
	// The reference backend listens on PORT (default 8000) under /api.
	ScannerURL = "http://localhost:8000/api"

	// HistoryLimit is the number of records the service returns per listing.
	HistoryLimit = 500

	// RateLimit is the default client-side request rate (requests/second).
	RateLimit = 5

	// StatusUnknown is substituted when a scan response omits its status.
	StatusUnknown = "UNKNOWN"
)

// ============================================================================
// RETRY SETTINGS
// ============================================================================

const (
	// RetryNone disables retries (0)
	RetryNone = 0

	// RetryLow is for quick operations (2)
	RetryLow = 2

	// RetryMedium is the standard retry count (3)
	RetryMedium = 3
)

// ============================================================================
// OUTPUT LOCATIONS
// ============================================================================

const (
	// ReportDir is where PDF reports are written when no directory is given.
	ReportDir = "."

	// ArchiveDir is the local scan archive directory.
	ArchiveDir = ".phishguard/archive"

	// MetricsPort is the default Prometheus metrics port.
	MetricsPort = 9464

	// OTelEndpoint is the default OTLP gRPC collector endpoint.
	OTelEndpoint = "localhost:4317"
)

// ============================================================================
// HTTP
// ============================================================================

const (
	// ContentTypeJSON is application/json
	ContentTypeJSON = "application/json"

	// ContentTypeCSV is text/csv
	ContentTypeCSV = "text/csv"

	// ContentTypePDF is application/pdf
	ContentTypePDF = "application/pdf"
)

// UserAgent returns the PhishGuard user agent with context.
func UserAgent(context string) string {
	if context == "" {
		return fmt.Sprintf("%s/%s", ToolName, Version)
	}
	return fmt.Sprintf("%s/%s (%s)", ToolName, Version, context)
}
