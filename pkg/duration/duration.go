// Package duration provides canonical time constants for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for time-based configuration.
//
// Usage:
//
//	ctx, cancel := context.WithTimeout(ctx, duration.HTTPAPI)
//	Interval: duration.Announcement,
//
// DO NOT use hardcoded time.Duration values like `30 * time.Second` anywhere.
// Reference the appropriate constant from this package instead.
package duration

import "time"

// ============================================================================
// HTTP CLIENT TIMEOUTS
// ============================================================================

const (
	// HTTPAPI is the total timeout for calls to the scanning service (30s).
	// The remote engine performs WHOIS and DNS lookups before answering.
	HTTPAPI = 30 * time.Second

	// DialTimeout is for establishing TCP connections (10s)
	DialTimeout = 10 * time.Second

	// KeepAlive is the TCP keep-alive interval (30s)
	KeepAlive = 30 * time.Second

	// IdleConnTimeout is how long idle connections stay pooled (90s)
	IdleConnTimeout = 90 * time.Second

	// TLSHandshake is the TLS handshake timeout (10s)
	TLSHandshake = 10 * time.Second
)

// ============================================================================
// SCAN SESSION
// ============================================================================

const (
	// Announcement is how long each progress announcement is held (600ms).
	Announcement = 600 * time.Millisecond
)

// ============================================================================
// RETRY
// ============================================================================

const (
	// RetryFast is the initial backoff for history refreshes (500ms)
	RetryFast = 500 * time.Millisecond

	// RetryMax caps any single backoff delay (5s)
	RetryMax = 5 * time.Second
)

// ============================================================================
// TELEMETRY
// ============================================================================

const (
	// MetricsShutdown bounds metrics server shutdown and read timeouts (5s)
	MetricsShutdown = 5 * time.Second

	// MetricsWrite is the metrics server write timeout (10s)
	MetricsWrite = 10 * time.Second

	// OTelConnect bounds OTLP exporter setup (10s)
	OTelConnect = 10 * time.Second
)
