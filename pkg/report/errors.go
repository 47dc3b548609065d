package report

import "errors"

var (
	// ErrRender is returned when the document could not be built. It never
	// wraps a scan error.
	ErrRender = errors.New("report: render failed")

	// ErrWrite is returned when a rendered document could not be stored.
	ErrWrite = errors.New("report: write failed")

	// ErrInvalidConfig is returned for unusable branding settings.
	ErrInvalidConfig = errors.New("report: invalid config")
)
