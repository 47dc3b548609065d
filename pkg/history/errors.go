package history

import "errors"

// Sentinel errors for archive failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrNotFound indicates no archived scan has the requested ID.
	ErrNotFound = errors.New("history: scan not found")

	// ErrCorruptIndex indicates the archive index could not be decoded.
	ErrCorruptIndex = errors.New("history: corrupt archive index")
)
