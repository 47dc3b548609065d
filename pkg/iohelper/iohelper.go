// Package iohelper reads HTTP response bodies with size limits and
// releases connections back to the pool.
package iohelper

import (
	"errors"
	"fmt"
	"io"
)

const (
	// SmallMaxBodySize bounds error payloads kept for diagnostics (8KB).
	SmallMaxBodySize int64 = 8 * 1024

	// DefaultMaxBodySize bounds a single verdict payload (1MB).
	DefaultMaxBodySize int64 = 1024 * 1024

	// HistoryMaxBodySize bounds a history listing (8MB).
	HistoryMaxBodySize int64 = 8 * 1024 * 1024
)

// ErrTooLarge is returned by ReadBodyStrict when the body exceeds the limit.
var ErrTooLarge = errors.New("iohelper: body exceeds size limit")

// ReadBody reads at most maxSize bytes from r. A nil reader yields an
// empty slice.
func ReadBody(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadBodyStrict is like ReadBody but fails instead of truncating.
// Truncated JSON would otherwise surface as a confusing decode error.
func ReadBodyStrict(r io.Reader, maxSize int64) ([]byte, error) {
	data, err := ReadBody(r, maxSize+1)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, maxSize)
	}
	return data, nil
}

// DrainAndClose discards up to 64KB of remaining data and closes r if it
// is a ReadCloser, so the connection can be reused. Always returns nil.
func DrainAndClose(r io.Reader) error {
	if r == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64*1024))
	if rc, ok := r.(io.ReadCloser); ok {
		rc.Close()
	}
	return nil
}
