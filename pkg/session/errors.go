package session

import (
	"errors"

	"github.com/phishguard/phishguard/pkg/scan"
)

var (
	// ErrEmptyURL is returned for a blank submission. Nothing is announced
	// and the scanner is not called.
	ErrEmptyURL = scan.ErrEmptyURL

	// ErrBusy is returned when a scan is already in flight.
	ErrBusy = errors.New("session: a scan is already in progress")

	// ErrUnreachable is returned when the scanner could not produce a
	// verdict. Its text is safe to show to users.
	ErrUnreachable = errors.New("session: could not reach scanner")

	// ErrClosed is returned by Run after Close.
	ErrClosed = errors.New("session: closed")
)
