package scanclient

import (
	"context"
	"errors"

	"github.com/phishguard/phishguard/pkg/httpclient"
)

// Sentinel errors for scanner service failures.
var (
	// ErrTransport indicates the request never produced a response.
	ErrTransport = errors.New("scanclient: transport failure")

	// ErrStatus indicates a non-2xx response.
	ErrStatus = errors.New("scanclient: unexpected status")

	// ErrMalformed indicates a response body that is not JSON of the
	// expected shape at all.
	ErrMalformed = errors.New("scanclient: malformed response")

	// ErrBaseURL indicates an unusable base URL.
	ErrBaseURL = errors.New("scanclient: invalid base URL")
)

// FailureKind returns a short label for a client error, suitable for
// events and metric labels.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrTransport):
		return httpclient.Kind(err)
	}
	return "other"
}
