package httpclient

import (
	"net/http"

	"github.com/phishguard/phishguard/pkg/defaults"
)

// headerTransport sets the User-Agent and Accept headers on every request
// that does not carry its own.
type headerTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" && t.userAgent != "" {
		r.Header.Set("User-Agent", t.userAgent)
	}
	if r.Header.Get("Accept") == "" {
		r.Header.Set("Accept", defaults.ContentTypeJSON)
	}
	return t.base.RoundTrip(r)
}
