package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AppliesDefaults(t *testing.T) {
	t.Parallel()

	c := New(Config{})
	assert.Equal(t, DefaultConfig().Timeout, c.Timeout)
	_, ok := c.Transport.(*headerTransport)
	assert.True(t, ok)
}

func TestDefault_Singleton(t *testing.T) {
	t.Parallel()
	assert.Same(t, Default(), Default())
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 2*time.Second, WithTimeout(2*time.Second).Timeout)
}

func TestHeaderTransport_SetsHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
	}))
	defer srv.Close()

	c := New(Config{UserAgent: "phishguard-test/1.0"})
	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "phishguard-test/1.0", gotUA)
	assert.Equal(t, "application/json", gotAccept)
}

func TestHeaderTransport_KeepsCallerHeaders(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom")

	resp, err := New(Config{}).Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "custom", gotUA)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
		kind string
	}{
		{"dns", &net.DNSError{Err: "no such host", Name: "x.invalid"}, ErrDNS, "dns"},
		{"timeout", fmt.Errorf("wrap: %w", timeoutErr{}), ErrTimeout, "timeout"},
		{"deadline", context.DeadlineExceeded, ErrTimeout, "timeout"},
		{"refused", errors.New("connection refused"), ErrConnect, "connect"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tt.in)
			assert.True(t, errors.Is(got, tt.want), "Classify(%v) = %v", tt.in, got)
			assert.Equal(t, tt.kind, Kind(got))
		})
	}

	assert.Nil(t, Classify(nil))
	assert.True(t, errors.Is(Classify(context.Canceled), context.Canceled))
	assert.Equal(t, "canceled", Kind(context.Canceled))
	assert.Equal(t, "none", Kind(nil))
}
