// Package scanclient talks to the remote scanning service: it submits URLs
// for analysis, lists the shared scan history and asks for it to be cleared.
package scanclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/phishguard/phishguard/pkg/defaults"
	"github.com/phishguard/phishguard/pkg/history"
	"github.com/phishguard/phishguard/pkg/httpclient"
	"github.com/phishguard/phishguard/pkg/iohelper"
	"github.com/phishguard/phishguard/pkg/jsonutil"
	"github.com/phishguard/phishguard/pkg/retry"
	"github.com/phishguard/phishguard/pkg/scan"
)

// Options configures a Client. Zero values select defaults.
type Options struct {
	// HTTPClient is used for all requests (default: httpclient.Default()).
	HTTPClient *http.Client

	// RateLimit caps requests per second; <= 0 disables limiting.
	RateLimit float64

	// Retry is the policy for History. Scan and ClearHistory are never
	// retried because neither is idempotent on the service side.
	Retry *retry.Config

	Logger *slog.Logger
}

// Client is a scanning service client. It is safe for concurrent use.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	retry   retry.Config
	logger  *slog.Logger
}

// New creates a client for the service at baseURL, e.g.
// "http://localhost:8000/api". An empty baseURL selects the default.
func New(baseURL string, opts Options) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaults.ScannerURL
	}
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURL, baseURL)
	}

	c := &Client{
		base:   strings.TrimRight(u.String(), "/"),
		http:   opts.HTTPClient,
		retry:  retry.APIConfig(),
		logger: opts.Logger,
	}
	if c.http == nil {
		c.http = httpclient.Default()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if opts.Retry != nil {
		c.retry = *opts.Retry
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c, nil
}

// BaseURL returns the normalized service base URL.
func (c *Client) BaseURL() string { return c.base }

// Scan submits one URL for analysis.
func (c *Client) Scan(ctx context.Context, req scan.Request) (*scan.Response, error) {
	body, err := jsonutil.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("scanclient: encode request: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/scan", body, iohelper.DefaultMaxBodySize)
	if err != nil {
		return nil, err
	}

	resp, err := decodeScanResponse(data)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("scan response",
		slog.String("url", resp.URL),
		slog.String("risk_level", resp.RiskLevel),
		slog.Int("confidence", resp.ConfidenceScore))
	return resp, nil
}

// History lists prior scans, newest first as ordered by the service.
// Transport errors and 5xx responses are retried with backoff.
func (c *Client) History(ctx context.Context) ([]history.Record, error) {
	var records []history.Record

	cfg := c.retry
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		c.logger.Warn("history fetch failed, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
			slog.Duration("delay", delay))
	}

	err := retry.Do(ctx, cfg, func() error {
		data, err := c.do(ctx, http.MethodGet, "/history", nil, iohelper.HistoryMaxBodySize)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && se.Code < 500 {
				return retry.Stop(err)
			}
			return err
		}
		recs, err := decodeHistory(data)
		if err != nil {
			return retry.Stop(err)
		}
		records = recs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ClearHistory asks the service to delete all stored scan history.
func (c *Client) ClearHistory(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/history", nil, iohelper.SmallMaxBodySize)
	return err
}

// StatusError carries the HTTP status of a non-2xx response. It matches
// ErrStatus with errors.Is.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", ErrStatus, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

func (c *Client) do(ctx context.Context, method, path string, body []byte, limit int64) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", defaults.ContentTypeJSON)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, httpclient.Classify(err))
	}
	defer iohelper.DrainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := iohelper.ReadBody(resp.Body, iohelper.SmallMaxBodySize)
		c.logger.Debug("scanner returned error status",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}

	data, err := iohelper.ReadBodyStrict(resp.Body, limit)
	if err != nil {
		if errors.Is(err, iohelper.ErrTooLarge) {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	return data, nil
}
