package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phishguard/phishguard/pkg/defaults"
	"github.com/phishguard/phishguard/pkg/duration"
	"github.com/phishguard/phishguard/pkg/output/dispatcher"
	"github.com/phishguard/phishguard/pkg/output/events"
)

var _ dispatcher.Hook = (*PrometheusHook)(nil)

// PrometheusHook exposes scan session metrics for Prometheus scraping.
type PrometheusHook struct {
	server   *http.Server
	listener net.Listener
	registry *prometheus.Registry
	opts     PrometheusOptions
	logger   *slog.Logger

	scansTotal         *prometheus.CounterVec
	failuresTotal      *prometheus.CounterVec
	insightsTotal      *prometheus.CounterVec
	announcementsTotal prometheus.Counter
	durationSeconds    *prometheus.HistogramVec
	confidenceScore    *prometheus.HistogramVec

	mu     sync.Mutex
	closed bool
}

// PrometheusOptions configures the Prometheus hook behavior.
type PrometheusOptions struct {
	// Port for the metrics server (default: 9464). A negative port
	// disables the server; metrics stay available through Handler.
	Port int

	// Path for the metrics endpoint (default: "/metrics").
	Path string

	// ReadTimeout for the HTTP server (default: 5s).
	ReadTimeout time.Duration

	// WriteTimeout for the HTTP server (default: 10s).
	WriteTimeout time.Duration

	Logger *slog.Logger
}

// NewPrometheusHook creates the hook and, unless disabled, starts serving
// metrics immediately. The server runs until Close.
func NewPrometheusHook(opts PrometheusOptions) (*PrometheusHook, error) {
	if opts.Port == 0 {
		opts.Port = defaults.MetricsPort
	}
	if opts.Path == "" {
		opts.Path = "/metrics"
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = duration.MetricsShutdown
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = duration.MetricsWrite
	}

	hook := &PrometheusHook{
		registry: prometheus.NewRegistry(),
		opts:     opts,
		logger:   orDefault(opts.Logger),
	}

	if err := hook.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	if opts.Port > 0 {
		if err := hook.startServer(); err != nil {
			return nil, fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	return hook, nil
}

func (h *PrometheusHook) initMetrics() error {
	ns := defaults.ToolName

	h.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Name:      "scans_total",
			Help:      "Completed scans by risk tier and verified-entity flag",
		},
		[]string{"tier", "verified"},
	)

	h.failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Name:      "scan_failures_total",
			Help:      "Scans that failed to reach a verdict, by failure kind",
		},
		[]string{"kind"},
	)

	h.insightsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Name:      "insights_total",
			Help:      "Insights reported by completed scans, by severity",
		},
		[]string{"severity"},
	)

	h.announcementsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: ns,
			Name:      "announcements_total",
			Help:      "Progress announcements shown",
		},
	)

	h.durationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "scan_duration_seconds",
			Help:      "Wall time from submission to verdict or failure",
			Buckets:   []float64{0.5, 1, 2.5, 3, 5, 10, 20, 30, 60},
		},
		[]string{"outcome"},
	)

	h.confidenceScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "confidence_score",
			Help:      "Confidence score distribution of completed scans",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		},
		[]string{"tier"},
	)

	for _, c := range []prometheus.Collector{
		h.scansTotal,
		h.failuresTotal,
		h.insightsTotal,
		h.announcementsTotal,
		h.durationSeconds,
		h.confidenceScore,
	} {
		if err := h.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler returns the metrics HTTP handler.
func (h *PrometheusHook) Handler() http.Handler {
	return promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the hook's private registry.
func (h *PrometheusHook) Registry() *prometheus.Registry { return h.registry }

func (h *PrometheusHook) startServer() error {
	mux := http.NewServeMux()
	mux.Handle(h.opts.Path, h.Handler())

	ln, err := net.Listen("tcp", ":"+strconv.Itoa(h.opts.Port))
	if err != nil {
		return err
	}
	h.listener = ln

	h.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  h.opts.ReadTimeout,
		WriteTimeout: h.opts.WriteTimeout,
	}

	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("metrics server error", slog.String("error", err.Error()))
		}
	}()
	return nil
}

// OnEvent updates metrics from session events.
func (h *PrometheusHook) OnEvent(_ context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	switch e := event.(type) {
	case *events.ProgressEvent:
		h.announcementsTotal.Inc()
	case *events.CompleteEvent:
		h.handleComplete(e)
	case *events.ErrorEvent:
		kind := e.Kind
		if kind == "" {
			kind = "other"
		}
		h.failuresTotal.WithLabelValues(kind).Inc()
		h.durationSeconds.WithLabelValues("failure").Observe(e.Duration)
	}
	return nil
}

func (h *PrometheusHook) handleComplete(e *events.CompleteEvent) {
	res := e.Result
	if res == nil {
		return
	}
	tier := res.Tier.String()

	// Labels stay bounded: the scanned domain is user input.
	h.scansTotal.WithLabelValues(tier, strconv.FormatBool(res.Verified)).Inc()
	h.durationSeconds.WithLabelValues("success").Observe(e.Duration)
	h.confidenceScore.WithLabelValues(tier).Observe(float64(res.ConfidenceScore))
	for _, in := range res.Details {
		h.insightsTotal.WithLabelValues(in.Severity.String()).Inc()
	}
}

// EventTypes returns the event types this hook handles.
func (h *PrometheusHook) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeProgress,
		events.EventTypeComplete,
		events.EventTypeError,
	}
}

// Close shuts down the metrics server.
func (h *PrometheusHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), duration.MetricsShutdown)
		defer cancel()
		return h.server.Shutdown(ctx)
	}
	return nil
}

// MetricsAddr returns the URL where metrics are served, or "" when the
// server is disabled.
func (h *PrometheusHook) MetricsAddr() string {
	if h.listener == nil {
		return ""
	}
	port := h.listener.Addr().(*net.TCPAddr).Port
	return fmt.Sprintf("http://localhost:%d%s", port, h.opts.Path)
}
