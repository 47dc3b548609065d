package hooks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/phishguard/phishguard/pkg/defaults"
	"github.com/phishguard/phishguard/pkg/duration"
	"github.com/phishguard/phishguard/pkg/output/dispatcher"
	"github.com/phishguard/phishguard/pkg/output/events"
	"github.com/phishguard/phishguard/pkg/scan"
)

var _ dispatcher.Hook = (*OTelHook)(nil)

// OTelHook exports one span per scan session to an OpenTelemetry
// collector. Announcements become span events; the verdict becomes span
// attributes.
type OTelHook struct {
	opts           OTelOptions
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	mu     sync.Mutex
	spans  map[string]trace.Span
	closed bool
}

// OTelOptions configures the OpenTelemetry hook behavior.
type OTelOptions struct {
	// Endpoint is the OTLP gRPC endpoint (default: "localhost:4317").
	Endpoint string

	// ServiceName is the service name for traces (default: "phishguard").
	ServiceName string

	// Insecure uses a plaintext connection.
	Insecure bool

	// Headers contains additional headers for the OTLP exporter.
	Headers map[string]string

	// ShutdownTimeout bounds the final flush (default: 5s).
	ShutdownTimeout time.Duration

	// ConnectionTimeout bounds exporter setup (default: 10s).
	ConnectionTimeout time.Duration
}

func (o *OTelOptions) applyDefaults() {
	if o.ServiceName == "" {
		o.ServiceName = defaults.ToolName
	}
	if o.Endpoint == "" {
		o.Endpoint = defaults.OTelEndpoint
	}
	if o.ShutdownTimeout == 0 {
		o.ShutdownTimeout = duration.MetricsShutdown
	}
	if o.ConnectionTimeout == 0 {
		o.ConnectionTimeout = duration.OTelConnect
	}
}

// NewOTelHook creates a hook exporting to the configured endpoint. The
// exporter connects lazily, so an absent collector never blocks a scan.
func NewOTelHook(opts OTelOptions) (*OTelHook, error) {
	opts.applyDefaults()

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("otel: create exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(opts.ServiceName)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return newOTelHookWithProvider(opts, tp), nil
}

func newResource(service string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(service),
		semconv.ServiceVersion(defaults.Version),
		attribute.String("service.component", "scan-session"),
	)
}

func newOTelHookWithProvider(opts OTelOptions, tp *sdktrace.TracerProvider) *OTelHook {
	opts.applyDefaults()
	return &OTelHook{
		opts:           opts,
		tracerProvider: tp,
		tracer:         tp.Tracer(defaults.ToolName + "/session"),
		spans:          make(map[string]trace.Span),
	}
}

// OnEvent maps session events onto the session span.
func (h *OTelHook) OnEvent(ctx context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	switch e := event.(type) {
	case *events.StartEvent:
		_, span := h.tracer.Start(ctx, "phishguard.scan",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithTimestamp(e.Timestamp()),
			trace.WithAttributes(
				attribute.String("scan.id", e.ScanID()),
				attribute.String("scan.target", e.Target),
				attribute.String("scan.domain", scan.RegisteredDomain(e.Target)),
			),
		)
		h.spans[e.ScanID()] = span

	case *events.ProgressEvent:
		if span, ok := h.spans[e.ScanID()]; ok {
			span.AddEvent("announcement", trace.WithTimestamp(e.Timestamp()), trace.WithAttributes(
				attribute.Int("stage", e.Stage),
				attribute.Int("total", e.Total),
				attribute.String("text", e.Text),
			))
		}

	case *events.CompleteEvent:
		span, ok := h.spans[e.ScanID()]
		if !ok || e.Result == nil {
			return nil
		}
		res := e.Result
		span.SetAttributes(
			attribute.String("scan.tier", res.Tier.String()),
			attribute.Int("scan.confidence", res.ConfidenceScore),
			attribute.Bool("scan.verified", res.Verified),
			attribute.String("scan.status", res.StatusLabel),
			attribute.Int("scan.insights", len(res.Details)),
			attribute.String("scan.notice", string(e.Notice.Class)),
		)
		span.SetStatus(codes.Ok, "")
		span.End(trace.WithTimestamp(e.Timestamp()))
		delete(h.spans, e.ScanID())

	case *events.ErrorEvent:
		span, ok := h.spans[e.ScanID()]
		if !ok {
			return nil
		}
		span.SetAttributes(attribute.String("error.kind", e.Kind))
		if e.Cause != "" {
			span.RecordError(errors.New(e.Cause))
		}
		span.SetStatus(codes.Error, e.Message)
		span.End(trace.WithTimestamp(e.Timestamp()))
		delete(h.spans, e.ScanID())
	}
	return nil
}

// EventTypes returns nil: the hook receives all events.
func (h *OTelHook) EventTypes() []events.EventType { return nil }

// Close ends any open span and flushes pending telemetry.
func (h *OTelHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for id, span := range h.spans {
		span.SetStatus(codes.Error, "session closed")
		span.End()
		delete(h.spans, id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.opts.ShutdownTimeout)
	defer cancel()
	if err := h.tracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("otel: shutdown tracer provider: %w", err)
	}
	return nil
}

// Endpoint returns the OTLP endpoint being used.
func (h *OTelHook) Endpoint() string { return h.opts.Endpoint }

// ServiceName returns the service name being used.
func (h *OTelHook) ServiceName() string { return h.opts.ServiceName }
