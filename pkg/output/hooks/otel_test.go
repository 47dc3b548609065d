package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordedOTelHook(t *testing.T) (*OTelHook, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	return newOTelHookWithProvider(OTelOptions{}, tp), sr
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestOTelHook_Defaults(t *testing.T) {
	t.Parallel()
	h, _ := newRecordedOTelHook(t)
	assert.Equal(t, "phishguard", h.ServiceName())
	assert.Equal(t, "localhost:4317", h.Endpoint())
}

func TestOTelHook_SpanPerSession(t *testing.T) {
	t.Parallel()
	h, sr := newRecordedOTelHook(t)

	deliver(t, h, sessionEvents("s1")...)

	ended := sr.Ended()
	require.Len(t, ended, 1)
	span := ended[0]
	assert.Equal(t, "phishguard.scan", span.Name())
	assert.Equal(t, codes.Ok, span.Status().Code)
	assert.Len(t, span.Events(), 4)
	assert.Equal(t, "announcement", span.Events()[0].Name)

	attrs := attrMap(span.Attributes())
	assert.Equal(t, "s1", attrs["scan.id"].AsString())
	assert.Equal(t, "paypa1.co.uk", attrs["scan.domain"].AsString())
	assert.Equal(t, "CRITICAL", attrs["scan.tier"].AsString())
	assert.Equal(t, int64(92), attrs["scan.confidence"].AsInt64())
	assert.Equal(t, "alarm", attrs["scan.notice"].AsString())

	require.NoError(t, h.Close())
}

func TestOTelHook_FailedSession(t *testing.T) {
	t.Parallel()
	h, sr := newRecordedOTelHook(t)

	evs := sessionEvents("s2")
	deliver(t, h, evs[0], evs[1], failedEvent("s2"))

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "Error connecting to scanner engine", ended[0].Status().Description)
	assert.Equal(t, "connect", attrMap(ended[0].Attributes())["error.kind"].AsString())
}

func TestOTelHook_CloseEndsOpenSpans(t *testing.T) {
	t.Parallel()
	h, sr := newRecordedOTelHook(t)

	evs := sessionEvents("s3")
	deliver(t, h, evs[0], evs[1])
	assert.Empty(t, sr.Ended())

	require.NoError(t, h.Close())
	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, codes.Error, sr.Ended()[0].Status().Code)

	deliver(t, h, evs[2:]...)
	assert.Len(t, sr.Ended(), 1, "events after Close are ignored")
}
