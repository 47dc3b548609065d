// Package writers provides dispatcher.Writer implementations for
// persisting session events.
package writers

import (
	"io"
	"sync"

	"github.com/phishguard/phishguard/pkg/jsonutil"
	"github.com/phishguard/phishguard/pkg/output/dispatcher"
	"github.com/phishguard/phishguard/pkg/output/events"
)

var _ dispatcher.Writer = (*JSONLWriter)(nil)

// JSONLWriter writes events as newline-delimited JSON. Each line parses
// on its own, so the stream can be tailed and piped through jq.
type JSONLWriter struct {
	w       io.Writer
	mu      sync.Mutex
	opts    JSONLOptions
	encoder *jsonutil.Encoder
}

// JSONLOptions configures the JSONL writer behavior.
type JSONLOptions struct {
	// OmitProgress drops announcement events.
	OmitProgress bool

	// OmitInsights strips raw insight strings from complete events,
	// keeping the parsed details only.
	OmitInsights bool
}

// NewJSONLWriter creates a new JSONL writer that writes to w.
// The writer is safe for concurrent use.
func NewJSONLWriter(w io.Writer, opts JSONLOptions) *JSONLWriter {
	return &JSONLWriter{
		w:       w,
		opts:    opts,
		encoder: jsonutil.NewStreamEncoder(w),
	}
}

// Write writes an event as a single JSON line.
func (jw *JSONLWriter) Write(event events.Event) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.opts.OmitInsights {
		if ce, ok := event.(*events.CompleteEvent); ok && ce.Result != nil {
			filtered := *ce
			res := *ce.Result
			res.Insights = nil
			filtered.Result = &res
			return jw.encoder.Encode(&filtered)
		}
	}

	return jw.encoder.Encode(event)
}

// Flush is a no-op: every event is written immediately.
func (jw *JSONLWriter) Flush() error {
	return nil
}

// Close closes the underlying writer if it implements io.Closer.
func (jw *JSONLWriter) Close() error {
	if closer, ok := jw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SupportsEvent reports whether the event type is written.
func (jw *JSONLWriter) SupportsEvent(t events.EventType) bool {
	return !(jw.opts.OmitProgress && t == events.EventTypeProgress)
}
