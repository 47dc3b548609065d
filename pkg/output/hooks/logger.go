package hooks

import (
	"context"
	"log/slog"

	"github.com/phishguard/phishguard/pkg/output/dispatcher"
	"github.com/phishguard/phishguard/pkg/output/events"
)

// orDefault returns l if non-nil, otherwise slog.Default().
func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

var _ dispatcher.Hook = (*LogHook)(nil)

// LogHook writes every session event to a structured logger. Progress and
// failure causes are logged at debug level.
type LogHook struct {
	logger *slog.Logger
}

// NewLogHook creates a LogHook. A nil logger selects slog.Default().
func NewLogHook(logger *slog.Logger) *LogHook {
	return &LogHook{logger: orDefault(logger)}
}

// OnEvent logs the event.
func (h *LogHook) OnEvent(ctx context.Context, event events.Event) error {
	scanID := slog.String("scan_id", event.ScanID())

	switch e := event.(type) {
	case *events.StartEvent:
		h.logger.InfoContext(ctx, "scan started", scanID, slog.String("target", e.Target))
	case *events.ProgressEvent:
		h.logger.DebugContext(ctx, "scan progress", scanID,
			slog.Int("stage", e.Stage),
			slog.Int("total", e.Total),
			slog.String("text", e.Text))
	case *events.CompleteEvent:
		h.logger.InfoContext(ctx, "scan complete", scanID,
			slog.String("url", e.Result.URL),
			slog.String("tier", e.Result.Tier.String()),
			slog.Int("confidence", e.Result.ConfidenceScore),
			slog.Bool("verified", e.Result.Verified),
			slog.Float64("duration_sec", e.Duration))
	case *events.ErrorEvent:
		h.logger.WarnContext(ctx, "scan failed", scanID,
			slog.String("target", e.Target),
			slog.String("kind", e.Kind))
		// Raw transport text stays out of user-facing levels.
		h.logger.DebugContext(ctx, "scan failure cause", scanID, slog.String("error", e.Cause))
	}
	return nil
}

// EventTypes returns nil: the hook receives all events.
func (h *LogHook) EventTypes() []events.EventType { return nil }
