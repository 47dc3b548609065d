package hooks

import (
	"context"
	"log/slog"

	"github.com/phishguard/phishguard/pkg/history"
	"github.com/phishguard/phishguard/pkg/output/dispatcher"
	"github.com/phishguard/phishguard/pkg/output/events"
)

var _ dispatcher.Hook = (*ArchiveHook)(nil)

// ArchiveHook saves completed scan results to the local archive so reports
// can be regenerated later without rescanning.
type ArchiveHook struct {
	store  *history.Store
	logger *slog.Logger
}

// ArchiveHookOptions configures the archive hook.
type ArchiveHookOptions struct {
	// StorePath is the archive directory.
	StorePath string

	// Store, when set, is used instead of opening StorePath.
	Store *history.Store

	// Logger for structured logging (default: slog.Default()).
	Logger *slog.Logger
}

// NewArchiveHook creates an archive hook.
func NewArchiveHook(opts ArchiveHookOptions) (*ArchiveHook, error) {
	store := opts.Store
	if store == nil {
		var err error
		store, err = history.NewStore(opts.StorePath)
		if err != nil {
			return nil, err
		}
	}
	return &ArchiveHook{store: store, logger: orDefault(opts.Logger)}, nil
}

// Store returns the underlying archive.
func (h *ArchiveHook) Store() *history.Store { return h.store }

// OnEvent saves the result of a CompleteEvent. Save failures are logged
// and never fail the session.
func (h *ArchiveHook) OnEvent(ctx context.Context, event events.Event) error {
	complete, ok := event.(*events.CompleteEvent)
	if !ok || complete.Result == nil {
		return nil
	}

	if err := h.store.Save(complete.Result); err != nil {
		h.logger.WarnContext(ctx, "failed to archive scan result",
			slog.String("scan_id", complete.ScanID()),
			slog.String("error", err.Error()))
		return nil
	}

	h.logger.DebugContext(ctx, "archived scan result",
		slog.String("scan_id", complete.ScanID()),
		slog.String("url", complete.Result.URL))
	return nil
}

// EventTypes returns the event types this hook handles.
func (h *ArchiveHook) EventTypes() []events.EventType {
	return []events.EventType{events.EventTypeComplete}
}
