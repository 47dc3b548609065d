package hooks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/phishguard/phishguard/pkg/output/dispatcher"
	"github.com/phishguard/phishguard/pkg/output/events"
	"github.com/phishguard/phishguard/pkg/ui"
)

var _ dispatcher.Hook = (*ConsoleHook)(nil)

// ConsoleHook renders the session to a terminal: one line per
// announcement, then the notice and the verdict card.
type ConsoleHook struct {
	mu      sync.Mutex
	w       io.Writer
	verdict bool
}

// ConsoleOptions configures the console hook.
type ConsoleOptions struct {
	// Writer receives the output (default: ui.Output()).
	Writer io.Writer

	// HideVerdict suppresses the verdict card, printing only the notice.
	HideVerdict bool
}

// NewConsoleHook creates a ConsoleHook.
func NewConsoleHook(opts ConsoleOptions) *ConsoleHook {
	w := opts.Writer
	if w == nil {
		w = ui.Output()
	}
	return &ConsoleHook{w: w, verdict: !opts.HideVerdict}
}

// OnEvent renders the event.
func (h *ConsoleHook) OnEvent(_ context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch e := event.(type) {
	case *events.StartEvent:
		_, err := fmt.Fprintf(h.w, "\n  Scanning %s\n", ui.URLStyle.Render(e.Target))
		return err
	case *events.ProgressEvent:
		_, err := fmt.Fprintln(h.w, ui.RenderAnnouncement(e.Stage, e.Total, e.Icon, e.Text))
		return err
	case *events.CompleteEvent:
		if _, err := fmt.Fprintf(h.w, "\n%s\n\n", ui.RenderNotice(e.Notice)); err != nil {
			return err
		}
		if h.verdict {
			_, err := fmt.Fprint(h.w, ui.RenderVerdict(e.Result))
			return err
		}
	case *events.ErrorEvent:
		_, err := fmt.Fprintf(h.w, "\n%s\n", ui.RenderNotice(e.Notice))
		return err
	}
	return nil
}

// EventTypes returns nil: the hook receives all events.
func (h *ConsoleHook) EventTypes() []events.EventType { return nil }
