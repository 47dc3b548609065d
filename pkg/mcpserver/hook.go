package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/phishguard/phishguard/pkg/output/events"
	"github.com/phishguard/phishguard/pkg/session"
)

type requestKey struct{}

// withRequest attaches the tool call that started a scan so hooks running in
// the session goroutine can reach the client.
func withRequest(ctx context.Context, req *mcp.CallToolRequest) context.Context {
	return context.WithValue(ctx, requestKey{}, req)
}

func requestFrom(ctx context.Context) *mcp.CallToolRequest {
	req, _ := ctx.Value(requestKey{}).(*mcp.CallToolRequest)
	return req
}

// progressHook forwards session announcements to the MCP client as progress
// notifications, counting the scanner call as the final step. It implements
// dispatcher.Hook.
type progressHook struct{}

func (h *progressHook) OnEvent(ctx context.Context, event events.Event) error {
	req := requestFrom(ctx)
	if req == nil {
		return nil
	}
	switch e := event.(type) {
	case *events.ProgressEvent:
		notifyProgress(ctx, req, float64(e.Stage), float64(e.Total+1), e.Text)
	case *events.CompleteEvent:
		steps := float64(len(session.Announcements()) + 1)
		notifyProgress(ctx, req, steps, steps, e.Notice.Title)
	case *events.ErrorEvent:
		logToSession(ctx, req, logWarning, e.Message)
	}
	return nil
}

func (h *progressHook) EventTypes() []events.EventType {
	return []events.EventType{events.EventTypeProgress, events.EventTypeComplete, events.EventTypeError}
}
