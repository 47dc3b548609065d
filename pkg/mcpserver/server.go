package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/phishguard/phishguard/pkg/defaults"
	"github.com/phishguard/phishguard/pkg/history"
	"github.com/phishguard/phishguard/pkg/jsonutil"
	"github.com/phishguard/phishguard/pkg/output/dispatcher"
	"github.com/phishguard/phishguard/pkg/report"
	"github.com/phishguard/phishguard/pkg/session"
)

// The MCP SDK defines LoggingLevel as a raw string type without exported
// constants.
const (
	logInfo    mcp.LoggingLevel = "info"
	logWarning mcp.LoggingLevel = "warning"
)

// Scanner is the remote scanning service. *scanclient.Client satisfies it.
type Scanner interface {
	session.Scanner
	History(ctx context.Context) ([]history.Record, error)
}

// Config holds MCP server configuration. Every field is optional; tools whose
// backing component is missing report that instead of failing the call.
type Config struct {
	// Scanner runs scans and lists remote history.
	Scanner Scanner

	// Store is the local archive. Completed scans are saved to it and
	// generate_report reads from it.
	Store *history.Store

	// Reports renders PDFs (default: stock branding).
	Reports *report.Generator

	// ReportDir is where generate_report writes (default: defaults.ReportDir).
	ReportDir string

	// Interval is the announcement hold for scan_url. Zero keeps the
	// session default; negative disables the hold.
	Interval time.Duration

	// Hooks receive every scan event in addition to MCP progress.
	Hooks []dispatcher.Hook

	// FailureKind labels scanner errors.
	FailureKind func(error) string

	Logger *slog.Logger
}

// Server wraps the MCP server with PhishGuard functionality.
type Server struct {
	mcp    *mcp.Server
	config *Config
	logger *slog.Logger
	events *dispatcher.Dispatcher
	sess   *session.Session
}

// New creates a new MCP server with all tools, resources, and prompts registered.
func New(cfg *Config) *Server {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Reports == nil {
		cfg.Reports = report.New(report.DefaultConfig())
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = defaults.ReportDir
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		logger: logger,
		events: dispatcher.New(dispatcher.Config{Logger: logger}),
	}
	s.events.RegisterHook(&progressHook{})
	for _, h := range cfg.Hooks {
		s.events.RegisterHook(h)
	}
	if cfg.Scanner != nil {
		s.sess = session.New(cfg.Scanner, session.Options{
			Interval:    cfg.Interval,
			Emitter:     s.events,
			FailureKind: cfg.FailureKind,
			Logger:      logger,
		})
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    defaults.ToolName,
			Title:   "PhishGuard MCP Server",
			Version: defaults.Version,
		},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

const serverInstructions = `PhishGuard classifies URLs as SAFE, CAUTION or CRITICAL using a remote scanning engine.
Use scan_url to analyze a link, history_stats for trends, and generate_report to produce a PDF for a past scan.
classify_label and parse_insight are offline helpers that never contact the scanner.`

// MCPServer returns the underlying MCP server for direct access (e.g., testing).
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

// Close cancels any scan in flight and closes the event hooks.
func (s *Server) Close() error {
	if s.sess != nil {
		s.sess.Close()
	}
	return s.events.Close()
}

// RunStdio runs the MCP server over stdio transport.
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("mcp stdio transport started")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler returns an http.Handler for the streamable HTTP transport with
// a /health endpoint.
//
// The handler mounts:
//   - /health → liveness probe (GET only)
//   - /mcp    → streamable HTTP transport
//   - /       → streamable HTTP transport (default mount)
func (s *Server) HTTPHandler() http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return s.mcp },
		&mcp.StreamableHTTPOptions{Stateless: false},
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/mcp", streamable)
	mux.Handle("/", streamable)

	return corsMiddleware(s.recoveryMiddleware(securityHeaders(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", defaults.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","service":"phishguard-mcp"}`))
}

// corsMiddleware sets CORS headers for browser-based MCP clients. Requests
// without an Origin header pass through untouched.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")

		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers",
			strings.Join([]string{
				"Content-Type",
				"Authorization",
				"Mcp-Session-Id",
				"MCP-Protocol-Version",
				"Last-Event-ID",
				"Accept",
			}, ", "))
		w.Header().Set("Access-Control-Expose-Headers", "Mcp-Session-Id, MCP-Protocol-Version")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware turns a handler panic into a 500.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic in HTTP handler",
					slog.Any("panic", err),
					slog.String("stack", string(debug.Stack())))

				// No-op if headers were already sent.
				w.Header().Set("Content-Type", defaults.ContentTypeJSON)
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal server error"}`))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// ---------------------------------------------------------------------------
// Helpers: result builders
// ---------------------------------------------------------------------------

// notifyProgress sends a progress notification to the client if a progress
// token was provided in the request. Safe to call when session/token is nil.
func notifyProgress(ctx context.Context, req *mcp.CallToolRequest, progress, total float64, message string) {
	if req == nil || req.Params == nil || req.Session == nil {
		return
	}
	token := req.Params.GetProgressToken()
	if token == nil {
		return
	}
	// Progress is advisory; delivery failures are ignored.
	_ = req.Session.NotifyProgress(ctx, &mcp.ProgressNotificationParams{
		ProgressToken: token,
		Progress:      progress,
		Total:         total,
		Message:       message,
	})
}

// logToSession sends a structured log message to the MCP client.
func logToSession(ctx context.Context, req *mcp.CallToolRequest, level mcp.LoggingLevel, data any) {
	if req == nil || req.Session == nil {
		return
	}
	_ = req.Session.Log(ctx, &mcp.LoggingMessageParams{
		Level:  level,
		Logger: defaults.ToolName,
		Data:   data,
	})
}

// textResult creates a CallToolResult with a single text content block.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// jsonResult marshals v to indented JSON and wraps it in a CallToolResult.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := jsonutil.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return textResult(string(data)), nil
}

func errorResult(msg string) *mcp.CallToolResult {
	res := textResult(msg)
	res.IsError = true
	return res
}

func boolPtr(b bool) *bool { return &b }

// parseArgs unmarshals the raw JSON arguments from a tool call into dst.
func parseArgs(req *mcp.CallToolRequest, dst any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := jsonutil.Unmarshal(req.Params.Arguments, dst); err != nil {
		return fmt.Errorf("parsing tool arguments: %w", err)
	}
	return nil
}
