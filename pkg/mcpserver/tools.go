package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/phishguard/phishguard/pkg/history"
	"github.com/phishguard/phishguard/pkg/insight"
	"github.com/phishguard/phishguard/pkg/output/events"
	"github.com/phishguard/phishguard/pkg/risk"
	"github.com/phishguard/phishguard/pkg/scan"
	"github.com/phishguard/phishguard/pkg/session"
)

// registerTools adds all PhishGuard tools to the MCP server.
func (s *Server) registerTools() {
	s.addClassifyLabelTool()
	s.addParseInsightTool()
	s.addScanURLTool()
	s.addHistoryStatsTool()
	s.addGenerateReportTool()
}

// ═══════════════════════════════════════════════════════════════════════════
// classify_label: Map a risk/status label to a tier
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addClassifyLabelTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "classify_label",
			Title: "Classify Risk Label",
			Description: `Map a free-form risk or status label to PhishGuard's three-tier verdict WITHOUT contacting the scanner.

USE THIS TOOL WHEN:
• A record or third-party feed carries a label like "Medium", "low" or "VERIFIED" and you need the tier
• Explaining why a stored scan was shown as CAUTION or CRITICAL

DO NOT USE THIS TOOL WHEN:
• You want to analyze a URL — use 'scan_url' instead

EXAMPLE INPUTS:
• {"risk_level": "Medium"}
• {"risk_level": "SAFE", "status": "VERIFIED"}

Returns: tier (SAFE/CAUTION/CRITICAL), verified flag, and the user-facing verdict message.
Unrecognized labels classify as CRITICAL.`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"risk_level": map[string]any{
						"type":        "string",
						"description": "Risk label as reported by the scanner or a history record.",
					},
					"status": map[string]any{
						"type":        "string",
						"description": "Optional status label. VERIFIED or VERIFIED ENTITY sets the verified flag.",
					},
				},
				"required": []string{"risk_level"},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
				Title:          "Classify Risk Label",
			},
		},
		s.handleClassifyLabel,
	)
}

type classifyArgs struct {
	RiskLevel string `json:"risk_level"`
	Status    string `json:"status"`
}

type classifyResult struct {
	Label    string    `json:"label"`
	Tier     risk.Tier `json:"tier"`
	Verified bool      `json:"verified"`
	Message  string    `json:"message"`
}

func (s *Server) handleClassifyLabel(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args classifyArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'risk_level' (string) and optional 'status' (string).", err)), nil
	}

	v := risk.Classify(args.RiskLevel, args.Status)
	return jsonResult(classifyResult{
		Label:    args.RiskLevel,
		Tier:     v.Tier,
		Verified: v.Verified,
		Message:  v.Tier.Message(),
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// parse_insight: Classify insight strings by severity
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addParseInsightTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "parse_insight",
			Title: "Parse Insights",
			Description: `Split scanner insight strings into severity and display text WITHOUT contacting the scanner.

Insights carry a leading marker glyph: ✅ or 🔒 for info, ⚠️ for warning, 🚨 or ❌ for critical.
Markers are stripped from the returned text; unknown symbols are kept and reported as info.

EXAMPLE INPUTS:
• {"insights": ["⚠️ Domain registered 3 days ago", "🔒 Valid SSL certificate"]}

Returns: one {severity, text} entry per input in order, plus per-severity counts.`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"insights": map[string]any{
						"type":        "array",
						"description": "Raw insight strings.",
						"items":       map[string]any{"type": "string"},
						"minItems":    1,
					},
				},
				"required": []string{"insights"},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
				Title:          "Parse Insights",
			},
		},
		s.handleParseInsight,
	)
}

type parseInsightArgs struct {
	Insights []string `json:"insights"`
}

type parseInsightResult struct {
	Items  []insight.Insight        `json:"items"`
	Counts map[insight.Severity]int `json:"counts"`
}

func (s *Server) handleParseInsight(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args parseInsightArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'insights' (array of strings).", err)), nil
	}
	if len(args.Insights) == 0 {
		return errorResult(`'insights' must contain at least one string. Example: {"insights": ["⚠️ New domain"]}`), nil
	}

	items := insight.ParseAll(args.Insights)
	return jsonResult(parseInsightResult{Items: items, Counts: insight.Counts(items)})
}

// ═══════════════════════════════════════════════════════════════════════════
// scan_url: Run a full scan session
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addScanURLTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "scan_url",
			Title: "Scan URL",
			Description: `Analyze a URL with the PhishGuard scanning engine and return a classified verdict.

USE THIS TOOL WHEN:
• The user pastes a link and asks whether it is safe, a phishing attempt or a scam
• You need fresh insights before calling 'generate_report'

DO NOT USE THIS TOOL WHEN:
• You only need to interpret an existing label — use 'classify_label'
• You want trends over past scans — use 'history_stats'

Sends ONE request to the scanning service. Progress announcements stream as MCP progress
notifications. Only one scan runs at a time; a concurrent call fails with a busy error.

EXAMPLE INPUTS:
• {"url": "https://paypa1-login.example.com/verify"}
• {"url": "example.com"}

Returns: scan id, tier, verified flag, confidence score, domain age, parsed insights and the
verdict notice. The result is archived locally so 'generate_report' can render it by id.`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{
						"type":        "string",
						"description": "URL to analyze. A scheme is optional.",
					},
				},
				"required": []string{"url"},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   false,
				IdempotentHint: false,
				OpenWorldHint:  boolPtr(true),
				Title:          "Scan URL",
			},
		},
		s.handleScanURL,
	)
}

type scanURLArgs struct {
	URL string `json:"url"`
}

type scanURLResult struct {
	*scan.Result
	DomainAge string        `json:"domain_age"`
	Notice    events.Notice `json:"notice"`
	Archived  bool          `json:"archived"`
}

func (s *Server) handleScanURL(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args scanURLArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'url' (string).", err)), nil
	}
	if s.sess == nil {
		return errorResult("no scanning service is configured for this server."), nil
	}

	res, err := s.sess.Run(withRequest(ctx, req), args.URL)
	switch {
	case errors.Is(err, session.ErrEmptyURL):
		return errorResult(`url is required. Example: {"url": "https://example.com"}`), nil
	case errors.Is(err, session.ErrBusy):
		return errorResult("another scan is already in progress. Wait for it to finish and retry."), nil
	case errors.Is(err, session.ErrUnreachable):
		return errorResult(session.FailureNotice().Title + ". Check that the scanning service is running."), nil
	case err != nil:
		return errorResult(fmt.Sprintf("scan did not complete: %v", err)), nil
	}

	out := scanURLResult{
		Result:    res,
		DomainAge: res.DomainAge(),
		Notice:    session.NoticeFor(res.Tier),
	}
	if s.config.Store != nil {
		if err := s.config.Store.Save(res); err != nil {
			s.logger.Warn("archive scan failed", slog.String("scan_id", string(res.ID)), slog.String("error", err.Error()))
		} else {
			out.Archived = true
		}
	}
	logToSession(ctx, req, logInfo, fmt.Sprintf("scan %s: %s", res.ID, res.Tier))
	return jsonResult(out)
}

// ═══════════════════════════════════════════════════════════════════════════
// history_stats: Aggregate past scans by tier
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addHistoryStatsTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "history_stats",
			Title: "History Statistics",
			Description: `Summarize past scans: total, verified, high-risk and per-tier counts with chart slices.

SOURCES:
• "remote" — the scanning service's history listing (default when a scanner is configured)
• "local"  — this machine's scan archive

EXAMPLE INPUTS:
• {} (defaults)
• {"source": "local"}
• {"query": "paypal", "limit": 50}

Labels are re-classified on every call, so tier counts always reflect the current taxonomy.`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"source": map[string]any{
						"type":        "string",
						"description": "Where to read history from.",
						"enum":        []string{"remote", "local"},
					},
					"query": map[string]any{
						"type":        "string",
						"description": "Only include records whose URL contains this text (case-insensitive).",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Only include the first N records (0 = all).",
						"minimum":     0,
					},
				},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "History Statistics",
			},
		},
		s.handleHistoryStats,
	)
}

type historyStatsArgs struct {
	Source string `json:"source"`
	Query  string `json:"query"`
	Limit  int    `json:"limit"`
}

type historyStatsResult struct {
	Source  string          `json:"source"`
	Summary history.Summary `json:"summary"`
	Chart   []history.Slice `json:"chart"`
}

func (s *Server) handleHistoryStats(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args historyStatsArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	source := strings.ToLower(strings.TrimSpace(args.Source))
	if source == "" {
		source = "remote"
		if s.config.Scanner == nil {
			source = "local"
		}
	}

	var records []history.Record
	switch source {
	case "remote":
		if s.config.Scanner == nil {
			return errorResult("no scanning service is configured. Use {\"source\": \"local\"}."), nil
		}
		recs, err := s.config.Scanner.History(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("could not load history from the scanning service: %v", err)), nil
		}
		records = recs
	case "local":
		if s.config.Store == nil {
			return errorResult("no local archive is configured."), nil
		}
		records = s.config.Store.Records(0)
	default:
		return errorResult(fmt.Sprintf("unknown source %q. Use \"remote\" or \"local\".", args.Source)), nil
	}

	records = history.Limit(history.Filter(records, args.Query), args.Limit)
	summary := history.Summarize(records)
	return jsonResult(historyStatsResult{
		Source:  source,
		Summary: summary,
		Chart:   history.ChartSeries(summary.Counts),
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// generate_report: Render an archived scan as PDF
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addGenerateReportTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "generate_report",
			Title: "Generate PDF Report",
			Description: `Render an archived scan as a PhishGuard PDF report on the server's filesystem.

USE THIS TOOL WHEN:
• The user asks for a report, PDF or document about a scan
• After 'scan_url', to hand the user a shareable artifact

EXAMPLE INPUTS:
• {"id": "3f2b8c1e-..."} — a scan id returned by 'scan_url'
• {} — the most recent archived scan

The file is written atomically: on failure nothing is left behind.

Returns: the written path, scan id and tier.`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Scan id. Omit for the most recent scan.",
					},
				},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   false,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
				Title:          "Generate PDF Report",
			},
		},
		s.handleGenerateReport,
	)
}

type generateReportArgs struct {
	ID string `json:"id"`
}

type generateReportResult struct {
	Path string    `json:"path"`
	ID   scan.ID   `json:"id"`
	URL  string    `json:"url"`
	Tier risk.Tier `json:"tier"`
}

func (s *Server) handleGenerateReport(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args generateReportArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	res, err := s.lookupResult(strings.TrimSpace(args.ID))
	if err != nil {
		return errorResult(err.Error()), nil
	}

	path, err := s.config.Reports.WriteFile(ctx, s.config.ReportDir, res)
	if err != nil {
		return errorResult(fmt.Sprintf("report generation failed: %v", err)), nil
	}
	logToSession(ctx, req, logInfo, "report written to "+path)
	return jsonResult(generateReportResult{Path: path, ID: res.ID, URL: res.URL, Tier: res.Tier})
}

// lookupResult finds a scan by id in the archive, falling back to the last
// scan of this server when no archive is configured.
func (s *Server) lookupResult(id string) (*scan.Result, error) {
	if s.config.Store != nil {
		if id == "" {
			latest := s.config.Store.List(1)
			if len(latest) == 0 {
				return nil, errors.New("the archive is empty; run 'scan_url' first")
			}
			return latest[0], nil
		}
		res, err := s.config.Store.Get(id)
		if errors.Is(err, history.ErrNotFound) {
			return nil, fmt.Errorf("no archived scan with id %q", id)
		}
		return res, err
	}

	if s.sess != nil {
		if last := s.sess.Last(); last != nil && (id == "" || string(last.ID) == id) {
			return last, nil
		}
	}
	if id == "" {
		return nil, errors.New("no scan available; run 'scan_url' first")
	}
	return nil, fmt.Errorf("no scan with id %q", id)
}
