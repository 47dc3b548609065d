package mcpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/phishguard/phishguard/pkg/history"
	"github.com/phishguard/phishguard/pkg/mcpserver"
	"github.com/phishguard/phishguard/pkg/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScanner struct {
	mu      sync.Mutex
	resp    *scan.Response
	err     error
	records []history.Record
	calls   int
}

func (f *fakeScanner) Scan(_ context.Context, req scan.Request) (*scan.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := *f.resp
	if r.URL == "" {
		r.URL = req.URL
	}
	return &r, nil
}

func (f *fakeScanner) History(context.Context) ([]history.Record, error) {
	return f.records, nil
}

func cautionResponse() *scan.Response {
	age := 3
	return &scan.Response{
		RiskLevel:       "Medium",
		Status:          "UNVERIFIED",
		ConfidenceScore: 64,
		DomainAgeDays:   &age,
		Insights:        []string{"⚠️ Domain registered 3 days ago", "🔒 Valid SSL certificate"},
	}
}

type fixture struct {
	cs      *mcp.ClientSession
	srv     *mcpserver.Server
	scanner *fakeScanner
	store   *history.Store
	dir     string
}

// newTestSession creates a connected client↔server session for testing.
func newTestSession(t *testing.T, withScanner bool) fixture {
	t.Helper()

	dir := t.TempDir()
	store, err := history.NewStore(filepath.Join(dir, "archive"))
	require.NoError(t, err)

	f := fixture{store: store, dir: dir}
	cfg := &mcpserver.Config{
		Store:     store,
		ReportDir: filepath.Join(dir, "reports"),
		Interval:  -1,
	}
	if withScanner {
		f.scanner = &fakeScanner{resp: cautionResponse()}
		cfg.Scanner = f.scanner
	}
	f.srv = mcpserver.New(cfg)
	t.Cleanup(func() { f.srv.Close() })

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)

	ctx := context.Background()
	go func() {
		// Server errors surface through client-side assertions.
		_ = f.srv.MCPServer().Run(ctx, serverTransport)
	}()

	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	f.cs = cs
	return f
}

func callTool(t *testing.T, cs *mcp.ClientSession, name, args string) (*mcp.CallToolResult, string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: json.RawMessage(args),
	})
	require.NoError(t, err, "CallTool(%s)", name)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return result, text.Text
}

func decode(t *testing.T, text string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &out), text)
	return out
}

func TestListTools(t *testing.T) {
	f := newTestSession(t, true)

	result, err := f.cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, "tool %q has empty description", tool.Name)
		assert.NotNil(t, tool.Annotations, "tool %q has no annotations", tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"classify_label", "parse_insight", "scan_url", "history_stats", "generate_report",
	}, names)
}

func TestClassifyLabel(t *testing.T) {
	f := newTestSession(t, false)

	tests := []struct {
		args     string
		tier     string
		verified bool
	}{
		{`{"risk_level": "Medium"}`, "CAUTION", false},
		{`{"risk_level": "  safe "}`, "SAFE", false},
		{`{"risk_level": "SAFE", "status": "Verified Entity"}`, "SAFE", true},
		{`{"risk_level": "High"}`, "CRITICAL", false},
		{`{"risk_level": ""}`, "CRITICAL", false},
	}
	for _, tt := range tests {
		result, text := callTool(t, f.cs, "classify_label", tt.args)
		require.False(t, result.IsError, text)
		out := decode(t, text)
		assert.Equal(t, tt.tier, out["tier"], tt.args)
		assert.Equal(t, tt.verified, out["verified"], tt.args)
		assert.NotEmpty(t, out["message"])
	}
}

func TestParseInsight(t *testing.T) {
	f := newTestSession(t, false)

	result, text := callTool(t, f.cs, "parse_insight",
		`{"insights": ["🚨 Listed on phishing feed", "⚠️ New domain", "✅ Valid SSL", "★ Odd marker"]}`)
	require.False(t, result.IsError, text)

	var out struct {
		Items []struct {
			Severity string `json:"severity"`
			Text     string `json:"text"`
		} `json:"items"`
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out.Items, 4)
	assert.Equal(t, "critical", out.Items[0].Severity)
	assert.Equal(t, "Listed on phishing feed", out.Items[0].Text)
	assert.Equal(t, "warning", out.Items[1].Severity)
	assert.Equal(t, "info", out.Items[2].Severity)
	assert.Equal(t, "★ Odd marker", out.Items[3].Text)
	assert.Equal(t, 2, out.Counts["info"])

	result, _ = callTool(t, f.cs, "parse_insight", `{"insights": []}`)
	assert.True(t, result.IsError)
}

func TestScanURL(t *testing.T) {
	f := newTestSession(t, true)

	result, text := callTool(t, f.cs, "scan_url", `{"url": " https://paypa1.example.com/login "}`)
	require.False(t, result.IsError, text)

	out := decode(t, text)
	assert.Equal(t, "CAUTION", out["tier"])
	assert.Equal(t, "https://paypa1.example.com/login", out["url"])
	assert.Equal(t, "3 Days", out["domain_age"])
	assert.Equal(t, true, out["archived"])
	notice, ok := out["notice"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Proceed with Caution", notice["title"])
	assert.Equal(t, "warning", notice["class"])

	id, _ := out["id"].(string)
	require.NotEmpty(t, id)
	archived, err := f.store.Get(id)
	require.NoError(t, err)
	assert.Len(t, archived.Details, 2)
}

func TestScanURL_EmptyURLNeverCallsScanner(t *testing.T) {
	f := newTestSession(t, true)

	result, text := callTool(t, f.cs, "scan_url", `{"url": "   "}`)
	assert.True(t, result.IsError)
	assert.Contains(t, text, "url is required")
	assert.Zero(t, f.scanner.calls)
}

func TestScanURL_ScannerFailureIsGeneric(t *testing.T) {
	f := newTestSession(t, true)
	f.scanner.err = errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")

	result, text := callTool(t, f.cs, "scan_url", `{"url": "example.com"}`)
	assert.True(t, result.IsError)
	assert.Contains(t, text, "Error connecting to scanner engine")
	assert.NotContains(t, text, "connection refused")
	assert.Zero(t, f.store.Len())
}

func TestScanURL_NoScanner(t *testing.T) {
	f := newTestSession(t, false)

	result, _ := callTool(t, f.cs, "scan_url", `{"url": "example.com"}`)
	assert.True(t, result.IsError)
}

func TestHistoryStats(t *testing.T) {
	f := newTestSession(t, true)
	f.scanner.records = []history.Record{
		{ID: "1", URL: "https://a.example", RiskLabel: "SAFE", StatusLabel: "VERIFIED"},
		{ID: "2", URL: "https://b.example", RiskLabel: "Medium"},
		{ID: "3", URL: "https://c.example", RiskLabel: "garbage"},
		{ID: "4", URL: "https://paypal.evil", RiskLabel: "CRITICAL"},
	}

	result, text := callTool(t, f.cs, "history_stats", `{}`)
	require.False(t, result.IsError, text)

	var out struct {
		Source  string          `json:"source"`
		Summary history.Summary `json:"summary"`
		Chart   []history.Slice `json:"chart"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Equal(t, "remote", out.Source)
	assert.Equal(t, 4, out.Summary.Total)
	assert.Equal(t, 1, out.Summary.Verified)
	assert.Equal(t, 2, out.Summary.HighRisk)
	assert.Len(t, out.Chart, 3)

	_, text = callTool(t, f.cs, "history_stats", `{"query": "PAYPAL"}`)
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Equal(t, 1, out.Summary.Total)
}

func TestHistoryStats_Local(t *testing.T) {
	f := newTestSession(t, false)
	require.NoError(t, f.store.Save(&scan.Result{ID: "a", URL: "https://a.example", RiskLabel: "Low", StatusLabel: "VERIFIED"}))

	result, text := callTool(t, f.cs, "history_stats", `{}`)
	require.False(t, result.IsError, text)
	out := decode(t, text)
	assert.Equal(t, "local", out["source"])

	result, _ = callTool(t, f.cs, "history_stats", `{"source": "remote"}`)
	assert.True(t, result.IsError)
}

func TestGenerateReport(t *testing.T) {
	f := newTestSession(t, true)

	_, text := callTool(t, f.cs, "scan_url", `{"url": "https://paypa1.example.com"}`)
	id, _ := decode(t, text)["id"].(string)
	require.NotEmpty(t, id)

	result, text := callTool(t, f.cs, "generate_report", `{"id": "`+id+`"}`)
	require.False(t, result.IsError, text)
	out := decode(t, text)

	path, _ := out["path"].(string)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "PhishGuard_Report_"))
	assert.True(t, strings.HasSuffix(path, "_paypa1.example.com.pdf"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))

	result, _ = callTool(t, f.cs, "generate_report", `{}`)
	assert.False(t, result.IsError, "latest archived scan is used when id is omitted")

	result, text = callTool(t, f.cs, "generate_report", `{"id": "nope"}`)
	assert.True(t, result.IsError)
	assert.Contains(t, text, "nope")
}

func TestResources(t *testing.T) {
	f := newTestSession(t, true)
	ctx := context.Background()

	for _, uri := range []string{"phishguard://version", "phishguard://taxonomy"} {
		result, err := f.cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
		require.NoError(t, err, uri)
		require.NotEmpty(t, result.Contents, uri)
		assert.True(t, json.Valid([]byte(result.Contents[0].Text)), uri)
	}
}

func TestTriagePrompt(t *testing.T) {
	f := newTestSession(t, true)

	result, err := f.cs.GetPrompt(context.Background(), &mcp.GetPromptParams{
		Name:      "triage_url",
		Arguments: map[string]string{"url": "https://x.example", "report": "yes"},
	})
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	text, ok := result.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "scan_url")
	assert.Contains(t, text.Text, "generate_report")
}

func TestHealthEndpoint(t *testing.T) {
	srv := mcpserver.New(nil)
	defer srv.Close()

	ts := httptest.NewServer(srv.HTTPHandler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/health", nil)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := mcpserver.New(nil)
	defer srv.Close()

	req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	srv.HTTPHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
