// Package mcpserver exposes PhishGuard as a Model Context Protocol (MCP)
// server so AI assistants can classify labels, run scans, summarize history
// and produce PDF reports through natural conversation.
//
// # Capabilities
//
//   - Tools:     classify_label, parse_insight, scan_url, history_stats, generate_report
//   - Resources: phishguard://version, phishguard://taxonomy
//   - Prompts:   triage_url
//
// scan_url drives the same session state machine as the CLI. Its progress
// announcements are forwarded as MCP progress notifications when the client
// supplies a progress token.
//
// # Transports
//
//   - stdio:  Communicates over stdin/stdout (default). Used by IDE integrations.
//   - HTTP:   Streamable HTTP. Used for remote deployments.
//
// # Usage
//
//	client, _ := scanclient.New("", scanclient.Options{})
//	srv := mcpserver.New(&mcpserver.Config{Scanner: client})
//	defer srv.Close()
//	err := srv.RunStdio(ctx)
package mcpserver
