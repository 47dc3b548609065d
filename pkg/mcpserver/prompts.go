package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerPrompts adds the guided workflow prompts.
func (s *Server) registerPrompts() {
	s.addTriagePrompt()
}

// ═══════════════════════════════════════════════════════════════════════════
// triage_url: scan, explain, report
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addTriagePrompt() {
	s.mcp.AddPrompt(
		&mcp.Prompt{
			Name:        "triage_url",
			Description: "Triage a suspicious link: scan it, explain the verdict in plain language and optionally produce a PDF report.",
			Arguments: []*mcp.PromptArgument{
				{Name: "url", Description: "The link to triage", Required: true},
				{Name: "report", Description: "'yes' to generate a PDF report afterwards", Required: false},
			},
		},
		func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			target := req.Params.Arguments["url"]
			if target == "" {
				return nil, fmt.Errorf("'url' argument is required")
			}

			steps := fmt.Sprintf(`Triage the link %s.

1. Call 'scan_url' with {"url": %q}.
2. Explain the verdict to a non-technical reader: the tier, whether the entity is verified, and each
   critical or warning insight in one sentence.
3. If the tier is CRITICAL, advise the user not to enter credentials and to report the link.`, target, target)
			if req.Params.Arguments["report"] == "yes" {
				steps += "\n4. Call 'generate_report' with the scan id and tell the user where the PDF was written."
			}

			return &mcp.GetPromptResult{
				Description: "Triage: " + target,
				Messages: []*mcp.PromptMessage{
					{Role: "user", Content: &mcp.TextContent{Text: steps}},
				},
			}, nil
		},
	)
}
