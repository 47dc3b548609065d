package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/phishguard/phishguard/pkg/defaults"
	"github.com/phishguard/phishguard/pkg/jsonutil"
	"github.com/phishguard/phishguard/pkg/risk"
	"github.com/phishguard/phishguard/pkg/session"
)

// registerResources adds the read-only knowledge resources.
func (s *Server) registerResources() {
	s.addVersionResource()
	s.addTaxonomyResource()
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := jsonutil.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: uri, MIMEType: defaults.ContentTypeJSON, Text: string(data)},
		},
	}, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// phishguard://version: Server capabilities and version
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addVersionResource() {
	const uri = "phishguard://version"
	s.mcp.AddResource(
		&mcp.Resource{
			URI:         uri,
			Name:        "PhishGuard Version",
			Description: "Server version, configured components and tool inventory.",
			MIMEType:    defaults.ContentTypeJSON,
		},
		func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			return jsonResource(uri, map[string]any{
				"name":    defaults.ProductName,
				"version": defaults.Version,
				"components": map[string]bool{
					"scanner": s.config.Scanner != nil,
					"archive": s.config.Store != nil,
				},
				"tools": []string{
					"classify_label", "parse_insight", "scan_url", "history_stats", "generate_report",
				},
			})
		},
	)
}

// ═══════════════════════════════════════════════════════════════════════════
// phishguard://taxonomy: Tiers, notices and announcements
// ═══════════════════════════════════════════════════════════════════════════

type tierInfo struct {
	Tier    risk.Tier `json:"tier"`
	Title   string    `json:"title"`
	Color   string    `json:"color"`
	Message string    `json:"message"`
	Notice  string    `json:"notice"`
}

func (s *Server) addTaxonomyResource() {
	const uri = "phishguard://taxonomy"
	s.mcp.AddResource(
		&mcp.Resource{
			URI:         uri,
			Name:        "Risk Taxonomy",
			Description: "The three verdict tiers, how scanner labels map onto them, and the progress announcements of a scan.",
			MIMEType:    defaults.ContentTypeJSON,
		},
		func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			tiers := make([]tierInfo, 0, 3)
			for _, t := range risk.Tiers() {
				tiers = append(tiers, tierInfo{
					Tier:    t,
					Title:   t.Title(),
					Color:   t.Color(),
					Message: t.Message(),
					Notice:  session.NoticeFor(t).Title,
				})
			}
			return jsonResource(uri, map[string]any{
				"tiers": tiers,
				"label_rules": []string{
					"SAFE, LOW and VERIFIED classify as SAFE",
					"CAUTION, MEDIUM and UNVERIFIED classify as CAUTION",
					"anything else, including HIGH and an empty label, classifies as CRITICAL",
					"labels are case-insensitive and inner whitespace is collapsed",
					"only a status of VERIFIED or VERIFIED ENTITY sets the verified flag",
				},
				"announcements": session.Announcements(),
			})
		},
	)
}
