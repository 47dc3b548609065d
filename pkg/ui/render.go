package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phishguard/phishguard/pkg/insight"
	"github.com/phishguard/phishguard/pkg/output/events"
	"github.com/phishguard/phishguard/pkg/risk"
	"github.com/phishguard/phishguard/pkg/scan"
)

// ProgressBar is a static text progress bar.
type ProgressBar struct {
	width int
}

// NewProgressBar creates a progress bar of the given width in cells.
func NewProgressBar(width int) *ProgressBar {
	if width < 1 {
		width = 1
	}
	return &ProgressBar{width: width}
}

// Render renders the bar at percent (0..100).
func (pb *ProgressBar) Render(percent float64) string {
	filled := int(float64(pb.width) * percent / 100)
	filled = max(0, min(filled, pb.width))

	var b strings.Builder
	b.WriteString(ProgressFullStyle.Render(strings.Repeat("#", filled)))
	b.WriteString(ProgressEmptyStyle.Render(strings.Repeat(".", pb.width-filled)))
	return b.String()
}

// RenderAnnouncement renders one progress announcement line.
func RenderAnnouncement(stage, total int, icon, text string) string {
	pct := 0.0
	if total > 0 {
		pct = float64(stage) * 100 / float64(total)
	}
	return fmt.Sprintf("  %s [%d/%d] %s %s",
		NewProgressBar(12).Render(pct), stage, total,
		SanitizeString(icon), AnnounceStyle.Render(text))
}

// RenderNotice renders a notice as a one-line banner.
func RenderNotice(n events.Notice) string {
	line := NoticeStyle(n.Class).Render(n.Title)
	if n.Message != "" {
		line += " " + HelpStyle.Render(n.Message)
	}
	return "  " + line
}

// severityIcon returns the list marker for an insight row.
func severityIcon(s insight.Severity) string {
	switch s {
	case insight.Critical:
		return Icon("🚨", "[!!]")
	case insight.Warning:
		return Icon("⚠️", "[!]")
	default:
		return Icon("ℹ️", "[i]")
	}
}

// RenderVerdict renders the verdict card of a result.
func RenderVerdict(res *scan.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  %s  %s\n", TierStyle(res.Tier).Render(res.Tier.String()), URLStyle.Render(res.URL))
	fmt.Fprintf(&b, "  %s\n\n", SanitizeString(res.Tier.Message()))

	row := func(k, v string) {
		fmt.Fprintf(&b, "  %s %s\n", ConfigLabelStyle.Render(k+":"), ConfigValueStyle.Render(v))
	}
	domain := scan.RegisteredDomain(res.URL)
	if ascii := scan.ASCIIHost(domain); ascii != domain {
		domain = ascii + " (" + domain + ")"
	}
	row("Registered Domain", domain)
	row("Confidence", NewProgressBar(20).Render(float64(res.ConfidenceScore))+" "+strconv.Itoa(res.ConfidenceScore)+"%")
	row("Status", res.StatusLabel)
	row("Domain Age", res.DomainAge())
	if res.Verified {
		row("Verified Entity", PassStyle.Render(Icon("✔ ", "")+"Yes"))
	} else {
		row("Verified Entity", "No")
	}

	if len(res.Details) > 0 {
		fmt.Fprintf(&b, "\n  %s\n", SectionStyle.UnsetMarginTop().Render("Security Insights"))
		for _, in := range res.Details {
			fmt.Fprintf(&b, "   %s %s\n", severityIcon(in.Severity), SeverityStyle(in.Severity).Render(SanitizeString(in.Text)))
		}
	}
	return b.String()
}

// TierLabel renders a tier as a colored badge.
func TierLabel(t risk.Tier) string {
	return TierStyle(t).Render(t.String())
}
