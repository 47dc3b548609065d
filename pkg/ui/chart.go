package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/phishguard/phishguard/pkg/history"
	"github.com/phishguard/phishguard/pkg/strutil"
)

const (
	chartWidth      = 40
	historyURLWidth = 72
)

// RenderChart renders tier slices as horizontal bars scaled to the total.
// Empty input renders a placeholder.
func RenderChart(series []history.Slice) string {
	total := 0
	for _, s := range series {
		total += s.Count
	}
	if total == 0 {
		return "  " + HelpStyle.Render("No scans recorded yet") + "\n"
	}

	var b strings.Builder
	for _, s := range series {
		cells := s.Count * chartWidth / total
		if cells == 0 {
			cells = 1
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat("█", cells))
		if !UnicodeTerminal() {
			bar = lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat("#", cells))
		}
		pct := float64(s.Count) * 100 / float64(total)
		fmt.Fprintf(&b, "  %-8s %s %d (%.1f%%)\n", s.Label, bar, s.Count, pct)
	}
	return b.String()
}

// RenderStatCards renders the headline numbers of a history listing.
func RenderStatCards(s history.Summary) string {
	card := func(label string, v int) string {
		return StatLabelStyle.Render(label) + " " + StatValueStyle.Render(fmt.Sprint(v))
	}
	return "  " + strings.Join([]string{
		card("Total Scans", s.Total),
		card("Verified", s.Verified),
		card("High Risk", s.HighRisk),
	}, DividerStyle.Render("  |  ")) + "\n"
}

// RenderHistory renders records as a table, newest first as given.
func RenderHistory(records []history.Record) string {
	if len(records) == 0 {
		return "  " + HelpStyle.Render("No matching records") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %-19s  %-10s  %-20s  %s\n", "TIMESTAMP", "TIER", "STATUS", "URL")
	for _, r := range records {
		ts := "-"
		if !r.Timestamp.IsZero() {
			ts = r.Timestamp.Format("2006-01-02 15:04:05")
		}
		tier := r.Verdict().Tier
		fmt.Fprintf(&b, "  %-19s  %s  %-20s  %s\n",
			ts,
			TierStyle(tier).Render(padRight(tier.String(), 8)),
			strutil.Truncate(r.StatusLabel, 20),
			strutil.TruncateMiddle(r.URL, historyURLWidth))
	}
	return b.String()
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

