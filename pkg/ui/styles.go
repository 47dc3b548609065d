package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/phishguard/phishguard/pkg/insight"
	"github.com/phishguard/phishguard/pkg/output/events"
	"github.com/phishguard/phishguard/pkg/risk"
)

var (
	// Brand colors
	Primary   = lipgloss.Color("#2980B9")
	Secondary = lipgloss.Color("#5DADE2")

	// Tier colors, shared with the history chart
	SafeColor     = lipgloss.Color("#10B981")
	CautionColor  = lipgloss.Color("#F59E0B")
	CriticalColor = lipgloss.Color("#EF4444")

	// Status colors
	Success = lipgloss.Color("#00D26A")
	Warning = lipgloss.Color("#FFB800")
	Error   = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#6B7280")
	Text    = lipgloss.Color("#FAFAFA")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Text).
			Background(Primary).
			Padding(0, 1)

	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	VersionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true).
			MarginTop(1)

	ConfigLabelStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Width(18)

	ConfigValueStyle = lipgloss.NewStyle().
				Foreground(Text)

	ProgressFullStyle = lipgloss.NewStyle().
				Foreground(Primary)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3B3B4F"))

	StatLabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	PassStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	FailStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	DividerStyle = lipgloss.NewStyle().
			Foreground(Muted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	URLStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Underline(true)

	BadgeStyle = lipgloss.NewStyle().
			Foreground(Text).
			Background(lipgloss.Color("#3B3B4F")).
			Padding(0, 1)

	AnnounceStyle = lipgloss.NewStyle().
			Foreground(Secondary)
)

// TierColor returns the display color of a tier.
func TierColor(t risk.Tier) lipgloss.Color {
	switch t {
	case risk.Safe:
		return SafeColor
	case risk.Caution:
		return CautionColor
	default:
		return CriticalColor
	}
}

// TierStyle returns the badge style for a tier.
func TierStyle(t risk.Tier) lipgloss.Style {
	fg := lipgloss.Color("#FFFFFF")
	if t == risk.Caution {
		fg = lipgloss.Color("#000000")
	}
	return lipgloss.NewStyle().Bold(true).Padding(0, 1).
		Foreground(fg).Background(TierColor(t))
}

// SeverityStyle returns the style for an insight row.
func SeverityStyle(s insight.Severity) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch s {
	case insight.Critical:
		return base.Foreground(CriticalColor).Bold(true)
	case insight.Warning:
		return base.Foreground(CautionColor)
	default:
		return base.Foreground(Text)
	}
}

// NoticeStyle returns the style for a notice class.
func NoticeStyle(c events.NoticeClass) lipgloss.Style {
	switch c {
	case events.NoticeSuccess:
		return PassStyle
	case events.NoticeWarning:
		return WarnStyle
	case events.NoticeAlarm:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(CriticalColor).Padding(0, 1)
	default:
		return FailStyle
	}
}
