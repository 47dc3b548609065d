// Package insight classifies the free-text findings emitted by the scanning
// service. The service tags each finding with a leading emoji; a structured
// severity field, when supplied, takes precedence over the glyph.
package insight

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Severity is the display bucket of an insight.
type Severity string

const (
	// Info is a neutral or positive observation.
	Info Severity = "info"

	// Warning is a suspicious signal that does not block on its own.
	Warning Severity = "warning"

	// Critical is a blocking finding.
	Critical Severity = "critical"
)

// Insight is one parsed finding.
type Insight struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

// IsValid reports whether s is a recognized severity.
func (s Severity) IsValid() bool {
	switch s {
	case Info, Warning, Critical:
		return true
	}
	return false
}

// Score returns a numeric score for sorting. Critical=3, Warning=2, Info=1,
// unknown=0.
func (s Severity) Score() int {
	switch s {
	case Critical:
		return 3
	case Warning:
		return 2
	case Info:
		return 1
	default:
		return 0
	}
}

// String returns the severity as a string.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a structured severity value case-insensitively.
// The second result is false when the value is not recognized.
func ParseSeverity(v string) (Severity, bool) {
	s := Severity(strings.ToLower(strings.TrimSpace(v)))
	switch s {
	case "error", "high", "danger":
		return Critical, true
	case "warn", "medium":
		return Warning, true
	}
	return s, s.IsValid()
}

// Parse classifies a raw insight by its leading marker glyphs and strips
// every leading marker from the display text. A leading symbol that is not
// a known marker is kept and the insight is reported as Info.
func Parse(raw string) Insight {
	text := strings.TrimLeftFunc(raw, unicode.IsSpace)
	sev := Info
	matched := false

	for text != "" {
		r, size := utf8.DecodeRuneInString(text)
		if isModifier(r) {
			text = text[size:]
			continue
		}
		class, ok := markers[r]
		if !ok {
			break
		}
		if !matched {
			sev = class
			matched = true
		}
		text = strings.TrimLeftFunc(text[size:], unicode.IsSpace)
	}

	return Insight{Severity: sev, Text: strings.TrimSpace(text)}
}

// ParseAll parses each raw insight independently, preserving order.
func ParseAll(raw []string) []Insight {
	out := make([]Insight, 0, len(raw))
	for _, r := range raw {
		out = append(out, Parse(r))
	}
	return out
}

// FromStructured builds an insight from an explicit severity field. When the
// severity is missing or unknown the text is glyph-parsed instead. Leading
// markers are always stripped from the text.
func FromStructured(severity, text string) Insight {
	parsed := Parse(text)
	if sev, ok := ParseSeverity(severity); ok {
		parsed.Severity = sev
	}
	return parsed
}

// Counts tallies insights per severity.
func Counts(items []Insight) map[Severity]int {
	out := make(map[Severity]int, 3)
	for _, it := range items {
		out[it.Severity]++
	}
	return out
}
