// Package strutil provides shared string utilities for labels and URLs shown
// on the terminal and in reports.
package strutil

import (
	"strings"
	"unicode/utf8"
)

// Truncate returns s cut to maxLen runes. If truncated, a "..." suffix
// is appended (included in maxLen). Returns s unchanged if
// utf8.RuneCountInString(s) <= maxLen.
// Safe for maxLen <= 0 (returns empty string).
// This function is rune-aware and never produces invalid UTF-8.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// CollapseSpace trims s and replaces every inner whitespace run with a
// single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateMiddle shortens s to maxLen runes by eliding its middle, keeping
// the host and the tail of long URLs readable.
func TruncateMiddle(s string, maxLen int) string {
	n := utf8.RuneCountInString(s)
	if n <= maxLen {
		return s
	}
	if maxLen <= 5 {
		return Truncate(s, maxLen)
	}
	r := []rune(s)
	head := (maxLen - 3 + 1) / 2
	tail := maxLen - 3 - head
	return string(r[:head]) + "..." + string(r[n-tail:])
}
