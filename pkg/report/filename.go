package report

import (
	"strings"
	"time"

	"github.com/phishguard/phishguard/pkg/scan"
)

const maxHostLen = 63

// Filename returns the download name for a report on res generated at t,
// e.g. "PhishGuard_Report_2025-03-14_login.example.com.pdf".
func Filename(res *scan.Result, t time.Time) string {
	host := ""
	if res != nil {
		host = sanitizeHost(res.Host())
	}
	if host == "" {
		host = "unknown"
	}
	return "PhishGuard_Report_" + t.Format("2006-01-02") + "_" + host + ".pdf"
}

// sanitizeHost keeps letters, digits, dots and dashes. Everything else
// becomes '_' so the name is safe on every filesystem.
func sanitizeHost(host string) string {
	var b strings.Builder
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := strings.Trim(b.String(), "._")
	if len(s) > maxHostLen {
		s = s[:maxHostLen]
	}
	return s
}
