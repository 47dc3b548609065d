package session

import (
	"github.com/phishguard/phishguard/pkg/output/events"
	"github.com/phishguard/phishguard/pkg/risk"
)

// Announcement is one progress message shown while a scan runs.
type Announcement struct {
	Icon string
	Text string
}

var announcements = []Announcement{
	{Icon: "🚀", Text: "Initializing Security Protocols..."},
	{Icon: "📡", Text: "Resolving DNS Records..."},
	{Icon: "🔓", Text: "Decrypting SSL Certificates..."},
	{Icon: "🤖", Text: "Analyzing Threat Vectors..."},
}

// Announcements returns the progress messages in display order.
func Announcements() []Announcement {
	return append([]Announcement(nil), announcements...)
}

// Notice classes by outcome.
const (
	NoticeSuccess = events.NoticeSuccess
	NoticeWarning = events.NoticeWarning
	NoticeAlarm   = events.NoticeAlarm
	NoticeError   = events.NoticeError
)

// NoticeFor returns the notice shown for a completed scan of the given tier.
func NoticeFor(t risk.Tier) events.Notice {
	n := events.Notice{Message: t.Message()}
	switch t {
	case risk.Safe:
		n.Class, n.Title = NoticeSuccess, "Domain Verified Safe"
	case risk.Caution:
		n.Class, n.Title = NoticeWarning, "Proceed with Caution"
	default:
		n.Class, n.Title = NoticeAlarm, "CRITICAL THREAT DETECTED"
	}
	return n
}

// FailureNotice returns the notice shown when the scanner is unreachable.
func FailureNotice() events.Notice {
	return events.Notice{Class: NoticeError, Title: "Error connecting to scanner engine"}
}
