// Package risk normalizes the risk and status vocabulary used by the scanning
// service and by historical records into one canonical three-tier verdict.
//
// Classification is fail-closed: any label outside the known SAFE and CAUTION
// vocabularies, including the empty string, resolves to CRITICAL.
package risk

import (
	"strings"

	"github.com/phishguard/phishguard/pkg/strutil"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tier is the canonical verdict assigned to a scan.
type Tier string

const (
	// Safe means no malicious patterns were found.
	Safe Tier = "SAFE"

	// Caution means the domain is unverified or mildly suspicious.
	Caution Tier = "CAUTION"

	// Critical means a threat was detected, or the label was not recognized.
	Critical Tier = "CRITICAL"
)

// Verdict is the result of classifying a raw risk label.
type Verdict struct {
	Tier     Tier `json:"tier"`
	Verified bool `json:"verified"`
}

var (
	safeLabels = map[string]struct{}{
		"SAFE":     {},
		"LOW":      {},
		"VERIFIED": {},
	}
	cautionLabels = map[string]struct{}{
		"CAUTION":    {},
		"MEDIUM":     {},
		"UNVERIFIED": {},
	}
	// The scanning service reports trusted domains as "VERIFIED ENTITY".
	verifiedStatuses = map[string]struct{}{
		"VERIFIED":        {},
		"VERIFIED ENTITY": {},
	}
)

// Classify maps a raw risk label to a Verdict. The optional status label only
// drives the Verified flag. Only the first status label is considered.
func Classify(riskLabel string, statusLabel ...string) Verdict {
	v := Verdict{Tier: TierOf(riskLabel)}
	if len(statusLabel) > 0 {
		v.Verified = IsVerifiedStatus(statusLabel[0])
	}
	return v
}

// TierOf returns the tier for a raw label without the verified flag.
func TierOf(label string) Tier {
	key := normalize(label)
	if _, ok := safeLabels[key]; ok {
		return Safe
	}
	if _, ok := cautionLabels[key]; ok {
		return Caution
	}
	return Critical
}

// IsVerifiedStatus reports whether status is the verified-entity marker.
func IsVerifiedStatus(status string) bool {
	_, ok := verifiedStatuses[normalize(status)]
	return ok
}

// normalize upper-cases the label and collapses inner whitespace runs so
// "verified  entity" and "Verified Entity" compare equal.
func normalize(label string) string {
	return strutil.CollapseSpace(strings.ToUpper(label))
}

// Tiers returns all tiers in display order, least to most severe.
func Tiers() []Tier {
	return []Tier{Safe, Caution, Critical}
}

// IsValid reports whether t is one of the canonical tiers.
func (t Tier) IsValid() bool {
	switch t {
	case Safe, Caution, Critical:
		return true
	}
	return false
}

// Score returns a numeric score for sorting. Safe=1, Caution=2, Critical=3,
// unknown=0.
func (t Tier) Score() int {
	switch t {
	case Safe:
		return 1
	case Caution:
		return 2
	case Critical:
		return 3
	default:
		return 0
	}
}

// String returns the tier as an upper-case string.
func (t Tier) String() string {
	return string(t)
}

var titleCase = cases.Title(language.English)

// Title returns the display form of the tier, e.g. "Caution".
func (t Tier) Title() string {
	return titleCase.String(strings.ToLower(string(t)))
}

// Message returns the one-line verdict explanation shown with a result.
func (t Tier) Message() string {
	switch t {
	case Safe:
		return "Traffic analysis confirms no malicious patterns on this domain."
	case Caution:
		return "This domain is unverified. Do not share sensitive credentials."
	default:
		return "Immediate threat detected. Block this domain immediately."
	}
}

// Color returns the chart/display color for the tier as a hex string.
func (t Tier) Color() string {
	switch t {
	case Safe:
		return "#10b981"
	case Caution:
		return "#f59e0b"
	default:
		return "#ef4444"
	}
}
