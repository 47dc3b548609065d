// Package history reads, aggregates and exports past scan outcomes.
//
// Records from the scanning service are read-only here; they are classified
// on demand and never cached with their tier. The package also keeps a local
// archive of completed scans so reports can be regenerated offline.
package history

import (
	"strings"
	"time"

	"github.com/phishguard/phishguard/pkg/risk"
)

// Record is a persisted prior scan outcome as listed by the history store.
// Any field may be missing.
type Record struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Timestamp       time.Time `json:"timestamp"`
	RiskLabel       string    `json:"risk_level"`
	StatusLabel     string    `json:"status"`
	ConfidenceScore *int      `json:"confidence_score,omitempty"`
	Insights        []string  `json:"insights,omitempty"`
}

// Label returns the label used for classification: the risk label, or the
// status label when the risk label is blank.
func (r Record) Label() string {
	if strings.TrimSpace(r.RiskLabel) != "" {
		return r.RiskLabel
	}
	return r.StatusLabel
}

// Verdict classifies the record. It is recomputed on every call.
func (r Record) Verdict() risk.Verdict {
	return risk.Classify(r.Label(), r.StatusLabel)
}
