package history

import (
	"github.com/phishguard/phishguard/pkg/risk"
)

// TierCounts holds per-tier record counts. The counts always sum to the
// number of aggregated records.
type TierCounts struct {
	Safe     int `json:"safe"`
	Caution  int `json:"caution"`
	Critical int `json:"critical"`
}

// Aggregate folds records into per-tier counts. Records with no usable
// label count as Critical.
func Aggregate(records []Record) TierCounts {
	var c TierCounts
	for _, r := range records {
		c.add(risk.TierOf(r.Label()))
	}
	return c
}

func (c *TierCounts) add(t risk.Tier) {
	switch t {
	case risk.Safe:
		c.Safe++
	case risk.Caution:
		c.Caution++
	default:
		c.Critical++
	}
}

// Total returns the number of aggregated records.
func (c TierCounts) Total() int {
	return c.Safe + c.Caution + c.Critical
}

// Count returns the count for one tier.
func (c TierCounts) Count(t risk.Tier) int {
	switch t {
	case risk.Safe:
		return c.Safe
	case risk.Caution:
		return c.Caution
	case risk.Critical:
		return c.Critical
	}
	return 0
}

// Percent returns the share of tier t in 0..100, or 0 for an empty history.
func (c TierCounts) Percent(t risk.Tier) float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c.Count(t)) * 100 / float64(total)
}

// Slice is one entry of a tier chart.
type Slice struct {
	Tier  risk.Tier `json:"tier"`
	Label string    `json:"label"`
	Count int       `json:"count"`
	Color string    `json:"color"`
}

// ChartSeries converts counts into chart entries in tier order. Tiers with a
// zero count are omitted so they never render as empty slices.
func ChartSeries(c TierCounts) []Slice {
	out := make([]Slice, 0, 3)
	for _, t := range risk.Tiers() {
		n := c.Count(t)
		if n == 0 {
			continue
		}
		out = append(out, Slice{Tier: t, Label: t.Title(), Count: n, Color: t.Color()})
	}
	return out
}

// Summary holds the headline numbers of a history listing.
type Summary struct {
	Total    int        `json:"total"`
	Verified int        `json:"verified"`
	HighRisk int        `json:"high_risk"`
	Counts   TierCounts `json:"counts"`
}

// Summarize computes the headline numbers for records.
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records), Counts: Aggregate(records)}
	for _, r := range records {
		if risk.IsVerifiedStatus(r.StatusLabel) {
			s.Verified++
		}
	}
	s.HighRisk = s.Counts.Critical
	return s
}
