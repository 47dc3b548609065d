// Package scan defines the request, wire response and normalized result of
// a single URL scan.
package scan

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phishguard/phishguard/pkg/defaults"
	"github.com/phishguard/phishguard/pkg/insight"
	"github.com/phishguard/phishguard/pkg/risk"
)

// ID uniquely identifies one scan.
type ID string

// NewID returns a fresh random scan ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// Request is a user submission.
type Request struct {
	URL string `json:"url"`
}

// NewRequest trims the URL and rejects empty input.
func NewRequest(rawURL string) (Request, error) {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return Request{}, ErrEmptyURL
	}
	return Request{URL: u}, nil
}

// Detail is a structured insight as optionally sent by the service.
type Detail struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

// Response is the decoded body of POST /scan after defaulting. Fields the
// service omitted or sent malformed hold their defaults.
type Response struct {
	URL             string   `json:"url"`
	RiskLevel       string   `json:"risk_level"`
	Status          string   `json:"status"`
	ConfidenceScore int      `json:"confidence_score"`
	DomainAgeDays   *int     `json:"domain_age_days,omitempty"`
	Insights        []string `json:"insights"`
	Details         []Detail `json:"insight_details,omitempty"`
}

// Result is a classified scan outcome. It is never mutated after Normalize
// returns it.
type Result struct {
	ID              ID                `json:"id"`
	URL             string            `json:"url"`
	Tier            risk.Tier         `json:"tier"`
	Verified        bool              `json:"verified"`
	ConfidenceScore int               `json:"confidence_score"`
	DomainAgeDays   *int              `json:"domain_age_days,omitempty"`
	RiskLabel       string            `json:"risk_label"`
	StatusLabel     string            `json:"status_label"`
	Insights        []string          `json:"insights"`
	Details         []insight.Insight `json:"details"`
	ScannedAt       time.Time         `json:"scanned_at"`
}

// Normalize classifies a response into a Result. The requested URL is used
// when the service echoes none.
func Normalize(id ID, req Request, resp *Response, at time.Time) *Result {
	verdict := risk.Classify(resp.RiskLevel, resp.Status)

	u := strings.TrimSpace(resp.URL)
	if u == "" {
		u = req.URL
	}
	status := strings.TrimSpace(resp.Status)
	if status == "" {
		status = defaults.StatusUnknown
	}

	res := &Result{
		ID:              id,
		URL:             u,
		Tier:            verdict.Tier,
		Verified:        verdict.Verified,
		ConfidenceScore: ClampConfidence(resp.ConfidenceScore),
		RiskLabel:       resp.RiskLevel,
		StatusLabel:     status,
		ScannedAt:       at,
	}
	if resp.DomainAgeDays != nil && *resp.DomainAgeDays >= 0 {
		age := *resp.DomainAgeDays
		res.DomainAgeDays = &age
	}

	if len(resp.Details) > 0 {
		res.Details = make([]insight.Insight, 0, len(resp.Details))
		res.Insights = make([]string, 0, len(resp.Details))
		for _, d := range resp.Details {
			res.Details = append(res.Details, insight.FromStructured(d.Severity, d.Text))
			res.Insights = append(res.Insights, d.Text)
		}
		return res
	}

	res.Insights = append([]string{}, resp.Insights...)
	res.Details = insight.ParseAll(res.Insights)
	return res
}

// ClampConfidence bounds a confidence score to 0..100.
func ClampConfidence(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// Host returns the host part of the result URL, tolerating scheme-less input.
func (r *Result) Host() string {
	return HostOf(r.URL)
}

// DomainAge returns the display form of the domain age.
func (r *Result) DomainAge() string {
	if r.DomainAgeDays == nil {
		return "Unknown"
	}
	if *r.DomainAgeDays == 1 {
		return "1 Day"
	}
	return strconv.Itoa(*r.DomainAgeDays) + " Days"
}
