package scan

import (
	"errors"
	"testing"
	"time"

	"github.com/phishguard/phishguard/pkg/insight"
	"github.com/phishguard/phishguard/pkg/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewRequest(t *testing.T) {
	t.Parallel()

	req, err := NewRequest("  https://example.com  ")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", req.URL)

	_, err = NewRequest("   ")
	assert.True(t, errors.Is(err, ErrEmptyURL))
}

func TestNormalize_GlyphInsights(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	resp := &Response{
		URL:             "https://paypa1-login.com",
		RiskLevel:       "critical",
		Status:          "BRAND IMPERSONATION",
		ConfidenceScore: 90,
		Insights:        []string{"🚨 Potential impersonation of 'paypal'.", "⚠️ Detection Reason: typo."},
	}
	res := Normalize("id-1", Request{URL: "paypa1-login.com"}, resp, at)

	assert.Equal(t, ID("id-1"), res.ID)
	assert.Equal(t, "https://paypa1-login.com", res.URL)
	assert.Equal(t, risk.Critical, res.Tier)
	assert.False(t, res.Verified)
	assert.Equal(t, 90, res.ConfidenceScore)
	assert.Equal(t, at, res.ScannedAt)
	require.Len(t, res.Details, 2)
	assert.Equal(t, insight.Critical, res.Details[0].Severity)
	assert.Equal(t, insight.Warning, res.Details[1].Severity)
	assert.Equal(t, resp.Insights, res.Insights)
}

func TestNormalize_StructuredDetailsPreferred(t *testing.T) {
	t.Parallel()

	resp := &Response{
		RiskLevel: "SAFE",
		Status:    "VERIFIED ENTITY",
		Insights:  []string{"🚨 ignored"},
		Details:   []Detail{{Severity: "info", Text: "✅ google.com is a manually verified Trusted Entity."}},
	}
	res := Normalize(NewID(), Request{URL: "google.com"}, resp, time.Now())

	assert.Equal(t, risk.Safe, res.Tier)
	assert.True(t, res.Verified)
	assert.Equal(t, "google.com", res.URL)
	require.Len(t, res.Details, 1)
	assert.Equal(t, insight.Info, res.Details[0].Severity)
	assert.Equal(t, "google.com is a manually verified Trusted Entity.", res.Details[0].Text)
}

func TestNormalize_Defaults(t *testing.T) {
	t.Parallel()

	res := Normalize(NewID(), Request{URL: "x.test"}, &Response{RiskLevel: "Medium", ConfidenceScore: 250, DomainAgeDays: intPtr(-3)}, time.Now())

	assert.Equal(t, risk.Caution, res.Tier)
	assert.Equal(t, "UNKNOWN", res.StatusLabel)
	assert.Equal(t, 100, res.ConfidenceScore)
	assert.Nil(t, res.DomainAgeDays)
	assert.NotNil(t, res.Insights)
	assert.Empty(t, res.Details)
	assert.Equal(t, "Unknown", res.DomainAge())
}

func TestNormalize_CopiesInput(t *testing.T) {
	t.Parallel()

	resp := &Response{RiskLevel: "SAFE", Insights: []string{"a"}, DomainAgeDays: intPtr(40)}
	res := Normalize(NewID(), Request{URL: "a.test"}, resp, time.Now())

	resp.Insights[0] = "mutated"
	*resp.DomainAgeDays = 1
	assert.Equal(t, "a", res.Insights[0])
	assert.Equal(t, "40 Days", res.DomainAge())
}

func TestHostOf(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://Login.Example.com/path?q=1": "login.example.com",
		"example.org":                        "example.org",
		"http://192.168.1.10:8080/x":         "192.168.1.10",
		"":                                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, HostOf(in), in)
	}
}

func TestRegisteredDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "example.co.uk", RegisteredDomain("https://secure.login.example.co.uk/"))
	assert.Equal(t, "github.io", RegisteredDomain("github.io"))
	assert.Equal(t, "10.0.0.1", RegisteredDomain("http://10.0.0.1/"))
	assert.Equal(t, "", RegisteredDomain(""))
}

func TestASCIIURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://аpple.com/login":      "https://xn--pple-43d.com/login",
		"аpple.com":                    "xn--pple-43d.com",
		"https://аpple.com:8443/x?q=1": "https://xn--pple-43d.com:8443/x?q=1",
		"https://apple.com/login":      "https://apple.com/login",
		"":                             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ASCIIURL(in), in)
	}
}

func TestASCIIHost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "xn--pple-43d.com", ASCIIHost("аpple.com"))
	assert.Equal(t, "example.com", ASCIIHost("example.com"))
	assert.Equal(t, "", ASCIIHost(""))
}

func TestDomainAge(t *testing.T) {
	t.Parallel()

	r := &Result{DomainAgeDays: intPtr(1)}
	assert.Equal(t, "1 Day", r.DomainAge())
	r.DomainAgeDays = intPtr(0)
	assert.Equal(t, "0 Days", r.DomainAge())
}

func TestNewID_Unique(t *testing.T) {
	t.Parallel()
	assert.NotEqual(t, NewID(), NewID())
}
