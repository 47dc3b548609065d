package scanclient

import (
	"fmt"
	"strings"
	"time"

	"github.com/phishguard/phishguard/pkg/defaults"
	"github.com/phishguard/phishguard/pkg/history"
	"github.com/phishguard/phishguard/pkg/jsonutil"
	"github.com/phishguard/phishguard/pkg/scan"
)

// timestampLayouts are the forms the service has been seen to emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// decodeScanResponse decodes a scan body. Only a JSON object is required;
// every member defaults independently when missing or malformed.
func decodeScanResponse(data []byte) (*scan.Response, error) {
	obj, err := jsonutil.DecodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	resp := &scan.Response{Status: defaults.StatusUnknown, Insights: []string{}}
	resp.URL, _ = obj.String("url")
	resp.RiskLevel, _ = obj.String("risk_level")
	if s, ok := obj.String("status"); ok && strings.TrimSpace(s) != "" {
		resp.Status = s
	}

	if v, ok := confidence(obj); ok {
		resp.ConfidenceScore = scan.ClampConfidence(v)
	}
	if v, ok := obj.Int("domain_age_days"); ok && v >= 0 {
		resp.DomainAgeDays = &v
	}
	if list, ok := obj.Strings("insights"); ok {
		resp.Insights = list
	}
	if details, ok := obj.Objects("insight_details"); ok {
		for _, d := range details {
			text, ok := d.String("text")
			if !ok || strings.TrimSpace(text) == "" {
				continue
			}
			sev, _ := d.String("severity")
			resp.Details = append(resp.Details, scan.Detail{Severity: sev, Text: text})
		}
	}
	return resp, nil
}

// confidence reads confidence_score, falling back to the older
// "confidence" member.
func confidence(obj jsonutil.Object) (int, bool) {
	if v, ok := obj.Int("confidence_score"); ok {
		return v, true
	}
	return obj.Int("confidence")
}

// decodeHistory decodes a history listing. Entries that are not objects
// are dropped; fields default independently.
func decodeHistory(data []byte) ([]history.Record, error) {
	objs, err := jsonutil.DecodeObjects(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	records := make([]history.Record, 0, len(objs))
	for _, obj := range objs {
		rec := history.Record{}
		// Numeric IDs come back in their JSON form.
		rec.ID, _ = obj.String("id")
		rec.URL, _ = obj.String("url")
		rec.RiskLabel, _ = obj.String("risk_level")
		rec.StatusLabel, _ = obj.String("status")
		if ts, ok := obj.String("timestamp"); ok {
			if t, ok := parseTimestamp(ts); ok {
				rec.Timestamp = t
			}
		}
		if v, ok := confidence(obj); ok {
			c := scan.ClampConfidence(v)
			rec.ConfidenceScore = &c
		}
		if list, ok := obj.Strings("insights"); ok && len(list) > 0 {
			rec.Insights = list
		}
		records = append(records, rec)
	}
	return records, nil
}
