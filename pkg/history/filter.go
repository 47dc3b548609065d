package history

import "strings"

// Filter returns the records whose URL or risk label contains query,
// case-insensitively. An empty query returns records unchanged.
func Filter(records []Record, query string) []Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.URL), q) ||
			strings.Contains(strings.ToLower(r.RiskLabel), q) {
			out = append(out, r)
		}
	}
	return out
}

// Limit truncates records to at most n entries. n <= 0 means no limit.
func Limit(records []Record, n int) []Record {
	if n <= 0 || len(records) <= n {
		return records
	}
	return records[:n]
}
