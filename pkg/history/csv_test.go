package history

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard/phishguard/pkg/testutil"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	conf := 90
	recs := []Record{
		{
			ID:              "7",
			URL:             "https://evil.test/login",
			Timestamp:       time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
			RiskLabel:       "CRITICAL",
			StatusLabel:     "THREAT PATTERN",
			ConfidenceScore: &conf,
			Insights:        []string{"🚨 keyword", "⛔ panic"},
		},
		{ID: "8", URL: "https://ok.test", RiskLabel: "SAFE", StatusLabel: "VERIFIED"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, recs, CSVOptions{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvColumns, rows[0])
	assert.Equal(t, []string{"7", "2026-02-03T04:05:06Z", "https://evil.test/login", "CRITICAL", "CRITICAL", "THREAT PATTERN", "false", "90", "🚨 keyword | ⛔ panic"}, rows[1])
	assert.Equal(t, "SAFE", rows[2][4])
	assert.Equal(t, "true", rows[2][6])
	assert.Equal(t, "", rows[2][1])
	assert.Equal(t, "", rows[2][7])
}

func TestWriteCSV_ExcelBOM(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, DefaultCSVOptions()))
	assert.True(t, strings.HasPrefix(buf.String(), utf8BOM))
	assert.Contains(t, buf.String(), "risk_level")
}

func TestWriteCSV_SanitizesFormulas(t *testing.T) {
	t.Parallel()

	recs := []Record{{ID: "1", URL: "=HYPERLINK(\"http://x\")", RiskLabel: "-1"}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, recs, CSVOptions{SanitizeFormulas: true}))
	assert.Contains(t, buf.String(), "'=HYPERLINK")
	assert.Contains(t, buf.String(), "'-1")
}

func TestSanitizeForCSV(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":         "",
		"=1+1":     "'=1+1",
		"+cmd":     "'+cmd",
		"@SUM":     "'@SUM",
		"\tx":      "'\tx",
		"plain":    "plain",
		"https://": "https://",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeForCSV(in), "%q", in)
	}
}

func TestWriteCSV_WriterErrors(t *testing.T) {
	t.Parallel()

	recs := []Record{{ID: "1", URL: "https://a.example", RiskLabel: "SAFE"}}

	err := WriteCSV(&testutil.FailingWriter{}, recs, DefaultCSVOptions())
	assert.ErrorIs(t, err, testutil.ErrFault, "BOM write fails")

	err = WriteCSV(&testutil.FailingWriter{Limit: 16}, recs, CSVOptions{})
	assert.ErrorIs(t, err, testutil.ErrFault, "flush error surfaces")
}
