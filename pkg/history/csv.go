package history

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"
)

// UTF-8 BOM for Excel compatibility.
const utf8BOM = "\xEF\xBB\xBF"

// CSVOptions configures CSV export.
type CSVOptions struct {
	// ExcelCompatible prefixes the output with a UTF-8 BOM.
	ExcelCompatible bool

	// SanitizeFormulas prefixes cells starting with = + - @ TAB CR with a
	// single quote so spreadsheets do not evaluate them.
	SanitizeFormulas bool

	// Delimiter sets the field delimiter. Zero means comma.
	Delimiter rune
}

// DefaultCSVOptions returns options suited to spreadsheet import.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{ExcelCompatible: true, SanitizeFormulas: true}
}

var csvColumns = []string{
	"id",
	"timestamp",
	"url",
	"risk_level",
	"tier",
	"status",
	"verified",
	"confidence_score",
	"insights",
}

// WriteCSV writes records as CSV with a header row.
func WriteCSV(w io.Writer, records []Record, opts CSVOptions) error {
	if opts.ExcelCompatible {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}
	if err := cw.Write(csvColumns); err != nil {
		return err
	}

	for _, r := range records {
		v := r.Verdict()
		conf := ""
		if r.ConfidenceScore != nil {
			conf = strconv.Itoa(*r.ConfidenceScore)
		}
		ts := ""
		if !r.Timestamp.IsZero() {
			ts = r.Timestamp.Format(time.RFC3339)
		}
		row := []string{
			r.ID,
			ts,
			r.URL,
			r.RiskLabel,
			v.Tier.String(),
			r.StatusLabel,
			strconv.FormatBool(v.Verified),
			conf,
			strings.Join(r.Insights, " | "),
		}
		if opts.SanitizeFormulas {
			for i := range row {
				row[i] = sanitizeForCSV(row[i])
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// sanitizeForCSV prevents CSV injection by prefixing dangerous characters.
func sanitizeForCSV(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
