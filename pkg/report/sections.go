package report

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	gofpdf "github.com/go-pdf/fpdf"
	"github.com/phishguard/phishguard/pkg/insight"
	"github.com/phishguard/phishguard/pkg/risk"
	"github.com/phishguard/phishguard/pkg/scan"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	headerBandH = 30.0
	labelW      = 45.0
	severityW   = 28.0
	rowLineH    = 6.0

	insightsTitle = "Security Insights / Reasons"
)

// symbols are dropped before text reaches the cp1252 core fonts, which have
// no glyphs for them.
var symbols = runes.Predicate(func(r rune) bool {
	switch {
	case r == 0x200D, r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0x1F000:
		return true
	case r >= 0x2000 && unicode.Is(unicode.So, r):
		return true
	}
	return false
})

type document struct {
	pdf    *gofpdf.Fpdf
	cfg    Config
	accent rgb
	tr     func(string) string
}

func newDocument(pdf *gofpdf.Fpdf, cfg Config, accent rgb) *document {
	return &document{
		pdf:    pdf,
		cfg:    cfg,
		accent: accent,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// text prepares s for a core font.
func (d *document) text(s string) string {
	clean, _, err := transform.String(runes.Remove(symbols), s)
	if err != nil {
		clean = s
	}
	return d.tr(strings.TrimSpace(clean))
}

func (d *document) contentWidth() float64 {
	pageW, _ := d.pdf.GetPageSize()
	left, _, right, _ := d.pdf.GetMargins()
	return pageW - left - right
}

func (d *document) pageBreakY() float64 {
	_, pageH := d.pdf.GetPageSize()
	return pageH - footerMargin
}

func (d *document) header() {
	pdf := d.pdf
	pageW, _ := pdf.GetPageSize()
	left, _, _, _ := pdf.GetMargins()

	pdf.SetFillColor(d.accent.r, d.accent.g, d.accent.b)
	pdf.Rect(0, 0, pageW, headerBandH, "F")

	pdf.SetXY(left, 7)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(0, 10, d.text(d.cfg.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, d.text(d.cfg.CompanyName), "", 1, "L", false, 0, "")

	pdf.SetY(headerBandH + 8)
}

func (d *document) footer(at time.Time) {
	pdf := d.pdf
	pdf.SetTextColor(120, 120, 120)
	if d.cfg.FooterText != "" {
		pdf.SetY(-19)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 4, d.text(d.cfg.FooterText), "", 1, "C", false, 0, "")
	} else {
		pdf.SetY(-15)
	}
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetDrawColor(200, 200, 200)
	line := fmt.Sprintf("Generated %s | Page %d of {nb}", at.Format(timestampLayout), pdf.PageNo())
	pdf.CellFormat(0, 6, line, "T", 0, "C", false, 0, "")
}

func (d *document) sectionTitle(title string) {
	pdf := d.pdf
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(30, 41, 59)
	pdf.SetDrawColor(d.accent.r, d.accent.g, d.accent.b)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.Ln(3)
}

func (d *document) fields(res *scan.Result, at time.Time) {
	d.sectionTitle("Scan Summary")

	scanned := res.ScannedAt
	if scanned.IsZero() {
		scanned = at
	}
	// Core fonts cannot show non-Latin hosts, so lookalikes are printed in
	// punycode instead of being blanked.
	domain := scan.RegisteredDomain(res.URL)
	if ascii := scan.ASCIIHost(domain); ascii != domain {
		domain = ascii + " (internationalized)"
	}
	if domain == "" {
		domain = "Unknown"
	}
	status := res.StatusLabel
	if status == "" {
		status = "UNKNOWN"
	}

	d.field("Target URL", scan.ASCIIURL(res.URL), rgb{60, 60, 60}, "")
	d.field("Registered Domain", domain, rgb{60, 60, 60}, "")
	d.field("Scan Date", scanned.Format(timestampLayout), rgb{60, 60, 60}, "")
	d.field("Risk Level", riskText(res), tierColor(res.Tier), "B")
	d.field("Confidence", fmt.Sprintf("%d%%", res.ConfidenceScore), rgb{60, 60, 60}, "")
	d.field("Status", status, rgb{60, 60, 60}, "")
	d.field("Domain Age", res.DomainAge(), rgb{60, 60, 60}, "")
	d.verified(res.Verified)
}

func (d *document) field(label, value string, c rgb, style string) {
	pdf := d.pdf
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(labelW, 7, label+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", style, 10)
	pdf.SetTextColor(c.r, c.g, c.b)
	pdf.MultiCell(0, 7, d.text(value), "", "L", false)
}

func (d *document) verified(ok bool) {
	pdf := d.pdf
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(labelW, 7, "Verified Entity:", "", 0, "L", false, 0, "")
	if !ok {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(0, 7, "No", "", 1, "L", false, 0, "")
		return
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(16, 185, 129)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(38, 7, "VERIFIED ENTITY", "", 1, "C", true, 0, "")
}

func (d *document) verdict(res *scan.Result) {
	pdf := d.pdf
	c := tierColor(res.Tier)
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(c.r, c.g, c.b)
	pdf.CellFormat(0, 7, "Verdict: "+res.Tier.Title(), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.MultiCell(0, 5, d.text(res.Tier.Message()), "", "L", false)
	pdf.Ln(6)
}

// insights renders the findings table. Nothing is drawn for a result with
// no insights. The header row repeats on every continuation page.
func (d *document) insights(ctx context.Context, res *scan.Result) error {
	items := res.Details
	if len(items) == 0 && len(res.Insights) > 0 {
		items = insight.ParseAll(res.Insights)
	}
	if len(items) == 0 {
		return nil
	}

	pdf := d.pdf
	breakY := d.pageBreakY()
	if pdf.GetY()+40 > breakY {
		pdf.AddPage()
	}

	d.sectionTitle("Findings")
	counts := insight.Counts(items)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(0, 5, fmt.Sprintf("%d findings: %d critical, %d warning, %d info",
		len(items), counts[insight.Critical], counts[insight.Warning], counts[insight.Info]),
		"", 1, "L", false, 0, "")
	pdf.Ln(2)

	textW := d.contentWidth() - severityW
	d.tableHeader(textW)

	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		text := d.text(it.Text)
		if text == "" {
			text = "-"
		}
		pdf.SetFont("Helvetica", "", 9)
		lines := pdf.SplitLines([]byte(text), textW)
		h := rowLineH * float64(max(1, len(lines)))
		if pdf.GetY()+h > breakY {
			pdf.AddPage()
			d.tableHeader(textW)
		}

		st := rowStyleFor(it.Severity, i)
		pdf.SetFillColor(st.fill.r, st.fill.g, st.fill.b)
		pdf.SetDrawColor(200, 200, 200)

		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetTextColor(st.label.r, st.label.g, st.label.b)
		pdf.CellFormat(severityW, h, severityLabel(it.Severity), "1", 0, "C", true, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(st.text.r, st.text.g, st.text.b)
		pdf.MultiCell(textW, rowLineH, text, "1", "L", true)
	}
	return nil
}

func (d *document) tableHeader(textW float64) {
	pdf := d.pdf
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(d.accent.r, d.accent.g, d.accent.b)
	pdf.SetDrawColor(d.accent.r, d.accent.g, d.accent.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(severityW, 8, "Severity", "1", 0, "C", true, 0, "")
	pdf.CellFormat(textW, 8, insightsTitle, "1", 1, "L", true, 0, "")
}

type rowStyle struct {
	fill, label, text rgb
}

func rowStyleFor(s insight.Severity, i int) rowStyle {
	switch s {
	case insight.Critical:
		return rowStyle{fill: rgb{254, 226, 226}, label: rgb{185, 28, 28}, text: rgb{127, 29, 29}}
	case insight.Warning:
		return rowStyle{fill: rgb{255, 243, 205}, label: rgb{180, 83, 9}, text: rgb{120, 53, 15}}
	}
	fill := rgb{255, 255, 255}
	if i%2 == 1 {
		fill = rgb{245, 247, 250}
	}
	return rowStyle{fill: fill, label: rgb{37, 99, 235}, text: rgb{60, 60, 60}}
}

func severityLabel(s insight.Severity) string {
	if !s.IsValid() {
		s = insight.Info
	}
	return strings.ToUpper(s.String())
}

func tierColor(t risk.Tier) rgb {
	switch t {
	case risk.Safe:
		return rgb{0, 128, 0}
	case risk.Caution:
		return rgb{255, 165, 0}
	default:
		return rgb{255, 0, 0}
	}
}

// riskText shows the tier, followed by the service's own label when it says
// something different ("CAUTION (Medium)").
func riskText(res *scan.Result) string {
	tier := res.Tier.String()
	if tier == "" {
		tier = string(risk.Critical)
	}
	label := strings.TrimSpace(res.RiskLabel)
	if label == "" || strings.EqualFold(label, tier) {
		return tier
	}
	return tier + " (" + label + ")"
}
