// Package report renders a classified scan result as a branded, paginated
// PDF document.
package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gofpdf "github.com/go-pdf/fpdf"
	"github.com/phishguard/phishguard/pkg/defaults"
	"github.com/phishguard/phishguard/pkg/scan"
)

const (
	// footerMargin reserves room at the bottom of each page for the footer.
	footerMargin = 22.0

	timestampLayout = "2006-01-02 15:04:05 MST"
)

// Generator builds PDF reports. A Generator is safe for concurrent use; each
// call renders into its own document.
type Generator struct {
	cfg    Config
	accent rgb
	now    func() time.Time

	// noCompress disables stream compression so text can be found in the
	// raw bytes.
	noCompress bool
}

// New returns a Generator for cfg. Empty fields take their defaults and an
// unparsable accent color falls back to the stock brand color.
func New(cfg Config) *Generator {
	cfg = cfg.withDefaults()
	accent, err := parseHexColor(cfg.AccentColor)
	if err != nil {
		accent, _ = parseHexColor(defaultAccentColor)
	}
	return &Generator{cfg: cfg, accent: accent, now: time.Now}
}

// Config returns the effective configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// Generate renders res and returns the complete document. Rendering failures
// wrap ErrRender; a canceled ctx returns ctx.Err().
func (g *Generator) Generate(ctx context.Context, res *scan.Result) ([]byte, error) {
	return g.render(ctx, res, g.now())
}

// WriteFile renders res into dir under Filename and returns the final path.
// The document goes to a temp file in dir first and is renamed into place
// only once complete, so a failed call leaves nothing behind.
func (g *Generator) WriteFile(ctx context.Context, dir string, res *scan.Result) (string, error) {
	at := g.now()
	data, err := g.render(ctx, res, at)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = defaults.ReportDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create directory: %w", ErrWrite, err)
	}

	path := filepath.Join(dir, Filename(res, at))
	tmp, err := os.CreateTemp(dir, ".phishguard-report-*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %w", ErrWrite, err)
	}
	tmpPath := tmp.Name()
	fail := func(step string, err error) (string, error) {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %s: %w", ErrWrite, step, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: close temp file: %w", ErrWrite, err)
	}
	if err := ctx.Err(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: rename temp file: %w", ErrWrite, err)
	}
	return path, nil
}

func (g *Generator) render(ctx context.Context, res *scan.Result, at time.Time) (out []byte, err error) {
	if res == nil {
		return nil, fmt.Errorf("%w: no result", ErrRender)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: panic: %v", ErrRender, r)
		}
	}()

	orientation := orientationCode(g.cfg.Orientation)
	if orientation == "" {
		orientation = g.cfg.Orientation
	}
	pdf := gofpdf.New(orientation, "mm", g.cfg.PageSize, "")
	pdf.SetCompression(!g.noCompress)
	pdf.SetCreationDate(at)
	pdf.SetTitle(g.cfg.Title, true)
	pdf.SetAuthor(g.cfg.CompanyName, true)
	pdf.SetCreator("PhishGuard", true)
	pdf.SetAutoPageBreak(true, footerMargin)
	pdf.AliasNbPages("")

	doc := newDocument(pdf, g.cfg, g.accent)
	pdf.SetFooterFunc(func() { doc.footer(at) })

	pdf.AddPage()
	doc.header()
	doc.fields(res, at)
	doc.verdict(res)
	if err := doc.insights(ctx, res); err != nil {
		return nil, err
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}
