package report

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds report branding. It is usually loaded from a YAML file so
// each organization can carry its own name and colors.
type Config struct {
	// CompanyName appears under the title in the header band
	CompanyName string `yaml:"company_name" json:"company_name"`

	// Title is the document title
	Title string `yaml:"title" json:"title"`

	// AccentColor is the header band color (hex, e.g. "#2980b9")
	AccentColor string `yaml:"accent_color" json:"accent_color"`

	// FooterText is printed above the generation line on every page
	FooterText string `yaml:"footer_text" json:"footer_text"`

	// PageSize is one of A3, A4, A5, Letter, Legal
	PageSize string `yaml:"page_size" json:"page_size"`

	// Orientation is "portrait" or "landscape" (P/L accepted)
	Orientation string `yaml:"orientation" json:"orientation"`
}

const (
	defaultTitle       = "PhishGuard Security Report"
	defaultCompany     = "PhishGuard"
	defaultAccentColor = "#2980b9"
	defaultPageSize    = "A4"
	defaultOrientation = "portrait"
)

var pageSizes = map[string]string{
	"a3":     "A3",
	"a4":     "A4",
	"a5":     "A5",
	"letter": "Letter",
	"legal":  "Legal",
}

// DefaultConfig returns the stock PhishGuard branding.
func DefaultConfig() Config {
	return Config{
		CompanyName: defaultCompany,
		Title:       defaultTitle,
		AccentColor: defaultAccentColor,
		PageSize:    defaultPageSize,
		Orientation: defaultOrientation,
	}
}

// LoadConfig reads branding from a YAML file. Keys absent from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the color, page size and orientation.
func (c Config) Validate() error {
	if c.AccentColor != "" {
		if _, err := parseHexColor(c.AccentColor); err != nil {
			return fmt.Errorf("%w: accent_color: %w", ErrInvalidConfig, err)
		}
	}
	if c.PageSize != "" {
		if _, ok := pageSizes[strings.ToLower(c.PageSize)]; !ok {
			return fmt.Errorf("%w: page_size %q", ErrInvalidConfig, c.PageSize)
		}
	}
	if c.Orientation != "" && orientationCode(c.Orientation) == "" {
		return fmt.Errorf("%w: orientation %q", ErrInvalidConfig, c.Orientation)
	}
	return nil
}

// withDefaults fills empty fields. Invalid values are left for Validate.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if strings.TrimSpace(c.Title) == "" {
		c.Title = d.Title
	}
	if strings.TrimSpace(c.CompanyName) == "" {
		c.CompanyName = d.CompanyName
	}
	if c.AccentColor == "" {
		c.AccentColor = d.AccentColor
	}
	if c.PageSize == "" {
		c.PageSize = d.PageSize
	}
	if c.Orientation == "" {
		c.Orientation = d.Orientation
	}
	return c
}

func orientationCode(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p", "portrait":
		return "P"
	case "l", "landscape":
		return "L"
	}
	return ""
}

type rgb struct{ r, g, b int }

func parseHexColor(s string) (rgb, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return rgb{}, fmt.Errorf("bad hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return rgb{}, fmt.Errorf("bad hex color %q", s)
	}
	return rgb{r: int(v >> 16 & 0xff), g: int(v >> 8 & 0xff), b: int(v & 0xff)}, nil
}
