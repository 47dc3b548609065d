// Package config resolves PhishGuard runtime settings from defaults, an
// optional YAML file, PHISHGUARD_* environment variables and command-line
// flags, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/phishguard/phishguard/pkg/defaults"
	"github.com/phishguard/phishguard/pkg/duration"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "PHISHGUARD_"

// Config holds all CLI configuration options
type Config struct {
	// Scanner service
	ScannerURL string        `yaml:"scanner_url"` // Base URL, e.g. http://localhost:8000/api
	Timeout    time.Duration `yaml:"timeout"`     // Per-request HTTP timeout
	RateLimit  float64       `yaml:"rate_limit"`  // Client-side requests per second (0 = unlimited)

	// Session
	Interval time.Duration `yaml:"interval"` // Hold between announcements

	// Files
	ReportDir    string `yaml:"report_dir"`    // Where PDF reports are written
	ArchiveDir   string `yaml:"archive_dir"`   // Local scan archive
	BrandingFile string `yaml:"branding_file"` // Report branding YAML (optional)

	// Telemetry
	MetricsPort  int    `yaml:"metrics_port"`  // Prometheus port (0 = disabled)
	OTelEndpoint string `yaml:"otel_endpoint"` // OTLP gRPC endpoint (empty = disabled)
	OTelInsecure bool   `yaml:"otel_insecure"` // Plaintext OTLP

	// Output
	NoColor bool `yaml:"no_color"`
	Verbose bool `yaml:"verbose"`
	LogJSON bool `yaml:"log_json"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		ScannerURL: defaults.ScannerURL,
		Timeout:    duration.HTTPAPI,
		RateLimit:  defaults.RateLimit,
		Interval:   duration.Announcement,
		ReportDir:  defaults.ReportDir,
		ArchiveDir: defaults.ArchiveDir,
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected so a
// typo does not silently fall back to a default.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from PHISHGUARD_* variables. NO_COLOR is honored
// as well. Malformed values are reported rather than ignored.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.Getenv)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	var errs []error
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(EnvPrefix + name)); v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		v := strings.TrimSpace(getenv(EnvPrefix + name))
		if v == "" {
			return
		}
		d, err := parseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, name, err))
			return
		}
		*dst = d
	}
	boolean := func(name string, dst *bool) {
		v := strings.TrimSpace(getenv(EnvPrefix + name))
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, name, err))
			return
		}
		*dst = b
	}

	str("SCANNER_URL", &c.ScannerURL)
	dur("TIMEOUT", &c.Timeout)
	dur("INTERVAL", &c.Interval)
	str("REPORT_DIR", &c.ReportDir)
	str("ARCHIVE_DIR", &c.ArchiveDir)
	str("BRANDING_FILE", &c.BrandingFile)
	str("OTEL_ENDPOINT", &c.OTelEndpoint)
	boolean("OTEL_INSECURE", &c.OTelInsecure)
	boolean("NO_COLOR", &c.NoColor)
	boolean("VERBOSE", &c.Verbose)
	boolean("LOG_JSON", &c.LogJSON)

	if v := strings.TrimSpace(getenv(EnvPrefix + "METRICS_PORT")); v != "" {
		if p, err := strconv.Atoi(v); err != nil {
			errs = append(errs, fmt.Errorf("%w: %sMETRICS_PORT: %w", ErrInvalidConfig, EnvPrefix, err))
		} else {
			c.MetricsPort = p
		}
	}
	if v := strings.TrimSpace(getenv(EnvPrefix + "RATE_LIMIT")); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err != nil {
			errs = append(errs, fmt.Errorf("%w: %sRATE_LIMIT: %w", ErrInvalidConfig, EnvPrefix, err))
		} else {
			c.RateLimit = r
		}
	}

	// https://no-color.org
	if getenv("NO_COLOR") != "" {
		c.NoColor = true
	}
	return errors.Join(errs...)
}

// parseDuration accepts Go durations ("30s") and bare seconds ("30").
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ScannerURL) == "" {
		return fmt.Errorf("%w: scanner_url", ErrMissingRequired)
	}
	u, err := url.Parse(c.ScannerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: scanner_url %q must be an http(s) URL", ErrInvalidConfig, c.ScannerURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: interval cannot be negative", ErrInvalidConfig)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate_limit cannot be negative", ErrInvalidConfig)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("%w: metrics_port %d out of range", ErrInvalidConfig, c.MetricsPort)
	}
	if strings.TrimSpace(c.ReportDir) == "" {
		return fmt.Errorf("%w: report_dir", ErrMissingRequired)
	}
	if strings.TrimSpace(c.ArchiveDir) == "" {
		return fmt.Errorf("%w: archive_dir", ErrMissingRequired)
	}
	return nil
}

// Flags holds the values bound by RegisterFlags. Only flags the user set on
// the command line are applied by Resolve.
type Flags struct {
	fs     *flag.FlagSet
	values Config
	path   string
}

// RegisterFlags binds the shared options to fs. Defaults shown in -help are
// the built-in defaults.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	d := Defaults()
	f := &Flags{fs: fs}
	v := &f.values

	fs.StringVar(&f.path, "config", os.Getenv(EnvPrefix+"CONFIG"), "YAML config file")

	fs.StringVar(&v.ScannerURL, "scanner", d.ScannerURL, "Scanner service base URL")
	fs.DurationVar(&v.Timeout, "timeout", d.Timeout, "HTTP timeout")
	fs.Float64Var(&v.RateLimit, "rate-limit", d.RateLimit, "Max scanner requests per second (0 = unlimited)")
	fs.DurationVar(&v.Interval, "interval", d.Interval, "Delay between progress announcements")

	fs.StringVar(&v.ReportDir, "report-dir", d.ReportDir, "Directory for PDF reports")
	fs.StringVar(&v.ArchiveDir, "archive-dir", d.ArchiveDir, "Local scan archive directory")
	fs.StringVar(&v.BrandingFile, "branding", d.BrandingFile, "Report branding YAML file")

	fs.IntVar(&v.MetricsPort, "metrics-port", d.MetricsPort, "Serve Prometheus metrics on this port (0 = off)")
	fs.StringVar(&v.OTelEndpoint, "otel-endpoint", d.OTelEndpoint, "OTLP gRPC endpoint for traces (empty = off)")
	fs.BoolVar(&v.OTelInsecure, "otel-insecure", d.OTelInsecure, "Use plaintext OTLP")

	fs.BoolVar(&v.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&v.NoColor, "nc", false, "No color (alias)")
	fs.BoolVar(&v.Verbose, "verbose", false, "Verbose (debug) logging")
	fs.BoolVar(&v.Verbose, "v", false, "Verbose (alias)")
	fs.BoolVar(&v.LogJSON, "log-json", false, "Log as JSON")

	return f
}

// Path returns the -config value.
func (f *Flags) Path() string {
	return f.path
}

// Resolve loads the config file, applies the environment, then applies every
// flag that was set explicitly. The FlagSet must already be parsed.
func (f *Flags) Resolve() (*Config, error) {
	cfg, err := Load(f.path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	src := &f.values
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "scanner":
			cfg.ScannerURL = src.ScannerURL
		case "timeout":
			cfg.Timeout = src.Timeout
		case "rate-limit":
			cfg.RateLimit = src.RateLimit
		case "interval":
			cfg.Interval = src.Interval
		case "report-dir":
			cfg.ReportDir = src.ReportDir
		case "archive-dir":
			cfg.ArchiveDir = src.ArchiveDir
		case "branding":
			cfg.BrandingFile = src.BrandingFile
		case "metrics-port":
			cfg.MetricsPort = src.MetricsPort
		case "otel-endpoint":
			cfg.OTelEndpoint = src.OTelEndpoint
		case "otel-insecure":
			cfg.OTelInsecure = src.OTelInsecure
		case "no-color", "nc":
			cfg.NoColor = src.NoColor
		case "verbose", "v":
			cfg.Verbose = src.Verbose
		case "log-json":
			cfg.LogJSON = src.LogJSON
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
