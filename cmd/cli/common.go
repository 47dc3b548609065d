package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/phishguard/phishguard/pkg/config"
	"github.com/phishguard/phishguard/pkg/history"
	"github.com/phishguard/phishguard/pkg/httpclient"
	"github.com/phishguard/phishguard/pkg/output/dispatcher"
	"github.com/phishguard/phishguard/pkg/output/hooks"
	"github.com/phishguard/phishguard/pkg/report"
	"github.com/phishguard/phishguard/pkg/scanclient"
	"github.com/phishguard/phishguard/pkg/ui"
)

// command is the shared setup of every subcommand: a flag set carrying the
// configuration flags plus whatever the command adds.
type command struct {
	fs    *flag.FlagSet
	flags *config.Flags
	usage string
	args  []string
}

func newCommand(name, usage, summary string) *command {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	c := &command{fs: fs, flags: config.RegisterFlags(fs), usage: usage}
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s\n\n%s\n\nFlags:\n", usage, summary)
		fs.PrintDefaults()
	}
	return c
}

// parse parses args and resolves the configuration. Errors exit.
// Positional arguments may appear between flags.
func (c *command) parse(args []string) *config.Config {
	for {
		if err := c.fs.Parse(args); err != nil {
			exitWithUsage(err.Error(), c.usage)
		}
		args = c.fs.Args()
		if len(args) == 0 {
			break
		}
		c.args = append(c.args, args[0])
		args = args[1:]
	}
	cfg, err := c.flags.Resolve()
	if err != nil {
		exitWithError("configuration: %v", err)
	}
	ui.SetNoColor(cfg.NoColor)
	slog.SetDefault(newLogger(cfg, os.Stderr))
	return cfg
}

// arg returns the i'th positional argument or "".
func (c *command) arg(i int) string {
	if i < len(c.args) {
		return c.args[i]
	}
	return ""
}

// newLogger builds the process logger. Logs stay quiet unless something goes
// wrong; -verbose opens them up to debug.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if cfg.Verbose {
		opts.Level = slog.LevelDebug
	}
	if cfg.LogJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newScanner creates the scanning service client.
func newScanner(cfg *config.Config, logger *slog.Logger) *scanclient.Client {
	client, err := scanclient.New(cfg.ScannerURL, scanclient.Options{
		HTTPClient: httpclient.New(httpclient.WithTimeout(cfg.Timeout)),
		RateLimit:  cfg.RateLimit,
		Logger:     logger,
	})
	if err != nil {
		exitWithError("scanner: %v", err)
	}
	return client
}

// holdInterval converts the configured announcement interval to the session
// option, where zero means the default and a negative value disables holds.
func holdInterval(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}

// newReportGenerator applies the optional branding file.
func newReportGenerator(cfg *config.Config) (*report.Generator, error) {
	rc := report.DefaultConfig()
	if cfg.BrandingFile != "" {
		loaded, err := report.LoadConfig(cfg.BrandingFile)
		if err != nil {
			return nil, fmt.Errorf("branding: %w", err)
		}
		rc = loaded
	}
	return report.New(rc), nil
}

// telemetryHooks creates the metrics and tracing hooks the configuration
// asks for. The caller owns closing them, normally via the dispatcher.
func telemetryHooks(cfg *config.Config, logger *slog.Logger) ([]dispatcher.Hook, error) {
	var out []dispatcher.Hook
	if cfg.MetricsPort > 0 {
		prom, err := hooks.NewPrometheusHook(hooks.PrometheusOptions{Port: cfg.MetricsPort, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		logger.Info("serving metrics", slog.String("addr", prom.MetricsAddr()))
		out = append(out, prom)
	}
	if cfg.OTelEndpoint != "" {
		tracer, err := hooks.NewOTelHook(hooks.OTelOptions{
			Endpoint: cfg.OTelEndpoint,
			Insecure: cfg.OTelInsecure,
		})
		if err != nil {
			for _, h := range out {
				if c, ok := h.(io.Closer); ok {
					_ = c.Close()
				}
			}
			return nil, fmt.Errorf("tracing: %w", err)
		}
		out = append(out, tracer)
	}
	return out, nil
}

// historySource reads records from the scanning service or the local archive.
type historySource struct {
	cfg    *config.Config
	logger *slog.Logger
	local  bool
}

func (s historySource) name() string {
	if s.local {
		return "local archive"
	}
	return "scanning service"
}

func (s historySource) records(ctx context.Context) ([]history.Record, error) {
	if s.local {
		store, err := history.NewStore(s.cfg.ArchiveDir)
		if err != nil {
			return nil, err
		}
		return store.Records(0), nil
	}
	return newScanner(s.cfg, s.logger).History(ctx)
}

// describeFailure turns a client error into the short text users see. Raw
// service payloads never reach the terminal.
func describeFailure(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, scanclient.ErrStatus):
		return "the scanning service rejected the request"
	case errors.Is(err, scanclient.ErrMalformed):
		return "the scanning service sent an unreadable response"
	default:
		return "could not reach the scanning service"
	}
}
