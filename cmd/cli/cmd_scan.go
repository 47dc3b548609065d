package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/phishguard/phishguard/pkg/defaults"
	"github.com/phishguard/phishguard/pkg/history"
	"github.com/phishguard/phishguard/pkg/output/dispatcher"
	"github.com/phishguard/phishguard/pkg/output/hooks"
	"github.com/phishguard/phishguard/pkg/output/writers"
	"github.com/phishguard/phishguard/pkg/scanclient"
	"github.com/phishguard/phishguard/pkg/session"
	"github.com/phishguard/phishguard/pkg/ui"
)

const scanUsage = "phishguard scan [flags] <url>"

func runScan() {
	os.Exit(scanMain(os.Args[2:]))
}

// scanMain runs one scan session and returns the exit code, so deferred
// cleanup of hooks and writers always runs.
func scanMain(args []string) int {
	cmd := newCommand("scan", scanUsage,
		"Scan a URL with the scanning service, show the verdict and refresh history statistics.")
	target := cmd.fs.String("u", "", "URL to scan (alternative to the positional argument)")
	withReport := cmd.fs.Bool("report", false, "Write a PDF report of the result to -report-dir")
	eventsPath := cmd.fs.String("events", "", "Write the session event stream as JSON lines to this file")
	noStats := cmd.fs.Bool("no-stats", false, "Skip the history refresh after the scan")
	cfg := cmd.parse(args)

	rawURL := *target
	if rawURL == "" {
		rawURL = cmd.arg(0)
	}

	logger := slog.Default()
	ctx, cancel := signalContext()
	defer cancel()

	client := newScanner(cfg, logger)

	events := dispatcher.New(dispatcher.Config{Logger: logger})
	defer func() {
		if err := events.Close(); err != nil {
			logger.Warn("closing event consumers", slog.String("error", err.Error()))
		}
	}()

	events.RegisterHook(hooks.NewConsoleHook(hooks.ConsoleOptions{}))
	events.RegisterHook(hooks.NewLogHook(logger))

	archive, err := hooks.NewArchiveHook(hooks.ArchiveHookOptions{StorePath: cfg.ArchiveDir, Logger: logger})
	if err != nil {
		ui.PrintError(fmt.Sprintf("archive %s: %v", cfg.ArchiveDir, err))
		return defaults.ExitFailure
	}
	events.RegisterHook(archive)

	telemetry, err := telemetryHooks(cfg, logger)
	if err != nil {
		ui.PrintError(err.Error())
		return defaults.ExitFailure
	}
	for _, h := range telemetry {
		events.RegisterHook(h)
	}

	if *eventsPath != "" {
		f, err := os.Create(*eventsPath)
		if err != nil {
			ui.PrintError(fmt.Sprintf("events file: %v", err))
			return defaults.ExitFailure
		}
		// The dispatcher closes f through the writer.
		events.RegisterWriter(writers.NewJSONLWriter(f, writers.JSONLOptions{}))
	}

	sess := session.New(client, session.Options{
		Interval:    holdInterval(cfg.Interval),
		Emitter:     events,
		FailureKind: scanclient.FailureKind,
		Logger:      logger,
	})
	defer sess.Close()

	res, err := sess.Run(ctx, rawURL)
	switch {
	case errors.Is(err, session.ErrEmptyURL):
		ui.PrintError("a URL is required")
		fmt.Fprintln(os.Stderr, "Usage:", scanUsage)
		return defaults.ExitFailure
	case errors.Is(err, context.Canceled):
		return defaults.ExitCanceled
	case err != nil:
		// The console hook has already shown the failure notice.
		logger.Debug("scan failed", slog.String("error", err.Error()))
		return defaults.ExitFailure
	}

	if *withReport {
		gen, err := newReportGenerator(cfg)
		if err != nil {
			ui.PrintError(err.Error())
			return defaults.ExitFailure
		}
		path, err := gen.WriteFile(ctx, cfg.ReportDir, res)
		if err != nil {
			ui.PrintError(fmt.Sprintf("report: %v", err))
			return defaults.ExitFailure
		}
		ui.PrintSuccess("Report written to " + path)
	}

	if !*noStats {
		records, err := client.History(ctx)
		if err != nil {
			ui.PrintWarning("History unavailable: " + describeFailure(err))
			return defaults.ExitSuccess
		}
		printStats(history.Summarize(records))
	}
	return defaults.ExitSuccess
}

func printStats(s history.Summary) {
	w := ui.Output()
	fmt.Fprintln(w)
	fmt.Fprint(w, ui.RenderStatCards(s))
	fmt.Fprintln(w)
	fmt.Fprint(w, ui.RenderChart(history.ChartSeries(s.Counts)))
}
