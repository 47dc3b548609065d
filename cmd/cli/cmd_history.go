package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/phishguard/phishguard/pkg/history"
	"github.com/phishguard/phishguard/pkg/ui"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadRecords reads history or exits with a user-facing message.
func loadRecords(ctx context.Context, src historySource) []history.Record {
	records, err := src.records(ctx)
	if err != nil {
		if src.local {
			exitWithError("%s: %v", src.name(), err)
		}
		src.logger.Debug("history request failed", slog.String("error", err.Error()))
		exitWithError("History unavailable: %s", describeFailure(err))
	}
	return records
}

func runHistory() {
	cmd := newCommand("history", "phishguard history [flags]", "List past scans, newest first.")
	search := cmd.fs.String("search", "", "Only show records whose URL contains this text")
	limit := cmd.fs.Int("limit", 0, "Show at most N records (0 = all)")
	local := cmd.fs.Bool("local", false, "Read the local archive instead of the scanning service")
	cfg := cmd.parse(os.Args[2:])

	ctx, cancel := signalContext()
	defer cancel()

	records := loadRecords(ctx, historySource{cfg: cfg, logger: slog.Default(), local: *local})
	records = history.Limit(history.Filter(records, *search), *limit)
	fmt.Fprint(ui.Output(), ui.RenderHistory(records))
}

func runStats() {
	cmd := newCommand("stats", "phishguard stats [flags]", "Show tier counts and headline numbers for past scans.")
	local := cmd.fs.Bool("local", false, "Read the local archive instead of the scanning service")
	search := cmd.fs.String("search", "", "Only count records whose URL contains this text")
	cfg := cmd.parse(os.Args[2:])

	ctx, cancel := signalContext()
	defer cancel()

	records := loadRecords(ctx, historySource{cfg: cfg, logger: slog.Default(), local: *local})
	printStats(history.Summarize(history.Filter(records, *search)))
}

func runExport() {
	cmd := newCommand("export", "phishguard export -out <file.csv> [flags]", "Export history as CSV.")
	out := cmd.fs.String("out", "", "Output file, or - for stdout")
	local := cmd.fs.Bool("local", false, "Read the local archive instead of the scanning service")
	search := cmd.fs.String("search", "", "Only export records whose URL contains this text")
	semicolon := cmd.fs.Bool("semicolon", false, "Use ; as the delimiter")
	plain := cmd.fs.Bool("plain", false, "Skip the byte order mark and formula escaping")
	cfg := cmd.parse(os.Args[2:])

	if *out == "" {
		exitWithUsage("-out is required", cmd.usage)
	}

	ctx, cancel := signalContext()
	defer cancel()

	records := history.Filter(loadRecords(ctx, historySource{cfg: cfg, logger: slog.Default(), local: *local}), *search)

	opts := history.DefaultCSVOptions()
	if *plain {
		opts = history.CSVOptions{}
	}
	if *semicolon {
		opts.Delimiter = ';'
	}

	if *out == "-" {
		if err := history.WriteCSV(os.Stdout, records, opts); err != nil {
			exitWithError("export: %v", err)
		}
		return
	}
	if err := writeFileAtomic(*out, func(w io.Writer) error {
		return history.WriteCSV(w, records, opts)
	}); err != nil {
		exitWithError("export: %v", err)
	}
	ui.PrintSuccess(fmt.Sprintf("Exported %d records to %s", len(records), *out))
}

// writeFileAtomic writes through a temporary file in the target directory and
// renames it into place, so a failed export never leaves a partial file.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".phishguard-export-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func runClear() {
	cmd := newCommand("clear", "phishguard clear [flags]", "Ask the scanning service to delete its scan history.")
	yes := cmd.fs.Bool("yes", false, "Do not ask for confirmation")
	cfg := cmd.parse(os.Args[2:])

	if !*yes && !confirm(os.Stdin, "Delete all scan history on "+cfg.ScannerURL+"? Type 'yes' to continue: ") {
		ui.PrintInfo("Aborted")
		return
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger := slog.Default()
	if err := newScanner(cfg, logger).ClearHistory(ctx); err != nil {
		logger.Debug("clear history failed", slog.String("error", err.Error()))
		exitWithError("Clear failed: %s", describeFailure(err))
	}
	ui.PrintSuccess("History cleared")
}

func confirm(r io.Reader, prompt string) bool {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes")
}
