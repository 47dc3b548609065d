package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/phishguard/phishguard/pkg/history"
	"github.com/phishguard/phishguard/pkg/iohelper"
	"github.com/phishguard/phishguard/pkg/jsonutil"
	"github.com/phishguard/phishguard/pkg/risk"
	"github.com/phishguard/phishguard/pkg/scan"
	"github.com/phishguard/phishguard/pkg/ui"
)

// maxResultFile bounds -in reads; a result document is a few kilobytes.
const maxResultFile = 8 << 20

func runReport() {
	cmd := newCommand("report", "phishguard report [-id <scan id> | -in <result.json>] [flags]",
		"Render a scan result as a PDF report. Without -id or -in the most recent archived scan is used.")
	id := cmd.fs.String("id", "", "Archived scan id")
	in := cmd.fs.String("in", "", "Read the scan result from a JSON file (as written by -events or the MCP server)")
	cfg := cmd.parse(os.Args[2:])

	if *id != "" && *in != "" {
		exitWithUsage("-id and -in are mutually exclusive", cmd.usage)
	}

	var (
		res *scan.Result
		err error
	)
	if *in != "" {
		res, err = readResultFile(*in)
	} else {
		res, err = archivedResult(cfg.ArchiveDir, strings.TrimSpace(*id))
	}
	if err != nil {
		exitWithError("%v", err)
	}

	gen, err := newReportGenerator(cfg)
	if err != nil {
		exitWithError("%v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	path, err := gen.WriteFile(ctx, cfg.ReportDir, res)
	if err != nil {
		exitWithError("report: %v", err)
	}
	ui.PrintSuccess("Report written to " + path)
}

// archivedResult loads a scan from the local archive; an empty id selects
// the most recent one.
func archivedResult(dir, id string) (*scan.Result, error) {
	store, err := history.NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", dir, err)
	}
	if id == "" {
		latest := store.List(1)
		if len(latest) == 0 {
			return nil, errors.New("the archive is empty; run 'phishguard scan' first")
		}
		return latest[0], nil
	}
	res, err := store.Get(id)
	if errors.Is(err, history.ErrNotFound) {
		return nil, fmt.Errorf("no archived scan with id %q", id)
	}
	return res, err
}

// readResultFile decodes a scan.Result document.
func readResultFile(path string) (*scan.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := iohelper.ReadBodyStrict(f, maxResultFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var res scan.Result
	if err := jsonutil.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%s: not a scan result: %w", path, err)
	}
	if strings.TrimSpace(res.URL) == "" {
		return nil, fmt.Errorf("%s: scan result has no url", path)
	}
	if !res.Tier.IsValid() {
		res.Tier = risk.TierOf(res.RiskLabel)
	}
	return &res, nil
}
