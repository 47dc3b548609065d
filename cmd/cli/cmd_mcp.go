package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/phishguard/phishguard/pkg/defaults"
	"github.com/phishguard/phishguard/pkg/duration"
	"github.com/phishguard/phishguard/pkg/history"
	"github.com/phishguard/phishguard/pkg/mcpserver"
	"github.com/phishguard/phishguard/pkg/output/dispatcher"
	"github.com/phishguard/phishguard/pkg/output/hooks"
	"github.com/phishguard/phishguard/pkg/scanclient"
	"github.com/phishguard/phishguard/pkg/ui"
)

// runMCP starts the MCP (Model Context Protocol) server.
// Supports two transport modes:
//   - stdio (default): For IDE integrations and desktop assistants
//   - -http <addr>:    Streamable HTTP for remote/Docker deployments
func runMCP() {
	cmd := newCommand("mcp", "phishguard mcp [-http <addr>] [flags]",
		"Start an MCP server exposing scan, classification, history and report tools.\n\n"+
			"Environment variables:\n"+
			"  PHISHGUARD_HTTP_ADDR  HTTP listen address (same as -http)")
	httpAddr := cmd.fs.String("http", os.Getenv("PHISHGUARD_HTTP_ADDR"), "HTTP address to listen on (e.g. :8080). Disables stdio.")
	offline := cmd.fs.Bool("offline", false, "Do not connect to the scanning service; only offline tools and the local archive work")
	cfg := cmd.parse(os.Args[2:])

	// Stdout carries the protocol in stdio mode.
	ui.SetOutput(os.Stderr)
	logger := slog.Default()

	store, err := history.NewStore(cfg.ArchiveDir)
	if err != nil {
		exitWithError("archive %s: %v", cfg.ArchiveDir, err)
	}
	gen, err := newReportGenerator(cfg)
	if err != nil {
		exitWithError("%v", err)
	}

	eventHooks := []dispatcher.Hook{hooks.NewLogHook(logger)}
	telemetry, err := telemetryHooks(cfg, logger)
	if err != nil {
		exitWithError("%v", err)
	}
	eventHooks = append(eventHooks, telemetry...)

	srvCfg := &mcpserver.Config{
		Store:       store,
		Reports:     gen,
		ReportDir:   cfg.ReportDir,
		Interval:    holdInterval(cfg.Interval),
		Hooks:       eventHooks,
		FailureKind: scanclient.FailureKind,
		Logger:      logger,
	}
	if !*offline {
		srvCfg.Scanner = newScanner(cfg, logger)
	}

	srv := mcpserver.New(srvCfg)
	defer srv.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if *httpAddr != "" {
		if err := serveHTTP(ctx, srv, *httpAddr); err != nil {
			srv.Close()
			exitWithError("%v", err)
		}
		return
	}

	if err := srv.RunStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
		srv.Close()
		exitWithError("%v", err)
	}
}

// serveHTTP runs the streamable HTTP transport until ctx is done, then shuts
// down gracefully.
func serveHTTP(ctx context.Context, srv *mcpserver.Server, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No WriteTimeout: progress streams stay open for the whole scan.
		IdleTimeout:    30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), duration.MetricsWrite)
		defer shutdownCancel()
		fmt.Fprintf(os.Stderr, "%s shutting down gracefully…\n", defaults.UserAgent("mcp"))
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "error during shutdown: %v\n", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "%s MCP server listening on %s (HTTP transport)\n", defaults.UserAgent("mcp"), addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
