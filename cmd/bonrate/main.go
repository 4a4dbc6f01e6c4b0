package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/use-agent/bonrate/config"
	"github.com/use-agent/bonrate/models"
	"github.com/use-agent/bonrate/report"
	"github.com/use-agent/bonrate/scraper"
)

// fetcher is the part of scraper.Extractor the driver needs.
type fetcher interface {
	Fetch(ctx context.Context) (*models.ExtractionResult, error)
}

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log, os.Stderr)

	// ── 3. Cancel the fetch on Ctrl+C; the browser is still released ─
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ex := scraper.NewExtractor(cfg.Browser, cfg.Extract,
		scraper.WithProgress(os.Stdout),
		scraper.WithLogger(slog.Default()),
	)
	pr := report.NewPrinter(os.Stdout, os.Stderr, cfg.Output, cfg.Extract.DebugID)

	// A failed fetch is reported, not turned into an exit status.
	run(ctx, ex, pr)
}

// run performs one fetch and prints the outcome. It reports whether the
// rates were printed.
func run(ctx context.Context, f fetcher, pr *report.Printer) bool {
	result, err := f.Fetch(ctx)
	if err != nil {
		slog.Info("fetch failed", "code", models.CodeOf(err), "retryable", models.Retryable(err), "error", err)
		pr.PrintFailure(err)
		return false
	}

	if err := pr.PrintResult(result); err != nil {
		slog.Warn("debug table could not be rendered", "error", err)
	}
	return true
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig, w io.Writer) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}
