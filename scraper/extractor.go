package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/use-agent/bonrate/config"
	"github.com/use-agent/bonrate/models"
)

// Extractor performs one end-to-end rate extraction per Fetch call.
// Each call launches and releases its own browser.
type Extractor struct {
	browserCfg config.BrowserConfig
	cfg        config.ExtractConfig
	launch     LaunchFunc
	progress   io.Writer
	log        *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLauncher replaces the go-rod backend.
func WithLauncher(fn LaunchFunc) Option {
	return func(e *Extractor) { e.launch = fn }
}

// WithProgress sets where the human-readable progress lines go.
func WithProgress(w io.Writer) Option {
	return func(e *Extractor) { e.progress = w }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.log = l }
}

// NewExtractor creates an Extractor. Without options it drives a local
// Chromium via LaunchRod, prints no progress and logs to slog.Default().
func NewExtractor(browserCfg config.BrowserConfig, cfg config.ExtractConfig, opts ...Option) *Extractor {
	e := &Extractor{
		browserCfg: browserCfg,
		cfg:        cfg,
		launch:     LaunchRod,
		progress:   io.Discard,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fetch runs the workflow:
//
//  1. Launch        – start a browser; the release is deferred right away
//  2. Open page     – one new tab
//  3. Navigate      – bounded by NavigationTimeout
//  4. Wait          – every rate element visible, each bounded by WaitTimeout
//  5. Extract       – textContent of each rate element
//  6. Diagnostics   – ancestor table of DebugID, per the Diagnostics mode
//
// Either all four rates are returned or an *models.ExtractError is.
func (e *Extractor) Fetch(ctx context.Context) (*models.ExtractionResult, error) {
	start := time.Now()

	// ── 1. Launch ─────────────────────────────────────────────────────
	fmt.Fprintln(e.progress, "Launching browser...")
	browser, err := e.launch(ctx, e.browserCfg)
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeBrowser, "failed to launch browser", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			e.log.Warn("browser close failed", "error", closeErr)
		}
	}()

	// ── 2. Open page ──────────────────────────────────────────────────
	page, err := browser.OpenPage(ctx)
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeBrowser, "failed to open page", err)
	}

	// ── 3. Navigate ───────────────────────────────────────────────────
	fmt.Fprintf(e.progress, "Navigating to %s...\n", e.cfg.TargetURL)
	if err := e.navigate(ctx, page); err != nil {
		return nil, err
	}
	e.log.Debug("page loaded", "url", e.cfg.TargetURL, "elapsed", time.Since(start))

	// ── 4. Wait for every rate element ────────────────────────────────
	fmt.Fprintln(e.progress, "Page loaded. Waiting for dynamic content...")
	if err := e.waitAll(ctx, page); err != nil {
		return nil, err
	}

	// ── 5. Extract ────────────────────────────────────────────────────
	fmt.Fprintln(e.progress, "Dynamic content found. Extracting data...")
	texts := make(map[string]*string, len(models.RateFields))
	for _, f := range models.RateFields {
		text, err := e.readText(ctx, page, f.Selector())
		if err != nil {
			return nil, err
		}
		texts[f.ID] = text
	}

	// ── 6. Diagnostics ────────────────────────────────────────────────
	debugTable, err := e.diagnostics(ctx, page)
	if err != nil {
		return nil, err
	}

	e.log.Info("rates extracted", "url", e.cfg.TargetURL, "elapsed", time.Since(start))
	return models.NewExtractionResult(texts, debugTable), nil
}

func (e *Extractor) navigate(ctx context.Context, page Page) error {
	navCtx, cancel := context.WithTimeout(ctx, e.cfg.NavigationTimeout)
	defer cancel()

	if err := page.Navigate(navCtx, e.cfg.TargetURL); err != nil {
		msg := "navigation to target URL failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("navigation did not finish within %s", e.cfg.NavigationTimeout)
		}
		return models.NewExtractError(models.ErrCodeNavigation, msg, err)
	}
	return nil
}

// waitAll waits for every rate element. The waits are independent; in
// concurrent mode the first failure cancels the others.
func (e *Extractor) waitAll(ctx context.Context, page Page) error {
	if !e.cfg.ConcurrentWaits {
		for _, f := range models.RateFields {
			if err := e.waitOne(ctx, page, f.Selector()); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range models.RateFields {
		selector := f.Selector()
		g.Go(func() error {
			return e.waitOne(gctx, page, selector)
		})
	}
	return g.Wait()
}

func (e *Extractor) waitOne(ctx context.Context, page Page, selector string) error {
	waitCtx, cancel := context.WithTimeout(ctx, e.cfg.WaitTimeout)
	defer cancel()

	if err := page.WaitVisible(waitCtx, selector); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.NewElementError(models.ErrCodeTimeout,
				fmt.Sprintf("element not visible within %s", e.cfg.WaitTimeout), selector, err)
		}
		return models.NewElementError(models.ErrCodeExtraction, "waiting for element failed", selector, err)
	}
	e.log.Debug("element visible", "selector", selector)
	return nil
}

func (e *Extractor) readText(ctx context.Context, page Page, selector string) (*string, error) {
	readCtx, cancel := context.WithTimeout(ctx, e.cfg.WaitTimeout)
	defer cancel()

	text, err := page.TextContent(readCtx, selector)
	if err != nil {
		return nil, models.NewElementError(models.ErrCodeExtraction, "failed to read text", selector, err)
	}
	if text == nil {
		e.log.Warn("element has no text content", "selector", selector)
		return nil, nil
	}
	trimmed := strings.TrimSpace(*text)
	return &trimmed, nil
}

func (e *Extractor) diagnostics(ctx context.Context, page Page) (*string, error) {
	if e.cfg.Diagnostics == config.DiagnosticsOff {
		return nil, nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.cfg.WaitTimeout)
	defer cancel()

	tableHTML, err := page.AncestorTableHTML(lookupCtx, e.cfg.DebugID)
	if err == nil {
		return &tableHTML, nil
	}

	if e.cfg.Diagnostics == config.DiagnosticsStrict {
		return nil, models.NewElementError(models.ErrCodeDiagnostics,
			"debug table lookup failed", "#"+e.cfg.DebugID, err)
	}
	e.log.Warn("debug table lookup failed, continuing without it",
		"debugID", e.cfg.DebugID, "error", err)
	return nil, nil
}
