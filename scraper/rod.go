package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/bonrate/config"
)

var _ LaunchFunc = LaunchRod

// rodBrowser owns one Chromium process and everything opened in it.
type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      config.BrowserConfig

	mu      sync.Mutex
	routers []*rod.HijackRouter
}

// LaunchRod starts a local Chromium through go-rod's launcher and connects to it.
func LaunchRod(ctx context.Context, cfg config.BrowserConfig) (Browser, error) {
	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}
	if cfg.Stealth {
		l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
		l.Delete(flags.Flag("enable-automation"))
	}
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	slog.Debug("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect to chromium: %w", err)
	}

	return &rodBrowser{browser: browser, launcher: l, cfg: cfg}, nil
}

func (b *rodBrowser) OpenPage(ctx context.Context) (Page, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	// Detach from the open-page deadline; each Page call binds its own.
	page = page.Context(context.Background())

	if b.cfg.Stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}

	if b.cfg.AcceptLanguage != "" {
		err := proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{"Accept-Language": gson.New(b.cfg.AcceptLanguage)},
		}.Call(page)
		if err != nil {
			slog.Warn("failed to set extra headers", "error", err)
		}
	}

	if router := setupHijack(page, b.cfg.BlockedResources, b.cfg.BlockedHosts); router != nil {
		b.mu.Lock()
		b.routers = append(b.routers, router)
		b.mu.Unlock()
	}

	return &rodPage{page: page}, nil
}

// Close stops request interception, closes the browser and kills the
// Chromium process so no zombie is left behind.
func (b *rodBrowser) Close() error {
	b.mu.Lock()
	routers := b.routers
	b.routers = nil
	b.mu.Unlock()
	for _, r := range routers {
		_ = r.Stop()
	}

	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher.Cleanup()
	return err
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx)
	if err := pg.Navigate(url); err != nil {
		return err
	}
	if err := pg.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}

	// The navigation timing entry carries the document status without
	// enabling the Network domain (which conflicts with request hijacking).
	res, err := pg.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch (e) {}
		return 0;
	}`)
	if err == nil {
		if status := res.Value.Int(); status >= 400 {
			return fmt.Errorf("HTTP %d for %s", status, url)
		}
	}
	return nil
}

func (p *rodPage) WaitVisible(ctx context.Context, selector string) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

func (p *rodPage) TextContent(ctx context.Context, selector string) (*string, error) {
	el, err := p.page.Context(ctx).Sleeper(rod.NotFoundSleeper).Element(selector)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	res, err := el.Eval(`() => this.textContent`)
	if err != nil {
		return nil, err
	}
	if res.Value.Nil() {
		return nil, nil
	}
	text := res.Value.Str()
	return &text, nil
}

func (p *rodPage) AncestorTableHTML(ctx context.Context, id string) (string, error) {
	el, err := p.page.Context(ctx).Element(fmt.Sprintf("[id=%q]", id))
	if err != nil {
		return "", fmt.Errorf("element %q: %w", id, err)
	}

	table, err := el.Sleeper(rod.NotFoundSleeper).ElementX("./ancestor::table[1]")
	if err != nil {
		return "", fmt.Errorf("ancestor table of %q: %w", id, err)
	}

	res, err := table.Eval(`() => this.innerHTML`)
	if err != nil {
		return "", fmt.Errorf("table html: %w", err)
	}
	return res.Value.Str(), nil
}

func isNotFound(err error) bool {
	var nf *rod.ElementNotFoundError
	return errors.As(err, &nf)
}
