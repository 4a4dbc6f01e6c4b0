package scraper

import (
	"context"

	"github.com/use-agent/bonrate/config"
)

// LaunchFunc starts one browser instance. The caller owns the returned
// Browser and must Close it.
type LaunchFunc func(ctx context.Context, cfg config.BrowserConfig) (Browser, error)

// Browser is a running browser process.
type Browser interface {
	// OpenPage opens a new tab.
	OpenPage(ctx context.Context) (Page, error)

	// Close terminates the browser process and releases its resources.
	Close() error
}

// Page is a single tab. Every method honours ctx as its deadline.
type Page interface {
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until an element matching selector is rendered visibly.
	WaitVisible(ctx context.Context, selector string) error

	// TextContent returns the element's textContent, or nil when there is
	// no such element or its textContent is null.
	TextContent(ctx context.Context, selector string) (*string, error)

	// AncestorTableHTML returns the inner HTML of the nearest <table>
	// enclosing the element with the given id.
	AncestorTableHTML(ctx context.Context, id string) (string, error)
}
