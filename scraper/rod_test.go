package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/bonrate/config"
	"github.com/use-agent/bonrate/models"
)

// ratesHTML renders the rate cells from script after a short delay, the
// way the live page fills them in.
const ratesHTML = `<!DOCTYPE html>
<html>
<head><title>Rates</title></head>
<body>
	<table id="rates">
		<tr><th>Code</th><th>Sell</th><th>Buy</th></tr>
		<tr><td>EUR</td><td id="eur1" style="display:none"></td><td id="eur2" style="display:none"></td></tr>
		<tr><td>USD</td><td id="usd1" style="display:none"></td><td id="usd2" style="display:none"></td></tr>
	</table>
	<script>
		setTimeout(function () {
			var values = {eur1: "58000", eur2: "57500", usd1: " 61000 ", usd2: "60500"};
			for (var id in values) {
				var el = document.getElementById(id);
				el.textContent = values[id];
				el.style.display = "";
			}
		}, 200);
	</script>
</body>
</html>`

func requireBrowser(t *testing.T) config.BrowserConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no local Chromium found")
	}
	cfg := config.Defaults().Browser
	cfg.Bin = bin
	cfg.NoSandbox = true
	return cfg
}

func newRatesServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRod_FetchRenderedRates(t *testing.T) {
	browserCfg := requireBrowser(t)
	srv := newRatesServer(t, ratesHTML, http.StatusOK)

	cfg := config.Defaults().Extract
	cfg.TargetURL = srv.URL
	cfg.NavigationTimeout = 20 * time.Second
	cfg.WaitTimeout = 10 * time.Second
	cfg.Diagnostics = config.DiagnosticsStrict

	res, err := NewExtractor(browserCfg, cfg).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "58000", *res.EURSell)
	assert.Equal(t, "57500", *res.EURBuy)
	assert.Equal(t, "61000", *res.USDSell)
	assert.Equal(t, "60500", *res.USDBuy)
	require.NotNil(t, res.DebugTableHTML)
	assert.Contains(t, *res.DebugTableHTML, `id="eur1"`)
	assert.NotContains(t, *res.DebugTableHTML, "<table", "inner HTML only")
}

func TestRod_ElementNeverVisible(t *testing.T) {
	browserCfg := requireBrowser(t)
	srv := newRatesServer(t, `<html><body><div id="eur1">1</div></body></html>`, http.StatusOK)

	cfg := config.Defaults().Extract
	cfg.TargetURL = srv.URL
	cfg.NavigationTimeout = 20 * time.Second
	cfg.WaitTimeout = time.Second

	_, err := NewExtractor(browserCfg, cfg).Fetch(context.Background())
	assert.Equal(t, models.ErrCodeTimeout, models.CodeOf(err))
}

func TestRod_HTTPErrorStatus(t *testing.T) {
	browserCfg := requireBrowser(t)
	srv := newRatesServer(t, "<html><body>gone</body></html>", http.StatusNotFound)

	page := openTestPage(t, browserCfg)
	err := page.Navigate(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestRod_TextContentMissingElement(t *testing.T) {
	browserCfg := requireBrowser(t)
	srv := newRatesServer(t, `<html><body><p id="x"> hi </p></body></html>`, http.StatusOK)

	page := openTestPage(t, browserCfg)
	require.NoError(t, page.Navigate(context.Background(), srv.URL))

	text, err := page.TextContent(context.Background(), "#x")
	require.NoError(t, err)
	require.NotNil(t, text)
	assert.Equal(t, " hi ", *text)

	text, err = page.TextContent(context.Background(), "#missing")
	require.NoError(t, err)
	assert.Nil(t, text)
}

func TestRod_AncestorTableMissing(t *testing.T) {
	browserCfg := requireBrowser(t)
	srv := newRatesServer(t, `<html><body><div id="eur1">1</div></body></html>`, http.StatusOK)

	page := openTestPage(t, browserCfg)
	require.NoError(t, page.Navigate(context.Background(), srv.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := page.AncestorTableHTML(ctx, "eur1")
	assert.ErrorContains(t, err, "ancestor table")
}

func openTestPage(t *testing.T, cfg config.BrowserConfig) Page {
	t.Helper()
	b, err := LaunchRod(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	page, err := b.OpenPage(context.Background())
	require.NoError(t, err)
	return page
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"not found", &rod.ElementNotFoundError{}, true},
		{"wrapped not found", fmt.Errorf("element %q: %w", "eur1", &rod.ElementNotFoundError{}), true},
		{"deadline", context.DeadlineExceeded, false},
		{"other", errors.New("cdp closed"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNotFound(tt.err))
		})
	}
}
