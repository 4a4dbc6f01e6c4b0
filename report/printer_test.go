package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/bonrate/config"
	"github.com/use-agent/bonrate/models"
)

func newTestPrinter(out config.OutputConfig) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return NewPrinter(&stdout, &stderr, out, "eur1"), &stdout, &stderr
}

func TestPrinter_PrintResult(t *testing.T) {
	p, stdout, stderr := newTestPrinter(config.Defaults().Output)

	err := p.PrintResult(&models.ExtractionResult{
		EURSell: strp("58000"),
		EURBuy:  strp("57500"),
		USDSell: strp("61000"),
		USDBuy:  strp("60500"),
	})
	require.NoError(t, err)

	want := "\n --- Extracted Data --- \n\n" +
		"EUR€ Sell: 58,000 Toman\n" +
		"EUR€ Buy: 57,500 Toman\n" +
		"USD$ Sell: 61,000 Toman\n" +
		"USD$ Buy: 60,500 Toman\n"
	assert.Equal(t, want, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestPrinter_PrintResult_AbsentValue(t *testing.T) {
	p, stdout, _ := newTestPrinter(config.Defaults().Output)

	err := p.PrintResult(&models.ExtractionResult{
		EURSell: strp("58000"),
		EURBuy:  nil,
		USDSell: strp(""),
		USDBuy:  strp("n/a yet"),
	})
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "EUR€ Buy: N/A\n")
	assert.Contains(t, out, "USD$ Sell: N/A\n")
	assert.Contains(t, out, "USD$ Buy: n/a yet Toman\n")
	assert.NotContains(t, out, "None")
}

func TestPrinter_PrintResult_DebugTable(t *testing.T) {
	cfg := config.Defaults().Output
	cfg.ShowDebugTable = true
	cfg.DebugFormat = "text"
	p, stdout, _ := newTestPrinter(cfg)

	table := `<tr><th>Code</th><th>Sell</th></tr><tr><td>EUR</td><td id="eur1">58000</td></tr>`
	err := p.PrintResult(&models.ExtractionResult{EURSell: strp("58000"), DebugTableHTML: &table})
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "--- Debug Parent Table for 'eur1' ---\n")
	assert.Contains(t, out, "Code | Sell\nEUR | 58000\n")
}

func TestPrinter_PrintResult_DebugTableMissing(t *testing.T) {
	cfg := config.Defaults().Output
	cfg.ShowDebugTable = true
	p, stdout, _ := newTestPrinter(cfg)

	require.NoError(t, p.PrintResult(&models.ExtractionResult{}))
	assert.Contains(t, stdout.String(), "Could not extract table HTML.\n")
}

func TestPrinter_PrintFailure(t *testing.T) {
	p, stdout, stderr := newTestPrinter(config.Defaults().Output)

	p.PrintFailure(models.NewExtractError(models.ErrCodeNavigation, "navigation to target URL failed", errors.New("net::ERR_CONNECTION_REFUSED")))

	want := "\n--- An Error Occurred ---\n" +
		"NAVIGATION_FAILED: navigation to target URL failed: net::ERR_CONNECTION_REFUSED\n" +
		"This could be a timeout. The site might be slow or blocking.\n" +
		"Failed to fetch data.\n"
	assert.Equal(t, want, stderr.String())
	assert.Empty(t, stdout.String())
}
