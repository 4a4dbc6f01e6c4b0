package cleaner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rateTable = `
<tbody>
  <tr><th>Code</th><th>Currency</th><th>Sell</th><th>Buy</th></tr>
  <tr><td>EUR</td><td>Euro</td><td id="eur1">58000</td><td id="eur2">57500</td></tr>
  <tr><td>USD</td><td>US Dollar</td><td id="usd1">61000</td><td id="usd2">60500</td></tr>
</tbody>`

func TestRenderTable_Text(t *testing.T) {
	got, err := RenderTable(rateTable, FormatText)
	require.NoError(t, err)

	want := "Code | Currency | Sell | Buy\n" +
		"EUR | Euro | 58000 | 57500\n" +
		"USD | US Dollar | 61000 | 60500"
	assert.Equal(t, want, got)
}

func TestRenderTable_HTML(t *testing.T) {
	got, err := RenderTable(`<tr><td id="eur1" class="a&amp;b"> 58000 </td><td><br></td></tr>`, FormatHTML)
	require.NoError(t, err)

	want := strings.Join([]string{
		"<table>",
		" <tbody>",
		"  <tr>",
		`   <td id="eur1" class="a&amp;b">`,
		"    58000",
		"   </td>",
		"   <td>",
		"    <br>",
		"   </td>",
		"  </tr>",
		" </tbody>",
		"</table>",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderTable_DefaultFormatIsHTML(t *testing.T) {
	got, err := RenderTable(`<tr><td>1</td></tr>`, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "<table>\n"))
}

func TestRenderTable_Markdown(t *testing.T) {
	got, err := RenderTable(rateTable, FormatMarkdown)
	require.NoError(t, err)

	assert.Contains(t, got, "|")
	assert.Contains(t, got, "Currency")
	assert.Contains(t, got, "US Dollar")
	assert.Contains(t, got, "60500")
	assert.NotContains(t, got, "<td")
}

func TestRenderTable_UnknownFormat(t *testing.T) {
	_, err := RenderTable(rateTable, "pdf")
	assert.ErrorContains(t, err, "unknown table format")
}
