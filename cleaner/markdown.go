package cleaner

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// mdConverter is goroutine-safe and shared by all renders.
var mdConverter = newMarkdownConverter()

// newMarkdownConverter creates a Converter that keeps table structure with
// aligned columns, since the output is read by a person in a terminal.
// The base plugin strips script, style and comments that bonbast embeds
// between rows.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
}

// ToMarkdown converts an HTML fragment to Markdown.
func ToMarkdown(htmlContent string) (string, error) {
	return mdConverter.ConvertString(htmlContent)
}
