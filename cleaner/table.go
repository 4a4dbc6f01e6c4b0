package cleaner

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Output formats accepted by RenderTable.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

var (
	tableMatcher = cascadia.MustCompile("table")
	rowMatcher   = cascadia.MustCompile("tr")
	cellMatcher  = cascadia.MustCompile("th, td")
)

// RenderTable renders the inner HTML of a table for a human reader.
//
//   - html:     indented markup, one tag or text run per line
//   - markdown: a Markdown table via html-to-markdown
//   - text:     one line per row, cells joined by " | "
func RenderTable(innerHTML, format string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table>" + innerHTML + "</table>"))
	if err != nil {
		return "", fmt.Errorf("parse table html: %w", err)
	}
	tbl := doc.FindMatcher(tableMatcher).First()
	if tbl.Length() == 0 {
		return "", fmt.Errorf("parse table html: no table element")
	}

	switch format {
	case FormatMarkdown:
		outer, err := goquery.OuterHtml(tbl)
		if err != nil {
			return "", fmt.Errorf("serialize table: %w", err)
		}
		return ToMarkdown(outer)
	case FormatText:
		return tableText(tbl), nil
	case FormatHTML, "":
		var b strings.Builder
		prettyNode(&b, tbl.Get(0), 0)
		return strings.TrimRight(b.String(), "\n"), nil
	default:
		return "", fmt.Errorf("unknown table format %q", format)
	}
}

func tableText(tbl *goquery.Selection) string {
	var lines []string
	tbl.FindMatcher(rowMatcher).Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.ChildrenMatcher(cellMatcher).Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.Join(strings.Fields(cell.Text()), " "))
		})
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " | "))
		}
	})
	return strings.Join(lines, "\n")
}

// voidElements never have children or a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

func prettyNode(b *strings.Builder, n *html.Node, depth int) {
	indent := strings.Repeat(" ", depth)

	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			b.WriteString(indent + html.EscapeString(text) + "\n")
		}
		return
	case html.CommentNode:
		b.WriteString(indent + "<!--" + n.Data + "-->\n")
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			prettyNode(b, c, depth)
		}
		return
	}

	b.WriteString(indent + "<" + n.Data)
	for _, a := range n.Attr {
		fmt.Fprintf(b, ` %s="%s"`, a.Key, html.EscapeString(a.Val))
	}
	b.WriteString(">\n")
	if voidElements[n.Data] {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		prettyNode(b, c, depth+1)
	}
	b.WriteString(indent + "</" + n.Data + ">\n")
}
