package mathtext

import (
	"strings"

	"golang.org/x/net/html"
)

// flattenHTMLTables converts embedded minimal HTML table markup into the plain
// pipe-separated row format and discards every other markup tag. Text without
// a <table> element is returned untouched so that loose '<' characters in
// math expressions are never run through the HTML parser.
func flattenHTMLTables(text string) string {
	if !strings.Contains(strings.ToLower(text), "<table") {
		return text
	}
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return text
	}
	var b strings.Builder
	renderNode(&b, doc)
	return strings.TrimSpace(b.String())
}

func renderNode(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode && n.Data == "table" {
		for _, line := range renderRows(tableRows(n)) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode && (n.Data == "br" || n.Data == "p" || n.Data == "div") {
		// Block-ish elements keep their line break when the tag is dropped.
		defer b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c)
	}
}

func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			rows = append(rows, rowCells(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func rowCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, strings.TrimSpace(nodeText(c)))
		}
	}
	return cells
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}
