package dataset

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// parseHTML extracts the first non-empty <table> of a page. When the page
// has no table, header is nil and text holds the visible page text.
func parseHTML(body []byte) (header []string, rows [][]string, text string, err error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, nil, "", fmt.Errorf("parse html: %w", err)
	}

	if grid := firstTable(doc); len(grid) > 0 {
		header = grid[0]
		width := len(header)
		for _, r := range grid[1:] {
			if len(r) > width {
				width = len(r)
			}
		}
		for len(header) < width {
			header = append(header, "")
		}
		return header, grid[1:], "", nil
	}
	return nil, nil, visibleText(doc), nil
}

// firstTable returns the cell grid of the first table that has rows.
func firstTable(n *html.Node) [][]string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Table {
		if grid := tableRows(n); len(grid) > 0 {
			return grid
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if grid := firstTable(c); grid != nil {
			return grid
		}
	}
	return nil
}

// tableRows collects the rows of table t, skipping rows of nested tables.
func tableRows(t *html.Node) [][]string {
	var grid [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Table:
				continue
			case atom.Tr:
				if row := rowCells(c); len(row) > 0 {
					grid = append(grid, row)
				}
			default:
				walk(c)
			}
		}
	}
	walk(t)
	return grid
}

// rowCells returns the text of each th/td in tr, repeating cells that span
// several columns.
func rowCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		txt := strings.Join(strings.Fields(nodeText(c)), " ")
		span := 1
		if v := attr(c, "colspan"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 1 && n < 1000 {
				span = n
			}
		}
		for i := 0; i < span; i++ {
			cells = append(cells, txt)
		}
	}
	return cells
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		}
		if skipText(n) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func skipText(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}

// visibleText joins the trimmed, non-empty text nodes of the document with
// newlines, leaving out script, style, noscript, and template content.
func visibleText(doc *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		if skipText(n) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(parts, "\n")
}
