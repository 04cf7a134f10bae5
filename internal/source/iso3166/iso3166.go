// Package iso3166 extracts the officially assigned code table from the
// Wikipedia ISO 3166-1 article.
//
// The table is located by the exact text of its first header cell. This is a
// known fragility of the source: if Wikipedia renames the column the parser
// finds no rows and the row-count check fails loudly instead of guessing.
package iso3166

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/albapepper/countrydata/internal/sentinel"
)

// TableHeader is the first header cell of the code table.
const TableHeader = "English short name (upper/lower case)"

// rowFields is the number of leading cells kept from each data row.
const rowFields = 4

// Row is one entry of the ISO 3166-1 table.
type Row struct {
	Name    string
	Alpha2  string
	Alpha3  string
	Numeric string
}

// Parse reads the HTML document and returns the code table rows in document
// order. expected is the number of rows the table must contain.
func Parse(r io.Reader, expected int) ([]Row, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse iso3166 html: %w", err)
	}

	var cells [][]string
	for _, table := range findAll(doc, atom.Table) {
		if headerText(table) != TableHeader {
			continue
		}
		for _, tr := range tableRows(table) {
			var row []string
			for c := tr.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.DataAtom == atom.Td {
					row = append(row, strings.TrimSpace(textContent(c)))
				}
			}
			// Header and separator rows carry no data cells.
			if len(row) == 0 {
				continue
			}
			cells = append(cells, row)
		}
	}

	if len(cells) != expected {
		return nil, fmt.Errorf("%w: iso3166 row count %d != expected %d", sentinel.ErrIntegrity, len(cells), expected)
	}

	rows := make([]Row, 0, len(cells))
	for i, c := range cells {
		if len(c) < rowFields {
			return nil, fmt.Errorf("%w: iso3166 row %d has %d cells, want at least %d", sentinel.ErrIntegrity, i, len(c), rowFields)
		}
		rows = append(rows, Row{Name: c[0], Alpha2: c[1], Alpha3: c[2], Numeric: c[3]})
	}
	return rows, nil
}

// findAll returns every element with the given tag under n, in document order.
func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// tableRows returns the rows owned by table, skipping rows of nested tables.
// The HTML5 parser inserts tbody, so rows are not direct children.
func tableRows(table *html.Node) []*html.Node {
	var out []*html.Node
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
				out = append(out, c)
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return out
}

// headerText returns the trimmed text of the first th cell of table, or "".
func headerText(table *html.Node) string {
	for _, tr := range tableRows(table) {
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Th {
				return strings.TrimSpace(textContent(c))
			}
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
