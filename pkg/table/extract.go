package table

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jmylchreest/tablegrab/internal/logger"
)

// Error types for distinguishing extraction failures.
// Check with errors.Is(err, table.ErrNotFound).
var (
	// ErrNotFound indicates the document contains no table element.
	ErrNotFound = errors.New("no table in input")
	// ErrParse indicates the document could not be parsed at all.
	ErrParse = errors.New("failed to parse html")
)

const (
	tableSelector = "table"
	rowSelector   = "tr"
	cellSelector  = "th, td"
)

// Extract parses html as a full document and returns the first table in
// document order. Malformed markup is tolerated the way browsers tolerate
// it (unclosed tags, implied tbody).
func Extract(html string) (*Table, error) {
	return ExtractReader(strings.NewReader(html))
}

// ExtractReader is Extract over a reader.
func ExtractReader(r io.Reader) (*Table, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	doc := goquery.NewDocumentFromNode(root)

	tbl := doc.Find(tableSelector).First()
	if tbl.Length() == 0 {
		logger.Debug("no table element found")
		return nil, ErrNotFound
	}

	t := &Table{Rows: make([]Row, 0)}
	tbl.Find(rowSelector).
		FilterFunction(func(_ int, tr *goquery.Selection) bool {
			return ownedBy(tr, tbl)
		}).
		Each(func(_ int, tr *goquery.Selection) {
			t.Rows = append(t.Rows, extractRow(tr))
		})

	logger.Debug("table extracted", "rows", t.Len(), "width", t.Width())
	return t, nil
}

// extractRow collects the header and data cells that belong directly to tr.
func extractRow(tr *goquery.Selection) Row {
	cells := tr.ChildrenFiltered(cellSelector)
	row := make(Row, 0, cells.Length())
	cells.Each(func(_ int, c *goquery.Selection) {
		row = append(row, Cell{
			Tag:  TagFromName(goquery.NodeName(c)),
			Text: c.Text(),
		})
	})
	return row
}

// ownedBy reports whether the nearest enclosing table of s is tbl, so rows
// of a table nested inside a cell are not attributed to the outer table.
func ownedBy(s, tbl *goquery.Selection) bool {
	return s.Parent().Closest(tableSelector).IsSelection(tbl)
}
