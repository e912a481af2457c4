// Package table extracts the first HTML table of a document into a
// canonical row/cell model that the format serializers consume.
package table

import (
	"github.com/samber/lo"
)

// Tag identifies whether a cell came from a header or a data element.
type Tag int

const (
	// TagData is a cell from a <td> element.
	TagData Tag = iota
	// TagHeader is a cell from a <th> element.
	TagHeader
)

// String returns the source element name ("th" or "td").
func (t Tag) String() string {
	if t == TagHeader {
		return "th"
	}
	return "td"
}

// TagFromName maps an element name to a Tag. Anything other than "th"
// is treated as data.
func TagFromName(name string) Tag {
	if name == "th" {
		return TagHeader
	}
	return TagData
}

// Cell is a single header or data cell.
type Cell struct {
	Tag  Tag
	Text string
}

// Row is an ordered sequence of cells in document order.
// Rows need not share a column count.
type Row []Cell

// Texts returns the text of every cell in order.
func (r Row) Texts() []string {
	return lo.Map(r, func(c Cell, _ int) string {
		return c.Text
	})
}

// Table is the canonical model of an extracted table: rows in document
// order, none of them privileged as a header row.
//
// A Table is never mutated after extraction, so it may be handed to any
// number of serializers concurrently.
type Table struct {
	Rows []Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Width returns the largest cell count of any row.
func (t *Table) Width() int {
	if t == nil || len(t.Rows) == 0 {
		return 0
	}
	return lo.Max(lo.Map(t.Rows, func(r Row, _ int) int {
		return len(r)
	}))
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}
