package format

import (
	"fmt"
	"slices"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"

	"github.com/jmylchreest/tablegrab/pkg/table"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NotTableMessage is the value of the error object emitted when there is
// no table to serialize.
const NotTableMessage = "Input is not a table"

type jsonTable struct {
	Type string              `json:"type"`
	Data []map[string]string `json:"data"`
}

type jsonError struct {
	Error string `json:"error"`
}

// JSONSerializer emits {"type":"table","data":[...]} records keyed by
// positional column name (col_0, col_1, ...).
//
// By default each column's values are sorted independently before rows
// are reassembled by index, so output row i is built from the i-th smallest
// value of every column and need not match any source row. WithPreserveRows
// switches to a row-preserving layout.
//
// A missing or empty table is not an error: it serializes to
// {"error":"Input is not a table"}.
type JSONSerializer struct {
	pretty       bool
	indent       string
	preserveRows bool
}

// NewJSON creates a JSON serializer.
func NewJSON(pretty bool, indent string, preserveRows bool) *JSONSerializer {
	return &JSONSerializer{
		pretty:       pretty,
		indent:       indent,
		preserveRows: preserveRows,
	}
}

// Serialize encodes t as a structured record.
func (s *JSONSerializer) Serialize(t *table.Table) ([]byte, error) {
	var v any
	switch {
	case t.Empty():
		v = jsonError{Error: NotTableMessage}
	case s.preserveRows:
		v = jsonTable{Type: "table", Data: rowRecords(t)}
	default:
		v = jsonTable{Type: "table", Data: sortedColumnRecords(t)}
	}

	var output []byte
	var err error
	if s.pretty {
		output, err = json.MarshalIndent(v, "", s.indent)
	} else {
		output, err = json.Marshal(v)
	}
	if err != nil {
		return nil, &EncodeError{Format: FormatJSON, Err: err}
	}
	return output, nil
}

// Format returns FormatJSON.
func (s *JSONSerializer) Format() Format {
	return FormatJSON
}

func columnKey(k int) string {
	return fmt.Sprintf("col_%d", k)
}

// sortedColumnRecords gathers every cell (first row included) into a
// per-column list, sorts each list on its own and rebuilds rows by index.
// Shorter columns are padded with "".
func sortedColumnRecords(t *table.Table) []map[string]string {
	var columns [][]string
	for _, row := range t.Rows {
		for k, cell := range row {
			if k == len(columns) {
				columns = append(columns, nil)
			}
			columns[k] = append(columns[k], cell.Text)
		}
	}
	if len(columns) == 0 {
		return []map[string]string{}
	}

	for _, col := range columns {
		slices.Sort(col)
	}

	height := lo.Max(lo.Map(columns, func(col []string, _ int) int {
		return len(col)
	}))

	records := make([]map[string]string, height)
	for i := range records {
		rec := make(map[string]string, len(columns))
		for k, col := range columns {
			if i < len(col) {
				rec[columnKey(k)] = col[i]
			} else {
				rec[columnKey(k)] = ""
			}
		}
		records[i] = rec
	}
	return records
}

// rowRecords keeps each source row as one record, padded to the table width.
func rowRecords(t *table.Table) []map[string]string {
	width := t.Width()
	return lo.Map(t.Rows, func(row table.Row, _ int) map[string]string {
		rec := make(map[string]string, width)
		for k := 0; k < width; k++ {
			if k < len(row) {
				rec[columnKey(k)] = row[k].Text
			} else {
				rec[columnKey(k)] = ""
			}
		}
		return rec
	})
}
