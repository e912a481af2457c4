package format

import (
	"bytes"
	"encoding/csv"

	"github.com/jmylchreest/tablegrab/pkg/table"
)

// CSVSerializer writes the first row as the header record and every other
// row as a data record. Records are not padded to a common width.
//
// A row holding a single empty cell is written as "" so readers keep the
// record. A row with no cells has no fields and is written as a blank line.
type CSVSerializer struct {
	comma rune
}

// NewCSV creates a CSV serializer using comma as the field delimiter.
func NewCSV(comma rune) *CSVSerializer {
	if comma == 0 {
		comma = ','
	}
	return &CSVSerializer{comma: comma}
}

// Serialize encodes t as delimited text.
func (s *CSVSerializer) Serialize(t *table.Table) ([]byte, error) {
	if t == nil {
		return nil, table.ErrNotFound
	}
	if t.Empty() {
		return nil, ErrEmptyTable
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = s.comma

	// Header first, then data records in source order.
	for _, row := range t.Rows {
		if len(row) == 1 && row[0].Text == "" {
			w.Flush()
			if err := w.Error(); err != nil {
				return nil, &EncodeError{Format: FormatCSV, Err: err}
			}
			buf.WriteString("\"\"\n")
			continue
		}
		if err := w.Write(row.Texts()); err != nil {
			return nil, &EncodeError{Format: FormatCSV, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, &EncodeError{Format: FormatCSV, Err: err}
	}

	return buf.Bytes(), nil
}

// Format returns FormatCSV.
func (s *CSVSerializer) Format() Format {
	return FormatCSV
}
