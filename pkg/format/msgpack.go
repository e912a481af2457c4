package format

import (
	"bytes"
	"fmt"

	"github.com/samber/lo"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jmylchreest/tablegrab/pkg/table"
)

// msgpackCell is the wire record for one cell. Field order is preserved
// on the wire: name, then content.
type msgpackCell struct {
	Name    string `msgpack:"name"`
	Content string `msgpack:"content"`
}

// MsgpackSerializer encodes the table as an array of rows, each an array
// of {name, content} maps. Empty rows, empty text and repeated tag names
// all survive a decode.
type MsgpackSerializer struct{}

// NewMsgpack creates a MessagePack serializer.
func NewMsgpack() *MsgpackSerializer {
	return &MsgpackSerializer{}
}

// Serialize encodes t as MessagePack.
func (s *MsgpackSerializer) Serialize(t *table.Table) ([]byte, error) {
	if t == nil {
		return nil, table.ErrNotFound
	}

	// lo.Map and make both return non-nil slices, so empty tables and
	// rows encode as empty arrays rather than nil.
	rows := lo.Map(t.Rows, func(row table.Row, _ int) []msgpackCell {
		cells := make([]msgpackCell, 0, len(row))
		for _, c := range row {
			cells = append(cells, msgpackCell{Name: c.Tag.String(), Content: c.Text})
		}
		return cells
	})

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(rows); err != nil {
		return nil, &EncodeError{Format: FormatMsgpack, Err: err}
	}
	return buf.Bytes(), nil
}

// Format returns FormatMsgpack.
func (s *MsgpackSerializer) Format() Format {
	return FormatMsgpack
}

// DecodeMsgpack reverses MsgpackSerializer, rebuilding the table it encoded.
func DecodeMsgpack(data []byte) (*table.Table, error) {
	var rows [][]msgpackCell
	if err := msgpack.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode msgpack: %w", err)
	}

	t := &table.Table{Rows: make([]table.Row, 0, len(rows))}
	for _, cells := range rows {
		row := make(table.Row, 0, len(cells))
		for _, c := range cells {
			row = append(row, table.Cell{Tag: table.TagFromName(c.Name), Text: c.Content})
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
