package format

import (
	"bytes"

	"github.com/jmylchreest/tablegrab/pkg/table"
)

// KeyValueSerializer writes one marker line per row followed by one
// key/value line per cell, keyed by the cell's source tag.
//
// Values are wrapped in double quotes and otherwise written verbatim, and
// cells sharing a tag produce repeated keys. The output therefore follows
// the look of TOML or YAML without guaranteeing a strict parser accepts it.
type KeyValueSerializer struct {
	format    Format
	marker    string
	separator string
	prefix    string
}

// NewTOML creates the TOML-style serializer:
//
//	[]
//	th = "Name"
func NewTOML() *KeyValueSerializer {
	return &KeyValueSerializer{
		format:    FormatTOML,
		marker:    "[]",
		separator: " = ",
	}
}

// NewYAML creates the YAML-style serializer:
//
//	-
//	  th: "Name"
func NewYAML() *KeyValueSerializer {
	return &KeyValueSerializer{
		format:    FormatYAML,
		marker:    "-",
		separator: ": ",
		prefix:    "  ",
	}
}

// Serialize encodes t. A table with no rows yields an empty document.
func (s *KeyValueSerializer) Serialize(t *table.Table) ([]byte, error) {
	if t == nil {
		return nil, table.ErrNotFound
	}

	var buf bytes.Buffer
	for _, row := range t.Rows {
		buf.WriteString(s.marker)
		buf.WriteByte('\n')
		for _, cell := range row {
			buf.WriteString(s.prefix)
			buf.WriteString(cell.Tag.String())
			buf.WriteString(s.separator)
			buf.WriteByte('"')
			buf.WriteString(cell.Text)
			buf.WriteString("\"\n")
		}
	}
	return buf.Bytes(), nil
}

// Format returns FormatTOML or FormatYAML.
func (s *KeyValueSerializer) Format() Format {
	return s.format
}
