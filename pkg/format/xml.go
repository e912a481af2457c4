package format

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/jmylchreest/tablegrab/pkg/table"
)

// ErrInvalidXMLChar indicates cell text containing a character XML 1.0
// cannot represent, such as most C0 control characters.
var ErrInvalidXMLChar = errors.New("character not allowed in XML")

// XMLSerializer emits a <table> root with one <tr> per row and one child
// per cell named after the cell's source tag.
type XMLSerializer struct {
	pretty bool
	indent string
}

// NewXML creates an XML serializer.
func NewXML(pretty bool, indent string) *XMLSerializer {
	return &XMLSerializer{pretty: pretty, indent: indent}
}

// Serialize encodes t as markup. An empty table yields <table></table>.
// Text XML cannot hold fails with ErrInvalidXMLChar rather than being
// replaced.
func (s *XMLSerializer) Serialize(t *table.Table) ([]byte, error) {
	if t == nil {
		return nil, table.ErrNotFound
	}
	if err := checkXMLText(t); err != nil {
		return nil, &EncodeError{Format: FormatXML, Err: err}
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if s.pretty {
		enc.Indent("", s.indent)
	}

	if err := writeXMLTable(enc, t); err != nil {
		return nil, &EncodeError{Format: FormatXML, Err: err}
	}
	if err := enc.Flush(); err != nil {
		return nil, &EncodeError{Format: FormatXML, Err: err}
	}
	return buf.Bytes(), nil
}

// Format returns FormatXML.
func (s *XMLSerializer) Format() Format {
	return FormatXML
}

func writeXMLTable(enc *xml.Encoder, t *table.Table) error {
	root := xml.StartElement{Name: xml.Name{Local: "table"}}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}

	for _, row := range t.Rows {
		tr := xml.StartElement{Name: xml.Name{Local: "tr"}}
		if err := enc.EncodeToken(tr); err != nil {
			return err
		}
		for _, cell := range row {
			el := xml.StartElement{Name: xml.Name{Local: cell.Tag.String()}}
			if err := enc.EncodeToken(el); err != nil {
				return err
			}
			if err := enc.EncodeToken(xml.CharData(cell.Text)); err != nil {
				return err
			}
			if err := enc.EncodeToken(el.End()); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(tr.End()); err != nil {
			return err
		}
	}

	return enc.EncodeToken(root.End())
}

func checkXMLText(t *table.Table) error {
	for i, row := range t.Rows {
		for j, cell := range row {
			for k, w := 0, 0; k < len(cell.Text); k += w {
				r, size := utf8.DecodeRuneInString(cell.Text[k:])
				w = size
				if r == utf8.RuneError && size == 1 {
					return fmt.Errorf("%w: invalid UTF-8 in row %d cell %d", ErrInvalidXMLChar, i, j)
				}
				if !isXMLChar(r) {
					return fmt.Errorf("%w: %U in row %d cell %d", ErrInvalidXMLChar, r, i, j)
				}
			}
		}
	}
	return nil
}

// isXMLChar reports whether r matches the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
