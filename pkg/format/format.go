// Package format serializes an extracted table into interchange formats.
//
// Every format is a Serializer selected by its Format discriminant, so each
// can be tested in isolation against the same table fixtures.
package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmylchreest/tablegrab/pkg/table"
)

// Format represents output format types.
type Format string

const (
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatXML     Format = "xml"
	FormatTOML    Format = "toml"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// Formats returns every supported format in menu order.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatXML, FormatTOML, FormatYAML, FormatMsgpack}
}

// Extension returns the file extension used for default output names.
func (f Format) Extension() string {
	return string(f)
}

// Description returns a human readable summary of the output shape.
func (f Format) Description() string {
	switch f {
	case FormatJSON:
		return "column-sorted records: {\"type\":\"table\",\"data\":[{\"col_0\":...}]}"
	case FormatCSV:
		return "first row as header record, remaining rows as data records"
	case FormatXML:
		return "indented <table><tr><th|td> markup"
	case FormatTOML:
		return "repeated [] markers with tag = \"text\" lines"
	case FormatYAML:
		return "repeated - markers with tag: \"text\" lines"
	case FormatMsgpack:
		return "MessagePack array of rows of {name, content} maps"
	default:
		return ""
	}
}

var aliases = map[string]Format{
	"1":           FormatJSON,
	"2":           FormatCSV,
	"3":           FormatXML,
	"4":           FormatTOML,
	"5":           FormatYAML,
	"6":           FormatMsgpack,
	"yml":         FormatYAML,
	"messagepack": FormatMsgpack,
	"mpk":         FormatMsgpack,
}

// Parse resolves a format name, alias or menu number (1-6).
func Parse(name string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, f := range Formats() {
		if key == string(f) {
			return f, nil
		}
	}
	if f, ok := aliases[key]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, name)
}

// Error types for serialization failures.
var (
	// ErrEmptyTable indicates a table with no rows where a header row is required.
	ErrEmptyTable = errors.New("table has no rows")
	// ErrUnsupported indicates an unknown output format.
	ErrUnsupported = errors.New("unsupported output format")
)

// EncodeError wraps a format-specific encoding failure.
type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Serializer turns a table into the bytes of one format.
// A nil table means extraction found no table.
type Serializer interface {
	// Serialize encodes t. On failure no partial output is returned.
	Serialize(t *table.Table) ([]byte, error)

	// Format returns the discriminant this serializer implements.
	Format() Format
}

// Option configures a serializer.
type Option func(*serializerConfig)

type serializerConfig struct {
	pretty       bool
	indent       string
	preserveRows bool
	comma        rune
}

// WithPretty enables indented output for JSON and XML.
func WithPretty(enabled bool) Option {
	return func(c *serializerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the indentation string.
func WithIndent(indent string) Option {
	return func(c *serializerConfig) {
		c.indent = indent
	}
}

// WithPreserveRows makes JSON output keep each source row intact instead
// of sorting every column independently.
func WithPreserveRows(enabled bool) Option {
	return func(c *serializerConfig) {
		c.preserveRows = enabled
	}
}

// WithComma sets the CSV field delimiter.
func WithComma(r rune) Option {
	return func(c *serializerConfig) {
		c.comma = r
	}
}

// New creates a serializer for the specified format.
func New(format Format, opts ...Option) (Serializer, error) {
	cfg := &serializerConfig{
		pretty: true,
		indent: "  ",
		comma:  ',',
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return NewJSON(cfg.pretty, cfg.indent, cfg.preserveRows), nil
	case FormatCSV:
		return NewCSV(cfg.comma), nil
	case FormatXML:
		return NewXML(cfg.pretty, cfg.indent), nil
	case FormatTOML:
		return NewTOML(), nil
	case FormatYAML:
		return NewYAML(), nil
	case FormatMsgpack:
		return NewMsgpack(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, format)
	}
}
