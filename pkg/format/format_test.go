package format

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tablegrab/pkg/table"
)

const scenarioHTML = `<table><tr><th>A</th><th>B</th></tr><tr><td>2</td><td>1</td></tr></table>`

// mustExtract parses html and fails the test if no table is found.
func mustExtract(t *testing.T, html string) *table.Table {
	t.Helper()
	tbl, err := table.Extract(html)
	require.NoError(t, err)
	return tbl
}

func th(text string) table.Cell { return table.Cell{Tag: table.TagHeader, Text: text} }
func td(text string) table.Cell { return table.Cell{Tag: table.TagData, Text: text} }

// --- New Factory Tests ---

func TestNew_AllFormats(t *testing.T) {
	for _, f := range Formats() {
		s, err := New(f)
		require.NoError(t, err, "format %s", f)
		assert.Equal(t, f, s.Format())
	}
}

func TestNew_Types(t *testing.T) {
	cases := map[Format]any{
		FormatJSON:    &JSONSerializer{},
		FormatCSV:     &CSVSerializer{},
		FormatXML:     &XMLSerializer{},
		FormatTOML:    &KeyValueSerializer{},
		FormatYAML:    &KeyValueSerializer{},
		FormatMsgpack: &MsgpackSerializer{},
	}
	for f, want := range cases {
		s, err := New(f)
		require.NoError(t, err)
		assert.IsType(t, want, s, "format %s", f)
	}
}

func TestNew_UnsupportedFormat(t *testing.T) {
	_, err := New(Format("parquet"))
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Contains(t, err.Error(), "parquet")
}

func TestNew_Options(t *testing.T) {
	s, err := New(FormatJSON, WithPretty(false), WithPreserveRows(true))
	require.NoError(t, err)

	js := s.(*JSONSerializer)
	assert.False(t, js.pretty)
	assert.True(t, js.preserveRows)

	s, err = New(FormatCSV, WithComma(';'))
	require.NoError(t, err)
	assert.Equal(t, ';', s.(*CSVSerializer).comma)

	s, err = New(FormatXML, WithIndent("\t"))
	require.NoError(t, err)
	assert.Equal(t, "\t", s.(*XMLSerializer).indent)
}

// --- Parse Tests ---

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{" csv ", FormatCSV},
		{"1", FormatJSON},
		{"2", FormatCSV},
		{"3", FormatXML},
		{"4", FormatTOML},
		{"5", FormatYAML},
		{"6", FormatMsgpack},
		{"yml", FormatYAML},
		{"messagepack", FormatMsgpack},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "7", "0", "html"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrUnsupported, "input %q", in)
	}
}

func TestFormat_ExtensionAndDescription(t *testing.T) {
	for _, f := range Formats() {
		assert.Equal(t, string(f), f.Extension())
		assert.NotEmpty(t, f.Description())
	}
}

// --- Missing Table Tests ---

func TestSerializers_NilTable(t *testing.T) {
	for _, f := range Formats() {
		s, err := New(f)
		require.NoError(t, err)

		out, err := s.Serialize(nil)
		if f == FormatJSON {
			require.NoError(t, err)
			assert.JSONEq(t, `{"error":"Input is not a table"}`, string(out))
			continue
		}
		assert.ErrorIs(t, err, table.ErrNotFound, "format %s", f)
		assert.Nil(t, out, "format %s", f)
	}
}

// --- EncodeError Tests ---

func TestEncodeError_Unwrap(t *testing.T) {
	inner := errors.New("bad byte")
	err := error(&EncodeError{Format: FormatMsgpack, Err: inner})

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "encode msgpack: bad byte", err.Error())

	var ee *EncodeError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, FormatMsgpack, ee.Format)
}
