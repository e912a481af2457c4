package tablegrab

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tablegrab/pkg/cleaner"
	"github.com/jmylchreest/tablegrab/pkg/fetcher"
	"github.com/jmylchreest/tablegrab/pkg/format"
	"github.com/jmylchreest/tablegrab/pkg/sink"
	"github.com/jmylchreest/tablegrab/pkg/table"
)

const scenarioHTML = `<table><tr><th>A</th><th>B</th></tr><tr><td>2</td><td>1</td></tr></table>`

// fakeFetcher serves fixed HTML.
type fakeFetcher struct {
	html   string
	err    error
	closed bool
	opts   fetcher.Options
}

func (f *fakeFetcher) Fetch(_ context.Context, address string, opts fetcher.Options) (fetcher.Content, error) {
	f.opts = opts
	if f.err != nil {
		return fetcher.Content{}, f.err
	}
	return fetcher.Content{URL: address, HTML: f.html, StatusCode: 200, FetchedAt: time.Now()}, nil
}

func (f *fakeFetcher) Close() error {
	f.closed = true
	return nil
}

func (f *fakeFetcher) Type() string { return "fake" }

// memorySink records writes by destination name.
type memorySink struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemorySink() *memorySink {
	return &memorySink{files: make(map[string][]byte)}
}

func (s *memorySink) Write(_ context.Context, name string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), content...)
	return nil
}

func (s *memorySink) Type() string { return "memory" }

func newTestGrab(t *testing.T, html string, opts ...Option) (*Tablegrab, *memorySink) {
	t.Helper()
	ms := newMemorySink()
	opts = append([]Option{WithFetcher(&fakeFetcher{html: html}), WithSink(ms)}, opts...)
	g, err := New(opts...)
	require.NoError(t, err)
	return g, ms
}

// --- Convert Tests ---

func TestConvert_Scenario(t *testing.T) {
	g, _ := newTestGrab(t, "", WithFormatOptions(format.WithPretty(false)))

	out, err := g.Convert(scenarioHTML, format.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "A,B\n2,1\n", string(out))

	out, err = g.Convert(scenarioHTML, format.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"table","data":[{"col_0":"2","col_1":"1"},{"col_0":"A","col_1":"B"}]}`, string(out))
}

func TestConvert_NoTable(t *testing.T) {
	g, _ := newTestGrab(t, "", WithFormatOptions(format.WithPretty(false)))

	for _, f := range format.Formats() {
		out, err := g.Convert("<p>no tables here</p>", f)
		if f == format.FormatJSON {
			require.NoError(t, err)
			assert.Equal(t, `{"error":"Input is not a table"}`, string(out))
			continue
		}
		assert.ErrorIs(t, err, table.ErrNotFound, "format %s", f)
		assert.Nil(t, out)
	}
}

func TestConvert_EmptyTable(t *testing.T) {
	g, _ := newTestGrab(t, "")

	_, err := g.Convert("<table></table>", format.FormatCSV)
	assert.ErrorIs(t, err, format.ErrEmptyTable)

	out, err := g.Convert("<table></table>", format.FormatXML)
	require.NoError(t, err)
	assert.Equal(t, "<table></table>", string(out))

	out, err = g.Convert("<table></table>", format.FormatMsgpack)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x90}, out)

	for _, f := range []format.Format{format.FormatTOML, format.FormatYAML} {
		out, err = g.Convert("<table></table>", f)
		require.NoError(t, err)
		assert.Empty(t, out)
	}
}

func TestConvert_UnsupportedFormat(t *testing.T) {
	g, _ := newTestGrab(t, "")
	_, err := g.Convert(scenarioHTML, format.Format("bogus"))
	assert.ErrorIs(t, err, format.ErrUnsupported)
}

// --- ConvertAll Tests ---

func TestConvertAll_AllFormats(t *testing.T) {
	g, _ := newTestGrab(t, "")

	outputs, err := g.ConvertAll(context.Background(), scenarioHTML, format.Formats()...)
	require.NoError(t, err)
	require.Len(t, outputs, len(format.Formats()))

	// Each concurrent output matches the sequential one.
	for f, got := range outputs {
		want, err := g.Convert(scenarioHTML, f)
		require.NoError(t, err)
		assert.Equal(t, want, got, "format %s", f)
	}
}

func TestConvertAll_FailureYieldsNoOutputs(t *testing.T) {
	g, _ := newTestGrab(t, "")

	outputs, err := g.ConvertAll(context.Background(), "<table></table>", format.FormatXML, format.FormatCSV)
	require.ErrorIs(t, err, format.ErrEmptyTable)
	assert.Nil(t, outputs)
}

// --- Scrape Tests ---

func TestScrape_WritesDefaultDestination(t *testing.T) {
	g, ms := newTestGrab(t, "<html>\n<body>\n"+scenarioHTML+"\n</body></html>")

	res, err := g.Scrape(context.Background(), "https://example.com/t", format.FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "output.csv", res.Destination)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, format.FormatCSV, res.Format)
	assert.Equal(t, "A,B\n2,1\n", string(ms.files["output.csv"]))
	assert.Equal(t, len(ms.files["output.csv"]), res.Size)
	assert.NotContains(t, ms.files, HTMLOutputName)
}

func TestScrape_SaveHTMLAndOutputName(t *testing.T) {
	g, ms := newTestGrab(t, "<table>\n<tr><td>x</td></tr>\n</table>",
		WithSaveHTML(true),
		WithOutputName("rows.yaml"))

	_, err := g.Scrape(context.Background(), "https://example.com", format.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "-\n  td: \"x\"\n", string(ms.files["rows.yaml"]))
	// Saved page is the cleaned one.
	assert.Equal(t, "<table> <tr><td>x</td></tr> </table>", string(ms.files[HTMLOutputName]))
}

func TestScrape_CleanerRemovesBraceBlocks(t *testing.T) {
	html := `<table><tr><td>a{b}c</td></tr></table>`

	g, ms := newTestGrab(t, html)
	_, err := g.Scrape(context.Background(), "x", format.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "[]\ntd = \"a c\"\n", string(ms.files["output.toml"]))

	g, ms = newTestGrab(t, html, WithCleaner(cleaner.NewNoop()))
	_, err = g.Scrape(context.Background(), "x", format.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "[]\ntd = \"a{b}c\"\n", string(ms.files["output.toml"]))
}

func TestScrape_FetchError(t *testing.T) {
	ms := newMemorySink()
	g, err := New(WithFetcher(&fakeFetcher{err: fetcher.ErrStatus}), WithSink(ms))
	require.NoError(t, err)

	_, err = g.Scrape(context.Background(), "https://example.com", format.FormatJSON)
	require.ErrorIs(t, err, fetcher.ErrStatus)
	assert.Empty(t, ms.files)
}

func TestScrape_NoTableWritesNothing(t *testing.T) {
	g, ms := newTestGrab(t, "<p>nothing</p>")

	_, err := g.Scrape(context.Background(), "https://example.com", format.FormatMsgpack)
	require.ErrorIs(t, err, table.ErrNotFound)
	assert.Empty(t, ms.files)
}

func TestScrape_NoTableJSONErrorObject(t *testing.T) {
	g, ms := newTestGrab(t, "<p>nothing</p>", WithFormatOptions(format.WithPretty(false)))

	res, err := g.Scrape(context.Background(), "https://example.com", format.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Rows)
	assert.Equal(t, `{"error":"Input is not a table"}`, string(ms.files["output.json"]))
}

func TestScrape_PassesFetchOptions(t *testing.T) {
	ff := &fakeFetcher{html: scenarioHTML}
	g, err := New(WithFetcher(ff), WithSink(newMemorySink()),
		WithFetchOptions(fetcher.Options{UserAgent: "ua", MaxBytes: 42}))
	require.NoError(t, err)

	_, err = g.Scrape(context.Background(), "u", format.FormatXML)
	require.NoError(t, err)
	assert.Equal(t, "ua", ff.opts.UserAgent)
	assert.Equal(t, 42, ff.opts.MaxBytes)
}

func TestScrape_FileToFile(t *testing.T) {
	in := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(in, []byte(scenarioHTML), 0o600))
	outDir := t.TempDir()

	g, err := New(WithFetcher(fetcher.NewFile(fetcher.Config{})), WithSink(sink.NewFile(outDir)))
	require.NoError(t, err)
	defer func() { _ = g.Close() }()

	_, err = g.Scrape(context.Background(), in, format.FormatMsgpack)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "output.msgpack"))
	require.NoError(t, err)

	tbl, err := format.DecodeMsgpack(data)
	require.NoError(t, err)
	want, err := table.Extract(scenarioHTML)
	require.NoError(t, err)
	assert.Equal(t, want.Rows, tbl.Rows)
}

// --- Lifecycle Tests ---

func TestNew_Defaults(t *testing.T) {
	g, err := New()
	require.NoError(t, err)

	assert.Equal(t, "static", g.fetcher.Type())
	assert.Equal(t, "compact", g.cleaner.Name())
	assert.Equal(t, "file", g.sink.Type())
}

func TestClose_ClosesFetcher(t *testing.T) {
	ff := &fakeFetcher{}
	g, err := New(WithFetcher(ff))
	require.NoError(t, err)

	require.NoError(t, g.Close())
	assert.True(t, ff.closed)
}

func TestDefaultOutputName(t *testing.T) {
	assert.Equal(t, "output.json", DefaultOutputName(format.FormatJSON))
	assert.Equal(t, "output.msgpack", DefaultOutputName(format.FormatMsgpack))
}

func TestExtract_NoTableIsNil(t *testing.T) {
	tbl, err := extract("<p>x</p>")
	require.NoError(t, err)
	assert.Nil(t, tbl)
}
