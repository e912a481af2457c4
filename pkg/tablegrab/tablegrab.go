// Package tablegrab provides the public API: fetch a page, locate its first
// table and emit it in one of the supported formats.
package tablegrab

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/tablegrab/internal/logger"
	"github.com/jmylchreest/tablegrab/pkg/cleaner"
	"github.com/jmylchreest/tablegrab/pkg/fetcher"
	"github.com/jmylchreest/tablegrab/pkg/format"
	"github.com/jmylchreest/tablegrab/pkg/sink"
	"github.com/jmylchreest/tablegrab/pkg/table"
)

// HTMLOutputName is the destination of the cleaned page when SaveHTML is set.
const HTMLOutputName = "output.html"

// DefaultOutputName returns output.<ext> for f.
func DefaultOutputName(f format.Format) string {
	return "output." + f.Extension()
}

// Result describes one completed Scrape.
type Result struct {
	URL             string
	Format          format.Format
	Destination     string
	Size            int
	Rows            int
	FetchedAt       time.Time
	FetchDuration   time.Duration
	ConvertDuration time.Duration
}

// Tablegrab wires a fetcher, a cleaner and a sink around the extractor
// and serializers.
type Tablegrab struct {
	fetcher fetcher.Fetcher
	cleaner cleaner.Cleaner
	sink    sink.Sink
	config  Config
}

// New creates a new Tablegrab instance. Defaults are a static HTTP
// fetcher, the compacting cleaner and a file sink in the working directory.
func New(opts ...Option) (*Tablegrab, error) {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	g := &Tablegrab{
		fetcher: cfg.Fetcher,
		cleaner: cfg.Cleaner,
		sink:    cfg.Sink,
		config:  cfg,
	}
	if g.fetcher == nil {
		g.fetcher = fetcher.NewStatic(fetcher.DefaultConfig())
	}
	if g.cleaner == nil {
		g.cleaner = cleaner.NewCompact()
	}
	if g.sink == nil {
		g.sink = sink.NewFile("")
	}

	logger.Debug("tablegrab instance created",
		"fetcher", g.fetcher.Type(),
		"cleaner", g.cleaner.Name(),
		"sink", g.sink.Type())
	return g, nil
}

// Convert extracts the first table of html and serializes it as f.
//
// When html has no table the JSON format still succeeds with its
// {"error": ...} object; every other format returns table.ErrNotFound.
func (g *Tablegrab) Convert(html string, f format.Format) ([]byte, error) {
	s, err := format.New(f, g.config.FormatOptions...)
	if err != nil {
		return nil, err
	}
	tbl, err := extract(html)
	if err != nil {
		return nil, err
	}
	return s.Serialize(tbl)
}

// ConvertAll extracts once and runs one serializer per format
// concurrently. Any failure fails the whole call and no outputs are
// returned.
func (g *Tablegrab) ConvertAll(ctx context.Context, html string, formats ...format.Format) (map[format.Format][]byte, error) {
	serializers := make([]format.Serializer, 0, len(formats))
	for _, f := range formats {
		s, err := format.New(f, g.config.FormatOptions...)
		if err != nil {
			return nil, err
		}
		serializers = append(serializers, s)
	}

	tbl, err := extract(html)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	outputs := make(map[format.Format][]byte, len(serializers))

	eg, ctx := errgroup.WithContext(ctx)
	for _, s := range serializers {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := s.Serialize(tbl)
			if err != nil {
				return fmt.Errorf("%s: %w", s.Format(), err)
			}
			mu.Lock()
			outputs[s.Format()] = out
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// Scrape fetches address, cleans it, converts the first table to f and
// writes the result to the sink.
func (g *Tablegrab) Scrape(ctx context.Context, address string, f format.Format) (*Result, error) {
	s, err := format.New(f, g.config.FormatOptions...)
	if err != nil {
		return nil, err
	}

	fetchStart := time.Now()
	content, err := g.fetcher.Fetch(ctx, address, g.config.FetchOptions)
	fetchDuration := time.Since(fetchStart)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	logger.Debug("page fetched",
		"url", address,
		"status", content.StatusCode,
		"size", len(content.HTML),
		"duration", fetchDuration)

	html, err := g.cleaner.Clean(content.HTML)
	if err != nil {
		return nil, fmt.Errorf("clean failed: %w", err)
	}
	if g.config.SaveHTML {
		if err := g.sink.Write(ctx, HTMLOutputName, []byte(html)); err != nil {
			return nil, fmt.Errorf("save html: %w", err)
		}
	}

	convertStart := time.Now()
	tbl, err := extract(html)
	if err != nil {
		return nil, err
	}
	out, err := s.Serialize(tbl)
	if err != nil {
		return nil, err
	}
	convertDuration := time.Since(convertStart)

	name := g.config.OutputName
	if name == "" {
		name = DefaultOutputName(f)
	}
	if err := g.sink.Write(ctx, name, out); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	result := &Result{
		URL:             address,
		Format:          f,
		Destination:     name,
		Size:            len(out),
		Rows:            tbl.Len(),
		FetchedAt:       content.FetchedAt,
		FetchDuration:   fetchDuration,
		ConvertDuration: convertDuration,
	}
	logger.Info("table saved",
		"url", address,
		"format", f,
		"destination", name,
		"rows", result.Rows)
	return result, nil
}

// Close releases all resources.
func (g *Tablegrab) Close() error {
	if g.fetcher != nil {
		return g.fetcher.Close()
	}
	return nil
}

// extract runs the table extractor, mapping "no table" to a nil table so
// each serializer decides how to report it.
func extract(html string) (*table.Table, error) {
	tbl, err := table.Extract(html)
	if errors.Is(err, table.ErrNotFound) {
		return nil, nil
	}
	return tbl, err
}
