package tablegrab

import (
	"github.com/jmylchreest/tablegrab/pkg/cleaner"
	"github.com/jmylchreest/tablegrab/pkg/fetcher"
	"github.com/jmylchreest/tablegrab/pkg/format"
	"github.com/jmylchreest/tablegrab/pkg/sink"
)

// Config holds all Tablegrab configuration.
type Config struct {
	// Collaborators; nil means use the default.
	Fetcher fetcher.Fetcher
	Cleaner cleaner.Cleaner
	Sink    sink.Sink

	// Fetch settings passed on every Fetch call.
	FetchOptions fetcher.Options

	// Serializer settings passed to format.New.
	FormatOptions []format.Option

	// OutputName overrides the default output.<ext> destination.
	OutputName string

	// SaveHTML also stores the cleaned page as output.html.
	SaveHTML bool
}

// Option configures Tablegrab.
type Option func(*Config)

// WithFetcher sets the HTML source.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(c *Config) {
		c.Fetcher = f
	}
}

// WithCleaner sets the pre-extraction cleaner. Pass cleaner.NewNoop() to
// extract from the raw page.
func WithCleaner(cl cleaner.Cleaner) Option {
	return func(c *Config) {
		c.Cleaner = cl
	}
}

// WithSink sets where output is written.
func WithSink(s sink.Sink) Option {
	return func(c *Config) {
		c.Sink = s
	}
}

// WithFetchOptions sets per-request fetch options.
func WithFetchOptions(opts fetcher.Options) Option {
	return func(c *Config) {
		c.FetchOptions = opts
	}
}

// WithFormatOptions appends serializer options.
func WithFormatOptions(opts ...format.Option) Option {
	return func(c *Config) {
		c.FormatOptions = append(c.FormatOptions, opts...)
	}
}

// WithOutputName sets the destination name used by Scrape.
func WithOutputName(name string) Option {
	return func(c *Config) {
		c.OutputName = name
	}
}

// WithSaveHTML enables storing the cleaned page alongside the output.
func WithSaveHTML(enabled bool) Option {
	return func(c *Config) {
		c.SaveHTML = enabled
	}
}
