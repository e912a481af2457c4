package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/tablegrab/internal/config"
	"github.com/jmylchreest/tablegrab/internal/logger"
	"github.com/jmylchreest/tablegrab/pkg/cleaner"
	"github.com/jmylchreest/tablegrab/pkg/fetcher"
	"github.com/jmylchreest/tablegrab/pkg/format"
	"github.com/jmylchreest/tablegrab/pkg/sink"
	"github.com/jmylchreest/tablegrab/pkg/tablegrab"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the first table of a page",
	Long: `Fetch a page (or read a local file), extract its first <table> and
write it in the chosen format.

Output goes to output.<ext> in the output directory unless -o names a
file; "-o -" writes to stdout.

Formats (name or menu number):
  1 json     column-sorted records under {"type":"table","data":[...]}
  2 csv      one line per row, first row as header
  3 xml      <table><tr><th>..</th></tr></table>
  4 toml     "[]" per row, th = "..." per cell
  5 yaml     "-" per row, th: "..." per cell
  6 msgpack  array of rows of {name, content} maps

Examples:
  tablegrab convert -u "https://example.com/stats" -f csv
  tablegrab convert -i saved.html -f 6 --output-dir out
  cat page.html | tablegrab convert -i - -f yaml -o -`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	d := config.Default()
	flags := convertCmd.Flags()

	// Input
	flags.StringP("url", "u", "", "page URL to fetch")
	flags.StringP("input", "i", "", "local HTML file to read (- for stdin)")

	// Output
	flags.StringP("format", "f", d.Format, "output format: json, csv, xml, toml, yaml, msgpack (or 1-6)")
	flags.StringP("output", "o", "", "output file name (default output.<ext>, - for stdout)")
	flags.String("output-dir", "", "directory for output files (default: current directory)")
	flags.Bool("save-html", false, "also write the cleaned page to output.html")
	flags.Bool("preserve-rows", false, "json: keep each row's cells together instead of sorting columns")
	flags.Bool("pretty", d.Pretty, "indent json and xml output")

	// Fetch settings
	flags.String("fetch-mode", d.FetchMode, "fetch mode: static, dynamic, file (implied by --input)")
	flags.Duration("timeout", d.Timeout, "request timeout")
	flags.String("max-size", d.MaxSize, "max page size (e.g., 512KB, 10MB, 0=unlimited)")
	flags.String("user-agent", "", "override the User-Agent header")
	flags.String("wait-for", "", "CSS selector to wait for in dynamic mode")
	flags.Bool("no-clean", false, "extract from the raw page without the cleanup pass")
	flags.Bool("strip", false, "remove script, style, noscript and template elements before extracting")

	// Bind to viper using snake_case keys
	flags.VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

func runConvert(cmd *cobra.Command, args []string) error {
	initLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}
	f, err := cfg.OutputFormat()
	if err != nil {
		return err
	}
	maxBytes, err := cfg.MaxBytes()
	if err != nil {
		return err
	}
	logger.Debug("convert command starting",
		"source", cfg.Source(),
		"format", f,
		"fetch_mode", cfg.FetchMode,
		"max_size", humanize.Bytes(uint64(maxBytes)))

	fetchCfg := fetcher.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		MaxBytes:  maxBytes,
	}
	ft, err := newFetcher(cfg.FetchMode, fetchCfg)
	if err != nil {
		logger.Error("failed to create fetcher", "mode", cfg.FetchMode, "error", err)
		return err
	}

	cl := newCleaner(cfg.Strip, !cfg.NoClean)
	logger.Debug("cleaner selected", "cleaner", cl.Name())

	opts := []tablegrab.Option{
		tablegrab.WithFetcher(ft),
		tablegrab.WithCleaner(cl),
		tablegrab.WithFetchOptions(fetcher.Options{
			UserAgent:       cfg.UserAgent,
			Timeout:         cfg.Timeout,
			MaxBytes:        maxBytes,
			WaitForSelector: cfg.WaitFor,
		}),
		tablegrab.WithFormatOptions(
			format.WithPretty(cfg.Pretty),
			format.WithPreserveRows(cfg.PreserveRows),
		),
	}

	switch {
	case cfg.ToStdout():
		opts = append(opts, tablegrab.WithSink(sink.NewWriter(os.Stdout)), tablegrab.WithOutputName("-"))
		if cfg.SaveHTML {
			logger.Warn("--save-html ignored when writing to stdout")
		}
	default:
		opts = append(opts,
			tablegrab.WithSink(sink.NewFile(cfg.OutputDir)),
			tablegrab.WithSaveHTML(cfg.SaveHTML))
		if cfg.Output != "" {
			opts = append(opts, tablegrab.WithOutputName(cfg.Output))
		}
	}

	g, err := tablegrab.New(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = g.Close() }()

	result, err := g.Scrape(ctx, cfg.Source(), f)
	if err != nil {
		logger.Error("conversion failed", "source", cfg.Source(), "error", err)
		return err
	}

	if !cfg.ToStdout() && !cfg.Quiet {
		fmt.Fprintf(os.Stderr, "Wrote %d rows to %s (%s, fetch %s, convert %s)\n",
			result.Rows,
			result.Destination,
			humanize.Bytes(uint64(result.Size)),
			result.FetchDuration.Round(time.Millisecond),
			result.ConvertDuration.Round(time.Microsecond))
	}
	return nil
}

// newFetcher creates the fetcher for mode.
func newFetcher(mode string, cfg fetcher.Config) (fetcher.Fetcher, error) {
	switch mode {
	case config.FetchDynamic:
		f, err := fetcher.NewDynamic(cfg)
		if err != nil {
			return nil, err
		}
		return f, nil
	case config.FetchFile:
		return fetcher.NewFile(cfg), nil
	case config.FetchStatic, "":
		return fetcher.NewStatic(cfg), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode %q", mode)
	}
}

// newCleaner builds the pre-extraction pass: optional DOM stripping followed
// by the compacting cleanup.
func newCleaner(strip, compact bool) cleaner.Cleaner {
	var chain []cleaner.Cleaner
	if strip {
		chain = append(chain, cleaner.NewStrip())
	}
	if compact {
		chain = append(chain, cleaner.NewCompact())
	}
	switch len(chain) {
	case 0:
		return cleaner.NewNoop()
	case 1:
		return chain[0]
	default:
		return cleaner.NewChain(chain...)
	}
}
