package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/jmylchreest/tablegrab/internal/logger"
)

// StdinAddress makes FileFetcher read standard input.
const StdinAddress = "-"

// FileFetcher reads HTML from a local file and transcodes it to UTF-8
// using the BOM or <meta charset> it declares.
type FileFetcher struct {
	config Config
	stdin  io.Reader
}

// NewFile creates a file fetcher.
func NewFile(cfg Config) *FileFetcher {
	return &FileFetcher{config: cfg, stdin: os.Stdin}
}

// Fetch reads the file at path ("-" for stdin).
func (f *FileFetcher) Fetch(ctx context.Context, path string, opts Options) (Content, error) {
	result := Content{
		URL:       path,
		FetchedAt: time.Now(),
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	var src io.Reader
	if path == StdinAddress {
		src = f.stdin
	} else {
		file, err := os.Open(path) //#nosec G304 -- CLI tool reads user-specified input file
		if err != nil {
			return result, fmt.Errorf("open input: %w", err)
		}
		defer func() { _ = file.Close() }()
		src = file
	}

	maxBytes := pickInt(opts.MaxBytes, f.config.MaxBytes)
	if maxBytes > 0 {
		src = io.LimitReader(src, int64(maxBytes)+1)
	}
	raw, err := io.ReadAll(src)
	if err != nil {
		return result, fmt.Errorf("read input: %w", err)
	}
	if maxBytes > 0 && len(raw) > maxBytes {
		return result, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}

	utf8, err := charset.NewReader(bytes.NewReader(raw), "")
	if err != nil {
		return result, fmt.Errorf("detect charset: %w", err)
	}
	data, err := io.ReadAll(utf8)
	if err != nil {
		return result, fmt.Errorf("decode input: %w", err)
	}

	result.HTML = string(data)
	result.ContentType = "text/html; charset=utf-8"
	logger.Debug("file fetch complete", "path", path, "size", len(data))
	return result, nil
}

// Close releases resources.
func (f *FileFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *FileFetcher) Type() string {
	return "file"
}
