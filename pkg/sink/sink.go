// Package sink persists serialized output.
package sink

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/tablegrab/internal/logger"
)

// Sink stores content under a destination name.
type Sink interface {
	// Write stores content under name. A failed write leaves no
	// partially written destination behind where the sink can avoid it.
	Write(ctx context.Context, name string, content []byte) error

	// Type returns the sink type for logging/debugging.
	Type() string
}

// ErrInvalidName is returned for destination names that would escape the
// sink's directory.
var ErrInvalidName = errors.New("invalid destination name")

// FileSink writes each destination as a file inside a directory.
type FileSink struct {
	dir  string
	perm os.FileMode
}

// NewFile creates a sink rooted at dir ("" means the working directory).
func NewFile(dir string) *FileSink {
	return &FileSink{dir: dir, perm: 0o644}
}

// Path returns where name would be written.
func (s *FileSink) Path(name string) string {
	if s.dir == "" {
		return name
	}
	return filepath.Join(s.dir, name)
}

// Write writes content to a temporary file and renames it into place, so
// the destination holds either the previous content or all of the new.
func (s *FileSink) Write(ctx context.Context, name string, content []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	dest := s.Path(name)
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err = tmp.Chmod(s.perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}

	logger.Debug("output written", "path", dest, "size", humanize.Bytes(uint64(len(content))))
	return nil
}

// Type returns the sink type.
func (s *FileSink) Type() string {
	return "file"
}

// WriterSink writes content to an io.Writer such as stdout, ignoring the
// destination name.
type WriterSink struct {
	w *bufio.Writer
}

// NewWriter creates a sink over w.
func NewWriter(w io.Writer) *WriterSink {
	return &WriterSink{w: bufio.NewWriter(w)}
}

// Write writes content and flushes.
func (s *WriterSink) Write(ctx context.Context, name string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.w.Write(content); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	logger.Debug("output written", "destination", name, "size", humanize.Bytes(uint64(len(content))))
	return s.w.Flush()
}

// Type returns the sink type.
func (s *WriterSink) Type() string {
	return "writer"
}
