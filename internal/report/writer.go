package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/logtriage/internal/model"
)

// ErrNoSummary is returned when the summary is written before it was built.
var ErrNoSummary = errors.New("run has no summary")

// Writer renders one report for a triage run.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.TriageRun) (int, error)
}

// WriterFunc builds a Writer around an output stream.
type WriterFunc func(output io.Writer) Writer

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter counts bytes for writers that buffer internally.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// WriteFile renders run into path, replacing any existing file.
// Missing parent directories are created.
func WriteFile(path string, newWriter WriterFunc, run *model.TriageRun) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if _, err := newWriter(f).Write(run); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// createFile creates or truncates path.
func createFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Access-log URLs can carry session tokens, keep reports owner-only.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // Path comes from the operator's configuration
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
