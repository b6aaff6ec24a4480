package report

import (
	"bufio"
	"io"

	"github.com/nao1215/logtriage/internal/model"
)

// FlatWriter writes one "<url> <status>" line per matched request,
// in log order.
type FlatWriter struct {
	baseWriter
}

// NewFlatWriter creates a FlatWriter that outputs to the given writer.
func NewFlatWriter(output io.Writer) Writer {
	return &FlatWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the flat URL/status listing.
func (w *FlatWriter) Write(run *model.TriageRun) (int, error) {
	cw := &countingWriter{w: w.output}
	bw := bufio.NewWriter(cw)
	for _, e := range run.Entries {
		if _, err := bw.WriteString(e.String() + "\n"); err != nil {
			return cw.n, err
		}
	}
	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}
