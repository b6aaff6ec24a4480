package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/nao1215/logtriage/internal/model"
)

// TallyCSVHeader is the first row of the 404 tally CSV.
var TallyCSVHeader = []string{"URL", "404 Count"}

// TallyCSVWriter writes the 404 tally as CSV, one row per URL in the order
// the URLs first appeared. Records end in CRLF.
type TallyCSVWriter struct {
	baseWriter
}

// NewTallyCSVWriter creates a TallyCSVWriter that outputs to the given writer.
func NewTallyCSVWriter(output io.Writer) Writer {
	return &TallyCSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the header and one row per tallied URL.
func (w *TallyCSVWriter) Write(run *model.TriageRun) (int, error) {
	cw := &countingWriter{w: w.output}
	out := csv.NewWriter(cw)
	out.UseCRLF = true

	if err := out.Write(TallyCSVHeader); err != nil {
		return cw.n, err
	}
	if run.Tally != nil {
		for url, count := range run.Tally.All() {
			if err := out.Write([]string{url, strconv.Itoa(count)}); err != nil {
				return cw.n, err
			}
		}
	}
	out.Flush()
	return cw.n, out.Error()
}
