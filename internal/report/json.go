package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/logtriage/internal/model"
)

// DefaultIndent is the indentation of the JSON reports.
const DefaultIndent = "    "

// JSONWriter encodes values as JSON indented with DefaultIndent.
// HTML characters are written as-is so URLs stay readable.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output)}
}

// Encode writes v followed by a newline.
func (w *JSONWriter) Encode(v any) (int, error) {
	cw := &countingWriter{w: w.output}
	enc := json.NewEncoder(cw)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", DefaultIndent)
	err := enc.Encode(v)
	return cw.n, err
}

// AlertsWriter writes the alert list of a run as a JSON array.
type AlertsWriter struct {
	*JSONWriter
}

// NewAlertsWriter creates an AlertsWriter that outputs to the given writer.
func NewAlertsWriter(output io.Writer) Writer {
	return &AlertsWriter{JSONWriter: NewJSONWriter(output)}
}

// Write outputs run.Alerts. No alerts is written as [].
func (w *AlertsWriter) Write(run *model.TriageRun) (int, error) {
	alerts := run.Alerts
	if alerts == nil {
		alerts = []model.AlertRecord{}
	}
	return w.Encode(alerts)
}

// SummaryWriter writes the run summary as a JSON object.
type SummaryWriter struct {
	*JSONWriter
}

// NewSummaryWriter creates a SummaryWriter that outputs to the given writer.
func NewSummaryWriter(output io.Writer) Writer {
	return &SummaryWriter{JSONWriter: NewJSONWriter(output)}
}

// Write outputs run.Summary.
func (w *SummaryWriter) Write(run *model.TriageRun) (int, error) {
	if run.Summary == nil {
		return 0, ErrNoSummary
	}
	return w.Encode(run.Summary)
}
