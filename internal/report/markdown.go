package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/logtriage/internal/model"
	"github.com/nao1215/logtriage/internal/triage"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// defaultTopURLs is how many 404 URLs the report lists.
const defaultTopURLs = 10

// MarkdownWriter outputs a triage report in Markdown format.
// Tables are GitHub-flavored and the alert breakdown is a mermaid pie chart.
type MarkdownWriter struct {
	baseWriter

	// topURLs limits the "Top 404 URLs" table.
	topURLs int
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithTopURLs sets how many 404 URLs are listed. Values below 1 are ignored.
func WithTopURLs(n int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		if n > 0 {
			w.topURLs = n
		}
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		topURLs:    defaultTopURLs,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *model.TriageRun) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeSummary(md, run)
	w.writeStatusBreakdown(md, run)
	w.writeTopNotFound(md, run)
	w.writeAlerts(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the inputs and timing of the run.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.TriageRun) {
	md.H1("Log Triage Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Access Log", "`" + run.LogPath + "`"},
			{"Threat Feed", "`" + run.FeedPath + "`"},
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Lines Read", strconv.Itoa(run.LinesRead)},
			{"Requests Matched", strconv.Itoa(len(run.Entries))},
			{"Blacklist Domains", strconv.Itoa(domainCount(run))},
		},
	})
	md.PlainText("")
}

// writeSummary writes the summary table and a callout sized to the alerts.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, run *model.TriageRun) {
	summary := run.Summary
	if summary == nil {
		summary = triage.Summarize(run.Tally, run.Alerts)
	}

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"404 Requests", strconv.Itoa(summary.TotalRequests)},
			{"Distinct 404 URLs", strconv.Itoa(summary.Total404URLs)},
			{"**Blacklist Alerts**", "**" + strconv.Itoa(summary.TotalAlerts) + "**"},
		},
	})
	md.PlainText("")

	switch {
	case summary.TotalAlerts > 0:
		md.Cautionf(
			"%d request(s) touched blacklisted domains. Review alert.json before anything else.",
			summary.TotalAlerts,
		)
	case summary.Total404URLs > 0:
		md.Note("No blacklist hits. Check the 404 URLs below for probing.")
	default:
		md.Tip("No blacklist hits and no 404 responses.")
	}
	md.PlainText("")
}

// writeStatusBreakdown writes the number of requests per status code.
func (w *MarkdownWriter) writeStatusBreakdown(md *markdown.Markdown, run *model.TriageRun) {
	md.H2("Status Codes")
	md.PlainText("")

	breakdown := triage.StatusBreakdown(run.Entries)
	if len(breakdown) == 0 {
		md.PlainText("No requests matched.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(breakdown))
	for i, b := range breakdown {
		rows[i] = []string{b.Status, strconv.Itoa(b.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Requests"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeTopNotFound writes the most requested missing URLs.
func (w *MarkdownWriter) writeTopNotFound(md *markdown.Markdown, run *model.TriageRun) {
	md.H2("Top 404 URLs")
	md.PlainText("")

	top := triage.TopNotFound(run.Tally, w.topURLs)
	if len(top) == 0 {
		md.PlainText("No 404 responses.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(top))
	for i, u := range top {
		rows[i] = []string{"`" + truncateString(u.URL, 80) + "`", strconv.Itoa(u.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "404 Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAlerts writes the alert table and its per-domain chart.
func (w *MarkdownWriter) writeAlerts(md *markdown.Markdown, run *model.TriageRun) {
	md.H2("Blacklist Alerts")
	md.PlainText("")

	if len(run.Alerts) == 0 {
		md.PlainText("No requests matched the blacklist.")
		md.PlainText("")
		return
	}

	w.writePieChart(md, run.Alerts)

	rows := make([][]string, len(run.Alerts))
	for i, a := range run.Alerts {
		rows[i] = []string{
			"`" + truncateString(a.URL, 80) + "`",
			a.Status,
			a.BlacklistDomain,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Blacklist Domain"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of alerts per domain.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, alerts []model.AlertRecord) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Alerts by Blacklist Domain"),
		piechart.WithShowData(true),
	)
	for _, d := range triage.AlertsByDomain(alerts) {
		chart.LabelAndIntValue(d.URL, uint64(d.Count)) //nolint:gosec // Count is never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by logtriage at %s*", time.Now().UTC().Format(time.RFC3339))
}

func domainCount(run *model.TriageRun) int {
	if run.Domains == nil {
		return 0
	}
	return run.Domains.Len()
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
