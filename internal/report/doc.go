// Package report writes the artifacts of a triage run.
//
// Every writer takes a *model.TriageRun and renders one view of it:
//   - FlatWriter: "url status" lines for every matched request
//   - TallyCSVWriter: per-URL 404 counts as CSV
//   - AlertsWriter / SummaryWriter: the JSON alert list and run summary
//   - MarkdownWriter: a human-readable triage report
//
// Writers implement the Writer interface and only know about io.Writer.
// WriteFile opens the destination file for them.
package report
