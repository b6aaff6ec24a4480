// Package pipeline runs the triage stages in sequence.
//
// A run is a fixed chain: extract the access log, write the flat listing
// and the 404 tally, scrape the blacklist, match, summarise and write the
// JSON reports. Optional steps add the Markdown report and record the run
// in the history database. Each stage is a Step that reads and extends the
// shared *model.TriageRun.
//
// The pipeline stops at the first failing step. Files written by earlier
// steps stay on disk. Cancellation is checked between steps.
package pipeline
