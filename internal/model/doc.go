// Package model defines the data structures shared by the triage pipeline.
//
// This package contains the following main types:
//   - LogEntry: one (url, status) pair extracted from an access log line
//   - StatusTally: per-URL count of 404 responses, in first-seen order
//   - DomainSet: deduplicated blacklist strings scraped from the threat feed
//   - AlertRecord: a log entry whose URL contains a blacklist string
//   - Summary: the three totals written to summary_report.json
//   - TriageRun: the accumulator handed from one pipeline step to the next
//
// The models live in their own package because the extractor, matcher,
// report writers and history database all need them.
package model
