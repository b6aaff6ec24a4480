// Package triage cross-references extracted requests against the blacklist
// and derives the totals reported at the end of a run.
package triage
