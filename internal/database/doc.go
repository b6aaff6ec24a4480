// Package database stores the history of triage runs in SQLite.
//
// Each saved run keeps its inputs, an SHA3-256 digest of the input files,
// the three summary totals and the full alert list as JSON, so repeated
// triage of the same log can be compared later with `logtriage history`.
//
// The driver is modernc.org/sqlite, a CGO-free SQLite. The database is a
// single file, logtriage.db, in the XDG data directory by default.
package database
