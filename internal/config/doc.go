// Package config provides configuration structures and utilities for logtriage.
// It defines where the pipeline reads its inputs from, where each report is
// written, and whether a run is recorded in the history database.
package config
