package config

// File represents the structure of the .logtriage configuration file.
//
//	inputs:
//	  log: access_log.txt
//	  feed: thread_feed.html
//	outputs:
//	  alerts: out/alert.json
//	history:
//	  save: true
type File struct {
	// Inputs names the files the pipeline reads.
	Inputs InputsConfig `yaml:"inputs,omitempty"`

	// Outputs names the files the pipeline writes.
	Outputs OutputsConfig `yaml:"outputs,omitempty"`

	// History controls the run history database.
	History HistoryConfig `yaml:"history,omitempty"`
}

// InputsConfig holds input file locations.
type InputsConfig struct {
	Log         string `yaml:"log,omitempty"`
	Feed        string `yaml:"feed,omitempty"`
	FeedCharset string `yaml:"feedCharset,omitempty"`
}

// OutputsConfig holds report file locations.
type OutputsConfig struct {
	URLStatus         string `yaml:"urlStatus,omitempty"`
	MalwareCandidates string `yaml:"malwareCandidates,omitempty"`
	Alerts            string `yaml:"alerts,omitempty"`
	Summary           string `yaml:"summary,omitempty"`
	Markdown          string `yaml:"markdown,omitempty"`
	MarkdownTopURLs   int    `yaml:"markdownTopURLs,omitempty"`
}

// HistoryConfig holds history database settings.
type HistoryConfig struct {
	// Save records every run in the history database.
	Save bool `yaml:"save,omitempty"`

	// Dir overrides the database directory (default: XDG data dir).
	Dir string `yaml:"dir,omitempty"`
}
