package model

import "time"

// TriageRun accumulates the results of one pipeline execution.
// Each step reads what earlier steps stored and adds its own output.
type TriageRun struct {
	// LogPath and FeedPath are the inputs of the run.
	LogPath  string `json:"log_path"`
	FeedPath string `json:"feed_path"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall time of the whole pipeline.
	Duration time.Duration `json:"duration"`

	// LinesRead is the number of lines in the access log, matched or not.
	LinesRead int `json:"lines_read"`

	// Entries holds the matched requests in log order.
	Entries []LogEntry `json:"entries"`

	// Tally holds 404 counts per URL.
	Tally *StatusTally `json:"-"`

	// Domains is the blacklist scraped from the feed.
	Domains *DomainSet `json:"-"`

	// Alerts holds every blacklist hit.
	Alerts []AlertRecord `json:"alerts"`

	// Summary is filled by the summary step.
	Summary *Summary `json:"summary,omitempty"`

	// InputDigest fingerprints the two input files (hex SHA3-256).
	InputDigest string `json:"input_digest,omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps"`

	// Error is the error that stopped the run, if any.
	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`
}

// NewTriageRun creates an empty run for the given inputs.
func NewTriageRun(logPath, feedPath string) *TriageRun {
	return &TriageRun{
		LogPath:        logPath,
		FeedPath:       feedPath,
		StartedAt:      time.Now(),
		Entries:        make([]LogEntry, 0),
		Tally:          NewStatusTally(),
		Domains:        NewDomainSet(),
		Alerts:         make([]AlertRecord, 0),
		PerformedSteps: make([]string, 0),
	}
}

// Failed reports whether a step stopped the run.
func (r *TriageRun) Failed() bool {
	return r.Error != nil
}
