package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"golang.org/x/text/encoding/htmlindex"
)

// Default input and output file names.
// They match the file names the triage workflow has always used, so running
// the tool without any flag or config file in a directory holding
// access_log.txt and thread_feed.html behaves exactly as before.
const (
	// DefaultLogFile is the web-server access log to triage.
	DefaultLogFile = "access_log.txt"

	// DefaultFeedFile is the HTML threat feed whose anchors form the blacklist.
	DefaultFeedFile = "thread_feed.html"

	// DefaultURLStatusReportFile receives one "<url> <status>" line per request.
	DefaultURLStatusReportFile = "url_status_report.txt"

	// DefaultMalwareCandidatesFile receives the per-URL 404 tally as CSV.
	DefaultMalwareCandidatesFile = "malware_candidates.csv"

	// DefaultAlertFile receives the blacklist matches as a JSON array.
	DefaultAlertFile = "alert.json"

	// DefaultSummaryFile receives the run summary as a JSON object.
	DefaultSummaryFile = "summary_report.json"

	// AppName is the application name used for XDG directory paths.
	AppName = "logtriage"
)

// Config holds all configuration options for a triage run.
// It is populated from defaults, the optional YAML file and CLI flags, and
// then passed to the pipeline explicitly; nothing reads global state.
type Config struct {
	// LogPath is the access log to read.
	LogPath string

	// FeedPath is the HTML document whose anchor texts are the blacklist.
	FeedPath string

	// FeedCharset forces the character encoding of the feed (e.g. "windows-1252").
	// When empty the encoding is detected from the BOM or <meta charset>.
	FeedCharset string

	// URLStatusReportPath is the flat "<url> <status>" listing.
	URLStatusReportPath string

	// MalwareCandidatesPath is the "URL,404 Count" CSV.
	MalwareCandidatesPath string

	// AlertPath is the JSON array of blacklist matches.
	AlertPath string

	// SummaryPath is the JSON summary object.
	SummaryPath string

	// MarkdownReportPath enables the Markdown triage report when non-empty.
	MarkdownReportPath string

	// MarkdownTopURLs limits the "Top 404 URLs" table of the Markdown report.
	// Zero keeps the writer's default.
	MarkdownTopURLs int

	// Verbose enables debug logging on stderr.
	Verbose bool

	// ConfigFilePath is the YAML file explicitly requested with --config.
	ConfigFilePath string

	// SaveToDB records the run in the history database.
	SaveToDB bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/logtriage on Linux).
	DBDir string
}

// NewConfig creates a Config populated with the default file names.
func NewConfig() *Config {
	return &Config{
		LogPath:               DefaultLogFile,
		FeedPath:              DefaultFeedFile,
		URLStatusReportPath:   DefaultURLStatusReportFile,
		MalwareCandidatesPath: DefaultMalwareCandidatesFile,
		AlertPath:             DefaultAlertFile,
		SummaryPath:           DefaultSummaryFile,
		DBDir:                 XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for logtriage.
// On Linux: ~/.local/share/logtriage
// On macOS: ~/Library/Application Support/logtriage
// On Windows: %LOCALAPPDATA%\logtriage
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ApplyFile overlays the values set in a configuration file.
// Empty fields in the file leave the current value untouched.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	setIfNotEmpty(&c.LogPath, f.Inputs.Log)
	setIfNotEmpty(&c.FeedPath, f.Inputs.Feed)
	setIfNotEmpty(&c.FeedCharset, f.Inputs.FeedCharset)
	setIfNotEmpty(&c.URLStatusReportPath, f.Outputs.URLStatus)
	setIfNotEmpty(&c.MalwareCandidatesPath, f.Outputs.MalwareCandidates)
	setIfNotEmpty(&c.AlertPath, f.Outputs.Alerts)
	setIfNotEmpty(&c.SummaryPath, f.Outputs.Summary)
	setIfNotEmpty(&c.MarkdownReportPath, f.Outputs.Markdown)
	setIfNotEmpty(&c.DBDir, f.History.Dir)
	if f.Outputs.MarkdownTopURLs != 0 {
		c.MarkdownTopURLs = f.Outputs.MarkdownTopURLs
	}
	if f.History.Save {
		c.SaveToDB = true
	}
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// OutputPaths returns every report path that will be written, in pipeline order.
func (c *Config) OutputPaths() []string {
	paths := []string{
		c.URLStatusReportPath,
		c.MalwareCandidatesPath,
		c.AlertPath,
		c.SummaryPath,
	}
	if c.MarkdownReportPath != "" {
		paths = append(paths, c.MarkdownReportPath)
	}
	return paths
}

// Validate checks if the configuration is valid and returns the first problem found.
// It runs once after flag parsing so a bad invocation fails before any file is touched.
func (c *Config) Validate() error {
	if c.LogPath == "" {
		return ErrNoLogPath
	}
	if c.FeedPath == "" {
		return ErrNoFeedPath
	}
	if c.URLStatusReportPath == "" || c.MalwareCandidatesPath == "" ||
		c.AlertPath == "" || c.SummaryPath == "" {
		return ErrNoOutputPath
	}

	if label := strings.TrimSpace(c.FeedCharset); label != "" {
		if _, err := htmlindex.Get(label); err != nil {
			return fmt.Errorf("%w: %q", ErrUnknownFeedCharset, c.FeedCharset)
		}
	}
	if c.MarkdownTopURLs < 0 {
		return ErrInvalidMarkdownTopURLs
	}

	inputs := map[string]bool{
		filepath.Clean(c.LogPath):  true,
		filepath.Clean(c.FeedPath): true,
	}
	seen := make(map[string]bool)
	for _, p := range c.OutputPaths() {
		clean := filepath.Clean(p)
		if inputs[clean] {
			return ErrOutputOverwritesInput
		}
		if seen[clean] {
			return ErrDuplicateOutputPath
		}
		seen[clean] = true
	}

	if c.SaveToDB && c.DBDir == "" {
		return ErrNoHistoryDir
	}
	return nil
}
