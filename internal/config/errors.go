package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// They are sentinels so callers can branch with errors.Is.
var (
	// ErrNoLogPath is returned when the access log path is empty.
	ErrNoLogPath = errors.New("no access log specified: set --log or inputs.log")

	// ErrNoFeedPath is returned when the threat feed path is empty.
	ErrNoFeedPath = errors.New("no threat feed specified: set --feed or inputs.feed")

	// ErrNoOutputPath is returned when one of the four mandatory report paths is empty.
	ErrNoOutputPath = errors.New("every report (txt, csv, alerts, summary) needs an output path")

	// ErrDuplicateOutputPath is returned when two reports would be written to the same file.
	ErrDuplicateOutputPath = errors.New("two reports share the same output path")

	// ErrOutputOverwritesInput is returned when a report path points at an input file.
	ErrOutputOverwritesInput = errors.New("a report output path points at an input file")

	// ErrNoHistoryDir is returned when history saving is requested without a directory.
	ErrNoHistoryDir = errors.New("history saving enabled but no history directory set")

	// ErrUnknownFeedCharset is returned when the forced feed charset is not a WHATWG encoding label.
	ErrUnknownFeedCharset = errors.New("unknown feed charset")

	// ErrInvalidMarkdownTopURLs is returned when the Markdown 404 table limit is negative.
	ErrInvalidMarkdownTopURLs = errors.New("markdown top URL count must not be negative")
)
