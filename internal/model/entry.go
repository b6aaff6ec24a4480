package model

// StatusNotFound is the only status code the tally counts.
const StatusNotFound = "404"

// LogEntry is a single request recovered from an access log line.
// Status is kept as the three-digit string from the log, not an int, so it is
// written back exactly as it was read.
type LogEntry struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}

// String returns the "<url> <status>" form used by the flat report.
func (e LogEntry) String() string {
	return e.URL + " " + e.Status
}

// IsNotFound reports whether the request ended in a 404.
func (e LogEntry) IsNotFound() bool {
	return e.Status == StatusNotFound
}
