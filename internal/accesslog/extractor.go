package accesslog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/nao1215/logtriage/internal/model"
)

// requestPattern captures the request path and the status that follows the
// closing quote. Matching is unanchored so leading fields may vary.
var requestPattern = regexp.MustCompile(`"[A-Z]+ (.*?) HTTP.*?" (\d{3})`)

// maxLineSize bounds a single log line. Longer lines are read to their end,
// counted in Result.LongLinesSkipped and otherwise ignored.
const maxLineSize = 1024 * 1024

// Result is the outcome of extracting one access log.
type Result struct {
	// Entries holds one element per matching line, in file order.
	Entries []model.LogEntry

	// Tally counts 404 responses per URL.
	Tally *model.StatusTally

	// LinesRead is the total number of lines scanned.
	LinesRead int

	// LongLinesSkipped counts lines dropped for exceeding maxLineSize.
	LongLinesSkipped int
}

// ParseLine extracts the request path and status from a single line.
// ok is false when the line does not contain a recognisable request.
func ParseLine(line string) (entry model.LogEntry, ok bool) {
	m := requestPattern.FindStringSubmatch(line)
	if m == nil {
		return model.LogEntry{}, false
	}
	return model.LogEntry{URL: m[1], Status: m[2]}, true
}

// Extract reads r line by line and collects every recognised request.
// A line longer than maxLineSize never fails the read; it is skipped like
// any other line without a request.
func Extract(r io.Reader) (*Result, error) {
	result := &Result{
		Entries: make([]model.LogEntry, 0),
		Tally:   model.NewStatusTally(),
	}

	reader := bufio.NewReaderSize(r, 64*1024)
	line := make([]byte, 0, 4096)
	tooLong := false
	for {
		fragment, isPrefix, err := reader.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read access log at line %d: %w", result.LinesRead+1, err)
		}

		if !tooLong {
			if len(line)+len(fragment) > maxLineSize {
				tooLong = true
				line = line[:0]
			} else {
				line = append(line, fragment...)
			}
		}
		if isPrefix {
			continue
		}

		result.LinesRead++
		if tooLong {
			result.LongLinesSkipped++
			tooLong = false
			continue
		}
		result.add(string(line))
		line = line[:0]
	}

	return result, nil
}

func (r *Result) add(line string) {
	entry, ok := ParseLine(line)
	if !ok {
		return
	}
	r.Entries = append(r.Entries, entry)
	if entry.IsNotFound() {
		r.Tally.Add(entry.URL)
	}
}

// ExtractFile opens path and extracts it. A missing file is an error.
func ExtractFile(path string) (*Result, error) {
	f, err := os.Open(path) //nolint:gosec // Path comes from the operator's configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open access log: %w", err)
	}
	defer f.Close()

	return Extract(f)
}
