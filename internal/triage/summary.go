package triage

import (
	"cmp"
	"slices"

	"github.com/nao1215/logtriage/internal/model"
)

// Summarize builds the run summary.
// TotalRequests is the sum of the 404 tally, i.e. the number of requests that
// ended in a 404, not the number of log lines.
func Summarize(tally *model.StatusTally, alerts []model.AlertRecord) *model.Summary {
	s := &model.Summary{TotalAlerts: len(alerts)}
	if tally != nil {
		s.TotalRequests = tally.Total()
		s.Total404URLs = tally.Len()
	}
	return s
}

// StatusCount is the number of requests that ended with one status code.
type StatusCount struct {
	Status string
	Count  int
}

// StatusBreakdown counts entries per status code, ordered by status.
func StatusBreakdown(entries []model.LogEntry) []StatusCount {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Status]++
	}

	out := make([]StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, StatusCount{Status: status, Count: n})
	}
	slices.SortFunc(out, func(a, b StatusCount) int {
		return cmp.Compare(a.Status, b.Status)
	})
	return out
}

// URLCount is a URL with its 404 count.
type URLCount struct {
	URL   string
	Count int
}

// TopNotFound returns up to n URLs with the most 404s, highest first.
// Ties keep the order in which the URLs first appeared in the log.
func TopNotFound(tally *model.StatusTally, n int) []URLCount {
	if tally == nil || n <= 0 {
		return []URLCount{}
	}

	out := make([]URLCount, 0, tally.Len())
	for url, c := range tally.All() {
		out = append(out, URLCount{URL: url, Count: c})
	}
	slices.SortStableFunc(out, func(a, b URLCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// AlertsByDomain counts alerts per blacklist domain in first-hit order.
func AlertsByDomain(alerts []model.AlertRecord) []URLCount {
	index := make(map[string]int)
	out := make([]URLCount, 0)
	for _, a := range alerts {
		i, ok := index[a.BlacklistDomain]
		if !ok {
			i = len(out)
			index[a.BlacklistDomain] = i
			out = append(out, URLCount{URL: a.BlacklistDomain})
		}
		out[i].Count++
	}
	return out
}
