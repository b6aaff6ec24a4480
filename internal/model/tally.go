package model

import "iter"

// StatusTally counts 404 responses per URL.
// Iteration follows the order in which each URL was first counted so the CSV
// report lists URLs in the order they appear in the log.
type StatusTally struct {
	order  []string
	counts map[string]int
}

// NewStatusTally returns an empty tally.
func NewStatusTally() *StatusTally {
	return &StatusTally{counts: make(map[string]int)}
}

// Add increments the count for url by one.
func (t *StatusTally) Add(url string) {
	if _, ok := t.counts[url]; !ok {
		t.order = append(t.order, url)
	}
	t.counts[url]++
}

// Count returns the number of 404s recorded for url.
func (t *StatusTally) Count(url string) int {
	return t.counts[url]
}

// Len returns the number of distinct URLs in the tally.
func (t *StatusTally) Len() int {
	return len(t.order)
}

// Total returns the sum of all counts.
func (t *StatusTally) Total() int {
	total := 0
	for _, c := range t.counts {
		total += c
	}
	return total
}

// All iterates over (url, count) pairs in first-seen order.
func (t *StatusTally) All() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		for _, url := range t.order {
			if !yield(url, t.counts[url]) {
				return
			}
		}
	}
}
