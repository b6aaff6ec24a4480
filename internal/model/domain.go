package model

import "iter"

// DomainSet is the blacklist scraped from the threat feed.
// Adding a string twice is a no-op. Iteration order is insertion order, which
// keeps alert.json stable between runs over the same inputs.
type DomainSet struct {
	order []string
	seen  map[string]struct{}
}

// NewDomainSet returns an empty set.
func NewDomainSet(domains ...string) *DomainSet {
	s := &DomainSet{seen: make(map[string]struct{})}
	for _, d := range domains {
		s.Add(d)
	}
	return s
}

// Add inserts domain and reports whether it was new.
func (s *DomainSet) Add(domain string) bool {
	if _, ok := s.seen[domain]; ok {
		return false
	}
	s.seen[domain] = struct{}{}
	s.order = append(s.order, domain)
	return true
}

// Contains reports whether domain is in the set.
func (s *DomainSet) Contains(domain string) bool {
	_, ok := s.seen[domain]
	return ok
}

// Len returns the number of distinct domains.
func (s *DomainSet) Len() int {
	return len(s.order)
}

// Domains returns a copy of the domains in insertion order.
func (s *DomainSet) Domains() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// All iterates over the domains in insertion order.
func (s *DomainSet) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, d := range s.order {
			if !yield(d) {
				return
			}
		}
	}
}
