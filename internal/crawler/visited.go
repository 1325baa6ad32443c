package crawler

import "sync"

// VisitedSet tracks URLs fetched during one collection run. It only grows;
// there is no removal. Safe for concurrent use by the fetch workers.
type VisitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewVisitedSet returns an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// MarkIfNew atomically records url and reports whether it was newly added.
// Callers must not fetch a URL for which this returns false.
func (s *VisitedSet) MarkIfNew(url string) bool {
	if url == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[url]; ok {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Len returns the number of URLs marked so far.
func (s *VisitedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
