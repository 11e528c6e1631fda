// Package search filters loaded feed items by approximate text match.
package search

import (
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/domain"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/feed"
)

// DefaultThreshold accepts roughly one edit per three query characters.
const DefaultThreshold = 0.3

// Key extracts one searchable field from an item.
type Key[T any] func(T) string

type Options[T any] struct {
	Keys []Key[T]
	// Threshold is the largest normalized edit distance that still matches.
	// Zero means DefaultThreshold.
	Threshold float64
}

// PostKeys searches post content and the author's username.
func PostKeys() []Key[feed.EnrichedPost] {
	return []Key[feed.EnrichedPost]{
		func(p feed.EnrichedPost) string { return p.Content },
		func(p feed.EnrichedPost) string { return p.Username },
	}
}

// LeaderboardKeys searches usernames and wallet addresses.
func LeaderboardKeys() []Key[domain.LeaderboardEntry] {
	return []Key[domain.LeaderboardEntry]{
		func(e domain.LeaderboardEntry) string { return e.Username },
		func(e domain.LeaderboardEntry) string { return e.UserID },
	}
}

// Filter returns the items matching query, in their original order. A
// blank query returns items itself.
func Filter[T any](items []T, query string, opts Options[T]) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, key := range opts.Keys {
			if Score(key(item), q) <= threshold {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Score is 0 for a case-insensitive substring match, otherwise the smallest
// edit distance between query and any slice of field about the query's
// length, divided by the query length. Lower is better.
func Score(field, query string) float64 {
	f := strings.ToLower(field)
	q := strings.ToLower(query)
	if q == "" {
		return 0
	}
	if strings.Contains(f, q) {
		return 0
	}

	fr := []rune(f)
	qr := []rune(q)
	n := len(qr)

	best := n
	if len(fr) <= n+1 {
		best = fuzzy.LevenshteinDistance(f, q)
	}
	for w := max(1, n-1); w <= n+1 && w <= len(fr); w++ {
		for start := 0; start+w <= len(fr); start++ {
			d := fuzzy.LevenshteinDistance(string(fr[start:start+w]), q)
			if d < best {
				best = d
				if best == 0 {
					return 0
				}
			}
		}
	}

	return float64(best) / float64(n)
}

// Searcher keeps the current query and its results over a replaceable
// item list, recomputing on every change.
type Searcher[T any] struct {
	mu      sync.RWMutex
	opts    Options[T]
	items   []T
	query   string
	results []T
}

func NewSearcher[T any](opts Options[T]) *Searcher[T] {
	return &Searcher[T]{opts: opts}
}

func (s *Searcher[T]) SetItems(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.results = Filter(items, s.query, s.opts)
}

func (s *Searcher[T]) SetQuery(query string) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	s.results = Filter(s.items, query, s.opts)
	return s.results
}

func (s *Searcher[T]) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

func (s *Searcher[T]) Results() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results
}
