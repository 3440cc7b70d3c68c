package store

import (
	"sort"
	"sync"

	"github.com/jusunglee/mta-traintimes/internal/models"
)

// Store keeps per-feed hit counts and the probe order derived from them.
// Scores only ever grow and live as long as the process.
type Store struct {
	mu     sync.RWMutex
	scores map[models.FeedID]int
	names  map[models.FeedID]string
	order  []models.FeedID
}

// NewStore creates a store with every feed scored zero, in the given order
func NewStore(feeds []models.FeedID) *Store {
	s := &Store{
		scores: make(map[models.FeedID]int, len(feeds)),
		names:  make(map[models.FeedID]string),
		order:  make([]models.FeedID, 0, len(feeds)),
	}
	for _, f := range feeds {
		if _, ok := s.scores[f]; ok {
			continue
		}
		s.scores[f] = 0
		s.order = append(s.order, f)
	}
	return s
}

// SetName attaches a human readable label to a feed
func (s *Store) SetName(feed models.FeedID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[feed] = name
}

// Order returns the feeds in the order they should be probed
func (s *Store) Order() []models.FeedID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.FeedID, len(s.order))
	copy(result, s.order)
	return result
}

// Record adds hits to the feed scores and re-sorts the probe order.
// Unknown feeds are ignored.
func (s *Store) Record(hits map[models.FeedID]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for feed, n := range hits {
		if _, ok := s.scores[feed]; !ok || n <= 0 {
			continue
		}
		s.scores[feed] += n
	}

	// Stable so feeds with equal scores keep their previous relative order
	sort.SliceStable(s.order, func(i, j int) bool {
		return s.scores[s.order[i]] > s.scores[s.order[j]]
	})
}

// Score returns the hit count of a feed
func (s *Store) Score(feed models.FeedID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores[feed]
}

// Scores returns a snapshot of all feeds in probe order
func (s *Store) Scores() []models.FeedScore {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.FeedScore, len(s.order))
	for i, feed := range s.order {
		result[i] = models.FeedScore{
			Feed:  feed,
			Name:  s.names[feed],
			Score: s.scores[feed],
		}
	}
	return result
}
