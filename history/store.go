// Package history keeps the bounded, in-memory window of accepted readings.
package history

import (
	"sync"

	"github.com/infigaming-com/gold-monitor/rate"
)

// DefaultCapacity holds one day of minutely readings plus the current one.
const DefaultCapacity = 1441

type Option func(*Store)

func WithCapacity(capacity int) Option {
	return func(s *Store) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// Store is a fixed size ring of readings, oldest first. The seen index holds
// exactly the timestamps currently in the ring and is evicted with it, so a
// timestamp that falls out of the window is accepted again.
//
// Store is safe for one writer and any number of readers.
type Store struct {
	mu       sync.RWMutex
	capacity int
	ring     []rate.Reading
	head     int
	size     int
	seen     map[string]struct{}
}

func NewStore(opts ...Option) *Store {
	s := &Store{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.ring = make([]rate.Reading, s.capacity)
	s.seen = make(map[string]struct{}, s.capacity)
	return s
}

// Append adds r as the newest reading, evicting the oldest when full.
// It returns the evicted reading, if any.
func (s *Store) Append(r rate.Reading) (evicted rate.Reading, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.size == s.capacity {
		evicted, ok = s.ring[s.head], true
		delete(s.seen, evicted.UpdatedAt)
		s.ring[s.head] = r
		s.head = (s.head + 1) % s.capacity
	} else {
		s.ring[(s.head+s.size)%s.capacity] = r
		s.size++
	}
	s.seen[r.UpdatedAt] = struct{}{}
	return evicted, ok
}

// Snapshot returns a copy of the window in acceptance order.
func (s *Store) Snapshot() []rate.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]rate.Reading, s.size)
	for i := 0; i < s.size; i++ {
		out[i] = s.ring[(s.head+i)%s.capacity]
	}
	return out
}

func (s *Store) Seen(updatedAt string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[updatedAt]
	return ok
}

// Last returns the newest reading.
func (s *Store) Last() (rate.Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.size == 0 {
		return rate.Reading{}, false
	}
	return s.ring[(s.head+s.size-1)%s.capacity], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

func (s *Store) Cap() int {
	return s.capacity
}
