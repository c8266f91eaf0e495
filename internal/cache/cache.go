// Package cache provides the two composable primitives behind every provider
// call: a bounded TTL store and a duplicate-fetch coalescer. Both are keyed by
// spatial grid keys; operations on distinct keys never contend.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Store is a thread-safe, bounded TTL cache. Capacity pressure evicts in LRU
// order; expiry is checked lazily on lookup, never by a background sweeper.
//
// An expired entry is logically absent: Get never returns it. Expired entries
// that carry a validator token are retained (until LRU eviction) so HTTP
// revalidation can reuse the stale body on a 304; expired entries without a
// validator are deleted on the lookup that notices them.
type Store[T any] struct {
	maxEntries int
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*entry[T]
	head    *entry[T] // most recently used
	tail    *entry[T] // least recently used
}

type entry[T any] struct {
	key        string
	value      T
	insertedAt time.Time
	ttl        time.Duration
	validator  string
	prev       *entry[T]
	next       *entry[T]
}

// NewStore creates a Store holding at most maxEntries values. Pass a nil
// clock for real time; tests inject a fake for deterministic expiry.
func NewStore[T any](maxEntries int, clock clockwork.Clock) *Store[T] {
	if maxEntries < 1 {
		maxEntries = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store[T]{
		maxEntries: maxEntries,
		clock:      clock,
		entries:    make(map[string]*entry[T]),
	}
}

// Get returns the fresh value for key, or ok=false if the key is absent or
// its entry has outlived its TTL.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if s.expired(e) {
		if e.validator == "" {
			s.delete(e)
		}
		var zero T
		return zero, false
	}
	s.moveToFront(e)
	return e.value, true
}

// GetStale returns the value for key regardless of freshness. It exists for
// the not-modified path: a 304 response means the stale body is still the
// truth and may be re-stamped via Set.
func (s *Store[T]) GetStale(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Validator returns the validator token stored for key, fresh or not.
// Empty when the key is absent or was stored without one.
func (s *Store[T]) Validator(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		return e.validator
	}
	return ""
}

// Set stores value under key with the given TTL and optional validator,
// replacing any existing entry. Writes are last-writer-wins.
func (s *Store[T]) Set(key string, value T, ttl time.Duration, validator string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.value = value
		e.insertedAt = s.clock.Now()
		e.ttl = ttl
		e.validator = validator
		s.moveToFront(e)
		return
	}

	e := &entry[T]{
		key:        key,
		value:      value,
		insertedAt: s.clock.Now(),
		ttl:        ttl,
		validator:  validator,
	}
	s.entries[key] = e
	s.addToFront(e)

	if len(s.entries) > s.maxEntries {
		s.evictTail()
	}
}

// Len reports the number of entries currently held, expired or not.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store[T]) expired(e *entry[T]) bool {
	return s.clock.Since(e.insertedAt) > e.ttl
}

func (s *Store[T]) moveToFront(e *entry[T]) {
	if e == s.head {
		return
	}
	s.unlink(e)
	s.addToFront(e)
}

func (s *Store[T]) addToFront(e *entry[T]) {
	e.next = s.head
	e.prev = nil
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *Store[T]) unlink(e *entry[T]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
}

func (s *Store[T]) delete(e *entry[T]) {
	delete(s.entries, e.key)
	s.unlink(e)
}

func (s *Store[T]) evictTail() {
	if s.tail == nil {
		return
	}
	s.delete(s.tail)
}
