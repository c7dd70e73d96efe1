package segcache

import (
	"errors"
	"fmt"

	"github.com/gogpu/segcache/internal/recency"
)

// WeightFunc computes the capacity cost of one entry.
// It must be deterministic and return at least 1.
type WeightFunc[K comparable, V any] func(key K, value V) int

// UnitWeight charges every entry a weight of 1.
func UnitWeight[K comparable, V any](K, V) int {
	return 1
}

// Segment is a typed key/value namespace inside a Cache.
// Segments of the same Cache compete for its capacity and share its lock
// and recency order; each segment keeps its own keys.
//
// Segment is safe for concurrent use.
type Segment[K comparable, V any] struct {
	cache   *Cache
	entries map[K]*entry[K, V] // guarded by cache.mu
	weight  int                // guarded by cache.mu
	closed  bool               // guarded by cache.mu
	weigh   WeightFunc[K, V]
}

// entry is a resident key/value pair and its place in the recency order.
type entry[K comparable, V any] struct {
	seg    *Segment[K, V]
	key    K
	value  V
	weight int
	handle recency.Handle
}

// NewSegment creates a segment backed by c. A nil weigh means UnitWeight.
// It panics if c is nil.
func NewSegment[K comparable, V any](c *Cache, weigh WeightFunc[K, V]) *Segment[K, V] {
	if c == nil {
		panic("segcache: NewSegment called with nil Cache")
	}
	if weigh == nil {
		weigh = UnitWeight[K, V]
	}

	s := &Segment[K, V]{
		cache:   c,
		entries: make(map[K]*entry[K, V]),
		weigh:   weigh,
	}
	c.register(s)
	return s
}

// Cache returns the cache this segment belongs to.
func (s *Segment[K, V]) Cache() *Cache {
	return s.cache
}

// Get retrieves a value by key.
// Returns (value, true) if found, (zero, false) otherwise.
//
// On a hit the entry becomes the most recently used one of the whole cache.
func (s *Segment[K, V]) Get(key K) (V, bool) {
	c := s.cache

	c.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.list.MoveToFront(e.handle)
	value := e.value
	c.mu.Unlock()

	c.hits.Add(1)
	return value, true
}

// Contains reports whether key is resident without promoting it.
func (s *Segment[K, V]) Contains(key K) bool {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	_, ok := s.entries[key]
	return ok
}

// Put inserts a new entry and then evicts least recently used entries,
// from any segment of the cache, until the cache fits its capacity.
//
// Put never overwrites: it returns ErrDuplicateKey if key is resident.
// To replace a value, Remove it first. A key that is not equal to itself
// (a NaN float, or a struct holding one) is rejected with ErrInvalidKey.
//
// A concurrent Put may push the new entry to the back of the recency order
// before this Put's eviction sweep runs, in which case the new entry itself
// can be evicted.
func (s *Segment[K, V]) Put(key K, value V) error {
	if !reflexive(key) {
		return ErrInvalidKey
	}
	w := s.weigh(key, value)
	if w < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWeight, w)
	}

	c := s.cache

	c.mu.Lock()
	if s.closed {
		c.mu.Unlock()
		return ErrSegmentClosed
	}
	if _, ok := s.entries[key]; ok {
		c.mu.Unlock()
		return ErrDuplicateKey
	}
	e := &entry[K, V]{
		seg:    s,
		key:    key,
		value:  value,
		weight: w,
	}
	e.handle = c.list.PushFront(e)
	s.entries[key] = e
	s.weight += w
	c.size += w
	c.mu.Unlock()

	c.insertions.Add(1)
	c.trim(c.capacity, e)
	return nil
}

// GetOrCreate returns the cached value for key, or creates, inserts and
// returns it. create runs without the cache lock held, so two goroutines
// may create the same key concurrently; the first inserted value wins and
// is returned to both when it is still resident.
func (s *Segment[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}

	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}

	if err := s.Put(key, v); err != nil {
		if !errors.Is(err, ErrDuplicateKey) {
			var zero V
			return zero, err
		}
		if cached, ok := s.Get(key); ok {
			return cached, nil
		}
	}
	return v, nil
}

// Remove deletes key from the segment. Removing an absent key is a no-op.
func (s *Segment[K, V]) Remove(key K) {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.removeLocked(e)
	}
}

// RemoveFunc deletes every entry whose key satisfies match and returns how
// many were removed. match is called with the cache lock held and must not
// call back into the cache.
func (s *Segment[K, V]) RemoveFunc(match func(K) bool) int {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	n := 0
	for key, e := range s.entries {
		if match(key) {
			s.removeLocked(e)
			n++
		}
	}
	return n
}

// Purge deletes every entry of this segment. Other segments are untouched.
func (s *Segment[K, V]) Purge() {
	s.RemoveFunc(func(K) bool { return true })
}

// Close removes every entry of the segment and detaches it from its cache,
// so the cache no longer references it. Afterwards Get misses and Put
// returns ErrSegmentClosed. Close is idempotent.
func (s *Segment[K, V]) Close() {
	c := s.cache

	c.mu.Lock()
	if s.closed {
		c.mu.Unlock()
		return
	}
	n := len(s.entries)
	for _, e := range s.entries {
		s.removeLocked(e)
	}
	s.closed = true
	segments := c.unregisterLocked(s)
	c.mu.Unlock()

	if l := c.debugLogger(); l != nil {
		l.Debug("segcache: segment closed", "purged", n, "segments", segments)
	}
}

// Len returns the number of resident entries in this segment.
func (s *Segment[K, V]) Len() int {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	return len(s.entries)
}

// Weight returns the aggregate weight of this segment's resident entries.
func (s *Segment[K, V]) Weight() int {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	return s.weight
}

// removeLocked unlinks e and releases its weight.
// Caller must hold s.cache.mu.
func (s *Segment[K, V]) removeLocked(e *entry[K, V]) {
	c := s.cache
	delete(s.entries, e.key)
	c.list.Remove(e.handle)
	s.weight -= e.weight
	c.size -= e.weight
}

// reset drops every entry without touching the shared list.
// Caller must hold s.cache.mu and clear the list itself.
func (s *Segment[K, V]) reset() {
	s.entries = make(map[K]*entry[K, V])
	s.weight = 0
}

// evict removes e if it is still resident.
// A key removed and re-inserted since e was chosen is left alone.
func (e *entry[K, V]) evict() (int, bool) {
	s := e.seg
	c := s.cache

	c.mu.Lock()
	defer c.mu.Unlock()

	if s.entries[e.key] == e {
		s.removeLocked(e)
		return e.weight, true
	}

	// The map cannot find e, but the list may still hold it. Unlink it so
	// the trim loop never picks the same victim twice.
	if c.list.Value(e.handle) != evictable(e) {
		return 0, false
	}
	c.list.Remove(e.handle)
	s.weight -= e.weight
	c.size -= e.weight
	return e.weight, true
}

// reflexive reports whether key equals itself. Only keys holding NaN
// floats fail.
func reflexive[K comparable](key K) bool {
	return key == key //nolint:staticcheck // NaN check
}
