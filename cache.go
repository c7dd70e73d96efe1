package segcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/segcache/internal/recency"
)

// evictable is implemented by resident entries so the cache can drop the
// least recently used one without knowing its segment's key and value types.
type evictable interface {
	// evict removes the entry from its segment if it is still resident and
	// reports the weight it released.
	evict() (weight int, ok bool)
}

// registrant is implemented by segments so Clear can empty their maps.
type registrant interface {
	reset()
}

// Cache owns a weighted capacity shared by every Segment created against it.
// All segments share one recency order and one lock: an insertion into any
// segment may evict the least recently used entry of any other segment.
//
// Cache is safe for concurrent use.
// Cache must not be copied after creation (has mutex).
type Cache struct {
	mu       sync.Mutex
	list     *recency.List[evictable]
	segments map[registrant]struct{}
	capacity int
	size     int // sum of resident weights, guarded by mu

	hits       atomic.Uint64
	misses     atomic.Uint64
	insertions atomic.Uint64
	evictions  atomic.Uint64

	opts cacheOptions
}

// New creates a cache holding at most capacity units of weight.
// It returns ErrInvalidCapacity if capacity is not positive.
func New(capacity int, opts ...Option) (*Cache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache{
		list:     recency.New[evictable](),
		segments: make(map[registrant]struct{}),
		capacity: capacity,
		opts:     o,
	}, nil
}

// Capacity returns the maximum aggregate weight of the cache.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Size returns the aggregate weight of all resident entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.size
}

// Len returns the number of resident entries across all segments.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.list.Len()
}

// Clear removes every entry of every segment and resets the size to zero.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := c.list.Len()
	for s := range c.segments {
		s.reset()
	}
	c.list.Clear()
	c.size = 0
	c.mu.Unlock()

	if l := c.debugLogger(); l != nil {
		l.Debug("segcache: cleared", "entries", n)
	}
}

// TrimToSize evicts least recently used entries until the aggregate size
// is at most maxSize or the cache is empty.
//
// Every eviction is its own critical section, so other goroutines can get,
// put and remove between two evictions of a long sweep.
func (c *Cache) TrimToSize(maxSize int) {
	c.trim(maxSize, nil)
}

// trim is TrimToSize that spares keep when keep is the only resident entry.
// Put uses it so a single entry heavier than the capacity stays cached.
func (c *Cache) trim(maxSize int, keep evictable) {
	for {
		c.mu.Lock()
		if c.size <= maxSize {
			c.mu.Unlock()
			return
		}
		tail := c.list.Back()
		if tail == recency.Sentinel {
			c.mu.Unlock()
			return
		}
		victim := c.list.Value(tail)
		if victim == keep && c.list.Len() == 1 {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		if w, ok := victim.evict(); ok {
			c.evictions.Add(1)
			if l := c.debugLogger(); l != nil {
				l.Debug("segcache: evicted entry", "weight", w, "maxSize", maxSize)
			}
		}
	}
}

// Stats returns a snapshot of cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	n, size, segments := c.list.Len(), c.size, len(c.segments)
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:        n,
		Size:       size,
		Capacity:   c.capacity,
		Segments:   segments,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
		Insertions: c.insertions.Load(),
		Evictions:  c.evictions.Load(),
	}
}

// ResetStats resets all statistics counters to zero.
func (c *Cache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.insertions.Store(0)
	c.evictions.Store(0)
}

func (c *Cache) register(s registrant) {
	c.mu.Lock()
	c.segments[s] = struct{}{}
	n := len(c.segments)
	c.mu.Unlock()

	if l := c.debugLogger(); l != nil {
		l.Debug("segcache: segment registered", "segments", n)
	}
}

// unregisterLocked drops s from the segments Clear resets.
// Caller must hold c.mu.
func (c *Cache) unregisterLocked(s registrant) int {
	delete(c.segments, s)
	return len(c.segments)
}

// debugLogger returns the logger for debug records, or nil when debug
// logging is disabled. The nil case allocates nothing, so eviction sweeps
// stay cheap under the default silent logger.
func (c *Cache) debugLogger() *slog.Logger {
	l := c.opts.logger
	if l == nil {
		l = Logger()
	}
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return nil
	}
	if c.opts.name != "" {
		l = l.With("cache", c.opts.name)
	}
	return l
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the number of resident entries across all segments.
	Len int
	// Size is the aggregate weight of resident entries.
	Size int
	// Capacity is the maximum aggregate weight.
	Capacity int
	// Segments is the number of segments registered to the cache.
	Segments int
	// Hits is the number of successful Get calls.
	Hits uint64
	// Misses is the number of Get calls that found nothing.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
	// Insertions is the number of successful Put calls.
	Insertions uint64
	// Evictions is the number of entries removed to honour the capacity.
	Evictions uint64
}
