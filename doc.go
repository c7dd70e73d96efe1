// Package segcache provides a capacity-bounded LRU cache whose budget is
// shared by several independently typed segments.
//
// # Overview
//
// A Cache owns a capacity, expressed in units of weight, a single recency
// order and a single mutex. Segments are typed key/value namespaces created
// against a Cache. Every segment of a cache competes for the same budget:
// inserting into one segment may evict the least recently used entry of
// another.
//
//	c, err := segcache.New(4096)
//	if err != nil {
//	    return err
//	}
//	paths := segcache.NewSegment[glyphKey, *Path](c, func(_ glyphKey, p *Path) int {
//	    return p.Len()
//	})
//	tables := segcache.NewSegment[uint32, []byte](c, func(_ uint32, b []byte) int {
//	    return len(b)/1024 + 1
//	})
//
// Use separate caches when budgets must be independent.
//
// # Semantics
//
// Put is insert-only and returns ErrDuplicateKey for a resident key;
// callers that need to replace a value Remove it first. Get promotes the
// entry to most recently used. Remove is idempotent. Keys must be equal to
// themselves: Put rejects keys holding NaN floats with ErrInvalidKey.
//
// A cache references every segment created against it until the segment is
// closed with Segment.Close.
//
// After a Put returns, the aggregate size is at most the capacity, unless
// the only resident entry is itself heavier than the capacity.
//
// # Thread Safety
//
// Cache and Segment are safe for concurrent use. All segments of a cache
// share its lock. Eviction after a Put takes the lock once per evicted entry
// rather than for the whole sweep, so other goroutines are never blocked for
// longer than one O(1) step.
//
// # Logging
//
// segcache is silent by default. See SetLogger.
package segcache
