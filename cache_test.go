package segcache

import (
	"errors"
	"slices"
	"strconv"
	"sync"
	"testing"
)

// newTestCache creates a cache or fails the test.
func newTestCache(t testing.TB, capacity int) *Cache {
	t.Helper()
	c, err := New(capacity)
	if err != nil {
		t.Fatalf("New(%d) failed: %v", capacity, err)
	}
	return c
}

// recencyOrder returns the resident keys of s from most to least recently
// used, skipping entries owned by other segments.
func recencyOrder[K comparable, V any](s *Segment[K, V]) []K {
	c := s.cache
	c.mu.Lock()
	defer c.mu.Unlock()

	var keys []K
	for _, v := range c.list.All() {
		if e, ok := v.(*entry[K, V]); ok && e.seg == s {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// checkInvariants verifies that size, segment maps and the recency list agree.
func checkInvariants(t *testing.T, c *Cache) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	sum := 0
	n := 0
	for _, v := range c.list.All() {
		w, ok := weightOf(v)
		if !ok {
			t.Fatalf("unexpected list value %T", v)
		}
		sum += w
		n++
	}
	if sum != c.size {
		t.Errorf("size = %d, sum of weights in list = %d", c.size, sum)
	}
	if n != c.list.Len() {
		t.Errorf("list.Len() = %d, iterated %d", c.list.Len(), n)
	}
}

func weightOf(v evictable) (int, bool) {
	switch e := v.(type) {
	case *entry[string, int]:
		return e.weight, true
	case *entry[int, int]:
		return e.weight, true
	case *entry[string, []byte]:
		return e.weight, true
	case *entry[float64, int]:
		return e.weight, true
	}
	return 0, false
}

func TestNew(t *testing.T) {
	c := newTestCache(t, 100)
	if c.Capacity() != 100 {
		t.Errorf("expected capacity 100, got %d", c.Capacity())
	}
	if c.Size() != 0 {
		t.Errorf("expected size 0, got %d", c.Size())
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestNewInvalidCapacity(t *testing.T) {
	tests := []struct {
		capacity int
		wantErr  bool
	}{
		{0, true},
		{-5, true},
		{1, false},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.capacity), func(t *testing.T) {
			c, err := New(tt.capacity)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCapacity) {
					t.Errorf("New(%d) error = %v, want ErrInvalidCapacity", tt.capacity, err)
				}
				if c != nil {
					t.Errorf("New(%d) returned a cache alongside an error", tt.capacity)
				}
				return
			}
			if err != nil {
				t.Errorf("New(%d) error = %v, want nil", tt.capacity, err)
			}
		})
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := newTestCache(t, 3)
	s := NewSegment[string, int](c, nil)

	for i, k := range []string{"a", "b", "c"} {
		if err := s.Put(k, i+1); err != nil {
			t.Fatalf("Put(%q) failed: %v", k, err)
		}
	}
	if c.Size() != 3 {
		t.Errorf("expected size 3, got %d", c.Size())
	}

	if v, ok := s.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v, want 1, true", v, ok)
	}
	if got := recencyOrder(s); !slices.Equal(got, []string{"a", "c", "b"}) {
		t.Errorf("order after Get(a) = %v, want [a c b]", got)
	}

	if err := s.Put("d", 4); err != nil {
		t.Fatalf("Put(d) failed: %v", err)
	}

	if _, ok := s.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if !s.Contains(k) {
			t.Errorf("expected %q to be resident", k)
		}
	}
	if c.Size() != 3 {
		t.Errorf("expected size 3, got %d", c.Size())
	}
	checkInvariants(t, c)
}

func TestSegmentsShareBudget(t *testing.T) {
	c := newTestCache(t, 2)
	s1 := NewSegment[string, int](c, nil)
	s2 := NewSegment[string, int](c, nil)

	if err := s1.Put("k1", 1); err != nil {
		t.Fatal(err)
	}
	if err := s2.Put("k2", 2); err != nil {
		t.Fatal(err)
	}
	if c.Size() != 2 {
		t.Errorf("expected size 2, got %d", c.Size())
	}

	if err := s1.Put("k3", 3); err != nil {
		t.Fatal(err)
	}

	if _, ok := s1.Get("k1"); ok {
		t.Error("expected k1 to be evicted as the oldest entry")
	}
	if v, ok := s2.Get("k2"); !ok || v != 2 {
		t.Errorf("s2.Get(k2) = %d, %v, want 2, true", v, ok)
	}
	if v, ok := s1.Get("k3"); !ok || v != 3 {
		t.Errorf("s1.Get(k3) = %d, %v, want 3, true", v, ok)
	}
	checkInvariants(t, c)
}

func TestEvictionCrossesSegments(t *testing.T) {
	c := newTestCache(t, 4)
	small := NewSegment[string, int](c, nil)
	big := NewSegment[string, []byte](c, func(_ string, b []byte) int { return len(b) })

	for _, k := range []string{"a", "b", "c"} {
		if err := small.Put(k, 0); err != nil {
			t.Fatal(err)
		}
	}
	// Weight 3 forces two unit entries out of the other segment.
	if err := big.Put("blob", make([]byte, 3)); err != nil {
		t.Fatal(err)
	}

	if small.Len() != 1 || !small.Contains("c") {
		t.Errorf("expected only c to survive in small segment, got %v", recencyOrder(small))
	}
	if c.Size() != 4 {
		t.Errorf("expected size 4, got %d", c.Size())
	}
	if small.Weight() != 1 || big.Weight() != 3 {
		t.Errorf("segment weights = %d/%d, want 1/3", small.Weight(), big.Weight())
	}
	checkInvariants(t, c)
}

func TestCacheClear(t *testing.T) {
	c := newTestCache(t, 10)
	s1 := NewSegment[string, int](c, nil)
	s2 := NewSegment[int, int](c, nil)

	_ = s1.Put("a", 1)
	_ = s1.Put("b", 2)
	_ = s2.Put(1, 1)

	c.Clear()

	if c.Size() != 0 {
		t.Errorf("expected size 0 after clear, got %d", c.Size())
	}
	if c.Len() != 0 {
		t.Errorf("expected 0 entries after clear, got %d", c.Len())
	}
	if s1.Len() != 0 || s2.Len() != 0 {
		t.Errorf("expected empty segments after clear, got %d/%d", s1.Len(), s2.Len())
	}
	if _, ok := s1.Get("a"); ok {
		t.Error("expected a to be gone after clear")
	}

	// The cache is fully usable afterwards.
	if err := s1.Put("a", 10); err != nil {
		t.Errorf("Put after clear failed: %v", err)
	}
	if v, ok := s1.Get("a"); !ok || v != 10 {
		t.Errorf("Get(a) = %d, %v, want 10, true", v, ok)
	}
	checkInvariants(t, c)
}

func TestTrimToSize(t *testing.T) {
	c := newTestCache(t, 10)
	s := NewSegment[int, int](c, nil)
	for i := range 10 {
		_ = s.Put(i, i)
	}

	c.TrimToSize(4)
	if c.Size() != 4 {
		t.Errorf("expected size 4, got %d", c.Size())
	}
	// The four most recent survive.
	if got := recencyOrder(s); !slices.Equal(got, []int{9, 8, 7, 6}) {
		t.Errorf("order = %v, want [9 8 7 6]", got)
	}

	c.TrimToSize(0)
	if c.Len() != 0 {
		t.Errorf("expected TrimToSize(0) to empty the cache, got %d entries", c.Len())
	}

	// Empty cache with a negative target must terminate.
	c.TrimToSize(-1)
	checkInvariants(t, c)
}

func TestOversizedEntryIsKept(t *testing.T) {
	c := newTestCache(t, 5)
	small := NewSegment[string, int](c, nil)
	big := NewSegment[string, []byte](c, func(_ string, b []byte) int { return len(b) })

	_ = small.Put("a", 1)
	_ = small.Put("b", 2)

	if err := big.Put("huge", make([]byte, 8)); err != nil {
		t.Fatalf("Put(huge) failed: %v", err)
	}

	if small.Len() != 0 {
		t.Errorf("expected other entries to be evicted, %d remain", small.Len())
	}
	if !big.Contains("huge") {
		t.Error("expected the oversized entry to stay as the sole resident")
	}
	if c.Size() != 8 {
		t.Errorf("expected size 8, got %d", c.Size())
	}

	// The next insertion evicts it.
	_ = small.Put("c", 3)
	if big.Contains("huge") {
		t.Error("expected oversized entry to be evicted by the next Put")
	}
	if c.Size() != 1 {
		t.Errorf("expected size 1, got %d", c.Size())
	}
	checkInvariants(t, c)
}

func TestCacheStats(t *testing.T) {
	c := newTestCache(t, 2)
	s := NewSegment[string, int](c, nil)

	_ = s.Put("a", 1)
	_ = s.Put("b", 2)
	_ = s.Put("c", 3) // evicts a

	s.Get("b")       // hit
	s.Get("c")       // hit
	s.Get("missing") // miss

	stats := c.Stats()
	if stats.Len != 2 {
		t.Errorf("expected Len=2, got %d", stats.Len)
	}
	if stats.Size != 2 || stats.Capacity != 2 {
		t.Errorf("expected Size=2 Capacity=2, got %d/%d", stats.Size, stats.Capacity)
	}
	if stats.Segments != 1 {
		t.Errorf("expected Segments=1, got %d", stats.Segments)
	}
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("expected Hits=2 Misses=1, got %d/%d", stats.Hits, stats.Misses)
	}
	if stats.Insertions != 3 || stats.Evictions != 1 {
		t.Errorf("expected Insertions=3 Evictions=1, got %d/%d", stats.Insertions, stats.Evictions)
	}
	if stats.HitRate < 0.66 || stats.HitRate > 0.67 {
		t.Errorf("expected HitRate ~0.667, got %f", stats.HitRate)
	}

	c.ResetStats()
	stats = c.Stats()
	if stats.Hits != 0 || stats.Misses != 0 || stats.Insertions != 0 || stats.Evictions != 0 {
		t.Errorf("expected all counters to be 0 after reset, got %+v", stats)
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := newTestCache(t, 500)
	segs := []*Segment[int, int]{
		NewSegment[int, int](c, nil),
		NewSegment[int, int](c, func(k, _ int) int { return k%3 + 1 }),
	}
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s := segs[n%len(segs)]
			for j := 0; j < 200; j++ {
				key := n*1000 + j
				_ = s.Put(key, j)
				s.Get(key - 1)
				if j%7 == 0 {
					s.Remove(key - 3)
				}
				if j%50 == 0 {
					c.TrimToSize(c.Capacity() / 2)
				}
			}
		}(i)
	}
	wg.Wait()

	if c.Size() > c.Capacity() {
		t.Errorf("size %d exceeds capacity %d", c.Size(), c.Capacity())
	}
	if c.Len() == 0 {
		t.Error("expected non-empty cache after concurrent operations")
	}
	checkInvariants(t, c)
}
