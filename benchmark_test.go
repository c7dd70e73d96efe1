package segcache

import (
	"strconv"
	"testing"
)

func BenchmarkSegmentGet(b *testing.B) {
	c, _ := New(1000)
	s := NewSegment[string, int](c, nil)
	for i := 0; i < 100; i++ {
		_ = s.Put(strconv.Itoa(i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Get("50")
	}
}

func BenchmarkSegmentPutEvict(b *testing.B) {
	c, _ := New(100)
	s := NewSegment[int, int](c, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Put(i, i)
	}
}

func BenchmarkSegmentPutRemove(b *testing.B) {
	c, _ := New(1000)
	s := NewSegment[int, int](c, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Put(i%100, i)
		s.Remove(i % 100)
	}
}

func BenchmarkSharedCacheTwoSegments(b *testing.B) {
	c, _ := New(256)
	paths := NewSegment[int, int](c, nil)
	tables := NewSegment[int, []byte](c, func(_ int, v []byte) int { return len(v) })
	blob := make([]byte, 16)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%4 == 0 {
			_ = tables.Put(i, blob)
		} else {
			_ = paths.Put(i, i)
		}
	}
}

func BenchmarkSegmentGetParallel(b *testing.B) {
	c, _ := New(1000)
	s := NewSegment[int, int](c, nil)
	for i := 0; i < 100; i++ {
		_ = s.Put(i, i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			s.Get(i % 100)
			i++
		}
	})
}
