// Package recency provides the recency ordering used by segcache.
//
// List is a circular doubly-linked list whose nodes live in a single arena
// slice and are addressed by integer handles. Node 0 is a sentinel that
// closes the ring, so the head is the sentinel's next node and the tail is
// its previous node. Freed slots are recycled through a free list.
//
// List is not safe for concurrent use; callers must handle synchronization.
package recency

import "iter"

// Handle addresses a node in a List.
type Handle int32

// Sentinel is the reserved handle of the ring boundary. It never carries a
// value and is returned by Front and Back when the list is empty.
const Sentinel Handle = 0

// unlinked marks a node that is not part of the ring.
const unlinked Handle = -1

type node[T any] struct {
	prev  Handle
	next  Handle
	value T
}

// List is a recency-ordered list. The front is the most recently used
// element, the back is the least recently used one.
type List[T any] struct {
	nodes []node[T]
	free  []Handle
	len   int
}

// New creates an empty list.
func New[T any]() *List[T] {
	l := &List[T]{}
	l.Clear()
	return l
}

// Len returns the number of linked elements, excluding the sentinel.
func (l *List[T]) Len() int {
	return l.len
}

// Front returns the most recently used element, or Sentinel if empty.
func (l *List[T]) Front() Handle {
	return l.nodes[Sentinel].next
}

// Back returns the least recently used element, or Sentinel if empty.
func (l *List[T]) Back() Handle {
	return l.nodes[Sentinel].prev
}

// Value returns the value stored at h.
// The zero value is returned for the sentinel and for unlinked handles.
func (l *List[T]) Value(h Handle) T {
	if !l.linked(h) {
		var zero T
		return zero
	}
	return l.nodes[h].value
}

// PushFront links v at the front of the list and returns its handle.
func (l *List[T]) PushFront(v T) Handle {
	var h Handle
	if n := len(l.free); n > 0 {
		h = l.free[n-1]
		l.free = l.free[:n-1]
		l.nodes[h].value = v
	} else {
		h = Handle(len(l.nodes))
		l.nodes = append(l.nodes, node[T]{value: v})
	}
	l.link(h)
	l.len++
	return h
}

// MoveToFront promotes h to the front of the list.
// It is a no-op for the sentinel and for unlinked handles.
func (l *List[T]) MoveToFront(h Handle) {
	if !l.linked(h) || l.nodes[Sentinel].next == h {
		return
	}
	l.unlink(h)
	l.link(h)
}

// Remove unlinks h and releases its slot for reuse.
// Reports false, leaving the list unchanged, when h is the sentinel,
// out of range or already removed.
func (l *List[T]) Remove(h Handle) (T, bool) {
	var zero T
	if !l.linked(h) {
		return zero, false
	}
	l.unlink(h)
	v := l.nodes[h].value
	l.nodes[h].value = zero
	l.free = append(l.free, h)
	l.len--
	return v, true
}

// Clear drops every element by pointing the sentinel back at itself.
// All previously returned handles become invalid.
func (l *List[T]) Clear() {
	if cap(l.nodes) == 0 {
		l.nodes = make([]node[T], 1, 16)
	}
	clear(l.nodes)
	l.nodes = l.nodes[:1]
	l.nodes[Sentinel] = node[T]{prev: Sentinel, next: Sentinel}
	l.free = l.free[:0]
	l.len = 0
}

// All iterates from the most recently used element to the least recently
// used one. The list must not be modified during iteration.
func (l *List[T]) All() iter.Seq2[Handle, T] {
	return func(yield func(Handle, T) bool) {
		for h := l.nodes[Sentinel].next; h != Sentinel; h = l.nodes[h].next {
			if !yield(h, l.nodes[h].value) {
				return
			}
		}
	}
}

func (l *List[T]) linked(h Handle) bool {
	return h > Sentinel && int(h) < len(l.nodes) && l.nodes[h].next != unlinked
}

// link inserts h right after the sentinel.
func (l *List[T]) link(h Handle) {
	first := l.nodes[Sentinel].next
	l.nodes[h].prev = Sentinel
	l.nodes[h].next = first
	l.nodes[first].prev = h
	l.nodes[Sentinel].next = h
}

// unlink detaches h from its neighbours and marks it unlinked.
func (l *List[T]) unlink(h Handle) {
	n := &l.nodes[h]
	l.nodes[n.prev].next = n.next
	l.nodes[n.next].prev = n.prev
	n.prev = unlinked
	n.next = unlinked
}
