// Package ds provides generic, statically sized data structures used by the
// runtime. Nothing in here allocates after construction.
package ds

import "fmt"

// Ring is a fixed-capacity FIFO queue backed by a single slice allocated at
// construction time. It is the building block for actor inboxes and mutex
// wait queues, where the runtime's static-allocation discipline forbids
// growing storage on the hot path.
//
// Ring is not safe for concurrent use; callers own the locking.
type Ring[T any] struct {
	items []T
	head  int
	count int
}

// NewRing creates a ring with room for capacity elements. capacity must be
// positive.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("ds: ring capacity must be positive, got %d", capacity))
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends v to the tail. It reports false when the ring is full; the
// element is not stored in that case.
func (r *Ring[T]) Push(v T) bool {
	if r.count == len(r.items) {
		return false
	}
	r.items[(r.head+r.count)%len(r.items)] = v
	r.count++
	return true
}

// Pop removes and returns the head element. The second return value is false
// when the ring is empty.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	v := r.items[r.head]
	r.items[r.head] = zero
	r.head = (r.head + 1) % len(r.items)
	r.count--
	return v, true
}

// Peek returns the head element without removing it.
func (r *Ring[T]) Peek() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	return r.items[r.head], true
}

// Len returns the number of queued elements.
func (r *Ring[T]) Len() int { return r.count }

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.items) }
