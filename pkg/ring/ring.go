// Package ring provides a fixed-capacity ring buffer that drops the
// oldest element on overflow. It is used for bounded recent-event
// feeds where only the newest entries matter.
package ring

import "sync"

// Ring is a thread-safe fixed-capacity buffer of T
type Ring[T any] struct {
	mu     sync.RWMutex
	items  []T
	next   int
	filled int
}

// New creates a ring with the given capacity. Capacities below one
// are raised to one.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Append adds an item, evicting the oldest when full
func (r *Ring[T]) Append(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[r.next] = item
	r.next = (r.next + 1) % len(r.items)
	if r.filled < len(r.items) {
		r.filled++
	}
}

// Len returns the number of items currently held
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filled
}

// Cap returns the ring's capacity
func (r *Ring[T]) Cap() int {
	return len(r.items)
}

// Items returns a copy of the contents, oldest first
func (r *Ring[T]) Items() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, 0, r.filled)
	start := 0
	if r.filled == len(r.items) {
		start = r.next
	}
	for i := 0; i < r.filled; i++ {
		out = append(out, r.items[(start+i)%len(r.items)])
	}
	return out
}
