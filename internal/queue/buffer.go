package queue

import "sync"

// Buffer is a FIFO of records guarded by a mutex.
type Buffer[T any] struct {
	mu    sync.Mutex
	items deque[T]
}

// NewBuffer creates a buffer with the given initial capacity.
func NewBuffer[T any](capacity int) *Buffer[T] {
	return &Buffer[T]{items: newDeque[T](capacity)}
}

// Push appends v.
func (b *Buffer[T]) Push(v T) {
	b.mu.Lock()
	b.items.pushBack(v)
	b.mu.Unlock()
}

// Pop removes and returns the oldest item.
func (b *Buffer[T]) Pop() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items.popFront()
}

// Len returns the number of buffered items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items.len()
}

// Clear drops every buffered item and reports how many were dropped.
func (b *Buffer[T]) Clear() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.items.len()
	b.items = newDeque[T](len(b.items.buf))
	return n
}
