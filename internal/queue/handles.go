package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Poll once the pool has been closed.
var ErrClosed = errors.New("queue: closed")

// HandlePool is a deque of parked items with a blocking, timed poll.
// Pushes never block. Poll waits until an item is available, the timeout
// elapses, the context is cancelled or the pool is closed.
type HandlePool[T any] struct {
	mu     sync.Mutex
	items  deque[T]
	closed bool

	// ready carries at most one pending wake-up. A consumer that takes an
	// item while more remain passes the wake-up on.
	ready chan struct{}
	done  chan struct{}
}

// NewHandlePool creates an empty pool.
func NewHandlePool[T any]() *HandlePool[T] {
	return &HandlePool[T]{
		items: newDeque[T](8),
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// PushFront parks v at the front of the pool, so it is the next item polled.
// It returns false if the pool is closed; the caller keeps ownership of v.
func (p *HandlePool[T]) PushFront(v T) bool {
	return p.push(v, true)
}

// PushBack parks v at the back of the pool.
// It returns false if the pool is closed; the caller keeps ownership of v.
func (p *HandlePool[T]) PushBack(v T) bool {
	return p.push(v, false)
}

func (p *HandlePool[T]) push(v T, front bool) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	if front {
		p.items.pushFront(v)
	} else {
		p.items.pushBack(v)
	}
	p.mu.Unlock()
	p.signal()
	return true
}

func (p *HandlePool[T]) signal() {
	select {
	case p.ready <- struct{}{}:
	default:
	}
}

// TryPop removes the front item without waiting.
func (p *HandlePool[T]) TryPop() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.items.popFront()
	if ok && p.items.len() > 0 {
		p.signal()
	}
	return v, ok
}

// Poll removes the front item, waiting up to timeout for one to be pushed.
// It returns false with a nil error when the timeout elapses first. A
// cancelled context yields the context's error and a closed pool ErrClosed.
// A non-positive timeout does not wait.
func (p *HandlePool[T]) Poll(ctx context.Context, timeout time.Duration) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if v, ok := p.TryPop(); ok {
		return v, true, nil
	}
	if p.isClosed() {
		return zero, false, ErrClosed
	}
	if timeout <= 0 {
		return zero, false, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return zero, false, ctx.Err()
		case <-p.done:
			return zero, false, ErrClosed
		case <-p.ready:
			if v, ok := p.TryPop(); ok {
				return v, true, nil
			}
		case <-timer.C:
			v, ok := p.TryPop()
			return v, ok, nil
		}
	}
}

// Len returns the number of parked items.
func (p *HandlePool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items.len()
}

// Close closes the pool and returns the items that were still parked.
// Waiting pollers return ErrClosed and later pushes are refused.
// Closing an already closed pool returns nil.
func (p *HandlePool[T]) Close() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)
	return p.items.drain()
}

func (p *HandlePool[T]) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
