package buffer

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Take once the queue is closed for writing and empty,
// and by Put after CloseWrite.
var ErrClosed = errors.New("buffer: queue closed")

// Queue is an unbounded FIFO. The zero value is not ready for use; construct
// via New or NewWithCapacity.
//
// Put and CloseWrite may be called from any goroutine. Take is designed for a
// single waiter at a time; concurrent Takes are safe but wake order is not
// defined.
type Queue[T any] struct {
	notify chan struct{}

	mu     sync.Mutex
	data   []T
	closed bool
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return NewWithCapacity[T](0)
}

// NewWithCapacity creates an empty queue with preallocated storage.
// The queue still grows beyond capacity as needed.
func NewWithCapacity[T any](capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue[T]{
		notify: make(chan struct{}, 1),
		data:   make([]T, 0, capacity),
	}
}

// Put appends v to the tail and wakes a waiting Take. It never blocks.
func (q *Queue[T]) Put(v T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.data = append(q.data, v)
	q.mu.Unlock()
	q.signal()
	return nil
}

// TryTake removes and returns the head value without blocking.
// ok is false if the queue is empty.
func (q *Queue[T]) TryTake() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dequeue()
}

// Take blocks until an element is available, ctx is done, or the queue is
// closed and drained. On cancellation it returns ctx.Err() and leaves the
// queue untouched.
func (q *Queue[T]) Take(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		q.mu.Lock()
		if v, ok := q.dequeue(); ok {
			more := len(q.data) > 0
			q.mu.Unlock()
			if more {
				// pass the wake-up on to the next waiter
				q.signal()
			}
			return v, nil
		}
		closed := q.closed
		q.mu.Unlock()

		var zero T
		if closed {
			q.signal()
			return zero, ErrClosed
		}
		select {
		case <-q.notify:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Len returns the number of elements currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	n := len(q.data)
	q.mu.Unlock()
	return n
}

// IsEmpty reports whether the queue is empty.
func (q *Queue[T]) IsEmpty() bool { return q.Len() == 0 }

// CloseWrite rejects further Puts. Elements already queued remain available to
// Take; once they are drained Take returns ErrClosed. Calling CloseWrite more
// than once is a no-op.
func (q *Queue[T]) CloseWrite() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

// dequeue must be called with q.mu held.
func (q *Queue[T]) dequeue() (T, bool) {
	var zero T
	if len(q.data) == 0 {
		return zero, false
	}
	v := q.data[0]
	q.data[0] = zero
	q.data = q.data[1:]
	return v, true
}

func (q *Queue[T]) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
