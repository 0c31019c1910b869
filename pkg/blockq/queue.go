package blockq

import (
	"context"
	"errors"
	"sync"

	"github.com/macropower/synckit/pkg/syncs"
)

var (
	// ErrClosed indicates that the queue was closed. [Queue.Pop] reports it
	// only after all remaining elements have been drained.
	ErrClosed = errors.New("queue closed")

	// ErrFull indicates that a bounded queue is at capacity.
	ErrFull = errors.New("queue full")
)

// Queue is a FIFO queue for handing values between goroutines. Consumers
// block until an element is available, and producers block while a bounded
// queue is full. All methods are safe for concurrent use.
//
// Elements are delivered in the order their pushes acquired the queue lock.
// Closing stops intake immediately but never discards accepted elements;
// consumers drain the remainder before observing [ErrClosed].
//
// Create instances with [New] or [NewBounded].
type Queue[T any] struct {
	notEmpty *syncs.Cond
	notFull  *syncs.Cond
	items    []T
	capacity int
	mu       sync.Mutex
	closed   bool
}

// New creates an unbounded [Queue].
func New[T any]() *Queue[T] {
	return newQueue[T](0)
}

// NewBounded creates a [Queue] holding at most capacity elements. Pushes
// beyond the bound block until a consumer frees a slot. It panics if capacity
// is less than 1.
func NewBounded[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		panic("blockq: capacity must be at least 1")
	}

	return newQueue[T](capacity)
}

func newQueue[T any](capacity int) *Queue[T] {
	q := &Queue[T]{
		items:    make([]T, 0),
		capacity: capacity,
	}
	q.notEmpty = syncs.NewCond(&q.mu)
	q.notFull = syncs.NewCond(&q.mu)

	return q
}

// Push appends v at the tail, blocking while a bounded queue is full. It
// returns [ErrClosed] without enqueueing when the queue is closed, including
// when closure happens mid wait, and ctx.Err() when ctx ends the wait.
func (q *Queue[T]) Push(ctx context.Context, v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.closed {
			return ErrClosed
		}

		if q.capacity == 0 || len(q.items) < q.capacity {
			break
		}

		if err := q.notFull.WaitContext(ctx); err != nil {
			return err
		}
	}

	q.items = append(q.items, v)
	q.notEmpty.Signal()

	return nil
}

// TryPush appends v at the tail without blocking. It returns [ErrClosed] when
// the queue is closed, or [ErrFull] when a bounded queue is at capacity.
func (q *Queue[T]) TryPush(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	if q.capacity > 0 && len(q.items) >= q.capacity {
		return ErrFull
	}

	q.items = append(q.items, v)
	q.notEmpty.Signal()

	return nil
}

// Pop removes and returns the head element, blocking while the queue is
// empty. It returns [ErrClosed] once the queue is closed and fully drained,
// and ctx.Err() when ctx ends the wait. An available element is always
// returned in preference to either error.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	var zero T

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if q.closed {
			return zero, ErrClosed
		}

		if err := q.notEmpty.WaitContext(ctx); err != nil {
			return zero, err
		}
	}

	return q.popLocked(), nil
}

// TryPop removes and returns the head element without blocking. The second
// result is false when no element is available. Remaining elements stay
// poppable after [Queue.Close].
func (q *Queue[T]) TryPop() (T, bool) {
	var zero T

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return zero, false
	}

	return q.popLocked(), true
}

// Peek returns the head element without removing it. The second result is
// false when the queue is empty.
func (q *Queue[T]) Peek() (T, bool) {
	var zero T

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return zero, false
	}

	return q.items[0], true
}

func (q *Queue[T]) popLocked() T {
	var zero T

	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]

	if q.capacity > 0 {
		q.notFull.Signal()
	}

	return v
}

// Close stops intake. Blocked and future pushes fail with [ErrClosed];
// consumers drain any remaining elements before Pop reports [ErrClosed].
// Close is idempotent and safe to call concurrently with any operation.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// IsClosed reports whether the queue has been closed.
func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.closed
}

// Len returns the number of elements currently queued. The value is a
// snapshot and may be stale as soon as it is returned.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Cap returns the capacity bound, or 0 for an unbounded queue.
func (q *Queue[T]) Cap() int {
	return q.capacity
}
