package syncs

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimedOut indicates that a timed wait elapsed before the condition was
// signaled. It is distinct from a successful wakeup (nil) and from any error
// reported by the guarded state itself.
var ErrTimedOut = errors.New("wait timed out")

// Cond is a condition variable bound to a [sync.Locker] L, which must be held
// when changing the condition and when calling [Cond.Wait],
// [Cond.WaitContext], or [Cond.WaitTimeout].
//
// Unlike [sync.Cond], waits can be bounded by a [context.Context] or a
// timeout. Waiters are woken in FIFO order, and a wakeup consumed by a waiter
// that subsequently gives up is passed on to the next waiter, so a signal is
// never lost to an abandoned wait.
//
// As with [sync.Cond], a woken waiter cannot assume the condition is still
// true once it reacquires L. Callers wait inside a loop that re-checks the
// condition:
//
//	mu.Lock()
//	for !condition() {
//		c.Wait()
//	}
//	// ... use the condition ...
//	mu.Unlock()
//
// A Cond must not be copied after first use.
type Cond struct {
	// L is held while inspecting or changing the condition.
	L sync.Locker

	mu      sync.Mutex
	waiters []chan struct{}
}

// NewCond creates a [Cond] with locker l.
func NewCond(l sync.Locker) *Cond {
	return &Cond{L: l}
}

func (c *Cond) enqueue() chan struct{} {
	ch := make(chan struct{})

	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()

	return ch
}

// abandon removes ch from the wait list. When ch is gone it was already
// signaled, and the wakeup is forwarded so it is not lost on a waiter that
// gave up.
func (c *Cond) abandon(ch chan struct{}) {
	c.mu.Lock()

	for i, w := range c.waiters {
		if w == ch {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			c.mu.Unlock()

			return
		}
	}

	c.mu.Unlock()
	c.Signal()
}

// Wait atomically unlocks L and suspends the calling goroutine until a later
// [Cond.Signal] or [Cond.Broadcast] wakes it, then locks L again before
// returning. The caller must hold L.
func (c *Cond) Wait() {
	ch := c.enqueue()

	c.L.Unlock()
	<-ch
	c.L.Lock()
}

// WaitContext is like [Cond.Wait], but also returns when ctx is done,
// reporting [context.Context.Err]. L is locked again on every return path. A
// nil return means the waiter was woken by a signal.
func (c *Cond) WaitContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ch := c.enqueue()

	c.L.Unlock()

	select {
	case <-ch:
		c.L.Lock()

		return nil
	case <-ctx.Done():
		c.abandon(ch)
		c.L.Lock()

		return ctx.Err()
	}
}

// WaitTimeout is like [Cond.Wait], but gives up after d, reporting
// [ErrTimedOut]. L is locked again on every return path. A nil return means
// the waiter was woken by a signal.
func (c *Cond) WaitTimeout(d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	ch := c.enqueue()

	c.L.Unlock()

	select {
	case <-ch:
		c.L.Lock()

		return nil
	case <-t.C:
		c.abandon(ch)
		c.L.Lock()

		return ErrTimedOut
	}
}

// Signal wakes the longest waiting goroutine, if there is one.
//
// It is allowed but not required for the caller to hold L during the call.
// The condition change itself must happen while L is held, or the woken
// waiter may not observe it.
func (c *Cond) Signal() {
	c.mu.Lock()

	if len(c.waiters) == 0 {
		c.mu.Unlock()

		return
	}

	ch := c.waiters[0]
	c.waiters = c.waiters[1:]
	c.mu.Unlock()

	close(ch)
}

// Broadcast wakes all goroutines waiting on c.
//
// It is allowed but not required for the caller to hold L during the call.
func (c *Cond) Broadcast() {
	c.mu.Lock()
	ws := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, ch := range ws {
		close(ch)
	}
}
