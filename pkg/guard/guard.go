package guard

import (
	"sync/atomic"
)

// control is the shared bookkeeping for one guarded object. The reference
// count is the only state mutated after construction; zero is terminal.
type control[T any] struct {
	value    *T
	disposer func(*T)
	refs     atomic.Int64
}

// Option configures a guarded object at construction.
type Option[T any] func(*control[T])

// WithDisposer registers fn to run when the last strong handle is released.
// It runs exactly once, on the goroutine performing the final release.
func WithDisposer[T any](fn func(*T)) Option[T] {
	return func(c *control[T]) {
		c.disposer = fn
	}
}

// New takes ownership of the fully constructed v and returns the initial
// [Strong] handle. It panics if v is nil.
//
// Publish v to other goroutines through [Strong.Clone] and [Strong.Weak]
// handles only after construction is complete; the package offers no way to
// mint a handle earlier.
func New[T any](v *T, opts ...Option[T]) *Strong[T] {
	if v == nil {
		panic("guard: nil value")
	}

	c := &control[T]{value: v}
	for _, opt := range opts {
		opt(c)
	}

	c.refs.Store(1)

	return &Strong[T]{ctrl: c}
}

// Strong is an owning handle: the object outlives every strong handle that
// has not been released. Handles are not reusable; after [Strong.Release] any
// further use of the same handle panics.
type Strong[T any] struct {
	ctrl     *control[T]
	released atomic.Bool
}

func (s *Strong[T]) mustLive() {
	if s.ctrl == nil {
		panic("guard: use of zero Strong handle")
	}

	if s.released.Load() {
		panic("guard: use of released handle")
	}
}

// Value returns the guarded object. The object is valid at least until this
// handle is released.
func (s *Strong[T]) Value() *T {
	s.mustLive()

	return s.ctrl.value
}

// Clone returns an additional strong handle to the same object. It may be
// called concurrently with operations on other handles to the object.
func (s *Strong[T]) Clone() *Strong[T] {
	s.mustLive()
	s.ctrl.refs.Add(1)

	return &Strong[T]{ctrl: s.ctrl}
}

// Weak returns a non-owning handle to the same object.
func (s *Strong[T]) Weak() *Weak[T] {
	s.mustLive()

	return &Weak[T]{ctrl: s.ctrl}
}

// Release gives up this handle's ownership. When it was the last strong
// handle, the disposer runs before Release returns, and every subsequent
// [Weak.Lock] fails. Releasing the same handle twice panics.
func (s *Strong[T]) Release() {
	if s.ctrl == nil {
		panic("guard: use of zero Strong handle")
	}

	if !s.released.CompareAndSwap(false, true) {
		panic("guard: handle released twice")
	}

	if s.ctrl.refs.Add(-1) > 0 {
		return
	}

	if s.ctrl.disposer != nil {
		s.ctrl.disposer(s.ctrl.value)
	}

	s.ctrl.value = nil
}

// Weak is a non-owning handle. It does not keep the object alive; the only
// way to reach the object is a successful [Weak.Lock]. The zero Weak behaves
// as a handle to an already gone object.
type Weak[T any] struct {
	ctrl *control[T]
}

// Lock attempts to promote the weak handle. It either returns a new [Strong]
// handle to the still live object, or reports false once the last strong
// handle has been released. Promotion is all or nothing: the returned handle
// is valid until released, and a false result is never spurious.
func (w *Weak[T]) Lock() (*Strong[T], bool) {
	if w == nil || w.ctrl == nil {
		return nil, false
	}

	// Increment only while the count is nonzero. Zero is terminal, so a
	// plain add could resurrect an object mid disposal.
	for {
		n := w.ctrl.refs.Load()
		if n == 0 {
			return nil, false
		}

		if w.ctrl.refs.CompareAndSwap(n, n+1) {
			return &Strong[T]{ctrl: w.ctrl}, true
		}
	}
}
