package notify

import (
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/macropower/synckit/pkg/guard"
)

// Broadcaster delivers events of type E to registered observers, in
// registration order, on the publishing goroutine. All methods are safe for
// concurrent use. The zero value is ready to use.
type Broadcaster[E any] struct {
	subs []*subscription[E]
	mu   sync.RWMutex
}

type subscription[E any] struct {
	id string

	// deliver reports false when the observer's receiver is gone and the
	// subscription should be pruned.
	deliver func(E) bool
}

// NewBroadcaster creates a new [Broadcaster].
func NewBroadcaster[E any]() *Broadcaster[E] {
	return &Broadcaster[E]{}
}

// Subscribe registers fn for every published event. The returned id cancels
// the subscription via [Broadcaster.Cancel].
func (b *Broadcaster[E]) Subscribe(fn func(E)) string {
	return b.add(func(e E) bool {
		fn(e)

		return true
	})
}

// Observe registers an observer reached through its weak handle: each
// delivery promotes w, invokes fn with the live receiver and the event, and
// releases the promotion. Once the receiver is gone the subscription is
// pruned on the next publish. The returned id cancels the subscription via
// [Broadcaster.Cancel].
func Observe[T, E any](b *Broadcaster[E], w *guard.Weak[T], fn func(*T, E)) string {
	return b.add(func(e E) bool {
		h, ok := w.Lock()
		if !ok {
			return false
		}
		defer h.Release()

		fn(h.Value(), e)

		return true
	})
}

func (b *Broadcaster[E]) add(deliver func(E) bool) string {
	sub := &subscription[E]{
		id:      uuid.NewString(),
		deliver: deliver,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = append(b.subs, sub)

	return sub.id
}

// Publish delivers e to every current observer and returns the number of
// live deliveries. Observers are invoked outside the registry lock, so they
// may subscribe or cancel freely. A panicking observer is logged and skipped;
// it does not stop delivery to the rest.
func (b *Broadcaster[E]) Publish(e E) int {
	b.mu.RLock()
	subs := make([]*subscription[E], len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	live := 0

	var dead []string

	for _, sub := range subs {
		if b.safeDeliver(sub, e) {
			live++
		} else {
			dead = append(dead, sub.id)
		}
	}

	if len(dead) > 0 {
		b.remove(dead...)
	}

	return live
}

func (b *Broadcaster[E]) safeDeliver(sub *subscription[E], e E) (delivered bool) {
	defer func() {
		if r := recover(); r != nil {
			// The receiver exists but misbehaved; keep the subscription.
			delivered = true

			slog.Error("observer panicked",
				"id", sub.id,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	return sub.deliver(e)
}

// Cancel removes the subscription with the given id, reporting whether it
// was found.
func (b *Broadcaster[E]) Cancel(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = slices.Delete(b.subs, i, i+1)

			return true
		}
	}

	return false
}

func (b *Broadcaster[E]) remove(ids ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = slices.DeleteFunc(b.subs, func(sub *subscription[E]) bool {
		return slices.Contains(ids, sub.id)
	})
}

// Len returns the number of current subscriptions, including guarded
// observers not yet observed to be gone.
func (b *Broadcaster[E]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}
