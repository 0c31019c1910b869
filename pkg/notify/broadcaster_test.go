package notify_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/synckit/pkg/guard"
	"github.com/macropower/synckit/pkg/notify"
)

func TestSubscribeAndPublish(t *testing.T) {
	t.Parallel()

	b := notify.NewBroadcaster[int]()

	var got []int

	b.Subscribe(func(e int) {
		got = append(got, e)
	})

	assert.Equal(t, 1, b.Publish(1))
	assert.Equal(t, 1, b.Publish(2))
	assert.Equal(t, []int{1, 2}, got)
}

func TestPublishInRegistrationOrder(t *testing.T) {
	t.Parallel()

	b := notify.NewBroadcaster[string]()

	var order []string

	for _, name := range []string{"first", "second", "third"} {
		b.Subscribe(func(string) {
			order = append(order, name)
		})
	}

	live := b.Publish("ping")

	assert.Equal(t, 3, live)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestObserveDeliversToLiveReceiver(t *testing.T) {
	t.Parallel()

	type counter struct {
		n int
	}

	c := &counter{}
	h := guard.New(c)

	b := notify.NewBroadcaster[int]()
	notify.Observe(b, h.Weak(), func(v *counter, e int) {
		v.n += e
	})

	assert.Equal(t, 1, b.Publish(2))
	assert.Equal(t, 1, b.Publish(3))
	assert.Equal(t, 5, c.n)

	h.Release()

	// The receiver is gone: no delivery, and the subscription is pruned.
	assert.Equal(t, 0, b.Publish(4))
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 5, c.n)
}

func TestDeliveryKeepsReceiverAlive(t *testing.T) {
	t.Parallel()

	type receiver struct {
		canary atomic.Bool
	}

	r := &receiver{}
	r.canary.Store(true)

	var disposed atomic.Bool

	h := guard.New(r, guard.WithDisposer(func(v *receiver) {
		v.canary.Store(false)
		disposed.Store(true)
	}))

	b := notify.NewBroadcaster[string]()

	entered := make(chan struct{})
	proceed := make(chan struct{})

	notify.Observe(b, h.Weak(), func(v *receiver, _ string) {
		close(entered)
		<-proceed

		if !v.canary.Load() {
			t.Error("receiver was destroyed while a delivery was in flight")
		}
	})

	published := make(chan int, 1)

	go func() {
		published <- b.Publish("ping")
	}()

	// Release the owning handle while the delivery is blocked; the promotion
	// held by the broadcaster must keep the receiver alive.
	<-entered
	h.Release()
	assert.False(t, disposed.Load())

	close(proceed)

	assert.Equal(t, 1, <-published)
	assert.True(t, disposed.Load(), "disposal should follow the end of the delivery")
}

func TestCancel(t *testing.T) {
	t.Parallel()

	b := notify.NewBroadcaster[int]()

	var calls int

	id := b.Subscribe(func(int) {
		calls++
	})

	assert.Equal(t, 1, b.Publish(1))
	require.True(t, b.Cancel(id))
	assert.False(t, b.Cancel(id))

	assert.Equal(t, 0, b.Publish(2))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, b.Len())
}

func TestPanickingObserverDoesNotStopDelivery(t *testing.T) {
	t.Parallel()

	b := notify.NewBroadcaster[int]()

	b.Subscribe(func(int) {
		panic("misbehaving observer")
	})

	var got int

	b.Subscribe(func(e int) {
		got = e
	})

	live := b.Publish(7)

	assert.Equal(t, 2, live)
	assert.Equal(t, 7, got)
	assert.Equal(t, 2, b.Len(), "a panicking observer is not pruned")
}

func TestMixedSubscribers(t *testing.T) {
	t.Parallel()

	type receiver struct {
		events int
	}

	r := &receiver{}
	h := guard.New(r)

	b := notify.NewBroadcaster[int]()

	plain := 0

	b.Subscribe(func(int) {
		plain++
	})
	notify.Observe(b, h.Weak(), func(v *receiver, _ int) {
		v.events++
	})

	assert.Equal(t, 2, b.Publish(1))

	h.Release()

	assert.Equal(t, 1, b.Publish(2))
	assert.Equal(t, 2, plain)
	assert.Equal(t, 1, r.events)
	assert.Equal(t, 1, b.Len())
}

func TestConcurrentPublishAndRelease(t *testing.T) {
	t.Parallel()

	type receiver struct {
		canary atomic.Bool
	}

	for range 20 {
		r := &receiver{}
		r.canary.Store(true)

		var disposals atomic.Int32

		h := guard.New(r, guard.WithDisposer(func(v *receiver) {
			v.canary.Store(false)
			disposals.Add(1)
		}))

		b := notify.NewBroadcaster[int]()

		var torn atomic.Int32

		notify.Observe(b, h.Weak(), func(v *receiver, _ int) {
			if !v.canary.Load() {
				torn.Add(1)
			}
		})

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()

			for i := 0; ; i++ {
				if b.Publish(i) == 0 {
					return
				}
			}
		}()

		go func() {
			defer wg.Done()
			h.Release()
		}()

		wg.Wait()

		require.Zero(t, torn.Load(), "delivery to a destroyed receiver")
		require.Equal(t, int32(1), disposals.Load())
		require.Equal(t, 0, b.Len())
	}
}
