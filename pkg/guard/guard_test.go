package guard_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/synckit/pkg/guard"
)

func TestStrongValue(t *testing.T) {
	t.Parallel()

	v := 42
	h := guard.New(&v)

	assert.Same(t, &v, h.Value())

	h.Release()
}

func TestDisposerRunsOnFinalRelease(t *testing.T) {
	t.Parallel()

	var disposed []int

	v := 7
	h := guard.New(&v, guard.WithDisposer(func(p *int) {
		disposed = append(disposed, *p)
	}))

	assert.Empty(t, disposed)

	h.Release()

	assert.Equal(t, []int{7}, disposed)
}

func TestCloneDefersDisposal(t *testing.T) {
	t.Parallel()

	var disposals int

	v := 1
	h := guard.New(&v, guard.WithDisposer(func(*int) {
		disposals++
	}))

	clone := h.Clone()

	h.Release()
	assert.Equal(t, 0, disposals, "object must stay alive while a clone holds it")

	assert.Equal(t, 1, *clone.Value())

	clone.Release()
	assert.Equal(t, 1, disposals)
}

func TestDisposerExactlyOnce(t *testing.T) {
	t.Parallel()

	var disposals atomic.Int32

	v := 0
	h := guard.New(&v, guard.WithDisposer(func(*int) {
		disposals.Add(1)
	}))

	const clones = 16

	handles := make([]*guard.Strong[int], 0, clones)
	for range clones {
		handles = append(handles, h.Clone())
	}

	var wg sync.WaitGroup
	wg.Add(clones + 1)

	go func() {
		defer wg.Done()
		h.Release()
	}()

	for _, c := range handles {
		go func() {
			defer wg.Done()
			c.Release()
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), disposals.Load())
}

func TestWeakLock(t *testing.T) {
	t.Parallel()

	v := "alive"
	h := guard.New(&v)
	w := h.Weak()

	sh, ok := w.Lock()
	require.True(t, ok)
	assert.Equal(t, "alive", *sh.Value())
	sh.Release()

	h.Release()

	_, ok = w.Lock()
	assert.False(t, ok, "promotion must fail once the object is gone")
}

func TestWeakLockKeepsObjectAlive(t *testing.T) {
	t.Parallel()

	var disposals int

	v := 9
	h := guard.New(&v, guard.WithDisposer(func(*int) {
		disposals++
	}))

	w := h.Weak()

	sh, ok := w.Lock()
	require.True(t, ok)

	h.Release()
	assert.Equal(t, 0, disposals, "a promoted handle must keep the object alive")
	assert.Equal(t, 9, *sh.Value())

	sh.Release()
	assert.Equal(t, 1, disposals)

	_, ok = w.Lock()
	assert.False(t, ok)
}

func TestWeakSurvivesOriginHandle(t *testing.T) {
	t.Parallel()

	// A weak handle tracks the object, not the strong handle it was minted
	// from.
	v := 3
	h := guard.New(&v)
	w := h.Weak()

	clone := h.Clone()
	h.Release()

	sh, ok := w.Lock()
	require.True(t, ok)
	assert.Equal(t, 3, *sh.Value())

	sh.Release()
	clone.Release()

	_, ok = w.Lock()
	assert.False(t, ok)
}

func TestZeroWeakLockFails(t *testing.T) {
	t.Parallel()

	var w guard.Weak[int]

	_, ok := w.Lock()
	assert.False(t, ok)
}

func TestContractViolationsPanic(t *testing.T) {
	t.Parallel()

	tcs := map[string]func(){
		"nil value": func() {
			guard.New[int](nil)
		},
		"double release": func() {
			v := 0
			h := guard.New(&v)
			h.Release()
			h.Release()
		},
		"value after release": func() {
			v := 0
			h := guard.New(&v)
			h.Release()
			h.Value()
		},
		"clone after release": func() {
			v := 0
			h := guard.New(&v)
			h.Release()
			h.Clone()
		},
		"weak after release": func() {
			v := 0
			h := guard.New(&v)
			h.Release()
			h.Weak()
		},
		"zero strong handle": func() {
			var h guard.Strong[int]

			h.Value()
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Panics(t, tc)
		})
	}
}

func TestLifetimeAtomicity(t *testing.T) {
	t.Parallel()

	type sentinel struct {
		canary atomic.Bool
	}

	// Promoters race the owner's final release; a successful promotion must
	// always observe the object before its disposer has run.
	for range 50 {
		s := &sentinel{}
		s.canary.Store(true)

		var disposals atomic.Int32

		h := guard.New(s, guard.WithDisposer(func(v *sentinel) {
			v.canary.Store(false)
			disposals.Add(1)
		}))

		w := h.Weak()

		var (
			torn atomic.Int32
			dead atomic.Int32
		)

		const promoters = 4

		var wg sync.WaitGroup
		wg.Add(promoters)

		for range promoters {
			go func() {
				defer wg.Done()

				for range 500 {
					sh, ok := w.Lock()
					if !ok {
						dead.Add(1)

						continue
					}

					if !sh.Value().canary.Load() {
						torn.Add(1)
					}

					sh.Release()
				}
			}()
		}

		h.Release()
		wg.Wait()

		require.Zero(t, torn.Load(), "a promoted handle observed a destroyed object")
		require.Equal(t, int32(1), disposals.Load())

		_, ok := w.Lock()
		require.False(t, ok)
	}
}

func TestPublishedObjectIsComplete(t *testing.T) {
	t.Parallel()

	type widget struct {
		a, b int
	}

	// Handles exist only after construction finished, so observers can never
	// see a partially initialized object.
	wdg := &widget{a: 1}
	wdg.b = 2

	h := guard.New(wdg)
	w := h.Weak()

	const observers = 4

	var (
		wg         sync.WaitGroup
		incomplete atomic.Int32
	)

	wg.Add(observers)

	for range observers {
		go func() {
			defer wg.Done()

			for range 100 {
				sh, ok := w.Lock()
				if !ok {
					return
				}

				if v := sh.Value(); v.a != 1 || v.b != 2 {
					incomplete.Add(1)
				}

				sh.Release()
			}
		}()
	}

	wg.Wait()
	h.Release()

	assert.Zero(t, incomplete.Load())
}
