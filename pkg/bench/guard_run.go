package bench

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"

	"github.com/macropower/synckit/pkg/guard"
	"github.com/macropower/synckit/pkg/notify"
)

// sentinel is the guarded object. Its disposer clears live, so any handle
// that still reaches a dead sentinel proves a lifetime violation.
type sentinel struct {
	live atomic.Bool
}

func (r *Runner) runGuard(ctx context.Context, logger *slog.Logger, sc *Scenario) error {
	var (
		promoted  atomic.Int64
		dead      atomic.Int64
		torn      atomic.Int64
		disposals atomic.Int64
		delivered atomic.Int64
	)

	obj := &sentinel{}
	obj.live.Store(true)

	owner := guard.New(obj, guard.WithDisposer(func(s *sentinel) {
		s.live.Store(false)
		disposals.Add(1)
	}))

	weak := owner.Weak()

	// The observer delivers through weak promotion, so publishes stop
	// landing once the sentinel dies and the broadcaster prunes it.
	bus := notify.NewBroadcaster[int]()
	notify.Observe(bus, weak, func(s *sentinel, _ int) {
		if !s.live.Load() {
			torn.Add(1)
		}

		delivered.Add(1)
	})

	logger.Debug("running guard scenario",
		slog.String("scenario", sc.Name),
		slog.Int("promoters", sc.Promoters),
		slog.Int("churns", sc.Churns),
	)

	var (
		churners  sync.WaitGroup
		publisher sync.WaitGroup
	)

	publisher.Add(1)

	go func() {
		defer publisher.Done()

		for seq := 0; ; seq++ {
			if ctx.Err() != nil {
				return
			}

			if bus.Publish(seq) == 0 {
				return
			}
		}
	}()

	for range sc.Promoters {
		churners.Add(1)

		go func() {
			defer churners.Done()

			for range sc.Churns {
				h, ok := weak.Lock()
				if !ok {
					dead.Add(1)

					continue
				}

				if !h.Value().live.Load() {
					torn.Add(1)
				}

				promoted.Add(1)
				h.Release()
			}
		}()
	}

	// Drop the owning handle while promoters churn. Disposal happens on
	// whichever release takes the count to zero.
	owner.Release()

	churners.Wait()
	publisher.Wait()

	logger.Debug("guard scenario settled",
		slog.String("scenario", sc.Name),
		slog.Int64("promoted", promoted.Load()),
		slog.Int64("dead", dead.Load()),
	)

	var merr error

	if n := torn.Load(); n > 0 {
		merr = multierror.Append(merr, fmt.Errorf(
			"%w: %d accesses observed a disposed object", ErrLifetimeViolation, n))
	}

	if n := disposals.Load(); n != 1 {
		merr = multierror.Append(merr, fmt.Errorf(
			"%w: disposer ran %d times", ErrLifetimeViolation, n))
	}

	if h, ok := weak.Lock(); ok {
		h.Release()

		merr = multierror.Append(merr, fmt.Errorf(
			"%w: promotion succeeded after every handle was released", ErrLifetimeViolation))
	}

	r.mergeStats(Stats{
		Promoted:  promoted.Load(),
		Dead:      dead.Load(),
		Delivered: delivered.Load(),
		Disposals: disposals.Load(),
	})

	return merr
}
