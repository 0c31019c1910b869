package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/macropower/synckit/pkg/blockq"
)

// item is one queued element, tagged for loss and order accounting.
type item struct {
	producer int
	seq      int
}

func (r *Runner) runQueue(ctx context.Context, logger *slog.Logger, sc *Scenario) error {
	var q *blockq.Queue[item]
	if sc.Capacity > 0 {
		q = blockq.NewBounded[item](sc.Capacity)
	} else {
		q = blockq.New[item]()
	}

	logger.Debug("running queue scenario",
		slog.String("scenario", sc.Name),
		slog.Int("producers", sc.Producers),
		slog.Int("consumers", sc.Consumers),
		slog.Int("items", sc.Items),
	)

	var (
		pushed  atomic.Int64
		popped  atomic.Int64
		pushers sync.WaitGroup
		poppers sync.WaitGroup
	)

	errChan := make(chan error, sc.Producers+sc.Consumers)

	for p := range sc.Producers {
		pushers.Add(1)

		go func() {
			defer pushers.Done()

			for seq := range sc.Items {
				// An unbounded push never waits, so cancellation has to be
				// checked between pushes as well.
				if err := ctx.Err(); err != nil {
					errChan <- fmt.Errorf("push: %w", err)

					return
				}

				if d := sc.PushDelay.Std(); d > 0 {
					time.Sleep(d)
				}

				if err := q.Push(ctx, item{producer: p, seq: seq}); err != nil {
					errChan <- fmt.Errorf("push: %w", err)

					return
				}

				pushed.Add(1)
			}
		}()
	}

	// With multiple consumers the interleaving of pops is unconstrained, so
	// per-producer sequencing is only checked for a single consumer.
	checkOrder := sc.Consumers == 1

	for range sc.Consumers {
		poppers.Add(1)

		go func() {
			defer poppers.Done()

			lastSeq := make(map[int]int, sc.Producers)

			for {
				v, err := q.Pop(ctx)
				if err != nil {
					if !errors.Is(err, blockq.ErrClosed) {
						errChan <- fmt.Errorf("pop: %w", err)
					}

					return
				}

				if d := sc.PopDelay.Std(); d > 0 {
					time.Sleep(d)
				}

				if checkOrder {
					if last, ok := lastSeq[v.producer]; ok && v.seq <= last {
						errChan <- fmt.Errorf("%w: producer %d emitted %d after %d",
							ErrOrderViolation, v.producer, v.seq, last)

						return
					}

					lastSeq[v.producer] = v.seq
				}

				popped.Add(1)
			}
		}()
	}

	// Close once every producer is done, so consumers drain and stop. The
	// error channel is closed only after all workers have exited.
	pushers.Wait()
	q.Close()
	poppers.Wait()
	close(errChan)

	var merr error

	for err := range errChan {
		merr = multierror.Append(merr, err)
	}

	if merr == nil && popped.Load() != pushed.Load() {
		merr = fmt.Errorf("%w: pushed %d, popped %d", ErrItemsLost, pushed.Load(), popped.Load())
	}

	r.mergeStats(Stats{Pushed: pushed.Load(), Popped: popped.Load()})

	return merr
}
