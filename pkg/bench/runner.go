package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"

	"github.com/macropower/synckit/pkg/tracing"
)

var (
	// ErrRunFailed aggregates scenario failures for a whole run.
	ErrRunFailed = errors.New("run failed")

	// ErrItemsLost is returned when a queue scenario pops fewer elements
	// than were pushed.
	ErrItemsLost = errors.New("items lost")

	// ErrOrderViolation is returned when a single consumer observes a
	// producer's elements out of sequence.
	ErrOrderViolation = errors.New("order violation")

	// ErrLifetimeViolation is returned when a guard scenario observes a
	// disposed object through a live handle, or a disposer that did not run
	// exactly once.
	ErrLifetimeViolation = errors.New("lifetime violation")
)

// Runner executes the scenarios of a [Suite] and aggregates their counters.
type Runner struct {
	suite *Suite

	stats   Stats
	results []Result

	subs []func(any)
	mu   sync.RWMutex
}

// Stats aggregates counters across all scenarios of a run.
type Stats struct {
	Elapsed   time.Duration
	Scenarios int
	Pushed    int64
	Popped    int64
	Promoted  int64
	Dead      int64
	Delivered int64
	Disposals int64
}

// Result records the outcome of one scenario.
type Result struct {
	Err      error
	Scenario string
	Elapsed  time.Duration
}

// NewRunner validates the suite and returns a [Runner] for it.
func NewRunner(suite *Suite) (*Runner, error) {
	if suite == nil || len(suite.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: no scenarios defined", ErrInvalidSuite)
	}

	var merr error

	for _, sc := range suite.Scenarios {
		if err := sc.Validate(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	if merr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSuite, merr)
	}

	return &Runner{suite: suite}, nil
}

// Subscribe adds a subscriber to the [Runner]. Subscribers receive all events
// broadcast during a run, e.g. [EventRunningScenario]. Note that this is not
// a worker pool; all subscribers receive all events.
func (r *Runner) Subscribe(f func(any)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs = append(r.subs, f)
}

func (r *Runner) broadcastEvent(evt any) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.subs {
		f(evt)
	}
}

// Stats returns the aggregated counters of the last run.
func (r *Runner) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.stats
}

// Results returns the per-scenario outcomes of the last run.
func (r *Runner) Results() []Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.results)
}

// Run executes every scenario of the suite, with scenario concurrency bounded
// by GOMAXPROCS. It returns after all scenarios have settled, aggregating any
// failures into a single error.
func (r *Runner) Run(ctx context.Context) error {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Errorf("failed to generate run id: %w", err)
	}

	logger := slog.With(
		slog.String("cmd", "bench"),
		slog.String("run", id.String()),
	)
	tracer := tracing.NewLoggingTracer(logger)

	if r.suite.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.suite.Timeout.Std())
		defer cancel()
	}

	r.mu.Lock()
	r.stats = Stats{}
	r.results = r.results[:0]
	r.mu.Unlock()

	workerCount := int64(runtime.GOMAXPROCS(0))
	sem := semaphore.NewWeighted(workerCount)

	r.broadcastEvent(EventSetScenarioTotal(len(r.suite.Scenarios)))

	errChan := make(chan error, len(r.suite.Scenarios))

	start := time.Now()

	logger.Info("starting run",
		slog.String("suite", r.suite.Name),
		slog.Int("scenarios", len(r.suite.Scenarios)),
	)

	for _, sc := range r.suite.Scenarios {
		if err := sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("failed to acquire worker: %w", err)
		}

		r.broadcastEvent(EventRunningScenario(sc.Name))

		go func() {
			defer sem.Release(1)

			span := tracer.StartSpan("run_scenario")
			span.SetBaggageItem("scenario", sc.Name)
			span.SetBaggageItem("kind", string(sc.Kind))

			scStart := time.Now()

			err := r.runScenario(ctx, logger, sc)

			span.Finish()

			if err != nil {
				errChan <- fmt.Errorf("scenario %q: %w", sc.Name, err)
			}

			r.recordResult(Result{
				Scenario: sc.Name,
				Err:      err,
				Elapsed:  time.Since(scStart),
			})
			r.broadcastEvent(EventRanScenario{Scenario: sc.Name, Err: err})
		}()
	}

	// In-flight scenarios observe ctx themselves, so the drain waits for them
	// to settle instead of racing the cancellation.
	if err := sem.Acquire(context.Background(), workerCount); err != nil {
		return fmt.Errorf("failed to wait for workers: %w", err)
	}

	close(errChan)

	r.mu.Lock()
	r.stats.Elapsed = time.Since(start)
	r.stats.Scenarios = len(r.suite.Scenarios)
	r.mu.Unlock()

	var merr error

	for err := range errChan {
		merr = multierror.Append(merr, err)
	}

	if merr != nil {
		return fmt.Errorf("%w: %w", ErrRunFailed, merr)
	}

	logger.Info("run complete",
		slog.Duration("elapsed", r.Stats().Elapsed),
	)

	return nil
}

func (r *Runner) runScenario(ctx context.Context, logger *slog.Logger, sc *Scenario) error {
	switch sc.Kind {
	case KindQueue:
		return r.runQueue(ctx, logger, sc)
	case KindGuard:
		return r.runGuard(ctx, logger, sc)
	}

	return fmt.Errorf("%w: unknown kind %q", ErrInvalidScenario, sc.Kind)
}

func (r *Runner) recordResult(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results = append(r.results, res)
}

func (r *Runner) mergeStats(s Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.Pushed += s.Pushed
	r.stats.Popped += s.Popped
	r.stats.Promoted += s.Promoted
	r.stats.Dead += s.Dead
	r.stats.Delivered += s.Delivered
	r.stats.Disposals += s.Disposals
}
