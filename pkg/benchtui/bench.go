package benchtui

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/synckit/pkg/bench"
	"github.com/macropower/synckit/pkg/log"
)

// SuiteRunner is the engine driven by the dashboard.
type SuiteRunner interface {
	Run(ctx context.Context) error
	Subscribe(f func(any))
}

// BenchTUI renders a [SuiteRunner]'s events as a terminal dashboard. It is
// also an io.Writer, routing log records into the running program so they do
// not corrupt its frames.
type BenchTUI struct {
	runner SuiteRunner
	p      *tea.Program
	w      io.Writer
}

// NewBenchTUI creates a [BenchTUI] driving runner, rendering to w. Slog
// output is redirected into the dashboard for the lifetime of the process.
func NewBenchTUI(w io.Writer, logLevel string, runner SuiteRunner) (*BenchTUI, error) {
	c := &BenchTUI{
		runner: runner,
		w:      w,
	}

	c.runner.Subscribe(c.broadcastEvent)

	h, err := log.CreateHandler(c, logLevel, log.FormatText)
	if err != nil {
		return nil, fmt.Errorf("failed to create log handler: %w", err)
	}

	slog.SetDefault(slog.New(h))

	return c, nil
}

func (c *BenchTUI) broadcastEvent(evt any) {
	if c.p != nil {
		c.p.Send(evt)
	}
}

func (c *BenchTUI) Write(p []byte) (int, error) {
	c.broadcastEvent(teaMsgWriteLog(string(p)))

	return len(p), nil
}

// Subscribe adds a subscriber to the underlying runner.
func (c *BenchTUI) Subscribe(f func(any)) {
	c.runner.Subscribe(f)
}

// Run executes the suite under the dashboard, returning the run's error once
// the program exits.
func (c *BenchTUI) Run(ctx context.Context) error {
	c.p = tea.NewProgram(NewRunModel(), tea.WithOutput(c.w))

	errChan := make(chan error, 1)

	go func() {
		err := c.runner.Run(ctx)
		errChan <- err
		c.broadcastEvent(bench.EventDone{Err: err})
	}()

	if _, err := c.p.Run(); err != nil {
		return fmt.Errorf("failed to launch tui: %w", err)
	}

	// A keyboard quit can end the dashboard before the run settles; there is
	// no run error to report in that case.
	select {
	case err := <-errChan:
		return err
	default:
		return nil
	}
}
