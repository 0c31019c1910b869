package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/macropower/synckit/pkg/bench"
	"github.com/macropower/synckit/pkg/benchtui"
)

const runExample = `  syncbench run [arguments]...
  # Run the default suite
  syncbench run

  # Run a suite from a file
  syncbench run --config suite.yaml

  # Run without the dashboard
  syncbench run --config suite.yaml --quiet
`

var ErrInvalidArgument = errors.New("invalid argument")

// NewRunCmd returns the run command, which executes a scenario suite.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run a benchmark suite",
		Example: runExample,
		RunE: func(cc *cobra.Command, _ []string) error {
			var merr error

			flags := cc.Flags()
			configPath, err := flags.GetString("config")
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			logLevel, err := flags.GetString("log_level")
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			quiet, err := flags.GetBool("quiet")
			if err != nil {
				merr = multierror.Append(merr, err)
			}

			if merr != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, merr)
			}

			suite := bench.DefaultSuite()
			if configPath != "" {
				suite, err = bench.LoadSuite(configPath)
				if err != nil {
					return fmt.Errorf("failed to load suite: %w", err)
				}
			}

			return runSuite(cc, suite, logLevel, quiet)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringP("config", "c", "", "Suite configuration file (YAML)")
	cmd.Flags().BoolP("quiet", "q", false, "Run in quiet mode")

	return cmd
}

// NewQueueCmd returns the queue command, which runs a single queue scenario.
func NewQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Run a single queue scenario",
		RunE: func(cc *cobra.Command, _ []string) error {
			var merr error

			flags := cc.Flags()
			producers, err := flags.GetInt("producers")
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			consumers, err := flags.GetInt("consumers")
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			items, err := flags.GetInt("items")
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			capacity, err := flags.GetInt("capacity")
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			pushDelay, err := flags.GetDuration("push_delay")
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			popDelay, err := flags.GetDuration("pop_delay")
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			timeout, err := flags.GetDuration("timeout")
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			logLevel, err := flags.GetString("log_level")
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			quiet, err := flags.GetBool("quiet")
			if err != nil {
				merr = multierror.Append(merr, err)
			}

			if merr != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, merr)
			}

			suite := &bench.Suite{
				Name: "queue",
				Scenarios: []*bench.Scenario{{
					Name:      "queue",
					Kind:      bench.KindQueue,
					Producers: producers,
					Consumers: consumers,
					Items:     items,
					Capacity:  capacity,
					PushDelay: bench.Duration(pushDelay),
					PopDelay:  bench.Duration(popDelay),
				}},
				Timeout: bench.Duration(timeout),
			}

			return runSuite(cc, suite, logLevel, quiet)
		},
		SilenceUsage: true,
	}
	cmd.Flags().IntP("producers", "p", 4, "Producer goroutines")
	cmd.Flags().IntP("consumers", "C", 4, "Consumer goroutines")
	cmd.Flags().IntP("items", "n", 100000, "Items pushed per producer")
	cmd.Flags().Int("capacity", 0, "Queue capacity (0 for unbounded)")
	cmd.Flags().Duration("push_delay", 0, "Delay before each push")
	cmd.Flags().Duration("pop_delay", 0, "Delay after each pop")
	cmd.Flags().Duration("timeout", 5*time.Minute, "Timeout for the command")
	cmd.Flags().BoolP("quiet", "q", false, "Run in quiet mode")

	return cmd
}

// NewGuardCmd returns the guard command, which runs a single guard stress.
func NewGuardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guard",
		Short: "Run a single guard stress",
		RunE: func(cc *cobra.Command, _ []string) error {
			var merr error

			flags := cc.Flags()
			promoters, err := flags.GetInt("promoters")
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			churns, err := flags.GetInt("churns")
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			timeout, err := flags.GetDuration("timeout")
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			logLevel, err := flags.GetString("log_level")
			if err != nil {
				merr = multierror.Append(merr, err)
			}
			quiet, err := flags.GetBool("quiet")
			if err != nil {
				merr = multierror.Append(merr, err)
			}

			if merr != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, merr)
			}

			suite := &bench.Suite{
				Name: "guard",
				Scenarios: []*bench.Scenario{{
					Name:      "guard",
					Kind:      bench.KindGuard,
					Promoters: promoters,
					Churns:    churns,
				}},
				Timeout: bench.Duration(timeout),
			}

			return runSuite(cc, suite, logLevel, quiet)
		},
		SilenceUsage: true,
	}
	cmd.Flags().IntP("promoters", "p", 8, "Promoter goroutines")
	cmd.Flags().IntP("churns", "n", 100000, "Promotion attempts per goroutine")
	cmd.Flags().Duration("timeout", 5*time.Minute, "Timeout for the command")
	cmd.Flags().BoolP("quiet", "q", false, "Run in quiet mode")

	return cmd
}

// NewSchemaCmd returns the schema command, which prints the JSON schema for
// suite configuration files.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the suite configuration schema",
		RunE: func(cc *cobra.Command, _ []string) error {
			b, err := bench.SuiteSchema()
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}

			cc.Println(string(b))

			return nil
		},
		SilenceUsage: true,
	}
}

func runSuite(cc *cobra.Command, suite *bench.Suite, logLevel string, quiet bool) error {
	r, err := bench.NewRunner(suite)
	if err != nil {
		return fmt.Errorf("invalid suite: %w", err)
	}

	if quiet || !isatty.IsTerminal(os.Stdout.Fd()) {
		if err := r.Run(cc.Context()); err != nil {
			return fmt.Errorf("run failed: %w", err)
		}

		printSummary(cc, r.Stats())

		return nil
	}

	ct, err := benchtui.NewBenchTUI(os.Stdout, logLevel, r)
	if err != nil {
		return fmt.Errorf("failed to create tui: %w", err)
	}

	if err := ct.Run(cc.Context()); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	return nil
}

func printSummary(cc *cobra.Command, stats bench.Stats) {
	w := cc.OutOrStdout()
	p := message.NewPrinter(language.English)

	_, _ = p.Fprintf(w, "Ran %d scenarios in %v.\n", stats.Scenarios, stats.Elapsed.Round(time.Millisecond))

	if stats.Pushed > 0 || stats.Popped > 0 {
		_, _ = p.Fprintf(w, "Queue: %d pushed, %d popped.\n", stats.Pushed, stats.Popped)
	}

	if stats.Promoted > 0 || stats.Dead > 0 {
		_, _ = p.Fprintf(w, "Guard: %d promoted, %d dead, %d delivered, %d disposals.\n",
			stats.Promoted, stats.Dead, stats.Delivered, stats.Disposals)
	}
}
