package bench

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrInvalidSuite    = errors.New("invalid suite")
)

// Kind selects the primitive a [Scenario] exercises.
type Kind string

const (
	// KindQueue runs producers and consumers over a [blockq.Queue].
	KindQueue Kind = "queue"

	// KindGuard churns [guard.Weak] promotions against a releasing owner.
	KindGuard Kind = "guard"
)

// Duration is a [time.Duration] that unmarshals from YAML strings such as
// "100ms" or "2s".
type Duration time.Duration

// UnmarshalYAML implements [yaml.Unmarshaler].
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(v)

	return nil
}

// Std returns d as a [time.Duration].
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Scenario describes one load pattern.
type Scenario struct {
	// Name identifies the scenario in events, logs, and results.
	Name string `json:"name" yaml:"name" jsonschema:"description=The scenario name used in events and results."`

	// Kind selects the primitive under load.
	Kind Kind `json:"kind,omitempty" yaml:"kind" jsonschema:"enum=queue,enum=guard,description=The primitive under load. Defaults to queue."`

	// Producers and Consumers set the goroutine counts for queue scenarios.
	Producers int `json:"producers,omitempty" yaml:"producers" jsonschema:"description=The number of producer goroutines for queue scenarios."`
	Consumers int `json:"consumers,omitempty" yaml:"consumers" jsonschema:"description=The number of consumer goroutines for queue scenarios."`

	// Items is the number of elements each producer pushes.
	Items int `json:"items,omitempty" yaml:"items" jsonschema:"description=The number of elements each producer pushes."`

	// Capacity bounds the queue; 0 leaves it unbounded.
	Capacity int `json:"capacity,omitempty" yaml:"capacity" jsonschema:"description=The queue capacity bound. Zero leaves the queue unbounded."`

	// Promoters and Churns set the goroutine count and per-goroutine
	// promotion attempts for guard scenarios.
	Promoters int `json:"promoters,omitempty" yaml:"promoters" jsonschema:"description=The number of promoter goroutines for guard scenarios."`
	Churns    int `json:"churns,omitempty" yaml:"churns" jsonschema:"description=The number of promotion attempts per promoter."`

	// PushDelay and PopDelay insert artificial work per operation.
	PushDelay Duration `json:"push_delay,omitempty" yaml:"push_delay" jsonschema:"description=The delay inserted before each push."`
	PopDelay  Duration `json:"pop_delay,omitempty" yaml:"pop_delay" jsonschema:"description=The work time simulated after each pop."`
}

// Suite is a named collection of scenarios run together.
type Suite struct {
	Name      string      `json:"name,omitempty" yaml:"name" jsonschema:"description=The suite name."`
	Scenarios []*Scenario `json:"scenarios" yaml:"scenarios" jsonschema:"description=The scenarios to run."`

	// Timeout bounds the whole run.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout" jsonschema:"description=The time bound for the whole run. Defaults to 5m."`
}

func (s *Scenario) applyDefaults() {
	if s.Kind == "" {
		s.Kind = KindQueue
	}

	switch s.Kind {
	case KindQueue:
		if s.Producers == 0 {
			s.Producers = 1
		}

		if s.Consumers == 0 {
			s.Consumers = 1
		}

		if s.Items == 0 {
			s.Items = 1000
		}
	case KindGuard:
		if s.Promoters == 0 {
			s.Promoters = 4
		}

		if s.Churns == 0 {
			s.Churns = 1000
		}
	}
}

// Validate reports every problem with the scenario, not only the first.
func (s *Scenario) Validate() error {
	var merr error

	if s.Name == "" {
		merr = multierror.Append(merr, errors.New("name is required"))
	}

	switch s.Kind {
	case KindQueue:
		if s.Producers < 1 {
			merr = multierror.Append(merr, errors.New("producers must be at least 1"))
		}

		if s.Consumers < 1 {
			merr = multierror.Append(merr, errors.New("consumers must be at least 1"))
		}

		if s.Items < 1 {
			merr = multierror.Append(merr, errors.New("items must be at least 1"))
		}

		if s.Capacity < 0 {
			merr = multierror.Append(merr, errors.New("capacity must not be negative"))
		}
	case KindGuard:
		if s.Promoters < 1 {
			merr = multierror.Append(merr, errors.New("promoters must be at least 1"))
		}

		if s.Churns < 1 {
			merr = multierror.Append(merr, errors.New("churns must be at least 1"))
		}
	default:
		merr = multierror.Append(merr, fmt.Errorf("unknown kind %q", s.Kind))
	}

	if merr != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidScenario, s.Name, merr)
	}

	return nil
}

// DefaultSuite returns a small smoke suite exercising both primitives.
func DefaultSuite() *Suite {
	s := &Suite{
		Name: "default",
		Scenarios: []*Scenario{
			{Name: "handoff", Kind: KindQueue, Producers: 4, Consumers: 4, Items: 1000, Capacity: 64},
			{Name: "ordered", Kind: KindQueue, Producers: 4, Consumers: 1, Items: 1000, Capacity: 8},
			{Name: "churn", Kind: KindGuard, Promoters: 8, Churns: 10000},
		},
		Timeout: Duration(5 * time.Minute),
	}

	for _, sc := range s.Scenarios {
		sc.applyDefaults()
	}

	return s
}

// LoadSuite reads and validates a suite from a YAML file. Unknown fields are
// rejected, and absent scenario fields take their defaults.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	suite := &Suite{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(suite); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSuite, err)
	}

	if suite.Name == "" {
		suite.Name = "unnamed"
	}

	if suite.Timeout <= 0 {
		suite.Timeout = Duration(5 * time.Minute)
	}

	if len(suite.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: no scenarios defined", ErrInvalidSuite)
	}

	var merr error

	for _, sc := range suite.Scenarios {
		sc.applyDefaults()

		if err := sc.Validate(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	if merr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSuite, merr)
	}

	return suite, nil
}
