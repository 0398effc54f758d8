package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/driftcrew/internal/campaign"
	"github.com/roach88/driftcrew/internal/command"
)

// Scenario defines a conformance test scenario.
// Scenarios drive one campaign through a flow of commands and assert on
// the outcomes and the final document.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed seeds the dice generator. Ignored when Dice is set.
	Seed uint64 `yaml:"seed,omitempty"`

	// Dice scripts every roll in order. Each value must fall inside the
	// range of the roll that consumes it.
	Dice []int `yaml:"dice,omitempty"`

	// Setup builds the starting document.
	Setup Setup `yaml:"setup,omitempty"`

	// Flow contains the commands to run, each with an optional expectation.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final document.
	Assertions []Assertion `yaml:"assertions"`
}

// Scripted reports whether the scenario uses scripted dice.
func (s *Scenario) Scripted() bool { return len(s.Dice) > 0 }

// Setup describes the starting document.
type Setup struct {
	// Fixture names a built-in document. Default: document.
	Fixture string `yaml:"fixture,omitempty"`

	// Create builds the campaign through campaign creation instead of a
	// fixture. Creation consumes dice.
	Create *campaign.CreateParams `yaml:"create,omitempty"`

	// Set overrides document values by dotted path (see final_state).
	Set map[string]any `yaml:"set,omitempty"`
}

// Fixture names.
const (
	FixtureDocument = "document"
	FixtureShipless = "shipless"
)

// FlowStep represents a step in the main test flow.
type FlowStep struct {
	// Invoke is the command name (e.g., "trade").
	Invoke string `yaml:"invoke"`

	// Args contains the command arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, only a fatal outcome fails the step.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected command behavior.
type ExpectClause struct {
	// Case is ok, rejected or fatal.
	Case string `yaml:"case"`

	// Reason is the expected precondition reason of a rejected command.
	Reason string `yaml:"reason,omitempty"`

	// Result contains expected result values.
	// Maps match as subsets; everything else must be equal.
	Result any `yaml:"result,omitempty"`
}

// Assertion validates the final document.
type Assertion struct {
	// Type specifies the assertion type:
	// - "final_state": Path resolves to Equals
	// - "log_contains": a log entry has Key
	// - "interrupt": the pending interrupt is Kind
	// - "phase": the campaign is in Phase
	Type string `yaml:"type"`

	// Path is a dotted document path such as campaign.credits or
	// crew.members.0.xp (used by final_state).
	Path string `yaml:"path,omitempty"`

	// Equals is the expected value at Path. Null matches an absent value.
	Equals any `yaml:"equals,omitempty"`

	// Key is the log key (used by log_contains).
	Key string `yaml:"key,omitempty"`

	// Kind is the interrupt kind, or "none" (used by interrupt).
	Kind string `yaml:"kind,omitempty"`

	// Phase is the expected phase (used by phase).
	Phase string `yaml:"phase,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState  = "final_state"
	AssertLogContains = "log_contains"
	AssertInterrupt   = "interrupt"
	AssertPhase       = "phase"
)

// InterruptNone asserts that no interrupt is pending.
const InterruptNone = "none"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.Setup.Fixture {
	case "", FixtureDocument, FixtureShipless:
	default:
		return fmt.Errorf("setup: unknown fixture %q", s.Setup.Fixture)
	}
	if s.Setup.Create != nil && s.Setup.Fixture != "" {
		return fmt.Errorf("setup: fixture and create are mutually exclusive")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if step.Invoke == "" {
			return fmt.Errorf("flow[%d]: invoke is required", i)
		}
		if _, ok := command.Lookup(step.Invoke); !ok {
			return fmt.Errorf("flow[%d]: unknown command %q", i, step.Invoke)
		}
		if step.Expect == nil {
			continue
		}
		switch command.Case(step.Expect.Case) {
		case command.CaseOK, command.CaseRejected, command.CaseFatal:
		case "":
			return fmt.Errorf("flow[%d].expect: case is required", i)
		default:
			return fmt.Errorf("flow[%d].expect: unknown case %q", i, step.Expect.Case)
		}
		if step.Expect.Reason != "" && command.Case(step.Expect.Case) != command.CaseRejected {
			return fmt.Errorf("flow[%d].expect: reason only applies to rejected", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalState:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for final_state", index)
		}
	case AssertLogContains:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for log_contains", index)
		}
	case AssertInterrupt:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for interrupt", index)
		}
	case AssertPhase:
		if a.Phase == "" {
			return fmt.Errorf("assertions[%d]: phase is required for phase", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
