package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/driftcrew/internal/state"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// assertFinalState checks the value at a dotted document path.
func assertFinalState(root any, a Assertion) error {
	want, err := toGeneric(a.Equals)
	if err != nil {
		return fmt.Errorf("final_state %s: %w", a.Path, err)
	}
	got, found := lookupPath(root, a.Path)
	if !found {
		if want == nil {
			return nil
		}
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %v", a.Path, want),
			Actual:   "path not present",
		}
	}
	if !matchValue(want, got) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %v", a.Path, want),
			Actual:   fmt.Sprintf("%s = %v", a.Path, got),
		}
	}
	return nil
}

// assertLogContains checks that a campaign log entry has the key.
func assertLogContains(doc state.Document, a Assertion) error {
	for _, entry := range doc.Campaign.Log {
		if entry.Key == a.Key {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertLogContains,
		Expected: fmt.Sprintf("log entry %s", a.Key),
		Actual:   fmt.Sprintf("not found in %d entries", len(doc.Campaign.Log)),
	}
}

// assertInterrupt checks the pending interrupt kind.
func assertInterrupt(doc state.Document, a Assertion) error {
	got := InterruptNone
	if doc.Campaign.Pending != nil {
		got = string(doc.Campaign.Pending.Kind())
	}
	if got != a.Kind {
		return &AssertionError{
			Type:     AssertInterrupt,
			Expected: a.Kind,
			Actual:   got,
		}
	}
	return nil
}

// assertPhase checks the campaign phase.
func assertPhase(doc state.Document, a Assertion) error {
	if got := string(doc.Campaign.Phase); got != a.Phase {
		return &AssertionError{
			Type:     AssertPhase,
			Expected: a.Phase,
			Actual:   got,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the final document.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(doc state.Document, assertions []Assertion) []string {
	var errors []string

	root, err := toGeneric(doc)
	if err != nil {
		return []string{fmt.Sprintf("render document: %v", err)}
	}

	for i, assertion := range assertions {
		switch assertion.Type {
		case AssertFinalState:
			err = assertFinalState(root, assertion)
		case AssertLogContains:
			err = assertLogContains(doc, assertion)
		case AssertInterrupt:
			err = assertInterrupt(doc, assertion)
		case AssertPhase:
			err = assertPhase(doc, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
