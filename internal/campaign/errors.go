package campaign

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/driftcrew/internal/dice"
	"github.com/roach88/driftcrew/internal/events"
	"github.com/roach88/driftcrew/internal/mutate"
)

// GuardResult is the outcome of evaluating a command precondition.
// Reason is an opaque key for the presentation layer.
type GuardResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return &PreconditionError{Reason: r.Reason}
}

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(reason string) GuardResult { return GuardResult{Reason: reason} }

// PreconditionError reports a command that may not run in the current
// state. The document is unchanged.
type PreconditionError struct {
	Command string
	Reason  string
	Err     error
}

func (e *PreconditionError) Error() string {
	var b strings.Builder
	if e.Command != "" {
		b.WriteString(e.Command)
		b.WriteString(": ")
	}
	b.WriteString("precondition unmet: ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// InvariantErrorCode categorizes invariant violations.
type InvariantErrorCode string

const (
	// ErrCodeInterruptConflict means an interrupt was set while another was pending.
	ErrCodeInterruptConflict InvariantErrorCode = "INTERRUPT_CONFLICT"

	// ErrCodeUnknownEvent means an event id has no machine.
	ErrCodeUnknownEvent InvariantErrorCode = "UNKNOWN_EVENT"

	// ErrCodeUnknownStage means a machine reached a stage it does not define.
	ErrCodeUnknownStage InvariantErrorCode = "UNKNOWN_STAGE"

	// ErrCodeRollOutOfRange means a roll fell outside every table range.
	ErrCodeRollOutOfRange InvariantErrorCode = "ROLL_OUT_OF_RANGE"

	// ErrCodeMalformedTable means a table failed construction checks.
	ErrCodeMalformedTable InvariantErrorCode = "MALFORMED_TABLE"

	// ErrCodeUnknownRow means a stored row id no longer resolves.
	ErrCodeUnknownRow InvariantErrorCode = "UNKNOWN_ROW"

	// ErrCodeInvalidTransition means a phase or step change is not in the table.
	ErrCodeInvalidTransition InvariantErrorCode = "INVALID_TRANSITION"

	// ErrCodeInvalidState means a command produced a document failing Validate.
	ErrCodeInvalidState InvariantErrorCode = "INVALID_STATE"
)

// InvariantError is a programming or configuration defect. It is never a
// user-recoverable path.
type InvariantError struct {
	Code    InvariantErrorCode
	Message string
	Details map[string]string
	Err     error
}

func (e *InvariantError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if len(e.Details) == 0 {
		return msg
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + e.Details[k]
	}
	return msg + " (" + strings.Join(parts, ", ") + ")"
}

func (e *InvariantError) Unwrap() error { return e.Err }

// IsPrecondition reports whether err is a *PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// IsInvariant reports whether err is an *InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// InvariantCode returns the code of an *InvariantError in err's chain.
func InvariantCode(err error) (InvariantErrorCode, bool) {
	var ie *InvariantError
	if errors.As(err, &ie) {
		return ie.Code, true
	}
	return "", false
}

// Reason returns the precondition reason key in err's chain.
func Reason(err error) (string, bool) {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Reason, true
	}
	return "", false
}

func newInterruptConflict(pending, next string) *InvariantError {
	return &InvariantError{
		Code:    ErrCodeInterruptConflict,
		Message: "interrupt set while another is pending",
		Details: map[string]string{"pending": pending, "next": next},
	}
}

func newInvalidTransition(from, to string) *InvariantError {
	return &InvariantError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("%s -> %s is not a legal transition", from, to),
		Details: map[string]string{"from": from, "to": to},
	}
}

func preconditionf(reason, format string, args ...any) *PreconditionError {
	return &PreconditionError{Reason: reason, Err: fmt.Errorf(format, args...)}
}

// classify maps errors from the lower packages onto the two public kinds.
func classify(command string, err error) error {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		if pe.Command == "" {
			pe.Command = command
		}
		return err
	}
	var ie *InvariantError
	if errors.As(err, &ie) {
		return err
	}

	precondition := func(reason string) error {
		return &PreconditionError{Command: command, Reason: reason, Err: err}
	}
	invariant := func(code InvariantErrorCode) error {
		return &InvariantError{Code: code, Message: err.Error(), Details: map[string]string{"command": command}, Err: err}
	}

	switch {
	case errors.Is(err, events.ErrChoiceUnavailable):
		return precondition("event.choice_unavailable")
	case errors.Is(err, events.ErrSelection):
		return precondition("event.invalid_selection")
	case errors.Is(err, mutate.ErrInsufficient):
		return precondition("resource.insufficient")
	case errors.Is(err, mutate.ErrCapacity):
		return precondition("capacity.exceeded")
	case errors.Is(err, mutate.ErrNotFound):
		return precondition("target.not_found")
	case errors.Is(err, events.ErrUnknownEvent):
		return invariant(ErrCodeUnknownEvent)
	case errors.Is(err, events.ErrUnknownStage):
		return invariant(ErrCodeUnknownStage)
	case errors.Is(err, events.ErrUnknownRow):
		return invariant(ErrCodeUnknownRow)
	case errors.Is(err, dice.ErrOutOfRange):
		return invariant(ErrCodeRollOutOfRange)
	case errors.Is(err, dice.ErrMalformed):
		return invariant(ErrCodeMalformedTable)
	}
	return fmt.Errorf("%s: %w", command, err)
}
