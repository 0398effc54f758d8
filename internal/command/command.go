package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/driftcrew/internal/campaign"
)

// ErrUnknownCommand means no command has the requested name.
var ErrUnknownCommand = errors.New("unknown command")

// ErrInvalidArgs means the arguments did not decode into the command's
// parameters.
var ErrInvalidArgs = errors.New("invalid arguments")

// Case is the outcome class of one command.
type Case string

const (
	CaseOK       Case = "ok"
	CaseRejected Case = "rejected"
	CaseFatal    Case = "fatal"
)

// Classify maps an Execute error onto its outcome case.
func Classify(err error) Case {
	switch {
	case err == nil:
		return CaseOK
	case campaign.IsInvariant(err):
		return CaseFatal
	case campaign.IsPrecondition(err),
		errors.Is(err, ErrUnknownCommand),
		errors.Is(err, ErrInvalidArgs):
		return CaseRejected
	default:
		return CaseFatal
	}
}

// Spec describes one named command.
type Spec struct {
	Name    string
	Summary string
	// Query commands read the document without changing it.
	Query bool

	run func(e *campaign.Engine, args json.RawMessage) (any, error)
}

// Lookup returns the command spec for name.
func Lookup(name string) (Spec, bool) {
	s, ok := registry[name]
	return s, ok
}

// Names returns every command name in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Specs returns every command spec sorted by name.
func Specs() []Spec {
	names := Names()
	specs := make([]Spec, len(names))
	for i, name := range names {
		specs[i] = registry[name]
	}
	return specs
}

// Execute runs the named command against e. The returned value is the
// command's result, or nil for commands without one.
func Execute(e *campaign.Engine, name string, args json.RawMessage) (any, error) {
	spec, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return spec.run(e, args)
}

// decode unmarshals args strictly into v. Empty args leave v untouched.
func decode(args json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}

// required rejects an empty string argument.
func required(field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidArgs, field)
	}
	return nil
}
