package campaign

import (
	"encoding"
	"fmt"
	"log/slog"

	"github.com/roach88/driftcrew/internal/catalog"
	"github.com/roach88/driftcrew/internal/dice"
	"github.com/roach88/driftcrew/internal/events"
	"github.com/roach88/driftcrew/internal/ledger"
	"github.com/roach88/driftcrew/internal/mutate"
	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/tables"
)

// Engine owns one campaign document and applies commands to it.
//
// Not safe for concurrent use: commands run to completion one at a time,
// as player intents arrive.
type Engine struct {
	doc     state.Document
	src     dice.Source
	roller  *dice.Roller
	tables  *tables.Set
	catalog catalog.Catalog
	rates   ledger.Rates
	ids     IDGenerator
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRates overrides the economy constants.
func WithRates(r ledger.Rates) Option {
	return func(e *Engine) { e.rates = r }
}

// WithIDs sets the entity id generator. Default: UUIDGenerator.
func WithIDs(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithTables replaces the compiled game tables.
func WithTables(t *tables.Set) Option {
	return func(e *Engine) { e.tables = t }
}

// WithCatalog replaces the item catalog.
func WithCatalog(c catalog.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// New creates an Engine for doc drawing dice from src.
//
// doc is cloned, so the caller's copy is never aliased. Returns an error
// if doc fails state.Document.Validate.
func New(doc state.Document, src dice.Source, opts ...Option) (*Engine, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	own, err := doc.Clone()
	if err != nil {
		return nil, err
	}
	e := &Engine{
		doc:    own,
		src:    src,
		roller: dice.NewRoller(src),
		rates:  ledger.DefaultRates(),
		ids:    UUIDGenerator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tables == nil {
		e.tables = tables.Default()
	}
	if e.catalog == nil {
		e.catalog = catalog.Default()
	}
	return e, nil
}

// Document returns a deep copy of the current document.
func (e *Engine) Document() (state.Document, error) {
	return e.doc.Clone()
}

// Campaign returns the campaign root. Pointer fields are shared with the
// engine and must not be modified.
func (e *Engine) Campaign() state.Campaign { return e.doc.Campaign }

// Pending returns the pending interrupt kind, or "" when none is set.
func (e *Engine) Pending() state.InterruptKind {
	return interruptKind(e.doc.Campaign.Pending)
}

// Source returns the dice source.
func (e *Engine) Source() dice.Source { return e.src }

// Rates returns the economy constants in use.
func (e *Engine) Rates() ledger.Rates { return e.rates }

// Tables returns the game tables in use.
func (e *Engine) Tables() *tables.Set { return e.tables }

// Catalog returns the item catalog in use.
func (e *Engine) Catalog() catalog.Catalog { return e.catalog }

// Restore replaces the document and, when rng is non-nil and the source
// can be rewound, the dice position. It undoes commands whose result could
// not be persisted.
func (e *Engine) Restore(doc state.Document, rng []byte) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("restore: invalid document: %w", err)
	}
	own, err := doc.Clone()
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if rs, ok := e.src.(rngState); ok && rng != nil {
		if err := rs.UnmarshalBinary(rng); err != nil {
			return fmt.Errorf("restore: dice state: %w", err)
		}
	}
	e.doc = own
	return nil
}

func interruptKind(in state.Interrupt) state.InterruptKind {
	if in == nil {
		return ""
	}
	return in.Kind()
}

// rngState is implemented by sources whose position can be rewound.
type rngState interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// tx is one command in flight. It works on a clone of the document.
type tx struct {
	e   *Engine
	doc *state.Document
}

// run executes fn as one atomic command.
//
// A closed guard rejects the command before anything is cloned. Failures
// inside fn discard the clone and rewind the dice source, so a rejected
// command leaves no trace.
func (e *Engine) run(command string, guard GuardResult, fn func(t *tx) error) error {
	log := e.logger.With("command", command)
	if !guard.Allowed {
		log.Debug("command rejected", "reason", guard.Reason)
		return &PreconditionError{Command: command, Reason: guard.Reason}
	}

	doc, err := e.doc.Clone()
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	var mark []byte
	rs, rewindable := e.src.(rngState)
	if rewindable {
		if mark, err = rs.MarshalBinary(); err != nil {
			return fmt.Errorf("%s: save dice state: %w", command, err)
		}
	}
	rewind := func() {
		if rewindable {
			if err := rs.UnmarshalBinary(mark); err != nil {
				log.Error("rewind dice state", "error", err)
			}
		}
	}

	t := &tx{e: e, doc: &doc}
	if err := fn(t); err != nil {
		rewind()
		err = classify(command, err)
		if IsInvariant(err) {
			log.Error("invariant violated", "error", err)
		} else {
			log.Debug("command rejected", "error", err)
		}
		return err
	}
	if err := doc.Validate(); err != nil {
		rewind()
		ierr := &InvariantError{
			Code:    ErrCodeInvalidState,
			Message: err.Error(),
			Details: map[string]string{"command": command},
			Err:     err,
		}
		log.Error("invariant violated", "error", ierr)
		return ierr
	}

	e.doc = doc
	log.Info("command applied",
		"turn", doc.Campaign.Turn,
		"phase", doc.Campaign.Phase,
		"interrupt", interruptKind(doc.Campaign.Pending),
	)
	return nil
}

func (t *tx) campaign() *state.Campaign { return &t.doc.Campaign }

func (t *tx) rates() ledger.Rates { return t.e.rates }

func (t *tx) roller() *dice.Roller { return t.e.roller }

func (t *tx) limits() mutate.Limits {
	return mutate.Limits{CrewCap: t.e.rates.CrewCap, StashCap: state.ShiplessStashCap}
}

func (t *tx) newID(kind string) string {
	c := t.campaign()
	c.Seq++
	return t.e.ids.NewID(c.ID, kind, c.Seq)
}

// events builds the machine context over the clone.
func (t *tx) events() *events.Context {
	return &events.Context{
		Doc:     t.doc,
		Roller:  t.e.roller,
		Tables:  t.e.tables,
		Catalog: t.e.catalog,
		Rates:   t.e.rates,
		NewID:   t.newID,
	}
}

func (t *tx) log(key string, params state.Params) {
	c := t.campaign()
	c.Seq++
	c.Log = append(c.Log, state.LogEntry{Seq: c.Seq, Key: key, Params: params, Turn: c.Turn})
}

func (t *tx) logf(key string, kv ...any) {
	t.log(key, state.NewParams(kv...))
}

// apply commits a machine result and logs its outcomes.
func (t *tx) apply(res events.Result) error {
	if err := mutate.Apply(t.doc, res.Effects, t.limits()); err != nil {
		return err
	}
	for _, o := range res.Outcomes {
		t.log(o.Key, o.Params)
	}
	return nil
}

func (t *tx) effects(eff mutate.Effects) error {
	return mutate.Apply(t.doc, eff, t.limits())
}

// setInterrupt enforces the at-most-one interrupt invariant.
func (t *tx) setInterrupt(in state.Interrupt) error {
	c := t.campaign()
	if c.Pending != nil {
		return newInterruptConflict(string(c.Pending.Kind()), string(in.Kind()))
	}
	c.Pending = in
	t.logf("interrupt.opened", "kind", in.Kind())
	return nil
}

func (t *tx) clearInterrupt() {
	t.campaign().Pending = nil
}

// transition moves the phase along phaseTransitions.
func (t *tx) transition(to state.Phase) error {
	c := t.campaign()
	if !canTransition(c.Phase, to) {
		return newInvalidTransition(string(c.Phase), string(to))
	}
	c.Phase = to
	return nil
}
