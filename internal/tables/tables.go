// Package tables loads the game's roll-range tables.
//
// Tables are declared in CUE so their row schemas and per-type required
// fields are checked by constraint evaluation, then each table is compiled
// into a dice.Table which re-checks ordering, gaps and overlaps.
package tables

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/driftcrew/internal/dice"
)

//go:embed tables.cue
var defaultSource []byte

// Purchase table names.
const (
	PurchaseGear     = "gear"
	PurchaseMilitary = "military"
	PurchaseGadget   = "gadget"
)

// Set is every table the engine rolls on.
type Set struct {
	Trade          *dice.Table[TradeRow]
	Travel         *dice.Table[TravelRow]
	Injury         *dice.Table[InjuryRow]
	CharacterEvent *dice.Table[EventRow]
	CampaignEvent  *dice.Table[EventRow]
	Purchase       map[string]*dice.Table[PurchaseRow]
	EscapePod      *dice.Table[EscapePodRow]
	Patrol         *dice.Table[PatrolRow]
}

// LoadError reports a CUE evaluation or table compilation failure.
type LoadError struct {
	Table   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Table, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// Default returns the bundled tables. Panics if they fail to load.
func Default() *Set {
	s, err := Load(defaultSource, "tables.cue")
	if err != nil {
		panic(fmt.Sprintf("tables: embedded tables: %v", err))
	}
	return s
}

// Source returns the bundled CUE source.
func Source() []byte {
	return append([]byte(nil), defaultSource...)
}

// LoadFile reads tables from a CUE file.
func LoadFile(path string) (*Set, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables: %w", err)
	}
	return Load(src, path)
}

// Load evaluates CUE source and compiles every table.
func Load(src []byte, filename string) (*Set, error) {
	ctx := cuecontext.New()
	root := ctx.CompileBytes(src, cue.Filename(filename))
	if err := root.Err(); err != nil {
		return nil, formatCUEError("source", err)
	}
	if err := root.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError("source", err)
	}

	var (
		s   Set
		err error
	)
	if s.Trade, err = compile[TradeRow](root, "trade"); err != nil {
		return nil, err
	}
	if s.Travel, err = compile[TravelRow](root, "travel"); err != nil {
		return nil, err
	}
	if s.Injury, err = compile[InjuryRow](root, "injury"); err != nil {
		return nil, err
	}
	if s.CharacterEvent, err = compile[EventRow](root, "character_event"); err != nil {
		return nil, err
	}
	if s.CampaignEvent, err = compile[EventRow](root, "campaign_event"); err != nil {
		return nil, err
	}
	if s.EscapePod, err = compile[EscapePodRow](root, "escape_pod"); err != nil {
		return nil, err
	}
	if s.Patrol, err = compile[PatrolRow](root, "patrol"); err != nil {
		return nil, err
	}
	s.Purchase = make(map[string]*dice.Table[PurchaseRow], 3)
	for _, name := range []string{PurchaseGear, PurchaseMilitary, PurchaseGadget} {
		t, err := compile[PurchaseRow](root, name)
		if err != nil {
			return nil, err
		}
		s.Purchase[name] = t
	}
	return &s, nil
}

func compile[T any](root cue.Value, name string) (*dice.Table[T], error) {
	v := root.LookupPath(cue.ParsePath(name))
	if !v.Exists() {
		return nil, &LoadError{Table: name, Message: "table is missing"}
	}
	die, err := v.LookupPath(cue.ParsePath("die")).Int64()
	if err != nil {
		return nil, formatCUEError(name, err)
	}
	iter, err := v.LookupPath(cue.ParsePath("rows")).List()
	if err != nil {
		return nil, formatCUEError(name, err)
	}

	var entries []dice.Entry[T]
	for iter.Next() {
		el := iter.Value()
		var bounds struct {
			Low  int `json:"low"`
			High int `json:"high"`
		}
		if err := el.Decode(&bounds); err != nil {
			return nil, formatCUEError(name, err)
		}
		var row T
		if err := el.Decode(&row); err != nil {
			return nil, formatCUEError(name, err)
		}
		entries = append(entries, dice.Entry[T]{Low: bounds.Low, High: bounds.High, Row: row})
	}

	t, err := dice.NewTable(name, 1, int(die), entries)
	if err != nil {
		return nil, &LoadError{Table: name, Message: err.Error(), Pos: v.Pos()}
	}
	return t, nil
}

// formatCUEError keeps the first error and its source position.
func formatCUEError(table string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Table: table, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Table: table, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

// TradeByID finds a trade row by id.
func (s *Set) TradeByID(id string) (TradeRow, bool) {
	return findRow(s.Trade, func(r TradeRow) bool { return r.ID == id })
}

// InjuryByID finds an injury row by id.
func (s *Set) InjuryByID(id string) (InjuryRow, bool) {
	return findRow(s.Injury, func(r InjuryRow) bool { return r.ID == id })
}

// CharacterEventByID finds a character event row by id.
func (s *Set) CharacterEventByID(id string) (EventRow, bool) {
	return findRow(s.CharacterEvent, func(r EventRow) bool { return r.ID == id })
}

func findRow[T any](t *dice.Table[T], match func(T) bool) (T, bool) {
	for _, e := range t.Entries() {
		if match(e.Row) {
			return e.Row, true
		}
	}
	var zero T
	return zero, false
}
