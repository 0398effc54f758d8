package events

import (
	"errors"
	"fmt"

	"github.com/roach88/driftcrew/internal/catalog"
	"github.com/roach88/driftcrew/internal/dice"
	"github.com/roach88/driftcrew/internal/ledger"
	"github.com/roach88/driftcrew/internal/mutate"
	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/tables"
)

var (
	ErrUnknownEvent      = errors.New("unknown event")
	ErrUnknownStage      = errors.New("unknown stage")
	ErrUnknownRow        = errors.New("unknown table row")
	ErrChoiceUnavailable = errors.New("choice unavailable")
	ErrSelection         = errors.New("invalid selection")
)

// Context is what a machine may read while it steps.
type Context struct {
	Doc     *state.Document
	Roller  *dice.Roller
	Tables  *tables.Set
	Catalog catalog.Catalog
	Rates   ledger.Rates
	NewID   func(kind string) string
}

// Limits returns the container caps for mutate.Apply.
func (c *Context) Limits() mutate.Limits {
	return mutate.Limits{CrewCap: c.Rates.CrewCap, StashCap: state.ShiplessStashCap}
}

// Result is what a step produced.
type Result struct {
	Effects  mutate.Effects
	Outcomes []state.Outcome
	Resolved bool
}

func (r *Result) log(key string, kv ...any) {
	r.Outcomes = append(r.Outcomes, state.Outcome{Key: key, Params: state.NewParams(kv...)})
}

// Character classes with rules effects.
const (
	ClassPilot = "pilot"
	ClassMedic = "medic"
)

// Choice is a player decision inside a machine.
type Choice string

const (
	ChoiceAvoid      Choice = "avoid"
	ChoiceThrough    Choice = "through"
	ChoiceReroll     Choice = "reroll"
	ChoiceSavvyCheck Choice = "savvy_check"
	ChoiceToggle     Choice = "toggle"
	ChoiceConfirm    Choice = "confirm"
	ChoiceRescue     Choice = "rescue"
	ChoiceIgnore     Choice = "ignore"
	ChoiceRespond    Choice = "respond"
	ChoiceAccept     Choice = "accept"
	ChoiceDecline    Choice = "decline"
	ChoiceContinue   Choice = "continue"
)

// Action is one submitted decision.
type Action struct {
	Choice      Choice         `json:"choice"`
	CharacterID string         `json:"characterId,omitempty"`
	Item        *state.ItemRef `json:"item,omitempty"`
}

func unavailable(choice Choice, stage state.Stage) error {
	return fmt.Errorf("%q at stage %q: %w", choice, stage, ErrChoiceUnavailable)
}

// activeMember returns a crew member able to act, or ErrChoiceUnavailable.
func activeMember(doc *state.Document, id string) (*state.Character, error) {
	m := doc.Crew.Find(id)
	if m == nil {
		return nil, fmt.Errorf("character %q: %w", id, ErrChoiceUnavailable)
	}
	if m.InSickBay() {
		return nil, fmt.Errorf("character %q is in sick bay: %w", id, ErrChoiceUnavailable)
	}
	return m, nil
}

var recruitNames = []string{"Vesh", "Orrin", "Tamsin", "Kell", "Juno", "Mara", "Dax", "Ilsa"}

// NewRecruit builds a fresh crew member. The name is picked from the
// roster size so recruiting never consumes a die.
func NewRecruit(ctx *Context) state.Character {
	return state.Character{
		ID:    ctx.NewID("character"),
		Name:  recruitNames[len(ctx.Doc.Crew.Members)%len(recruitNames)],
		Race:  state.RaceHuman,
		Stats: state.Stats{Reactions: 1, Speed: 4, Combat: 0, Toughness: 3, Savvy: 0, Luck: 0},
	}
}

// NewItem instantiates a catalog definition.
func NewItem(ctx *Context, defID string) (state.Item, error) {
	def, ok := ctx.Catalog.Find(defID)
	if !ok {
		return state.Item{}, fmt.Errorf("catalog item %q: %w", defID, ErrUnknownRow)
	}
	return state.Item{ID: ctx.NewID("item"), DefID: def.ID, Kind: def.Kind}, nil
}

// stashRoom returns how many more items the stash accepts, or -1.
func stashRoom(ctx *Context) int {
	limit := ctx.Rates.StashCapacity(ctx.Doc.Ship)
	if limit < 0 {
		return -1
	}
	return max(limit-len(ctx.Doc.Stash.Items), 0)
}
