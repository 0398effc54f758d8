// Package mutate applies resolved effects to a campaign document.
//
// Apply validates the complete effect set against the document before
// touching it: either every change lands or none does. Failures are
// precondition failures (ErrInsufficient, ErrCapacity, ErrNotFound), never
// invariant violations.
package mutate

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/driftcrew/internal/state"
)

var (
	// ErrInsufficient means a resource would go negative.
	ErrInsufficient = errors.New("insufficient")
	// ErrCapacity means a container limit would be exceeded.
	ErrCapacity = errors.New("over capacity")
	// ErrNotFound means a referenced character or item does not exist.
	ErrNotFound = errors.New("not found")
)

// Limits are the container caps enforced while applying effects.
type Limits struct {
	CrewCap  int
	StashCap int // applies only without a ship
}

// XPGrant changes one character's experience.
type XPGrant struct {
	CharacterID string
	Amount      int
}

// InjuryGrant adds an injury to a character.
type InjuryGrant struct {
	CharacterID string
	Injury      state.Injury
}

// StatDelta changes one stat, floored at zero.
type StatDelta struct {
	CharacterID string
	Stat        state.Stat
	Delta       int
}

// Effects is a compound change across campaign, crew, ship and stash.
// Resource fields are deltas.
type Effects struct {
	Credits     int
	StoryPoints int
	FuelCredits int
	Rumors      int
	Debt        int
	Parts       int

	// ClampCredits floors credits at zero instead of rejecting a debit.
	ClampCredits bool

	HullDamage int
	HullRepair int
	RemoveShip bool

	// Interdiction holds the crew on the current world for that many turns.
	Interdiction int

	AddItems    []state.Item
	RemoveItems []state.ItemRef

	XP         []XPGrant
	Injuries   []InjuryGrant
	Stats      []StatDelta
	AddCrew    []state.Character
	RemoveCrew []string
}

// Apply validates eff against doc and then applies it.
func Apply(doc *state.Document, eff Effects, lim Limits) error {
	if err := Check(doc, eff, lim); err != nil {
		return err
	}
	c := &doc.Campaign
	c.Credits += eff.Credits
	if c.Credits < 0 {
		c.Credits = 0
	}
	c.StoryPoints += eff.StoryPoints
	c.FuelCredits += eff.FuelCredits
	c.Rumors += eff.Rumors
	c.Debt = max(c.Debt+eff.Debt, 0)
	doc.Stash.Parts += eff.Parts

	if s := doc.Ship; s != nil {
		s.Hull = min(max(s.Hull-eff.HullDamage+eff.HullRepair, 0), s.MaxHull)
	}
	if eff.RemoveShip {
		doc.Ship = nil
	}
	if w := c.CurrentWorld; w != nil && eff.Interdiction > 0 {
		w.InterdictionTurnsRemaining = max(w.InterdictionTurnsRemaining, eff.Interdiction)
	}

	for _, ref := range eff.RemoveItems {
		removeItem(doc, ref)
	}
	doc.Stash.Items = append(doc.Stash.Items, eff.AddItems...)

	for _, g := range eff.XP {
		m := doc.Crew.Find(g.CharacterID)
		m.XP += g.Amount
	}
	for _, g := range eff.Injuries {
		m := doc.Crew.Find(g.CharacterID)
		m.Injuries = append(m.Injuries, g.Injury)
	}
	for _, d := range eff.Stats {
		m := doc.Crew.Find(d.CharacterID)
		m.Stats.Set(d.Stat, max(m.Stats.Get(d.Stat)+d.Delta, 0))
	}
	if len(eff.RemoveCrew) > 0 {
		doc.Crew.Members = slices.DeleteFunc(doc.Crew.Members, func(m state.Character) bool {
			return slices.Contains(eff.RemoveCrew, m.ID)
		})
	}
	doc.Crew.Members = append(doc.Crew.Members, eff.AddCrew...)
	return nil
}

// Check reports whether Apply would succeed without changing doc.
func Check(doc *state.Document, eff Effects, lim Limits) error {
	c := doc.Campaign
	if c.Credits+eff.Credits < 0 && !eff.ClampCredits {
		return fmt.Errorf("credits: have %d, need %d: %w", c.Credits, -eff.Credits, ErrInsufficient)
	}
	if c.StoryPoints+eff.StoryPoints < 0 {
		return fmt.Errorf("story points: have %d, need %d: %w", c.StoryPoints, -eff.StoryPoints, ErrInsufficient)
	}
	if c.FuelCredits+eff.FuelCredits < 0 {
		return fmt.Errorf("fuel: have %d, need %d: %w", c.FuelCredits, -eff.FuelCredits, ErrInsufficient)
	}
	if c.Rumors+eff.Rumors < 0 {
		return fmt.Errorf("rumors: have %d, need %d: %w", c.Rumors, -eff.Rumors, ErrInsufficient)
	}
	if doc.Stash.Parts+eff.Parts < 0 {
		return fmt.Errorf("parts: have %d, need %d: %w", doc.Stash.Parts, -eff.Parts, ErrInsufficient)
	}
	if (eff.HullDamage > 0 || eff.HullRepair > 0 || eff.RemoveShip) && doc.Ship == nil {
		return fmt.Errorf("ship: %w", ErrNotFound)
	}
	if eff.Interdiction > 0 && c.CurrentWorld == nil {
		return fmt.Errorf("current world: %w", ErrNotFound)
	}

	seen := make(map[state.ItemRef]bool, len(eff.RemoveItems))
	stashRemoved := 0
	for _, ref := range eff.RemoveItems {
		if seen[ref] {
			return fmt.Errorf("item %s/%s removed twice: %w", ref.Owner, ref.ItemID, ErrNotFound)
		}
		seen[ref] = true
		if _, ok := doc.LookupItem(ref); !ok {
			return fmt.Errorf("item %s/%s: %w", ref.Owner, ref.ItemID, ErrNotFound)
		}
		if ref.Owner == state.StashOwner {
			stashRemoved++
		}
	}
	if (doc.Ship == nil || eff.RemoveShip) && len(eff.AddItems) > 0 {
		if n := len(doc.Stash.Items) - stashRemoved + len(eff.AddItems); n > lim.StashCap {
			return fmt.Errorf("stash: %d items exceeds %d: %w", n, lim.StashCap, ErrCapacity)
		}
	}

	xp := make(map[string]int)
	for _, g := range eff.XP {
		m := doc.Crew.Find(g.CharacterID)
		if m == nil {
			return fmt.Errorf("character %s: %w", g.CharacterID, ErrNotFound)
		}
		xp[g.CharacterID] += g.Amount
		if m.XP+xp[g.CharacterID] < 0 {
			return fmt.Errorf("xp for %s: have %d: %w", m.ID, m.XP, ErrInsufficient)
		}
	}
	for _, g := range eff.Injuries {
		if doc.Crew.Find(g.CharacterID) == nil {
			return fmt.Errorf("character %s: %w", g.CharacterID, ErrNotFound)
		}
	}
	for _, d := range eff.Stats {
		if doc.Crew.Find(d.CharacterID) == nil {
			return fmt.Errorf("character %s: %w", d.CharacterID, ErrNotFound)
		}
	}
	for _, id := range eff.RemoveCrew {
		if doc.Crew.Find(id) == nil {
			return fmt.Errorf("character %s: %w", id, ErrNotFound)
		}
	}
	if n := len(doc.Crew.Members) - len(eff.RemoveCrew) + len(eff.AddCrew); len(eff.AddCrew) > 0 && n > lim.CrewCap {
		return fmt.Errorf("crew: %d members exceeds %d: %w", n, lim.CrewCap, ErrCapacity)
	}
	return nil
}

func removeItem(doc *state.Document, ref state.ItemRef) {
	match := func(it state.Item) bool { return it.ID == ref.ItemID }
	if ref.Owner == state.StashOwner {
		doc.Stash.Items = compact(slices.DeleteFunc(doc.Stash.Items, match))
		return
	}
	m := doc.Crew.Find(ref.Owner)
	for _, kind := range slotKinds {
		slot := m.Equipment.Slot(kind)
		*slot = compact(slices.DeleteFunc(*slot, match))
	}
}

// compact keeps empty collections nil so documents compare equal after a
// save and load.
func compact(items []state.Item) []state.Item {
	if len(items) == 0 {
		return nil
	}
	return items
}

var slotKinds = []state.ItemKind{
	state.KindWeapon, state.KindArmor, state.KindScreen,
	state.KindConsumable, state.KindImplant, state.KindUtility,
}
