package state

import (
	"fmt"
	"slices"
)

// Phase is the top-level campaign phase.
type Phase string

const (
	PhaseActions    Phase = "actions"
	PhaseUpkeep     Phase = "upkeep"
	PhasePostBattle Phase = "post_battle"
)

// Stat names a character statistic.
type Stat string

const (
	StatReactions Stat = "reactions"
	StatSpeed     Stat = "speed"
	StatCombat    Stat = "combat"
	StatToughness Stat = "toughness"
	StatSavvy     Stat = "savvy"
	StatLuck      Stat = "luck"
)

// AllStats lists stats in display order.
var AllStats = []Stat{StatReactions, StatSpeed, StatCombat, StatToughness, StatSavvy, StatLuck}

// Race is a character species.
type Race string

const (
	RaceHuman     Race = "human"
	RaceEngineer  Race = "engineer"
	RaceKerin     Race = "kerin"
	RaceSoulless  Race = "soulless"
	RacePrecursor Race = "precursor"
	RaceSwift     Race = "swift"
	RaceFeral     Race = "feral"
)

// Stats holds the six character statistics.
type Stats struct {
	Reactions int `json:"reactions"`
	Speed     int `json:"speed"`
	Combat    int `json:"combat"`
	Toughness int `json:"toughness"`
	Savvy     int `json:"savvy"`
	Luck      int `json:"luck"`
}

// Get returns the value of a stat. Panics on an unknown stat name.
func (s Stats) Get(stat Stat) int {
	switch stat {
	case StatReactions:
		return s.Reactions
	case StatSpeed:
		return s.Speed
	case StatCombat:
		return s.Combat
	case StatToughness:
		return s.Toughness
	case StatSavvy:
		return s.Savvy
	case StatLuck:
		return s.Luck
	}
	panic(fmt.Sprintf("state: unknown stat %q", stat))
}

// Set assigns a stat. Panics on an unknown stat name.
func (s *Stats) Set(stat Stat, v int) {
	switch stat {
	case StatReactions:
		s.Reactions = v
	case StatSpeed:
		s.Speed = v
	case StatCombat:
		s.Combat = v
	case StatToughness:
		s.Toughness = v
	case StatSavvy:
		s.Savvy = v
	case StatLuck:
		s.Luck = v
	default:
		panic(fmt.Sprintf("state: unknown stat %q", stat))
	}
}

// ItemKind is the catalog category of an item; it decides the equipment slot.
type ItemKind string

const (
	KindWeapon        ItemKind = "weapon"
	KindArmor         ItemKind = "armor"
	KindScreen        ItemKind = "screen"
	KindConsumable    ItemKind = "consumable"
	KindImplant       ItemKind = "implant"
	KindUtility       ItemKind = "utility"
	KindShipComponent ItemKind = "ship_component"
	KindTradeGood     ItemKind = "trade_good"
)

// Item is an owned instance of a catalog definition.
type Item struct {
	ID      string   `json:"id"`
	DefID   string   `json:"defId"`
	Kind    ItemKind `json:"kind"`
	Damaged bool     `json:"damaged,omitempty"`
}

// Injury is an ongoing injury. A character with any injury is in sick bay.
type Injury struct {
	ID            string `json:"id"`
	RowID         string `json:"rowId"`
	RecoveryTurns int    `json:"recoveryTurns"`
}

// Equipment is a character's carried loadout.
type Equipment struct {
	Weapons        []Item `json:"weapons,omitempty"`
	Armor          []Item `json:"armor,omitempty"`
	Screen         []Item `json:"screen,omitempty"`
	Consumables    []Item `json:"consumables,omitempty"`
	Implants       []Item `json:"implants,omitempty"`
	UtilityDevices []Item `json:"utilityDevices,omitempty"`
}

// ShiplessStashCap is the stash limit for a crew without a ship. A ship
// removes the limit.
const ShiplessStashCap = 5

// SlotCapacity is the per-slot carrying limit.
var SlotCapacity = map[ItemKind]int{
	KindWeapon:     3,
	KindArmor:      1,
	KindScreen:     1,
	KindConsumable: 3,
	KindImplant:    2,
	KindUtility:    3,
}

// Slot returns the slice holding items of kind, or nil if characters
// cannot carry that kind.
func (e *Equipment) Slot(kind ItemKind) *[]Item {
	switch kind {
	case KindWeapon:
		return &e.Weapons
	case KindArmor:
		return &e.Armor
	case KindScreen:
		return &e.Screen
	case KindConsumable:
		return &e.Consumables
	case KindImplant:
		return &e.Implants
	case KindUtility:
		return &e.UtilityDevices
	}
	return nil
}

// All returns every carried item in slot order.
func (e Equipment) All() []Item {
	var out []Item
	out = append(out, e.Weapons...)
	out = append(out, e.Armor...)
	out = append(out, e.Screen...)
	out = append(out, e.Consumables...)
	out = append(out, e.Implants...)
	out = append(out, e.UtilityDevices...)
	return out
}

// Count returns the number of carried items.
func (e Equipment) Count() int {
	return len(e.Weapons) + len(e.Armor) + len(e.Screen) +
		len(e.Consumables) + len(e.Implants) + len(e.UtilityDevices)
}

// Character is a crew member.
type Character struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Race      Race      `json:"race"`
	Class     string    `json:"class,omitempty"`
	Leader    bool      `json:"leader,omitempty"`
	Stats     Stats     `json:"stats"`
	XP        int       `json:"xp"`
	Injuries  []Injury  `json:"injuries,omitempty"`
	Equipment Equipment `json:"equipment"`
}

// InSickBay reports whether the character is recovering from an injury.
func (c Character) InSickBay() bool {
	for _, inj := range c.Injuries {
		if inj.RecoveryTurns > 0 {
			return true
		}
	}
	return false
}

// Crew is the ordered roster. Insertion order is display order.
type Crew struct {
	Name    string      `json:"name"`
	Members []Character `json:"members,omitempty"`
}

// Find returns the member with id, or nil.
func (c *Crew) Find(id string) *Character {
	for i := range c.Members {
		if c.Members[i].ID == id {
			return &c.Members[i]
		}
	}
	return nil
}

// ActiveCount returns the number of members not in sick bay.
func (c Crew) ActiveCount() int {
	n := 0
	for _, m := range c.Members {
		if !m.InSickBay() {
			n++
		}
	}
	return n
}

// Stash is the shared item pool plus salvage parts.
type Stash struct {
	Items []Item `json:"items,omitempty"`
	Parts int    `json:"parts,omitempty"`
}

// Ship is the crew's starship. Its absence is a valid durable state.
type Ship struct {
	Name       string   `json:"name"`
	Hull       int      `json:"hull"`
	MaxHull    int      `json:"maxHull"`
	Components []string `json:"components,omitempty"`
	Traits     []string `json:"traits,omitempty"`
}

// HasComponent reports whether the component is installed.
func (s *Ship) HasComponent(id string) bool {
	return s != nil && slices.Contains(s.Components, id)
}

// HasTrait reports whether the ship has the trait.
func (s *Ship) HasTrait(trait string) bool {
	return s != nil && slices.Contains(s.Traits, trait)
}

// Damaged reports whether the hull is below maximum.
func (s *Ship) Damaged() bool {
	return s != nil && s.Hull < s.MaxHull
}

// World is a planet the crew can be on.
type World struct {
	ID                         string   `json:"id"`
	Name                       string   `json:"name"`
	Traits                     []string `json:"traits,omitempty"`
	InterdictionTurnsRemaining int      `json:"interdictionTurnsRemaining,omitempty"`
}

// HasTrait reports whether the world has the trait.
func (w *World) HasTrait(trait string) bool {
	return w != nil && slices.Contains(w.Traits, trait)
}

// Interdicted reports whether travel and missions are blocked here.
func (w *World) Interdicted() bool {
	return w != nil && w.InterdictionTurnsRemaining > 0
}

// LogEntry is an append-only campaign log record. Key and Params are
// rendered by an external text lookup.
type LogEntry struct {
	Seq    int64  `json:"seq"`
	Key    string `json:"key"`
	Params Params `json:"params,omitempty"`
	Turn   int    `json:"turn"`
}

// Params are opaque rendering parameters.
type Params map[string]string

// NewParams builds Params from alternating key/value arguments.
// Values are formatted with %v. Panics on an odd argument count.
func NewParams(kv ...any) Params {
	if len(kv)%2 != 0 {
		panic("state: NewParams needs key/value pairs")
	}
	if len(kv) == 0 {
		return nil
	}
	p := make(Params, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		p[fmt.Sprint(kv[i])] = fmt.Sprint(kv[i+1])
	}
	return p
}

// Outcome is a (key, params) pair describing a resolved result.
type Outcome struct {
	Key    string `json:"key"`
	Params Params `json:"params,omitempty"`
}
