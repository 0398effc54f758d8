package state

import (
	"encoding/json"
	"fmt"
)

// Campaign is the root aggregate.
type Campaign struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Turn        int    `json:"turn"`
	Phase       Phase  `json:"phase"`
	Credits     int    `json:"credits"`
	Debt        int    `json:"debt"`
	StoryPoints int    `json:"storyPoints"`
	FuelCredits int    `json:"fuelCredits"`
	Rumors      int    `json:"rumors,omitempty"`

	Pending Interrupt `json:"-"`

	TasksFinalized bool       `json:"tasksFinalized"`
	CurrentWorld   *World     `json:"currentWorld,omitempty"`
	VisitedWorlds  []World    `json:"visitedWorlds,omitempty"`
	Log            []LogEntry `json:"log,omitempty"`

	SPForCreditsUsedThisTurn   bool `json:"spForCreditsUsedThisTurn,omitempty"`
	SPForXPUsedThisTurn        bool `json:"spForXpUsedThisTurn,omitempty"`
	ComponentPurchasedThisTurn bool `json:"componentPurchasedThisTurn,omitempty"`
	BusyMarketsUsedThisTurn    bool `json:"busyMarketsUsedThisTurn,omitempty"`
	ItemsSoldThisTurn          int  `json:"itemsSoldThisTurn,omitempty"`
	TradedThisTurn             bool `json:"tradedThisTurn,omitempty"`
	UpkeepPaidThisTurn         bool `json:"upkeepPaidThisTurn,omitempty"`
	TravelledThisTurn          bool `json:"travelledThisTurn,omitempty"`

	PostBattle *PostBattleState `json:"postBattle,omitempty"`

	// Seq numbers log entries and derived entity ids.
	Seq int64 `json:"seq"`
}

// ResetTurnFlags clears every per-turn one-shot flag.
func (c *Campaign) ResetTurnFlags() {
	c.SPForCreditsUsedThisTurn = false
	c.SPForXPUsedThisTurn = false
	c.ComponentPurchasedThisTurn = false
	c.BusyMarketsUsedThisTurn = false
	c.ItemsSoldThisTurn = 0
	c.TradedThisTurn = false
	c.UpkeepPaidThisTurn = false
	c.TravelledThisTurn = false
}

// MarshalJSON writes Pending as a tagged envelope under "pendingInterrupt".
func (c Campaign) MarshalJSON() ([]byte, error) {
	type alias Campaign
	var env *envelope
	if c.Pending != nil {
		var err error
		env, err = encodeTagged(string(c.Pending.Kind()), c.Pending)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(struct {
		alias
		Pending *envelope `json:"pendingInterrupt,omitempty"`
	}{alias: alias(c), Pending: env})
}

// UnmarshalJSON restores Pending from its envelope.
func (c *Campaign) UnmarshalJSON(data []byte) error {
	type alias Campaign
	aux := struct {
		*alias
		Pending *envelope `json:"pendingInterrupt,omitempty"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Pending = nil
	if aux.Pending != nil {
		in, err := decodeTagged(aux.Pending, interruptRegistry)
		if err != nil {
			return fmt.Errorf("pending interrupt: %w", err)
		}
		c.Pending = in
	}
	return nil
}

// Document is the full persisted campaign: the three transactionally
// coupled aggregates plus the root.
type Document struct {
	Campaign Campaign `json:"campaign"`
	Crew     Crew     `json:"crew"`
	Ship     *Ship    `json:"ship,omitempty"`
	Stash    Stash    `json:"stash"`
}

// Clone returns a deep copy that shares no memory with d.
func (d Document) Clone() (Document, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return Document{}, fmt.Errorf("clone: %w", err)
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return Document{}, fmt.Errorf("clone: %w", err)
	}
	return out, nil
}

// Validate checks the structural invariants every observed document holds.
func (d Document) Validate() error {
	c := d.Campaign
	if c.Turn < 1 {
		return fmt.Errorf("turn %d < 1", c.Turn)
	}
	switch c.Phase {
	case PhaseActions, PhaseUpkeep, PhasePostBattle:
	default:
		return fmt.Errorf("unknown phase %q", c.Phase)
	}
	if c.Credits < 0 || c.Debt < 0 || c.StoryPoints < 0 || c.FuelCredits < 0 {
		return fmt.Errorf("negative resource: credits=%d debt=%d storyPoints=%d fuel=%d",
			c.Credits, c.Debt, c.StoryPoints, c.FuelCredits)
	}
	if (c.Phase == PhasePostBattle) != (c.PostBattle != nil) {
		return fmt.Errorf("post-battle state does not match phase %q", c.Phase)
	}
	for _, m := range d.Crew.Members {
		if m.XP < 0 {
			return fmt.Errorf("character %s: negative xp", m.ID)
		}
		for kind, limit := range SlotCapacity {
			if slot := m.Equipment.Slot(kind); slot != nil && len(*slot) > limit {
				return fmt.Errorf("character %s: %d %s items exceeds %d", m.ID, len(*slot), kind, limit)
			}
		}
	}
	if d.Ship == nil && len(d.Stash.Items) > ShiplessStashCap {
		return fmt.Errorf("stash: %d items exceeds %d without a ship", len(d.Stash.Items), ShiplessStashCap)
	}
	if s := d.Ship; s != nil {
		if s.Hull > s.MaxHull || s.Hull < 0 {
			return fmt.Errorf("ship hull %d outside [0,%d]", s.Hull, s.MaxHull)
		}
		seen := make(map[string]bool, len(s.Components))
		for _, comp := range s.Components {
			if seen[comp] {
				return fmt.Errorf("ship component %q installed twice", comp)
			}
			seen[comp] = true
		}
	}
	return nil
}

// OwnedItems returns every item reference in crew equipment then stash.
func (d *Document) OwnedItems() []ItemRef {
	var refs []ItemRef
	for _, m := range d.Crew.Members {
		for _, it := range m.Equipment.All() {
			refs = append(refs, ItemRef{Owner: m.ID, ItemID: it.ID})
		}
	}
	for _, it := range d.Stash.Items {
		refs = append(refs, ItemRef{Owner: StashOwner, ItemID: it.ID})
	}
	return refs
}

// LookupItem resolves a reference to the owned item.
func (d *Document) LookupItem(ref ItemRef) (Item, bool) {
	if ref.Owner == StashOwner {
		for _, it := range d.Stash.Items {
			if it.ID == ref.ItemID {
				return it, true
			}
		}
		return Item{}, false
	}
	m := d.Crew.Find(ref.Owner)
	if m == nil {
		return Item{}, false
	}
	for _, it := range m.Equipment.All() {
		if it.ID == ref.ItemID {
			return it, true
		}
	}
	return Item{}, false
}

// HasStashItem reports whether the stash holds an item of the definition.
func (d *Document) HasStashItem(defID string) bool {
	for _, it := range d.Stash.Items {
		if it.DefID == defID {
			return true
		}
	}
	return false
}

// TotalItems counts items across crew and stash.
func (d *Document) TotalItems() int {
	n := len(d.Stash.Items)
	for _, m := range d.Crew.Members {
		n += m.Equipment.Count()
	}
	return n
}
