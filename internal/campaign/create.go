package campaign

import (
	"github.com/roach88/driftcrew/internal/dice"
	"github.com/roach88/driftcrew/internal/state"
)

// Starting ship and debt are base plus 1d6.
const (
	startingHullBase = 24
	startingDebtBase = 20
)

// Creation reason keys.
const (
	ReasonCrewTooLarge = "create.crew_too_large"
	ReasonNoLeader     = "create.no_leader"
	ReasonNoWorld      = "create.no_world"
)

// CreateParams describes a new campaign. Empty ids are assigned.
type CreateParams struct {
	ID       string            `json:"id,omitempty" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	CrewName string            `json:"crewName" yaml:"crew_name"`
	Leader   state.Character   `json:"leader" yaml:"leader"`
	Crew     []state.Character `json:"crew,omitempty" yaml:"crew"`
	// ShipName names the starting ship. Empty starts without one.
	ShipName string      `json:"shipName,omitempty" yaml:"ship_name"`
	World    state.World `json:"world" yaml:"world"`
}

// Create rolls a new campaign and returns its engine, opened on turn 1 in
// the upkeep phase.
func Create(p CreateParams, src dice.Source, opts ...Option) (*Engine, error) {
	id := p.ID
	if id == "" {
		id = NewCampaignID()
	}
	seed := state.Document{Campaign: state.Campaign{
		ID:    id,
		Name:  p.Name,
		Turn:  1,
		Phase: state.PhaseUpkeep,
	}}
	e, err := New(seed, src, opts...)
	if err != nil {
		return nil, err
	}

	guard := allow()
	switch {
	case p.Leader.Name == "":
		guard = deny(ReasonNoLeader)
	case p.World.Name == "":
		guard = deny(ReasonNoWorld)
	case 1+len(p.Crew) > e.rates.CrewCap:
		guard = deny(ReasonCrewTooLarge)
	}
	err = e.run("create_campaign", guard, func(t *tx) error {
		t.doc.Crew.Name = p.CrewName
		leader := p.Leader
		leader.Leader = true
		members := append([]state.Character{leader}, p.Crew...)
		for i := range members {
			t.assignIDs(&members[i])
		}
		t.doc.Crew.Members = members

		c := t.campaign()
		r := t.roller()
		c.Credits = r.Sum(len(members), 6)
		if p.ShipName != "" {
			hull := startingHullBase + r.D6()
			t.doc.Ship = &state.Ship{Name: p.ShipName, Hull: hull, MaxHull: hull}
			c.Debt = startingDebtBase + r.D6()
		}
		c.StoryPoints = (r.D6() + 1) / 2

		world := p.World
		if world.ID == "" {
			world.ID = t.newID("world")
		}
		c.CurrentWorld = &world
		c.VisitedWorlds = []state.World{world}
		t.logf("campaign.created", "crew", len(members), "credits", c.Credits, "debt", c.Debt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// assignIDs fills in missing character and item ids.
func (t *tx) assignIDs(m *state.Character) {
	if m.ID == "" {
		m.ID = t.newID("character")
	}
	for _, kind := range []state.ItemKind{
		state.KindWeapon, state.KindArmor, state.KindScreen,
		state.KindConsumable, state.KindImplant, state.KindUtility,
	} {
		slot := m.Equipment.Slot(kind)
		if slot == nil {
			continue
		}
		for i := range *slot {
			if (*slot)[i].ID == "" {
				(*slot)[i].ID = t.newID("item")
			}
		}
	}
}
