package testutil

import "github.com/roach88/driftcrew/internal/state"

// Character builds a crew member with baseline human stats.
func Character(id, name string) state.Character {
	return state.Character{
		ID:    id,
		Name:  name,
		Race:  state.RaceHuman,
		Stats: state.Stats{Reactions: 1, Speed: 4, Combat: 0, Toughness: 3, Savvy: 0, Luck: 0},
	}
}

// Item builds an item instance.
func Item(id, defID string, kind state.ItemKind) state.Item {
	return state.Item{ID: id, DefID: defID, Kind: kind}
}

// Document returns a mid-campaign document: turn 2, actions phase with
// tasks finalized, four crew, a 30 hull ship and 10 credits.
func Document() state.Document {
	leader := Character("ch-1", "Ash")
	leader.Leader = true
	leader.Stats.Savvy = 1
	leader.Equipment.Weapons = []state.Item{Item("it-1", "auto_rifle", state.KindWeapon)}

	return state.Document{
		Campaign: state.Campaign{
			ID:             "campaign-1",
			Name:           "Test Run",
			Turn:           2,
			Phase:          state.PhaseActions,
			Credits:        10,
			StoryPoints:    2,
			TasksFinalized: true,
			CurrentWorld:   &state.World{ID: "world-1", Name: "Nivar"},
			VisitedWorlds:  []state.World{{ID: "world-1", Name: "Nivar"}},
			Seq:            100,
		},
		Crew: state.Crew{
			Name: "Wayfarers",
			Members: []state.Character{
				leader,
				Character("ch-2", "Bex"),
				Character("ch-3", "Cole"),
				Character("ch-4", "Dara"),
			},
		},
		Ship: &state.Ship{Name: "Rustbucket", Hull: 30, MaxHull: 30},
	}
}

// ShiplessDocument is Document without a ship.
func ShiplessDocument() state.Document {
	doc := Document()
	doc.Ship = nil
	return doc
}
