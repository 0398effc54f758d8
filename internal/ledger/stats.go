package ledger

import "github.com/roach88/driftcrew/internal/state"

var upgradeCost = map[state.Stat]int{
	state.StatReactions: 7,
	state.StatCombat:    7,
	state.StatSpeed:     5,
	state.StatSavvy:     5,
	state.StatToughness: 6,
	state.StatLuck:      10,
}

var statMax = map[state.Stat]int{
	state.StatReactions: 6,
	state.StatSpeed:     8,
	state.StatCombat:    5,
	state.StatToughness: 6,
	state.StatSavvy:     5,
}

// UpgradeCost returns the XP price of raising stat by one.
func UpgradeCost(stat state.Stat) (int, bool) {
	c, ok := upgradeCost[stat]
	return c, ok
}

// StatMax returns the cap for stat on this character.
func StatMax(c state.Character, stat state.Stat) int {
	if stat == state.StatLuck {
		if c.Race == state.RaceHuman {
			return 3
		}
		return 1
	}
	if stat == state.StatToughness && c.Race == state.RaceEngineer {
		return 4
	}
	return statMax[stat]
}

// UpgradeQuote describes whether a stat purchase is possible.
type UpgradeQuote struct {
	Stat    state.Stat `json:"stat"`
	Cost    int        `json:"cost"`
	Max     int        `json:"max"`
	Allowed bool       `json:"allowed"`
	Reason  string     `json:"reason,omitempty"`
}

// QuoteUpgrade checks the cap and the character's XP.
func QuoteUpgrade(c state.Character, stat state.Stat) UpgradeQuote {
	cost, ok := UpgradeCost(stat)
	if !ok {
		return UpgradeQuote{Stat: stat, Reason: "upgrade.unknown_stat"}
	}
	q := UpgradeQuote{Stat: stat, Cost: cost, Max: StatMax(c, stat)}
	switch {
	case c.Stats.Get(stat) >= q.Max:
		q.Reason = "upgrade.at_max"
	case c.XP < cost:
		q.Reason = "upgrade.insufficient_xp"
	default:
		q.Allowed = true
	}
	return q
}
