package ledger

import "github.com/roach88/driftcrew/internal/state"

// XPItem is one audited experience contribution.
type XPItem struct {
	Amount    int    `json:"amount"`
	ReasonKey string `json:"reasonKey"`
}

// XPAward is the total experience for one participant and how it was
// reached.
type XPAward struct {
	CharacterID string   `json:"characterId"`
	Total       int      `json:"total"`
	Breakdown   []XPItem `json:"breakdown"`
}

var missionBonus = map[state.MissionType]int{
	state.MissionQuest:    1,
	state.MissionInvasion: 1,
}

// XPGains computes each contribution separately and keeps every one,
// even when two share an amount, so the audit trail is complete. The
// first kill has its own bonus; every kill after it earns XPPerKill.
func (r Rates) XPGains(p state.Participant, report state.BattleReport) XPAward {
	award := XPAward{CharacterID: p.CharacterID}
	add := func(amount int, key string) {
		if amount <= 0 {
			return
		}
		award.Breakdown = append(award.Breakdown, XPItem{Amount: amount, ReasonKey: key})
		award.Total += amount
	}

	add(1, "xp.participated")
	if p.Casualty {
		add(1, "xp.wounded")
	} else {
		add(1, "xp.survived")
		if report.Victory {
			add(1, "xp.victory")
		}
	}
	if p.FirstKill {
		add(1, "xp.first_kill")
	}
	if p.UniqueKill {
		add(1, "xp.unique_kill")
	}
	add((p.Kills-1)*r.XPPerKill, "xp.kills")
	add(missionBonus[report.Mission], "xp.mission_"+string(report.Mission))
	return award
}
