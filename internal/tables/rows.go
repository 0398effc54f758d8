package tables

import "github.com/roach88/driftcrew/internal/state"

// TradeType is how a trade result is resolved.
type TradeType string

const (
	TradeSimple     TradeType = "simple"
	TradeChoice     TradeType = "choice"
	TradeItemRoll   TradeType = "item_roll"
	TradeRecruit    TradeType = "recruit"
	TradeXPChoice   TradeType = "xp_choice"
	TradeItemChoice TradeType = "item_choice"
	TradeGamble     TradeType = "gamble"
	TradeSellChoice TradeType = "sell_choice"
)

// Automatic reports whether the type resolves without player input.
func (t TradeType) Automatic() bool {
	switch t {
	case TradeSimple, TradeItemRoll, TradeRecruit, TradeGamble:
		return true
	}
	return false
}

// TradeOption is one branch of a choice row.
type TradeOption struct {
	ID          string `json:"id"`
	LogKey      string `json:"logKey"`
	Cost        int    `json:"cost,omitempty"`
	Credits     int    `json:"credits,omitempty"`
	StoryPoints int    `json:"storyPoints,omitempty"`
	Rumors      int    `json:"rumors,omitempty"`
	Fuel        int    `json:"fuel,omitempty"`
}

// TradeRow is an immutable trade table result.
type TradeRow struct {
	ID             string        `json:"id"`
	Type           TradeType     `json:"type"`
	LogKey         string        `json:"logKey"`
	Credits        int           `json:"credits,omitempty"`
	StoryPoints    int           `json:"storyPoints,omitempty"`
	Rumors         int           `json:"rumors,omitempty"`
	Fuel           int           `json:"fuel,omitempty"`
	XP             int           `json:"xp,omitempty"`
	Items          []string      `json:"items,omitempty"`
	Table          string        `json:"table,omitempty"`
	Choices        []TradeOption `json:"choices,omitempty"`
	GambleDieSides int           `json:"gambleDieSides,omitempty"`
	GambleTarget   int           `json:"gambleTarget,omitempty"`
	GambleStake    int           `json:"gambleStake,omitempty"`
	ItemsToReceive int           `json:"itemsToReceive,omitempty"`
	SellLimit      int           `json:"sellLimit,omitempty"`
	SellBonus      int           `json:"sellBonus,omitempty"`
}

// Option returns the choice with id.
func (r TradeRow) Option(id string) (TradeOption, bool) {
	for _, o := range r.Choices {
		if o.ID == id {
			return o, true
		}
	}
	return TradeOption{}, false
}

// TravelRow selects a travel event machine.
type TravelRow struct {
	ID         state.EventID `json:"id"`
	LogKey     string        `json:"logKey"`
	HullDamage int           `json:"hullDamage,omitempty"`
}

// InjuryOutcome classifies an injury row.
type InjuryOutcome string

const (
	InjuryDead             InjuryOutcome = "dead"
	InjuryEquipmentLoss    InjuryOutcome = "equipment_loss"
	InjurySurgery          InjuryOutcome = "surgery"
	InjuryWound            InjuryOutcome = "injury"
	InjuryKnockedOut       InjuryOutcome = "knocked_out"
	InjuryHardKnocks       InjuryOutcome = "hard_knocks"
	InjuryMiraculousEscape InjuryOutcome = "miraculous_escape"
)

// InjuryRow is a post-battle injury result.
type InjuryRow struct {
	ID            string        `json:"id"`
	Outcome       InjuryOutcome `json:"outcome"`
	LogKey        string        `json:"logKey"`
	RecoveryTurns int           `json:"recoveryTurns,omitempty"`
	RecoveryDie   int           `json:"recoveryDie,omitempty"`
	SurgeryCost   int           `json:"surgeryCost,omitempty"`
	PenaltyStat   state.Stat    `json:"penaltyStat,omitempty"`
	XP            int           `json:"xp,omitempty"`
}

// EventRow is a character or campaign event.
type EventRow struct {
	ID           string `json:"id"`
	LogKey       string `json:"logKey"`
	Credits      int    `json:"credits,omitempty"`
	StoryPoints  int    `json:"storyPoints,omitempty"`
	Rumors       int    `json:"rumors,omitempty"`
	XP           int    `json:"xp,omitempty"`
	Debt         int    `json:"debt,omitempty"`
	Fuel         int    `json:"fuel,omitempty"`
	InjuryTurns  int    `json:"injuryTurns,omitempty"`
	Item         string `json:"item,omitempty"`
	Recruit      bool   `json:"recruit,omitempty"`
	Interdiction int    `json:"interdiction,omitempty"`
}

// PurchaseRow maps a purchase roll to a catalog item. An empty Item
// means nothing was found.
type PurchaseRow struct {
	Item string         `json:"item,omitempty"`
	Kind state.ItemKind `json:"kind,omitempty"`
}

// EscapePodRow is the result of rescuing an escape pod.
type EscapePodRow struct {
	Result      string `json:"result"`
	LogKey      string `json:"logKey"`
	Credits     int    `json:"credits,omitempty"`
	Rumors      int    `json:"rumors,omitempty"`
	StoryPoints int    `json:"storyPoints,omitempty"`
}

// PatrolRow is how many items a patrol confiscates.
type PatrolRow struct {
	Confiscate int    `json:"confiscate"`
	LogKey     string `json:"logKey"`
}
