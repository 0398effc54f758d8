package state

// PostBattleStep is a named post-battle sub-step.
type PostBattleStep string

const (
	StepActivities     PostBattleStep = "activities"
	StepInjuries       PostBattleStep = "injuries"
	StepExperience     PostBattleStep = "experience"
	StepTraining       PostBattleStep = "training"
	StepPurchase       PostBattleStep = "purchase"
	StepEvent          PostBattleStep = "event"
	StepCharacterEvent PostBattleStep = "character_event"
)

// MissionType classifies the battle that was fought.
type MissionType string

const (
	MissionOpportunity MissionType = "opportunity"
	MissionPatron      MissionType = "patron"
	MissionRival       MissionType = "rival"
	MissionQuest       MissionType = "quest"
	MissionInvasion    MissionType = "invasion"
)

// Participant is one crew member's battle record.
type Participant struct {
	CharacterID string `json:"characterId"`
	Casualty    bool   `json:"casualty,omitempty"`
	Kills       int    `json:"kills,omitempty"`
	FirstKill   bool   `json:"firstKill,omitempty"`
	UniqueKill  bool   `json:"uniqueKill,omitempty"`
}

// BattleReport is the summary handed over by the tactical layer.
type BattleReport struct {
	Mission      MissionType   `json:"mission"`
	Victory      bool          `json:"victory"`
	HeldField    bool          `json:"heldField,omitempty"`
	Payment      int           `json:"payment,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
}

// ActivityID names a conditional post-battle activity.
type ActivityID string

const (
	ActivityGetPaid          ActivityID = "get_paid"
	ActivityBattlefieldFinds ActivityID = "battlefield_finds"
	ActivityGatherLoot       ActivityID = "gather_loot"
	ActivityInvasionCheck    ActivityID = "invasion_check"
)

// Activity is a displayed activity and whether it has been resolved.
type Activity struct {
	ID      ActivityID `json:"id"`
	Done    bool       `json:"done,omitempty"`
	Outcome *Outcome   `json:"outcome,omitempty"`
}

// CasualtyStatus is the resolution state of one casualty.
type CasualtyStatus string

const (
	CasualtyPending         CasualtyStatus = "pending"
	CasualtyDead            CasualtyStatus = "dead"
	CasualtyInjured         CasualtyStatus = "injured"
	CasualtyUnharmed        CasualtyStatus = "unharmed"
	CasualtyAwaitingSurgery CasualtyStatus = "awaiting_surgery"
	CasualtySurgeryPaid     CasualtyStatus = "surgery_paid"
	CasualtyPenaltyAccepted CasualtyStatus = "penalty_accepted"
)

// Terminal reports whether no further decision is needed.
func (s CasualtyStatus) Terminal() bool {
	switch s {
	case CasualtyDead, CasualtyInjured, CasualtyUnharmed, CasualtySurgeryPaid, CasualtyPenaltyAccepted:
		return true
	}
	return false
}

// Casualty tracks injury resolution for one downed crew member.
type Casualty struct {
	CharacterID string         `json:"characterId"`
	Status      CasualtyStatus `json:"status"`
	Roll        int            `json:"roll,omitempty"`
	RowID       string         `json:"rowId,omitempty"`
	SurgeryCost int            `json:"surgeryCost,omitempty"`
	Rerolled    bool           `json:"rerolled,omitempty"`
}

// PostBattleState is the explicit post-battle machine.
type PostBattleState struct {
	Step               PostBattleStep `json:"step"`
	Report             BattleReport   `json:"report"`
	Activities         []Activity     `json:"activities,omitempty"`
	Casualties         []Casualty     `json:"casualties,omitempty"`
	ExperienceApplied  bool           `json:"experienceApplied,omitempty"`
	PurchaseRolls      int            `json:"purchaseRolls,omitempty"`
	EventRolled        bool           `json:"eventRolled,omitempty"`
	CharacterEventDone bool           `json:"characterEventDone,omitempty"`
}
