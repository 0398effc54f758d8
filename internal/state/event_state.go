package state

// EventID names a travel event machine.
type EventID string

const (
	EventAsteroids    EventID = "asteroids"
	EventPatrolShip   EventID = "patrol_ship"
	EventEscapePod    EventID = "escape_pod"
	EventDistressCall EventID = "distress_call"
	EventDriveTrouble EventID = "drive_trouble"
	EventUneventful   EventID = "uneventful"
)

// Stage is an explicit sub-machine state.
type Stage string

const (
	StageInitial      Stage = "initial"
	StageRerollChoice Stage = "reroll_choice"
	StageSavvyChecks  Stage = "savvy_checks"
	StageSavvyCheck   Stage = "savvy_check"
	StageConfiscate   Stage = "confiscate"
	StageOutcome      Stage = "outcome"
	StageResolved     Stage = "resolved"
)

// EventState is the closed set of travel event machine states.
type EventState interface {
	EventID() EventID
	CurrentStage() Stage
}

var eventRegistry = map[string]func() EventState{
	string(EventAsteroids):    func() EventState { return &AsteroidsState{} },
	string(EventPatrolShip):   func() EventState { return &PatrolShipState{} },
	string(EventEscapePod):    func() EventState { return &EscapePodState{} },
	string(EventDistressCall): func() EventState { return &DistressCallState{} },
	string(EventDriveTrouble): func() EventState { return &SimpleEventState{ID: EventDriveTrouble} },
	string(EventUneventful):   func() EventState { return &SimpleEventState{ID: EventUneventful} },
}

// AsteroidsState tracks an asteroid field crossing.
type AsteroidsState struct {
	Stage      Stage    `json:"stage"`
	AvoidRolls []int    `json:"avoidRolls,omitempty"`
	Checks     []int    `json:"checks,omitempty"`
	HullDamage int      `json:"hullDamage,omitempty"`
	Outcome    *Outcome `json:"outcome,omitempty"`
}

// PatrolShipState tracks a patrol inspection.
type PatrolShipState struct {
	Stage           Stage     `json:"stage"`
	Roll            int       `json:"roll"`
	ConfiscateCount int       `json:"confiscateCount"`
	Selected        []ItemRef `json:"selected,omitempty"`
	Outcome         *Outcome  `json:"outcome,omitempty"`
}

// EscapePodState tracks a drifting escape pod encounter.
type EscapePodState struct {
	Stage     Stage      `json:"stage"`
	Roll      int        `json:"roll,omitempty"`
	Result    string     `json:"result,omitempty"`
	Candidate *Character `json:"candidate,omitempty"`
	Outcome   *Outcome   `json:"outcome,omitempty"`
}

// DistressCallState tracks a distress call response.
type DistressCallState struct {
	Stage       Stage    `json:"stage"`
	ResponderID string   `json:"responderId,omitempty"`
	Roll        int      `json:"roll,omitempty"`
	Outcome     *Outcome `json:"outcome,omitempty"`
}

// SimpleEventState is an event resolved entirely on entry.
type SimpleEventState struct {
	ID      EventID  `json:"id"`
	Stage   Stage    `json:"stage"`
	Outcome *Outcome `json:"outcome,omitempty"`
}

func (*AsteroidsState) EventID() EventID     { return EventAsteroids }
func (*PatrolShipState) EventID() EventID    { return EventPatrolShip }
func (*EscapePodState) EventID() EventID     { return EventEscapePod }
func (*DistressCallState) EventID() EventID  { return EventDistressCall }
func (s *SimpleEventState) EventID() EventID { return s.ID }

func (s *AsteroidsState) CurrentStage() Stage    { return s.Stage }
func (s *PatrolShipState) CurrentStage() Stage   { return s.Stage }
func (s *EscapePodState) CurrentStage() Stage    { return s.Stage }
func (s *DistressCallState) CurrentStage() Stage { return s.Stage }
func (s *SimpleEventState) CurrentStage() Stage  { return s.Stage }
