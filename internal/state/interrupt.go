package state

import (
	"encoding/json"
	"fmt"
)

// InterruptKind tags a pending interrupt variant.
type InterruptKind string

const (
	InterruptTradeChoice          InterruptKind = "trade_choice"
	InterruptRecruitChoice        InterruptKind = "recruit_choice"
	InterruptGearChoice           InterruptKind = "gear_choice_after_ship_destruction"
	InterruptFleeItemLoss         InterruptKind = "flee_item_loss"
	InterruptFleeCharacterEvent   InterruptKind = "flee_character_event"
	InterruptBureaucracyBribe     InterruptKind = "bureaucracy_bribe"
	InterruptPrecursorEventChoice InterruptKind = "precursor_event_choice"
	InterruptInvasionGearUp       InterruptKind = "invasion_battle_gear_up"
	InterruptItemChoice           InterruptKind = "item_choice"
	InterruptTradeGoodsSale       InterruptKind = "trade_goods_sale"
	InterruptTravelEvent          InterruptKind = "travel_event"
)

// Interrupt is the closed set of blocking player decisions. Only the
// pointer types declared in this file implement it.
type Interrupt interface {
	Kind() InterruptKind
	sealed()
}

var interruptRegistry = map[string]func() Interrupt{
	string(InterruptTradeChoice):          func() Interrupt { return &TradeChoice{} },
	string(InterruptRecruitChoice):        func() Interrupt { return &RecruitChoice{} },
	string(InterruptGearChoice):           func() Interrupt { return &GearChoiceAfterShipDestruction{} },
	string(InterruptFleeItemLoss):         func() Interrupt { return &FleeItemLoss{} },
	string(InterruptFleeCharacterEvent):   func() Interrupt { return &FleeCharacterEvent{} },
	string(InterruptBureaucracyBribe):     func() Interrupt { return &BureaucracyBribe{} },
	string(InterruptPrecursorEventChoice): func() Interrupt { return &PrecursorEventChoice{} },
	string(InterruptInvasionGearUp):       func() Interrupt { return &InvasionBattleGearUp{} },
	string(InterruptItemChoice):           func() Interrupt { return &ItemChoice{} },
	string(InterruptTradeGoodsSale):       func() Interrupt { return &TradeGoodsSale{} },
	string(InterruptTravelEvent):          func() Interrupt { return &TravelEvent{} },
}

// StashOwner is the ItemRef owner naming the shared stash.
const StashOwner = "stash"

// ItemRef addresses one item either in the stash or on a crew member.
type ItemRef struct {
	Owner  string `json:"owner"`
	ItemID string `json:"itemId"`
}

// TradeChoice is an in-flight trade table result.
type TradeChoice struct {
	CharacterID string   `json:"characterId"`
	Roll        int      `json:"roll"`
	RowID       string   `json:"rowId"`
	Resolved    bool     `json:"resolved,omitempty"`
	Outcome     *Outcome `json:"outcome,omitempty"`
}

// RecruitChoice offers a new crew member.
type RecruitChoice struct {
	Source    string    `json:"source"`
	Candidate Character `json:"candidate"`
}

// GearChoiceAfterShipDestruction collects what each member keeps when the
// ship is lost. Keep maps character id to retained item ids.
type GearChoiceAfterShipDestruction struct {
	Keep        map[string][]string `json:"keep,omitempty"`
	Destination *World              `json:"destination,omitempty"`
}

// FleeItemLoss requires discarding exactly Count items.
type FleeItemLoss struct {
	Count       int       `json:"count"`
	Selected    []ItemRef `json:"selected,omitempty"`
	Destination *World    `json:"destination,omitempty"`
}

// FleeCharacterEvent rolls a character event for a member after fleeing.
type FleeCharacterEvent struct {
	CharacterID string `json:"characterId"`
	Destination *World `json:"destination,omitempty"`
}

// BureaucracyBribe asks whether to pay officials on arrival.
type BureaucracyBribe struct {
	WorldID string `json:"worldId"`
	Cost    int    `json:"cost"`
}

// PrecursorOption is one rolled character event a precursor may pick.
type PrecursorOption struct {
	Roll  int    `json:"roll"`
	RowID string `json:"rowId"`
}

// PrecursorEventChoice lets a precursor character pick one of two events.
type PrecursorEventChoice struct {
	CharacterID string            `json:"characterId"`
	Options     []PrecursorOption `json:"options"`
}

// InvasionBattleGearUp lets the crew rearrange gear before an invasion
// battle or flee instead.
type InvasionBattleGearUp struct {
	WorldID string `json:"worldId"`
}

// ItemChoice asks where a newly acquired item goes.
type ItemChoice struct {
	Item   Item   `json:"item"`
	Source string `json:"source"`
}

// TradeGoodsSale offers to sell carried trade goods on arrival for Price
// credits in total.
type TradeGoodsSale struct {
	ItemIDs []string `json:"itemIds"`
	Price   int      `json:"price"`
}

// TravelEvent is an in-flight travel hazard. Event carries the per-event
// state machine.
type TravelEvent struct {
	Roll        int        `json:"roll"`
	Destination *World     `json:"destination,omitempty"`
	Event       EventState `json:"-"`
}

func (*TradeChoice) Kind() InterruptKind                    { return InterruptTradeChoice }
func (*RecruitChoice) Kind() InterruptKind                  { return InterruptRecruitChoice }
func (*GearChoiceAfterShipDestruction) Kind() InterruptKind { return InterruptGearChoice }
func (*FleeItemLoss) Kind() InterruptKind                   { return InterruptFleeItemLoss }
func (*FleeCharacterEvent) Kind() InterruptKind             { return InterruptFleeCharacterEvent }
func (*BureaucracyBribe) Kind() InterruptKind               { return InterruptBureaucracyBribe }
func (*PrecursorEventChoice) Kind() InterruptKind           { return InterruptPrecursorEventChoice }
func (*InvasionBattleGearUp) Kind() InterruptKind           { return InterruptInvasionGearUp }
func (*ItemChoice) Kind() InterruptKind                     { return InterruptItemChoice }
func (*TradeGoodsSale) Kind() InterruptKind                 { return InterruptTradeGoodsSale }
func (*TravelEvent) Kind() InterruptKind                    { return InterruptTravelEvent }

func (*TradeChoice) sealed()                    {}
func (*RecruitChoice) sealed()                  {}
func (*GearChoiceAfterShipDestruction) sealed() {}
func (*FleeItemLoss) sealed()                   {}
func (*FleeCharacterEvent) sealed()             {}
func (*BureaucracyBribe) sealed()               {}
func (*PrecursorEventChoice) sealed()           {}
func (*InvasionBattleGearUp) sealed()           {}
func (*ItemChoice) sealed()                     {}
func (*TradeGoodsSale) sealed()                 {}
func (*TravelEvent) sealed()                    {}

// MarshalJSON writes the travel event with its nested event envelope.
func (t *TravelEvent) MarshalJSON() ([]byte, error) {
	type alias TravelEvent
	var env *envelope
	if t.Event != nil {
		var err error
		env, err = encodeTagged(string(t.Event.EventID()), t.Event)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(struct {
		*alias
		Event *envelope `json:"event,omitempty"`
	}{alias: (*alias)(t), Event: env})
}

// UnmarshalJSON restores the nested event state.
func (t *TravelEvent) UnmarshalJSON(data []byte) error {
	type alias TravelEvent
	aux := struct {
		*alias
		Event *envelope `json:"event,omitempty"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Event = nil
	if aux.Event != nil {
		ev, err := decodeTagged(aux.Event, eventRegistry)
		if err != nil {
			return fmt.Errorf("travel event: %w", err)
		}
		t.Event = ev
	}
	return nil
}
