package command

import (
	"encoding/json"

	"github.com/roach88/driftcrew/internal/campaign"
	"github.com/roach88/driftcrew/internal/events"
	"github.com/roach88/driftcrew/internal/state"
)

type noArgs struct{}

type characterArgs struct {
	CharacterID string `json:"characterId"`
}

type worldArgs struct {
	World state.World `json:"world"`
}

type moveArgs struct {
	Item state.ItemRef `json:"item"`
	To   string        `json:"to"`
}

type upgradeArgs struct {
	CharacterID string     `json:"characterId"`
	Stat        state.Stat `json:"stat"`
	Cost        int        `json:"cost"`
}

type salvageArgs struct {
	CharacterID string `json:"characterId"`
	ItemID      string `json:"itemId"`
}

type trainingArgs struct {
	CharacterID string `json:"characterId"`
	Course      string `json:"course"`
}

var registry = map[string]Spec{}

func init() {
	for _, s := range []Spec{
		// Queries.
		define("available", "list commands whose guard is open", true,
			func(e *campaign.Engine, _ noArgs) (any, error) {
				return e.Available(), nil
			}),
		define("quote_upkeep", "price an upkeep request without paying it", true,
			func(e *campaign.Engine, req campaign.UpkeepRequest) (any, error) {
				return e.QuoteUpkeep(req)
			}),
		define("travel_choices", "list choices open at the current travel event stage", true,
			func(e *campaign.Engine, _ noArgs) (any, error) {
				return e.TravelChoices()
			}),

		// Upkeep.
		define("finalize_upkeep", "pay upkeep, debt, repairs and medical care", false,
			func(e *campaign.Engine, req campaign.UpkeepRequest) (any, error) {
				return e.FinalizeUpkeep(req)
			}),
		define("move_item", "move an item between crew members and the stash", false,
			func(e *campaign.Engine, a moveArgs) (any, error) {
				if err := required("to", a.To); err != nil {
					return nil, err
				}
				return nil, e.MoveItem(a.Item, a.To)
			}),
		define("confirm_gear_up", "confirm gear before an invasion battle", false,
			unit((*campaign.Engine).ConfirmGearUp)),

		// Actions.
		define("finalize_tasks", "close crew task assignment", false,
			unit((*campaign.Engine).FinalizeTasks)),
		define("trade", "roll on the trade table", false,
			func(e *campaign.Engine, a characterArgs) (any, error) {
				if err := required("characterId", a.CharacterID); err != nil {
					return nil, err
				}
				return e.Trade(a.CharacterID)
			}),
		define("busy_markets", "spend a story point for a second trade roll", false,
			func(e *campaign.Engine, a characterArgs) (any, error) {
				if err := required("characterId", a.CharacterID); err != nil {
					return nil, err
				}
				return e.BusyMarkets(a.CharacterID)
			}),
		define("resolve_trade_choice", "answer the pending trade result", false,
			func(e *campaign.Engine, sel events.TradeSelection) (any, error) {
				return nil, e.ResolveTradeChoice(sel)
			}),
		define("dismiss_trade", "close the pending trade, forfeiting an unresolved one", false,
			unit((*campaign.Engine).DismissTrade)),
		define("sell_item", "sell an item for its catalog value", false,
			func(e *campaign.Engine, ref state.ItemRef) (any, error) {
				return e.SellItem(ref)
			}),
		define("buy_ship_component", "install a ship component", false,
			func(e *campaign.Engine, a struct {
				ComponentID string `json:"componentId"`
			}) (any, error) {
				if err := required("componentId", a.ComponentID); err != nil {
					return nil, err
				}
				return nil, e.BuyShipComponent(a.ComponentID)
			}),
		define("sp_for_credits", "convert a story point into credits", false,
			unit((*campaign.Engine).SpendStoryPointForCredits)),
		define("sp_for_xp", "convert a story point into experience", false,
			func(e *campaign.Engine, a characterArgs) (any, error) {
				return nil, e.SpendStoryPointForXP(a.CharacterID)
			}),
		define("spend_xp_for_upgrade", "raise a stat with experience", false,
			func(e *campaign.Engine, a upgradeArgs) (any, error) {
				return nil, e.SpendXPForUpgrade(a.CharacterID, a.Stat, a.Cost)
			}),
		define("resolve_recruit", "accept or decline a recruit", false,
			func(e *campaign.Engine, a struct {
				Accept bool `json:"accept"`
			}) (any, error) {
				return nil, e.ResolveRecruit(a.Accept)
			}),
		define("resolve_item_choice", "place a found item with a member or the stash", false,
			func(e *campaign.Engine, a struct {
				To string `json:"to"`
			}) (any, error) {
				if err := required("to", a.To); err != nil {
					return nil, err
				}
				return nil, e.ResolveItemChoice(a.To)
			}),
		define("end_turn", "end the turn without a battle", false,
			unit((*campaign.Engine).EndTurn)),

		// Travel.
		define("travel", "travel to another world", false,
			func(e *campaign.Engine, a worldArgs) (any, error) {
				return nil, e.Travel(a.World)
			}),
		define("resolve_travel_event", "answer the pending travel event", false,
			func(e *campaign.Engine, act events.Action) (any, error) {
				return nil, e.ResolveTravelEvent(act)
			}),
		define("resolve_bribe", "pay or refuse a bribe", false,
			func(e *campaign.Engine, a struct {
				Pay bool `json:"pay"`
			}) (any, error) {
				return nil, e.ResolveBribe(a.Pay)
			}),
		define("resolve_trade_goods_sale", "sell or keep trade goods on arrival", false,
			func(e *campaign.Engine, a struct {
				Sell bool `json:"sell"`
			}) (any, error) {
				return nil, e.ResolveTradeGoodsSale(a.Sell)
			}),
		define("flee", "flee the current world", false,
			func(e *campaign.Engine, a worldArgs) (any, error) {
				return nil, e.Flee(a.World)
			}),
		define("toggle_flee_item", "mark an item to lose while fleeing", false,
			func(e *campaign.Engine, ref state.ItemRef) (any, error) {
				return nil, e.ToggleFleeItem(ref)
			}),
		define("confirm_flee_item_loss", "confirm the items lost while fleeing", false,
			unit((*campaign.Engine).ConfirmFleeItemLoss)),
		define("resolve_flee_character_event", "roll the character event forced by fleeing", false,
			func(e *campaign.Engine, _ noArgs) (any, error) {
				return e.ResolveFleeCharacterEvent()
			}),
		define("toggle_salvage", "mark an item to keep from a destroyed ship", false,
			func(e *campaign.Engine, a salvageArgs) (any, error) {
				return nil, e.ToggleSalvage(a.CharacterID, a.ItemID)
			}),
		define("confirm_salvage", "confirm the items kept from a destroyed ship", false,
			unit((*campaign.Engine).ConfirmSalvage)),

		// Post-battle.
		define("begin_post_battle", "start the post-battle sequence from a battle report", false,
			func(e *campaign.Engine, report state.BattleReport) (any, error) {
				return nil, e.BeginPostBattle(report)
			}),
		define("resolve_activity", "resolve a post-battle activity", false,
			func(e *campaign.Engine, a struct {
				Activity state.ActivityID `json:"activity"`
			}) (any, error) {
				return e.ResolveActivity(a.Activity)
			}),
		define("resolve_injury", "roll injuries for a casualty", false,
			func(e *campaign.Engine, a characterArgs) (any, error) {
				return e.ResolveAndApplyInjury(a.CharacterID)
			}),
		define("reroll_injury", "reroll a fatal injury", false,
			func(e *campaign.Engine, a characterArgs) (any, error) {
				return e.RerollInjury(a.CharacterID)
			}),
		define("pay_surgery", "pay for surgery on a crippling injury", false,
			func(e *campaign.Engine, a characterArgs) (any, error) {
				return nil, e.PaySurgery(a.CharacterID)
			}),
		define("accept_penalty", "take the permanent penalty instead of surgery", false,
			func(e *campaign.Engine, a characterArgs) (any, error) {
				return nil, e.AcceptPenalty(a.CharacterID)
			}),
		define("apply_experience", "award battle experience", false,
			func(e *campaign.Engine, _ noArgs) (any, error) {
				return e.ApplyExperience()
			}),
		define("enroll_training", "enroll a member in a training course", false,
			func(e *campaign.Engine, a trainingArgs) (any, error) {
				return nil, e.EnrollTraining(a.CharacterID, a.Course)
			}),
		define("purchase_item_roll", "pay for a roll on a purchase table", false,
			func(e *campaign.Engine, a struct {
				Table string `json:"table"`
			}) (any, error) {
				return e.PurchaseItemRoll(a.Table)
			}),
		define("roll_campaign_event", "roll the campaign event", false,
			func(e *campaign.Engine, _ noArgs) (any, error) {
				return e.RollCampaignEvent()
			}),
		define("resolve_character_event", "roll a character event", false,
			func(e *campaign.Engine, a characterArgs) (any, error) {
				return e.ResolveCharacterEvent(a.CharacterID)
			}),
		define("choose_precursor_event", "pick one of two precursor events", false,
			func(e *campaign.Engine, a struct {
				Index int `json:"index"`
			}) (any, error) {
				return e.ChoosePrecursorEvent(a.Index)
			}),
		define("skip_character_event", "skip the optional character event", false,
			unit((*campaign.Engine).SkipCharacterEvent)),
		define("advance_post_battle", "move to the next post-battle step", false,
			unit((*campaign.Engine).AdvancePostBattle)),
	} {
		registry[s.Name] = s
	}
}

// define builds a Spec whose arguments decode into A.
func define[A any](name, summary string, query bool, fn func(*campaign.Engine, A) (any, error)) Spec {
	return Spec{
		Name:    name,
		Summary: summary,
		Query:   query,
		run: func(e *campaign.Engine, raw json.RawMessage) (any, error) {
			var a A
			if err := decode(raw, &a); err != nil {
				return nil, err
			}
			return fn(e, a)
		},
	}
}

// unit adapts an argument-free engine method.
func unit(fn func(*campaign.Engine) error) func(*campaign.Engine, noArgs) (any, error) {
	return func(e *campaign.Engine, _ noArgs) (any, error) {
		return nil, fn(e)
	}
}
