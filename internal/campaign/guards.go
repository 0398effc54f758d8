package campaign

import (
	"github.com/roach88/driftcrew/internal/ledger"
	"github.com/roach88/driftcrew/internal/state"
)

// Reason keys returned in GuardResult.Reason.
const (
	ReasonInterruptPending      = "guard.interrupt_pending"
	ReasonWrongInterrupt        = "guard.wrong_interrupt"
	ReasonWrongPhase            = "guard.wrong_phase"
	ReasonWrongStep             = "guard.wrong_step"
	ReasonTasksNotFinalized     = "guard.tasks_not_finalized"
	ReasonTasksFinalized        = "guard.tasks_finalized"
	ReasonInterdicted           = "guard.interdicted"
	ReasonUsedThisTurn          = "guard.used_this_turn"
	ReasonNoStoryPoints         = "guard.no_story_points"
	ReasonInsufficientCredits   = "guard.insufficient_credits"
	ReasonNoShip                = "guard.no_ship"
	ReasonUnknownCharacter      = "guard.unknown_character"
	ReasonCharacterUnavailable  = "guard.character_unavailable"
	ReasonUnknownItem           = "guard.unknown_item"
	ReasonSellLimit             = "guard.sell_limit"
	ReasonComponentOwned        = "guard.component_owned"
	ReasonNotTraded             = "guard.not_traded"
	ReasonUpkeepUnaffordable    = "upkeep.unaffordable"
	ReasonUpkeepInvalid         = "upkeep.invalid_request"
	ReasonUpgradeCostMismatch   = "upgrade.cost_mismatch"
	ReasonPostBattleStepPending = "post_battle.step_pending"
)

// idle requires phase and no pending interrupt.
func idle(doc *state.Document, phase state.Phase) GuardResult {
	if doc.Campaign.Pending != nil {
		return deny(ReasonInterruptPending)
	}
	if doc.Campaign.Phase != phase {
		return deny(ReasonWrongPhase)
	}
	return allow()
}

// pendingIs requires the pending interrupt to be of kind.
func pendingIs(doc *state.Document, kind state.InterruptKind) GuardResult {
	if doc.Campaign.Pending == nil || doc.Campaign.Pending.Kind() != kind {
		return deny(ReasonWrongInterrupt)
	}
	return allow()
}

// inStep requires the post-battle machine at step with nothing pending.
func inStep(doc *state.Document, step state.PostBattleStep) GuardResult {
	if g := idle(doc, state.PhasePostBattle); !g.Allowed {
		return g
	}
	if doc.Campaign.PostBattle.Step != step {
		return deny(ReasonWrongStep)
	}
	return allow()
}

func activeMember(doc *state.Document, id string) GuardResult {
	m := doc.Crew.Find(id)
	if m == nil {
		return deny(ReasonUnknownCharacter)
	}
	if m.InSickBay() {
		return deny(ReasonCharacterUnavailable)
	}
	return allow()
}

// CanFinalizeUpkeep checks phase and that credits cover the whole bill.
// There is no partial upkeep.
func CanFinalizeUpkeep(doc *state.Document, bill ledger.UpkeepBill) GuardResult {
	if g := idle(doc, state.PhaseUpkeep); !g.Allowed {
		return g
	}
	if doc.Campaign.Credits < bill.Total {
		return deny(ReasonUpkeepUnaffordable)
	}
	return allow()
}

// CanFinalizeTasks closes crew task assignment for the turn.
func CanFinalizeTasks(doc *state.Document) GuardResult {
	if g := idle(doc, state.PhaseActions); !g.Allowed {
		return g
	}
	if doc.Campaign.TasksFinalized {
		return deny(ReasonTasksFinalized)
	}
	return allow()
}

// CanTrade allows one trade task per turn while tasks are open.
func CanTrade(doc *state.Document, charID string) GuardResult {
	if g := idle(doc, state.PhaseActions); !g.Allowed {
		return g
	}
	if doc.Campaign.TasksFinalized {
		return deny(ReasonTasksFinalized)
	}
	if doc.Campaign.TradedThisTurn {
		return deny(ReasonUsedThisTurn)
	}
	return activeMember(doc, charID)
}

// CanBusyMarkets allows a second trade roll once per turn after trading.
func CanBusyMarkets(doc *state.Document, charID string) GuardResult {
	if g := idle(doc, state.PhaseActions); !g.Allowed {
		return g
	}
	c := doc.Campaign
	switch {
	case c.TasksFinalized:
		return deny(ReasonTasksFinalized)
	case !c.TradedThisTurn:
		return deny(ReasonNotTraded)
	case c.BusyMarketsUsedThisTurn:
		return deny(ReasonUsedThisTurn)
	case c.StoryPoints < 1:
		return deny(ReasonNoStoryPoints)
	}
	return activeMember(doc, charID)
}

// CanSellItem checks the per-turn sale limit.
func CanSellItem(doc *state.Document, rates ledger.Rates, ref state.ItemRef) GuardResult {
	if g := idle(doc, state.PhaseActions); !g.Allowed {
		return g
	}
	if doc.Campaign.ItemsSoldThisTurn >= rates.SellPerTurn {
		return deny(ReasonSellLimit)
	}
	if _, ok := doc.LookupItem(ref); !ok {
		return deny(ReasonUnknownItem)
	}
	return allow()
}

// CanBuyShipComponent allows one component purchase per turn.
func CanBuyShipComponent(doc *state.Document, componentID string, cost int) GuardResult {
	if g := idle(doc, state.PhaseActions); !g.Allowed {
		return g
	}
	c := doc.Campaign
	switch {
	case doc.Ship == nil:
		return deny(ReasonNoShip)
	case c.ComponentPurchasedThisTurn:
		return deny(ReasonUsedThisTurn)
	case doc.Ship.HasComponent(componentID):
		return deny(ReasonComponentOwned)
	case c.Credits < cost:
		return deny(ReasonInsufficientCredits)
	}
	return allow()
}

// CanSpendStoryPointForCredits allows one conversion per turn.
func CanSpendStoryPointForCredits(doc *state.Document) GuardResult {
	if doc.Campaign.Pending != nil {
		return deny(ReasonInterruptPending)
	}
	switch {
	case doc.Campaign.SPForCreditsUsedThisTurn:
		return deny(ReasonUsedThisTurn)
	case doc.Campaign.StoryPoints < 1:
		return deny(ReasonNoStoryPoints)
	}
	return allow()
}

// CanSpendStoryPointForXP allows one conversion per turn.
func CanSpendStoryPointForXP(doc *state.Document, charID string) GuardResult {
	if doc.Campaign.Pending != nil {
		return deny(ReasonInterruptPending)
	}
	switch {
	case doc.Campaign.SPForXPUsedThisTurn:
		return deny(ReasonUsedThisTurn)
	case doc.Campaign.StoryPoints < 1:
		return deny(ReasonNoStoryPoints)
	case doc.Crew.Find(charID) == nil:
		return deny(ReasonUnknownCharacter)
	}
	return allow()
}

// CanUpgradeStat checks the stat cap and the character's XP.
func CanUpgradeStat(doc *state.Document, charID string, stat state.Stat) GuardResult {
	if doc.Campaign.Pending != nil {
		return deny(ReasonInterruptPending)
	}
	m := doc.Crew.Find(charID)
	if m == nil {
		return deny(ReasonUnknownCharacter)
	}
	if q := ledger.QuoteUpgrade(*m, stat); !q.Allowed {
		return deny(q.Reason)
	}
	return allow()
}

// CanTravel gates leaving the current world.
func CanTravel(doc *state.Document) GuardResult {
	if g := idle(doc, state.PhaseActions); !g.Allowed {
		return g
	}
	c := doc.Campaign
	switch {
	case !c.TasksFinalized:
		return deny(ReasonTasksNotFinalized)
	case c.CurrentWorld.Interdicted():
		return deny(ReasonInterdicted)
	case c.TravelledThisTurn:
		return deny(ReasonUsedThisTurn)
	}
	return allow()
}

// CanFlee allows leaving in a hurry, also from an invasion gear-up.
// Interdiction does not hold a fleeing crew.
func CanFlee(doc *state.Document) GuardResult {
	c := doc.Campaign
	if c.Phase != state.PhaseActions {
		return deny(ReasonWrongPhase)
	}
	if c.Pending != nil && c.Pending.Kind() != state.InterruptInvasionGearUp {
		return deny(ReasonInterruptPending)
	}
	if c.TravelledThisTurn {
		return deny(ReasonUsedThisTurn)
	}
	return allow()
}

// CanBeginPostBattle gates entering post-battle resolution.
func CanBeginPostBattle(doc *state.Document) GuardResult {
	if g := idle(doc, state.PhaseActions); !g.Allowed {
		return g
	}
	if !doc.Campaign.TasksFinalized {
		return deny(ReasonTasksNotFinalized)
	}
	if doc.Campaign.CurrentWorld.Interdicted() {
		return deny(ReasonInterdicted)
	}
	return allow()
}

// CanEndTurn ends a turn without a battle.
func CanEndTurn(doc *state.Document) GuardResult {
	return idle(doc, state.PhaseActions)
}

// CanAdvancePostBattle checks the current step is satisfied.
func CanAdvancePostBattle(doc *state.Document) GuardResult {
	if g := idle(doc, state.PhasePostBattle); !g.Allowed {
		return g
	}
	if ok, reason := stepSatisfied(doc.Campaign.PostBattle); !ok {
		return deny(reason)
	}
	return allow()
}

// CanMoveItem allows rearranging gear outside interrupts and during an
// invasion gear-up.
func CanMoveItem(doc *state.Document, ref state.ItemRef) GuardResult {
	if p := doc.Campaign.Pending; p != nil && p.Kind() != state.InterruptInvasionGearUp {
		return deny(ReasonInterruptPending)
	}
	if _, ok := doc.LookupItem(ref); !ok {
		return deny(ReasonUnknownItem)
	}
	return allow()
}
