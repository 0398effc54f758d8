package campaign

import (
	"fmt"

	"github.com/roach88/driftcrew/internal/events"
	"github.com/roach88/driftcrew/internal/mutate"
	"github.com/roach88/driftcrew/internal/state"
)

// World traits the controller reacts to on arrival.
const (
	TraitBureaucracy    = "bureaucracy"
	TraitInvasionThreat = "invasion_threat"
)

// ReasonNoDestination rejects travel without a destination world.
const ReasonNoDestination = "travel.no_destination"

// ReasonFleeSelection rejects confirming a flee discard of the wrong size.
const ReasonFleeSelection = "flee.selection_incomplete"

// Travel pays for the jump and rolls a travel event. Events that resolve
// on entry complete the jump at once; the others open a TravelEvent.
// A crew without a ship buys passage and skips the travel table.
func (e *Engine) Travel(dest state.World) error {
	guard := CanTravel(&e.doc)
	if guard.Allowed && dest.ID == "" {
		guard = deny(ReasonNoDestination)
	}
	return e.run("travel", guard, func(t *tx) error {
		t.campaign().TravelledThisTurn = true
		if err := t.payJump(); err != nil {
			return err
		}
		if t.doc.Ship == nil {
			return t.arrive(dest)
		}
		row, roll, err := t.e.tables.Travel.Roll(t.roller())
		if err != nil {
			return err
		}
		ev, res, err := events.StartTravel(t.events(), row)
		if err != nil {
			return err
		}
		if err := t.apply(res); err != nil {
			return err
		}
		if res.Resolved {
			return t.afterTravelEvent(&dest)
		}
		return t.setInterrupt(&state.TravelEvent{Roll: roll, Destination: &dest, Event: ev})
	})
}

// payJump pays fuel for a ship or passage for a shipless crew.
func (t *tx) payJump() error {
	r := t.rates()
	c := t.campaign()
	if t.doc.Ship == nil {
		cost := r.PassageCost(len(t.doc.Crew.Members))
		if err := t.effects(mutate.Effects{Credits: -cost}); err != nil {
			return err
		}
		t.logf("travel.passage", "credits", cost)
		return nil
	}
	q := r.FuelCost(t.doc.Ship, c.FuelCredits, 1)
	if err := t.effects(mutate.Effects{FuelCredits: -q.FromFuel, Credits: -q.FromCredits}); err != nil {
		return err
	}
	t.logf("travel.fuel", "total", q.Total, "fuel", q.FromFuel, "credits", q.FromCredits, "emergency", q.Emergency)
	return nil
}

// TravelChoices lists the legal choices of the pending travel event.
func (e *Engine) TravelChoices() ([]events.Choice, error) {
	te, ok := e.doc.Campaign.Pending.(*state.TravelEvent)
	if !ok {
		return nil, &PreconditionError{Command: "travel_choices", Reason: ReasonWrongInterrupt}
	}
	ctx := &events.Context{Doc: &e.doc, Tables: e.tables, Catalog: e.catalog, Rates: e.rates}
	choices, err := events.LegalChoices(ctx, te.Event)
	if err != nil {
		return nil, classify("travel_choices", err)
	}
	return choices, nil
}

// ResolveTravelEvent submits one choice to the pending travel event.
// ChoiceContinue on a resolved machine completes the jump.
func (e *Engine) ResolveTravelEvent(act events.Action) error {
	return e.run("resolve_travel_event", pendingIs(&e.doc, state.InterruptTravelEvent), func(t *tx) error {
		te := t.campaign().Pending.(*state.TravelEvent)
		if te.Event == nil {
			return fmt.Errorf("travel event without machine: %w", events.ErrUnknownEvent)
		}
		if act.Choice == events.ChoiceContinue {
			if te.Event.CurrentStage() != state.StageResolved {
				return fmt.Errorf("continue at stage %q: %w", te.Event.CurrentStage(), events.ErrChoiceUnavailable)
			}
			t.clearInterrupt()
			return t.afterTravelEvent(te.Destination)
		}
		res, err := events.StepTravel(t.events(), te.Event, act)
		if err != nil {
			return err
		}
		return t.apply(res)
	})
}

// afterTravelEvent completes the jump, or opens salvage when the ship
// did not survive it.
func (t *tx) afterTravelEvent(dest *state.World) error {
	if s := t.doc.Ship; s != nil && s.Hull == 0 {
		t.logf("ship.destroyed", "ship", s.Name)
		return t.setInterrupt(&state.GearChoiceAfterShipDestruction{Destination: dest})
	}
	if dest == nil {
		return nil
	}
	return t.arrive(*dest)
}

// arrive makes dest the current world. A world visited before keeps the
// state it was left in.
func (t *tx) arrive(dest state.World) error {
	c := t.campaign()
	if prev := c.CurrentWorld; prev != nil {
		for i := range c.VisitedWorlds {
			if c.VisitedWorlds[i].ID == prev.ID {
				c.VisitedWorlds[i] = *prev
			}
		}
	}
	w, seen := dest, false
	for _, v := range c.VisitedWorlds {
		if v.ID == dest.ID {
			w, seen = v, true
		}
	}
	if !seen {
		c.VisitedWorlds = append(c.VisitedWorlds, w)
	}
	c.CurrentWorld = &w
	t.logf("travel.arrived", "world", w.Name)

	if w.HasTrait(TraitBureaucracy) {
		return t.setInterrupt(&state.BureaucracyBribe{WorldID: w.ID, Cost: t.rates().BribeCost})
	}
	return t.offerTradeGoods()
}

// offerTradeGoods opens a sale of every stash trade good, if any.
func (t *tx) offerTradeGoods() error {
	var (
		ids   []string
		price int
	)
	for _, it := range t.doc.Stash.Items {
		if it.Kind != state.KindTradeGood {
			continue
		}
		def, ok := t.e.catalog.Lookup(it.Kind, it.DefID)
		if !ok {
			return fmt.Errorf("catalog item %q: %w", it.DefID, events.ErrUnknownRow)
		}
		ids = append(ids, it.ID)
		price += t.rates().SellPrice(def.Value, t.rates().TradeGoodsBonus)
	}
	if len(ids) == 0 {
		return nil
	}
	return t.setInterrupt(&state.TradeGoodsSale{ItemIDs: ids, Price: price})
}

// ResolveBribe pays or refuses the officials, then offers trade goods.
func (e *Engine) ResolveBribe(pay bool) error {
	return e.run("resolve_bribe", pendingIs(&e.doc, state.InterruptBureaucracyBribe), func(t *tx) error {
		b := t.campaign().Pending.(*state.BureaucracyBribe)
		res, err := events.ResolveBribe(t.events(), b, pay)
		if err != nil {
			return err
		}
		if err := t.apply(res); err != nil {
			return err
		}
		t.clearInterrupt()
		return t.offerTradeGoods()
	})
}

// ResolveTradeGoodsSale sells or keeps the offered trade goods.
func (e *Engine) ResolveTradeGoodsSale(sell bool) error {
	return e.run("resolve_trade_goods_sale", pendingIs(&e.doc, state.InterruptTradeGoodsSale), func(t *tx) error {
		sale := t.campaign().Pending.(*state.TradeGoodsSale)
		res, err := events.SellTradeGoods(t.events(), sale, sell)
		if err != nil {
			return err
		}
		if err := t.apply(res); err != nil {
			return err
		}
		t.clearInterrupt()
		return nil
	})
}

// Flee leaves the current world at once. With a ship the crew pays fuel
// and arrives. Without one the crew must discard items first, then one
// member suffers a character event on the way.
func (e *Engine) Flee(dest state.World) error {
	guard := CanFlee(&e.doc)
	if guard.Allowed && dest.ID == "" {
		guard = deny(ReasonNoDestination)
	}
	return e.run("flee", guard, func(t *tx) error {
		c := t.campaign()
		c.TravelledThisTurn = true
		if c.Pending != nil {
			t.clearInterrupt()
			t.logf("invasion.fled")
		}
		if t.doc.Ship != nil {
			if err := t.payJump(); err != nil {
				return err
			}
			return t.arrive(dest)
		}
		n := events.FleeLossCount(t.events())
		if n == 0 {
			return t.fleeCharacterEvent(dest)
		}
		return t.setInterrupt(&state.FleeItemLoss{Count: n, Destination: &dest})
	})
}

// ToggleFleeItem changes the flee discard selection.
func (e *Engine) ToggleFleeItem(ref state.ItemRef) error {
	return e.run("toggle_flee_item", pendingIs(&e.doc, state.InterruptFleeItemLoss), func(t *tx) error {
		return events.ToggleFleeItem(t.events(), t.campaign().Pending.(*state.FleeItemLoss), ref)
	})
}

// CanConfirmFleeItemLoss reports whether the discard selection is complete.
func CanConfirmFleeItemLoss(doc *state.Document) GuardResult {
	if g := pendingIs(doc, state.InterruptFleeItemLoss); !g.Allowed {
		return g
	}
	if !events.CanConfirmFlee(doc.Campaign.Pending.(*state.FleeItemLoss)) {
		return deny(ReasonFleeSelection)
	}
	return allow()
}

// ConfirmFleeItemLoss discards the selected items and all credits.
func (e *Engine) ConfirmFleeItemLoss() error {
	return e.run("confirm_flee_item_loss", CanConfirmFleeItemLoss(&e.doc), func(t *tx) error {
		fl := t.campaign().Pending.(*state.FleeItemLoss)
		res, err := events.ConfirmFleeItemLoss(t.events(), fl)
		if err != nil {
			return err
		}
		if err := t.apply(res); err != nil {
			return err
		}
		t.clearInterrupt()
		if fl.Destination == nil {
			return nil
		}
		return t.fleeCharacterEvent(*fl.Destination)
	})
}

// fleeCharacterEvent picks an active member to suffer an event on the way.
func (t *tx) fleeCharacterEvent(dest state.World) error {
	var active []string
	for _, m := range t.doc.Crew.Members {
		if !m.InSickBay() {
			active = append(active, m.ID)
		}
	}
	if len(active) == 0 {
		return t.arrive(dest)
	}
	id := active[t.roller().Pick(len(active))]
	return t.setInterrupt(&state.FleeCharacterEvent{CharacterID: id, Destination: &dest})
}

// ResolveFleeCharacterEvent rolls the pending flee event and completes
// the journey.
func (e *Engine) ResolveFleeCharacterEvent() (state.Outcome, error) {
	var out state.Outcome
	err := e.run("resolve_flee_character_event", pendingIs(&e.doc, state.InterruptFleeCharacterEvent), func(t *tx) error {
		fe := t.campaign().Pending.(*state.FleeCharacterEvent)
		row, _, err := t.e.tables.CharacterEvent.Roll(t.roller())
		if err != nil {
			return err
		}
		res, err := events.CharacterEvent(t.events(), row, fe.CharacterID)
		if err != nil {
			return err
		}
		if err := t.apply(res); err != nil {
			return err
		}
		if n := len(res.Outcomes); n > 0 {
			out = res.Outcomes[n-1]
		}
		t.clearInterrupt()
		if fe.Destination == nil {
			return nil
		}
		return t.arrive(*fe.Destination)
	})
	return out, err
}

// ToggleSalvage changes what charID keeps from the lost ship.
func (e *Engine) ToggleSalvage(charID, itemID string) error {
	return e.run("toggle_salvage", pendingIs(&e.doc, state.InterruptGearChoice), func(t *tx) error {
		gc := t.campaign().Pending.(*state.GearChoiceAfterShipDestruction)
		return events.ToggleSalvage(t.events(), gc, charID, itemID, t.rates().SalvageCap)
	})
}

// ConfirmSalvage strips the crew to the kept items, forfeits the stash and
// credits and completes the journey without a ship.
func (e *Engine) ConfirmSalvage() error {
	return e.run("confirm_salvage", pendingIs(&e.doc, state.InterruptGearChoice), func(t *tx) error {
		gc := t.campaign().Pending.(*state.GearChoiceAfterShipDestruction)
		res, err := events.ConfirmSalvage(t.events(), gc, t.rates().SalvageCap)
		if err != nil {
			return err
		}
		if err := t.apply(res); err != nil {
			return err
		}
		t.clearInterrupt()
		if gc.Destination == nil {
			return nil
		}
		return t.arrive(*gc.Destination)
	})
}
