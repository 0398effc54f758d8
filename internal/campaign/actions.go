package campaign

import (
	"fmt"

	"github.com/roach88/driftcrew/internal/events"
	"github.com/roach88/driftcrew/internal/ledger"
	"github.com/roach88/driftcrew/internal/mutate"
	"github.com/roach88/driftcrew/internal/state"
)

// NamedGuard pairs a parameterless command with its current guard.
type NamedGuard struct {
	Command string      `json:"command"`
	Guard   GuardResult `json:"guard"`
}

// Available evaluates the guards of the commands that take no arguments.
func (e *Engine) Available() []NamedGuard {
	doc := &e.doc
	return []NamedGuard{
		{"finalize_tasks", CanFinalizeTasks(doc)},
		{"travel", CanTravel(doc)},
		{"flee", CanFlee(doc)},
		{"begin_post_battle", CanBeginPostBattle(doc)},
		{"advance_post_battle", CanAdvancePostBattle(doc)},
		{"end_turn", CanEndTurn(doc)},
		{"sp_for_credits", CanSpendStoryPointForCredits(doc)},
	}
}

// Trade assigns charID to trade and rolls on the trade table. Automatic
// results are applied immediately; the TradeChoice stays pending until
// DismissTrade so the outcome can be shown.
func (e *Engine) Trade(charID string) (state.TradeChoice, error) {
	var out state.TradeChoice
	err := e.run("trade", CanTrade(&e.doc, charID), func(t *tx) error {
		t.campaign().TradedThisTurn = true
		tc, err := t.openTrade(charID)
		if err != nil {
			return err
		}
		out = *tc
		return nil
	})
	return out, err
}

// BusyMarkets spends a story point on a second trade roll this turn.
func (e *Engine) BusyMarkets(charID string) (state.TradeChoice, error) {
	var out state.TradeChoice
	err := e.run("busy_markets", CanBusyMarkets(&e.doc, charID), func(t *tx) error {
		c := t.campaign()
		c.BusyMarketsUsedThisTurn = true
		if err := t.effects(mutate.Effects{StoryPoints: -1}); err != nil {
			return err
		}
		tc, err := t.openTrade(charID)
		if err != nil {
			return err
		}
		out = *tc
		return nil
	})
	return out, err
}

func (t *tx) openTrade(charID string) (*state.TradeChoice, error) {
	row, roll, err := t.e.tables.Trade.Roll(t.roller())
	if err != nil {
		return nil, err
	}
	tc := &state.TradeChoice{CharacterID: charID, Roll: roll, RowID: row.ID}
	t.logf("trade.rolled", "roll", roll, "row", row.ID)
	if err := t.setInterrupt(tc); err != nil {
		return nil, err
	}
	if !row.Type.Automatic() {
		return tc, nil
	}
	res, err := events.ResolveTrade(t.events(), tc, row, events.TradeSelection{})
	if err != nil {
		return nil, err
	}
	return tc, t.apply(res)
}

// ResolveTradeChoice submits the player's selection for the pending trade.
// Submitting again after resolution is a no-op.
func (e *Engine) ResolveTradeChoice(sel events.TradeSelection) error {
	return e.run("resolve_trade_choice", pendingIs(&e.doc, state.InterruptTradeChoice), func(t *tx) error {
		tc := t.campaign().Pending.(*state.TradeChoice)
		row, ok := t.e.tables.TradeByID(tc.RowID)
		if !ok {
			return fmt.Errorf("trade row %q: %w", tc.RowID, events.ErrUnknownRow)
		}
		res, err := events.ResolveTrade(t.events(), tc, row, sel)
		if err != nil {
			return err
		}
		return t.apply(res)
	})
}

// DismissTrade closes the pending trade. An interactive trade that was
// never resolved is forfeited with nothing applied.
func (e *Engine) DismissTrade() error {
	return e.run("dismiss_trade", pendingIs(&e.doc, state.InterruptTradeChoice), func(t *tx) error {
		if tc := t.campaign().Pending.(*state.TradeChoice); !tc.Resolved {
			t.logf("trade.forfeited", "row", tc.RowID)
		}
		t.clearInterrupt()
		return nil
	})
}

// SellItem sells one owned item at its catalog value.
func (e *Engine) SellItem(ref state.ItemRef) (int, error) {
	price := 0
	err := e.run("sell_item", CanSellItem(&e.doc, e.rates, ref), func(t *tx) error {
		it, _ := t.doc.LookupItem(ref)
		def, ok := t.e.catalog.Lookup(it.Kind, it.DefID)
		if !ok {
			return fmt.Errorf("catalog item %q: %w", it.DefID, events.ErrUnknownRow)
		}
		price = t.rates().SellPrice(def.Value, 0)
		if err := t.effects(mutate.Effects{Credits: price, RemoveItems: []state.ItemRef{ref}}); err != nil {
			return err
		}
		t.campaign().ItemsSoldThisTurn++
		t.logf("market.sold", "item", def.ID, "credits", price)
		return nil
	})
	return price, err
}

// BuyShipComponent installs a ship component.
func (e *Engine) BuyShipComponent(componentID string) error {
	def, ok := e.catalog.Lookup(state.KindShipComponent, componentID)
	guard := deny(ReasonUnknownItem)
	if ok {
		guard = CanBuyShipComponent(&e.doc, componentID, def.Cost)
	}
	return e.run("buy_ship_component", guard, func(t *tx) error {
		if err := t.effects(mutate.Effects{Credits: -def.Cost}); err != nil {
			return err
		}
		t.doc.Ship.Components = append(t.doc.Ship.Components, def.ID)
		t.campaign().ComponentPurchasedThisTurn = true
		t.logf("market.component_installed", "component", def.ID, "credits", def.Cost)
		return nil
	})
}

// SpendStoryPointForCredits converts one story point into credits.
func (e *Engine) SpendStoryPointForCredits() error {
	return e.run("sp_for_credits", CanSpendStoryPointForCredits(&e.doc), func(t *tx) error {
		n := t.rates().StoryPointCredits
		if err := t.effects(mutate.Effects{StoryPoints: -1, Credits: n}); err != nil {
			return err
		}
		t.campaign().SPForCreditsUsedThisTurn = true
		t.logf("story_point.credits", "credits", n)
		return nil
	})
}

// SpendStoryPointForXP converts one story point into XP for charID.
func (e *Engine) SpendStoryPointForXP(charID string) error {
	return e.run("sp_for_xp", CanSpendStoryPointForXP(&e.doc, charID), func(t *tx) error {
		n := t.rates().StoryPointXP
		eff := mutate.Effects{StoryPoints: -1, XP: []mutate.XPGrant{{CharacterID: charID, Amount: n}}}
		if err := t.effects(eff); err != nil {
			return err
		}
		t.campaign().SPForXPUsedThisTurn = true
		t.logf("story_point.xp", "character", charID, "xp", n)
		return nil
	})
}

// SpendXPForUpgrade raises stat by one. cost must equal the schedule price.
func (e *Engine) SpendXPForUpgrade(charID string, stat state.Stat, cost int) error {
	guard := CanUpgradeStat(&e.doc, charID, stat)
	if want, _ := ledger.UpgradeCost(stat); guard.Allowed && cost != want {
		guard = deny(ReasonUpgradeCostMismatch)
	}
	return e.run("spend_xp_for_upgrade", guard, func(t *tx) error {
		eff := mutate.Effects{
			XP:    []mutate.XPGrant{{CharacterID: charID, Amount: -cost}},
			Stats: []mutate.StatDelta{{CharacterID: charID, Stat: stat, Delta: 1}},
		}
		if err := t.effects(eff); err != nil {
			return err
		}
		t.logf("upgrade.applied", "character", charID, "stat", stat, "xp", cost)
		return nil
	})
}

// MoveItem transfers an item to the stash or another crew member.
func (e *Engine) MoveItem(ref state.ItemRef, to string) error {
	return e.run("move_item", CanMoveItem(&e.doc, ref), func(t *tx) error {
		return mutate.MoveItem(t.doc, ref, to, t.limits())
	})
}

// ResolveRecruit accepts or declines the pending recruit.
func (e *Engine) ResolveRecruit(accept bool) error {
	return e.run("resolve_recruit", pendingIs(&e.doc, state.InterruptRecruitChoice), func(t *tx) error {
		rc := t.campaign().Pending.(*state.RecruitChoice)
		t.clearInterrupt()
		if !accept {
			t.logf("recruit.declined", "name", rc.Candidate.Name)
			return nil
		}
		if err := t.effects(mutate.Effects{AddCrew: []state.Character{rc.Candidate}}); err != nil {
			return err
		}
		t.logf("recruit.joined", "name", rc.Candidate.Name)
		return nil
	})
}

// ResolveItemChoice places the pending item with to: the stash, a crew
// member id, or "" to leave it behind.
func (e *Engine) ResolveItemChoice(to string) error {
	return e.run("resolve_item_choice", pendingIs(&e.doc, state.InterruptItemChoice), func(t *tx) error {
		ic := t.campaign().Pending.(*state.ItemChoice)
		t.clearInterrupt()
		switch to {
		case "":
			t.logf("item.discarded", "item", ic.Item.DefID)
			return nil
		case state.StashOwner:
			if err := t.effects(mutate.Effects{AddItems: []state.Item{ic.Item}}); err != nil {
				return err
			}
		default:
			m := t.doc.Crew.Find(to)
			if m == nil {
				return fmt.Errorf("character %q: %w", to, mutate.ErrNotFound)
			}
			slot := m.Equipment.Slot(ic.Item.Kind)
			if slot == nil || len(*slot) >= state.SlotCapacity[ic.Item.Kind] {
				return fmt.Errorf("%s slot of %s: %w", ic.Item.Kind, m.Name, mutate.ErrCapacity)
			}
			*slot = append(*slot, ic.Item)
		}
		t.logf("item.placed", "item", ic.Item.DefID, "owner", to)
		return nil
	})
}

// ConfirmGearUp ends the invasion gear-up and commits to the battle.
func (e *Engine) ConfirmGearUp() error {
	return e.run("confirm_gear_up", pendingIs(&e.doc, state.InterruptInvasionGearUp), func(t *tx) error {
		t.clearInterrupt()
		t.logf("invasion.standing_ground")
		return nil
	})
}
