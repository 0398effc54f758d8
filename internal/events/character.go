package events

import (
	"fmt"

	"github.com/roach88/driftcrew/internal/mutate"
	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/tables"
)

func xpGrant(id string, amount int) mutate.XPGrant {
	return mutate.XPGrant{CharacterID: id, Amount: amount}
}

// CharacterEvent turns a character event row into effects for charID.
func CharacterEvent(ctx *Context, row tables.EventRow, charID string) (Result, error) {
	m := ctx.Doc.Crew.Find(charID)
	if m == nil {
		return Result{}, fmt.Errorf("character %q: %w", charID, ErrSelection)
	}
	var res Result
	res.Effects.Credits = row.Credits
	res.Effects.ClampCredits = true
	res.Effects.StoryPoints = row.StoryPoints
	res.Effects.Rumors = row.Rumors
	if row.XP > 0 {
		res.Effects.XP = append(res.Effects.XP, xpGrant(m.ID, row.XP))
	}
	if row.InjuryTurns > 0 {
		res.Effects.Injuries = append(res.Effects.Injuries, mutate.InjuryGrant{
			CharacterID: m.ID,
			Injury:      state.Injury{ID: ctx.NewID("injury"), RowID: row.ID, RecoveryTurns: row.InjuryTurns},
		})
	}
	if err := grantItem(ctx, row.Item, &res); err != nil {
		return Result{}, err
	}
	res.log(row.LogKey, "name", m.Name)
	res.Resolved = true
	return res, nil
}

// CampaignEvent turns a campaign event row into effects. Recruit rows are
// left to the caller, which offers a RecruitChoice.
func CampaignEvent(ctx *Context, row tables.EventRow) (Result, error) {
	var res Result
	res.Effects.Credits = row.Credits
	res.Effects.ClampCredits = true
	res.Effects.StoryPoints = row.StoryPoints
	res.Effects.Rumors = row.Rumors
	res.Effects.Debt = row.Debt
	res.Effects.FuelCredits = row.Fuel
	if ctx.Doc.Campaign.CurrentWorld != nil {
		res.Effects.Interdiction = row.Interdiction
	}
	if err := grantItem(ctx, row.Item, &res); err != nil {
		return Result{}, err
	}
	res.log(row.LogKey)
	res.Resolved = true
	return res, nil
}

func grantItem(ctx *Context, defID string, res *Result) error {
	if defID == "" {
		return nil
	}
	if room := stashRoom(ctx); room >= 0 && room <= len(res.Effects.AddItems) {
		res.log("stash.no_room", "item", defID)
		return nil
	}
	it, err := NewItem(ctx, defID)
	if err != nil {
		return err
	}
	res.Effects.AddItems = append(res.Effects.AddItems, it)
	return nil
}

// StartPrecursorChoice rolls two character events for a precursor to
// choose between.
func StartPrecursorChoice(ctx *Context, charID string) (*state.PrecursorEventChoice, error) {
	pc := &state.PrecursorEventChoice{CharacterID: charID}
	for i := 0; i < 2; i++ {
		row, roll, err := ctx.Tables.CharacterEvent.Roll(ctx.Roller)
		if err != nil {
			return nil, err
		}
		pc.Options = append(pc.Options, state.PrecursorOption{Roll: roll, RowID: row.ID})
	}
	return pc, nil
}

// ChoosePrecursorEvent applies the picked option.
func ChoosePrecursorEvent(ctx *Context, pc *state.PrecursorEventChoice, index int) (Result, error) {
	if index < 0 || index >= len(pc.Options) {
		return Result{}, fmt.Errorf("option %d of %d: %w", index, len(pc.Options), ErrSelection)
	}
	row, ok := ctx.Tables.CharacterEventByID(pc.Options[index].RowID)
	if !ok {
		return Result{}, fmt.Errorf("character event %q: %w", pc.Options[index].RowID, ErrUnknownRow)
	}
	return CharacterEvent(ctx, row, pc.CharacterID)
}

// ResolveBribe pays the officials or refuses, which holds the crew on the
// world for a turn.
func ResolveBribe(ctx *Context, b *state.BureaucracyBribe, pay bool) (Result, error) {
	var res Result
	if pay {
		if ctx.Doc.Campaign.Credits < b.Cost {
			return Result{}, fmt.Errorf("bribe costs %d: %w", b.Cost, ErrChoiceUnavailable)
		}
		res.Effects.Credits = -b.Cost
		res.log("bureaucracy.paid", "credits", b.Cost)
	} else {
		res.Effects.Interdiction = 1
		res.log("bureaucracy.refused")
	}
	res.Resolved = true
	return res, nil
}

// SellTradeGoods sells every listed stash trade good for the offered total.
func SellTradeGoods(ctx *Context, sale *state.TradeGoodsSale, sell bool) (Result, error) {
	var res Result
	if sell {
		for _, id := range sale.ItemIDs {
			ref := state.ItemRef{Owner: state.StashOwner, ItemID: id}
			if _, ok := ctx.Doc.LookupItem(ref); !ok {
				return Result{}, fmt.Errorf("stash item %q: %w", id, ErrSelection)
			}
			res.Effects.RemoveItems = append(res.Effects.RemoveItems, ref)
		}
		res.Effects.Credits = sale.Price
		res.log("trade_goods.sold", "count", len(sale.ItemIDs), "credits", res.Effects.Credits)
	} else {
		res.log("trade_goods.kept")
	}
	res.Resolved = true
	return res, nil
}
