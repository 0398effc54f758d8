package events

import (
	"fmt"
	"slices"

	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/tables"
)

// TradeSelection is the player input for interactive trade results.
type TradeSelection struct {
	OptionID    string   `json:"optionId,omitempty"`
	CharacterID string   `json:"characterId,omitempty"`
	ItemIDs     []string `json:"itemIds,omitempty"`
}

// ResolveTrade applies a trade result once and marks tc resolved. A
// TradeChoice that is already resolved yields an empty Result, so a
// repeated submission is a no-op. Automatic types ignore sel.
func ResolveTrade(ctx *Context, tc *state.TradeChoice, row tables.TradeRow, sel TradeSelection) (Result, error) {
	if tc.Resolved {
		return Result{}, nil
	}
	if row.ID != tc.RowID {
		return Result{}, fmt.Errorf("trade row %q does not match %q: %w", row.ID, tc.RowID, ErrUnknownRow)
	}

	var (
		res Result
		err error
	)
	switch row.Type {
	case tables.TradeSimple:
		res.Effects.Credits = row.Credits
		res.Effects.StoryPoints = row.StoryPoints
		res.Effects.Rumors = row.Rumors
		res.Effects.FuelCredits = row.Fuel
		res.log(row.LogKey, "credits", row.Credits)
	case tables.TradeItemRoll:
		err = tradeItemRoll(ctx, row, &res)
	case tables.TradeRecruit:
		if len(ctx.Doc.Crew.Members)+len(res.Effects.AddCrew) >= ctx.Rates.CrewCap {
			res.log("trade.crew_full")
			break
		}
		c := NewRecruit(ctx)
		res.Effects.AddCrew = []state.Character{c}
		res.log(row.LogKey, "name", c.Name)
	case tables.TradeGamble:
		roll := ctx.Roller.Roll(row.GambleDieSides)
		if roll >= row.GambleTarget {
			res.Effects.Credits = row.Credits
			res.log(row.LogKey+".won", "roll", roll, "credits", row.Credits)
		} else {
			res.Effects.Credits = -row.GambleStake
			res.Effects.ClampCredits = true
			res.log(row.LogKey+".lost", "roll", roll, "credits", row.GambleStake)
		}
	case tables.TradeChoice:
		opt, ok := row.Option(sel.OptionID)
		if !ok {
			return Result{}, fmt.Errorf("option %q: %w", sel.OptionID, ErrSelection)
		}
		res.Effects.Credits = opt.Credits - opt.Cost
		res.Effects.StoryPoints = opt.StoryPoints
		res.Effects.Rumors = opt.Rumors
		res.Effects.FuelCredits = opt.Fuel
		res.log(opt.LogKey, "cost", opt.Cost)
	case tables.TradeItemChoice:
		err = tradeItemChoice(ctx, row, sel, &res)
	case tables.TradeXPChoice:
		m := ctx.Doc.Crew.Find(sel.CharacterID)
		if m == nil {
			return Result{}, fmt.Errorf("character %q: %w", sel.CharacterID, ErrSelection)
		}
		res.Effects.XP = append(res.Effects.XP, xpGrant(m.ID, row.XP))
		res.log(row.LogKey, "name", m.Name, "xp", row.XP)
	case tables.TradeSellChoice:
		err = tradeSell(ctx, row, sel, &res)
	default:
		return Result{}, fmt.Errorf("trade type %q: %w", row.Type, ErrUnknownRow)
	}
	if err != nil {
		return Result{}, err
	}
	tc.Resolved = true
	if n := len(res.Outcomes); n > 0 {
		o := res.Outcomes[n-1]
		tc.Outcome = &o
	}
	res.Resolved = true
	return res, nil
}

func tradeItemRoll(ctx *Context, row tables.TradeRow, res *Result) error {
	tbl, ok := ctx.Tables.Purchase[row.Table]
	if !ok {
		return fmt.Errorf("purchase table %q: %w", row.Table, ErrUnknownRow)
	}
	found, roll, err := tbl.Roll(ctx.Roller)
	if err != nil {
		return err
	}
	if found.Item == "" {
		res.log("trade.nothing_found", "roll", roll)
		return nil
	}
	if stashRoom(ctx) == 0 {
		res.log("trade.no_room", "item", found.Item)
		return nil
	}
	it, err := NewItem(ctx, found.Item)
	if err != nil {
		return err
	}
	res.Effects.AddItems = append(res.Effects.AddItems, it)
	res.log(row.LogKey, "item", found.Item, "roll", roll)
	return nil
}

func tradeItemChoice(ctx *Context, row tables.TradeRow, sel TradeSelection, res *Result) error {
	if len(sel.ItemIDs) != row.ItemsToReceive {
		return fmt.Errorf("choose %d items, got %d: %w", row.ItemsToReceive, len(sel.ItemIDs), ErrSelection)
	}
	seen := make(map[string]bool)
	for _, id := range sel.ItemIDs {
		if !slices.Contains(row.Items, id) || seen[id] {
			return fmt.Errorf("item %q: %w", id, ErrSelection)
		}
		seen[id] = true
		it, err := NewItem(ctx, id)
		if err != nil {
			return err
		}
		res.Effects.AddItems = append(res.Effects.AddItems, it)
		res.log(row.LogKey, "item", id)
	}
	return nil
}

func tradeSell(ctx *Context, row tables.TradeRow, sel TradeSelection, res *Result) error {
	if len(sel.ItemIDs) > row.SellLimit {
		return fmt.Errorf("sell at most %d items: %w", row.SellLimit, ErrSelection)
	}
	total := 0
	for _, id := range sel.ItemIDs {
		ref := state.ItemRef{Owner: state.StashOwner, ItemID: id}
		it, ok := ctx.Doc.LookupItem(ref)
		if !ok || slices.Contains(res.Effects.RemoveItems, ref) {
			return fmt.Errorf("stash item %q: %w", id, ErrSelection)
		}
		def, ok := ctx.Catalog.Lookup(it.Kind, it.DefID)
		if !ok {
			return fmt.Errorf("catalog item %q: %w", it.DefID, ErrUnknownRow)
		}
		total += ctx.Rates.SellPrice(def.Value, row.SellBonus)
		res.Effects.RemoveItems = append(res.Effects.RemoveItems, ref)
	}
	res.Effects.Credits = total
	res.log(row.LogKey, "count", len(sel.ItemIDs), "credits", total)
	return nil
}
