package events

import (
	"fmt"
	"slices"

	"github.com/roach88/driftcrew/internal/state"
)

// ToggleRef adds ref to selected or removes it if present. Adding past
// limit is rejected and selected is returned unchanged.
func ToggleRef(selected []state.ItemRef, ref state.ItemRef, limit int) ([]state.ItemRef, error) {
	if i := slices.Index(selected, ref); i >= 0 {
		out := slices.Delete(slices.Clone(selected), i, i+1)
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	}
	if len(selected) >= limit {
		return selected, fmt.Errorf("at most %d items may be selected: %w", limit, ErrSelection)
	}
	return append(slices.Clone(selected), ref), nil
}

// FleeLossCount is how many items a shipless crew must discard to flee.
func FleeLossCount(ctx *Context) int {
	return min(ctx.Rates.FleeItemLoss, ctx.Doc.TotalItems())
}

// ToggleFleeItem changes the flee discard selection.
func ToggleFleeItem(ctx *Context, fl *state.FleeItemLoss, ref state.ItemRef) error {
	if _, ok := ctx.Doc.LookupItem(ref); !ok {
		return fmt.Errorf("item %s/%s: %w", ref.Owner, ref.ItemID, ErrSelection)
	}
	sel, err := ToggleRef(fl.Selected, ref, fl.Count)
	if err != nil {
		return err
	}
	fl.Selected = sel
	return nil
}

// CanConfirmFlee reports whether exactly Count items are selected.
func CanConfirmFlee(fl *state.FleeItemLoss) bool {
	return len(fl.Selected) == fl.Count
}

// ConfirmFleeItemLoss discards the selection. The crew keeps no credits.
func ConfirmFleeItemLoss(ctx *Context, fl *state.FleeItemLoss) (Result, error) {
	if !CanConfirmFlee(fl) {
		return Result{}, fmt.Errorf("selected %d of %d: %w", len(fl.Selected), fl.Count, ErrSelection)
	}
	var res Result
	res.Effects.RemoveItems = slices.Clone(fl.Selected)
	res.Effects.Credits = -ctx.Doc.Campaign.Credits
	res.log("flee.items_lost", "count", fl.Count, "credits", ctx.Doc.Campaign.Credits)
	res.Resolved = true
	return res, nil
}

// ToggleSalvage changes what a member keeps after losing the ship. Only
// items from the member's own loadout may be kept, at most cap of them.
func ToggleSalvage(ctx *Context, gc *state.GearChoiceAfterShipDestruction, charID, itemID string, cap int) error {
	m := ctx.Doc.Crew.Find(charID)
	if m == nil {
		return fmt.Errorf("character %q: %w", charID, ErrSelection)
	}
	if _, ok := ctx.Doc.LookupItem(state.ItemRef{Owner: charID, ItemID: itemID}); !ok {
		return fmt.Errorf("item %q is not carried by %s: %w", itemID, m.Name, ErrSelection)
	}
	keep := gc.Keep[charID]
	if i := slices.Index(keep, itemID); i >= 0 {
		keep = slices.Delete(slices.Clone(keep), i, i+1)
	} else {
		if len(keep) >= cap {
			return fmt.Errorf("%s may keep at most %d items: %w", m.Name, cap, ErrSelection)
		}
		keep = append(slices.Clone(keep), itemID)
	}
	if gc.Keep == nil {
		gc.Keep = make(map[string][]string)
	}
	if len(keep) == 0 {
		delete(gc.Keep, charID)
	} else {
		gc.Keep[charID] = keep
	}
	if len(gc.Keep) == 0 {
		gc.Keep = nil
	}
	return nil
}

// SalvageValid reports whether every member's selection is within cap.
func SalvageValid(gc *state.GearChoiceAfterShipDestruction, cap int) bool {
	for _, keep := range gc.Keep {
		if len(keep) > cap {
			return false
		}
	}
	return true
}

// ConfirmSalvage strips every loadout to the kept items and forfeits the
// stash, credits and the ship.
func ConfirmSalvage(ctx *Context, gc *state.GearChoiceAfterShipDestruction, cap int) (Result, error) {
	if !SalvageValid(gc, cap) {
		return Result{}, fmt.Errorf("salvage over cap %d: %w", cap, ErrSelection)
	}
	var res Result
	kept := 0
	for _, m := range ctx.Doc.Crew.Members {
		for _, it := range m.Equipment.All() {
			if slices.Contains(gc.Keep[m.ID], it.ID) {
				kept++
				continue
			}
			res.Effects.RemoveItems = append(res.Effects.RemoveItems, state.ItemRef{Owner: m.ID, ItemID: it.ID})
		}
	}
	for _, it := range ctx.Doc.Stash.Items {
		res.Effects.RemoveItems = append(res.Effects.RemoveItems, state.ItemRef{Owner: state.StashOwner, ItemID: it.ID})
	}
	res.Effects.Credits = -ctx.Doc.Campaign.Credits
	res.Effects.Parts = -ctx.Doc.Stash.Parts
	if ctx.Doc.Ship != nil {
		res.Effects.RemoveShip = true
	}
	res.log("ship.salvaged", "kept", kept)
	res.Resolved = true
	return res, nil
}
