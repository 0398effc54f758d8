package mutate

import (
	"fmt"

	"github.com/roach88/driftcrew/internal/state"
)

// MoveItem transfers one item between the stash and a crew member, or
// between two members. The destination slot cap and the shipless stash
// cap are checked before anything moves.
func MoveItem(doc *state.Document, ref state.ItemRef, to string, lim Limits) error {
	item, ok := doc.LookupItem(ref)
	if !ok {
		return fmt.Errorf("item %s/%s: %w", ref.Owner, ref.ItemID, ErrNotFound)
	}
	if ref.Owner == to {
		return nil
	}
	if to == state.StashOwner {
		if doc.Ship == nil && len(doc.Stash.Items)+1 > lim.StashCap {
			return fmt.Errorf("stash full at %d: %w", lim.StashCap, ErrCapacity)
		}
		removeItem(doc, ref)
		doc.Stash.Items = append(doc.Stash.Items, item)
		return nil
	}

	m := doc.Crew.Find(to)
	if m == nil {
		return fmt.Errorf("character %s: %w", to, ErrNotFound)
	}
	slot := m.Equipment.Slot(item.Kind)
	if slot == nil {
		return fmt.Errorf("%s items cannot be carried: %w", item.Kind, ErrCapacity)
	}
	if len(*slot) >= state.SlotCapacity[item.Kind] {
		return fmt.Errorf("%s slot full for %s: %w", item.Kind, m.ID, ErrCapacity)
	}
	removeItem(doc, ref)
	m = doc.Crew.Find(to)
	slot = m.Equipment.Slot(item.Kind)
	*slot = append(*slot, item)
	return nil
}

// FirstStashItem returns the first stash item with defID.
func FirstStashItem(doc *state.Document, defID string) (state.Item, bool) {
	for _, it := range doc.Stash.Items {
		if it.DefID == defID {
			return it, true
		}
	}
	return state.Item{}, false
}
