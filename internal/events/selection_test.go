package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/testutil"
)

func TestToggleRef(t *testing.T) {
	a := state.ItemRef{Owner: "ch-1", ItemID: "a"}
	b := state.ItemRef{Owner: "ch-1", ItemID: "b"}

	sel, err := ToggleRef(nil, a, 1)
	require.NoError(t, err)
	assert.Equal(t, []state.ItemRef{a}, sel)

	kept, err := ToggleRef(sel, b, 1)
	assert.True(t, errors.Is(err, ErrSelection))
	assert.Equal(t, sel, kept)

	sel, err = ToggleRef(sel, a, 1)
	require.NoError(t, err)
	assert.Nil(t, sel)
}

func TestFleeItemLoss(t *testing.T) {
	doc := testutil.ShiplessDocument()
	doc.Campaign.Credits = 7
	doc.Stash.Items = []state.Item{testutil.Item("s1", "blade", state.KindWeapon)}
	ctx, _ := newContext(&doc)

	fl := &state.FleeItemLoss{Count: FleeLossCount(ctx)}
	require.Equal(t, 2, fl.Count)

	stash := state.ItemRef{Owner: state.StashOwner, ItemID: "s1"}
	rifle := state.ItemRef{Owner: "ch-1", ItemID: "it-1"}

	require.NoError(t, ToggleFleeItem(ctx, fl, stash))
	assert.False(t, CanConfirmFlee(fl))
	_, err := ConfirmFleeItemLoss(ctx, fl)
	assert.True(t, errors.Is(err, ErrSelection))

	err = ToggleFleeItem(ctx, fl, state.ItemRef{Owner: "ch-2", ItemID: "it-1"})
	assert.True(t, errors.Is(err, ErrSelection))

	require.NoError(t, ToggleFleeItem(ctx, fl, rifle))
	assert.True(t, CanConfirmFlee(fl))

	res, err := ConfirmFleeItemLoss(ctx, fl)
	require.NoError(t, err)
	apply(t, ctx, res)
	assert.Zero(t, doc.Campaign.Credits)
	assert.Zero(t, doc.TotalItems())
}

func TestFleeLossCount_FewItems(t *testing.T) {
	doc := testutil.ShiplessDocument()
	ctx, _ := newContext(&doc)
	assert.Equal(t, 1, FleeLossCount(ctx))
}

func salvageDocument() state.Document {
	doc := testutil.Document()
	ash := doc.Crew.Find("ch-1")
	ash.Equipment.Weapons = []state.Item{
		testutil.Item("w1", "blade", state.KindWeapon),
		testutil.Item("w2", "hand_gun", state.KindWeapon),
		testutil.Item("w3", "shotgun", state.KindWeapon),
	}
	ash.Equipment.Armor = []state.Item{testutil.Item("a1", "frag_vest", state.KindArmor)}
	ash.Equipment.Consumables = []state.Item{testutil.Item("c1", "stim_pack", state.KindConsumable)}
	bex := doc.Crew.Find("ch-2")
	bex.Equipment.Weapons = []state.Item{testutil.Item("w4", "blade", state.KindWeapon)}
	doc.Stash.Items = []state.Item{testutil.Item("s1", "ration_pack", state.KindConsumable)}
	doc.Stash.Parts = 2
	return doc
}

func TestToggleSalvage_CapIsPerMember(t *testing.T) {
	doc := salvageDocument()
	ctx, _ := newContext(&doc)
	gc := &state.GearChoiceAfterShipDestruction{}

	require.NoError(t, ToggleSalvage(ctx, gc, "ch-1", "w1", 2))
	require.NoError(t, ToggleSalvage(ctx, gc, "ch-1", "a1", 2))

	err := ToggleSalvage(ctx, gc, "ch-1", "w2", 2)
	assert.True(t, errors.Is(err, ErrSelection))
	assert.Equal(t, []string{"w1", "a1"}, gc.Keep["ch-1"])

	require.NoError(t, ToggleSalvage(ctx, gc, "ch-2", "w4", 2))
	assert.Equal(t, []string{"w4"}, gc.Keep["ch-2"])

	err = ToggleSalvage(ctx, gc, "ch-2", "w1", 2)
	assert.True(t, errors.Is(err, ErrSelection), "items of another member")

	require.NoError(t, ToggleSalvage(ctx, gc, "ch-1", "w1", 2))
	require.NoError(t, ToggleSalvage(ctx, gc, "ch-1", "w2", 2))
	assert.Equal(t, []string{"a1", "w2"}, gc.Keep["ch-1"])
	assert.True(t, SalvageValid(gc, 2))
}

func TestConfirmSalvage(t *testing.T) {
	doc := salvageDocument()
	ctx, _ := newContext(&doc)
	gc := &state.GearChoiceAfterShipDestruction{}
	require.NoError(t, ToggleSalvage(ctx, gc, "ch-1", "w3", 2))
	require.NoError(t, ToggleSalvage(ctx, gc, "ch-1", "a1", 2))

	res, err := ConfirmSalvage(ctx, gc, 2)
	require.NoError(t, err)
	apply(t, ctx, res)

	assert.Nil(t, doc.Ship)
	assert.Zero(t, doc.Campaign.Credits)
	assert.Zero(t, doc.Stash.Parts)
	assert.Empty(t, doc.Stash.Items)
	ash := doc.Crew.Find("ch-1")
	assert.Equal(t, []state.Item{testutil.Item("w3", "shotgun", state.KindWeapon)}, ash.Equipment.Weapons)
	assert.Len(t, ash.Equipment.Armor, 1)
	assert.Empty(t, ash.Equipment.Consumables)
	assert.Empty(t, doc.Crew.Find("ch-2").Equipment.Weapons)
}

func TestConfirmSalvage_OverCap(t *testing.T) {
	doc := salvageDocument()
	ctx, _ := newContext(&doc)
	gc := &state.GearChoiceAfterShipDestruction{Keep: map[string][]string{"ch-1": {"w1", "w2", "w3"}}}

	assert.False(t, SalvageValid(gc, 2))
	_, err := ConfirmSalvage(ctx, gc, 2)
	assert.True(t, errors.Is(err, ErrSelection))
}
