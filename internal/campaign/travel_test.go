package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/driftcrew/internal/events"
	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/testutil"
)

func TestTravel_UneventfulArrives(t *testing.T) {
	e, src := newEngine(t, testutil.Document(), 80)

	require.NoError(t, e.Travel(nextWorld))
	got := snapshot(t, e)
	assert.Equal(t, "world-2", got.Campaign.CurrentWorld.ID)
	assert.Len(t, got.Campaign.VisitedWorlds, 2)
	assert.Equal(t, 5, got.Campaign.Credits)
	assert.Nil(t, got.Campaign.Pending)
	assert.Contains(t, logKeys(got), "travel.arrived")
	assert.Zero(t, src.Remaining())

	requireReason(t, e.Travel(state.World{ID: "world-3", Name: "Oru"}), ReasonUsedThisTurn)
}

func TestTravel_Guards(t *testing.T) {
	doc := testutil.Document()
	doc.Campaign.CurrentWorld.InterdictionTurnsRemaining = 1
	e, _ := newEngine(t, doc)
	requireReason(t, e.Travel(nextWorld), ReasonInterdicted)

	e, _ = newEngine(t, testutil.Document())
	requireReason(t, e.Travel(state.World{}), ReasonNoDestination)
}

func TestTravel_ShiplessBuysPassage(t *testing.T) {
	e, src := newEngine(t, testutil.ShiplessDocument())

	require.NoError(t, e.Travel(nextWorld))
	assert.Equal(t, 6, e.Campaign().Credits)
	assert.Equal(t, "world-2", e.Campaign().CurrentWorld.ID)
	assert.Zero(t, src.Consumed())
}

func TestTravel_RevisitKeepsWorldState(t *testing.T) {
	doc := testutil.Document()
	doc.Campaign.VisitedWorlds = append(doc.Campaign.VisitedWorlds,
		state.World{ID: "world-2", Name: "Kessa", Traits: []string{TraitInvasionThreat}})
	e, _ := newEngine(t, doc, 80)

	require.NoError(t, e.Travel(state.World{ID: "world-2", Name: "Kessa"}))
	got := snapshot(t, e)
	assert.Equal(t, []string{TraitInvasionThreat}, got.Campaign.CurrentWorld.Traits)
	assert.Len(t, got.Campaign.VisitedWorlds, 2)
}

func TestTravel_EscapePodEvent(t *testing.T) {
	e, _ := newEngine(t, testutil.Document(), 40)

	require.NoError(t, e.Travel(nextWorld))
	assert.Equal(t, state.InterruptTravelEvent, e.Pending())

	choices, err := e.TravelChoices()
	require.NoError(t, err)
	assert.Equal(t, []events.Choice{events.ChoiceRescue, events.ChoiceIgnore}, choices)

	err = e.ResolveTravelEvent(events.Action{Choice: events.ChoiceContinue})
	requireReason(t, err, "event.choice_unavailable")

	require.NoError(t, e.ResolveTravelEvent(events.Action{Choice: events.ChoiceIgnore}))
	choices, err = e.TravelChoices()
	require.NoError(t, err)
	assert.Equal(t, []events.Choice{events.ChoiceContinue}, choices)

	require.NoError(t, e.ResolveTravelEvent(events.Action{Choice: events.ChoiceContinue}))
	assert.Equal(t, state.InterruptKind(""), e.Pending())
	assert.Equal(t, "world-2", e.Campaign().CurrentWorld.ID)

	_, err = e.TravelChoices()
	requireReason(t, err, ReasonWrongInterrupt)
}

func TestTravel_BureaucracyBribe(t *testing.T) {
	dest := state.World{ID: "world-2", Name: "Kessa", Traits: []string{TraitBureaucracy}}

	t.Run("pay", func(t *testing.T) {
		e, _ := newEngine(t, testutil.Document(), 80)
		require.NoError(t, e.Travel(dest))
		assert.Equal(t, state.InterruptBureaucracyBribe, e.Pending())

		require.NoError(t, e.ResolveBribe(true))
		assert.Equal(t, 3, e.Campaign().Credits)
		assert.False(t, e.Campaign().CurrentWorld.Interdicted())
	})

	t.Run("refuse", func(t *testing.T) {
		e, _ := newEngine(t, testutil.Document(), 80)
		require.NoError(t, e.Travel(dest))

		require.NoError(t, e.ResolveBribe(false))
		assert.Equal(t, 5, e.Campaign().Credits)
		assert.Equal(t, 1, e.Campaign().CurrentWorld.InterdictionTurnsRemaining)
	})
}

func TestTravel_TradeGoodsOffered(t *testing.T) {
	doc := testutil.Document()
	doc.Stash.Items = []state.Item{
		testutil.Item("g1", "spice_crate", state.KindTradeGood),
		testutil.Item("g2", "machine_parts", state.KindTradeGood),
		testutil.Item("s1", "blade", state.KindWeapon),
	}
	e, _ := newEngine(t, doc, 80)

	require.NoError(t, e.Travel(nextWorld))
	require.Equal(t, state.InterruptTradeGoodsSale, e.Pending())
	sale := e.Campaign().Pending.(*state.TradeGoodsSale)
	assert.Equal(t, []string{"g1", "g2"}, sale.ItemIDs)
	assert.Equal(t, 7, sale.Price)

	require.NoError(t, e.ResolveTradeGoodsSale(true))
	got := snapshot(t, e)
	assert.Equal(t, 12, got.Campaign.Credits)
	require.Len(t, got.Stash.Items, 1)
	assert.Equal(t, "s1", got.Stash.Items[0].ID)
}

func TestTravel_ShipDestroyedSalvage(t *testing.T) {
	doc := testutil.Document()
	doc.Ship.Hull = 2
	ash := doc.Crew.Find("ch-1")
	ash.Equipment.Weapons = []state.Item{
		testutil.Item("w1", "blade", state.KindWeapon),
		testutil.Item("w2", "hand_gun", state.KindWeapon),
		testutil.Item("w3", "shotgun", state.KindWeapon),
	}
	ash.Equipment.Armor = []state.Item{testutil.Item("a1", "frag_vest", state.KindArmor)}
	ash.Equipment.Consumables = []state.Item{testutil.Item("c1", "stim_pack", state.KindConsumable)}
	doc.Crew.Find("ch-2").Equipment.Weapons = []state.Item{testutil.Item("w4", "blade", state.KindWeapon)}
	doc.Stash.Items = []state.Item{testutil.Item("s1", "ration_pack", state.KindConsumable)}
	doc.Stash.Parts = 2
	e, _ := newEngine(t, doc, 70)

	require.NoError(t, e.Travel(nextWorld))
	require.Equal(t, state.InterruptGearChoice, e.Pending())
	assert.Equal(t, 3, e.Campaign().Credits, "a damaged hull pays the emergency surcharge")

	require.NoError(t, e.ToggleSalvage("ch-1", "w1"))
	require.NoError(t, e.ToggleSalvage("ch-1", "a1"))
	requireReason(t, e.ToggleSalvage("ch-1", "w3"), "event.invalid_selection")
	require.NoError(t, e.ToggleSalvage("ch-2", "w4"))
	requireReason(t, e.ToggleSalvage("ch-2", "w1"), "event.invalid_selection")

	require.NoError(t, e.ConfirmSalvage())
	got := snapshot(t, e)
	assert.Nil(t, got.Ship)
	assert.Zero(t, got.Campaign.Credits)
	assert.Zero(t, got.Stash.Parts)
	assert.Empty(t, got.Stash.Items)
	assert.Equal(t, 3, got.TotalItems())
	assert.Equal(t, []state.Item{testutil.Item("w1", "blade", state.KindWeapon)}, got.Crew.Find("ch-1").Equipment.Weapons)
	assert.Equal(t, "world-2", got.Campaign.CurrentWorld.ID)
	assert.Nil(t, got.Campaign.Pending)
}

func TestFlee_ShiplessItemLoss(t *testing.T) {
	doc := testutil.ShiplessDocument()
	doc.Campaign.Credits = 7
	doc.Stash.Items = []state.Item{testutil.Item("s1", "blade", state.KindWeapon)}
	e, src := newEngine(t, doc, 0, 25)

	require.NoError(t, e.Flee(nextWorld))
	require.Equal(t, state.InterruptFleeItemLoss, e.Pending())
	assert.Equal(t, 2, e.Campaign().Pending.(*state.FleeItemLoss).Count)

	require.NoError(t, e.ToggleFleeItem(state.ItemRef{Owner: state.StashOwner, ItemID: "s1"}))
	assert.False(t, CanConfirmFleeItemLoss(&e.doc).Allowed)
	requireReason(t, e.ConfirmFleeItemLoss(), ReasonFleeSelection)

	require.NoError(t, e.ToggleFleeItem(state.ItemRef{Owner: "ch-1", ItemID: "it-1"}))
	assert.True(t, CanConfirmFleeItemLoss(&e.doc).Allowed)
	require.NoError(t, e.ConfirmFleeItemLoss())

	got := snapshot(t, e)
	assert.Zero(t, got.TotalItems())
	assert.Zero(t, got.Campaign.Credits)
	require.Equal(t, state.InterruptFleeCharacterEvent, e.Pending())
	assert.Equal(t, "ch-1", got.Campaign.Pending.(*state.FleeCharacterEvent).CharacterID)

	out, err := e.ResolveFleeCharacterEvent()
	require.NoError(t, err)
	assert.Equal(t, "character_event.side_hustle", out.Key)
	assert.Equal(t, 2, e.Campaign().Credits)
	assert.Equal(t, "world-2", e.Campaign().CurrentWorld.ID)
	assert.Zero(t, src.Remaining())
}

func TestFlee_IgnoresInterdiction(t *testing.T) {
	doc := testutil.Document()
	doc.Campaign.CurrentWorld.InterdictionTurnsRemaining = 2
	e, _ := newEngine(t, doc)

	require.NoError(t, e.Flee(nextWorld))
	assert.Equal(t, 5, e.Campaign().Credits)
	assert.Equal(t, "world-2", e.Campaign().CurrentWorld.ID)
	requireReason(t, e.Flee(nextWorld), ReasonUsedThisTurn)
}

func TestFlee_FromInvasionGearUp(t *testing.T) {
	doc := testutil.Document()
	doc.Campaign.CurrentWorld.Traits = []string{TraitInvaded}
	doc.Campaign.Pending = &state.InvasionBattleGearUp{WorldID: "world-1"}
	e, _ := newEngine(t, doc)

	requireReason(t, e.Travel(nextWorld), ReasonInterruptPending)
	require.NoError(t, e.Flee(nextWorld))
	got := snapshot(t, e)
	assert.Nil(t, got.Campaign.Pending)
	assert.Contains(t, logKeys(got), "invasion.fled")
	assert.Equal(t, []string{TraitInvaded}, got.Campaign.VisitedWorlds[0].Traits)
}
