package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/testutil"
)

func TestCharacterEvent(t *testing.T) {
	tests := []struct {
		name  string
		row   string
		check func(t *testing.T, doc *state.Document)
	}{
		{name: "xp", row: "focused_training", check: func(t *testing.T, doc *state.Document) {
			assert.Equal(t, 1, doc.Crew.Find("ch-2").XP)
		}},
		{name: "injury", row: "bar_brawl", check: func(t *testing.T, doc *state.Document) {
			assert.True(t, doc.Crew.Find("ch-2").InSickBay())
		}},
		{name: "item", row: "gear_tinkering", check: func(t *testing.T, doc *state.Document) {
			require.Len(t, doc.Stash.Items, 1)
			assert.Equal(t, "auto_sensor", doc.Stash.Items[0].DefID)
		}},
		{name: "debt clamps credits", row: "gambling_debt", check: func(t *testing.T, doc *state.Document) {
			assert.Equal(t, 8, doc.Campaign.Credits)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testutil.Document()
			ctx, _ := newContext(&doc)
			row, ok := testTables.CharacterEventByID(tt.row)
			require.True(t, ok)

			res, err := CharacterEvent(ctx, row, "ch-2")
			require.NoError(t, err)
			assert.True(t, res.Resolved)
			apply(t, ctx, res)
			tt.check(t, &doc)
		})
	}

	doc := testutil.Document()
	ctx, _ := newContext(&doc)
	row, _ := testTables.CharacterEventByID("focused_training")
	_, err := CharacterEvent(ctx, row, "ghost")
	assert.True(t, errors.Is(err, ErrSelection))
}

func TestCampaignEvent(t *testing.T) {
	doc := testutil.Document()
	ctx, _ := newContext(&doc)

	for _, e := range testTables.CampaignEvent.Entries() {
		if e.Row.ID != "local_unrest" && e.Row.ID != "lending_shark" {
			continue
		}
		res, err := CampaignEvent(ctx, e.Row)
		require.NoError(t, err)
		apply(t, ctx, res)
	}
	assert.Equal(t, 2, doc.Campaign.Debt)
	assert.Equal(t, 13, doc.Campaign.Credits)
	assert.True(t, doc.Campaign.CurrentWorld.Interdicted())
}

func TestPrecursorChoice(t *testing.T) {
	doc := testutil.Document()
	ctx, src := newContext(&doc, 5, 75)

	pc, err := StartPrecursorChoice(ctx, "ch-3")
	require.NoError(t, err)
	assert.Zero(t, src.Remaining())
	assert.Equal(t, []state.PrecursorOption{
		{Roll: 5, RowID: "focused_training"},
		{Roll: 75, RowID: "life_lesson"},
	}, pc.Options)

	_, err = ChoosePrecursorEvent(ctx, pc, 2)
	assert.True(t, errors.Is(err, ErrSelection))

	res, err := ChoosePrecursorEvent(ctx, pc, 1)
	require.NoError(t, err)
	apply(t, ctx, res)
	assert.Equal(t, 2, doc.Crew.Find("ch-3").XP)
}

func TestResolveBribe(t *testing.T) {
	doc := testutil.Document()
	doc.Campaign.Credits = 1
	ctx, _ := newContext(&doc)
	b := &state.BureaucracyBribe{WorldID: "world-1", Cost: 2}

	_, err := ResolveBribe(ctx, b, true)
	assert.True(t, errors.Is(err, ErrChoiceUnavailable))

	res, err := ResolveBribe(ctx, b, false)
	require.NoError(t, err)
	apply(t, ctx, res)
	assert.Equal(t, 1, doc.Campaign.CurrentWorld.InterdictionTurnsRemaining)

	doc.Campaign.Credits = 5
	res, err = ResolveBribe(ctx, b, true)
	require.NoError(t, err)
	apply(t, ctx, res)
	assert.Equal(t, 3, doc.Campaign.Credits)
}

func TestSellTradeGoods(t *testing.T) {
	doc := testutil.Document()
	doc.Stash.Items = []state.Item{
		testutil.Item("g1", "spice_crate", state.KindTradeGood),
		testutil.Item("g2", "luxury_goods", state.KindTradeGood),
	}
	ctx, _ := newContext(&doc)
	sale := &state.TradeGoodsSale{ItemIDs: []string{"g1", "g2"}, Price: 9}

	res, err := SellTradeGoods(ctx, sale, false)
	require.NoError(t, err)
	assert.Empty(t, res.Effects.RemoveItems)

	res, err = SellTradeGoods(ctx, sale, true)
	require.NoError(t, err)
	apply(t, ctx, res)
	assert.Equal(t, 19, doc.Campaign.Credits)
	assert.Empty(t, doc.Stash.Items)
}
