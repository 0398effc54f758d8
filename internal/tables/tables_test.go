package tables

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/driftcrew/internal/dice"
	"github.com/roach88/driftcrew/internal/state"
)

func TestTradeRollFiveIsSellCargo(t *testing.T) {
	s := Default()

	for _, roll := range []int{4, 5, 6} {
		row, err := s.Trade.Resolve(roll)
		require.NoError(t, err)
		assert.Equal(t, "sell_cargo", row.ID)
		assert.Equal(t, TradeSimple, row.Type)
		assert.Equal(t, 2, row.Credits)
	}
}

func TestEveryTableCoversItsDomain(t *testing.T) {
	s := Default()

	check := func(name string, lo, hi int, resolve func(int) error) {
		t.Run(name, func(t *testing.T) {
			for v := lo; v <= hi; v++ {
				require.NoError(t, resolve(v), "value %d", v)
			}
			assert.Error(t, resolve(hi+1))
		})
	}
	check("trade", 1, 100, func(v int) error { _, err := s.Trade.Resolve(v); return err })
	check("travel", 1, 100, func(v int) error { _, err := s.Travel.Resolve(v); return err })
	check("injury", 1, 100, func(v int) error { _, err := s.Injury.Resolve(v); return err })
	check("character_event", 1, 100, func(v int) error { _, err := s.CharacterEvent.Resolve(v); return err })
	check("campaign_event", 1, 100, func(v int) error { _, err := s.CampaignEvent.Resolve(v); return err })
	check("escape_pod", 1, 6, func(v int) error { _, err := s.EscapePod.Resolve(v); return err })
	check("patrol", 1, 6, func(v int) error { _, err := s.Patrol.Resolve(v); return err })
	for name, tbl := range s.Purchase {
		check(name, 1, 100, func(v int) error { _, err := tbl.Resolve(v); return err })
	}
}

func TestTradeRowsDecodeTypedFields(t *testing.T) {
	s := Default()

	gamble, ok := s.TradeByID("gambling_den")
	require.True(t, ok)
	assert.Equal(t, TradeGamble, gamble.Type)
	assert.Equal(t, 6, gamble.GambleDieSides)
	assert.Equal(t, 5, gamble.GambleTarget)
	assert.True(t, gamble.Type.Automatic())

	choice, ok := s.TradeByID("fuel_deal")
	require.True(t, ok)
	require.Len(t, choice.Choices, 2)
	opt, ok := choice.Option("buy_fuel")
	require.True(t, ok)
	assert.Equal(t, 2, opt.Cost)
	assert.Equal(t, 3, opt.Fuel)
	assert.False(t, choice.Type.Automatic())

	itemChoice, ok := s.TradeByID("weapon_dealer")
	require.True(t, ok)
	assert.Equal(t, []string{"hand_gun", "blade", "shotgun"}, itemChoice.Items)
	assert.Equal(t, 1, itemChoice.ItemsToReceive)

	_, ok = s.TradeByID("nope")
	assert.False(t, ok)
}

func TestTravelAndInjuryRows(t *testing.T) {
	s := Default()

	row, err := s.Travel.Resolve(1)
	require.NoError(t, err)
	assert.Equal(t, state.EventAsteroids, row.ID)

	inj, ok := s.InjuryByID("crippling_wound")
	require.True(t, ok)
	assert.Equal(t, InjurySurgery, inj.Outcome)
	assert.Equal(t, state.StatSpeed, inj.PenaltyStat)
	assert.Equal(t, 4, inj.SurgeryCost)

	gear, err := s.Purchase[PurchaseGear].Resolve(1)
	require.NoError(t, err)
	assert.Empty(t, gear.Item)

	ev, ok := s.CharacterEventByID("gambling_debt")
	require.True(t, ok)
	assert.Equal(t, -2, ev.Credits)
}

func replaceSource(t *testing.T, old, new string) []byte {
	t.Helper()
	src := string(Source())
	require.Contains(t, src, old)
	return []byte(strings.Replace(src, old, new, 1))
}

func TestLoadRejectsConstraintViolations(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
	}{
		{
			name: "gamble without target",
			src:  replaceSource(t, "gambleDieSides: 6, gambleTarget: 5,", "gambleDieSides: 6,"),
		},
		{
			name: "unknown trade type",
			src:  replaceSource(t, `id: "windfall", type: "simple"`, `id: "windfall", type: "lottery"`),
		},
		{
			name: "surgery without cost",
			src:  replaceSource(t, "recoveryTurns: 3, surgeryCost: 3, penaltyStat: \"toughness\"", "recoveryTurns: 3, penaltyStat: \"toughness\""),
		},
		{
			name: "inverted range",
			src:  replaceSource(t, "{low: 5, high: 5, result: \"info\"", "{low: 5, high: 4, result: \"info\""),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src, "bad.cue")
			require.Error(t, err)
			var le *LoadError
			assert.True(t, errors.As(err, &le))
		})
	}
}

func TestLoadRejectsGap(t *testing.T) {
	src := replaceSource(t, `{low: 7, high: 10, id: "local_gossip"`, `{low: 8, high: 10, id: "local_gossip"`)

	_, err := Load(src, "gap.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trade")
	assert.Contains(t, err.Error(), dice.ErrMalformed.Error())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.cue")
	require.NoError(t, os.WriteFile(path, Source(), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Trade.Len(), s.Trade.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}
