package command

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/driftcrew/internal/campaign"
	"github.com/roach88/driftcrew/internal/dice"
	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, doc state.Document, src dice.Source) *campaign.Engine {
	t.Helper()
	e, err := campaign.New(doc, src,
		campaign.WithIDs(testutil.SequentialIDs{}),
		campaign.WithLogger(quietLogger()),
	)
	require.NoError(t, err)
	return e
}

func TestNames_SortedAndComplete(t *testing.T) {
	names := Names()
	assert.True(t, sort.StringsAreSorted(names))

	for _, name := range []string{
		"available", "quote_upkeep", "travel_choices",
		"finalize_upkeep", "move_item", "confirm_gear_up",
		"finalize_tasks", "trade", "busy_markets", "resolve_trade_choice",
		"dismiss_trade", "sell_item", "buy_ship_component", "sp_for_credits",
		"sp_for_xp", "spend_xp_for_upgrade", "resolve_recruit",
		"resolve_item_choice", "end_turn",
		"travel", "resolve_travel_event", "resolve_bribe",
		"resolve_trade_goods_sale", "flee", "toggle_flee_item",
		"confirm_flee_item_loss", "resolve_flee_character_event",
		"toggle_salvage", "confirm_salvage",
		"begin_post_battle", "resolve_activity", "resolve_injury",
		"reroll_injury", "pay_surgery", "accept_penalty", "apply_experience",
		"enroll_training", "purchase_item_roll", "roll_campaign_event",
		"resolve_character_event", "choose_precursor_event",
		"skip_character_event", "advance_post_battle",
	} {
		spec, ok := Lookup(name)
		if assert.True(t, ok, "missing command %q", name) {
			assert.Equal(t, name, spec.Name)
			assert.NotEmpty(t, spec.Summary)
		}
	}
	assert.Len(t, Specs(), len(names))
}

func TestNames_AvailableGuardsAreCommands(t *testing.T) {
	e := newEngine(t, testutil.Document(), testutil.NewScriptedSource())
	for _, g := range e.Available() {
		_, ok := Lookup(g.Command)
		assert.True(t, ok, "guard %q has no command", g.Command)
	}
}

func TestExecute_Applies(t *testing.T) {
	e := newEngine(t, testutil.Document(), testutil.NewScriptedSource())

	out, err := Execute(e, "sp_for_credits", nil)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, 13, e.Campaign().Credits)
	assert.Equal(t, 1, e.Campaign().StoryPoints)

	_, err = Execute(e, "sp_for_xp", json.RawMessage(`{"characterId":"ch-2"}`))
	require.NoError(t, err)
	assert.Equal(t, 0, e.Campaign().StoryPoints)
}

func TestExecute_Query(t *testing.T) {
	e := newEngine(t, testutil.Document(), testutil.NewScriptedSource())

	out, err := Execute(e, "available", json.RawMessage(`{}`))
	require.NoError(t, err)
	guards, ok := out.([]campaign.NamedGuard)
	require.True(t, ok)
	assert.NotEmpty(t, guards)

	spec, _ := Lookup("available")
	assert.True(t, spec.Query)
}

func TestExecute_Cases(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    string
		want    Case
		wantErr error
	}{
		{"unknown command", "warp_drive", `{}`, CaseRejected, ErrUnknownCommand},
		{"unknown field", "trade", `{"characterId":"ch-1","bogus":1}`, CaseRejected, ErrInvalidArgs},
		{"missing required", "trade", `{}`, CaseRejected, ErrInvalidArgs},
		{"malformed json", "sell_item", `{"owner":`, CaseRejected, ErrInvalidArgs},
		{"guard closed", "finalize_tasks", ``, CaseRejected, nil},
		{"ok", "sp_for_credits", `null`, CaseOK, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, testutil.Document(), testutil.NewScriptedSource())
			_, err := Execute(e, tt.command, json.RawMessage(tt.args))
			assert.Equal(t, tt.want, Classify(err))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, CaseOK, Classify(nil))
	assert.Equal(t, CaseRejected, Classify(&campaign.PreconditionError{Reason: "guard.wrong_phase"}))
	assert.Equal(t, CaseFatal, Classify(&campaign.InvariantError{Code: campaign.ErrCodeInterruptConflict}))
	assert.Equal(t, CaseFatal, Classify(errors.New("disk on fire")))
}
