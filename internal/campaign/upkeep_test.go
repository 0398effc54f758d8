package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/testutil"
)

func TestFinalizeUpkeep_Affordability(t *testing.T) {
	tests := []struct {
		name    string
		credits int
		reason  string
		left    int
	}{
		{name: "short by one", credits: 3, reason: ReasonUpkeepUnaffordable, left: 3},
		{name: "exact", credits: 4, left: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := upkeepDocument()
			doc.Campaign.Credits = tt.credits
			e, _ := newEngine(t, doc)

			quote, err := e.QuoteUpkeep(UpkeepRequest{})
			require.NoError(t, err)
			assert.Equal(t, 4, quote.Total)

			bill, err := e.FinalizeUpkeep(UpkeepRequest{})
			if tt.reason != "" {
				requireReason(t, err, tt.reason)
				assert.Equal(t, state.PhaseUpkeep, e.Campaign().Phase)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 4, bill.Total)
				assert.Equal(t, state.PhaseActions, e.Campaign().Phase)
				assert.True(t, e.Campaign().UpkeepPaidThisTurn)
			}
			assert.Equal(t, tt.left, e.Campaign().Credits)
		})
	}
}

func TestFinalizeUpkeep_RationPackDiscount(t *testing.T) {
	doc := upkeepDocument()
	doc.Stash.Items = []state.Item{testutil.Item("r1", "ration_pack", state.KindConsumable)}
	e, _ := newEngine(t, doc)

	bill, err := e.FinalizeUpkeep(UpkeepRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, bill.Upkeep)

	got := snapshot(t, e)
	assert.Equal(t, 7, got.Campaign.Credits)
	assert.Empty(t, got.Stash.Items)
}

func TestFinalizeUpkeep_DebtRepairsAndMedical(t *testing.T) {
	doc := upkeepDocument()
	doc.Campaign.Credits = 20
	doc.Campaign.Debt = 5
	doc.Ship.Hull = 25
	doc.Stash.Parts = 2
	doc.Crew.Find("ch-2").Injuries = []state.Injury{{ID: "inj-1", RowID: "serious_injury", RecoveryTurns: 3}}
	e, _ := newEngine(t, doc)

	bill, err := e.FinalizeUpkeep(UpkeepRequest{Debt: 2, Repairs: 4, MedicalBayTarget: "ch-2"})
	require.NoError(t, err)
	assert.Equal(t, 3, bill.Upkeep, "sick bay members cost no upkeep")
	assert.Equal(t, 2, bill.Repair.PartsUsed)
	assert.Equal(t, 2, bill.Repair.Credits)
	assert.Equal(t, 4, bill.Medical)
	assert.Equal(t, 11, bill.Total)

	got := snapshot(t, e)
	assert.Equal(t, 9, got.Campaign.Credits)
	assert.Equal(t, 3, got.Campaign.Debt)
	assert.Zero(t, got.Stash.Parts)
	assert.Equal(t, 29, got.Ship.Hull)
	assert.Equal(t, 2, got.Crew.Find("ch-2").Injuries[0].RecoveryTurns)
}

func TestFinalizeUpkeep_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  UpkeepRequest
	}{
		{name: "overpaid debt", req: UpkeepRequest{Debt: 1}},
		{name: "negative repairs", req: UpkeepRequest{Repairs: -1}},
		{name: "healthy sick bay target", req: UpkeepRequest{MedicalBayTarget: "ch-1"}},
		{name: "unknown sick bay target", req: UpkeepRequest{MedicalBayTarget: "ch-9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEngine(t, upkeepDocument())
			_, err := e.FinalizeUpkeep(tt.req)
			requireReason(t, err, ReasonUpkeepInvalid)
			assert.Equal(t, 10, e.Campaign().Credits)
		})
	}
}

func TestFinalizeUpkeep_WrongPhase(t *testing.T) {
	e, _ := newEngine(t, testutil.Document())
	_, err := e.FinalizeUpkeep(UpkeepRequest{})
	requireReason(t, err, ReasonWrongPhase)
}

func TestFinalizeUpkeep_InvadedWorldOpensGearUp(t *testing.T) {
	doc := upkeepDocument()
	doc.Campaign.CurrentWorld.Traits = []string{TraitInvaded}
	e, _ := newEngine(t, doc)

	_, err := e.FinalizeUpkeep(UpkeepRequest{})
	require.NoError(t, err)
	assert.Equal(t, state.InterruptInvasionGearUp, e.Pending())

	requireReason(t, e.FinalizeTasks(), ReasonInterruptPending)
	require.NoError(t, e.MoveItem(state.ItemRef{Owner: "ch-1", ItemID: "it-1"}, "ch-2"))
	require.NoError(t, e.ConfirmGearUp())
	assert.Equal(t, state.InterruptKind(""), e.Pending())

	got := snapshot(t, e)
	assert.Len(t, got.Crew.Find("ch-2").Equipment.Weapons, 1)
	assert.Contains(t, logKeys(got), "invasion.standing_ground")
}

func TestFinalizeTasks(t *testing.T) {
	e, _ := newEngine(t, openTasksDocument())
	requireReason(t, e.Travel(nextWorld), ReasonTasksNotFinalized)

	require.NoError(t, e.FinalizeTasks())
	assert.True(t, e.Campaign().TasksFinalized)
	requireReason(t, e.FinalizeTasks(), ReasonTasksFinalized)
}

func TestEndTurn_StartsNextTurn(t *testing.T) {
	doc := testutil.Document()
	doc.Campaign.Debt = 5
	doc.Campaign.TradedThisTurn = true
	doc.Campaign.ItemsSoldThisTurn = 2
	doc.Campaign.CurrentWorld.InterdictionTurnsRemaining = 2
	doc.Crew.Find("ch-2").Injuries = []state.Injury{{ID: "inj-1", RowID: "minor_injuries", RecoveryTurns: 1}}
	doc.Crew.Find("ch-3").Injuries = []state.Injury{{ID: "inj-2", RowID: "broken_bones", RecoveryTurns: 3}}
	e, _ := newEngine(t, doc)

	require.NoError(t, e.EndTurn())

	got := snapshot(t, e)
	c := got.Campaign
	assert.Equal(t, 3, c.Turn)
	assert.Equal(t, state.PhaseUpkeep, c.Phase)
	assert.False(t, c.TasksFinalized)
	assert.False(t, c.TradedThisTurn)
	assert.Zero(t, c.ItemsSoldThisTurn)
	assert.Equal(t, 6, c.Debt)
	assert.Equal(t, 1, c.CurrentWorld.InterdictionTurnsRemaining)
	assert.Empty(t, got.Crew.Find("ch-2").Injuries)
	assert.Equal(t, 2, got.Crew.Find("ch-3").Injuries[0].RecoveryTurns)
	assert.Contains(t, logKeys(got), "turn.started")

	requireReason(t, e.EndTurn(), ReasonWrongPhase)
}
