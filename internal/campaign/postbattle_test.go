package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/tables"
	"github.com/roach88/driftcrew/internal/testutil"
)

func patronReport() state.BattleReport {
	return state.BattleReport{
		Mission:   state.MissionPatron,
		Victory:   true,
		HeldField: true,
		Payment:   5,
		Participants: []state.Participant{
			{CharacterID: "ch-1", Kills: 1, FirstKill: true},
			{CharacterID: "ch-2", Casualty: true},
			{CharacterID: "ch-3", Casualty: true},
		},
	}
}

// postBattleDocument starts in the given step with nothing left to do in
// earlier steps.
func postBattleDocument(step state.PostBattleStep) state.Document {
	doc := testutil.Document()
	doc.Campaign.Phase = state.PhasePostBattle
	doc.Campaign.PostBattle = &state.PostBattleState{Step: step, Report: patronReport()}
	return doc
}

func TestPostBattle_FullFlow(t *testing.T) {
	doc := testutil.Document()
	doc.Crew.Find("ch-4").Class = "medic"
	// finds 40, loot 5, injury 10 then reroll 55, injury 28, purchase 10, event 55
	e, src := newEngine(t, doc, 40, 5, 10, 55, 28, 10, 55)

	require.NoError(t, e.BeginPostBattle(patronReport()))
	pb := e.Campaign().PostBattle
	require.NotNil(t, pb)
	assert.Equal(t, state.PhasePostBattle, e.Campaign().Phase)
	assert.Equal(t, []state.Activity{
		{ID: state.ActivityGetPaid},
		{ID: state.ActivityBattlefieldFinds},
		{ID: state.ActivityGatherLoot},
	}, pb.Activities)
	assert.Len(t, pb.Casualties, 2)
	requireReason(t, e.AdvancePostBattle(), "post_battle.activities_pending")

	// activities
	out, err := e.ResolveActivity(state.ActivityGetPaid)
	require.NoError(t, err)
	assert.Equal(t, "activity.paid", out.Key)
	assert.Equal(t, 15, e.Campaign().Credits)
	_, err = e.ResolveActivity(state.ActivityGetPaid)
	requireReason(t, err, ReasonActivityUnavailable)

	out, err = e.ResolveActivity(state.ActivityBattlefieldFinds)
	require.NoError(t, err)
	assert.Equal(t, "battlefield_finds.found", out.Key)
	require.Equal(t, state.InterruptItemChoice, e.Pending())
	_, err = e.ResolveActivity(state.ActivityGatherLoot)
	requireReason(t, err, ReasonInterruptPending)
	require.NoError(t, e.ResolveItemChoice(state.StashOwner))

	out, err = e.ResolveActivity(state.ActivityGatherLoot)
	require.NoError(t, err)
	assert.Equal(t, "gather_loot.nothing", out.Key)
	require.NoError(t, e.AdvancePostBattle())

	// injuries
	r, err := e.ResolveAndApplyInjury("ch-2")
	require.NoError(t, err)
	assert.Equal(t, tables.InjuryDead, r.Outcome)
	assert.Equal(t, state.CasualtyDead, r.Status)

	r, err = e.RerollInjury("ch-2")
	require.NoError(t, err)
	assert.Equal(t, "minor_injuries", r.RowID)
	assert.Equal(t, state.CasualtyInjured, r.Status)
	assert.Equal(t, 1, r.RecoveryTurns)
	_, err = e.RerollInjury("ch-2")
	requireReason(t, err, ReasonRerollUnavailable)

	r, err = e.ResolveAndApplyInjury("ch-3")
	require.NoError(t, err)
	assert.Equal(t, state.CasualtyAwaitingSurgery, r.Status)
	requireReason(t, e.AdvancePostBattle(), "post_battle.injuries_pending")
	require.NoError(t, e.PaySurgery("ch-3"))
	assert.Equal(t, 11, e.Campaign().Credits)
	require.NoError(t, e.AdvancePostBattle())

	// experience
	requireReason(t, e.AdvancePostBattle(), "post_battle.experience_pending")
	awards, err := e.ApplyExperience()
	require.NoError(t, err)
	require.Len(t, awards, 3)
	assert.Equal(t, 4, awards[0].Total)
	assert.Equal(t, 2, awards[1].Total)
	_, err = e.ApplyExperience()
	requireReason(t, err, ReasonAlreadyDone)
	require.NoError(t, e.AdvancePostBattle())

	// training
	requireReason(t, e.EnrollTraining("ch-1", "chef"), ReasonUnknownCourse)
	requireReason(t, e.EnrollTraining("ch-1", "pilot"), "resource.insufficient")
	require.NoError(t, e.AdvancePostBattle())

	// purchase
	_, err = e.PurchaseItemRoll("bazaar")
	requireReason(t, err, ReasonUnknownTable)
	item, err := e.PurchaseItemRoll(tables.PurchaseGear)
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.Equal(t, 8, e.Campaign().Credits)
	require.NoError(t, e.AdvancePostBattle())

	// campaign event
	requireReason(t, e.AdvancePostBattle(), "post_battle.event_pending")
	out, err = e.RollCampaignEvent()
	require.NoError(t, err)
	assert.Equal(t, "campaign_event.quiet_week", out.Key)
	require.NoError(t, e.AdvancePostBattle())

	// character event
	requireReason(t, e.AdvancePostBattle(), "post_battle.character_event_pending")
	require.NoError(t, e.SkipCharacterEvent())
	require.NoError(t, e.AdvancePostBattle())

	got := snapshot(t, e)
	c := got.Campaign
	assert.Equal(t, 3, c.Turn)
	assert.Equal(t, state.PhaseUpkeep, c.Phase)
	assert.Nil(t, c.PostBattle)
	assert.Len(t, got.Crew.Members, 4)
	assert.Empty(t, got.Crew.Find("ch-2").Injuries, "one turn of recovery passes at turn start")
	assert.Equal(t, 1, got.Crew.Find("ch-3").Injuries[0].RecoveryTurns)
	assert.Equal(t, 4, got.Crew.Find("ch-1").XP)
	assert.Len(t, got.Stash.Items, 1)
	assert.Zero(t, src.Remaining())
}

func TestBeginPostBattle_Guards(t *testing.T) {
	e, _ := newEngine(t, openTasksDocument())
	requireReason(t, e.BeginPostBattle(patronReport()), ReasonTasksNotFinalized)

	e, _ = newEngine(t, testutil.Document())
	report := patronReport()
	report.Participants = append(report.Participants, state.Participant{CharacterID: "ch-9"})
	requireReason(t, e.BeginPostBattle(report), ReasonUnknownParticipant)

	doc := testutil.Document()
	doc.Campaign.CurrentWorld.InterdictionTurnsRemaining = 1
	e, _ = newEngine(t, doc)
	requireReason(t, e.BeginPostBattle(patronReport()), ReasonInterdicted)
}

func TestPostBattle_DeathRemovedOnLeavingInjuries(t *testing.T) {
	doc := postBattleDocument(state.StepInjuries)
	doc.Campaign.PostBattle.Casualties = []state.Casualty{{CharacterID: "ch-2", Status: state.CasualtyPending}}
	e, _ := newEngine(t, doc, 3)

	r, err := e.ResolveAndApplyInjury("ch-2")
	require.NoError(t, err)
	assert.Equal(t, "gruesome_fate", r.RowID)
	_, err = e.RerollInjury("ch-2")
	requireReason(t, err, ReasonRerollUnavailable)
	saved := snapshot(t, e)
	assert.NotNil(t, saved.Crew.Find("ch-2"))

	require.NoError(t, e.AdvancePostBattle())
	got := snapshot(t, e)
	assert.Nil(t, got.Crew.Find("ch-2"))
	assert.Len(t, got.Crew.Members, 3)
	assert.Contains(t, logKeys(got), "crew.died")
}

func TestRerollInjury_Shuttle(t *testing.T) {
	doc := postBattleDocument(state.StepInjuries)
	doc.Ship.Components = []string{ComponentShuttle}
	doc.Campaign.PostBattle.Casualties = []state.Casualty{{CharacterID: "ch-2", Status: state.CasualtyPending}}
	e, _ := newEngine(t, doc, 8, 70)

	_, err := e.ResolveAndApplyInjury("ch-2")
	require.NoError(t, err)
	r, err := e.RerollInjury("ch-2")
	require.NoError(t, err)
	assert.Equal(t, tables.InjuryKnockedOut, r.Outcome)
	assert.Equal(t, state.CasualtyUnharmed, r.Status)
}

func TestRerollInjury_DeadMedicCannotHelp(t *testing.T) {
	doc := postBattleDocument(state.StepInjuries)
	doc.Crew.Find("ch-3").Class = "medic"
	doc.Campaign.PostBattle.Casualties = []state.Casualty{
		{CharacterID: "ch-2", Status: state.CasualtyDead, RowID: "death"},
		{CharacterID: "ch-3", Status: state.CasualtyDead, RowID: "death"},
	}
	e, _ := newEngine(t, doc)

	assert.Equal(t, ReasonRerollUnavailable, CanRerollInjury(&e.doc, "ch-2").Reason)
}

func TestInjury_Outcomes(t *testing.T) {
	tests := []struct {
		name   string
		rolls  []int
		status state.CasualtyStatus
		check  func(t *testing.T, doc state.Document)
	}{
		{name: "equipment loss", rolls: []int{22, 0}, status: state.CasualtyUnharmed, check: func(t *testing.T, doc state.Document) {
			assert.Zero(t, doc.Crew.Find("ch-1").Equipment.Count())
		}},
		{name: "serious injury rolls recovery", rolls: []int{40, 2}, status: state.CasualtyInjured, check: func(t *testing.T, doc state.Document) {
			assert.Equal(t, 3, doc.Crew.Find("ch-1").Injuries[0].RecoveryTurns)
		}},
		{name: "hard knocks", rolls: []int{90}, status: state.CasualtyUnharmed, check: func(t *testing.T, doc state.Document) {
			assert.Equal(t, 1, doc.Crew.Find("ch-1").XP)
		}},
		{name: "miraculous escape", rolls: []int{18}, status: state.CasualtyUnharmed, check: func(t *testing.T, doc state.Document) {
			assert.Empty(t, doc.Crew.Find("ch-1").Injuries)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := postBattleDocument(state.StepInjuries)
			doc.Campaign.PostBattle.Casualties = []state.Casualty{{CharacterID: "ch-1", Status: state.CasualtyPending}}
			e, src := newEngine(t, doc, tt.rolls...)

			r, err := e.ResolveAndApplyInjury("ch-1")
			require.NoError(t, err)
			assert.Equal(t, tt.status, r.Status)
			tt.check(t, snapshot(t, e))
			assert.Zero(t, src.Remaining())

			_, err = e.ResolveAndApplyInjury("ch-1")
			requireReason(t, err, ReasonNoPendingCasualty)
		})
	}
}

func TestAcceptPenalty(t *testing.T) {
	doc := postBattleDocument(state.StepInjuries)
	doc.Campaign.PostBattle.Casualties = []state.Casualty{{CharacterID: "ch-2", Status: state.CasualtyPending}}
	e, _ := newEngine(t, doc, 33)

	r, err := e.ResolveAndApplyInjury("ch-2")
	require.NoError(t, err)
	assert.Equal(t, "broken_bones", r.RowID)

	require.NoError(t, e.AcceptPenalty("ch-2"))
	got := snapshot(t, e)
	assert.Equal(t, 2, got.Crew.Find("ch-2").Stats.Toughness)
	assert.Equal(t, state.CasualtyPenaltyAccepted, got.Campaign.PostBattle.Casualties[0].Status)
	requireReason(t, e.PaySurgery("ch-2"), ReasonNoSurgery)
}

func TestPaySurgery_Unaffordable(t *testing.T) {
	doc := postBattleDocument(state.StepInjuries)
	doc.Campaign.Credits = 2
	doc.Campaign.PostBattle.Casualties = []state.Casualty{{CharacterID: "ch-2", Status: state.CasualtyAwaitingSurgery, RowID: "crippling_wound", SurgeryCost: 4}}
	e, _ := newEngine(t, doc)

	requireReason(t, e.PaySurgery("ch-2"), ReasonInsufficientCredits)
}

func TestEnrollTraining(t *testing.T) {
	doc := postBattleDocument(state.StepTraining)
	doc.Crew.Find("ch-2").XP = 7
	e, _ := newEngine(t, doc)

	require.NoError(t, e.EnrollTraining("ch-2", "medic"))
	got := snapshot(t, e)
	assert.Equal(t, "medic", got.Crew.Find("ch-2").Class)
	assert.Equal(t, 2, got.Crew.Find("ch-2").XP)

	requireReason(t, e.EnrollTraining("ch-2", "medic"), ReasonAlreadyTrained)
	requireReason(t, e.EnrollTraining("ch-9", "pilot"), ReasonUnknownCharacter)
}

func TestPurchaseItemRoll_Found(t *testing.T) {
	e, _ := newEngine(t, postBattleDocument(state.StepPurchase), 90)

	item, err := e.PurchaseItemRoll(tables.PurchaseMilitary)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "plasma_rifle", item.DefID)
	assert.Equal(t, state.InterruptItemChoice, e.Pending())
	assert.Equal(t, 7, e.Campaign().Credits)

	require.NoError(t, e.ResolveItemChoice("ch-2"))
	assert.Equal(t, 1, e.Campaign().PostBattle.PurchaseRolls)
}

func TestRollCampaignEvent_Recruit(t *testing.T) {
	e, _ := newEngine(t, postBattleDocument(state.StepEvent), 35)

	out, err := e.RollCampaignEvent()
	require.NoError(t, err)
	assert.Equal(t, "campaign_event.friendly_face", out.Key)
	require.Equal(t, state.InterruptRecruitChoice, e.Pending())
	rc := e.Campaign().Pending.(*state.RecruitChoice)
	assert.Equal(t, "Juno", rc.Candidate.Name)
	assert.Equal(t, "character-102", rc.Candidate.ID)

	require.NoError(t, e.ResolveRecruit(true))
	assert.Len(t, snapshot(t, e).Crew.Members, 5)
	require.NoError(t, e.AdvancePostBattle())
	assert.Equal(t, state.StepCharacterEvent, e.Campaign().PostBattle.Step)
}

func TestRollCampaignEvent_Effects(t *testing.T) {
	e, _ := newEngine(t, postBattleDocument(state.StepEvent), 15)

	_, err := e.RollCampaignEvent()
	require.NoError(t, err)
	assert.Equal(t, 13, e.Campaign().Credits)
	assert.Equal(t, 2, e.Campaign().Debt)
	_, err = e.RollCampaignEvent()
	requireReason(t, err, ReasonAlreadyDone)
}

func TestResolveCharacterEvent(t *testing.T) {
	e, _ := newEngine(t, postBattleDocument(state.StepCharacterEvent), 85)

	out, err := e.ResolveCharacterEvent("ch-2")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "character_event.moment_of_fate", out.Key)
	assert.Equal(t, 3, e.Campaign().StoryPoints)
	requireReason(t, e.SkipCharacterEvent(), ReasonAlreadyDone)
}

func TestResolveCharacterEvent_Precursor(t *testing.T) {
	doc := postBattleDocument(state.StepCharacterEvent)
	doc.Crew.Find("ch-3").Race = state.RacePrecursor
	e, _ := newEngine(t, doc, 5, 75)

	out, err := e.ResolveCharacterEvent("ch-3")
	require.NoError(t, err)
	assert.Nil(t, out)
	require.Equal(t, state.InterruptPrecursorEventChoice, e.Pending())
	requireReason(t, e.AdvancePostBattle(), ReasonInterruptPending)

	_, err = e.ChoosePrecursorEvent(2)
	requireReason(t, err, "event.invalid_selection")

	o, err := e.ChoosePrecursorEvent(1)
	require.NoError(t, err)
	assert.Equal(t, "character_event.life_lesson", o.Key)
	taught := snapshot(t, e)
	assert.Equal(t, 2, taught.Crew.Find("ch-3").XP)
	require.NoError(t, e.AdvancePostBattle())
	assert.Equal(t, state.PhaseUpkeep, e.Campaign().Phase)
}

func TestInvasion_CheckAndRepel(t *testing.T) {
	doc := postBattleDocument(state.StepActivities)
	doc.Campaign.CurrentWorld.Traits = []string{TraitInvasionThreat}
	doc.Campaign.PostBattle.Activities = []state.Activity{{ID: state.ActivityInvasionCheck}}
	e, _ := newEngine(t, doc, 2)

	out, err := e.ResolveActivity(state.ActivityInvasionCheck)
	require.NoError(t, err)
	assert.Equal(t, "invasion.imminent", out.Key)
	assert.True(t, e.Campaign().CurrentWorld.HasTrait(TraitInvaded))

	doc = testutil.Document()
	doc.Campaign.CurrentWorld.Traits = []string{TraitInvaded}
	e, _ = newEngine(t, doc)
	report := state.BattleReport{Mission: state.MissionInvasion, Victory: true}
	require.NoError(t, e.BeginPostBattle(report))
	assert.False(t, e.Campaign().CurrentWorld.HasTrait(TraitInvaded))
	assert.Contains(t, logKeys(snapshot(t, e)), "invasion.repelled")
}
