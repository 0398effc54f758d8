package campaign

import "github.com/roach88/driftcrew/internal/state"

// phaseTransitions lists the phases reachable from each phase.
//
// actions -> upkeep is the turn boundary of EndTurn. post_battle -> upkeep
// is the turn boundary after the last post-battle step: the turn counter
// increments and control reaches actions only through FinalizeUpkeep, so
// every turn, including one that follows a battle, pays upkeep exactly once.
var phaseTransitions = map[state.Phase][]state.Phase{
	state.PhaseUpkeep:     {state.PhaseActions},
	state.PhaseActions:    {state.PhasePostBattle, state.PhaseUpkeep},
	state.PhasePostBattle: {state.PhaseUpkeep},
}

// postBattleSteps is the fixed step order. The step after the last one
// ends the turn.
var postBattleSteps = []state.PostBattleStep{
	state.StepActivities,
	state.StepInjuries,
	state.StepExperience,
	state.StepTraining,
	state.StepPurchase,
	state.StepEvent,
	state.StepCharacterEvent,
}

func canTransition(from, to state.Phase) bool {
	for _, p := range phaseTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// nextStep returns the step following s. last is true for the final step
// and known is false for a step outside the table.
func nextStep(s state.PostBattleStep) (next state.PostBattleStep, last, known bool) {
	for i, step := range postBattleSteps {
		if step != s {
			continue
		}
		if i+1 == len(postBattleSteps) {
			return "", true, true
		}
		return postBattleSteps[i+1], false, true
	}
	return "", false, false
}

// stepSatisfied reports whether the post-battle step s may be left.
func stepSatisfied(pb *state.PostBattleState) (bool, string) {
	switch pb.Step {
	case state.StepActivities:
		for _, a := range pb.Activities {
			if !a.Done {
				return false, "post_battle.activities_pending"
			}
		}
	case state.StepInjuries:
		for _, c := range pb.Casualties {
			if !c.Status.Terminal() {
				return false, "post_battle.injuries_pending"
			}
		}
	case state.StepExperience:
		if !pb.ExperienceApplied {
			return false, "post_battle.experience_pending"
		}
	case state.StepEvent:
		if !pb.EventRolled {
			return false, "post_battle.event_pending"
		}
	case state.StepCharacterEvent:
		if !pb.CharacterEventDone {
			return false, "post_battle.character_event_pending"
		}
	}
	return true, ""
}
