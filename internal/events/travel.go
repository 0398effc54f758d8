package events

import (
	"fmt"

	"github.com/roach88/driftcrew/internal/mutate"
	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/tables"
)

// StartTravel enters the machine selected by a travel table row.
func StartTravel(ctx *Context, row tables.TravelRow) (state.EventState, Result, error) {
	var res Result
	res.log(row.LogKey)

	switch row.ID {
	case state.EventAsteroids:
		return &state.AsteroidsState{Stage: state.StageInitial}, res, nil

	case state.EventPatrolShip:
		patrol, roll, err := ctx.Tables.Patrol.Roll(ctx.Roller)
		if err != nil {
			return nil, res, err
		}
		ev := &state.PatrolShipState{
			Stage:           state.StageConfiscate,
			Roll:            roll,
			ConfiscateCount: min(patrol.Confiscate, ctx.Doc.TotalItems()),
		}
		res.log(patrol.LogKey, "count", ev.ConfiscateCount)
		return ev, res, nil

	case state.EventEscapePod:
		return &state.EscapePodState{Stage: state.StageInitial}, res, nil

	case state.EventDistressCall:
		return &state.DistressCallState{Stage: state.StageInitial}, res, nil

	case state.EventDriveTrouble, state.EventUneventful:
		ev := &state.SimpleEventState{ID: row.ID, Stage: state.StageResolved}
		if row.HullDamage > 0 && ctx.Doc.Ship != nil {
			res.Effects.HullDamage = row.HullDamage
			ev.Outcome = &state.Outcome{Key: row.LogKey + ".damage", Params: state.NewParams("hull", row.HullDamage)}
			res.Outcomes = append(res.Outcomes, *ev.Outcome)
		}
		res.Resolved = true
		return ev, res, nil
	}
	return nil, res, fmt.Errorf("travel event %q: %w", row.ID, ErrUnknownEvent)
}

// LegalChoices lists what the player may submit at the current stage.
// Choices whose preconditions are unmet (not enough story points, a
// selection of the wrong size) are omitted.
func LegalChoices(ctx *Context, ev state.EventState) ([]Choice, error) {
	switch e := ev.(type) {
	case *state.AsteroidsState:
		switch e.Stage {
		case state.StageInitial:
			return []Choice{ChoiceAvoid, ChoiceThrough}, nil
		case state.StageRerollChoice:
			if ctx.Doc.Campaign.StoryPoints > 0 {
				return []Choice{ChoiceReroll, ChoiceThrough}, nil
			}
			return []Choice{ChoiceThrough}, nil
		case state.StageSavvyChecks:
			return []Choice{ChoiceSavvyCheck}, nil
		case state.StageResolved:
			return []Choice{ChoiceContinue}, nil
		}
	case *state.PatrolShipState:
		switch e.Stage {
		case state.StageConfiscate:
			var out []Choice
			if e.ConfiscateCount > 0 {
				out = append(out, ChoiceToggle)
			}
			if len(e.Selected) == e.ConfiscateCount {
				out = append(out, ChoiceConfirm)
			}
			return out, nil
		case state.StageResolved:
			return []Choice{ChoiceContinue}, nil
		}
	case *state.EscapePodState:
		switch e.Stage {
		case state.StageInitial:
			return []Choice{ChoiceRescue, ChoiceIgnore}, nil
		case state.StageOutcome:
			return []Choice{ChoiceAccept, ChoiceDecline}, nil
		case state.StageResolved:
			return []Choice{ChoiceContinue}, nil
		}
	case *state.DistressCallState:
		switch e.Stage {
		case state.StageInitial:
			return []Choice{ChoiceRespond, ChoiceIgnore}, nil
		case state.StageSavvyCheck:
			return []Choice{ChoiceSavvyCheck}, nil
		case state.StageResolved:
			return []Choice{ChoiceContinue}, nil
		}
	case *state.SimpleEventState:
		if e.Stage == state.StageResolved {
			return []Choice{ChoiceContinue}, nil
		}
	default:
		return nil, fmt.Errorf("event state %T: %w", ev, ErrUnknownEvent)
	}
	return nil, fmt.Errorf("%s stage %q: %w", ev.EventID(), ev.CurrentStage(), ErrUnknownStage)
}

// StepTravel advances ev in place. ChoiceContinue is handled by the caller
// once the machine reports StageResolved.
func StepTravel(ctx *Context, ev state.EventState, act Action) (Result, error) {
	if _, err := LegalChoices(ctx, ev); err != nil {
		return Result{}, err
	}
	switch e := ev.(type) {
	case *state.AsteroidsState:
		return stepAsteroids(ctx, e, act)
	case *state.PatrolShipState:
		return stepPatrol(ctx, e, act)
	case *state.EscapePodState:
		return stepEscapePod(ctx, e, act)
	case *state.DistressCallState:
		return stepDistress(ctx, e, act)
	}
	return Result{}, unavailable(act.Choice, ev.CurrentStage())
}

func pilotBonus(doc *state.Document) int {
	for _, m := range doc.Crew.Members {
		if m.Class == ClassPilot && !m.InSickBay() {
			return 1
		}
	}
	return 0
}

func stepAsteroids(ctx *Context, e *state.AsteroidsState, act Action) (Result, error) {
	var res Result
	avoid := func() {
		roll := ctx.Roller.D6()
		e.AvoidRolls = append(e.AvoidRolls, roll)
		if roll+pilotBonus(ctx.Doc) >= ctx.Rates.AvoidTarget {
			e.Stage = state.StageResolved
			e.Outcome = &state.Outcome{Key: "asteroids.avoided", Params: state.NewParams("roll", roll)}
			res.Outcomes = append(res.Outcomes, *e.Outcome)
			res.Resolved = true
			return
		}
		res.log("asteroids.avoid_failed", "roll", roll)
		if e.Stage == state.StageInitial {
			e.Stage = state.StageRerollChoice
		} else {
			e.Stage = state.StageSavvyChecks
		}
	}

	switch {
	case e.Stage == state.StageInitial && act.Choice == ChoiceAvoid:
		avoid()
	case (e.Stage == state.StageInitial || e.Stage == state.StageRerollChoice) && act.Choice == ChoiceThrough:
		e.Stage = state.StageSavvyChecks
		res.log("asteroids.through")
	case e.Stage == state.StageRerollChoice && act.Choice == ChoiceReroll:
		if ctx.Doc.Campaign.StoryPoints < 1 {
			return Result{}, fmt.Errorf("reroll needs a story point: %w", ErrChoiceUnavailable)
		}
		res.Effects.StoryPoints = -1
		avoid()
	case e.Stage == state.StageSavvyChecks && act.Choice == ChoiceSavvyCheck:
		m, err := activeMember(ctx.Doc, act.CharacterID)
		if err != nil {
			return Result{}, err
		}
		roll := ctx.Roller.D6()
		e.Checks = append(e.Checks, roll)
		if roll+m.Stats.Savvy >= ctx.Rates.SavvyTarget {
			res.log("asteroids.check_passed", "name", m.Name, "roll", roll)
		} else {
			dmg := ctx.Roller.D6()
			e.HullDamage += dmg
			res.Effects.HullDamage = dmg
			res.log("asteroids.check_failed", "name", m.Name, "roll", roll, "hull", dmg)
		}
		destroyed := ctx.Doc.Ship != nil && ctx.Doc.Ship.Hull-res.Effects.HullDamage <= 0
		if len(e.Checks) >= ctx.Rates.SavvyChecks || destroyed {
			e.Stage = state.StageResolved
			e.Outcome = &state.Outcome{Key: "asteroids.crossed", Params: state.NewParams("hull", e.HullDamage)}
			res.Outcomes = append(res.Outcomes, *e.Outcome)
			res.Resolved = true
		}
	default:
		return Result{}, unavailable(act.Choice, e.Stage)
	}
	return res, nil
}

func stepPatrol(ctx *Context, e *state.PatrolShipState, act Action) (Result, error) {
	var res Result
	switch {
	case e.Stage == state.StageConfiscate && act.Choice == ChoiceToggle:
		if act.Item == nil {
			return Result{}, fmt.Errorf("toggle needs an item: %w", ErrSelection)
		}
		if _, ok := ctx.Doc.LookupItem(*act.Item); !ok {
			return Result{}, fmt.Errorf("item %s/%s: %w", act.Item.Owner, act.Item.ItemID, ErrSelection)
		}
		sel, err := ToggleRef(e.Selected, *act.Item, e.ConfiscateCount)
		if err != nil {
			return Result{}, err
		}
		e.Selected = sel
	case e.Stage == state.StageConfiscate && act.Choice == ChoiceConfirm:
		if len(e.Selected) != e.ConfiscateCount {
			return Result{}, fmt.Errorf("selected %d of %d: %w", len(e.Selected), e.ConfiscateCount, ErrSelection)
		}
		res.Effects.RemoveItems = append(res.Effects.RemoveItems, e.Selected...)
		e.Stage = state.StageResolved
		e.Outcome = &state.Outcome{Key: "patrol.confiscated", Params: state.NewParams("count", e.ConfiscateCount)}
		res.Outcomes = append(res.Outcomes, *e.Outcome)
		res.Resolved = true
	default:
		return Result{}, unavailable(act.Choice, e.Stage)
	}
	return res, nil
}

func stepEscapePod(ctx *Context, e *state.EscapePodState, act Action) (Result, error) {
	var res Result
	resolve := func(key string, kv ...any) {
		e.Stage = state.StageResolved
		e.Outcome = &state.Outcome{Key: key, Params: state.NewParams(kv...)}
		res.Outcomes = append(res.Outcomes, *e.Outcome)
		res.Resolved = true
	}

	switch {
	case e.Stage == state.StageInitial && act.Choice == ChoiceIgnore:
		resolve("escape_pod.ignored")
	case e.Stage == state.StageInitial && act.Choice == ChoiceRescue:
		row, roll, err := ctx.Tables.EscapePod.Roll(ctx.Roller)
		if err != nil {
			return Result{}, err
		}
		e.Roll = roll
		e.Result = row.Result
		if row.Result == "recruit" {
			if len(ctx.Doc.Crew.Members) >= ctx.Rates.CrewCap {
				resolve("escape_pod.crew_full")
				return res, nil
			}
			c := NewRecruit(ctx)
			e.Candidate = &c
			e.Stage = state.StageOutcome
			res.log(row.LogKey, "name", c.Name)
			return res, nil
		}
		res.Effects.Credits = row.Credits
		res.Effects.ClampCredits = true
		res.Effects.Rumors = row.Rumors
		res.Effects.StoryPoints = row.StoryPoints
		resolve(row.LogKey, "credits", row.Credits, "rumors", row.Rumors)
	case e.Stage == state.StageOutcome && act.Choice == ChoiceAccept:
		if e.Candidate == nil {
			return Result{}, fmt.Errorf("escape pod outcome without candidate: %w", ErrUnknownStage)
		}
		res.Effects.AddCrew = []state.Character{*e.Candidate}
		resolve("escape_pod.recruited", "name", e.Candidate.Name)
	case e.Stage == state.StageOutcome && act.Choice == ChoiceDecline:
		resolve("escape_pod.declined")
	default:
		return Result{}, unavailable(act.Choice, e.Stage)
	}
	return res, nil
}

func stepDistress(ctx *Context, e *state.DistressCallState, act Action) (Result, error) {
	var res Result
	switch {
	case e.Stage == state.StageInitial && act.Choice == ChoiceIgnore:
		e.Stage = state.StageResolved
		e.Outcome = &state.Outcome{Key: "distress_call.ignored"}
		res.Outcomes = append(res.Outcomes, *e.Outcome)
		res.Resolved = true
	case e.Stage == state.StageInitial && act.Choice == ChoiceRespond:
		e.Stage = state.StageSavvyCheck
		res.log("distress_call.responding")
	case e.Stage == state.StageSavvyCheck && act.Choice == ChoiceSavvyCheck:
		m, err := activeMember(ctx.Doc, act.CharacterID)
		if err != nil {
			return Result{}, err
		}
		e.ResponderID = m.ID
		e.Roll = ctx.Roller.D6()
		if e.Roll+m.Stats.Savvy >= ctx.Rates.SavvyTarget {
			reward := ctx.Roller.D6()
			res.Effects.Credits = reward
			e.Outcome = &state.Outcome{Key: "distress_call.rescued", Params: state.NewParams("name", m.Name, "credits", reward)}
		} else if ctx.Doc.Ship != nil {
			dmg := ctx.Roller.D6()
			res.Effects.HullDamage = dmg
			e.Outcome = &state.Outcome{Key: "distress_call.ambush", Params: state.NewParams("name", m.Name, "hull", dmg)}
		} else {
			res.Effects.Injuries = []mutate.InjuryGrant{{CharacterID: m.ID, Injury: state.Injury{
				ID: ctx.NewID("injury"), RowID: "distress_call", RecoveryTurns: 1,
			}}}
			e.Outcome = &state.Outcome{Key: "distress_call.wounded", Params: state.NewParams("name", m.Name)}
		}
		e.Stage = state.StageResolved
		res.Outcomes = append(res.Outcomes, *e.Outcome)
		res.Resolved = true
	default:
		return Result{}, unavailable(act.Choice, e.Stage)
	}
	return res, nil
}
