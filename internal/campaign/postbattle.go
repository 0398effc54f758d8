package campaign

import (
	"fmt"
	"slices"

	"github.com/roach88/driftcrew/internal/events"
	"github.com/roach88/driftcrew/internal/ledger"
	"github.com/roach88/driftcrew/internal/mutate"
	"github.com/roach88/driftcrew/internal/state"
	"github.com/roach88/driftcrew/internal/tables"
)

// ComponentShuttle lets a crew without a surviving medic reroll a death.
const ComponentShuttle = "shuttle"

// Post-battle reason keys.
const (
	ReasonUnknownParticipant  = "post_battle.unknown_participant"
	ReasonActivityUnavailable = "post_battle.activity_unavailable"
	ReasonNoPendingCasualty   = "post_battle.no_pending_casualty"
	ReasonNoSurgery           = "post_battle.no_surgery_pending"
	ReasonRerollUnavailable   = "injury.reroll_unavailable"
	ReasonAlreadyDone         = "post_battle.already_done"
	ReasonUnknownCourse       = "training.unknown_course"
	ReasonAlreadyTrained      = "training.already_trained"
	ReasonUnknownTable        = "purchase.unknown_table"
)

// Courses are the classes a character can train into.
var Courses = []string{events.ClassPilot, events.ClassMedic}

// BeginPostBattle enters post-battle resolution for a finished battle.
func (e *Engine) BeginPostBattle(report state.BattleReport) error {
	guard := CanBeginPostBattle(&e.doc)
	if guard.Allowed {
		seen := make(map[string]bool)
		for _, p := range report.Participants {
			if seen[p.CharacterID] || e.doc.Crew.Find(p.CharacterID) == nil {
				guard = deny(ReasonUnknownParticipant)
				break
			}
			seen[p.CharacterID] = true
		}
	}
	return e.run("begin_post_battle", guard, func(t *tx) error {
		if err := t.transition(state.PhasePostBattle); err != nil {
			return err
		}
		c := t.campaign()
		pb := &state.PostBattleState{Step: state.StepActivities, Report: report}
		pb.Activities = append(pb.Activities, state.Activity{ID: state.ActivityGetPaid})
		if report.HeldField {
			pb.Activities = append(pb.Activities, state.Activity{ID: state.ActivityBattlefieldFinds})
		}
		if report.Victory {
			pb.Activities = append(pb.Activities, state.Activity{ID: state.ActivityGatherLoot})
		}
		if c.CurrentWorld.HasTrait(TraitInvasionThreat) {
			pb.Activities = append(pb.Activities, state.Activity{ID: state.ActivityInvasionCheck})
		}
		for _, p := range report.Participants {
			if p.Casualty {
				pb.Casualties = append(pb.Casualties, state.Casualty{CharacterID: p.CharacterID, Status: state.CasualtyPending})
			}
		}
		if report.Mission == state.MissionInvasion && report.Victory && c.CurrentWorld != nil {
			c.CurrentWorld.Traits = slices.DeleteFunc(c.CurrentWorld.Traits, func(s string) bool { return s == TraitInvaded })
			if len(c.CurrentWorld.Traits) == 0 {
				c.CurrentWorld.Traits = nil
			}
			t.logf("invasion.repelled", "world", c.CurrentWorld.Name)
		}
		c.PostBattle = pb
		t.logf("post_battle.started", "mission", report.Mission, "victory", report.Victory)
		return nil
	})
}

func activityIndex(pb *state.PostBattleState, id state.ActivityID) int {
	return slices.IndexFunc(pb.Activities, func(a state.Activity) bool { return a.ID == id })
}

// ResolveActivity resolves one displayed post-battle activity.
func (e *Engine) ResolveActivity(id state.ActivityID) (state.Outcome, error) {
	guard := inStep(&e.doc, state.StepActivities)
	if guard.Allowed {
		pb := e.doc.Campaign.PostBattle
		if i := activityIndex(pb, id); i < 0 || pb.Activities[i].Done {
			guard = deny(ReasonActivityUnavailable)
		}
	}
	var out state.Outcome
	err := e.run("resolve_activity", guard, func(t *tx) error {
		c := t.campaign()
		pb := c.PostBattle
		switch id {
		case state.ActivityGetPaid:
			pay := pb.Report.Payment
			if err := t.effects(mutate.Effects{Credits: pay}); err != nil {
				return err
			}
			out = state.Outcome{Key: "activity.paid", Params: state.NewParams("credits", pay)}
		case state.ActivityBattlefieldFinds:
			o, err := t.rollFind(tables.PurchaseGear, string(id))
			if err != nil {
				return err
			}
			out = o
		case state.ActivityGatherLoot:
			o, err := t.rollFind(tables.PurchaseMilitary, string(id))
			if err != nil {
				return err
			}
			out = o
		case state.ActivityInvasionCheck:
			roll := t.roller().D6()
			out = state.Outcome{Key: "invasion.averted", Params: state.NewParams("roll", roll)}
			if w := c.CurrentWorld; roll <= 2 && w != nil {
				if !w.HasTrait(TraitInvaded) {
					w.Traits = append(w.Traits, TraitInvaded)
				}
				out = state.Outcome{Key: "invasion.imminent", Params: state.NewParams("roll", roll)}
			}
		default:
			return fmt.Errorf("activity %q: %w", id, events.ErrUnknownEvent)
		}
		i := activityIndex(pb, id)
		pb.Activities[i].Done = true
		pb.Activities[i].Outcome = &out
		t.log(out.Key, out.Params)
		return nil
	})
	return out, err
}

// rollFind rolls a purchase table and offers any item found.
func (t *tx) rollFind(table, source string) (state.Outcome, error) {
	tbl, ok := t.e.tables.Purchase[table]
	if !ok {
		return state.Outcome{}, fmt.Errorf("purchase table %q: %w", table, events.ErrUnknownRow)
	}
	row, roll, err := tbl.Roll(t.roller())
	if err != nil {
		return state.Outcome{}, err
	}
	if row.Item == "" {
		return state.Outcome{Key: source + ".nothing", Params: state.NewParams("roll", roll)}, nil
	}
	it, err := events.NewItem(t.events(), row.Item)
	if err != nil {
		return state.Outcome{}, err
	}
	if err := t.setInterrupt(&state.ItemChoice{Item: it, Source: source}); err != nil {
		return state.Outcome{}, err
	}
	return state.Outcome{Key: source + ".found", Params: state.NewParams("item", it.DefID, "roll", roll)}, nil
}

// InjuryResult reports one injury roll.
type InjuryResult struct {
	CharacterID   string               `json:"characterId"`
	Roll          int                  `json:"roll"`
	RowID         string               `json:"rowId"`
	Outcome       tables.InjuryOutcome `json:"outcome"`
	Status        state.CasualtyStatus `json:"status"`
	RecoveryTurns int                  `json:"recoveryTurns,omitempty"`
	Key           string               `json:"key"`
}

func casualtyIndex(pb *state.PostBattleState, charID string) int {
	return slices.IndexFunc(pb.Casualties, func(c state.Casualty) bool { return c.CharacterID == charID })
}

// casualtyGuard requires charID to be a casualty in status want.
func casualtyGuard(doc *state.Document, charID string, want state.CasualtyStatus, reason string) GuardResult {
	if g := inStep(doc, state.StepInjuries); !g.Allowed {
		return g
	}
	pb := doc.Campaign.PostBattle
	if i := casualtyIndex(pb, charID); i < 0 || pb.Casualties[i].Status != want {
		return deny(reason)
	}
	return allow()
}

// ResolveAndApplyInjury rolls and applies the injury of one casualty.
// Deaths are recorded now and the character leaves the crew when the
// injury step ends, so a reroll can still save them.
func (e *Engine) ResolveAndApplyInjury(charID string) (InjuryResult, error) {
	var out InjuryResult
	guard := casualtyGuard(&e.doc, charID, state.CasualtyPending, ReasonNoPendingCasualty)
	err := e.run("resolve_injury", guard, func(t *tx) error {
		r, err := t.rollInjury(charID)
		out = r
		return err
	})
	return out, err
}

// CanRerollInjury allows one reroll of a death result when a medic other
// than the casualty survived the battle, or failing that when the ship
// carries a shuttle.
func CanRerollInjury(doc *state.Document, charID string) GuardResult {
	if g := casualtyGuard(doc, charID, state.CasualtyDead, ReasonRerollUnavailable); !g.Allowed {
		return g
	}
	pb := doc.Campaign.PostBattle
	if pb.Casualties[casualtyIndex(pb, charID)].Rerolled {
		return deny(ReasonRerollUnavailable)
	}
	if hasLivingMedic(doc, pb, charID) || doc.Ship.HasComponent(ComponentShuttle) {
		return allow()
	}
	return deny(ReasonRerollUnavailable)
}

func hasLivingMedic(doc *state.Document, pb *state.PostBattleState, exclude string) bool {
	for _, m := range doc.Crew.Members {
		if m.Class != events.ClassMedic || m.ID == exclude {
			continue
		}
		if i := casualtyIndex(pb, m.ID); i >= 0 && pb.Casualties[i].Status == state.CasualtyDead {
			continue
		}
		return true
	}
	return false
}

// RerollInjury replaces a death result with a fresh injury roll.
func (e *Engine) RerollInjury(charID string) (InjuryResult, error) {
	var out InjuryResult
	err := e.run("reroll_injury", CanRerollInjury(&e.doc, charID), func(t *tx) error {
		pb := t.campaign().PostBattle
		cas := &pb.Casualties[casualtyIndex(pb, charID)]
		cas.Rerolled = true
		cas.Status = state.CasualtyPending
		t.logf("injury.rerolled", "character", charID)
		r, err := t.rollInjury(charID)
		out = r
		return err
	})
	return out, err
}

func (t *tx) rollInjury(charID string) (InjuryResult, error) {
	pb := t.campaign().PostBattle
	cas := &pb.Casualties[casualtyIndex(pb, charID)]
	m := t.doc.Crew.Find(charID)

	row, roll, err := t.e.tables.Injury.Roll(t.roller())
	if err != nil {
		return InjuryResult{}, err
	}
	cas.Roll = roll
	cas.RowID = row.ID

	var eff mutate.Effects
	turns := 0
	switch row.Outcome {
	case tables.InjuryDead:
		cas.Status = state.CasualtyDead
	case tables.InjuryEquipmentLoss:
		cas.Status = state.CasualtyUnharmed
		if items := m.Equipment.All(); len(items) > 0 {
			lost := items[t.roller().Pick(len(items))]
			eff.RemoveItems = []state.ItemRef{{Owner: charID, ItemID: lost.ID}}
		}
	case tables.InjurySurgery:
		cas.Status = state.CasualtyAwaitingSurgery
		cas.SurgeryCost = row.SurgeryCost
		turns = row.RecoveryTurns
	case tables.InjuryWound:
		cas.Status = state.CasualtyInjured
		turns = row.RecoveryTurns
		if row.RecoveryDie > 0 {
			turns += t.roller().Roll(row.RecoveryDie)
		}
	case tables.InjuryHardKnocks:
		cas.Status = state.CasualtyUnharmed
		eff.XP = []mutate.XPGrant{{CharacterID: charID, Amount: row.XP}}
	case tables.InjuryKnockedOut, tables.InjuryMiraculousEscape:
		cas.Status = state.CasualtyUnharmed
	default:
		return InjuryResult{}, fmt.Errorf("injury outcome %q: %w", row.Outcome, events.ErrUnknownRow)
	}
	if turns > 0 {
		eff.Injuries = []mutate.InjuryGrant{{
			CharacterID: charID,
			Injury:      state.Injury{ID: t.newID("injury"), RowID: row.ID, RecoveryTurns: turns},
		}}
	}
	if err := t.effects(eff); err != nil {
		return InjuryResult{}, err
	}
	t.logf(row.LogKey, "name", m.Name, "roll", roll)
	return InjuryResult{
		CharacterID:   charID,
		Roll:          roll,
		RowID:         row.ID,
		Outcome:       row.Outcome,
		Status:        cas.Status,
		RecoveryTurns: turns,
		Key:           row.LogKey,
	}, nil
}

// PaySurgery pays to avoid the permanent penalty of a crippling injury.
func (e *Engine) PaySurgery(charID string) error {
	guard := casualtyGuard(&e.doc, charID, state.CasualtyAwaitingSurgery, ReasonNoSurgery)
	if guard.Allowed {
		pb := e.doc.Campaign.PostBattle
		if e.doc.Campaign.Credits < pb.Casualties[casualtyIndex(pb, charID)].SurgeryCost {
			guard = deny(ReasonInsufficientCredits)
		}
	}
	return e.run("pay_surgery", guard, func(t *tx) error {
		pb := t.campaign().PostBattle
		cas := &pb.Casualties[casualtyIndex(pb, charID)]
		if err := t.effects(mutate.Effects{Credits: -cas.SurgeryCost}); err != nil {
			return err
		}
		cas.Status = state.CasualtySurgeryPaid
		t.logf("injury.surgery_paid", "character", charID, "credits", cas.SurgeryCost)
		return nil
	})
}

// AcceptPenalty takes the permanent stat loss instead of surgery.
func (e *Engine) AcceptPenalty(charID string) error {
	guard := casualtyGuard(&e.doc, charID, state.CasualtyAwaitingSurgery, ReasonNoSurgery)
	return e.run("accept_penalty", guard, func(t *tx) error {
		pb := t.campaign().PostBattle
		cas := &pb.Casualties[casualtyIndex(pb, charID)]
		row, ok := t.e.tables.InjuryByID(cas.RowID)
		if !ok {
			return fmt.Errorf("injury row %q: %w", cas.RowID, events.ErrUnknownRow)
		}
		eff := mutate.Effects{Stats: []mutate.StatDelta{{CharacterID: charID, Stat: row.PenaltyStat, Delta: -1}}}
		if err := t.effects(eff); err != nil {
			return err
		}
		cas.Status = state.CasualtyPenaltyAccepted
		t.logf("injury.penalty_accepted", "character", charID, "stat", row.PenaltyStat)
		return nil
	})
}

// ApplyExperience awards battle XP to every surviving participant.
func (e *Engine) ApplyExperience() ([]ledger.XPAward, error) {
	guard := inStep(&e.doc, state.StepExperience)
	if guard.Allowed && e.doc.Campaign.PostBattle.ExperienceApplied {
		guard = deny(ReasonAlreadyDone)
	}
	var awards []ledger.XPAward
	err := e.run("apply_experience", guard, func(t *tx) error {
		pb := t.campaign().PostBattle
		var eff mutate.Effects
		for _, p := range pb.Report.Participants {
			m := t.doc.Crew.Find(p.CharacterID)
			if m == nil {
				continue
			}
			award := t.rates().XPGains(p, pb.Report)
			awards = append(awards, award)
			eff.XP = append(eff.XP, mutate.XPGrant{CharacterID: m.ID, Amount: award.Total})
			t.logf("xp.awarded", "name", m.Name, "xp", award.Total)
		}
		if err := t.effects(eff); err != nil {
			return err
		}
		pb.ExperienceApplied = true
		return nil
	})
	return awards, err
}

// EnrollTraining spends XP to train charID into a class.
func (e *Engine) EnrollTraining(charID, course string) error {
	guard := inStep(&e.doc, state.StepTraining)
	if guard.Allowed {
		m := e.doc.Crew.Find(charID)
		switch {
		case !slices.Contains(Courses, course):
			guard = deny(ReasonUnknownCourse)
		case m == nil:
			guard = deny(ReasonUnknownCharacter)
		case m.Class == course:
			guard = deny(ReasonAlreadyTrained)
		}
	}
	return e.run("enroll_training", guard, func(t *tx) error {
		cost := t.rates().TrainingCost
		if err := t.effects(mutate.Effects{XP: []mutate.XPGrant{{CharacterID: charID, Amount: -cost}}}); err != nil {
			return err
		}
		t.doc.Crew.Find(charID).Class = course
		t.logf("training.completed", "character", charID, "course", course, "xp", cost)
		return nil
	})
}

// PurchaseItemRoll pays for a roll on a purchase table. A found item is
// returned and offered through an ItemChoice; nil means nothing was found.
func (e *Engine) PurchaseItemRoll(table string) (*state.Item, error) {
	guard := inStep(&e.doc, state.StepPurchase)
	if _, ok := e.tables.Purchase[table]; guard.Allowed && !ok {
		guard = deny(ReasonUnknownTable)
	}
	if guard.Allowed && e.doc.Campaign.Credits < e.rates.PurchaseRollCost {
		guard = deny(ReasonInsufficientCredits)
	}
	var out *state.Item
	err := e.run("purchase_item_roll", guard, func(t *tx) error {
		if err := t.effects(mutate.Effects{Credits: -t.rates().PurchaseRollCost}); err != nil {
			return err
		}
		t.campaign().PostBattle.PurchaseRolls++
		o, err := t.rollFind(table, "purchase")
		if err != nil {
			return err
		}
		t.log(o.Key, o.Params)
		if ic, ok := t.campaign().Pending.(*state.ItemChoice); ok {
			it := ic.Item
			out = &it
		}
		return nil
	})
	return out, err
}

// RollCampaignEvent rolls the mandatory campaign event.
func (e *Engine) RollCampaignEvent() (state.Outcome, error) {
	guard := inStep(&e.doc, state.StepEvent)
	if guard.Allowed && e.doc.Campaign.PostBattle.EventRolled {
		guard = deny(ReasonAlreadyDone)
	}
	var out state.Outcome
	err := e.run("roll_campaign_event", guard, func(t *tx) error {
		t.campaign().PostBattle.EventRolled = true
		row, roll, err := t.e.tables.CampaignEvent.Roll(t.roller())
		if err != nil {
			return err
		}
		out = state.Outcome{Key: row.LogKey, Params: state.NewParams("roll", roll)}
		if row.Recruit {
			t.log(out.Key, out.Params)
			if len(t.doc.Crew.Members) >= t.rates().CrewCap {
				t.logf("recruit.crew_full")
				return nil
			}
			return t.setInterrupt(&state.RecruitChoice{Source: row.ID, Candidate: events.NewRecruit(t.events())})
		}
		res, err := events.CampaignEvent(t.events(), row)
		if err != nil {
			return err
		}
		return t.apply(res)
	})
	return out, err
}

// ResolveCharacterEvent rolls the optional character event for charID.
// A precursor gets a PrecursorEventChoice instead and the result is nil.
func (e *Engine) ResolveCharacterEvent(charID string) (*state.Outcome, error) {
	guard := inStep(&e.doc, state.StepCharacterEvent)
	if guard.Allowed {
		switch {
		case e.doc.Campaign.PostBattle.CharacterEventDone:
			guard = deny(ReasonAlreadyDone)
		case e.doc.Crew.Find(charID) == nil:
			guard = deny(ReasonUnknownCharacter)
		}
	}
	var out *state.Outcome
	err := e.run("resolve_character_event", guard, func(t *tx) error {
		t.campaign().PostBattle.CharacterEventDone = true
		ctx := t.events()
		if t.doc.Crew.Find(charID).Race == state.RacePrecursor {
			pc, err := events.StartPrecursorChoice(ctx, charID)
			if err != nil {
				return err
			}
			return t.setInterrupt(pc)
		}
		row, _, err := t.e.tables.CharacterEvent.Roll(t.roller())
		if err != nil {
			return err
		}
		res, err := events.CharacterEvent(ctx, row, charID)
		if err != nil {
			return err
		}
		if err := t.apply(res); err != nil {
			return err
		}
		o := res.Outcomes[len(res.Outcomes)-1]
		out = &o
		return nil
	})
	return out, err
}

// ChoosePrecursorEvent applies one of the precursor's two rolled events.
func (e *Engine) ChoosePrecursorEvent(index int) (state.Outcome, error) {
	var out state.Outcome
	err := e.run("choose_precursor_event", pendingIs(&e.doc, state.InterruptPrecursorEventChoice), func(t *tx) error {
		pc := t.campaign().Pending.(*state.PrecursorEventChoice)
		res, err := events.ChoosePrecursorEvent(t.events(), pc, index)
		if err != nil {
			return err
		}
		if err := t.apply(res); err != nil {
			return err
		}
		out = res.Outcomes[len(res.Outcomes)-1]
		t.clearInterrupt()
		return nil
	})
	return out, err
}

// SkipCharacterEvent declines the optional character event.
func (e *Engine) SkipCharacterEvent() error {
	guard := inStep(&e.doc, state.StepCharacterEvent)
	if guard.Allowed && e.doc.Campaign.PostBattle.CharacterEventDone {
		guard = deny(ReasonAlreadyDone)
	}
	return e.run("skip_character_event", guard, func(t *tx) error {
		t.campaign().PostBattle.CharacterEventDone = true
		t.logf("character_event.skipped")
		return nil
	})
}

// AdvancePostBattle leaves the current step once it is satisfied. Leaving
// the injury step removes the dead. Leaving the last step ends the turn
// and opens the next turn in the upkeep phase.
func (e *Engine) AdvancePostBattle() error {
	return e.run("advance_post_battle", CanAdvancePostBattle(&e.doc), func(t *tx) error {
		pb := t.campaign().PostBattle
		if pb.Step == state.StepInjuries {
			var dead []string
			for _, c := range pb.Casualties {
				if c.Status == state.CasualtyDead && t.doc.Crew.Find(c.CharacterID) != nil {
					dead = append(dead, c.CharacterID)
				}
			}
			if err := t.effects(mutate.Effects{RemoveCrew: dead}); err != nil {
				return err
			}
			for _, id := range dead {
				t.logf("crew.died", "character", id)
			}
		}
		next, last, known := nextStep(pb.Step)
		switch {
		case !known:
			return newInvalidTransition(string(pb.Step), "next")
		case last:
			t.logf("post_battle.finished")
			return t.startTurn()
		}
		pb.Step = next
		t.logf("post_battle.step", "step", next)
		return nil
	})
}
