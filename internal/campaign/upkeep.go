package campaign

import (
	"github.com/roach88/driftcrew/internal/ledger"
	"github.com/roach88/driftcrew/internal/mutate"
	"github.com/roach88/driftcrew/internal/state"
)

// TraitInvaded marks a world where an invasion has landed.
const TraitInvaded = "invaded"

// UpkeepRequest is the player's upkeep plan.
type UpkeepRequest struct {
	// Debt is the amount of debt to pay off.
	Debt int `json:"debt,omitempty"`
	// Repairs is the hull to repair. Salvage parts are spent first.
	Repairs int `json:"repairs,omitempty"`
	// MedicalBayTarget is a character in sick bay to receive care.
	MedicalBayTarget string `json:"medicalBayTarget,omitempty"`
	// BasicSupplies pays the flat basic-supplies cost instead of upkeep.
	BasicSupplies bool `json:"basicSupplies,omitempty"`
}

// upkeepPlan is a validated request with its bill.
type upkeepPlan struct {
	bill   ledger.UpkeepBill
	ration *state.ItemRef
}

// QuoteUpkeep prices req against the current document.
func (e *Engine) QuoteUpkeep(req UpkeepRequest) (ledger.UpkeepBill, error) {
	plan, err := e.planUpkeep(&e.doc, req)
	if err != nil {
		return ledger.UpkeepBill{}, err
	}
	return plan.bill, nil
}

func (e *Engine) planUpkeep(doc *state.Document, req UpkeepRequest) (upkeepPlan, error) {
	c := doc.Campaign
	if req.Debt < 0 || req.Debt > c.Debt {
		return upkeepPlan{}, preconditionf(ReasonUpkeepInvalid, "debt payment %d outside [0,%d]", req.Debt, c.Debt)
	}
	if req.Repairs < 0 || (req.Repairs > 0 && doc.Ship == nil) {
		return upkeepPlan{}, preconditionf(ReasonUpkeepInvalid, "repairs %d without a ship", req.Repairs)
	}
	if req.Repairs > c.Credits+doc.Stash.Parts {
		return upkeepPlan{}, preconditionf(ReasonUpkeepInvalid, "repairs %d exceed credits plus parts", req.Repairs)
	}

	var plan upkeepPlan
	if ref, ok := e.rationPack(doc); ok && !req.BasicSupplies {
		plan.ration = &ref
	}
	upkeep := e.rates.UpkeepCost(doc.Crew.ActiveCount(), plan.ration != nil, req.BasicSupplies, doc.Ship, c.CurrentWorld)

	medical := 0
	if req.MedicalBayTarget != "" {
		m := doc.Crew.Find(req.MedicalBayTarget)
		if m == nil || !m.InSickBay() {
			return upkeepPlan{}, preconditionf(ReasonUpkeepInvalid, "%q is not in sick bay", req.MedicalBayTarget)
		}
		medical = e.rates.MedicalCostPerMember(doc.Ship)
	}
	repair := e.rates.RepairCost(doc.Ship, req.Repairs, doc.Stash.Parts)
	plan.bill = ledger.NewUpkeepBill(upkeep, req.Debt, repair, medical)
	return plan, nil
}

// rationPack returns the first stash item tagged as rations.
func (e *Engine) rationPack(doc *state.Document) (state.ItemRef, bool) {
	for _, it := range doc.Stash.Items {
		if def, ok := e.catalog.Lookup(it.Kind, it.DefID); ok && def.HasTag("rations") {
			return state.ItemRef{Owner: state.StashOwner, ItemID: it.ID}, true
		}
	}
	return state.ItemRef{}, false
}

// FinalizeUpkeep pays req in full and opens the actions phase.
func (e *Engine) FinalizeUpkeep(req UpkeepRequest) (ledger.UpkeepBill, error) {
	plan, err := e.planUpkeep(&e.doc, req)
	if err != nil {
		return ledger.UpkeepBill{}, classify("finalize_upkeep", err)
	}
	err = e.run("finalize_upkeep", CanFinalizeUpkeep(&e.doc, plan.bill), func(t *tx) error {
		eff := mutate.Effects{
			Credits:    -plan.bill.Total,
			Debt:       -plan.bill.Debt,
			Parts:      -plan.bill.Repair.PartsUsed,
			HullRepair: plan.bill.Repair.Hull,
		}
		if plan.ration != nil {
			eff.RemoveItems = []state.ItemRef{*plan.ration}
		}
		if err := t.effects(eff); err != nil {
			return err
		}
		if req.MedicalBayTarget != "" {
			treat(t.doc.Crew.Find(req.MedicalBayTarget))
		}
		c := t.campaign()
		c.UpkeepPaidThisTurn = true
		c.TasksFinalized = false
		t.logf("upkeep.paid", "total", plan.bill.Total, "upkeep", plan.bill.Upkeep, "debt", plan.bill.Debt)
		if err := t.transition(state.PhaseActions); err != nil {
			return err
		}
		if c.CurrentWorld.HasTrait(TraitInvaded) {
			return t.setInterrupt(&state.InvasionBattleGearUp{WorldID: c.CurrentWorld.ID})
		}
		return nil
	})
	if err != nil {
		return ledger.UpkeepBill{}, err
	}
	return plan.bill, nil
}

// treat shortens the longest remaining recovery by one turn.
func treat(m *state.Character) {
	longest := -1
	for i, inj := range m.Injuries {
		if inj.RecoveryTurns > 0 && (longest < 0 || inj.RecoveryTurns > m.Injuries[longest].RecoveryTurns) {
			longest = i
		}
	}
	if longest >= 0 {
		m.Injuries[longest].RecoveryTurns--
	}
}

// FinalizeTasks closes crew task assignment, unlocking travel and battle.
func (e *Engine) FinalizeTasks() error {
	return e.run("finalize_tasks", CanFinalizeTasks(&e.doc), func(t *tx) error {
		t.campaign().TasksFinalized = true
		t.logf("tasks.finalized")
		return nil
	})
}

// EndTurn ends the turn without a battle.
func (e *Engine) EndTurn() error {
	return e.run("end_turn", CanEndTurn(&e.doc), func(t *tx) error {
		return t.startTurn()
	})
}

// startTurn crosses the turn boundary into the next upkeep phase.
func (t *tx) startTurn() error {
	if err := t.transition(state.PhaseUpkeep); err != nil {
		return err
	}
	c := t.campaign()
	c.Turn++
	c.TasksFinalized = false
	c.PostBattle = nil
	c.ResetTurnFlags()

	if c.Debt > 0 {
		c.Debt += t.rates().DebtInterest
	}
	if w := c.CurrentWorld; w != nil && w.InterdictionTurnsRemaining > 0 {
		w.InterdictionTurnsRemaining--
	}
	for i := range t.doc.Crew.Members {
		heal(&t.doc.Crew.Members[i])
	}
	t.logf("turn.started", "turn", c.Turn)
	return nil
}

// heal counts injuries down one turn and drops healed ones.
func heal(m *state.Character) {
	kept := m.Injuries[:0]
	for _, inj := range m.Injuries {
		if inj.RecoveryTurns > 0 {
			inj.RecoveryTurns--
		}
		if inj.RecoveryTurns > 0 {
			kept = append(kept, inj)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	m.Injuries = kept
}
