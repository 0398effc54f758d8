package ledger

import "github.com/roach88/driftcrew/internal/state"

// World and ship trait names the ledger reacts to.
const (
	TraitHighCost       = "high_cost"
	TraitFuelEfficient  = "fuel_efficient"
	TraitFuelHungry     = "fuel_hungry"
	ComponentMedicalBay = "medical_bay"
	ComponentConverter  = "fuel_converter"
)

// UpkeepCost is the per-turn crew upkeep.
//
// canSkip selects the flat basic-supplies cost instead of the detailed
// calculation. The result is never negative.
func (r Rates) UpkeepCost(activeCrew int, hasRationPacks, canSkip bool, ship *state.Ship, world *state.World) int {
	if canSkip {
		return max(r.BasicSupplies, 0)
	}
	cost := activeCrew * r.UpkeepPerCrew
	if ship != nil && ship.MaxHull > r.LargeShipHull {
		cost += r.LargeShipSurcharge
	}
	if world.HasTrait(TraitHighCost) {
		cost += r.HighCostSurcharge
	}
	if hasRationPacks {
		cost -= r.RationDiscount
	}
	return max(cost, 0)
}

// FuelQuote splits a travel cost between the fuel pool and credits.
type FuelQuote struct {
	Total       int  `json:"total"`
	FromFuel    int  `json:"fromFuel"`
	FromCredits int  `json:"fromCredits"`
	Emergency   bool `json:"emergency"`
}

// FuelCost quotes jumps starship jumps. A damaged hull forces the
// emergency path, which adds a surcharge.
func (r Rates) FuelCost(ship *state.Ship, fuelPool, jumps int) FuelQuote {
	if ship == nil || jumps <= 0 {
		return FuelQuote{}
	}
	perJump := r.FuelPerJump
	if ship.HasTrait(TraitFuelEfficient) {
		perJump--
	}
	if ship.HasTrait(TraitFuelHungry) {
		perJump++
	}
	if ship.HasComponent(ComponentConverter) {
		perJump -= r.FuelConverterSave
	}
	q := FuelQuote{Total: max(perJump, 1) * jumps}
	if ship.Damaged() {
		q.Emergency = true
		q.Total += r.EmergencySurcharge
	}
	q.FromFuel = min(max(fuelPool, 0), q.Total)
	q.FromCredits = q.Total - q.FromFuel
	return q
}

// PassageCost is what a shipless crew pays for commercial passage.
func (r Rates) PassageCost(crew int) int {
	return max(crew*r.PassagePerCrew, 0)
}

// MedicalCostPerMember is free aboard a ship with a medical bay.
func (r Rates) MedicalCostPerMember(ship *state.Ship) int {
	if ship.HasComponent(ComponentMedicalBay) {
		return 0
	}
	return r.MedicalCost
}

// RepairQuote says how many salvage parts and credits a hull repair uses.
// Parts are spent first.
type RepairQuote struct {
	Hull      int `json:"hull"`
	PartsUsed int `json:"partsUsed"`
	Credits   int `json:"credits"`
}

// RepairCost quotes repairing hull points with parts available.
// Repairs are clamped to the missing hull.
func (r Rates) RepairCost(ship *state.Ship, hull, parts int) RepairQuote {
	if ship == nil || hull <= 0 {
		return RepairQuote{}
	}
	hull = min(hull, ship.MaxHull-ship.Hull)
	used := min(max(parts, 0), hull)
	return RepairQuote{Hull: hull, PartsUsed: used, Credits: hull - used}
}

// UpkeepBill is the full finalize-upkeep total.
type UpkeepBill struct {
	Upkeep  int         `json:"upkeep"`
	Debt    int         `json:"debt"`
	Repair  RepairQuote `json:"repair"`
	Medical int         `json:"medical"`
	Total   int         `json:"total"`
}

// NewUpkeepBill totals the parts of an upkeep payment.
func NewUpkeepBill(upkeep, debt int, repair RepairQuote, medical int) UpkeepBill {
	return UpkeepBill{
		Upkeep:  upkeep,
		Debt:    debt,
		Repair:  repair,
		Medical: medical,
		Total:   upkeep + debt + repair.Credits + medical,
	}
}

// StashCapacity returns the stash limit, or -1 when uncapped.
func (r Rates) StashCapacity(ship *state.Ship) int {
	if ship != nil {
		return -1
	}
	return state.ShiplessStashCap
}

// SellPrice is the credits received for an item of the given value.
func (r Rates) SellPrice(value, bonus int) int {
	return max(value+bonus, 0)
}
