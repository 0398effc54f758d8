// Package ledger computes derived economy values.
//
// Every function is pure: it reads crew, ship and world values and
// returns a number or a breakdown. Nothing here mutates state; the
// campaign engine decides whether a quote is affordable and applies it.
package ledger

// Rates are the tunable economy constants. Zero values are meaningful, so
// callers start from DefaultRates and override fields.
type Rates struct {
	UpkeepPerCrew      int `yaml:"upkeep_per_crew"`
	LargeShipHull      int `yaml:"large_ship_hull"`
	LargeShipSurcharge int `yaml:"large_ship_surcharge"`
	HighCostSurcharge  int `yaml:"high_cost_surcharge"`
	RationDiscount     int `yaml:"ration_discount"`
	BasicSupplies      int `yaml:"basic_supplies"`

	FuelPerJump        int `yaml:"fuel_per_jump"`
	FuelConverterSave  int `yaml:"fuel_converter_save"`
	EmergencySurcharge int `yaml:"emergency_surcharge"`
	PassagePerCrew     int `yaml:"passage_per_crew"`

	DebtInterest      int `yaml:"debt_interest"`
	MedicalCost       int `yaml:"medical_cost"`
	PurchaseRollCost  int `yaml:"purchase_roll_cost"`
	TrainingCost      int `yaml:"training_cost"`
	BribeCost         int `yaml:"bribe_cost"`
	TradeGoodsBonus   int `yaml:"trade_goods_bonus"`
	StoryPointCredits int `yaml:"story_point_credits"`
	StoryPointXP      int `yaml:"story_point_xp"`
	XPPerKill         int `yaml:"xp_per_kill"`

	CrewCap      int `yaml:"crew_cap"`
	SalvageCap   int `yaml:"salvage_cap"`
	SellPerTurn  int `yaml:"sell_per_turn"`
	SavvyTarget  int `yaml:"savvy_target"`
	AvoidTarget  int `yaml:"avoid_target"`
	SavvyChecks  int `yaml:"savvy_checks"`
	FleeItemLoss int `yaml:"flee_item_loss"`
}

// DefaultRates returns the standard economy.
func DefaultRates() Rates {
	return Rates{
		UpkeepPerCrew:      1,
		LargeShipHull:      35,
		LargeShipSurcharge: 1,
		HighCostSurcharge:  1,
		RationDiscount:     1,
		BasicSupplies:      1,

		FuelPerJump:        5,
		FuelConverterSave:  2,
		EmergencySurcharge: 2,
		PassagePerCrew:     1,

		DebtInterest:      1,
		MedicalCost:       4,
		PurchaseRollCost:  3,
		TrainingCost:      5,
		BribeCost:         2,
		TradeGoodsBonus:   1,
		StoryPointCredits: 3,
		StoryPointXP:      3,
		XPPerKill:         1,

		CrewCap:      6,
		SalvageCap:   2,
		SellPerTurn:  3,
		SavvyTarget:  5,
		AvoidTarget:  4,
		SavvyChecks:  3,
		FleeItemLoss: 2,
	}
}
