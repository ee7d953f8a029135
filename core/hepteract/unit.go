// Package hepteract models the upgradeable hepteract crafts of a save.
// A craft's capacity doubles each tier, and its cost is paid in the
// underlying currency at a fixed conversion rate.
package hepteract

import "math"

// Unit is a single hepteract craft. It is immutable once built from a save.
type Unit struct {
	// Balance is the amount currently crafted
	Balance float64 `json:"balance"`

	// Cap is the current capacity, always BaseCap * 2^(tier-1)
	Cap float64 `json:"cap"`

	// BaseCap is the tier 1 capacity
	BaseCap float64 `json:"base_cap"`

	// Conversion is the currency paid per hepteract
	Conversion int64 `json:"conversion"`
}

// Tier returns the capacity tier, 1 when Cap equals BaseCap.
// A unit without a positive capacity has tier 0.
func (u Unit) Tier() int {
	if u.Cap <= 0 || u.BaseCap <= 0 {
		return 0
	}
	return int(math.Log2(u.Cap/u.BaseCap) + 1)
}

// LevelCost is the currency needed to fill the current capacity.
func (u Unit) LevelCost() int64 {
	return int64(u.Cap * float64(u.Conversion))
}

// NextLevelCost is the currency needed to fill the next tier's capacity.
func (u Unit) NextLevelCost() int64 {
	return int64(u.Cap * 2 * float64(u.Conversion))
}

// ToLevel is the currency still missing before the unit levels.
// A unit sitting exactly on its threshold reports the next threshold.
func (u Unit) ToLevel() int64 {
	remaining := u.LevelCost() - int64(u.Balance*float64(u.Conversion))
	if remaining == 0 {
		return u.NextLevelCost()
	}
	return remaining
}

// TotalCost sums the level cost over tiers 1..Tier.
// Every tier is priced at the current capacity, so this is Tier * LevelCost.
func (u Unit) TotalCost() int64 {
	var total int64
	cost := u.LevelCost()
	for tier := 1; tier <= u.Tier(); tier++ {
		total += cost
	}
	return total
}

// EffectiveBoost applies the soft cap: the balance counts 1:1 below limit
// and follows limit * (balance/limit)^(dr+boost) from limit upwards.
func (u Unit) EffectiveBoost(limit, dr, boost float64) float64 {
	if u.Balance < limit {
		return u.Balance
	}
	return limit * math.Pow(u.Balance/limit, dr+boost)
}
