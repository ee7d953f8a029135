package engine

import (
	"math"

	"synergism-calc/core/pricing"
	"synergism-calc/core/quark"
)

const (
	// Shop benefits unlock once total quarks pass these amounts.
	accelBenefitQuarks = 2000
	heptBenefitQuarks  = 5000

	secondsPerDay = 86400
)

// Priced is the fully initialized stage with shop purchases attached.
type Priced struct {
	*Configured

	purchase     pricing.Purchase
	benefitHept  float64
	benefitAccel float64

	heptPerDay memo[float64]
	powderGoal memo[float64]
}

func newPriced(c *Configured, p pricing.Purchase) *Priced {
	pr := &Priced{Configured: c, purchase: p}
	quarks := c.TotalQuarks()
	if quarks > accelBenefitQuarks {
		pr.benefitAccel = p.AcceleratorBenefit()
	}
	if quarks > heptBenefitQuarks {
		pr.benefitHept = p.HepteractBenefit()
	}
	return pr
}

// Purchase returns the attached shop tiers.
func (p *Priced) Purchase() pricing.Purchase {
	return p.purchase
}

// ShopBenefitHept is the WoW pass multiplier, 0 until total quarks pass 5000.
func (p *Priced) ShopBenefitHept() float64 {
	return p.benefitHept
}

// ShopBenefitAccel is the acceleration multiplier, 0 until total quarks pass 2000.
func (p *Priced) ShopBenefitAccel() float64 {
	return p.benefitAccel
}

// HeptPerDay is the hepteracts generated in a day of real time plus the
// extra daily calculator uses.
func (p *Priced) HeptPerDay() float64 {
	return p.heptPerDay.get(func() float64 {
		extraSeconds := float64(p.settings.AddUsesPerDay) * 60 * float64(p.data.Shop.Level(quark.Calculator3))
		return p.benefitHept * p.settings.GenerationRate * p.Multiplier() * (secondsPerDay + extraSeconds)
	})
}

// PowderGoal approximates the powder level past which converting more orbs
// stops paying off. The inverse of the decay curve is applied four times in
// sequence rather than solved in closed form.
func (p *Priced) PowderGoal() float64 {
	return p.powderGoal.get(func() float64 {
		inc := p.HeptsSmallIncrement()
		decay := p.PowderDecay() - 1
		inverse := func(powder float64) float64 {
			return inc / (math.Pow(powder, decay) - 1)
		}

		first := inverse(p.data.OverfluxPowder)
		if first < powderRegimeSwitch {
			toLevel := float64(p.data.Hepteracts.Chronos.ToLevel())
			// Precedence as in the original sheet formula: 1^(1/toLevel) is always 1.
			guard := p.ChronosIncrease() + math.Pow(1, 1/toLevel) - 1*1000*orbsPerPowder*p.OrbToPowder()
			if guard > 1 {
				return p.data.OverfluxPowder + floor(p.HeptPerDay()/24/orbsPerPowder)/p.OrbToPowder()
			}
			return powderRegimeSwitch
		}

		nested := inverse(inverse(inverse(first)))
		cube := p.CubeFromPowder()
		return nested / (cube + 1) * cube
	})
}

// OrbsToPowderGoal is the number of orbs still to convert to reach PowderGoal.
func (p *Priced) OrbsToPowderGoal() float64 {
	return (p.PowderGoal()-p.data.OverfluxPowder)*p.OrbToPowder() - p.data.OverfluxOrbs
}

func floor(v float64) float64 {
	return math.Floor(v)
}

// floorInt64 floors v, saturating at the int64 bounds.
func floorInt64(v float64) int64 {
	switch f := math.Floor(v); {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}
