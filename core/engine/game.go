package engine

import (
	"synergism-calc/core/pricing"
	"synergism-calc/core/settings"
	"synergism-calc/internal/errors"
)

// Game reads any derived value of a snapshot, whatever stage it has reached.
// Values of a later stage fail with a CONFIGURATION_MISSING or
// PRICING_MISSING error instead of being unavailable at compile time.
type Game struct {
	snap *Snapshot
}

// NewGame wraps a snapshot.
func NewGame(s *Snapshot) *Game {
	return &Game{snap: s}
}

// Snapshot returns the raw stage.
func (g *Game) Snapshot() *Snapshot {
	return g.snap
}

// Stage reports how far the snapshot has been initialized.
func (g *Game) Stage() Stage {
	return g.snap.Stage()
}

// Configure attaches settings.
func (g *Game) Configure(cfg *settings.Settings) error {
	_, err := g.snap.Configure(cfg)
	return err
}

// Price attaches shop purchases. Settings must already be attached.
func (g *Game) Price(p pricing.Purchase) error {
	c, err := g.configured("price")
	if err != nil {
		return err
	}
	_, err = c.Price(p)
	return err
}

// PriceFrom looks up the affordable tiers in catalog and attaches them.
func (g *Game) PriceFrom(catalog pricing.Catalog) error {
	c, err := g.configured("price")
	if err != nil {
		return err
	}
	_, err = c.PriceFrom(catalog)
	return err
}

func (g *Game) configured(accessor string) (*Configured, error) {
	c, err := g.snap.Configured()
	if err != nil {
		return nil, errors.ConfigurationMissing(accessor)
	}
	return c, nil
}

func (g *Game) priced(accessor string) (*Priced, error) {
	c, err := g.configured(accessor)
	if err != nil {
		return nil, err
	}
	p, err := c.Priced()
	if err != nil {
		return nil, errors.PricingMissing(accessor)
	}
	return p, nil
}

// TotalQuarks is Configured.TotalQuarks.
func (g *Game) TotalQuarks() (int64, error) {
	c, err := g.configured("total_quarks")
	if err != nil {
		return 0, err
	}
	return c.TotalQuarks(), nil
}

// MeetsTargetGain is Configured.MeetsTargetGain.
func (g *Game) MeetsTargetGain() (bool, error) {
	c, err := g.configured("meets_target_gain")
	if err != nil {
		return false, err
	}
	return c.MeetsTargetGain(), nil
}

// ShopBenefitHept is Priced.ShopBenefitHept.
func (g *Game) ShopBenefitHept() (float64, error) {
	p, err := g.priced("shop_benefit_hept")
	if err != nil {
		return 0, err
	}
	return p.ShopBenefitHept(), nil
}

// ShopBenefitAccel is Priced.ShopBenefitAccel.
func (g *Game) ShopBenefitAccel() (float64, error) {
	p, err := g.priced("shop_benefit_accel")
	if err != nil {
		return 0, err
	}
	return p.ShopBenefitAccel(), nil
}

// HeptPerDay is Priced.HeptPerDay.
func (g *Game) HeptPerDay() (float64, error) {
	p, err := g.priced("hept_per_day")
	if err != nil {
		return 0, err
	}
	return p.HeptPerDay(), nil
}

// PowderGoal is Priced.PowderGoal.
func (g *Game) PowderGoal() (float64, error) {
	p, err := g.priced("powder_goal")
	if err != nil {
		return 0, err
	}
	return p.PowderGoal(), nil
}

// OrbsToPowderGoal is Priced.OrbsToPowderGoal.
func (g *Game) OrbsToPowderGoal() (float64, error) {
	p, err := g.priced("orbs_to_powder_goal")
	if err != nil {
		return 0, err
	}
	return p.OrbsToPowderGoal(), nil
}

// Purchase is Priced.Purchase.
func (g *Game) Purchase() (pricing.Purchase, error) {
	p, err := g.priced("purchase")
	if err != nil {
		return pricing.Purchase{}, err
	}
	return p.Purchase(), nil
}
