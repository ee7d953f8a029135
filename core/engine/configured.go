package engine

import (
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"synergism-calc/core/pricing"
	"synergism-calc/core/quark"
	"synergism-calc/core/settings"
	"synergism-calc/internal/errors"
	"synergism-calc/internal/logging"
)

// quarkStartingOffset is the quark balance every save starts with.
const quarkStartingOffset = 15

// Configured is the stage with settings attached.
type Configured struct {
	*Snapshot

	settings settings.Settings
	bindings []quark.Binding

	mu     sync.Mutex
	priced *Priced

	totalQuarks memo[int64]
}

func newConfigured(s *Snapshot, cfg *settings.Settings) (*Configured, error) {
	bindings, err := quark.Bind(s.data.Shop, cfg.ShopQuarkCost)
	if err != nil {
		return nil, errors.Config("cannot bind shop cost tables", err)
	}

	copied := *cfg
	copied.ShopQuarkCost = make(map[string]quark.CostTable, len(cfg.ShopQuarkCost))
	for k, v := range cfg.ShopQuarkCost {
		copied.ShopQuarkCost[k] = v
	}

	return &Configured{
		Snapshot: s,
		settings: copied,
		bindings: bindings,
	}, nil
}

// Settings returns the attached settings.
func (c *Configured) Settings() settings.Settings {
	return c.settings
}

// Bindings returns the shop upgrades counted in TotalQuarks.
func (c *Configured) Bindings() []quark.Binding {
	return append([]quark.Binding(nil), c.bindings...)
}

// TotalQuarks is every quark the save has earned: the unspent balance plus
// the cost of every priced shop upgrade, less the starting balance.
func (c *Configured) TotalQuarks() int64 {
	return c.totalQuarks.get(func() int64 {
		return floorInt64(c.data.QuarksLeft) + quark.TotalSpent(c.bindings) - quarkStartingOffset
	})
}

// MeetsTargetGain reports whether a chronos tier-up gains at least the target percent.
func (c *Configured) MeetsTargetGain() bool {
	return c.ChronosIncrease() >= float64(c.settings.TargetGainPercent)
}

// Price attaches the shop tiers bought. It can succeed only once.
func (c *Configured) Price(p pricing.Purchase) (*Priced, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.priced != nil {
		return nil, errors.Lifecycle("snapshot is already priced")
	}

	c.priced = newPriced(c, p)
	logging.Debug("snapshot priced",
		zap.Float64("shop_benefit_hept", c.priced.benefitHept),
		zap.Float64("shop_benefit_accel", c.priced.benefitAccel))
	return c.priced, nil
}

// PriceFrom looks up the tiers affordable with TotalQuarks and attaches them.
func (c *Configured) PriceFrom(catalog pricing.Catalog) (*Priced, error) {
	p, err := catalog.Purchase(decimal.NewFromInt(c.TotalQuarks()))
	if err != nil {
		return nil, err
	}
	return c.Price(p)
}

// Priced returns the attached priced stage.
func (c *Configured) Priced() (*Priced, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.priced == nil {
		return nil, errors.PricingMissing("priced stage")
	}
	return c.priced, nil
}
