// Package engine computes derived progression values from a save.
//
// A Snapshot is built once from raw save fields. Settings are attached with
// Configure, which yields a Configured stage; shop purchases are attached to
// that with Price, which yields a Priced stage. Each stage is attached at
// most once and every derived value is computed at most once per stage.
package engine

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"synergism-calc/core/quark"
	"synergism-calc/core/save"
	"synergism-calc/core/settings"
	"synergism-calc/internal/clock"
	"synergism-calc/internal/errors"
	"synergism-calc/internal/logging"
)

const (
	c15Threshold       = 1.5e18
	c15PowderBase      = 7000000000000000.0 / 32
	chronosLimit       = 1000.0
	chronosDecay       = 1.0 / 6
	u44Step            = 1.0 / 750
	powderRegimeSwitch = 10000.0
	orbsPerPowder      = 250000.0
	smallIncrement     = 0.0000001
)

// Option configures a Snapshot.
type Option func(*Snapshot)

// WithClock sets the clock used for the ascension timer.
func WithClock(c clock.Clock) Option {
	return func(s *Snapshot) {
		if c != nil {
			s.clock = c
		}
	}
}

// Snapshot is the raw stage: an immutable save plus the values derived from it alone.
type Snapshot struct {
	data  *save.Data
	clock clock.Clock

	mu         sync.Mutex
	configured *Configured

	chronosPercent     memo[float64]
	chronosPercentNext memo[float64]
	chronosIncrease    memo[float64]
	multiplier         memo[float64]
	orbToPowder        memo[float64]
}

// New builds the raw stage from a save. The save is copied.
func New(data *save.Data, opts ...Option) *Snapshot {
	s := &Snapshot{
		data:  data.Clone(),
		clock: clock.Real{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save returns a copy of the raw save.
func (s *Snapshot) Save() *save.Data {
	return s.data.Clone()
}

// Stage reports how far the snapshot has been initialized.
func (s *Snapshot) Stage() Stage {
	c, err := s.Configured()
	if err != nil {
		return StageRaw
	}
	if _, err := c.Priced(); err != nil {
		return StageConfigured
	}
	return StagePriced
}

// Configure attaches settings. It can succeed only once per snapshot.
func (s *Snapshot) Configure(cfg *settings.Settings) (*Configured, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configured != nil {
		return nil, errors.Lifecycle("snapshot is already configured")
	}

	c, err := newConfigured(s, cfg)
	if err != nil {
		return nil, err
	}
	s.configured = c

	logging.Debug("snapshot configured",
		zap.Int("cost_tables", len(c.bindings)),
		zap.Float64("hps", cfg.GenerationRate))
	return c, nil
}

// Configured returns the attached configured stage.
func (s *Snapshot) Configured() (*Configured, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configured == nil {
		return nil, errors.ConfigurationMissing("configured stage")
	}
	return s.configured, nil
}

// U44 is the platonic upgrade at row 4, column 4, which softens chronos decay.
func (s *Snapshot) U44() float64 {
	return s.data.PlatonicUpgrade(4, 4)
}

func (s *Snapshot) chronosExponent() float64 {
	return chronosDecay + u44Step*s.U44()
}

// ChronosPercent is the current yield percentage of the chronos hepteract.
func (s *Snapshot) ChronosPercent() float64 {
	return s.chronosPercent.get(func() float64 {
		balance := s.data.Hepteracts.Chronos.Balance
		return (1000 * math.Pow(balance/1000, s.chronosExponent())) * (6.0 / 100)
	})
}

// ChronosPercentNext is the yield percentage chronos would have one tier up.
func (s *Snapshot) ChronosPercentNext() float64 {
	return s.chronosPercentNext.get(func() float64 {
		next := math.Pow(2, float64(s.data.Hepteracts.Chronos.Tier()))
		return (1000 * math.Pow(next, s.chronosExponent())) * (6.0 / 100)
	})
}

// ChronosIncrease is the relative percentage gain of moving chronos up a tier.
func (s *Snapshot) ChronosIncrease() float64 {
	return s.chronosIncrease.get(func() float64 {
		return ((s.ChronosPercentNext()+100)/(s.ChronosPercent()+100) - 1) * 100
	})
}

// Multiplier scales the ascension timer. It is the product of the challenge 15,
// chronometer, corruption, chronos and achievement boosts; an inactive boost is 1.
func (s *Snapshot) Multiplier() float64 {
	return s.multiplier.get(func() float64 {
		d := s.data

		c15Boost := 1.0
		if d.Challenge15Exponent > c15Threshold {
			c15Boost = 1 + 0.05 + 2*math.Log2(d.Challenge15Exponent/c15Threshold)/100
		}

		shopBoost := (1 + float64(d.Shop.Level(quark.Chronometer))/100) *
			(1 + 0.5*float64(d.Shop.Level(quark.Chronometer2))/100) *
			(1 + 1.5*float64(d.Shop.Level(quark.Chronometer3))/100)

		omegaBoost := 1 + 0.002*d.CorruptionTotal()*d.PlatonicUpgrade(3, 5)

		chronosBoost := 1 + 0.6/1000*d.Hepteracts.Chronos.EffectiveBoost(chronosLimit, chronosDecay, u44Step*s.U44())

		ascensions := math.Log10(d.AscensionCount + 1)
		achievementBoost := (1 + math.Min(0.1, ascensions/100)*d.Achievement(262)) *
			(1 + math.Min(0.10, ascensions/100)*d.Achievement(263))

		return c15Boost * shopBoost * omegaBoost * chronosBoost * achievementBoost
	})
}

// CurrentAscensionTimer is the ascension counter advanced by the real time
// elapsed since the save, scaled by Multiplier. It reads the snapshot's clock
// and is therefore not memoized.
func (s *Snapshot) CurrentAscensionTimer() float64 {
	now := s.clock.Now().UnixMilli()
	return (float64(now-s.data.SaveTime)/1000)*s.Multiplier() + s.data.AscensionCounter
}

// OrbToPowder is the number of overflux orbs that make one unit of powder.
func (s *Snapshot) OrbToPowder() float64 {
	return s.orbToPowder.get(func() float64 {
		d := s.data
		terms := []float64{
			1.0 / 100,
			1 + 1.0/50*math.Log2(d.Challenge15Exponent/c15PowderBase),
			1 + float64(d.Shop.Level(quark.PowderEX))/50,
			1 + d.Achievement(256)/20,
			1 + d.Achievement(257)/20,
			1 + 0.01*d.PlatonicUpgrade(4, 1),
		}
		denominator := 1.0
		for _, t := range terms {
			denominator *= t
		}
		return 1 / denominator
	})
}

// HeptsSmallIncrement is the powder cost of the smallest useful chronos step.
func (s *Snapshot) HeptsSmallIncrement() float64 {
	return float64(s.data.Hepteracts.Chronos.ToLevel()) * smallIncrement / s.OrbToPowder() / orbsPerPowder
}

// PowderDecay is the diminishing-returns reduction applied per powder step.
func (s *Snapshot) PowderDecay() float64 {
	return math.Pow(1+smallIncrement/2, s.chronosExponent())
}

// PowderTomorrow is the powder held once the pending orbs convert.
func (s *Snapshot) PowderTomorrow() float64 {
	return s.data.OverfluxPowder + s.data.OverfluxOrbs/s.OrbToPowder()
}

// CubeFromPowder is the cube gain granted by PowderTomorrow: linear up to
// 10,000 powder and log-squared above.
func (s *Snapshot) CubeFromPowder() float64 {
	powder := s.PowderTomorrow()
	if powder > powderRegimeSwitch {
		return 1 + 1.0/16*math.Pow(math.Log10(powder), 2) - 1
	}
	return 1 + 1.0/10000*powder - 1
}

// BuyableHepteracts is the number of hepteracts the abyssal balance can buy.
func (s *Snapshot) BuyableHepteracts() float64 {
	return math.Floor(s.data.WowAbyssals)
}
