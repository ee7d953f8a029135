// Package settings holds the calculator inputs that a save does not carry.
package settings

import (
	"fmt"
	"math"

	"synergism-calc/core/quark"
	"synergism-calc/internal/errors"
)

// Settings is loaded once per session and attached to a snapshot.
type Settings struct {
	// TargetGainPercent is the chronos increase worth upgrading for
	TargetGainPercent int `json:"targetGainPercent" yaml:"targetGainPercent"`

	// AddUsesPerDay is the extra daily calculator uses, in minutes of generation
	AddUsesPerDay int `json:"addUsesPerDay" yaml:"addUsesPerDay"`

	// GenerationRate is hepteracts generated per second
	GenerationRate float64 `json:"hps" yaml:"hps"`

	// ShopQuarkCost prices each shop upgrade counted in total quarks
	ShopQuarkCost map[string]quark.CostTable `json:"shopQuarkCost" yaml:"shopQuarkCost"`
}

// Validate checks the settings can be bound to any save.
func (s *Settings) Validate() error {
	if s == nil {
		return errors.Input("settings are nil")
	}
	if math.IsNaN(s.GenerationRate) || math.IsInf(s.GenerationRate, 0) || s.GenerationRate < 0 {
		return errors.Input(fmt.Sprintf("hps must be a non-negative number, got %v", s.GenerationRate))
	}
	if s.AddUsesPerDay < 0 {
		return errors.Input(fmt.Sprintf("addUsesPerDay must not be negative, got %d", s.AddUsesPerDay))
	}
	for name := range s.ShopQuarkCost {
		if !quark.Known(quark.Upgrade(name)) {
			return errors.Input(fmt.Sprintf("shopQuarkCost names unknown upgrade %q", name)).
				WithContext("upgrade", name)
		}
	}
	return nil
}
