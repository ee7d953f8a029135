// Package analysis runs a save through every stage its inputs allow and
// reports the result.
package analysis

import (
	"go.uber.org/zap"

	"synergism-calc/core/engine"
	"synergism-calc/core/pricing"
	"synergism-calc/core/report"
	"synergism-calc/core/save"
	"synergism-calc/core/settings"
	"synergism-calc/internal/clock"
	"synergism-calc/internal/errors"
	"synergism-calc/internal/logging"
)

// Inputs are the parsed inputs of one analysis. Settings and Prices are
// optional; without them the snapshot stops at an earlier stage.
type Inputs struct {
	Save     *save.Data
	Settings *settings.Settings
	Prices   pricing.Catalog
}

// Options tune a run.
type Options struct {
	Clock clock.Clock
}

// Result is the outcome of a run.
type Result struct {
	Game   *engine.Game
	Report *report.Report
}

// Run builds the snapshot, attaches what the inputs provide and builds the report.
// A price table with no affordable tier leaves the snapshot configured and is
// reported as a warning rather than an error.
func Run(in Inputs, opts Options) (*Result, error) {
	if in.Save == nil {
		return nil, errors.Input("analysis needs a save")
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	g := engine.NewGame(engine.New(in.Save, engine.WithClock(clk)))

	var deferred []error
	if in.Settings != nil {
		if err := g.Configure(in.Settings); err != nil {
			return nil, err
		}
		if in.Prices != nil {
			err := g.PriceFrom(in.Prices)
			switch {
			case errors.IsType(err, errors.TypeNoAffordableTier):
				deferred = append(deferred, err)
			case err != nil:
				return nil, err
			}
		}
	} else if in.Prices != nil {
		deferred = append(deferred, errors.New(errors.TypeConfigurationMissing,
			"price tables were given without settings and are ignored"))
	}

	r := report.Build(g, clk.Now())
	if in.Prices != nil {
		r.PriceTableHash = string(in.Prices.Hash())
	}
	for _, err := range deferred {
		r.Warn(err)
	}

	logging.Info("analysis complete",
		zap.Stringer("stage", r.Stage),
		zap.Int("warnings", len(r.Warnings)),
		zap.String("report_id", r.ID.String()))
	return &Result{Game: g, Report: r}, nil
}
