// Package inputs loads the files of an analysis concurrently.
package inputs

import (
	"context"

	"golang.org/x/sync/errgroup"

	"synergism-calc/adapters/pricefile"
	"synergism-calc/adapters/savefile"
	"synergism-calc/adapters/settingsfile"
	"synergism-calc/core/analysis"
)

// Paths locate the input files. Settings and Prices may be empty.
type Paths struct {
	Save     string
	Settings string
	Prices   string
}

// Load reads every given file in parallel. The first failure cancels the rest.
func Load(ctx context.Context, p Paths) (analysis.Inputs, error) {
	var in analysis.Inputs
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		d, err := savefile.Load(p.Save)
		in.Save = d
		return err
	})

	if p.Settings != "" {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := settingsfile.Load(p.Settings)
			in.Settings = s
			return err
		})
	}

	if p.Prices != "" {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := pricefile.Load(p.Prices)
			in.Prices = c
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return analysis.Inputs{}, err
	}
	return in, nil
}
