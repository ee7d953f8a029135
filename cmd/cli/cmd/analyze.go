// Package cmd - analyze command
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"synergism-calc/adapters/inputs"
	"synergism-calc/adapters/storage"
	"synergism-calc/core/analysis"
	"synergism-calc/core/output"
	"synergism-calc/internal/clock"
	"synergism-calc/internal/config"
	"synergism-calc/internal/errors"
	"synergism-calc/internal/logging"
)

var (
	settingsFile string
	pricesFile   string
	outputFormat string
	atTime       string
	noColor      bool
	record       bool
	profile      string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <save>",
	Short: "Report the derived values of a save",
	Long: `Read a save export and report every value its inputs allow.

Without settings only save-derived values are reported. Settings add the
quark economy; settings and price tables add the shop and powder values.
Values that need a missing input are listed as warnings.

Examples:
  synergism-calc analyze save.txt
  synergism-calc analyze --settings settings.yaml --prices prices.csv save.txt
  synergism-calc analyze --at 2025-01-01T12:00:00Z --format json save.txt
  synergism-calc analyze --record --profile main save.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&settingsFile, "settings", "s", "", "settings file (.json, .yaml, .yml, .hcl)")
	analyzeCmd.Flags().StringVarP(&pricesFile, "prices", "p", "", "price table file (.csv, .yaml, .yml)")
	analyzeCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json)")
	analyzeCmd.Flags().StringVar(&atTime, "at", "", "evaluate the ascension timer at this RFC3339 time instead of now")
	analyzeCmd.Flags().BoolVar(&noColor, "no-color", false, "disable terminal colors")
	analyzeCmd.Flags().BoolVar(&record, "record", false, "keep the report in the history")
	analyzeCmd.Flags().StringVar(&profile, "profile", "", "history profile to record under (default from config)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	start := time.Now()

	paths := inputs.Paths{
		Save:     args[0],
		Settings: firstNonEmpty(settingsFile, cfg.Inputs.Settings),
		Prices:   firstNonEmpty(pricesFile, cfg.Inputs.Prices),
	}

	var clk clock.Clock = clock.Real{}
	if atTime != "" {
		at, err := time.Parse(time.RFC3339, atTime)
		if err != nil {
			return errors.Wrapf(errors.TypeInput, err, "invalid --at %q", atTime)
		}
		clk = clock.Fixed{At: at}
	}

	in, err := inputs.Load(cmd.Context(), paths)
	if err != nil {
		return err
	}

	res, err := analysis.Run(in, analysis.Options{Clock: clk})
	if err != nil {
		return err
	}

	if record {
		store, err := openHistory(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		rec := &storage.Record{
			Profile: firstNonEmpty(profile, cfg.History.Profile),
			Report:  res.Report,
		}
		if err := store.Save(cmd.Context(), rec); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "recorded %s in profile %s\n", rec.ID, rec.Profile)
	}

	format := firstNonEmpty(outputFormat, cfg.Output.DefaultFormat)
	opts := output.Options{NoColor: noColor || cfg.Output.NoColor}
	if err := output.Render(cmd.OutOrStdout(), format, opts, res.Report); err != nil {
		return err
	}

	logging.Debug("analyze finished",
		zap.String("save", paths.Save),
		zap.Duration("took", time.Since(start)))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
