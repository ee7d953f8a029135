// Package cmd - history commands
package cmd

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"synergism-calc/adapters/storage"
	"synergism-calc/core/output"
	"synergism-calc/core/report"
	"synergism-calc/core/ui"
	"synergism-calc/internal/config"
	"synergism-calc/internal/errors"
)

var (
	historyProfile string
	historyLimit   int
	historyFormat  string
)

// historyCmd manages recorded reports
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect reports recorded with analyze --record",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded reports, newest save first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd.Context(), config.Get())
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(cmd.Context(), &storage.ListFilter{Profile: historyProfile, Limit: historyLimit})
		if err != nil {
			return err
		}

		w := ui.NewWriter(cmd.OutOrStdout(), noColorConfigured())
		if len(records) == 0 {
			w.Info("no recorded reports")
			return w.Err()
		}
		t := w.NewTable("id", "profile", "saved", "stage", "warnings")
		for _, rec := range records {
			sum := rec.Summary()
			t.AddRow(sum.ID, sum.Profile, sum.SavedAt.Format("2006-01-02 15:04"), sum.Stage.String(), strconv.Itoa(sum.Warnings))
		}
		t.Render()
		return w.Err()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id|latest>",
	Short: "Print a recorded report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd.Context(), config.Get())
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := lookup(cmd, store, args[0])
		if err != nil {
			return err
		}
		format := firstNonEmpty(historyFormat, config.Get().Output.DefaultFormat)
		return output.Render(cmd.OutOrStdout(), format, output.Options{NoColor: noColorConfigured()}, rec.Report)
	},
}

var historyDiffCmd = &cobra.Command{
	Use:   "diff <old> <new|latest>",
	Short: "Show what changed between two recorded reports",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd.Context(), config.Get())
		if err != nil {
			return err
		}
		defer store.Close()

		older, err := lookup(cmd, store, args[0])
		if err != nil {
			return err
		}
		newer, err := lookup(cmd, store, args[1])
		if err != nil {
			return err
		}
		c := report.Compare(older.Report, newer.Report)

		format := firstNonEmpty(historyFormat, config.Get().Output.DefaultFormat)
		switch output.Format(strings.ToLower(format)) {
		case output.FormatJSON:
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		case output.FormatCLI, "":
		default:
			return errors.Newf(errors.TypeInput, "unknown output format %q", format)
		}

		w := ui.NewWriter(cmd.OutOrStdout(), noColorConfigured())
		w.Info("%s → %s, %s hours apart", older.ID, newer.ID, decimal.NewFromFloat(c.ElapsedHours).StringFixed(1))
		if len(c.Changes) > 0 {
			t := w.NewTable("metric", "old", "new", "delta", "change")
			for _, ch := range c.Changes {
				change := "-"
				if ch.DeltaPercent != nil {
					change = report.Format(report.KindPercent, *ch.DeltaPercent)
				}
				t.AddRow(ch.Label,
					report.Format(ch.Kind, ch.Old),
					report.Format(ch.Kind, ch.New),
					report.Format(ch.Kind, ch.Delta),
					change)
			}
			t.Render()
		} else {
			w.Info("no metric changed")
		}
		for _, key := range c.Added {
			w.Success("now available: %s", key)
		}
		return w.Err()
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recorded report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd.Context(), config.Get())
		if err != nil {
			return err
		}
		defer store.Close()

		return store.Delete(cmd.Context(), args[0])
	},
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyProfile, "profile", "", "history profile (default from config)")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum reports to list (0 for all)")
	historyShowCmd.Flags().StringVarP(&historyFormat, "format", "f", "", "output format (cli, json)")
	historyDiffCmd.Flags().StringVarP(&historyFormat, "format", "f", "", "output format (cli, json)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDiffCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	return storage.Open(ctx, storage.Backend(cfg.History.Backend), cfg.History.Location())
}

// lookup resolves an ID, or "latest" for the newest report of the profile.
func lookup(cmd *cobra.Command, store storage.Store, ref string) (*storage.Record, error) {
	if ref == "latest" {
		return store.Latest(cmd.Context(), firstNonEmpty(historyProfile, config.Get().History.Profile))
	}
	return store.Get(cmd.Context(), ref)
}

func noColorConfigured() bool {
	return config.Get().Output.NoColor
}
