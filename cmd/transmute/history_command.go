package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"transmute/internal/faults"
	"transmute/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the conversion history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printRecentHistory(cmd, ctx, limit)
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryUsageCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func (c *commandContext) historyStore() (*history.Store, error) {
	eng, err := c.ensureEngine()
	if err != nil {
		return nil, err
	}
	if eng.history == nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "cli", "history",
			"history is disabled in the configuration", nil)
	}
	return eng.history, nil
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printRecentHistory(cmd, ctx, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	return cmd
}

func printRecentHistory(cmd *cobra.Command, ctx *commandContext, limit int) error {
	store, err := ctx.historyStore()
	if err != nil {
		return err
	}
	records, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No conversions recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			humanize.Time(rec.CreatedAt),
			filepath.Base(rec.InputPath),
			rec.SourceFormat,
			rec.TargetFormat,
			recordOutcome(rec),
			rec.Duration.Round(10 * time.Millisecond).String(),
		})
	}
	writeTable(cmd.OutOrStdout(), []string{"When", "File", "From", "To", "Result", "Duration"}, rows, 6)
	return nil
}

func recordOutcome(rec history.Record) string {
	switch {
	case rec.Cancelled:
		return "cancelled"
	case rec.Success:
		return "ok"
	default:
		return "failed"
	}
}

func newHistoryUsageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show the most-used conversion pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.historyStore()
			if err != nil {
				return err
			}
			usage, err := store.Usage(cmd.Context())
			if err != nil {
				return err
			}
			if len(usage) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No successful conversions recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(usage))
			for _, u := range usage {
				rows = append(rows, []string{u.SourceFormat, u.TargetFormat, strconv.FormatInt(u.Count, 10)})
			}
			writeTable(cmd.OutOrStdout(), []string{"From", "To", "Conversions"}, rows, 3)
			return nil
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history entries older than a number of days",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.historyStore()
			if err != nil {
				return err
			}
			removed, err := store.Prune(cmd.Context(), time.Now().AddDate(0, 0, -days))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries older than %d days\n", removed, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Age threshold in days")
	return cmd
}
