package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/zhaobenny/claude-token-counter/cli/internal/api"
	"github.com/zhaobenny/claude-token-counter/cli/internal/output"
	"github.com/zhaobenny/claude-token-counter/internal/model"
)

const defaultHistoryDays = 30

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func newStatusCommand(a *app) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show month-to-date usage from the usage API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.RequireAPIKey(); err != nil {
				return err
			}

			now := time.Now()
			monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

			records, err := api.NewClient(a.cfg).FetchUsage(cmd.Context(), monthStart)
			if err != nil {
				return err
			}
			summary := model.SummarizeRecords(records)

			if jsonOut {
				return output.PrintJSON(cmd.OutOrStdout(), summary)
			}
			output.RenderStatus(cmd.OutOrStdout(), summary, a.cfg.MonthlyLimit)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func newHistoryCommand(a *app) *cobra.Command {
	var (
		days    int
		local   bool
		jsonOut bool
		compact bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show daily usage for recent days",
		Args:  cobra.NoArgs,
		Example: `  claude-token-counter history
  claude-token-counter history --days 7
  claude-token-counter history --local`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if local {
				root, err := a.root()
				if err != nil {
					return err
				}
				db, err := openStore()
				if err != nil {
					return err
				}
				defer db.Close()

				snaps, err := db.DailyLatest(ctx, root, days)
				if err != nil {
					return err
				}
				if jsonOut {
					return output.PrintJSON(out, snaps)
				}
				output.RenderSnapshotHistory(out, snaps, output.TableOptions{ForceCompact: compact})
				return nil
			}

			if err := a.cfg.RequireAPIKey(); err != nil {
				return err
			}

			since := startOfDay(time.Now()).AddDate(0, 0, -days)
			records, err := api.NewClient(a.cfg).FetchUsage(ctx, since)
			if err != nil {
				return err
			}

			if jsonOut {
				return output.PrintJSON(out, records)
			}
			output.RenderHistory(out, records, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", defaultHistoryDays, "number of days to show")
	cmd.Flags().BoolVar(&local, "local", false, "show recorded local snapshots instead of the usage API")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "force compact table output")
	return cmd
}
