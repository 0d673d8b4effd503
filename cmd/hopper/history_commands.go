package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hopper/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the local run ledger",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var status string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded conversion runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				var filter []history.Status
				if status != "" {
					parsed := history.Status(status)
					if !parsed.Valid() {
						return fmt.Errorf("unknown status %q", status)
					}
					filter = append(filter, parsed)
				}

				runs, err := svc.history.List(cmd.Context(), limit, filter...)
				if err != nil {
					return err
				}

				if jsonOut {
					return writeJSON(cmd, runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs")
					return nil
				}

				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					detail := ""
					if run.ErrorMessage != "" {
						detail = run.ErrorMessage
					}
					rows = append(rows, []string{
						run.CreatedAt.Local().Format(time.DateTime),
						run.Archive,
						statusLabel(run.Status),
						fmt.Sprintf("%d", run.GroupCount),
						fmt.Sprintf("%d", run.FileCount),
						detail,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"When", "Archive", "Status", "Groups", "Files", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().StringVar(&status, "status", "", "Only show runs with this status")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				if err := svc.history.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
				return nil
			})
		},
	}
}
