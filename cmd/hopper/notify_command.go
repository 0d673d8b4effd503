package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newNotifyCommand(ctx *commandContext) *cobra.Command {
	notifyCmd := &cobra.Command{
		Use:   "notify",
		Short: "Notification utilities",
	}

	notifyCmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Send a test notification through the configured sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				svc.sink.Info("Test notification from hopper")
				if svc.cfg.Notifications.NtfyTopic == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "Queued locally (no ntfy topic configured)")
					return nil
				}
				// The push runs on a background goroutine; give it a moment
				// before the process exits.
				time.Sleep(2 * time.Second)
				fmt.Fprintf(cmd.OutOrStdout(), "Pushed to ntfy topic %s\n", svc.cfg.Notifications.NtfyTopic)
				return nil
			})
		},
	})

	notifyCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show active notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				active := svc.sink.Active()
				if len(active) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No active notifications")
					return nil
				}
				for _, item := range active {
					fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s (%s)\n",
						item.Level, item.Message, item.CreatedAt.Local().Format(time.TimeOnly))
				}
				return nil
			})
		},
	})

	return notifyCmd
}
