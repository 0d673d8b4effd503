package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hopper/internal/config"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <archive>...",
		Short: "Queue archives and scan the first one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				for _, arg := range args {
					path, err := config.ExpandPath(arg)
					if err != nil {
						return err
					}
					svc.session.AddFiles(path)
				}
				if err := svc.session.Scan(cmd.Context()); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				summary := svc.session.Summary()
				fmt.Fprintf(out, "Scanned %s: session %s\n", svc.session.Archive(), svc.session.SessionID())
				if summary != nil {
					fmt.Fprintf(out, "%d groups, %d files\n", summary.TotalGroups, summary.TotalFiles)
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderGroupTable(svc.session.Groups()))
				return nil
			})
		},
	}
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert every scanned group",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				sess := svc.session
				if format != "" {
					// A flag override applies to this invocation only; the
					// configured format stays untouched.
					var err error
					sess, err = sessionWithFormat(svc, format)
					if err != nil {
						return err
					}
				}

				if err := sess.Convert(cmd.Context()); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Converted %d files across %d groups\n", sess.TotalFiles(), len(sess.Groups()))
				if sess.ActiveFile() != "" {
					fmt.Fprintf(out, "Browsing %s / %s\n", sess.ActiveGroup(), sess.ActiveFile())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format for this conversion (csv, xlsx, json)")
	return cmd
}

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Tear down the backend session and reset local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				if !svc.session.HasSession() {
					fmt.Fprintln(cmd.OutOrStdout(), "No active session")
					return nil
				}
				if err := svc.session.Cleanup(cmd.Context()); err != nil {
					return fmt.Errorf("cleanup failed, local state kept (use `hopper reset` to discard it): %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session cleaned up")
				return nil
			})
		},
	}
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard local workflow state without contacting the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				svc.session.Reset()
				fmt.Fprintln(cmd.OutOrStdout(), "Workflow state reset")
				return nil
			})
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var format string
	var keepSession bool

	cmd := &cobra.Command{
		Use:   "run <archive>",
		Short: "Scan, convert, download, and clean up in one shot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				sess := svc.session
				if format != "" {
					var err error
					sess, err = sessionWithFormat(svc, format)
					if err != nil {
						return err
					}
				}

				path, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()

				sess.AddFiles(path)
				if err := sess.Scan(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(out, "Scanned %s: %d groups\n", sess.Archive(), len(sess.Groups()))

				if err := sess.Convert(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(out, "Converted %d files\n", sess.TotalFiles())

				target, written, err := sess.DownloadAll(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Saved %s (%s)\n", target, formatBytes(written))

				if keepSession {
					return nil
				}
				if err := sess.Cleanup(cmd.Context()); err != nil {
					return fmt.Errorf("cleanup failed, local state kept: %w", err)
				}
				fmt.Fprintln(out, "Session cleaned up")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (csv, xlsx, json)")
	cmd.Flags().BoolVar(&keepSession, "keep", false, "Skip the final cleanup so output can still be browsed")
	return cmd
}
