package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFilesCommand(ctx *commandContext) *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Browse converted files",
	}
	filesCmd.AddCommand(newFilesListCommand(ctx))
	filesCmd.AddCommand(newFilesSelectCommand(ctx))
	return filesCmd
}

func newFilesListCommand(ctx *commandContext) *cobra.Command {
	var group string
	var reload bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List converted files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				if !svc.session.HasSession() {
					fmt.Fprintln(cmd.OutOrStdout(), "No active session")
					return nil
				}
				if reload {
					svc.session.LoadConvertedFiles(cmd.Context())
				}

				files := svc.session.Files()
				if group != "" {
					filtered := files[:0:0]
					for _, file := range files {
						if file.Group == group {
							filtered = append(filtered, file)
						}
					}
					files = filtered
				}

				if jsonOut {
					return writeJSON(cmd, files)
				}
				if len(files) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No converted files (run `hopper convert` first)")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderFileTable(files))
				fmt.Fprintf(cmd.OutOrStdout(), "%d files total\n", svc.session.TotalFiles())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Only show files in this group")
	cmd.Flags().BoolVar(&reload, "reload", false, "Refresh the listing from the backend first")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

func newFilesSelectCommand(ctx *commandContext) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "select [filename]",
		Short: "Set the active group or file being browsed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if group == "" && len(args) == 0 {
				return fmt.Errorf("pass a filename or --group NAME")
			}
			return ctx.withServices(func(svc *services) error {
				if group != "" {
					if err := svc.session.SelectGroup(cmd.Context(), group); err != nil {
						return err
					}
				}
				if len(args) == 1 {
					if err := svc.session.SelectFile(cmd.Context(), args[0]); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Browsing %s / %s\n",
					svc.session.ActiveGroup(), svc.session.ActiveFile())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Group to make active")
	return cmd
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "preview [filename]",
		Short: "Show a row-capped preview of a converted file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				filename := svc.session.ActiveFile()
				if len(args) == 1 {
					filename = args[0]
				}
				if filename == "" {
					return fmt.Errorf("no file selected: pass a filename or run `hopper files select`")
				}

				preview, err := svc.session.PreviewFile(cmd.Context(), filename, rows)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(preview.Columns) == 0 {
					// Backend sent an unstructured body; show it verbatim.
					out.Write(preview.Raw)
					fmt.Fprintln(out)
					return nil
				}

				fmt.Fprintln(out, renderPreviewTable(preview))
				if preview.TotalRows > len(preview.Rows) {
					fmt.Fprintf(out, "Showing %d of %d rows\n", len(preview.Rows), preview.TotalRows)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 0, "Maximum rows to fetch (defaults to the configured cap)")
	return cmd
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var dir string

	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Save converted output locally",
	}
	downloadCmd.PersistentFlags().StringVarP(&dir, "dir", "d", "", "Destination directory (defaults to the configured download dir)")

	downloadCmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Download the archive of every converted file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				sess, err := downloadSession(svc, dir)
				if err != nil {
					return err
				}
				path, written, err := sess.DownloadAll(cmd.Context())
				return reportDownload(cmd, path, written, err)
			})
		},
	})

	downloadCmd.AddCommand(&cobra.Command{
		Use:   "modified",
		Short: "Download the archive of edited files (requires edit mode)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				sess, err := downloadSession(svc, dir)
				if err != nil {
					return err
				}
				path, written, err := sess.DownloadModified(cmd.Context())
				return reportDownload(cmd, path, written, err)
			})
		},
	})

	downloadCmd.AddCommand(&cobra.Command{
		Use:   "file <filename>",
		Short: "Download one converted file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				sess, err := downloadSession(svc, dir)
				if err != nil {
					return err
				}
				path, written, err := sess.DownloadFile(cmd.Context(), args[0])
				return reportDownload(cmd, path, written, err)
			})
		},
	})

	downloadCmd.AddCommand(&cobra.Command{
		Use:   "group <name>",
		Short: "Download the archive of one group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				sess, err := downloadSession(svc, dir)
				if err != nil {
					return err
				}
				path, written, err := sess.DownloadGroup(cmd.Context(), args[0])
				return reportDownload(cmd, path, written, err)
			})
		},
	})

	return downloadCmd
}

func reportDownload(cmd *cobra.Command, path string, written int64, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", path, formatBytes(written))
	return nil
}
