package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type statusReport struct {
	Stage         string `json:"stage"`
	LoggedIn      bool   `json:"logged_in"`
	Username      string `json:"username,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
	Archive       string `json:"archive,omitempty"`
	Groups        int    `json:"groups"`
	Files         int    `json:"files"`
	ActiveGroup   string `json:"active_group,omitempty"`
	ActiveFile    string `json:"active_file,omitempty"`
	PendingFiles  int    `json:"pending_files"`
	EditMode      bool   `json:"edit_mode"`
	LastError     string `json:"last_error,omitempty"`
	Notifications int    `json:"notifications"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show workflow and authentication state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				report := statusReport{
					Stage:         string(svc.session.Stage()),
					LoggedIn:      svc.auth.Authenticated(),
					SessionID:     svc.session.SessionID(),
					Archive:       svc.session.Archive(),
					Groups:        len(svc.session.Groups()),
					Files:         len(svc.session.Files()),
					ActiveGroup:   svc.session.ActiveGroup(),
					ActiveFile:    svc.session.ActiveFile(),
					PendingFiles:  len(svc.session.PendingFiles()),
					EditMode:      svc.session.EditMode(),
					LastError:     svc.session.LastError(),
					Notifications: len(svc.sink.Active()),
				}
				if user := svc.auth.CurrentUser(); user != nil {
					report.Username = user.Username
				}

				if jsonOut {
					return writeJSON(cmd, report)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Stage:     %s\n", stageLabel(svc.session.Stage()))
				if report.LoggedIn {
					fmt.Fprintf(out, "Logged in: yes (%s)\n", report.Username)
				} else {
					fmt.Fprintln(out, "Logged in: no")
				}
				if report.SessionID != "" {
					fmt.Fprintf(out, "Session:   %s (%s)\n", report.SessionID, report.Archive)
					fmt.Fprintf(out, "Groups:    %d\n", report.Groups)
					fmt.Fprintf(out, "Files:     %d\n", report.Files)
				}
				if report.ActiveFile != "" {
					fmt.Fprintf(out, "Browsing:  %s / %s\n", report.ActiveGroup, report.ActiveFile)
				}
				if report.PendingFiles > 0 {
					fmt.Fprintf(out, "Pending uploads: %d\n", report.PendingFiles)
				}
				if report.EditMode {
					fmt.Fprintln(out, "Edit mode: on")
				}
				if report.LastError != "" {
					fmt.Fprintf(out, "Last error: %s\n", report.LastError)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}
