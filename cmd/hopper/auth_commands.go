package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the conversion backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				user := strings.TrimSpace(username)
				if user == "" {
					var err error
					user, err = promptLine(cmd, "Username: ")
					if err != nil {
						return err
					}
				}
				pass := password
				if pass == "" {
					var err error
					pass, err = promptLine(cmd, "Password: ")
					if err != nil {
						return err
					}
				}

				identity, err := svc.auth.Login(cmd.Context(), user, pass)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", identity.Username, identity.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				svc.auth.Logout(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				if !svc.auth.Authenticated() {
					fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
					return nil
				}

				user, err := svc.auth.FetchCurrentUser(cmd.Context())
				if err != nil {
					return err
				}
				if user == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
					return nil
				}

				if jsonOut {
					return writeJSON(cmd, user)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Username: %s\n", user.Username)
				fmt.Fprintf(cmd.OutOrStdout(), "Role:     %s\n", user.Role)
				fmt.Fprintf(cmd.OutOrStdout(), "Admin:    %s\n", yesNo(user.IsAdmin()))
				if expiry, ok := svc.auth.Expiry(); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "Token expires: %s\n", expiry.Local().Format(time.RFC1123))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
