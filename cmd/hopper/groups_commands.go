package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGroupsCommand(ctx *commandContext) *cobra.Command {
	groupsCmd := &cobra.Command{
		Use:   "groups",
		Short: "Inspect and select scanned groups",
	}
	groupsCmd.AddCommand(newGroupsListCommand(ctx))
	groupsCmd.AddCommand(newGroupsSelectCommand(ctx))
	return groupsCmd
}

func newGroupsListCommand(ctx *commandContext) *cobra.Command {
	var search string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scanned groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				if !svc.session.IsScanned() {
					fmt.Fprintln(cmd.OutOrStdout(), "No groups scanned (run `hopper scan` first)")
					return nil
				}

				if search != "" {
					svc.session.SetSearch(search)
				}
				groups := svc.session.FilteredGroups()

				if jsonOut {
					return writeJSON(cmd, groups)
				}
				if len(groups) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No groups match %q\n", svc.session.Search())
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderGroupTable(groups))
				if selected := svc.session.SelectedGroups(); len(selected) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Selected: %s\n", strings.Join(selected, ", "))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter groups by case-insensitive substring")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

func newGroupsSelectCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var none bool
	var toggles []string

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Modify the group selection set",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && !none && len(toggles) == 0 {
				return fmt.Errorf("nothing to do: pass --all, --none, or --toggle NAME")
			}
			if all && none {
				return fmt.Errorf("--all and --none are mutually exclusive")
			}
			return ctx.withServices(func(svc *services) error {
				switch {
				case all:
					svc.session.SelectAllGroups()
				case none:
					svc.session.ClearGroupSelection()
				}
				for _, name := range toggles {
					svc.session.ToggleGroup(name)
				}

				selected := svc.session.SelectedGroups()
				if len(selected) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No groups selected")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Selected: %s\n", strings.Join(selected, ", "))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Select every scanned group")
	cmd.Flags().BoolVar(&none, "none", false, "Clear the selection")
	cmd.Flags().StringArrayVar(&toggles, "toggle", nil, "Toggle a group's membership (repeatable)")
	return cmd
}
