package root

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"traitline/internal/ui"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles", "char"},
		Short:   "Manage character profiles",
	}
	cmd.AddCommand(
		newProfileCreateCmd(opts),
		newProfileListCmd(opts),
		newProfileRenameCmd(opts),
		newProfileDeleteCmd(opts),
		newProfileSelectCmd(opts),
		newProfileThemeCmd(opts),
	)
	return cmd
}

func newProfileCreateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile and make it active",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return errors.New("profile name is required")
			}
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := svc.CreateProfile(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Created %s %s\n", ui.IconPlus, ui.Key.Render(p.Name), ui.Muted.Render("("+p.ID+")"))
			return nil
		},
	}
}

func newProfileListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			profiles := svc.Profiles()
			if len(profiles) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No profiles yet. Create one with `tl profile create <name>`."))
				return nil
			}
			active := ""
			if cur := svc.Current(); cur != nil {
				active = cur.ID
			}
			fmt.Fprintln(out, ui.Heading(ui.IconUser, "Profiles"))
			for _, p := range profiles {
				marker := "  "
				name := p.Name
				if p.ID == active {
					marker = ui.Gold.Render("* ")
					name = ui.Key.Render(name)
				}
				fmt.Fprintf(out, "%s%s %s %s\n", marker, name, ui.ThemeText(string(p.Theme)), ui.Muted.Render(p.ID))
			}
			return nil
		},
	}
}

func newProfileRenameCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id|name> <new name>",
		Short: "Rename a profile",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args[1:], " "))
			if name == "" {
				return errors.New("new name is required")
			}
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := resolveProfile(svc, args[0])
			if err != nil {
				return err
			}
			if err := svc.RenameProfile(cmd.Context(), p.ID, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", p.Name, ui.Key.Render(name))
			return nil
		},
	}
}

func newProfileDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a profile and all of its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := resolveProfile(svc, args[0])
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("deleting %s removes all of its progress; re-run with --yes", p.Name)
			}
			if err := svc.DeleteProfile(cmd.Context(), p.ID); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deleted %s\n", p.Name)
			if cur := svc.Current(); cur != nil {
				fmt.Fprintln(out, ui.LabelValue("Active", cur.Name))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}

func newProfileSelectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "select <id|name>",
		Aliases: []string{"use"},
		Short:   "Make a profile active on this device",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := resolveProfile(svc, args[0])
			if err != nil {
				return err
			}
			if err := svc.SelectProfile(cmd.Context(), p.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Active", p.Name))
			return nil
		},
	}
}

func newProfileThemeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "theme",
		Short: "Toggle the active profile between dark and light",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := requireProfile(svc); err != nil {
				return err
			}
			theme, err := svc.ToggleTheme(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Theme", ui.ThemeText(string(theme))))
			return nil
		},
	}
}
