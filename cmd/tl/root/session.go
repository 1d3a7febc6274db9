package root

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"traitline/internal/storage"
	"traitline/internal/ui"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <user-id>",
		Short: "Sync with the shared store as the given user",
		Long: "Stores the user id on this device. With TRAITLINE_REMOTE_DSN set, local progress " +
			"is uploaded once and from then on every change is written to the shared store.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := strings.TrimSpace(args[0])
			if userID == "" {
				return fmt.Errorf("user id is required")
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			db, closeDB, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			err = storage.NewSettingsRepo(db).Set(cmd.Context(), storage.SettingUserID, userID)
			closeDB()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.LabelValue("Signed in", userID))
			if cfg.RemoteDSN == "" {
				fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" TRAITLINE_REMOTE_DSN is not set; progress stays local."))
				return nil
			}

			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()
			fmt.Fprintln(out, ui.LabelValue("Profiles", len(svc.Profiles())))
			return nil
		},
	}
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Stop syncing; progress is stored locally again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			db, closeDB, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := storage.NewSettingsRepo(db).Set(cmd.Context(), storage.SettingUserID, ""); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			if cfg.UserID != "" {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(ui.IconWarn+" TRAITLINE_USER_ID is still set in the environment."))
			}
			return nil
		},
	}
}

func newRefreshCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload progress from the shared store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Refresh(cmd.Context()); err != nil {
				return err
			}
			st := svc.State()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d profile(s), %d researched trait(s), %d timer(s)\n",
				ui.IconInfo, len(st.Profiles), len(st.TraitProgress), len(st.ResearchTimers))
			return nil
		},
	}
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all progress, notes, bank flags and timers of the active profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := requireProfile(svc)
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("this clears every record of %s; re-run with --yes", p.Name)
			}
			if err := svc.ResetProgress(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", p.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm reset")
	return cmd
}
