package root

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"traitline/internal/config"
	"traitline/internal/engine"
	"traitline/internal/storage"
	"traitline/internal/ui"
)

func newTimerCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "timer",
		Aliases: []string{"timers"},
		Short:   "Manage research timers",
	}
	cmd.AddCommand(
		newTimerSetCmd(opts),
		newTimerRmCmd(opts),
		newTimerListCmd(opts),
		newTimerWatchCmd(opts),
	)
	return cmd
}

// timerHours falls back to the configured default and checks the range.
func timerHours(flag float64, cfg *config.Config) (float64, error) {
	h := flag
	if h == 0 {
		h = cfg.TimerHours
	}
	if h <= 0 || h > engine.MaxTimerHours {
		return 0, fmt.Errorf("hours must be in (0, %d], got %g", engine.MaxTimerHours, h)
	}
	return h, nil
}

func newTimerSetCmd(opts *rootOptions) *cobra.Command {
	var hours float64
	cmd := &cobra.Command{
		Use:   "set <subsection> <item> <trait>",
		Short: "Start a research timer",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := requireProfile(svc); err != nil {
				return err
			}
			h, err := timerHours(hours, cfg)
			if err != nil {
				return err
			}
			sub, item, trait := args[0], args[1], args[2]
			if err := checkTrait(svc, sub, item, trait); err != nil {
				return err
			}
			t, err := svc.SetTimer(cmd.Context(), sub, item, trait, h)
			if err != nil {
				return err
			}
			return printTimerSet(cmd.OutOrStdout(), item, trait, t, time.Now())
		},
	}
	cmd.Flags().Float64Var(&hours, "hours", 0, "timer length in hours (default TRAITLINE_TIMER_HOURS)")
	return cmd
}

// printTimerSet confirms a started timer. SetTimer returns nil when the
// inputs were rejected.
func printTimerSet(out io.Writer, item, trait string, t *storage.ResearchTimer, now time.Time) error {
	if t == nil {
		return fmt.Errorf("no timer started for %s %s", item, trait)
	}
	fmt.Fprintf(out, "%s %s %s ends %s %s\n", ui.IconTimer, item, trait,
		t.EndTime.Local().Format("Mon 15:04"), ui.Muted.Render("(in "+engine.FormatRemaining(engine.Remaining(t.EndTime, now))+")"))
	return nil
}

func newTimerRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <subsection> <item> <trait>",
		Aliases: []string{"remove"},
		Short:   "Remove a research timer",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := requireProfile(svc); err != nil {
				return err
			}
			sub, item, trait := args[0], args[1], args[2]
			if err := checkTrait(svc, sub, item, trait); err != nil {
				return err
			}
			if err := svc.RemoveTimer(cmd.Context(), sub, item, trait); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed timer for %s %s\n", item, trait)
			return nil
		},
	}
}

func newTimerListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List research timers of the active profile",
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
			renderTimers(cmd.OutOrStdout(), svc.TimerStatuses(time.Now()))
			return nil
		},
	}
}

func newTimerWatchCmd(opts *rootOptions) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show live countdowns until interrupted",
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
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			out := cmd.OutOrStdout()
			n := 0
			for statuses := range svc.WatchTimers(ctx, time.Second) {
				if n > 0 {
					fmt.Fprint(out, "\033[H\033[2J")
				}
				renderTimers(out, statuses)
				n++
				if count > 0 && n >= count {
					break
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many refreshes (0 runs until interrupted)")
	return cmd
}

func renderTimers(out io.Writer, statuses []engine.TimerStatus) {
	fmt.Fprintln(out, ui.Heading(ui.IconTimer, "Research timers"))
	if len(statuses) == 0 {
		fmt.Fprintln(out, ui.Muted.Render("(none)"))
		return
	}
	for _, s := range statuses {
		fmt.Fprintf(out, "- %s %s %s: %s\n", s.Item, s.Trait, ui.Muted.Render("["+s.Section+"]"), ui.Countdown(s.String(), s.Expired()))
	}
}
