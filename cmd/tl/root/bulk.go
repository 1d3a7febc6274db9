package root

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"traitline/internal/engine"
	"traitline/internal/ui"
)

func newBulkCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Apply one change to many items of a section",
		Long: "Bulk commands take a section key (e.g. blacksmithing) and item names. " +
			"An item is updated in every subsection of the section that lists it. " +
			"Use --all to select every item of the section.",
	}
	cmd.AddCommand(
		newBulkCompleteCmd(opts),
		newBulkBankCmd(opts),
		newBulkTimerCmd(opts),
	)
	return cmd
}

// bulkSelection resolves the item list, expanding --all.
func bulkSelection(svc *engine.Service, section string, items []string, all bool) ([]string, error) {
	if svc.Catalog().Section(section) == nil {
		return nil, fmt.Errorf("unknown section %q (see `tl catalog`)", section)
	}
	if all {
		return svc.SectionItems(section), nil
	}
	if len(items) == 0 {
		return nil, errors.New("no items selected; name items or pass --all")
	}
	return items, nil
}

func checkSectionTrait(svc *engine.Service, section, trait string) error {
	sec := svc.Catalog().Section(section)
	if sec == nil {
		return fmt.Errorf("unknown section %q (see `tl catalog`)", section)
	}
	if !slices.Contains(sec.Traits(), trait) {
		return fmt.Errorf("unknown trait %q in %q (see `tl catalog`)", trait, section)
	}
	return nil
}

func reportBulk(cmd *cobra.Command, verb string, n int, err error) error {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d item(s)\n", ui.IconSparkle, verb, n)
	return err
}

func newBulkCompleteCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "complete <section> <trait> [items...]",
		Short:   "Mark a trait researched on many items",
		Example: `  tl bulk complete blacksmithing Sharpened Sword Axe`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := requireProfile(svc); err != nil {
				return err
			}
			if err := checkSectionTrait(svc, args[0], args[1]); err != nil {
				return err
			}
			items, err := bulkSelection(svc, args[0], args[2:], all)
			if err != nil {
				return err
			}
			n, err := svc.BulkComplete(cmd.Context(), args[0], items, args[1])
			return reportBulk(cmd, "Completed "+args[1]+" on", n, err)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "select every item of the section")
	return cmd
}

func newBulkBankCmd(opts *rootOptions) *cobra.Command {
	var all, remove bool
	cmd := &cobra.Command{
		Use:   "bank <section> [items...]",
		Short: "Mark many items as in (or out of) the bank",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := requireProfile(svc); err != nil {
				return err
			}
			items, err := bulkSelection(svc, args[0], args[1:], all)
			if err != nil {
				return err
			}
			n, err := svc.BulkBank(cmd.Context(), args[0], items, !remove)
			verb := "Banked"
			if remove {
				verb = "Unbanked"
			}
			return reportBulk(cmd, verb, n, err)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "select every item of the section")
	cmd.Flags().BoolVar(&remove, "remove", false, "clear the bank flag instead of setting it")
	return cmd
}

func newBulkTimerCmd(opts *rootOptions) *cobra.Command {
	var (
		all   bool
		hours float64
	)
	cmd := &cobra.Command{
		Use:   "timer <section> <trait> [items...]",
		Short: "Start the same research timer on many items",
		Args:  cobra.MinimumNArgs(2),
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
			if err := checkSectionTrait(svc, args[0], args[1]); err != nil {
				return err
			}
			items, err := bulkSelection(svc, args[0], args[2:], all)
			if err != nil {
				return err
			}
			n, err := svc.BulkTimer(cmd.Context(), args[0], items, args[1], h)
			return reportBulk(cmd, fmt.Sprintf("Started %gh %s timers on", h, args[1]), n, err)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "select every item of the section")
	cmd.Flags().Float64Var(&hours, "hours", 0, "timer length in hours (default TRAITLINE_TIMER_HOURS)")
	return cmd
}
