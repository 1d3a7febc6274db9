package root

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"traitline/internal/engine"
	"traitline/internal/ui"
)

func checkItem(svc *engine.Service, subsection, item string) error {
	if !svc.Catalog().ValidItem(subsection, item) {
		return fmt.Errorf("unknown item %q in %q (see `tl catalog`)", item, subsection)
	}
	return nil
}

func checkTrait(svc *engine.Service, subsection, item, trait string) error {
	if err := checkItem(svc, subsection, item); err != nil {
		return err
	}
	if !svc.Catalog().ValidTrait(subsection, item, trait) {
		return fmt.Errorf("unknown trait %q in %q (see `tl catalog`)", trait, subsection)
	}
	return nil
}

func newToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <subsection> <item> <trait>",
		Short: "Flip a trait between researched and not researched",
		Example: `  tl toggle blacksmithing-weapons Sword Sharpened
  tl toggle blacksmithing-weapons "Battle Axe" Infused`,
		Args: cobra.ExactArgs(3),
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
			done, err := svc.ToggleTrait(cmd.Context(), sub, item, trait)
			if err != nil {
				return err
			}
			status := ui.Muted.Render("not researched")
			if done {
				status = ui.Good.Render("researched")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s: %s\n", ui.Check(done), item, trait, status)
			return nil
		},
	}
}

func newNoteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "note <subsection> <item> [text...]",
		Short: "Set or clear the note of an item",
		Long:  "Set the note of an item. Without text, or with only whitespace, the note is removed.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := requireProfile(svc); err != nil {
				return err
			}
			sub, item := args[0], args[1]
			if err := checkItem(svc, sub, item); err != nil {
				return err
			}
			text := strings.Join(args[2:], " ")
			if err := svc.SetNote(cmd.Context(), sub, item, text); err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Cleared note on %s\n", ui.IconNote, item)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", ui.IconNote, item, text)
			return nil
		},
	}
}

func newBankCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bank <subsection> <item>",
		Short: "Flip whether a research copy of the item sits in the bank",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := requireProfile(svc); err != nil {
				return err
			}
			sub, item := args[0], args[1]
			if err := checkItem(svc, sub, item); err != nil {
				return err
			}
			in, err := svc.ToggleBank(cmd.Context(), sub, item)
			if err != nil {
				return err
			}
			if in {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s is in the bank\n", ui.IconBank, item)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s is no longer in the bank\n", ui.IconBank, item)
			}
			return nil
		},
	}
}
