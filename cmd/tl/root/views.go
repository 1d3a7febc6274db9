package root

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"traitline/internal/catalog"
	"traitline/internal/engine"
	"traitline/internal/ui"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show research progress of the active profile",
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
			out := cmd.OutOrStdout()
			a := svc.Analytics()

			fmt.Fprintln(out, ui.Heading(ui.IconChart, "Research status"))
			fmt.Fprintln(out, ui.LabelValue("Profile", p.Name))
			mode := ui.Muted.Render("local")
			if svc.Online() {
				mode = ui.Good.Render("synced as " + svc.UserID())
			}
			fmt.Fprintln(out, ui.LabelValue("Storage", mode))
			fmt.Fprintln(out, ui.LabelValue("Overall", fmt.Sprintf("%s %d/%d %s",
				ui.ProgressBar(a.Overall.Completed, a.Overall.Total, 30), a.Overall.Completed, a.Overall.Total, ui.Percent(a.Overall.Percentage()))))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("Sections"))
			for _, s := range a.Sections {
				fmt.Fprintf(out, "- %-18s %s %3d/%-3d %s\n", s.Name,
					ui.ProgressBar(s.Stats.Completed, s.Stats.Total, 20), s.Stats.Completed, s.Stats.Total, ui.Percent(s.Stats.Percentage()))
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.LabelValue("Active timers", a.ActiveTimers))
			fmt.Fprintln(out, ui.LabelValue("Research spent", fmt.Sprintf("~%dh", a.HoursSpent)))
			fmt.Fprintln(out, ui.LabelValue("Research left", fmt.Sprintf("~%dh", a.HoursRemaining)))
			return nil
		},
	}
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Filter items and traits by name",
		Long:  "A trait is shown when its name contains the query; an item is shown when its name or any trait of its subsection matches. An empty query shows everything.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := requireProfile(svc); err != nil {
				return err
			}
			svc.SetSearchQuery(strings.Join(args, " "))
			renderSections(cmd.OutOrStdout(), svc)
			return nil
		},
	}
}

func renderSections(out io.Writer, svc *engine.Service) {
	d := svc.ProfileData()
	shown := 0
	for _, sec := range svc.Sections() {
		if len(sec.Subsections) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s %s\n", ui.Heading("", sec.Name), ui.Muted.Render(sec.Stats.String()))
		for _, sub := range sec.Subsections {
			fmt.Fprintf(out, "  %s %s %s\n", ui.H2.Render(sub.Name), ui.Muted.Render(sub.Key), ui.Muted.Render(sub.Stats.String()))
			for _, item := range sub.Items {
				shown++
				var cells []string
				for _, trait := range sub.Traits {
					cells = append(cells, ui.Check(d.Completed(sub.Key, item, trait))+" "+trait)
				}
				extra := ""
				if d.InBank(sub.Key, item) {
					extra += " " + ui.IconBank
				}
				if note := d.Note(sub.Key, item); note != "" {
					extra += " " + ui.Muted.Render(ui.IconNote+" "+note)
				}
				fmt.Fprintf(out, "    %s%s\n", ui.Key.Render(item), extra)
				if len(cells) > 0 {
					fmt.Fprintf(out, "      %s\n", strings.Join(cells, "  "))
				}
			}
		}
	}
	if shown == 0 {
		fmt.Fprintln(out, ui.Muted.Render("No matches."))
	}
}

func newGridCmd(opts *rootOptions) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "List every (item, trait) row grouped by craft",
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
			svc.SetSearchQuery(query)
			out := cmd.OutOrStdout()
			now := time.Now()
			for _, g := range svc.Grid() {
				fmt.Fprintln(out, ui.H2.Render(g.Label()))
				for _, r := range g.Rows {
					line := fmt.Sprintf("  %s %-18s %-14s", ui.Check(r.Completed), r.ItemType, r.Trait)
					if r.InBank {
						line += " " + ui.IconBank
					}
					if r.TimerEnd != nil {
						left := engine.Remaining(*r.TimerEnd, now)
						line += " " + ui.IconTimer + " " + ui.Countdown(engine.FormatRemaining(left), left <= 0)
					}
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter rows by item or trait name")
	return cmd
}

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List sections, subsection keys, items and traits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			for _, sec := range svc.Catalog().Sections {
				fmt.Fprintf(out, "%s %s\n", ui.Heading("", sec.Name), ui.Muted.Render(sec.Key))
				for _, sub := range sec.Subsections {
					fmt.Fprintf(out, "  %s\n", ui.Key.Render(catalog.SubsectionKey(sec.Key, sub.Name)))
					fmt.Fprintln(out, "    "+ui.LabelValue("Items", strings.Join(sub.Items, ", ")))
					fmt.Fprintln(out, "    "+ui.LabelValue("Traits", strings.Join(sub.Traits, ", ")))
				}
			}
			return nil
		},
	}
}
