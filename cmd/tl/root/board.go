package root

import (
	"github.com/spf13/cobra"

	"traitline/internal/tui"
)

func newBoardCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the interactive research board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, cleanup, err := openService(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.RunBoard(cmd.Context(), svc, cmd.OutOrStdout(), cfg.TimerHours)
		},
	}

	return cmd
}
