package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"traitline/internal/ui"
)

const Version = "0.1.0"

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	verbose bool
	dbPath  string
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "tl",
		Short:         "Traitline — crafting research tracker",
		Long:          "Traitline tracks trait research per character: completed traits, notes, bank status and research timers, locally or synced to a shared store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log remote writes to stderr")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "local database path (overrides TRAITLINE_DB)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(
		newProfileCmd(opts),
		newToggleCmd(opts),
		newNoteCmd(opts),
		newBankCmd(opts),
		newTimerCmd(opts),
		newBulkCmd(opts),
		newStatusCmd(opts),
		newSearchCmd(opts),
		newGridCmd(opts),
		newCatalogCmd(opts),
		newResetCmd(opts),
		newRefreshCmd(opts),
		newBoardCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
	)
	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		stop()
		os.Exit(1)
	}
}
