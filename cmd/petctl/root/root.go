package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pet-progression/internal/ui"
)

const Version = "0.1.0"

type globalFlags struct {
	dbPath   string
	playerID string
	verbose  bool
}

var flags globalFlags

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

// NewRootCmd wires every subcommand onto the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "petctl",
		Short:         "Local-first pet care and progression",
		Long:          "petctl looks after your pets from the terminal with care actions, discoveries, missions, achievements and star fragments.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.dbPath, "db", "", "SQLite database path (default ~/.petctl.db)")
	pf.StringVarP(&flags.playerID, "player", "p", "local", "Player id")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		newAdoptCmd(),
		newStatusCmd(),
		newDiscoverCmd(),
		newMissionsCmd(),
		newClaimCmd(),
		newAchievementsCmd(),
		newBalanceCmd(),
		newSpendCmd(),
		newLoginCmd(),
	)
	rootCmd.AddCommand(newActionCmds()...)
	return rootCmd
}
