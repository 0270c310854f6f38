// Package cli is the caerus command line: the API server plus the
// operational commands run against the same database.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/caerus-app/caerus-backend/internal/sysutil"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "caerus",
		Short:         "Caerus marketplace backend",
		Long:          "caerus serves the founder, investor and talent marketplace API and runs its maintenance tasks.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return sysutil.LoadDotenv(envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newMigrateCmd(),
		newAdminCmd(),
		newPurgeCmd(),
	)
	return rootCmd
}
