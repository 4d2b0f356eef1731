package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Simplici0/atelier/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "atelierctl",
		Short:         "Studio back-office tooling: quote calculations, database and exports",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(); err != nil {
				return fmt.Errorf("load environment: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().String("dsn", "", "database DSN (default $DB_DSN, then $DB_PATH, then ./dev.db)")

	root.AddCommand(
		newCalcCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newExportCmd(),
		newSessionCmd(),
	)
	return root
}

func dsnFlag(cmd *cobra.Command) string {
	dsn, _ := cmd.Flags().GetString("dsn")
	if dsn == "" {
		dsn = config.DatabaseDSN()
	}
	return dsn
}
