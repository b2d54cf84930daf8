package main

import (
	"fmt"

	"invoice-service/pkg/config"
	"invoice-service/pkg/database"
	"invoice-service/pkg/logger"

	"github.com/spf13/cobra"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	var rollback bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply every pending schema migration, or roll back the most recent one with --rollback.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			if rollback {
				if err := database.RollbackLast(db); err != nil {
					return fmt.Errorf("failed to roll back: %w", err)
				}
				logger.GetLogger().Info("Rolled back last migration")
				fmt.Fprintln(cmd.OutOrStdout(), "Rolled back the last migration.")
				return nil
			}

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the last applied migration")
	return cmd
}
