package main

import (
	"context"
	"fmt"

	"invoice-service/pkg/config"
	"invoice-service/pkg/database"
	"invoice-service/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "invoice-service",
		Short:         "Quotations, invoices and payment tracking for small businesses",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newMigrateCmd(cfg))
	rootCmd.AddCommand(newSweepOverdueCmd(cfg))
	rootCmd.AddCommand(newTotalsCmd())

	return rootCmd
}

// openDB connects with retries and closes the pool when ctx ends.
func openDB(ctx context.Context, cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := database.InitDB(ctx, &cfg.DB, logger.GetLogger())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return db, closeFn, nil
}
