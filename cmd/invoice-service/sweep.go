package main

import (
	"fmt"

	"invoice-service/internal/repository"
	"invoice-service/internal/service"
	"invoice-service/pkg/config"

	"github.com/spf13/cobra"
)

func newSweepOverdueCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep-overdue",
		Short: "Mark pending payments past their due date as overdue",
		Long:  "Persist OVERDUE for every PENDING payment whose due date has passed. Safe to run repeatedly, e.g. from cron.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := service.NewQuotationService(repository.New(db)).SweepOverdue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d payment(s) overdue.\n", n)
			return nil
		},
	}
	return cmd
}
