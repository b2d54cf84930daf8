package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"invoice-service/internal/apperr"
	"invoice-service/internal/totals"

	"github.com/spf13/cobra"
)

func newTotalsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "totals QTY:RATE[:TAX] ...",
		Short: "Calculate quotation totals offline",
		Long: `Price one or more lines without touching the database.

Each argument is quantity:rate with an optional :tax percentage, e.g.
  invoice-service totals 2:100:18 1:50`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := make([]totals.Line, 0, len(args))
			for i, arg := range args {
				parts := strings.Split(arg, ":")
				if len(parts) < 2 || len(parts) > 3 {
					return apperr.Validation("line", "%q: expected QTY:RATE[:TAX]", arg)
				}
				tax := ""
				if len(parts) == 3 {
					tax = parts[2]
				}
				line, err := totals.ParseLine(parts[0], parts[1], tax)
				if err != nil {
					return fmt.Errorf("line %d: %w", i+1, err)
				}
				lines = append(lines, line)
			}

			res, err := totals.Compute(lines)
			if err != nil {
				return err
			}
			return printTotals(cmd, res, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func printTotals(cmd *cobra.Command, res totals.Result, asJSON bool) error {
	out := cmd.OutOrStdout()
	sum := res.Summary()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	for i, l := range res.Lines {
		fmt.Fprintf(out, "%3d. amount %12s  tax %10s  total %12s\n", i+1, totals.Format(l.Amount), totals.Format(l.Tax), totals.Format(l.Total))
	}
	fmt.Fprintf(out, "Subtotal:    %s\n", sum.Subtotal)
	fmt.Fprintf(out, "Total tax:   %s\n", sum.TotalTax)
	fmt.Fprintf(out, "Grand total: %s\n", sum.GrandTotal)
	fmt.Fprintf(out, "In words:    %s\n", sum.GrandTotalInWords)
	return nil
}
