package totals

import (
	"fmt"

	"invoice-service/internal/apperr"

	"github.com/shopspring/decimal"
)

// MaxAmount is the exclusive ceiling on a stored amount; money columns are
// numeric(14,2).
var MaxAmount = decimal.New(1, 12)

// LineResult holds the computed amounts of one line.
type LineResult struct {
	Amount decimal.Decimal
	Tax    decimal.Decimal
	Total  decimal.Decimal
}

// Result is the full calculation. Values stay unrounded until Summary.
type Result struct {
	Lines      []LineResult
	Subtotal   decimal.Decimal
	TotalTax   decimal.Decimal
	GrandTotal decimal.Decimal
	Words      string
}

// Summary is the presentation form consumed by renderers and API clients.
type Summary struct {
	Subtotal          string `json:"subtotal"`
	TotalTax          string `json:"total_tax"`
	GrandTotal        string `json:"grand_total"`
	GrandTotalInWords string `json:"grand_total_in_words"`
}

// Compute totals the given lines in order. Any invalid line fails the whole
// calculation, as does a grand total that could not be stored.
func Compute(lines []Line) (Result, error) {
	res, err := sum(lines)
	if err != nil {
		return Result{}, err
	}
	if err := res.CheckLimit(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// CheckLimit rejects a grand total that rounds to MaxAmount or more.
func (r Result) CheckLimit() error {
	if r.GrandTotal.Round(2).GreaterThanOrEqual(MaxAmount) {
		return apperr.Validation("grand_total", "must be below %s, got %s", Format(MaxAmount), Format(r.GrandTotal))
	}
	return nil
}

func sum(lines []Line) (Result, error) {
	res := Result{
		Lines:      make([]LineResult, 0, len(lines)),
		Subtotal:   decimal.Zero,
		TotalTax:   decimal.Zero,
		GrandTotal: decimal.Zero,
	}
	for i, line := range lines {
		if err := line.Validate(); err != nil {
			return Result{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		amount, tax := line.Amount(), line.Tax()
		res.Lines = append(res.Lines, LineResult{Amount: amount, Tax: tax, Total: amount.Add(tax)})
		res.Subtotal = res.Subtotal.Add(amount)
		res.TotalTax = res.TotalTax.Add(tax)
	}
	res.GrandTotal = res.Subtotal.Add(res.TotalTax)
	res.Words = InWords(res.GrandTotal)
	return res, nil
}

// Summary rounds the result for display.
func (r Result) Summary() Summary {
	return Summary{
		Subtotal:          Format(r.Subtotal),
		TotalTax:          Format(r.TotalTax),
		GrandTotal:        Format(r.GrandTotal),
		GrandTotalInWords: r.Words,
	}
}

// Format renders an amount with exactly two decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
