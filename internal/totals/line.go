// Package totals computes quotation amounts: per-line amount and tax,
// subtotal, total tax, grand total and the grand total in words.
package totals

import (
	"strconv"
	"strings"

	"invoice-service/internal/apperr"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Line is one priced line of a quotation.
type Line struct {
	Quantity   int64
	Rate       decimal.Decimal
	TaxPercent decimal.Decimal
}

// ParseLine builds a Line from raw text input. An empty tax means zero.
func ParseLine(quantity, rate, tax string) (Line, error) {
	q, err := strconv.ParseInt(strings.TrimSpace(quantity), 10, 64)
	if err != nil {
		return Line{}, apperr.Validation("quantity", "%q is not a whole number", quantity)
	}
	r, err := decimal.NewFromString(strings.TrimSpace(rate))
	if err != nil {
		return Line{}, apperr.Validation("rate", "%q is not a number", rate)
	}
	t := decimal.Zero
	if s := strings.TrimSpace(tax); s != "" {
		if t, err = decimal.NewFromString(s); err != nil {
			return Line{}, apperr.Validation("tax", "%q is not a number", tax)
		}
	}

	line := Line{Quantity: q, Rate: r, TaxPercent: t}
	if err := line.Validate(); err != nil {
		return Line{}, err
	}
	return line, nil
}

// Validate rejects negative quantities and rates and tax outside [0,100].
func (l Line) Validate() error {
	if l.Quantity < 0 {
		return apperr.Validation("quantity", "must not be negative, got %d", l.Quantity)
	}
	if l.Rate.IsNegative() {
		return apperr.Validation("rate", "must not be negative, got %s", l.Rate)
	}
	if l.TaxPercent.IsNegative() || l.TaxPercent.GreaterThan(hundred) {
		return apperr.Validation("tax", "must be between 0 and 100, got %s", l.TaxPercent)
	}
	return nil
}

// Amount is quantity × rate, unrounded.
func (l Line) Amount() decimal.Decimal {
	return decimal.NewFromInt(l.Quantity).Mul(l.Rate)
}

// Tax is the amount × taxPercent / 100, unrounded.
func (l Line) Tax() decimal.Decimal {
	return l.Amount().Mul(l.TaxPercent).Shift(-2)
}
