package totals

import "invoice-service/internal/model"

// QuotationLines prices stored line items: rate comes from the item as it is
// now, tax from the percentage captured on the line.
func QuotationLines(items []model.QuotationItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, qi := range items {
		lines = append(lines, Line{
			Quantity:   qi.Quantity,
			Rate:       qi.Item.Rate,
			TaxPercent: qi.Tax,
		})
	}
	return lines
}

// ForQuotation computes the totals of a quotation with its items preloaded.
// A stored quotation always prices, even if a later rate change pushes it past
// MaxAmount; callers about to store a new one check CheckLimit themselves.
func ForQuotation(q *model.Quotation) (Result, error) {
	return sum(QuotationLines(q.Items))
}
