package analytics

import (
	"errors"
	"testing"
	"time"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"

	"github.com/shopspring/decimal"
)

var now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func quotation(number int64, created time.Time, rate string, qty int64, tax string, pay *model.Payment) model.Quotation {
	return model.Quotation{
		Number:    number,
		CreatedAt: created,
		Items: []model.QuotationItem{{
			Quantity: qty,
			Tax:      decimal.RequireFromString(tax),
			Item:     model.Item{Rate: decimal.RequireFromString(rate)},
		}},
		Payment: pay,
	}
}

func payment(status model.PaymentStatus, amount, paid string, due *time.Time) *model.Payment {
	return &model.Payment{
		Status:     status,
		Amount:     decimal.RequireFromString(amount),
		PaidAmount: decimal.RequireFromString(paid),
		DueDate:    due,
	}
}

func sampleDataset() Dataset {
	past := now.AddDate(0, 0, -3)
	return Dataset{
		Quotations: []model.Quotation{
			quotation(1, now.AddDate(0, -1, 0), "100", 2, "18", payment(model.PaymentPaid, "236", "236", nil)),     // 236
			quotation(2, now, "50", 1, "0", payment(model.PaymentPending, "50", "0", nil)),                         // 50
			quotation(3, now, "200", 1, "0", payment(model.PaymentPending, "200", "0", &past)),                     // 200, overdue
			quotation(4, now.AddDate(0, -2, 0), "1000", 1, "0", payment(model.PaymentPartial, "1000", "400", nil)), // 1000
			quotation(5, now, "80", 1, "0", payment(model.PaymentCancelled, "80", "0", nil)),                       // 80, excluded
			quotation(6, now.AddDate(-1, 0, 0), "10", 1, "0", nil),                                                 // 10, no payment
		},
		Customers:    []model.Customer{{CreatedAt: now}, {CreatedAt: now.AddDate(0, -1, 0)}},
		Items:        []model.Item{{CreatedAt: now}},
		BankAccounts: []model.BankDetails{{}},
	}
}

func sumBuckets(s Summary) decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.PaymentStatus {
		total = total.Add(b.Amount)
	}
	return total
}

func TestSummarizeOverview(t *testing.T) {
	s, err := Summarize(sampleDataset(), Filter{}, Options{Now: now})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	ov := s.Overview
	if ov.TotalRevenue.StringFixed(2) != "1496.00" {
		t.Fatalf("revenue = %s", ov.TotalRevenue)
	}
	if ov.TotalCollected.StringFixed(2) != "636.00" {
		t.Fatalf("collected = %s", ov.TotalCollected)
	}
	if ov.TotalPending.StringFixed(2) != "860.00" {
		t.Fatalf("pending = %s", ov.TotalPending)
	}
	if ov.CollectionRate != 42.51 {
		t.Fatalf("collection rate = %v", ov.CollectionRate)
	}
	if ov.Quotations != 6 || ov.Customers != 2 || ov.Items != 1 || ov.BankAccounts != 1 {
		t.Fatalf("counts = %+v", ov)
	}

	want := map[model.PaymentStatus]struct {
		count  int
		amount string
	}{
		model.PaymentPaid:    {1, "236.00"},
		model.PaymentPending: {2, "60.00"},
		model.PaymentOverdue: {1, "200.00"},
		model.PaymentPartial: {1, "1000.00"},
	}
	for status, w := range want {
		b := s.PaymentStatus[status]
		if b.Count != w.count || b.Amount.StringFixed(2) != w.amount {
			t.Fatalf("%s bucket = %d/%s, want %d/%s", status, b.Count, b.Amount, w.count, w.amount)
		}
	}
	if s.Cancelled.Count != 1 || s.Cancelled.Amount.StringFixed(2) != "80.00" {
		t.Fatalf("cancelled = %+v", s.Cancelled)
	}
	if !sumBuckets(s).Equal(ov.TotalRevenue) {
		t.Fatalf("bucket sum %s != revenue %s", sumBuckets(s), ov.TotalRevenue)
	}
}

func TestSummarizeBucketInvariantUnderFilters(t *testing.T) {
	filters := []Filter{{}, {Year: 2025}, {Year: 2025, Month: 6}, {Year: 2025, Month: 4}, {Year: 2024}, {Year: 1999}}
	for _, f := range filters {
		s, err := Summarize(sampleDataset(), f, Options{Now: now})
		if err != nil {
			t.Fatalf("%+v: %v", f, err)
		}
		if !sumBuckets(s).Equal(s.Overview.TotalRevenue) {
			t.Fatalf("%+v: bucket sum %s != revenue %s", f, sumBuckets(s), s.Overview.TotalRevenue)
		}
	}
}

func TestSummarizeMonthFilter(t *testing.T) {
	s, err := Summarize(sampleDataset(), Filter{Year: 2025, Month: 6}, Options{Now: now})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Overview.Quotations != 3 {
		t.Fatalf("quotations = %d", s.Overview.Quotations)
	}
	if s.Overview.TotalRevenue.StringFixed(2) != "250.00" {
		t.Fatalf("revenue = %s", s.Overview.TotalRevenue)
	}
	last := s.MonthlyBreakdown[len(s.MonthlyBreakdown)-1]
	if last.Year != 2025 || last.Month != 6 || last.Label != "Jun 2025" {
		t.Fatalf("window should end at the filter month, got %+v", last)
	}
}

func TestSummarizeMonthlyAndGrowth(t *testing.T) {
	s, err := Summarize(sampleDataset(), Filter{}, Options{Now: now})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(s.MonthlyBreakdown) != DefaultMonths || len(s.Growth) != DefaultMonths {
		t.Fatalf("window lengths %d/%d", len(s.MonthlyBreakdown), len(s.Growth))
	}
	if first := s.MonthlyBreakdown[0]; first.Year != 2025 || first.Month != 1 {
		t.Fatalf("first month = %+v", first)
	}

	june := s.MonthlyBreakdown[5]
	if june.Quotations != 3 || june.Revenue.StringFixed(2) != "250.00" || !june.Collected.IsZero() {
		t.Fatalf("june = %+v", june)
	}
	may := s.MonthlyBreakdown[4]
	if may.Revenue.StringFixed(2) != "236.00" || may.Collected.StringFixed(2) != "236.00" {
		t.Fatalf("may = %+v", may)
	}
	april := s.MonthlyBreakdown[3]
	if april.Collected.StringFixed(2) != "400.00" {
		t.Fatalf("april = %+v", april)
	}

	if g := s.Growth[5]; g.Customers != 1 || g.Items != 1 || g.Quotations != 3 {
		t.Fatalf("june growth = %+v", g)
	}
	if g := s.Growth[4]; g.Customers != 1 || g.Quotations != 1 {
		t.Fatalf("may growth = %+v", g)
	}
}

func TestSummarizeYearFilterChartsWholeYear(t *testing.T) {
	s, err := Summarize(sampleDataset(), Filter{Year: 2024}, Options{Now: now})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(s.MonthlyBreakdown) != 12 || s.MonthlyBreakdown[0].Month != 1 || s.MonthlyBreakdown[11].Month != 12 {
		t.Fatalf("unexpected window %+v", s.MonthlyBreakdown)
	}
	if s.Overview.Quotations != 1 || s.PaymentStatus[model.PaymentPending].Count != 1 {
		t.Fatalf("2024 should hold the quotation without payment: %+v", s.Overview)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s, err := Summarize(Dataset{}, Filter{}, Options{Now: now})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !s.Overview.TotalRevenue.IsZero() || !s.Overview.TotalCollected.IsZero() || !s.Overview.TotalPending.IsZero() {
		t.Fatalf("overview not zero: %+v", s.Overview)
	}
	if s.Overview.CollectionRate != 0 {
		t.Fatalf("collection rate = %v", s.Overview.CollectionRate)
	}
	for _, status := range BucketStatuses {
		b, ok := s.PaymentStatus[status]
		if !ok || b.Count != 0 || !b.Amount.IsZero() {
			t.Fatalf("%s bucket = %+v (present %v)", status, b, ok)
		}
	}
	if len(s.MonthlyBreakdown) != DefaultMonths || len(s.Growth) != DefaultMonths {
		t.Fatalf("empty dataset still lists months")
	}
}

func TestFilterValidation(t *testing.T) {
	for _, f := range []Filter{{Month: 3}, {Year: 2025, Month: 13}, {Year: -1}} {
		_, err := Summarize(Dataset{}, f, Options{Now: now})
		var vErr *apperr.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("%+v: expected ValidationError, got %v", f, err)
		}
	}
}
