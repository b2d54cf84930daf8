// Package analytics builds dashboard figures from an owner's persisted
// quotations. Every figure is a fresh re-sum of the rows it is given.
package analytics

import (
	"fmt"
	"time"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"
	"invoice-service/internal/paymentflow"
	"invoice-service/internal/totals"

	"github.com/shopspring/decimal"
)

// DefaultMonths is the trailing window used for the monthly series.
const DefaultMonths = 6

// BucketStatuses are the statuses that split revenue. Cancelled quotations
// earn nothing and are reported on their own.
var BucketStatuses = []model.PaymentStatus{
	model.PaymentPaid,
	model.PaymentPending,
	model.PaymentOverdue,
	model.PaymentPartial,
}

// Dataset is everything an owner has. Quotations need Items.Item and Payment
// preloaded.
type Dataset struct {
	Quotations   []model.Quotation
	Customers    []model.Customer
	Items        []model.Item
	BankAccounts []model.BankDetails
}

// Filter narrows the overview and status buckets to a calendar year, or to
// one month of it. Zero values mean unset.
type Filter struct {
	Year  int `query:"year"`
	Month int `query:"month"`
}

// Validate rejects a month without a year and out-of-range values.
func (f Filter) Validate() error {
	if f.Month < 0 || f.Month > 12 {
		return apperr.Validation("month", "must be between 1 and 12, got %d", f.Month)
	}
	if f.Month != 0 && f.Year == 0 {
		return apperr.Validation("year", "is required when month is set")
	}
	if f.Year < 0 {
		return apperr.Validation("year", "must not be negative, got %d", f.Year)
	}
	return nil
}

// Matches reports whether t falls inside the filter.
func (f Filter) Matches(t time.Time) bool {
	if f.Year != 0 && t.Year() != f.Year {
		return false
	}
	if f.Month != 0 && int(t.Month()) != f.Month {
		return false
	}
	return true
}

// Options control the clock and window. Zero values use time.Now and
// DefaultMonths.
type Options struct {
	Now    time.Time
	Months int
}

type Bucket struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type Overview struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	TotalPending   decimal.Decimal `json:"total_pending"`
	CollectionRate float64         `json:"collection_rate"`
	Customers      int             `json:"customers"`
	Items          int             `json:"items"`
	Quotations     int             `json:"quotations"`
	BankAccounts   int             `json:"bank_accounts"`
}

type MonthPoint struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Label      string          `json:"label"`
	Revenue    decimal.Decimal `json:"revenue"`
	Collected  decimal.Decimal `json:"collected"`
	Quotations int             `json:"quotations"`
}

type GrowthPoint struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Label      string `json:"label"`
	Customers  int    `json:"customers"`
	Items      int    `json:"items"`
	Quotations int    `json:"quotations"`
}

// Summary is the dashboard payload.
type Summary struct {
	Overview         Overview                       `json:"overview"`
	PaymentStatus    map[model.PaymentStatus]Bucket `json:"payment_status"`
	Cancelled        Bucket                         `json:"cancelled"`
	MonthlyBreakdown []MonthPoint                   `json:"monthly_breakdown"`
	Growth           []GrowthPoint                  `json:"growth"`
}

// priced is a quotation reduced to what the summary needs.
type priced struct {
	createdAt time.Time
	status    model.PaymentStatus
	total     decimal.Decimal
	collected decimal.Decimal
}

// Summarize aggregates ds. An empty dataset yields zero-filled structures.
func Summarize(ds Dataset, f Filter, opts Options) (Summary, error) {
	if err := f.Validate(); err != nil {
		return Summary{}, err
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	months := opts.Months
	if months <= 0 {
		months = DefaultMonths
	}

	rows := make([]priced, 0, len(ds.Quotations))
	for i := range ds.Quotations {
		q := &ds.Quotations[i]
		res, err := totals.ForQuotation(q)
		if err != nil {
			return Summary{}, fmt.Errorf("quotation %d: %w", q.Number, err)
		}
		rows = append(rows, price(q, res.GrandTotal, now))
	}

	sum := Summary{
		Overview: Overview{
			TotalRevenue:   decimal.Zero,
			TotalCollected: decimal.Zero,
			TotalPending:   decimal.Zero,
			Customers:      len(ds.Customers),
			Items:          len(ds.Items),
			BankAccounts:   len(ds.BankAccounts),
		},
		PaymentStatus: make(map[model.PaymentStatus]Bucket, len(BucketStatuses)),
		Cancelled:     Bucket{Amount: decimal.Zero},
	}
	for _, s := range BucketStatuses {
		sum.PaymentStatus[s] = Bucket{Amount: decimal.Zero}
	}

	for _, r := range rows {
		if !f.Matches(r.createdAt.In(now.Location())) {
			continue
		}
		sum.Overview.Quotations++
		if r.status == model.PaymentCancelled {
			sum.Cancelled.Count++
			sum.Cancelled.Amount = sum.Cancelled.Amount.Add(r.total)
			continue
		}
		b := sum.PaymentStatus[r.status]
		b.Count++
		b.Amount = b.Amount.Add(r.total)
		sum.PaymentStatus[r.status] = b

		sum.Overview.TotalRevenue = sum.Overview.TotalRevenue.Add(r.total)
		sum.Overview.TotalCollected = sum.Overview.TotalCollected.Add(r.collected)
	}
	sum.Overview.TotalPending = sum.Overview.TotalRevenue.Sub(sum.Overview.TotalCollected)
	if sum.Overview.TotalRevenue.IsPositive() {
		rate, _ := sum.Overview.TotalCollected.Div(sum.Overview.TotalRevenue).Shift(2).Round(2).Float64()
		sum.Overview.CollectionRate = rate
	}

	window := monthWindow(f, now, months)
	sum.MonthlyBreakdown = monthly(rows, window, now.Location())
	sum.Growth = growth(ds, window, now.Location())
	return sum, nil
}

func price(q *model.Quotation, total decimal.Decimal, now time.Time) priced {
	status := paymentflow.Effective(q.Payment, now)
	return priced{
		createdAt: q.CreatedAt,
		status:    status,
		total:     total,
		collected: Collected(q.Payment, status, total),
	}
}

// Collected is what has been received against total: all of it once PAID,
// the paid portion (capped at total) while PARTIAL, nothing otherwise.
func Collected(p *model.Payment, status model.PaymentStatus, total decimal.Decimal) decimal.Decimal {
	switch status {
	case model.PaymentPaid:
		return total
	case model.PaymentPartial:
		if p == nil {
			return decimal.Zero
		}
		return decimal.Min(p.PaidAmount, total)
	}
	return decimal.Zero
}

type month struct {
	year  int
	month time.Month
}

func (m month) label() string {
	return fmt.Sprintf("%s %d", m.month.String()[:3], m.year)
}

// monthWindow picks the months to chart: the whole year for a year-only
// filter, otherwise n months ending at the filter month or the current one.
func monthWindow(f Filter, now time.Time, n int) []month {
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	switch {
	case f.Year != 0 && f.Month != 0:
		end = time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, now.Location())
	case f.Year != 0:
		end = time.Date(f.Year, time.December, 1, 0, 0, 0, 0, now.Location())
		n = 12
	}
	out := make([]month, 0, n)
	for i := n - 1; i >= 0; i-- {
		t := end.AddDate(0, -i, 0)
		out = append(out, month{year: t.Year(), month: t.Month()})
	}
	return out
}

func indexOf(window []month, t time.Time, loc *time.Location) int {
	t = t.In(loc)
	for i, m := range window {
		if m.year == t.Year() && m.month == t.Month() {
			return i
		}
	}
	return -1
}

func monthly(rows []priced, window []month, loc *time.Location) []MonthPoint {
	out := make([]MonthPoint, len(window))
	for i, m := range window {
		out[i] = MonthPoint{Year: m.year, Month: int(m.month), Label: m.label(), Revenue: decimal.Zero, Collected: decimal.Zero}
	}
	for _, r := range rows {
		i := indexOf(window, r.createdAt, loc)
		if i < 0 {
			continue
		}
		out[i].Quotations++
		if r.status == model.PaymentCancelled {
			continue
		}
		out[i].Revenue = out[i].Revenue.Add(r.total)
		out[i].Collected = out[i].Collected.Add(r.collected)
	}
	return out
}

func growth(ds Dataset, window []month, loc *time.Location) []GrowthPoint {
	out := make([]GrowthPoint, len(window))
	for i, m := range window {
		out[i] = GrowthPoint{Year: m.year, Month: int(m.month), Label: m.label()}
	}
	for _, c := range ds.Customers {
		if i := indexOf(window, c.CreatedAt, loc); i >= 0 {
			out[i].Customers++
		}
	}
	for _, it := range ds.Items {
		if i := indexOf(window, it.CreatedAt, loc); i >= 0 {
			out[i].Items++
		}
	}
	for _, q := range ds.Quotations {
		if i := indexOf(window, q.CreatedAt, loc); i >= 0 {
			out[i].Quotations++
		}
	}
	return out
}
