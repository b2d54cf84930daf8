package service

import (
	"context"
	"fmt"
	"time"

	"invoice-service/internal/analytics"
	"invoice-service/internal/export"
	"invoice-service/internal/paymentflow"
	"invoice-service/internal/repository"
	"invoice-service/internal/totals"
	"invoice-service/pkg/logger"

	"go.uber.org/zap"
)

// AnalyticsService assembles an owner's dataset and summarizes it. Nothing is
// cached; every call re-reads and re-sums.
type AnalyticsService struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewAnalyticsService(repo *repository.Repository) *AnalyticsService {
	return &AnalyticsService{repo: repo, now: time.Now}
}

func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

func (s *AnalyticsService) dataset(ctx context.Context, ownerID uint) (analytics.Dataset, error) {
	var (
		ds  analytics.Dataset
		err error
	)
	if ds.Quotations, err = s.repo.ListQuotations(ctx, ownerID, repository.QuotationFilter{}); err != nil {
		return ds, err
	}
	if ds.Customers, err = s.repo.ListCustomers(ctx, ownerID); err != nil {
		return ds, err
	}
	if ds.Items, err = s.repo.ListItems(ctx, ownerID); err != nil {
		return ds, err
	}
	if ds.BankAccounts, err = s.repo.ListBankDetails(ctx, ownerID); err != nil {
		return ds, err
	}
	return ds, nil
}

// Dashboard summarizes the owner's business for the filter.
func (s *AnalyticsService) Dashboard(ctx context.Context, ownerID uint, f analytics.Filter) (analytics.Summary, error) {
	if err := f.Validate(); err != nil {
		return analytics.Summary{}, err
	}
	ds, err := s.dataset(ctx, ownerID)
	if err != nil {
		return analytics.Summary{}, err
	}
	sum, err := analytics.Summarize(ds, f, analytics.Options{Now: s.now()})
	if err != nil {
		return analytics.Summary{}, err
	}
	logger.FromContext(ctx).Debug("Dashboard computed",
		zap.Uint("owner_id", ownerID),
		zap.Int("quotations", sum.Overview.Quotations),
		zap.String("revenue", totals.Format(sum.Overview.TotalRevenue)))
	return sum, nil
}

// Export renders the dashboard and the matching quotations as an xlsx
// workbook. It returns the file name to offer the client.
func (s *AnalyticsService) Export(ctx context.Context, ownerID uint, f analytics.Filter) ([]byte, string, error) {
	if err := f.Validate(); err != nil {
		return nil, "", err
	}
	owner, err := s.repo.GetOwner(ctx, ownerID)
	if err != nil {
		return nil, "", err
	}
	ds, err := s.dataset(ctx, ownerID)
	if err != nil {
		return nil, "", err
	}
	now := s.now()
	sum, err := analytics.Summarize(ds, f, analytics.Options{Now: now})
	if err != nil {
		return nil, "", err
	}

	rows := make([]export.QuotationRow, 0, len(ds.Quotations))
	for i := range ds.Quotations {
		q := &ds.Quotations[i]
		if !f.Matches(q.CreatedAt.In(now.Location())) {
			continue
		}
		res, err := totals.ForQuotation(q)
		if err != nil {
			return nil, "", fmt.Errorf("quotation %d: %w", q.Number, err)
		}
		status := paymentflow.Effective(q.Payment, now)
		rows = append(rows, export.QuotationRow{
			Number:     q.Number,
			Customer:   q.Customer.Name,
			Date:       q.CreatedAt,
			Status:     status,
			GrandTotal: res.GrandTotal,
			Collected:  analytics.Collected(q.Payment, status, res.GrandTotal),
		})
	}

	title := owner.CompanyName
	if title == "" {
		title = owner.Name
	}
	out, err := export.Workbook(title+" dashboard", sum, rows, now)
	if err != nil {
		return nil, "", err
	}
	name := "analytics-" + now.Format("2006-01-02") + ".xlsx"
	switch {
	case f.Year != 0 && f.Month != 0:
		name = fmt.Sprintf("analytics-%d-%02d.xlsx", f.Year, f.Month)
	case f.Year != 0:
		name = fmt.Sprintf("analytics-%d.xlsx", f.Year)
	}
	return out, name, nil
}
