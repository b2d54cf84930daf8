package repository

import (
	"context"
	"time"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"
	"invoice-service/prometheus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuotationFilter narrows ListQuotations. Zero values mean unset.
type QuotationFilter struct {
	CustomerID uint
	From       time.Time
	To         time.Time
}

func preloadQuotation(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Customer").
		Preload("BankDetails").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Items.Item").
		Preload("Payment").
		Preload("Payment.Reminders", func(db *gorm.DB) *gorm.DB { return db.Order("sent_at") })
}

// CreateQuotation stores q, its line items and a PENDING payment in one
// transaction. q.Payment must be set; ids are filled in on success.
func (r *Repository) CreateQuotation(ctx context.Context, q *model.Quotation) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if q.Payment == nil {
		return apperr.Validation("payment", "a quotation is created with its payment")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.Quotation{}).
			Where("owner_id = ? AND number = ?", q.OwnerID, q.Number).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Duplicate("quotation", q.Number)
		}

		if err := tx.Omit(clause.Associations).Create(q).Error; err != nil {
			return err
		}
		for i := range q.Items {
			q.Items[i].QuotationID = q.ID
			q.Items[i].Position = i + 1
			if err := tx.Omit(clause.Associations).Create(&q.Items[i]).Error; err != nil {
				return err
			}
		}
		q.Payment.QuotationID = q.ID
		return tx.Omit(clause.Associations).Create(q.Payment).Error
	})
	return translate("create quotation", "quotation", q.Number, err)
}

func (r *Repository) GetQuotationByNumber(ctx context.Context, ownerID uint, number int64) (*model.Quotation, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var q model.Quotation
	err := r.read(ctx, "get quotation", func(tx *gorm.DB) error {
		return preloadQuotation(tx).Where("owner_id = ? AND number = ?", ownerID, number).First(&q).Error
	})
	if err != nil {
		return nil, translate("get quotation", "quotation", number, err)
	}
	return &q, nil
}

// ListQuotations returns the owner's quotations, newest number first, with
// everything needed to price them.
func (r *Repository) ListQuotations(ctx context.Context, ownerID uint, f QuotationFilter) ([]model.Quotation, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var out []model.Quotation
	err := r.read(ctx, "list quotations", func(tx *gorm.DB) error {
		q := preloadQuotation(tx).Where("owner_id = ?", ownerID)
		if f.CustomerID != 0 {
			q = q.Where("customer_id = ?", f.CustomerID)
		}
		if !f.From.IsZero() {
			q = q.Where("created_at >= ?", f.From)
		}
		if !f.To.IsZero() {
			q = q.Where("created_at < ?", f.To)
		}
		return q.Order("number DESC").Find(&out).Error
	})
	return out, translate("list quotations", "quotation", ownerID, err)
}

// NextQuotationNumber suggests one past the highest number in use.
func (r *Repository) NextQuotationNumber(ctx context.Context, ownerID uint) (int64, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var max int64
	err := r.read(ctx, "next quotation number", func(tx *gorm.DB) error {
		return tx.Model(&model.Quotation{}).
			Where("owner_id = ?", ownerID).
			Select("COALESCE(MAX(number), 0)").
			Scan(&max).Error
	})
	if err != nil {
		return 0, translate("next quotation number", "quotation", ownerID, err)
	}
	return max + 1, nil
}
