package repository

import (
	"context"
	"time"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"
	"invoice-service/prometheus"

	"gorm.io/gorm"
)

func (r *Repository) CreateBankDetails(ctx context.Context, b *model.BankDetails) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate("create bank details", "bank details", b.AccountNumber, r.db.WithContext(ctx).Create(b).Error)
}

func (r *Repository) ListBankDetails(ctx context.Context, ownerID uint) ([]model.BankDetails, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var out []model.BankDetails
	err := r.read(ctx, "list bank details", func(tx *gorm.DB) error {
		return tx.Where("owner_id = ?", ownerID).Order("id").Find(&out).Error
	})
	return out, translate("list bank details", "bank details", ownerID, err)
}

func (r *Repository) GetBankDetails(ctx context.Context, ownerID, id uint) (*model.BankDetails, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var b model.BankDetails
	err := r.read(ctx, "get bank details", func(tx *gorm.DB) error {
		return tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&b).Error
	})
	if err != nil {
		return nil, translate("get bank details", "bank details", id, err)
	}
	return &b, nil
}

// DeleteBankDetails removes an account unless a quotation still points at it.
func (r *Repository) DeleteBankDetails(ctx context.Context, ownerID, id uint) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.BankDetails
		if err := tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&b).Error; err != nil {
			return err
		}
		var used int64
		if err := tx.Model(&model.Quotation{}).Where("bank_details_id = ?", id).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return apperr.Validation("id", "bank details are used by %d quotations", used)
		}
		return tx.Delete(&b).Error
	})
	return translate("delete bank details", "bank details", id, err)
}
