package repository

import (
	"context"
	"time"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"
	"invoice-service/prometheus"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// UpsertPayment creates the payment of a quotation or overwrites its status,
// amount and due date. It does not consult the transition table; callers that
// change status on behalf of a user go through SavePaymentTransition.
func (r *Repository) UpsertPayment(ctx context.Context, quotationID uint, status model.PaymentStatus, amount decimal.Decimal, dueDate *time.Time) (*model.Payment, error) {
	defer prometheus.TrackDBOperation("upsert")(time.Now())
	p := model.Payment{
		QuotationID: quotationID,
		Status:      status,
		Amount:      amount,
		PaidAmount:  decimal.Zero,
		DueDate:     dueDate,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "quotation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "amount", "due_date", "updated_at"}),
	}).Create(&p).Error
	if err != nil {
		return nil, translate("upsert payment", "payment", quotationID, err)
	}

	var stored model.Payment
	if err := r.db.WithContext(ctx).Where("quotation_id = ?", quotationID).First(&stored).Error; err != nil {
		return nil, translate("upsert payment", "payment", quotationID, err)
	}
	return &stored, nil
}

// SavePaymentTransition persists p after a status change from `from`. The
// write only lands if the stored status is still `from`, so two concurrent
// changes cannot both apply.
func (r *Repository) SavePaymentTransition(ctx context.Context, p *model.Payment, from model.PaymentStatus) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	res := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ? AND status = ?", p.ID, from).
		Updates(map[string]interface{}{
			"status":         p.Status,
			"paid_amount":    p.PaidAmount,
			"paid_at":        p.PaidAt,
			"payment_method": p.PaymentMethod,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return translate("save payment", "payment", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return &apperr.InvalidTransitionError{From: string(from), To: string(p.Status)}
	}
	return nil
}

// SweepOverdue marks PENDING payments whose due date is before now as OVERDUE
// and reports how many changed.
func (r *Repository) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())
	res := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", model.PaymentPending, now).
		Updates(map[string]interface{}{"status": model.PaymentOverdue, "updated_at": now})
	if res.Error != nil {
		return 0, translate("sweep overdue", "payment", "", res.Error)
	}
	return res.RowsAffected, nil
}

// AddReminder appends a reminder to a payment.
func (r *Repository) AddReminder(ctx context.Context, rem *model.Reminder) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate("add reminder", "reminder", rem.PaymentID, r.db.WithContext(ctx).Create(rem).Error)
}
