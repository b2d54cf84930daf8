// Package paymentflow guards payment status changes with an explicit
// transition table.
package paymentflow

import (
	"time"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"

	"github.com/shopspring/decimal"
)

var transitions = map[model.PaymentStatus][]model.PaymentStatus{
	model.PaymentPending: {model.PaymentPaid, model.PaymentOverdue, model.PaymentPartial, model.PaymentCancelled},
	model.PaymentPartial: {model.PaymentPaid, model.PaymentPartial, model.PaymentCancelled},
	model.PaymentOverdue: {model.PaymentPaid, model.PaymentPartial, model.PaymentCancelled},
	// PAID and CANCELLED are terminal.
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to model.PaymentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func Terminal(s model.PaymentStatus) bool {
	return len(transitions[s]) == 0
}

// Change is a requested status update. PaidAmount is only read for PARTIAL.
type Change struct {
	To         model.PaymentStatus
	PaidAmount decimal.Decimal
	Method     string
}

// Apply moves p to c.To or returns an error leaving p untouched. Entering PAID
// stamps PaidAt and settles PaidAmount to the full amount. A further PARTIAL
// update may only raise the paid amount. Reminders are not touched.
func Apply(p *model.Payment, c Change, now time.Time) error {
	if !c.To.Valid() {
		return apperr.Validation("status", "unknown payment status %q", c.To)
	}
	if !CanTransition(p.Status, c.To) {
		return &apperr.InvalidTransitionError{From: string(p.Status), To: string(c.To)}
	}

	switch c.To {
	case model.PaymentPaid:
		paidAt := now
		p.PaidAt = &paidAt
		p.PaidAmount = p.Amount
	case model.PaymentPartial:
		if !c.PaidAmount.IsPositive() || !c.PaidAmount.LessThan(p.Amount) {
			return apperr.Validation("paid_amount", "partial payment must be above 0 and below %s, got %s",
				p.Amount.StringFixed(2), c.PaidAmount.StringFixed(2))
		}
		if p.Status == model.PaymentPartial && c.PaidAmount.LessThan(p.PaidAmount) {
			return apperr.Validation("paid_amount", "already recorded %s paid, got %s",
				p.PaidAmount.StringFixed(2), c.PaidAmount.StringFixed(2))
		}
		p.PaidAmount = c.PaidAmount
	}

	if c.Method != "" {
		p.PaymentMethod = c.Method
	}
	p.Status = c.To
	return nil
}

// Effective is the status to report at now: a PENDING payment whose due date
// has passed reads as OVERDUE even before it is persisted as such.
func Effective(p *model.Payment, now time.Time) model.PaymentStatus {
	if p == nil {
		return model.PaymentPending
	}
	if p.Status == model.PaymentPending && IsDue(p, now) {
		return model.PaymentOverdue
	}
	return p.Status
}

// IsDue reports whether the due date is strictly before now.
func IsDue(p *model.Payment, now time.Time) bool {
	return p.DueDate != nil && p.DueDate.Before(now)
}
