package paymentflow

import (
	"errors"
	"testing"
	"time"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"

	"github.com/shopspring/decimal"
)

func newPayment(status model.PaymentStatus) *model.Payment {
	return &model.Payment{Amount: decimal.NewFromInt(286), PaidAmount: decimal.Zero, Status: status}
}

func TestPendingToPaidStampsPaidAt(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	p := newPayment(model.PaymentPending)

	if err := Apply(p, Change{To: model.PaymentPaid, Method: "UPI"}, now); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.Status != model.PaymentPaid || p.PaidAt == nil || !p.PaidAt.Equal(now) {
		t.Fatalf("unexpected payment %+v", p)
	}
	if !p.PaidAmount.Equal(p.Amount) || p.PaymentMethod != "UPI" {
		t.Fatalf("paid amount %s method %q", p.PaidAmount, p.PaymentMethod)
	}
	if !Terminal(p.Status) {
		t.Fatalf("PAID must be terminal")
	}

	err := Apply(p, Change{To: model.PaymentPending}, now)
	var tErr *apperr.InvalidTransitionError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if tErr.From != "PAID" || tErr.To != "PENDING" {
		t.Fatalf("unexpected %+v", tErr)
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to model.PaymentStatus
		ok       bool
	}{
		{model.PaymentPending, model.PaymentPaid, true},
		{model.PaymentPending, model.PaymentOverdue, true},
		{model.PaymentPending, model.PaymentPartial, true},
		{model.PaymentPending, model.PaymentCancelled, true},
		{model.PaymentPending, model.PaymentPending, false},
		{model.PaymentPartial, model.PaymentPaid, true},
		{model.PaymentPartial, model.PaymentPartial, true},
		{model.PaymentPartial, model.PaymentCancelled, true},
		{model.PaymentPartial, model.PaymentPending, false},
		{model.PaymentOverdue, model.PaymentPaid, true},
		{model.PaymentOverdue, model.PaymentPartial, true},
		{model.PaymentOverdue, model.PaymentCancelled, true},
		{model.PaymentOverdue, model.PaymentPending, false},
		{model.PaymentPaid, model.PaymentCancelled, false},
		{model.PaymentCancelled, model.PaymentPaid, false},
		{model.PaymentCancelled, model.PaymentPending, false},
	}
	for _, tc := range tests {
		if got := CanTransition(tc.from, tc.to); got != tc.ok {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestPartialRequiresAmountBelowTotal(t *testing.T) {
	now := time.Now()
	for _, paid := range []string{"0", "-5", "286", "300"} {
		p := newPayment(model.PaymentPending)
		err := Apply(p, Change{To: model.PaymentPartial, PaidAmount: decimal.RequireFromString(paid)}, now)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("paid %s: expected validation error, got %v", paid, err)
		}
		if p.Status != model.PaymentPending {
			t.Fatalf("paid %s: status changed on failure", paid)
		}
	}

	p := newPayment(model.PaymentPending)
	if err := Apply(p, Change{To: model.PaymentPartial, PaidAmount: decimal.NewFromInt(100)}, now); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := Apply(p, Change{To: model.PaymentPartial, PaidAmount: decimal.NewFromInt(200)}, now); err != nil {
		t.Fatalf("second partial: %v", err)
	}
	if !p.PaidAmount.Equal(decimal.NewFromInt(200)) || p.PaidAt != nil {
		t.Fatalf("unexpected payment %+v", p)
	}
}

func TestPartialNeverLowersPaidAmount(t *testing.T) {
	now := time.Now()
	p := newPayment(model.PaymentPending)
	if err := Apply(p, Change{To: model.PaymentPartial, PaidAmount: decimal.NewFromInt(150)}, now); err != nil {
		t.Fatalf("apply: %v", err)
	}

	err := Apply(p, Change{To: model.PaymentPartial, PaidAmount: decimal.NewFromInt(100)}, now)
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) || verr.Field != "paid_amount" {
		t.Fatalf("expected paid_amount validation error, got %v", err)
	}
	if !p.PaidAmount.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("paid amount changed on failure: %s", p.PaidAmount)
	}

	if err := Apply(p, Change{To: model.PaymentPartial, PaidAmount: decimal.NewFromInt(150), Method: "UPI"}, now); err != nil {
		t.Fatalf("repeating the same amount: %v", err)
	}
	if p.PaymentMethod != "UPI" {
		t.Fatalf("method = %q", p.PaymentMethod)
	}
}

func TestApplyRejectsUnknownStatus(t *testing.T) {
	err := Apply(newPayment(model.PaymentPending), Change{To: "REFUNDED"}, time.Now())
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplyLeavesRemindersAlone(t *testing.T) {
	p := newPayment(model.PaymentPending)
	p.Reminders = []model.Reminder{{ID: 1, Type: "EMAIL", Status: model.ReminderSent}}
	if err := Apply(p, Change{To: model.PaymentCancelled}, time.Now()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(p.Reminders) != 1 || p.Reminders[0].Status != model.ReminderSent {
		t.Fatalf("reminders changed: %+v", p.Reminders)
	}
}

func TestEffective(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Hour), now.Add(time.Hour)

	pending := newPayment(model.PaymentPending)
	if Effective(pending, now) != model.PaymentPending {
		t.Fatalf("no due date should stay pending")
	}
	pending.DueDate = &future
	if Effective(pending, now) != model.PaymentPending {
		t.Fatalf("future due date should stay pending")
	}
	pending.DueDate = &past
	if Effective(pending, now) != model.PaymentOverdue {
		t.Fatalf("past due date should read overdue")
	}

	partial := newPayment(model.PaymentPartial)
	partial.DueDate = &past
	if Effective(partial, now) != model.PaymentPartial {
		t.Fatalf("partial must not be reported overdue")
	}
	if Effective(nil, now) != model.PaymentPending {
		t.Fatalf("missing payment reads as pending")
	}
}
