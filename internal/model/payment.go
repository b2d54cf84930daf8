package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentOverdue   PaymentStatus = "OVERDUE"
	PaymentPartial   PaymentStatus = "PARTIAL"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// PaymentStatuses lists every status in display order.
var PaymentStatuses = []PaymentStatus{PaymentPaid, PaymentPending, PaymentOverdue, PaymentPartial, PaymentCancelled}

// Valid reports whether s is a known status.
func (s PaymentStatus) Valid() bool {
	for _, known := range PaymentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Payment belongs to exactly one quotation.
type Payment struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	QuotationID   uint            `json:"quotation_id" gorm:"not null;uniqueIndex"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	PaidAmount    decimal.Decimal `json:"paid_amount" gorm:"type:numeric(14,2);not null;default:0"`
	Status        PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;default:PENDING;index"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty" gorm:"type:varchar(50)"`
	Reminders     []Reminder      `json:"reminders,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ReminderStatus is the delivery state of a reminder.
type ReminderStatus string

const (
	ReminderSent      ReminderStatus = "SENT"
	ReminderDelivered ReminderStatus = "DELIVERED"
	ReminderFailed    ReminderStatus = "FAILED"
)

// Valid reports whether s is a known reminder status.
func (s ReminderStatus) Valid() bool {
	switch s {
	case ReminderSent, ReminderDelivered, ReminderFailed:
		return true
	}
	return false
}

// Reminder is an append-only record of a payment reminder.
type Reminder struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	PaymentID uint           `json:"payment_id" gorm:"not null;index"`
	Type      string         `json:"type" gorm:"type:varchar(30);not null"`
	Status    ReminderStatus `json:"status" gorm:"type:varchar(20);not null"`
	Details   datatypes.JSON `json:"details,omitempty"`
	SentAt    time.Time      `json:"sent_at"`
}
