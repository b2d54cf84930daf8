package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quotation is an invoice or quotation with its ordered line items. Totals are
// never stored; they are computed from Items on every read.
type Quotation struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	OwnerID       uint            `json:"owner_id" gorm:"not null;uniqueIndex:idx_quotation_owner_number"`
	Number        int64           `json:"number" gorm:"not null;uniqueIndex:idx_quotation_owner_number"`
	CustomerID    uint            `json:"customer_id" gorm:"not null;index"`
	Customer      Customer        `json:"customer" gorm:"constraint:OnDelete:RESTRICT"`
	BankDetailsID uint            `json:"bank_details_id" gorm:"not null;index"`
	BankDetails   BankDetails     `json:"bank_details" gorm:"constraint:OnDelete:RESTRICT"`
	Template      string          `json:"template" gorm:"type:varchar(50);default:classic"`
	Items         []QuotationItem `json:"items" gorm:"constraint:OnDelete:CASCADE"`
	Payment       *Payment        `json:"payment,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// QuotationItem pairs an item with a quantity. Tax is the percentage captured
// when the quotation was created; the rate is always read from the item.
type QuotationItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	QuotationID uint            `json:"quotation_id" gorm:"not null;index"`
	ItemID      uint            `json:"item_id" gorm:"not null;index"`
	Item        Item            `json:"item" gorm:"constraint:OnDelete:RESTRICT"`
	Position    int             `json:"position" gorm:"not null"`
	Quantity    int64           `json:"quantity" gorm:"not null"`
	Tax         decimal.Decimal `json:"tax" gorm:"type:numeric(5,2);not null;default:0"`
}
