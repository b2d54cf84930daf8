package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a product an owner sells. Name is unique per owner and does not
// change after creation.
type Item struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OwnerID   uint            `json:"owner_id" gorm:"not null;uniqueIndex:idx_item_owner_name"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_item_owner_name"`
	Brand     string          `json:"brand" gorm:"type:varchar(255)"`
	Rate      decimal.Decimal `json:"rate" gorm:"type:numeric(14,2);not null"`
	Tax       decimal.Decimal `json:"tax" gorm:"type:numeric(5,2);not null;default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
