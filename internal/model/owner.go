package model

import (
	"strings"
	"time"
)

// Owner is a business account. It is created on registration or on the first
// Google login and is never hard-deleted.
type Owner struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	Name                string    `json:"name" gorm:"type:varchar(255)"`
	Email               string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password            string    `json:"-" gorm:"type:varchar(255)"`
	GoogleID            *string   `json:"google_id,omitempty" gorm:"type:varchar(255);uniqueIndex"`
	Avatar              string    `json:"avatar,omitempty" gorm:"type:text"`
	CompanyName         string    `json:"company_name" gorm:"type:varchar(255)"`
	AddressLine         string    `json:"address_line" gorm:"type:varchar(255)"`
	City                string    `json:"city" gorm:"type:varchar(100)"`
	State               string    `json:"state" gorm:"type:varchar(100)"`
	Pincode             string    `json:"pincode" gorm:"type:varchar(20)"`
	GSTNumber           string    `json:"gst_number" gorm:"type:varchar(20)"`
	InvoiceInstructions string    `json:"invoice_instructions,omitempty" gorm:"type:text"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ProfileComplete reports whether the business profile has been set up.
func (o *Owner) ProfileComplete() bool {
	return o != nil && strings.TrimSpace(o.CompanyName) != ""
}
