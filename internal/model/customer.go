package model

import "time"

// Customer belongs to one owner and is looked up by phone number.
type Customer struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OwnerID     uint      `json:"owner_id" gorm:"not null;uniqueIndex:idx_customer_owner_phone"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Phone       string    `json:"phone" gorm:"type:varchar(20);not null;uniqueIndex:idx_customer_owner_phone"`
	Email       string    `json:"email,omitempty" gorm:"type:varchar(255)"`
	AddressLine string    `json:"address_line" gorm:"type:varchar(255)"`
	City        string    `json:"city" gorm:"type:varchar(100)"`
	State       string    `json:"state" gorm:"type:varchar(100)"`
	Pincode     string    `json:"pincode" gorm:"type:varchar(20)"`
	GSTNumber   string    `json:"gst_number,omitempty" gorm:"type:varchar(20)"`
	PANNumber   string    `json:"pan_number,omitempty" gorm:"type:varchar(20)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BankDetails is one of possibly many payout accounts of an owner.
type BankDetails struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	OwnerID       uint      `json:"owner_id" gorm:"not null;index"`
	BankName      string    `json:"bank_name" gorm:"type:varchar(255);not null"`
	AccountNumber string    `json:"account_number" gorm:"type:varchar(50);not null"`
	IFSC          string    `json:"ifsc" gorm:"column:ifsc;type:varchar(20)"`
	UPIID         string    `json:"upi_id,omitempty" gorm:"column:upi_id;type:varchar(100)"`
	UPIName       string    `json:"upi_name,omitempty" gorm:"column:upi_name;type:varchar(255)"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName keeps the table name singular like the rest of the schema.
func (BankDetails) TableName() string {
	return "bank_details"
}
