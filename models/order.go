package models

import (
	"time"

	"gorm.io/gorm"
)

// Order represents a custom garment order in the system.
//
// MaterialName and UnitPrice are snapshotted from the material at creation
// so later catalog edits never change what the customer agreed to pay.
// UniqueCode is a 3-digit bank-transfer disambiguator added to the total;
// it is advisory only, never a lookup key.
type Order struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	CustomerID   uint    `gorm:"not null;index" json:"customer_id"`
	Customer     User    `gorm:"foreignKey:CustomerID" json:"customer"`
	MaterialID   uint    `gorm:"not null;index" json:"material_id"`
	Material     Material `gorm:"foreignKey:MaterialID" json:"-"`
	MaterialName string  `gorm:"not null" json:"material_name"`
	UnitPrice    int64   `gorm:"not null" json:"unit_price"`
	Quantity     int     `gorm:"not null;check:quantity >= 24" json:"quantity"`
	Placement    string  `gorm:"type:text;not null" json:"placement"` // where the design goes on the garment
	DesignS3Key  string  `gorm:"not null" json:"design_s3_key"`
	DesignURL    string  `gorm:"-" json:"design_url,omitempty"`  // computed field, presigned URL
	TransferAmount int64 `gorm:"-" json:"transfer_amount"`       // computed field, TotalAmount + UniqueCode

	TotalAmount int64       `gorm:"not null" json:"total_amount"`
	UniqueCode  int         `gorm:"not null" json:"unique_code"`
	Status      OrderStatus `gorm:"not null;default:'awaiting_payment';index" json:"status"`
	Paid        bool        `gorm:"not null;default:false" json:"paid"`

	EstimatedCompletionDays *int `json:"estimated_completion_days"` // nullable until computed
	Archived                bool `gorm:"not null;default:false" json:"archived"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TotalWithCode is the amount the customer is instructed to transfer:
// the order total plus the unique payment code.
func (o Order) TotalWithCode() int64 {
	return o.TotalAmount + int64(o.UniqueCode)
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
