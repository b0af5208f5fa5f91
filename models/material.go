package models

import (
	"time"

	"gorm.io/gorm"
)

// Material represents a fabric in the catalog that orders are made from.
// Prices are stored in the smallest currency unit per piece. Changing a
// material's price never touches existing orders: each order snapshots the
// unit price at creation time.
type Material struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"uniqueIndex;not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	PricePerPiece int64          `gorm:"not null;check:price_per_piece > 0" json:"price_per_piece"`
	ImageS3Key    *string        `json:"image_s3_key,omitempty"`
	ImageURL      *string        `gorm:"-" json:"image_url,omitempty"` // computed field, presigned URL
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Material model
func (Material) TableName() string {
	return "materials"
}
