package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification is a persisted status-change notice for a customer. The
// realtime change feed only tells clients that something changed; the rows
// here are what they re-fetch.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	Order     Order          `gorm:"foreignKey:OrderID" json:"-"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	ReadAt    *time.Time     `json:"read_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
