package models

import "time"

// StatusChange is an audit row written for every applied status transition.
// Override marks transitions that bypassed the forward pipeline (admin
// corrections); those are never applied silently.
type StatusChange struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    uint        `gorm:"not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"not null" json:"from_status"`
	ToStatus   OrderStatus `gorm:"not null" json:"to_status"`
	ActorID    uint        `gorm:"not null" json:"actor_id"`
	Override   bool        `gorm:"not null;default:false" json:"override"`
	CreatedAt  time.Time   `json:"created_at"`
}

// TableName specifies the table name for the StatusChange model
func (StatusChange) TableName() string {
	return "status_changes"
}
