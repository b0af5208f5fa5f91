package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values for User.Role.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a user in the system (customer or administrator)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Role      string         `gorm:"not null;default:'customer'" json:"role"` // "customer" or "admin"
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user may perform administrative actions.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
