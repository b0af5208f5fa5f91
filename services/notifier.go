package services

import (
	"context"

	"github.com/atelierworks/garment-orders-api/models"
)

// ChangeKind classifies an order change event.
type ChangeKind string

const (
	ChangeCreated       ChangeKind = "created"
	ChangeStatusUpdated ChangeKind = "status_updated"
	ChangeArchived      ChangeKind = "archived"
	ChangeDeleted       ChangeKind = "deleted"
)

// OrderChange is the payload pushed on the customer's change feed. It is
// advisory: subscribers are expected to re-fetch the order, not to trust
// this as a full view of the record.
type OrderChange struct {
	OrderID    uint               `json:"order_id"`
	CustomerID uint               `json:"customer_id"`
	Kind       ChangeKind         `json:"kind"`
	Status     models.OrderStatus `json:"status"`
}

// Notifier is the transport-agnostic change feed for order updates.
// Delivery is at-least-once and scoped per customer; cross-customer events
// are never visible on a subscription.
type Notifier interface {
	// PublishOrderChange pushes a change event to the order's customer.
	PublishOrderChange(ctx context.Context, change OrderChange) error

	// Subscribe yields change events for one customer until the returned
	// cancel function is called or ctx is done.
	Subscribe(ctx context.Context, customerID uint) (<-chan OrderChange, func(), error)
}

var notifierInstance Notifier

// InitNotifier installs the notifier used by the transition engine.
func InitNotifier(n Notifier) Notifier {
	notifierInstance = n
	return notifierInstance
}

// GetNotifier returns the installed notifier instance.
func GetNotifier() Notifier {
	return notifierInstance
}

// SetNotifier sets the notifier instance (primarily for testing)
func SetNotifier(n Notifier) {
	notifierInstance = n
}
