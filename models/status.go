package models

import "fmt"

// OrderStatus represents the production pipeline stage of an order.
type OrderStatus string

const (
	// StatusAwaitingPayment is the initial state: the order exists but the
	// customer has not confirmed the bank transfer yet.
	StatusAwaitingPayment OrderStatus = "awaiting_payment"
	// StatusProcessing means payment has been received and the order is
	// being prepared for production.
	StatusProcessing OrderStatus = "processing"
	// StatusInProduction means the order is actively being manufactured.
	// Orders in this state count toward the customer's workload when
	// estimating completion time for new orders.
	StatusInProduction OrderStatus = "in_production"
	// StatusCompleted is the terminal state.
	StatusCompleted OrderStatus = "completed"
)

// forwardTransitions is the documented contract: each state advances to at
// most one successor. Anything else is an admin override and is audited.
var forwardTransitions = map[OrderStatus]OrderStatus{
	StatusAwaitingPayment: StatusProcessing,
	StatusProcessing:      StatusInProduction,
	StatusInProduction:    StatusCompleted,
}

// AllStatuses lists every valid status in pipeline order.
func AllStatuses() []OrderStatus {
	return []OrderStatus{
		StatusAwaitingPayment,
		StatusProcessing,
		StatusInProduction,
		StatusCompleted,
	}
}

// Valid reports whether s is one of the defined pipeline states.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusAwaitingPayment, StatusProcessing, StatusInProduction, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether s admits no further forward transition.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted
}

// CanTransition reports whether moving from s to target is a legal forward
// step in the pipeline.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	next, ok := forwardTransitions[s]
	return ok && next == target
}

// ParseStatus converts a raw string (e.g. from a request body) into an
// OrderStatus, rejecting anything outside the closed set.
func ParseStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return s, nil
}
