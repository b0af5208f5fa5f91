package services

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/atelierworks/garment-orders-api/models"
)

// TransitionResult reports what a status operation actually did.
type TransitionResult struct {
	// Changed is false when the operation was an idempotent no-op (the
	// order was already in the requested state).
	Changed bool
	// Override is true when the applied transition bypassed the forward
	// pipeline. Overrides are always audited.
	Override bool
	// EstimatedDays is set when entering production attached a fresh
	// completion estimate.
	EstimatedDays *int
}

// TransitionService applies order status changes. It owns the side effects
// the pipeline couples to each state: entering "processing" marks the order
// paid, entering "in_production" attaches a completion estimate computed
// from the customer's other in-production orders.
//
// The actor is always passed in explicitly; the service never reads
// ambient session state. Concurrent updates to the same order are
// last-write-wins: the store is the arbiter, there is no version check.
type TransitionService struct {
	db        *gorm.DB
	estimator *ProductionEstimator
	notifier  Notifier
}

// NewTransitionService wires the transition engine.
func NewTransitionService(db *gorm.DB, estimator *ProductionEstimator, notifier Notifier) *TransitionService {
	return &TransitionService{db: db, estimator: estimator, notifier: notifier}
}

// ApplyStatus moves an order to target on behalf of an administrator.
//
// Forward pipeline steps are the documented contract. Any other
// reassignment (backward, skipping, leaving "completed") is treated as an
// admin correction: it is applied, but recorded as an override in the
// status_changes audit trail and logged. It is never applied silently and
// never silently rejected.
//
// Requesting the order's current status is a no-op: no audit row, no
// duplicate side effects.
func (s *TransitionService) ApplyStatus(ctx context.Context, actor models.User, order *models.Order, target models.OrderStatus) (*TransitionResult, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: status updates require the admin role", ErrUnauthorized)
	}

	if order.Status == target {
		return &TransitionResult{Changed: false}, nil
	}

	override := !order.Status.CanTransition(target)

	updates := map[string]interface{}{"status": target}
	result := &TransitionResult{Changed: true, Override: override}

	switch target {
	case models.StatusProcessing:
		// Payment and processing are deliberately coupled: marking an
		// order as processing implies its transfer has been received.
		updates["paid"] = true
	case models.StatusAwaitingPayment:
		// An order can never sit in awaiting_payment with paid=true.
		updates["paid"] = false
	case models.StatusInProduction:
		days, err := s.estimator.EstimateForCustomer(ctx, order.CustomerID, order.Quantity, order.ID)
		if err != nil {
			return nil, err
		}
		updates["estimated_completion_days"] = days
		result.EstimatedDays = &days
	}

	if override {
		log.Printf("Admin override: user %d reassigned order %d from %s to %s", actor.ID, order.ID, order.Status, target)
	}

	from := order.Status
	if err := s.persist(order, updates, models.StatusChange{
		OrderID:    order.ID,
		FromStatus: from,
		ToStatus:   target,
		ActorID:    actor.ID,
		Override:   override,
	}); err != nil {
		return nil, err
	}

	s.notify(ctx, order, ChangeStatusUpdated)
	return result, nil
}

// ConfirmPayment records the customer's simulated bank transfer: the order
// advances from awaiting_payment to processing with paid=true. Only the
// order's owner may confirm. Confirming an already-paid order is a no-op.
func (s *TransitionService) ConfirmPayment(ctx context.Context, actor models.User, order *models.Order) (*TransitionResult, error) {
	if actor.ID != order.CustomerID {
		return nil, fmt.Errorf("%w: only the order's owner can confirm payment", ErrUnauthorized)
	}

	if order.Paid || order.Status != models.StatusAwaitingPayment {
		return &TransitionResult{Changed: false}, nil
	}

	from := order.Status
	if err := s.persist(order, map[string]interface{}{
		"status": models.StatusProcessing,
		"paid":   true,
	}, models.StatusChange{
		OrderID:    order.ID,
		FromStatus: from,
		ToStatus:   models.StatusProcessing,
		ActorID:    actor.ID,
	}); err != nil {
		return nil, err
	}

	s.notify(ctx, order, ChangeStatusUpdated)
	return &TransitionResult{Changed: true}, nil
}

// persist writes the order updates and the audit row together, then
// refreshes the in-memory order from the stored values.
func (s *TransitionService) persist(order *models.Order, updates map[string]interface{}, audit models.StatusChange) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("failed to record status change: %w", err)
		}
		notification := models.Notification{
			UserID:  order.CustomerID,
			OrderID: order.ID,
			Body:    fmt.Sprintf("Order #%d status changed from %s to %s", order.ID, audit.FromStatus, audit.ToStatus),
		}
		if err := tx.Create(&notification).Error; err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.db.First(order, order.ID).Error
}

// notify publishes on the change feed. Delivery is best-effort: the status
// write already succeeded and clients re-fetch on their own.
func (s *TransitionService) notify(ctx context.Context, order *models.Order, kind ChangeKind) {
	if s.notifier == nil {
		return
	}
	change := OrderChange{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Kind:       kind,
		Status:     order.Status,
	}
	if err := s.notifier.PublishOrderChange(ctx, change); err != nil {
		log.Printf("Failed to publish order change for order %d: %v", order.ID, err)
	}
}
