package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/atelierworks/garment-orders-api/models"
)

// Production capacity model. An order is quantized into 24-piece units;
// the floor runs at most 7 units concurrently and each unit beyond that
// adds a week. This is a coarse backlog heuristic shown to the customer
// before confirmation; nothing reconciles actual completion against it.
const (
	PiecesPerOrderUnit      = 24
	DaysPerOrderUnit        = 7
	MaxConcurrentOrderUnits = 7
	BaseDays                = 7
)

// ActiveOrderCounter reports how many of a customer's orders are currently
// in production. The count is scoped to that customer only.
type ActiveOrderCounter interface {
	CountActiveOrders(ctx context.Context, customerID uint, excludeOrderID uint) (int, error)
}

// ProductionEstimator translates current production load into a day-count
// estimate for a new order.
type ProductionEstimator struct {
	counter ActiveOrderCounter
}

// NewProductionEstimator returns an estimator reading active-order counts
// from the given counter.
func NewProductionEstimator(counter ActiveOrderCounter) *ProductionEstimator {
	return &ProductionEstimator{counter: counter}
}

// EstimateDays computes the estimated completion time in days for an order
// of the given quantity, given how many of the customer's orders are
// already in production. A negative active count is treated as 0.
func (e *ProductionEstimator) EstimateDays(newOrderQuantity, activeOrdersCount int) (int, error) {
	if newOrderQuantity <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidQuantity, newOrderQuantity)
	}
	if activeOrdersCount < 0 {
		activeOrdersCount = 0
	}

	// Ceiling division quantizes the order into production units.
	orderUnits := (newOrderQuantity + PiecesPerOrderUnit - 1) / PiecesPerOrderUnit

	totalWorkload := activeOrdersCount + orderUnits
	if totalWorkload <= MaxConcurrentOrderUnits {
		return BaseDays, nil
	}

	extraUnits := totalWorkload - MaxConcurrentOrderUnits
	return BaseDays + extraUnits*DaysPerOrderUnit, nil
}

// EstimateForCustomer reads the customer's current in-production count and
// estimates completion time for a new order of the given quantity.
// excludeOrderID removes a specific order from the count (used when that
// order itself is entering production); pass 0 to exclude nothing.
//
// A failed count read surfaces as ErrDependencyUnavailable: callers decide
// whether to block or fall back, the estimator never guesses 0 silently.
func (e *ProductionEstimator) EstimateForCustomer(ctx context.Context, customerID uint, quantity int, excludeOrderID uint) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	active, err := e.counter.CountActiveOrders(ctx, customerID, excludeOrderID)
	if err != nil {
		return 0, fmt.Errorf("%w: counting active orders: %v", ErrDependencyUnavailable, err)
	}

	return e.EstimateDays(quantity, active)
}

// GormOrderCounter implements ActiveOrderCounter against the orders table.
type GormOrderCounter struct {
	db *gorm.DB
}

// NewGormOrderCounter returns a counter reading from the given database.
func NewGormOrderCounter(db *gorm.DB) *GormOrderCounter {
	return &GormOrderCounter{db: db}
}

// CountActiveOrders counts the customer's non-archived orders with status
// "in_production", optionally excluding one order ID.
func (c *GormOrderCounter) CountActiveOrders(ctx context.Context, customerID uint, excludeOrderID uint) (int, error) {
	query := c.db.WithContext(ctx).Model(&models.Order{}).
		Where("customer_id = ? AND status = ? AND archived = ?", customerID, models.StatusInProduction, false)
	if excludeOrderID != 0 {
		query = query.Where("id <> ?", excludeOrderID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active orders: %w", err)
	}

	return int(count), nil
}

var _ ActiveOrderCounter = (*GormOrderCounter)(nil)
