package services

import "errors"

// Domain errors shared by the pricing, estimation and status-transition
// services. Handlers map these onto HTTP error codes.
var (
	// ErrInvalidQuantity is returned when an order quantity is below the
	// storefront minimum, above the configured maximum, or non-positive.
	ErrInvalidQuantity = errors.New("order quantity outside the allowed range")

	// ErrInvalidPrice is returned when a material unit price is not a
	// positive amount.
	ErrInvalidPrice = errors.New("material unit price must be positive")

	// ErrUnauthorized is returned when an actor attempts an operation their
	// role or ownership does not permit. No mutation happens in that case.
	ErrUnauthorized = errors.New("actor is not allowed to perform this operation")

	// ErrInvalidTransition is returned for a status change that is neither
	// a forward pipeline step nor an admin override.
	ErrInvalidTransition = errors.New("status transition is not allowed")

	// ErrDependencyUnavailable is returned when a required external read
	// (e.g. the active-order count) fails. The estimator never substitutes
	// a guess for the missing value.
	ErrDependencyUnavailable = errors.New("required data source is unavailable")
)
