package services

import "context"

// OrderQuote is everything the order intake flow needs to persist and show
// before payment: the base total, the payment code, the transfer amount and
// the displayed completion estimate.
type OrderQuote struct {
	TotalAmount             int64 `json:"total_amount"`
	UniqueCode              int   `json:"unique_code"`
	TotalWithCode           int64 `json:"total_with_code"`
	EstimatedCompletionDays int   `json:"estimated_completion_days"`
}

// BuildOrderQuote runs the calculator and estimator for a prospective order.
// Validation errors from either component pass through untouched so the
// caller can map them to its own error codes.
func BuildOrderQuote(ctx context.Context, calc *PriceCalculator, est *ProductionEstimator, unitPrice int64, quantity int, customerID uint) (*OrderQuote, error) {
	total, err := calc.ComputeTotal(unitPrice, quantity)
	if err != nil {
		return nil, err
	}

	days, err := est.EstimateForCustomer(ctx, customerID, quantity, 0)
	if err != nil {
		return nil, err
	}

	code := calc.GenerateUniqueCode()
	return &OrderQuote{
		TotalAmount:             total,
		UniqueCode:              code,
		TotalWithCode:           calc.TotalWithCode(total, code),
		EstimatedCompletionDays: days,
	}, nil
}
