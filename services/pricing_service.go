package services

import (
	"fmt"
	"math/rand"
	"time"
)

// Order quantity policy. The 24-piece minimum is a business rule, not a UI
// nicety: the calculator enforces it even when callers already validated.
const (
	MinOrderQuantity = 24
	MaxOrderQuantity = 1000
)

// Unique payment code range. The code is a 3-digit suffix added to the
// order total so bank transfers stay distinguishable during manual
// reconciliation. It is advisory only: collisions across orders are
// accepted and it must never be used for lookup or deduplication.
const (
	MinUniqueCode = 100
	MaxUniqueCode = 999
)

// CodeSource is the source of randomness for payment codes. Injectable so
// tests can pin boundary values.
type CodeSource interface {
	Intn(n int) int
}

// PriceCalculator computes order totals and payment codes. All methods are
// pure over their inputs apart from the code source.
type PriceCalculator struct {
	codes CodeSource
}

// NewPriceCalculator returns a calculator backed by its own seeded
// math/rand source.
func NewPriceCalculator() *PriceCalculator {
	return NewPriceCalculatorWithSource(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewPriceCalculatorWithSource returns a calculator using the given code
// source (primarily for testing).
func NewPriceCalculatorWithSource(codes CodeSource) *PriceCalculator {
	return &PriceCalculator{codes: codes}
}

// ComputeTotal returns unitPrice * quantity in the smallest currency unit.
// Quantities outside [MinOrderQuantity, MaxOrderQuantity] and non-positive
// unit prices are rejected, never clamped.
func (p *PriceCalculator) ComputeTotal(unitPrice int64, quantity int) (int64, error) {
	if quantity < MinOrderQuantity || quantity > MaxOrderQuantity {
		return 0, fmt.Errorf("%w: got %d, want %d-%d", ErrInvalidQuantity, quantity, MinOrderQuantity, MaxOrderQuantity)
	}
	if unitPrice <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidPrice, unitPrice)
	}

	return unitPrice * int64(quantity), nil
}

// GenerateUniqueCode returns a uniformly random payment code in
// [MinUniqueCode, MaxUniqueCode].
func (p *PriceCalculator) GenerateUniqueCode() int {
	return MinUniqueCode + p.codes.Intn(MaxUniqueCode-MinUniqueCode+1)
}

// TotalWithCode is the amount the customer is instructed to transfer.
func (p *PriceCalculator) TotalWithCode(total int64, code int) int64 {
	return total + int64(code)
}
