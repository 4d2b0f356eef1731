package pricing

import (
	"errors"
	"fmt"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const allocationTolerance = 0.01

// Allocation distributes profit across savings, future development and CSR.
// It is a display concept only and never feeds the cost pipeline.
type Allocation struct {
	Savings   float64 `json:"savings" yaml:"savings"`
	FutureDev float64 `json:"futureDev" yaml:"futureDev"`
	CSR       float64 `json:"csr" yaml:"csr"`
}

// AllocationSplit is the monetary share of profit per bucket.
type AllocationSplit struct {
	Savings   float64 `json:"savings"`
	FutureDev float64 `json:"futureDev"`
	CSR       float64 `json:"csr"`
}

// ErrAllocationSum is returned when the three percentages do not add up to 100.
var ErrAllocationSum = errors.New("allocation percentages must sum to 100")

// DefaultAllocation is the split new quotes start from.
func DefaultAllocation() Allocation {
	return Allocation{Savings: 50, FutureDev: 30, CSR: 20}
}

// Total returns the sum of the three percentages.
func (a Allocation) Total() float64 {
	return a.Savings + a.FutureDev + a.CSR
}

func (a Allocation) Validate() error {
	if err := validation.ValidateStruct(&a,
		validation.Field(&a.Savings, percentage...),
		validation.Field(&a.FutureDev, percentage...),
		validation.Field(&a.CSR, percentage...),
	); err != nil {
		return err
	}
	if math.Abs(a.Total()-100) > allocationTolerance {
		return fmt.Errorf("%w (got %.2f)", ErrAllocationSum, a.Total())
	}
	return nil
}

// Split applies the percentages to a profit amount.
func (a Allocation) Split(profit float64) AllocationSplit {
	return AllocationSplit{
		Savings:   profit * a.Savings / 100.0,
		FutureDev: profit * a.FutureDev / 100.0,
		CSR:       profit * a.CSR / 100.0,
	}
}
