// Package quote publishes engine output as immutable quote snapshots and
// tracks their approval status.
package quote

import (
	"time"

	"github.com/Simplici0/atelier/internal/pricing"
)

// Status is where a published quote sits in the approval flow.
type Status string

const (
	StatusDraft    Status = stateDraft
	StatusSent     Status = stateSent
	StatusApproved Status = stateApproved
	StatusRejected Status = stateRejected
	StatusInvoiced Status = stateInvoiced
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusApproved, StatusRejected, StatusInvoiced:
		return true
	}
	return false
}

// Quote is a published snapshot. Calculations is the final figure set,
// SuggestedCalculations the unmodified engine output it was derived from.
type Quote struct {
	ID                    string               `json:"id"`
	Number                string               `json:"number"`
	ClientID              string               `json:"clientId"`
	ProjectID             string               `json:"projectId"`
	Status                Status               `json:"status"`
	FormValues            pricing.FormValues   `json:"formValues"`
	Allocations           pricing.Allocation   `json:"allocations"`
	Calculations          pricing.Calculations `json:"calculations"`
	SuggestedCalculations pricing.Calculations `json:"suggestedCalculations"`
	FinalPriceOverride    *float64             `json:"finalPriceOverride,omitempty"`
	Notes                 string               `json:"notes,omitempty"`
	CreatedAt             time.Time            `json:"createdAt"`
	UpdatedAt             time.Time            `json:"updatedAt"`
}

// Overridden reports whether the published price differs from the engine's.
func (q Quote) Overridden() bool {
	return q.FinalPriceOverride != nil
}

// Variance compares the published figures with the suggestion.
func (q Quote) Variance() pricing.VarianceReport {
	return pricing.Variance(q.SuggestedCalculations, q.Calculations)
}

// ProfitSplit distributes the final profit across the allocation buckets.
func (q Quote) ProfitSplit() pricing.AllocationSplit {
	return q.Allocations.Split(q.Calculations.TotalPrice - q.Calculations.TotalCost)
}
