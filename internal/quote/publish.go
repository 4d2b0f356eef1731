package quote

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/atelier/internal/pricing"
)

// ErrInvalidOverride is returned for a negative manual final price.
var ErrInvalidOverride = errors.New("final price override must be zero or greater")

// PublishInput is everything a publish needs from the form session.
type PublishInput struct {
	FormValues  pricing.FormValues
	Allocations pricing.Allocation
	// Override replaces the engine's total price when set.
	Override *float64
	Notes    string
}

// Validate applies the boundary checks a publish requires.
func (in PublishInput) Validate() error {
	if err := in.FormValues.ValidateForPublish(); err != nil {
		return err
	}
	if err := in.Allocations.Validate(); err != nil {
		return fmt.Errorf("allocations: %w", err)
	}
	if in.Override != nil && *in.Override < 0 {
		return ErrInvalidOverride
	}
	return nil
}

// ApplyOverride returns suggested with TotalPrice replaced by override, or
// suggested unchanged when override is nil. No other field is recomputed.
func ApplyOverride(suggested pricing.Calculations, override *float64) pricing.Calculations {
	final := suggested
	if override != nil {
		final.TotalPrice = *override
	}
	return final
}

// Publish snapshots a validated form into a new draft-status quote.
func Publish(opts pricing.Options, in PublishInput, number string, now time.Time) (Quote, error) {
	if err := in.Validate(); err != nil {
		return Quote{}, err
	}
	q := Quote{
		ID:        uuid.NewString(),
		Number:    number,
		CreatedAt: now,
	}
	return snapshot(opts, q, in, now), nil
}

// Republish overwrites an existing quote's snapshot and sends it back to
// draft for re-approval. Identity, number and creation time are kept.
func Republish(opts pricing.Options, existing Quote, in PublishInput, now time.Time) (Quote, error) {
	if err := in.Validate(); err != nil {
		return Quote{}, err
	}
	return snapshot(opts, existing, in, now), nil
}

func snapshot(opts pricing.Options, q Quote, in PublishInput, now time.Time) Quote {
	form := in.FormValues.Clone()
	suggested := pricing.CalculateWith(opts, form)

	q.ClientID = form.ClientID
	q.ProjectID = form.ProjectID
	q.Status = StatusDraft
	q.FormValues = form
	q.Allocations = in.Allocations
	q.SuggestedCalculations = suggested
	q.Calculations = ApplyOverride(suggested, in.Override)
	q.FinalPriceOverride = nil
	if in.Override != nil {
		v := *in.Override
		q.FinalPriceOverride = &v
	}
	q.Notes = in.Notes
	q.UpdatedAt = now
	return q
}
