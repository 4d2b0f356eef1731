package quote

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Simplici0/atelier/internal/pricing"
)

var fixedNow = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func sampleInput() PublishInput {
	return PublishInput{
		FormValues: pricing.FormValues{
			ClientID:     "client-1",
			ProjectID:    "project-1",
			Materials:    []pricing.Material{{Name: "Oak veneer", Quantity: 1, UnitCost: 10000}},
			Labor:        []pricing.LaborItem{{Vendor: "Joinery Co", RateType: pricing.LaborHourly, Rate: 50, Hours: 80}},
			Operations:   []pricing.Operation{{Name: "Site transport", Cost: 2000}},
			BusinessType: pricing.BusinessNoTax,
			ProfitMargin: 25,
		},
		Allocations: pricing.DefaultAllocation(),
	}
}

func TestPublish_WithoutOverrideKeepsSuggestedTotal(t *testing.T) {
	q, err := Publish(pricing.DefaultOptions(), sampleInput(), "Q-25-26-0001", fixedNow)
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if q.Calculations != q.SuggestedCalculations {
		t.Fatalf("expected final to equal suggested, got %+v vs %+v", q.Calculations, q.SuggestedCalculations)
	}
	nearlyEqual(t, "totalPrice", q.Calculations.TotalPrice, 20000)
	if q.Status != StatusDraft || q.ID == "" || q.Number != "Q-25-26-0001" {
		t.Fatalf("unexpected quote header: %+v", q)
	}
	if q.ClientID != "client-1" || q.ProjectID != "project-1" {
		t.Fatalf("unexpected associations: %+v", q)
	}
	if q.Overridden() {
		t.Fatalf("expected no override")
	}
}

func TestPublish_OverrideReplacesOnlyTotalPrice(t *testing.T) {
	in := sampleInput()
	override := 17500.0
	in.Override = &override

	q, err := Publish(pricing.DefaultOptions(), in, "Q-25-26-0002", fixedNow)
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	nearlyEqual(t, "final totalPrice", q.Calculations.TotalPrice, 17500)
	nearlyEqual(t, "suggested totalPrice", q.SuggestedCalculations.TotalPrice, 20000)

	expected := q.SuggestedCalculations
	expected.TotalPrice = override
	if q.Calculations != expected {
		t.Fatalf("override changed other fields: %+v", q.Calculations)
	}

	override = 1
	if *q.FinalPriceOverride != 17500 {
		t.Fatalf("stored override aliased caller value")
	}
}

func TestPublish_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *PublishInput)
	}{
		{"missing client", func(in *PublishInput) { in.FormValues.ClientID = "" }},
		{"negative cost", func(in *PublishInput) { in.FormValues.Materials[0].UnitCost = -1 }},
		{"bad allocation", func(in *PublishInput) { in.Allocations = pricing.Allocation{Savings: 10} }},
		{"negative override", func(in *PublishInput) { v := -5.0; in.Override = &v }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleInput()
			tt.mutate(&in)
			if _, err := Publish(pricing.DefaultOptions(), in, "Q", fixedNow); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestPublish_NegativeOverrideSentinel(t *testing.T) {
	in := sampleInput()
	v := -1.0
	in.Override = &v
	_, err := Publish(pricing.DefaultOptions(), in, "Q", fixedNow)
	if !errors.Is(err, ErrInvalidOverride) {
		t.Fatalf("expected ErrInvalidOverride, got %v", err)
	}
}

func TestRepublish_OverwritesSnapshotAndResetsStatus(t *testing.T) {
	override := 15000.0
	in := sampleInput()
	in.Override = &override
	original, err := Publish(pricing.DefaultOptions(), in, "Q-25-26-0003", fixedNow)
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	original.Status = StatusApproved

	in = sampleInput()
	in.FormValues.ProfitMargin = 50
	later := fixedNow.Add(48 * time.Hour)
	updated, err := Republish(pricing.DefaultOptions(), original, in, later)
	if err != nil {
		t.Fatalf("Republish returned error: %v", err)
	}

	if updated.ID != original.ID || updated.Number != original.Number || !updated.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("identity not preserved: %+v", updated)
	}
	if updated.Status != StatusDraft {
		t.Fatalf("expected draft status, got %s", updated.Status)
	}
	if updated.FinalPriceOverride != nil {
		t.Fatalf("expected override cleared")
	}
	nearlyEqual(t, "totalPrice", updated.Calculations.TotalPrice, 24000)
	if !updated.UpdatedAt.Equal(later) {
		t.Fatalf("UpdatedAt = %v, want %v", updated.UpdatedAt, later)
	}
}

func TestQuoteProfitSplitUsesFinalPrice(t *testing.T) {
	in := sampleInput()
	override := 18000.0
	in.Override = &override
	q, err := Publish(pricing.DefaultOptions(), in, "Q", fixedNow)
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	split := q.ProfitSplit()
	nearlyEqual(t, "savings", split.Savings, 1000)
	nearlyEqual(t, "futureDev", split.FutureDev, 600)
	nearlyEqual(t, "csr", split.CSR, 400)

	v := q.Variance()
	nearlyEqual(t, "priceDelta", v.PriceDelta, -2000)
}
