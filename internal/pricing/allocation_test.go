package pricing

import (
	"errors"
	"testing"
)

func TestAllocationValidate(t *testing.T) {
	tests := []struct {
		name    string
		alloc   Allocation
		wantErr bool
	}{
		{"default", DefaultAllocation(), false},
		{"all savings", Allocation{Savings: 100}, false},
		{"under 100", Allocation{Savings: 50, FutureDev: 30, CSR: 10}, true},
		{"over 100", Allocation{Savings: 60, FutureDev: 30, CSR: 20}, true},
		{"negative bucket", Allocation{Savings: 110, FutureDev: 10, CSR: -20}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.alloc.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAllocationValidate_WrapsSumError(t *testing.T) {
	err := Allocation{Savings: 10}.Validate()
	if !errors.Is(err, ErrAllocationSum) {
		t.Fatalf("expected ErrAllocationSum, got %v", err)
	}
}

func TestAllocationSplit(t *testing.T) {
	split := DefaultAllocation().Split(4000)

	nearlyEqual(t, "savings", split.Savings, 2000)
	nearlyEqual(t, "futureDev", split.FutureDev, 1200)
	nearlyEqual(t, "csr", split.CSR, 800)
}
