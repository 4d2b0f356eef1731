package pricing

import (
	"errors"
	"testing"
)

func TestFormValuesValidate_AcceptsValidForm(t *testing.T) {
	fv := baseForm()
	fv.Affiliates = []Affiliate{{Name: "Referral", RateType: AffiliatePercentage, Rate: 5}}
	fv.Salaries = []Salary{{Role: "Designer", GrossSalary: 50000}}

	if err := fv.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestFormValuesValidate_RejectsNegativesAndBadEnums(t *testing.T) {
	fv := baseForm()
	fv.Materials[0].UnitCost = -5
	fv.Labor[0].RateType = "weekly"
	fv.Operations = append(fv.Operations, Operation{Name: "Storage", Cost: -1})
	fv.ProfitMargin = 120
	fv.BusinessType = "partnership"

	fields := FieldErrors(fv.Validate())

	for _, path := range []string{
		"materials.0.unitCost",
		"labor.0.rateType",
		"operations.1.cost",
		"profitMargin",
		"businessType",
	} {
		if _, ok := fields[path]; !ok {
			t.Fatalf("expected error for %q, got %v", path, fields)
		}
	}
	if _, ok := fields["materials.0.quantity"]; ok {
		t.Fatalf("unexpected error for valid quantity: %v", fields)
	}
}

func TestFormValuesValidateForPublish_RequiresIdentifiers(t *testing.T) {
	fv := baseForm()

	fields := FieldErrors(fv.ValidateForPublish())
	if _, ok := fields["clientId"]; !ok {
		t.Fatalf("expected clientId error, got %v", fields)
	}
	if _, ok := fields["projectId"]; !ok {
		t.Fatalf("expected projectId error, got %v", fields)
	}

	fv.ClientID = "c-1"
	fv.ProjectID = "p-1"
	if err := fv.ValidateForPublish(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	fields := FieldErrors(errors.New("boom"))
	if fields[""] != "boom" {
		t.Fatalf("expected generic error under empty key, got %v", fields)
	}
	if len(FieldErrors(nil)) != 0 {
		t.Fatalf("expected no fields for nil error")
	}
}

func TestSummary_SortsPaths(t *testing.T) {
	got := Summary(map[string]string{"taxRate": "too high", "labor.0.rate": "negative"})
	want := "labor.0.rate: negative; taxRate: too high"
	if got != want {
		t.Fatalf("Summary = %q, want %q", got, want)
	}
}
