package pricing

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	nonNegative = validation.Min(0.0)
	percentage  = []validation.Rule{validation.Min(0.0), validation.Max(100.0)}
)

// Validate checks the boundary constraints the engine assumes: no negative
// amounts, percentages within [0,100] and known enum values.
func (m Material) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.Quantity, nonNegative),
		validation.Field(&m.UnitCost, nonNegative),
	)
}

func (l LaborItem) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Vendor, validation.Required),
		validation.Field(&l.RateType, validation.Required, validation.In(LaborHourly, LaborDaily)),
		validation.Field(&l.Rate, nonNegative),
		validation.Field(&l.Hours, nonNegative),
		validation.Field(&l.Days, nonNegative),
	)
}

func (s Salary) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Role, validation.Required),
		validation.Field(&s.GrossSalary, nonNegative),
	)
}

func (o Operation) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Name, validation.Required),
		validation.Field(&o.Cost, nonNegative),
	)
}

func (a Affiliate) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required),
		validation.Field(&a.RateType, validation.Required, validation.In(AffiliatePercentage, AffiliateFixed)),
		validation.Field(&a.Rate, nonNegative),
		validation.Field(&a.Units, nonNegative),
	)
}

func (fv FormValues) Validate() error {
	return validation.ValidateStruct(&fv,
		validation.Field(&fv.Materials),
		validation.Field(&fv.Labor),
		validation.Field(&fv.Salaries),
		validation.Field(&fv.Operations),
		validation.Field(&fv.Affiliates),
		validation.Field(&fv.BusinessType, validation.Required,
			validation.In(BusinessVATRegistered, BusinessSoleProprietor, BusinessNoTax)),
		validation.Field(&fv.TaxRate, percentage...),
		validation.Field(&fv.ProfitMargin, percentage...),
		validation.Field(&fv.MiscPercentage, percentage...),
		validation.Field(&fv.SalaryPercentage, percentage...),
		validation.Field(&fv.LaborConcurrencyPercentage, percentage...),
	)
}

// ValidateForPublish additionally requires the client and project a quote
// is attached to.
func (fv FormValues) ValidateForPublish() error {
	if err := fv.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&fv,
		validation.Field(&fv.ClientID, validation.Required),
		validation.Field(&fv.ProjectID, validation.Required),
	)
}

// FieldErrors flattens a validation error into dotted field paths, e.g.
// "materials.0.unitCost". Non-validation errors are reported under "".
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		out[""] = err.Error()
		return out
	}
	flattenErrors("", verrs, out)
	return out
}

func flattenErrors(prefix string, verrs validation.Errors, out map[string]string) {
	for key, err := range verrs {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		var nested validation.Errors
		if errors.As(err, &nested) {
			flattenErrors(path, nested, out)
			continue
		}
		out[path] = err.Error()
	}
}

// FieldPaths returns the sorted keys of a FieldErrors map.
func FieldPaths(fields map[string]string) []string {
	paths := make([]string, 0, len(fields))
	for p := range fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Summary joins field errors into one line for logs and CLI output.
func Summary(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for _, p := range FieldPaths(fields) {
		parts = append(parts, p+": "+fields[p])
	}
	return strings.Join(parts, "; ")
}
