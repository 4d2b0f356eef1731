package pricing

// BusinessType selects the tax rule applied to a quote.
type BusinessType string

const (
	BusinessVATRegistered  BusinessType = "vat_registered"
	BusinessSoleProprietor BusinessType = "sole_proprietor"
	BusinessNoTax          BusinessType = "no_tax"
)

// LaborRateType says whether a labor rate is billed per hour or per day.
type LaborRateType string

const (
	LaborHourly LaborRateType = "hourly"
	LaborDaily  LaborRateType = "daily"
)

// AffiliateRateType says whether an affiliate is paid a share of the direct
// cost base or a fixed amount per unit.
type AffiliateRateType string

const (
	AffiliatePercentage AffiliateRateType = "percentage"
	AffiliateFixed      AffiliateRateType = "fixed"
)

// hoursPerDay converts daily labor into hours for display figures.
const hoursPerDay = 8.0

// Material is a priced material line.
type Material struct {
	Name        string  `json:"name" yaml:"name"`
	Quantity    float64 `json:"quantity" yaml:"quantity"`
	UnitCost    float64 `json:"unitCost" yaml:"unitCost"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// Cost returns quantity × unit cost.
func (m Material) Cost() float64 {
	return m.Quantity * m.UnitCost
}

// LaborItem is a vendor labor line billed hourly or daily.
type LaborItem struct {
	Vendor   string        `json:"vendor" yaml:"vendor"`
	RateType LaborRateType `json:"rateType" yaml:"rateType"`
	Rate     float64       `json:"rate" yaml:"rate"`
	Hours    float64       `json:"hours" yaml:"hours"`
	Days     float64       `json:"days" yaml:"days"`
}

// Cost returns rate × hours for hourly items and rate × days otherwise.
func (l LaborItem) Cost() float64 {
	if l.RateType == LaborHourly {
		return l.Rate * l.Hours
	}
	return l.Rate * l.Days
}

func (l LaborItem) hours() float64 {
	if l.RateType == LaborHourly {
		return l.Hours
	}
	return l.Days * hoursPerDay
}

// Salary is a staff role and its gross monthly salary.
type Salary struct {
	Role        string  `json:"role" yaml:"role"`
	GrossSalary float64 `json:"grossSalary" yaml:"grossSalary"`
}

// Operation is a fixed operational or overhead cost.
type Operation struct {
	Name string  `json:"name" yaml:"name"`
	Cost float64 `json:"cost" yaml:"cost"`
}

// Affiliate is a referral or partner cost line.
type Affiliate struct {
	Name     string            `json:"name" yaml:"name"`
	RateType AffiliateRateType `json:"rateType" yaml:"rateType"`
	Rate     float64           `json:"rate" yaml:"rate"`
	Units    float64           `json:"units,omitempty" yaml:"units,omitempty"`
}

// Cost returns the affiliate's contribution given the direct cost base.
func (a Affiliate) Cost(directCostBase float64) float64 {
	if a.RateType == AffiliatePercentage {
		return (a.Rate / 100.0) * directCostBase
	}
	return a.Units * a.Rate
}

// FormValues is one quote in progress. All percentages are in [0,100].
type FormValues struct {
	ClientID  string `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	ProjectID string `json:"projectId,omitempty" yaml:"projectId,omitempty"`

	Materials  []Material  `json:"materials" yaml:"materials"`
	Labor      []LaborItem `json:"labor" yaml:"labor"`
	Salaries   []Salary    `json:"salaries" yaml:"salaries"`
	Operations []Operation `json:"operations" yaml:"operations"`
	Affiliates []Affiliate `json:"affiliates" yaml:"affiliates"`

	BusinessType               BusinessType `json:"businessType" yaml:"businessType"`
	TaxRate                    float64      `json:"taxRate" yaml:"taxRate"`
	ProfitMargin               float64      `json:"profitMargin" yaml:"profitMargin"`
	MiscPercentage             float64      `json:"miscPercentage" yaml:"miscPercentage"`
	SalaryPercentage           float64      `json:"salaryPercentage" yaml:"salaryPercentage"`
	EnableNSSF                 bool         `json:"enableNSSF" yaml:"enableNSSF"`
	EnableSHIF                 bool         `json:"enableSHIF" yaml:"enableSHIF"`
	LaborConcurrencyPercentage float64      `json:"laborConcurrencyPercentage" yaml:"laborConcurrencyPercentage"`
}

// Clone returns a deep copy so callers can mutate line items freely.
func (fv FormValues) Clone() FormValues {
	out := fv
	out.Materials = append([]Material(nil), fv.Materials...)
	out.Labor = append([]LaborItem(nil), fv.Labor...)
	out.Salaries = append([]Salary(nil), fv.Salaries...)
	out.Operations = append([]Operation(nil), fv.Operations...)
	out.Affiliates = append([]Affiliate(nil), fv.Affiliates...)
	return out
}

// Calculations holds every figure derived from a FormValues.
type Calculations struct {
	MaterialCost     float64 `json:"materialCost"`
	LaborCost        float64 `json:"laborCost"`
	OperationsCost   float64 `json:"operationsCost"`
	DirectCostBase   float64 `json:"directCostBase"`
	TotalGrossSalary float64 `json:"totalGrossSalary"`
	NSSFAmount       float64 `json:"nssfAmount"`
	SHIFAmount       float64 `json:"shifAmount"`
	SalaryAllocation float64 `json:"salaryAllocation"`
	SalaryPool       float64 `json:"salaryPool"`
	AffiliateCost    float64 `json:"affiliateCost"`
	Subtotal         float64 `json:"subtotal"`
	MiscAmount       float64 `json:"miscAmount"`
	SubtotalWithMisc float64 `json:"subtotalWithMisc"`
	TaxRateApplied   float64 `json:"taxRateApplied"`
	TaxAmount        float64 `json:"taxAmount"`
	TotalCost        float64 `json:"totalCost"`
	ProfitAmount     float64 `json:"profitAmount"`
	TotalPrice       float64 `json:"totalPrice"`

	TotalLaborHours     float64 `json:"totalLaborHours"`
	EffectiveLaborHours float64 `json:"effectiveLaborHours"`
}

// Options carries the statutory rates. Rates are fractions, not percentages.
type Options struct {
	NSSFRate        float64 `yaml:"nssfRate"`
	SHIFRate        float64 `yaml:"shifRate"`
	TurnoverTaxRate float64 `yaml:"turnoverTaxRate"`
	// NSSFCapPerPerson limits each person's NSSF contribution. Zero means uncapped.
	NSSFCapPerPerson float64 `yaml:"nssfCapPerPerson"`
}

// DefaultOptions returns the current Kenyan statutory rates, NSSF uncapped.
func DefaultOptions() Options {
	return Options{
		NSSFRate:        0.06,
		SHIFRate:        0.0275,
		TurnoverTaxRate: 0.03,
	}
}

// Calculate runs the cost pipeline with DefaultOptions.
func Calculate(fv FormValues) Calculations {
	return CalculateWith(DefaultOptions(), fv)
}

// CalculateWith derives all totals from fv. Each stage reads only earlier
// stages; percentage affiliates and the salary allocation share the direct
// cost base so nothing depends on the final price.
func CalculateWith(opts Options, fv FormValues) Calculations {
	var c Calculations

	for _, m := range fv.Materials {
		c.MaterialCost += m.Cost()
	}
	for _, l := range fv.Labor {
		c.LaborCost += l.Cost()
		c.TotalLaborHours += l.hours()
	}
	for _, op := range fv.Operations {
		c.OperationsCost += op.Cost
	}
	c.DirectCostBase = c.MaterialCost + c.LaborCost + c.OperationsCost

	for _, s := range fv.Salaries {
		c.TotalGrossSalary += s.GrossSalary
		if fv.EnableNSSF {
			c.NSSFAmount += nssfContribution(opts, s.GrossSalary)
		}
	}
	if fv.EnableSHIF {
		c.SHIFAmount = opts.SHIFRate * c.TotalGrossSalary
	}

	c.SalaryAllocation = (fv.SalaryPercentage / 100.0) * c.DirectCostBase
	c.SalaryPool = c.SalaryAllocation + c.TotalGrossSalary + c.NSSFAmount + c.SHIFAmount

	for _, a := range fv.Affiliates {
		c.AffiliateCost += a.Cost(c.DirectCostBase)
	}

	c.Subtotal = c.DirectCostBase + c.SalaryPool + c.AffiliateCost
	c.MiscAmount = (fv.MiscPercentage / 100.0) * c.Subtotal
	c.SubtotalWithMisc = c.Subtotal + c.MiscAmount

	c.TaxRateApplied = taxRate(opts, fv)
	c.TaxAmount = (c.TaxRateApplied / 100.0) * c.SubtotalWithMisc
	c.TotalCost = c.SubtotalWithMisc + c.TaxAmount

	// Markup on cost, not margin of price.
	c.ProfitAmount = (fv.ProfitMargin / 100.0) * c.TotalCost
	c.TotalPrice = c.TotalCost + c.ProfitAmount

	c.EffectiveLaborHours = c.TotalLaborHours * (1.0 - fv.LaborConcurrencyPercentage/100.0)

	return c
}

func nssfContribution(opts Options, gross float64) float64 {
	contribution := opts.NSSFRate * gross
	if opts.NSSFCapPerPerson > 0 && contribution > opts.NSSFCapPerPerson {
		return opts.NSSFCapPerPerson
	}
	return contribution
}

// taxRate returns the percentage applied for the business type. Unknown
// types fall through to no tax.
func taxRate(opts Options, fv FormValues) float64 {
	switch fv.BusinessType {
	case BusinessVATRegistered:
		return fv.TaxRate
	case BusinessSoleProprietor:
		return opts.TurnoverTaxRate * 100.0
	default:
		return 0
	}
}
