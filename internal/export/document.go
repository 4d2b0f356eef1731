// Package export renders published quotes as XLSX, PDF and plain text.
package export

import (
	"fmt"
	"strings"

	"github.com/Simplici0/atelier/internal/pricing"
	"github.com/Simplici0/atelier/internal/quote"
)

const dateLayout = "2006-01-02"

// Line is one priced row of a quote document.
type Line struct {
	Section     string
	Description string
	Qty         float64
	Unit        string
	Rate        float64
	Amount      float64
}

// SummaryRow is a labelled figure in the totals block.
type SummaryRow struct {
	Label  string
	Amount float64
	Bold   bool
}

// QuoteDocument is the render-ready view of a quote shared by every format.
type QuoteDocument struct {
	Title       string
	Number      string
	Date        string
	Status      string
	ClientName  string
	ProjectName string
	Notes       string
	Lines       []Line
	Summary     []SummaryRow
	Assumptions []string
	Total       float64
}

// NewQuoteDocument builds the document for q. Line amounts come from the
// stored form; totals come from the stored snapshot and are not recalculated.
func NewQuoteDocument(q quote.Quote, clientName, projectName string) QuoteDocument {
	fv := q.FormValues
	c := q.Calculations

	doc := QuoteDocument{
		Title:       "Quotation " + q.Number,
		Number:      q.Number,
		Date:        q.CreatedAt.Format(dateLayout),
		Status:      string(q.Status),
		ClientName:  clientName,
		ProjectName: projectName,
		Notes:       q.Notes,
		Total:       c.TotalPrice,
	}

	for _, m := range fv.Materials {
		doc.Lines = append(doc.Lines, Line{
			Section: "Materials", Description: m.Name, Qty: m.Quantity,
			Unit: m.Description, Rate: m.UnitCost, Amount: m.Cost(),
		})
	}
	for _, l := range fv.Labor {
		qty, unit := l.Hours, "hours"
		if l.RateType == pricing.LaborDaily {
			qty, unit = l.Days, "days"
		}
		doc.Lines = append(doc.Lines, Line{
			Section: "Labor", Description: l.Vendor, Qty: qty,
			Unit: unit, Rate: l.Rate, Amount: l.Cost(),
		})
	}
	for _, op := range fv.Operations {
		doc.Lines = append(doc.Lines, Line{
			Section: "Operations", Description: op.Name, Qty: 1, Rate: op.Cost, Amount: op.Cost,
		})
	}
	for _, a := range fv.Affiliates {
		line := Line{Section: "Affiliates", Description: a.Name, Amount: a.Cost(c.DirectCostBase)}
		if a.RateType == pricing.AffiliatePercentage {
			line.Qty, line.Unit, line.Rate = a.Rate, "% of direct cost", c.DirectCostBase/100
		} else {
			line.Qty, line.Unit, line.Rate = a.Units, "units", a.Rate
		}
		doc.Lines = append(doc.Lines, line)
	}

	doc.Summary = []SummaryRow{
		{Label: "Direct cost", Amount: c.DirectCostBase},
		{Label: "Salary pool", Amount: c.SalaryPool},
		{Label: "Affiliates", Amount: c.AffiliateCost},
		{Label: fmt.Sprintf("Miscellaneous (%s%%)", trimFloat(fv.MiscPercentage)), Amount: c.MiscAmount},
		{Label: "Subtotal", Amount: c.SubtotalWithMisc, Bold: true},
		{Label: taxLabel(fv.BusinessType, c.TaxRateApplied), Amount: c.TaxAmount},
		{Label: "Total cost", Amount: c.TotalCost, Bold: true},
		{Label: fmt.Sprintf("Profit (%s%%)", trimFloat(fv.ProfitMargin)), Amount: c.TotalPrice - c.TotalCost},
		{Label: "Total price", Amount: c.TotalPrice, Bold: true},
	}

	doc.Assumptions = []string{
		"Business type: " + strings.ReplaceAll(string(fv.BusinessType), "_", " "),
		fmt.Sprintf("NSSF: %s, SHIF: %s", onOff(fv.EnableNSSF), onOff(fv.EnableSHIF)),
		fmt.Sprintf("Salary allocation: %s%% of direct cost", trimFloat(fv.SalaryPercentage)),
	}
	if q.Overridden() {
		doc.Assumptions = append(doc.Assumptions,
			"Suggested price: "+pricing.FormatKES(q.SuggestedCalculations.TotalPrice)+" (manually adjusted)")
	}
	return doc
}

func taxLabel(bt pricing.BusinessType, rate float64) string {
	switch bt {
	case pricing.BusinessVATRegistered:
		return fmt.Sprintf("VAT (%s%%)", trimFloat(rate))
	case pricing.BusinessSoleProprietor:
		return fmt.Sprintf("Turnover tax (%s%%)", trimFloat(rate))
	default:
		return "Tax"
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// trimFloat formats a percentage without trailing zeros: 16 → "16", 2.75 → "2.75".
func trimFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// formatQty prints whole quantities without decimals.
func formatQty(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
