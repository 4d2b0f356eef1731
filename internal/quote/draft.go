package quote

import "github.com/Simplici0/atelier/internal/pricing"

// Draft is one in-progress quote form. Every change recalculates, so
// Calculations always matches the current form.
type Draft struct {
	opts    pricing.Options
	form    pricing.FormValues
	alloc   pricing.Allocation
	calc    pricing.Calculations
	quoteID string
}

// NewDraft returns an empty form with the default allocation.
func NewDraft(opts pricing.Options) *Draft {
	d := &Draft{opts: opts}
	d.Reset()
	return d
}

// LoadDraft opens a published quote for editing.
func LoadDraft(opts pricing.Options, q Quote) *Draft {
	d := &Draft{
		opts:    opts,
		form:    q.FormValues.Clone(),
		alloc:   q.Allocations,
		quoteID: q.ID,
	}
	d.recalculate()
	return d
}

// Update applies fn to a copy of the form and recalculates.
func (d *Draft) Update(fn func(fv *pricing.FormValues)) pricing.Calculations {
	form := d.form.Clone()
	fn(&form)
	d.form = form
	d.recalculate()
	return d.calc
}

// SetAllocation replaces the profit allocation.
func (d *Draft) SetAllocation(a pricing.Allocation) {
	d.alloc = a
}

// Reset discards all edits and detaches the draft from any quote.
func (d *Draft) Reset() {
	d.form = pricing.FormValues{BusinessType: pricing.BusinessNoTax}
	d.alloc = pricing.DefaultAllocation()
	d.quoteID = ""
	d.recalculate()
}

// Form returns a copy of the current form values.
func (d *Draft) Form() pricing.FormValues { return d.form.Clone() }

func (d *Draft) Allocation() pricing.Allocation { return d.alloc }

func (d *Draft) Calculations() pricing.Calculations { return d.calc }

// QuoteID is the published quote this draft edits, or "" for a new quote.
func (d *Draft) QuoteID() string { return d.quoteID }

// Input builds the publish input for the current state.
func (d *Draft) Input(override *float64, notes string) PublishInput {
	return PublishInput{
		FormValues:  d.Form(),
		Allocations: d.alloc,
		Override:    override,
		Notes:       notes,
	}
}

func (d *Draft) recalculate() {
	d.calc = pricing.CalculateWith(d.opts, d.form)
}
