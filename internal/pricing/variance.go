package pricing

// VarianceReport compares the engine's suggested figures with the published
// ones. Deltas are final minus suggested and may be negative.
type VarianceReport struct {
	SuggestedTotalPrice float64 `json:"suggestedTotalPrice"`
	FinalTotalPrice     float64 `json:"finalTotalPrice"`
	PriceDelta          float64 `json:"priceDelta"`
	PriceDeltaPercent   float64 `json:"priceDeltaPercent"`
	ProfitDelta         float64 `json:"profitDelta"`
	// EffectiveProfit is what the studio keeps at the final price.
	EffectiveProfit        float64 `json:"effectiveProfit"`
	EffectiveMarkupPercent float64 `json:"effectiveMarkupPercent"`
}

// Variance reports how far the published price moved from the suggestion.
func Variance(suggested, final Calculations) VarianceReport {
	r := VarianceReport{
		SuggestedTotalPrice: suggested.TotalPrice,
		FinalTotalPrice:     final.TotalPrice,
		PriceDelta:          final.TotalPrice - suggested.TotalPrice,
		EffectiveProfit:     final.TotalPrice - final.TotalCost,
	}
	r.ProfitDelta = r.EffectiveProfit - suggested.ProfitAmount
	if suggested.TotalPrice != 0 {
		r.PriceDeltaPercent = r.PriceDelta / suggested.TotalPrice * 100
	}
	if final.TotalCost != 0 {
		r.EffectiveMarkupPercent = r.EffectiveProfit / final.TotalCost * 100
	}
	return r
}
