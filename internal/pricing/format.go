package pricing

import (
	"math"

	"github.com/dustin/go-humanize"
)

// CurrencyCode is the ISO code quotes are priced in.
const CurrencyCode = "KES"

// FormatKES renders an amount as "KES 1,234.50". Negative amounts keep a
// leading minus sign: "-KES 250.00".
func FormatKES(amount float64) string {
	if amount < 0 {
		return "-" + CurrencyCode + " " + humanize.FormatFloat("#,###.##", math.Abs(amount))
	}
	return CurrencyCode + " " + humanize.FormatFloat("#,###.##", amount)
}
