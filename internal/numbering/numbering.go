// Package numbering builds human-readable document numbers for quotes and
// invoices.
package numbering

import (
	"fmt"
	"time"
)

// FiscalYear returns the Kenyan fiscal year for t, which runs July to June.
// Jan 2026 → "25-26", Aug 2026 → "26-27".
func FiscalYear(t time.Time) string {
	startYear := t.Year()
	if t.Month() < time.July {
		startYear--
	}
	return fmt.Sprintf("%02d-%02d", startYear%100, (startYear+1)%100)
}

// Format constructs {prefix}-{fiscal_year}-{sequence} with a 4-digit
// zero-padded sequence, e.g. INV-25-26-0007.
func Format(prefix, fiscalYear string, sequence int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, fiscalYear, sequence)
}

// Prefix returns the search prefix shared by every number in a fiscal year.
func Prefix(prefix, fiscalYear string) string {
	return prefix + "-" + fiscalYear + "-"
}
