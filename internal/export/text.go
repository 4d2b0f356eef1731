package export

import (
	"fmt"
	"strings"

	"github.com/Simplici0/atelier/internal/pricing"
)

// PlainText renders doc as a copy-pasteable summary.
func PlainText(doc QuoteDocument) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", doc.Title)
	fmt.Fprintf(&b, "Date: %s\n", doc.Date)
	if doc.ClientName != "" {
		fmt.Fprintf(&b, "Client: %s\n", doc.ClientName)
	}
	if doc.ProjectName != "" {
		fmt.Fprintf(&b, "Project: %s\n", doc.ProjectName)
	}
	fmt.Fprintf(&b, "Total: %s\n", pricing.FormatKES(doc.Total))

	if len(doc.Lines) > 0 {
		b.WriteString("\nLine items:\n")
		section := ""
		for _, l := range doc.Lines {
			if l.Section != section {
				section = l.Section
				fmt.Fprintf(&b, "  %s\n", section)
			}
			fmt.Fprintf(&b, "  - %s: %s %s = %s\n", l.Description, formatQty(l.Qty), l.Unit, pricing.FormatKES(l.Amount))
		}
	}

	b.WriteString("\nSummary:\n")
	for _, s := range doc.Summary {
		fmt.Fprintf(&b, "  %s: %s\n", s.Label, pricing.FormatKES(s.Amount))
	}

	b.WriteString("\nAssumptions:\n")
	for _, a := range doc.Assumptions {
		fmt.Fprintf(&b, "  - %s\n", a)
	}

	if doc.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s\n", doc.Notes)
	}
	return b.String()
}
