package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/Simplici0/atelier/internal/pricing"
)

var (
	grey      = &props.Color{Red: 80, Green: 80, Blue: 80}
	headerBg  = &props.Color{Red: 33, Green: 37, Blue: 41}
	summaryBg = &props.Color{Red: 240, Green: 240, Blue: 240}
)

// GeneratePDF renders doc as an A4 portrait PDF and returns its bytes.
func GeneratePDF(doc QuoteDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   grey,
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, doc)
	addLines(m, doc.Lines)
	addSummary(m, doc.Summary)
	addAssumptions(m, doc)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return out.GetBytes(), nil
}

func addHeader(m core.Maroto, doc QuoteDocument) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(text.New(doc.Title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center})),
		),
		row.New(6).Add(
			col.New(6).Add(text.New("Client: "+doc.ClientName, props.Text{Size: 9, Color: grey})),
			col.New(6).Add(text.New("Date: "+doc.Date, props.Text{Size: 9, Align: align.Right, Color: grey})),
		),
		row.New(6).Add(
			col.New(12).Add(text.New("Project: "+doc.ProjectName, props.Text{Size: 9, Color: grey})),
		),
		row.New(4),
	)
}

func addLines(m core.Maroto, lines []Line) {
	head := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center, Color: &props.Color{Red: 255, Green: 255, Blue: 255}}
	headLeft := head
	headLeft.Align = align.Left
	cell := &props.Cell{BackgroundColor: headerBg}

	m.AddRows(row.New(8).Add(
		col.New(2).Add(text.New("Section", headLeft)).WithStyle(cell),
		col.New(4).Add(text.New("Description", headLeft)).WithStyle(cell),
		col.New(1).Add(text.New("Qty", head)).WithStyle(cell),
		col.New(2).Add(text.New("Unit", head)).WithStyle(cell),
		col.New(3).Add(text.New("Amount", head)).WithStyle(cell),
	))

	body := props.Text{Size: 8, Align: align.Left}
	right := body
	right.Align = align.Right
	for _, l := range lines {
		m.AddRows(row.New(7).Add(
			col.New(2).Add(text.New(l.Section, body)),
			col.New(4).Add(text.New(l.Description, body)),
			col.New(1).Add(text.New(formatQty(l.Qty), right)),
			col.New(2).Add(text.New(l.Unit, body)),
			col.New(3).Add(text.New(pricing.FormatKES(l.Amount), right)),
		))
	}
}

func addSummary(m core.Maroto, summary []SummaryRow) {
	m.AddRows(row.New(6))
	cell := &props.Cell{BackgroundColor: summaryBg}
	for _, s := range summary {
		style := fontstyle.Normal
		if s.Bold {
			style = fontstyle.Bold
		}
		m.AddRows(row.New(7).Add(
			col.New(8).Add(text.New(s.Label, props.Text{Size: 9, Style: style, Align: align.Right})).WithStyle(cell),
			col.New(4).Add(text.New(pricing.FormatKES(s.Amount), props.Text{Size: 9, Style: style, Align: align.Right})).WithStyle(cell),
		))
	}
}

func addAssumptions(m core.Maroto, doc QuoteDocument) {
	m.AddRows(row.New(6))
	m.AddRows(row.New(6).Add(col.New(12).Add(text.New("Assumptions", props.Text{Size: 9, Style: fontstyle.Bold}))))
	for _, a := range doc.Assumptions {
		m.AddRows(row.New(5).Add(col.New(12).Add(text.New("- "+a, props.Text{Size: 8, Color: grey}))))
	}
	if doc.Notes != "" {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New("Notes: "+doc.Notes, props.Text{Size: 8}))))
	}
}
