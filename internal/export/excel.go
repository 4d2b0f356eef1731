package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	quoteSheet = "Quote"
	moneyFmt   = "#,##0.00"
)

var columns = []string{"A", "B", "C", "D", "E", "F"}

// GenerateExcel renders doc as an XLSX workbook and returns its bytes.
func GenerateExcel(doc QuoteDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), quoteSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	lastCol := columns[len(columns)-1]
	widths := []float64{14, 40, 10, 18, 16, 18}
	for i, col := range columns {
		if err := f.SetColWidth(quoteSheet, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.MergeCell(quoteSheet, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(quoteSheet, "A1", sanitizeExcelCell(doc.Title))
	f.SetCellStyle(quoteSheet, "A1", lastCol+"1", styles.title)

	meta := []string{
		"Date: " + doc.Date,
		"Client: " + doc.ClientName,
		"Project: " + doc.ProjectName,
	}
	for i, m := range meta {
		cell := fmt.Sprintf("A%d", i+2)
		f.SetCellValue(quoteSheet, cell, sanitizeExcelCell(m))
	}

	headerRow := 6
	headers := []string{"Section", "Description", "Qty", "Unit", "Rate (KES)", "Amount (KES)"}
	for i, h := range headers {
		f.SetCellValue(quoteSheet, fmt.Sprintf("%s%d", columns[i], headerRow), h)
	}
	f.SetCellStyle(quoteSheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", lastCol, headerRow), styles.header)

	row := headerRow + 1
	for _, l := range doc.Lines {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(quoteSheet, "A"+r, l.Section)
		f.SetCellValue(quoteSheet, "B"+r, sanitizeExcelCell(l.Description))
		f.SetCellValue(quoteSheet, "C"+r, l.Qty)
		f.SetCellValue(quoteSheet, "D"+r, sanitizeExcelCell(l.Unit))
		f.SetCellValue(quoteSheet, "E"+r, l.Rate)
		f.SetCellValue(quoteSheet, "F"+r, l.Amount)
		f.SetCellStyle(quoteSheet, "A"+r, "D"+r, styles.cell)
		f.SetCellStyle(quoteSheet, "E"+r, "F"+r, styles.money)
		row++
	}

	row++
	for _, s := range doc.Summary {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(quoteSheet, "E"+r, s.Label)
		f.SetCellValue(quoteSheet, "F"+r, s.Amount)
		f.SetCellStyle(quoteSheet, "E"+r, "E"+r, styles.label)
		valueStyle := styles.money
		if s.Bold {
			valueStyle = styles.moneyBold
		}
		f.SetCellStyle(quoteSheet, "F"+r, "F"+r, valueStyle)
		row++
	}

	row++
	f.SetCellValue(quoteSheet, fmt.Sprintf("A%d", row), "Assumptions")
	f.SetCellStyle(quoteSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.label)
	for _, a := range doc.Assumptions {
		row++
		f.SetCellValue(quoteSheet, fmt.Sprintf("B%d", row), sanitizeExcelCell(a))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetStyles struct {
	title, header, cell, money, moneyBold, label int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var (
		s   sheetStyles
		err error
	)
	numFmt := moneyFmt

	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}); err != nil {
		return s, fmt.Errorf("create title style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	}); err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}
	if s.cell, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()}); err != nil {
		return s, fmt.Errorf("create cell style: %w", err)
	}
	if s.money, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &numFmt,
	}); err != nil {
		return s, fmt.Errorf("create money style: %w", err)
	}
	if s.moneyBold, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		CustomNumFmt: &numFmt,
	}); err != nil {
		return s, fmt.Errorf("create bold money style: %w", err)
	}
	if s.label, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	}); err != nil {
		return s, fmt.Errorf("create label style: %w", err)
	}
	return s, nil
}

// sanitizeExcelCell prefixes values Excel would treat as formulas.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
