package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/atelier/internal/pricing"
	"github.com/Simplici0/atelier/internal/quote"
)

func sampleQuote(override *float64) quote.Quote {
	fv := pricing.FormValues{
		ClientID:  "c-1",
		ProjectID: "p-1",
		Materials: []pricing.Material{{Name: "Oak panel", Quantity: 10, UnitCost: 1000, Description: "sheets"}},
		Labor: []pricing.LaborItem{
			{Vendor: "Joinery Co", RateType: pricing.LaborDaily, Rate: 2000, Days: 2},
		},
		Operations:   []pricing.Operation{{Name: "Transport", Cost: 2000}},
		Affiliates:   []pricing.Affiliate{{Name: "Referral", RateType: pricing.AffiliatePercentage, Rate: 5}},
		BusinessType: pricing.BusinessVATRegistered,
		TaxRate:      16,
		ProfitMargin: 25,
	}
	suggested := pricing.Calculate(fv)
	return quote.Quote{
		ID:                    "q-1",
		Number:                "Q-25-26-0003",
		Status:                quote.StatusSent,
		FormValues:            fv,
		Allocations:           pricing.DefaultAllocation(),
		Calculations:          quote.ApplyOverride(suggested, override),
		SuggestedCalculations: suggested,
		FinalPriceOverride:    override,
		Notes:                 "Deliver before Easter",
		CreatedAt:             time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC),
	}
}

func TestNewQuoteDocument(t *testing.T) {
	doc := NewQuoteDocument(sampleQuote(nil), "Amani Homes", "Living room")

	if doc.Title != "Quotation Q-25-26-0003" || doc.Date != "2026-03-02" {
		t.Fatalf("unexpected header: %q %q", doc.Title, doc.Date)
	}
	if len(doc.Lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(doc.Lines))
	}

	labor := doc.Lines[1]
	if labor.Unit != "days" || labor.Qty != 2 || labor.Amount != 4000 {
		t.Fatalf("unexpected labor line: %+v", labor)
	}

	// Direct cost base is 10000 + 4000 + 2000.
	affiliate := doc.Lines[3]
	if affiliate.Amount != 800 {
		t.Fatalf("affiliate amount = %v, want 800", affiliate.Amount)
	}

	last := doc.Summary[len(doc.Summary)-1]
	if last.Label != "Total price" || last.Amount != doc.Total {
		t.Fatalf("unexpected final summary row: %+v", last)
	}
	for _, s := range doc.Summary {
		if strings.HasPrefix(s.Label, "VAT") && s.Label != "VAT (16%)" {
			t.Fatalf("tax label = %q", s.Label)
		}
	}
}

func TestNewQuoteDocument_OverrideNotedInAssumptions(t *testing.T) {
	override := 25000.0
	doc := NewQuoteDocument(sampleQuote(&override), "", "")

	if doc.Total != override {
		t.Fatalf("Total = %v, want override %v", doc.Total, override)
	}
	found := false
	for _, a := range doc.Assumptions {
		if strings.Contains(a, "manually adjusted") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected override assumption, got %v", doc.Assumptions)
	}
}

func TestPlainText(t *testing.T) {
	doc := NewQuoteDocument(sampleQuote(nil), "Amani Homes", "Living room")
	body := PlainText(doc)

	for _, expected := range []string{
		"Quotation Q-25-26-0003",
		"Client: Amani Homes",
		"Total: " + pricing.FormatKES(doc.Total),
		"Line items:",
		"- Oak panel: 10 sheets = KES 10,000.00",
		"Assumptions:",
		"Business type: vat registered",
		"Notes: Deliver before Easter",
	} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q, got:\n%s", expected, body)
		}
	}
}

func TestGenerateExcel(t *testing.T) {
	doc := NewQuoteDocument(sampleQuote(nil), "Amani Homes", "=HYPERLINK(\"x\")")

	result, err := GenerateExcel(doc)
	if err != nil {
		t.Fatalf("GenerateExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != quoteSheet {
		t.Fatalf("sheets = %v", sheets)
	}

	title, _ := f.GetCellValue(quoteSheet, "A1")
	if title != doc.Title {
		t.Errorf("title = %q, want %q", title, doc.Title)
	}
	project, _ := f.GetCellValue(quoteSheet, "A4")
	if project != "Project: =HYPERLINK(\"x\")" {
		t.Errorf("project cell = %q", project)
	}
	desc, _ := f.GetCellValue(quoteSheet, "B7")
	if desc != "Oak panel" {
		t.Errorf("first line description = %q", desc)
	}
	amount, _ := f.GetCellValue(quoteSheet, "F7", excelize.Options{RawCellValue: true})
	if amount != "10000" {
		t.Errorf("first line amount = %q, want 10000", amount)
	}
}

func TestGenerateExcel_EmptyQuote(t *testing.T) {
	doc := NewQuoteDocument(quote.Quote{Number: "Q-25-26-0001"}, "", "")
	result, err := GenerateExcel(doc)
	if err != nil {
		t.Fatalf("GenerateExcel() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateExcel() returned empty bytes")
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Oak", "Oak"},
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+254", "'+254"},
		{"@cmd", "'@cmd"},
	}
	for _, tt := range tests {
		if got := sanitizeExcelCell(tt.in); got != tt.want {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGeneratePDF(t *testing.T) {
	doc := NewQuoteDocument(sampleQuote(nil), "Amani Homes", "Living room")

	result, err := GeneratePDF(doc)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if len(result) < 5 || string(result[:5]) != "%PDF-" {
		t.Fatalf("result does not start with PDF header")
	}
}

func TestRender(t *testing.T) {
	doc := NewQuoteDocument(sampleQuote(nil), "Wanjiru", "Living room")

	pdf, err := Render(doc, FormatPDF)
	if err != nil {
		t.Fatalf("Render pdf: %v", err)
	}
	if !bytes.HasPrefix(pdf.Body, []byte("%PDF")) || pdf.ContentType != "application/pdf" {
		t.Fatalf("unexpected pdf render: %q %d bytes", pdf.ContentType, len(pdf.Body))
	}
	if pdf.Filename(doc) != "Q-25-26-0003.pdf" {
		t.Fatalf("filename = %q", pdf.Filename(doc))
	}

	xlsx, err := Render(doc, FormatXLSX)
	if err != nil {
		t.Fatalf("Render xlsx: %v", err)
	}
	if !bytes.HasPrefix(xlsx.Body, []byte("PK")) {
		t.Fatalf("xlsx is not a zip archive")
	}

	txt, err := Render(doc, FormatText)
	if err != nil {
		t.Fatalf("Render txt: %v", err)
	}
	if !strings.Contains(string(txt.Body), "Total:") {
		t.Fatalf("text render missing total: %s", txt.Body)
	}

	if _, err := Render(doc, Format("docx")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}
