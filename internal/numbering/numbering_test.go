package numbering

import (
	"testing"
	"time"
)

func TestFiscalYear(t *testing.T) {
	tests := []struct {
		name   string
		date   time.Time
		expect string
	}{
		{"july_start", time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), "26-27"},
		{"june_end", time.Date(2026, time.June, 30, 23, 59, 0, 0, time.UTC), "25-26"},
		{"january", time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), "25-26"},
		{"december", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), "25-26"},
		{"year_2000", time.Date(2000, time.March, 1, 0, 0, 0, 0, time.UTC), "99-00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FiscalYear(tt.date); got != tt.expect {
				t.Errorf("FiscalYear(%v) = %q, want %q", tt.date, got, tt.expect)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	if got := Format("INV", "25-26", 7); got != "INV-25-26-0007" {
		t.Errorf("Format = %q", got)
	}
	if got := Format("Q", "26-27", 12345); got != "Q-26-27-12345" {
		t.Errorf("Format = %q", got)
	}
	if got := Prefix("Q", "25-26"); got != "Q-25-26-" {
		t.Errorf("Prefix = %q", got)
	}
}
