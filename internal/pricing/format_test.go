package pricing

import "testing"

func TestFormatKES(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		expect string
	}{
		{"zero", 0, "KES 0.00"},
		{"small", 5, "KES 5.00"},
		{"decimals", 42.5, "KES 42.50"},
		{"thousands", 1234.56, "KES 1,234.56"},
		{"quote total", 20000, "KES 20,000.00"},
		{"millions", 1234567.89, "KES 1,234,567.89"},
		{"negative", -250, "-KES 250.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatKES(tt.input); got != tt.expect {
				t.Errorf("FormatKES(%v) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}
