package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Simplici0/atelier/internal/pricing"
)

func writeRates(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write rates: %v", err)
	}
	return path
}

func TestLoadRatesDefaultsWithoutFile(t *testing.T) {
	opts, err := LoadRates("")
	if err != nil {
		t.Fatalf("LoadRates: %v", err)
	}
	if opts != pricing.DefaultOptions() {
		t.Fatalf("opts = %+v, want defaults", opts)
	}
}

func TestLoadRatesOverridesOnlyGivenFields(t *testing.T) {
	path := writeRates(t, "nssfCapPerPerson: 4320\nshifRate: 0.03\n")
	opts, err := LoadRates(path)
	if err != nil {
		t.Fatalf("LoadRates: %v", err)
	}
	if opts.NSSFCapPerPerson != 4320 || opts.SHIFRate != 0.03 {
		t.Fatalf("opts = %+v", opts)
	}
	if opts.NSSFRate != 0.06 || opts.TurnoverTaxRate != 0.03 {
		t.Fatalf("untouched rates changed: %+v", opts)
	}
}

func TestLoadRatesRejectsOutOfRange(t *testing.T) {
	for _, body := range []string{"nssfRate: 6\n", "nssfCapPerPerson: -1\n", "shifRate: [\n"} {
		if _, err := LoadRates(writeRates(t, body)); err == nil {
			t.Fatalf("expected error for %q", body)
		}
	}
	if _, err := LoadRates(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
