package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Simplici0/atelier/internal/crm"
	"github.com/Simplici0/atelier/internal/db"
	"github.com/Simplici0/atelier/internal/pricing"
	"github.com/Simplici0/atelier/internal/quote"
	"github.com/Simplici0/atelier/internal/session"
	"github.com/Simplici0/atelier/internal/store"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestCalcPrintsTable(t *testing.T) {
	out, err := runCmd(t, "calc", "--file", "testdata/form.yaml")
	if err != nil {
		t.Fatalf("calc: %v\n%s", err, out)
	}
	for _, want := range []string{"Direct cost base", "KES 14,000.00", "Total price", "KES 174,000.00", "Tax (16.00%)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCalcJSONWithNSSFCap(t *testing.T) {
	out, err := runCmd(t, "calc", "--file", "testdata/form.yaml", "--json")
	if err != nil {
		t.Fatalf("calc: %v", err)
	}
	var c pricing.Calculations
	if err := json.Unmarshal([]byte(out), &c); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if !nearlyEqual(c.NSSFAmount, 6000) || !nearlyEqual(c.TotalPrice, 174000) {
		t.Fatalf("uncapped nssf %v price %v", c.NSSFAmount, c.TotalPrice)
	}

	out, err = runCmd(t, "calc", "--file", "testdata/form.yaml", "--json", "--nssf-cap", "4320")
	if err != nil {
		t.Fatalf("calc capped: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !nearlyEqual(c.NSSFAmount, 4320) {
		t.Fatalf("capped nssf = %v, want 4320", c.NSSFAmount)
	}
}

func TestCalcRejectsInvalidForm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("businessType: barter\nprofitMargin: 20\n"), 0o600); err != nil {
		t.Fatalf("write form: %v", err)
	}
	_, err := runCmd(t, "calc", "--file", path)
	if err == nil || !strings.Contains(err.Error(), "businessType") {
		t.Fatalf("err = %v, want businessType validation error", err)
	}
}

func TestMigrateSeedExport(t *testing.T) {
	t.Setenv("BLOB_DRIVER", "memory")
	dir := t.TempDir()
	dsn := filepath.Join(dir, "cli.db")

	out, err := runCmd(t, "migrate", "--dsn", dsn, "--dir", "../../migrations")
	if err != nil {
		t.Fatalf("migrate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "applied") {
		t.Fatalf("migrate output = %q", out)
	}

	out, err = runCmd(t, "seed", "--dsn", dsn, "--studio-name", "Nyumba Design")
	if err != nil {
		t.Fatalf("seed: %v\n%s", err, out)
	}

	q := insertQuote(t, dsn)
	target := filepath.Join(dir, "quote.txt")
	out, err = runCmd(t, "export", "--dsn", dsn, "--quote", q.ID, "--format", "txt", "--out", target)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	body, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(body), "Client: Achieng Homes") || !strings.Contains(string(body), q.Number) {
		t.Fatalf("export body:\n%s", body)
	}

	out, err = runCmd(t, "export", "--dsn", dsn, "--quote", q.ID, "--archive")
	if err != nil {
		t.Fatalf("archive: %v\n%s", err, out)
	}
	if !strings.Contains(out, "quotes/"+q.ID+"/") {
		t.Fatalf("archive output = %q", out)
	}

	if _, err := runCmd(t, "export", "--dsn", dsn, "--quote", "missing"); err == nil {
		t.Fatalf("expected error for unknown quote")
	}
}

func insertQuote(t *testing.T, dsn string) quote.Quote {
	t.Helper()
	ctx := context.Background()
	database, dialect, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()
	st := store.New(database, dialect)

	now := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
	c := crm.Client{ID: "c-1", Name: "Achieng Homes", CreatedAt: now, UpdatedAt: now}
	if err := st.CreateClient(ctx, c); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	p := crm.Project{ID: "p-1", ClientID: c.ID, Name: "Kitchen", Status: crm.ProjectActive, CreatedAt: now, UpdatedAt: now}
	if err := st.CreateProject(ctx, p); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	q, err := quote.Publish(pricing.DefaultOptions(), quote.PublishInput{
		FormValues: pricing.FormValues{
			ClientID:     c.ID,
			ProjectID:    p.ID,
			Materials:    []pricing.Material{{Name: "Granite top", Quantity: 3, UnitCost: 12000}},
			BusinessType: pricing.BusinessSoleProprietor,
			ProfitMargin: 20,
		},
		Allocations: pricing.DefaultAllocation(),
	}, "Q-26-27-0001", now)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := st.CreateQuote(ctx, q); err != nil {
		t.Fatalf("CreateQuote: %v", err)
	}
	return q
}

func TestSessionCommand(t *testing.T) {
	t.Setenv("SESSION_SECRET", "cli-secret")

	out, err := runCmd(t, "session", "--subject", "ops@studio.co.ke", "--ttl", "1h")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	value, ok := strings.CutPrefix(strings.TrimSpace(out), session.CookieName+"=")
	if !ok {
		t.Fatalf("output = %q", out)
	}
	subject, err := session.NewSigner("cli-secret").Verify(value)
	if err != nil || subject != "ops@studio.co.ke" {
		t.Fatalf("verify = %q, %v", subject, err)
	}

	t.Setenv("SESSION_SECRET", "")
	if _, err := runCmd(t, "session", "--subject", "x"); err == nil {
		t.Fatalf("expected error without SESSION_SECRET")
	}
}
