package db

import (
	"path/filepath"
	"testing"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		dsn  string
		want Dialect
	}{
		{"./dev.db", SQLite},
		{"file:test.db?cache=shared", SQLite},
		{"postgres://atelier@localhost/atelier", Postgres},
		{"postgresql://atelier@db:5432/atelier?sslmode=disable", Postgres},
	}
	for _, tt := range tests {
		if got := DialectFor(tt.dsn); got != tt.want {
			t.Fatalf("DialectFor(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestRebind(t *testing.T) {
	q := `SELECT id FROM quotes WHERE number LIKE ? AND status = ?`
	if got := SQLite.Rebind(q); got != q {
		t.Fatalf("sqlite rebind changed query: %q", got)
	}
	want := `SELECT id FROM quotes WHERE number LIKE $1 AND status = $2`
	if got := Postgres.Rebind(q); got != want {
		t.Fatalf("postgres rebind = %q, want %q", got, want)
	}
}

func TestOpenSQLiteEnablesForeignKeys(t *testing.T) {
	database, dialect, err := Open(filepath.Join(t.TempDir(), "fk.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	if dialect != SQLite {
		t.Fatalf("dialect = %q, want sqlite", dialect)
	}

	var on int
	if err := database.QueryRow(`PRAGMA foreign_keys`).Scan(&on); err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if on != 1 {
		t.Fatalf("foreign_keys = %d, want 1", on)
	}
}
