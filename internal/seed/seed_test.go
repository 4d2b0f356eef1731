package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Simplici0/atelier/internal/db"
	"github.com/Simplici0/atelier/internal/migrations"
	"github.com/Simplici0/atelier/internal/store"
)

func openMigrated(t *testing.T) (*sql.DB, db.Dialect) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, dialect, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if _, err := migrations.Up(context.Background(), database, dialect, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database, dialect
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	database, dialect := openMigrated(t)

	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database, dialect, Config{})
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 1+len(defaultCatalog) {
				t.Fatalf("expected %d inserts in first run, got %d", 1+len(defaultCatalog), stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 || stats.Updates != 0 {
			t.Fatalf("expected no changes in iteration %d, got %+v", i, stats)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM studio_settings WHERE id = 1`, nil, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM material_catalog`, nil, len(defaultCatalog))

	st, err := store.New(database, dialect).GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if st.StudioName != defaultStudioName || st.TaxRate != 16 || st.ProfitMargin != 25 {
		t.Fatalf("settings = %+v", st)
	}
	if st.Allocation.Total() != 100 {
		t.Fatalf("allocation total = %v, want 100", st.Allocation.Total())
	}
}

func TestRunRenamesStudio(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	database, dialect := openMigrated(t)

	if _, err := Run(ctx, database, dialect, Config{}); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	stats, err := Run(ctx, database, dialect, Config{StudioName: "Nyumba Design"})
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if stats.Updates != 1 || stats.Inserts != 0 {
		t.Fatalf("stats = %+v, want one update", stats)
	}
	assertCount(t, database, `SELECT COUNT(*) FROM studio_settings WHERE studio_name = ?`, "Nyumba Design", 1)
}

func TestSeededCatalogIsListed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	database, dialect := openMigrated(t)

	if _, err := Run(ctx, database, dialect, Config{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	items, err := store.New(database, dialect).ListCatalog(ctx)
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}
	if len(items) != len(defaultCatalog) {
		t.Fatalf("catalog size = %d, want %d", len(items), len(defaultCatalog))
	}
	// Sorted by name.
	if items[0].Name != "Cement 50kg" {
		t.Fatalf("first item = %q, want Cement 50kg", items[0].Name)
	}
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("query count: %v", err)
	}
	if count != expected {
		t.Fatalf("count for %q = %d, want %d", query, count, expected)
	}
}
