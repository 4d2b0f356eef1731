package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"

	"github.com/Simplici0/atelier/internal/db"
)

// Up runs all pending SQL migrations found in migrationsDir and returns the
// number applied.
func Up(ctx context.Context, database *sql.DB, dialect db.Dialect, migrationsDir string) (int, error) {
	provider, err := goose.NewProvider(gooseDialect(dialect), database, os.DirFS(migrationsDir))
	if err != nil {
		return 0, fmt.Errorf("create goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("run goose up migrations: %w", err)
	}
	return len(results), nil
}

func gooseDialect(d db.Dialect) goose.Dialect {
	if d == db.Postgres {
		return goose.DialectPostgres
	}
	return goose.DialectSQLite3
}
