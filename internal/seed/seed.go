package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Simplici0/atelier/internal/db"
)

const defaultStudioName = "Atelier Studio"

// Config contains the values required by startup seed.
type Config struct {
	StudioName string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

type catalogItem struct {
	name     string
	unit     string
	unitCost float64
}

// defaultCatalog is a starter price list in KES. Studios edit it afterwards.
var defaultCatalog = []catalogItem{
	{"Marine plywood 18mm", "sheet", 6500},
	{"MDF board 18mm", "sheet", 4800},
	{"Gypsum board 12mm", "sheet", 1150},
	{"Vinyl emulsion paint 20L", "tin", 9800},
	{"Porcelain floor tile 60x60", "m2", 2400},
	{"Cement 50kg", "bag", 780},
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, database *sql.DB, dialect db.Dialect, cfg Config) (Stats, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}
	s := seeder{tx: tx, dialect: dialect}

	if err := s.ensureSettings(ctx, cfg.StudioName); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	for _, item := range defaultCatalog {
		if err := s.ensureCatalogItem(ctx, item); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}
	return s.stats, nil
}

type seeder struct {
	tx      *sql.Tx
	dialect db.Dialect
	stats   Stats
}

func (s *seeder) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var exists bool
	err := s.tx.QueryRowContext(ctx, s.dialect.Rebind(query), args...).Scan(&exists)
	return exists, err
}

func (s *seeder) exec(ctx context.Context, query string, args ...any) error {
	_, err := s.tx.ExecContext(ctx, s.dialect.Rebind(query), args...)
	return err
}

// ensureSettings creates the settings singleton. An explicit studio name
// replaces the stored one.
func (s *seeder) ensureSettings(ctx context.Context, studioName string) error {
	var current string
	err := s.tx.QueryRowContext(ctx, `SELECT studio_name FROM studio_settings WHERE id = 1`).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		name := studioName
		if name == "" {
			name = defaultStudioName
		}
		if err := s.exec(ctx, `INSERT INTO studio_settings (id, studio_name) VALUES (1, ?)`, name); err != nil {
			return fmt.Errorf("insert studio settings singleton: %w", err)
		}
		s.stats.Inserts++
		return nil
	case err != nil:
		return fmt.Errorf("check studio settings existence: %w", err)
	}

	if studioName == "" || studioName == current {
		return nil
	}
	if err := s.exec(ctx, `UPDATE studio_settings SET studio_name = ? WHERE id = 1`, studioName); err != nil {
		return fmt.Errorf("update studio name: %w", err)
	}
	s.stats.Updates++
	return nil
}

func (s *seeder) ensureCatalogItem(ctx context.Context, item catalogItem) error {
	exists, err := s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM material_catalog WHERE name = ?)`, item.name)
	if err != nil {
		return fmt.Errorf("check catalog material %q: %w", item.name, err)
	}
	if exists {
		return nil
	}
	if err := s.exec(ctx, `
		INSERT INTO material_catalog (id, name, unit, unit_cost, active)
		VALUES (?, ?, ?, ?, 1)
	`, uuid.NewString(), item.name, item.unit, item.unitCost); err != nil {
		return fmt.Errorf("insert catalog material %q: %w", item.name, err)
	}
	s.stats.Inserts++
	return nil
}
