package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/atelier/internal/pricing"
)

// Settings are the studio-wide defaults a new quote form starts from.
type Settings struct {
	StudioName       string               `json:"studioName"`
	BusinessType     pricing.BusinessType `json:"businessType"`
	TaxRate          float64              `json:"taxRate"`
	ProfitMargin     float64              `json:"profitMargin"`
	MiscPercentage   float64              `json:"miscPercentage"`
	SalaryPercentage float64              `json:"salaryPercentage"`
	EnableNSSF       bool                 `json:"enableNSSF"`
	EnableSHIF       bool                 `json:"enableSHIF"`
	Allocation       pricing.Allocation   `json:"allocation"`
}

// DefaultForm returns an empty form carrying the studio defaults.
func (st Settings) DefaultForm() pricing.FormValues {
	return pricing.FormValues{
		BusinessType:     st.BusinessType,
		TaxRate:          st.TaxRate,
		ProfitMargin:     st.ProfitMargin,
		MiscPercentage:   st.MiscPercentage,
		SalaryPercentage: st.SalaryPercentage,
		EnableNSSF:       st.EnableNSSF,
		EnableSHIF:       st.EnableSHIF,
	}
}

// CatalogMaterial is a reusable material with a reference price.
type CatalogMaterial struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	UnitCost float64 `json:"unitCost"`
}

// Line turns a catalog entry into a quote material line.
func (m CatalogMaterial) Line(quantity float64) pricing.Material {
	return pricing.Material{Name: m.Name, Quantity: quantity, UnitCost: m.UnitCost, Description: m.Unit}
}

// GetSettings reads the settings singleton.
func (s *Store) GetSettings(ctx context.Context) (Settings, error) {
	var (
		st                     Settings
		businessType           string
		enableNSSF, enableSHIF int
	)
	err := s.queryRow(ctx, `
		SELECT studio_name, business_type, tax_rate, profit_margin, misc_percentage,
			salary_percentage, enable_nssf, enable_shif, savings_pct, future_dev_pct, csr_pct
		FROM studio_settings WHERE id = 1
	`).Scan(&st.StudioName, &businessType, &st.TaxRate, &st.ProfitMargin, &st.MiscPercentage,
		&st.SalaryPercentage, &enableNSSF, &enableSHIF,
		&st.Allocation.Savings, &st.Allocation.FutureDev, &st.Allocation.CSR)
	if errors.Is(err, sql.ErrNoRows) {
		return Settings{}, fmt.Errorf("studio settings: %w", ErrNotFound)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("get studio settings: %w", err)
	}
	st.BusinessType = pricing.BusinessType(businessType)
	st.EnableNSSF = enableNSSF != 0
	st.EnableSHIF = enableSHIF != 0
	return st, nil
}

// SaveSettings overwrites the settings singleton, which must already exist.
func (s *Store) SaveSettings(ctx context.Context, st Settings) error {
	res, err := s.exec(ctx, `
		UPDATE studio_settings
		SET studio_name = ?, business_type = ?, tax_rate = ?, profit_margin = ?,
			misc_percentage = ?, salary_percentage = ?, enable_nssf = ?, enable_shif = ?,
			savings_pct = ?, future_dev_pct = ?, csr_pct = ?
		WHERE id = 1
	`, st.StudioName, string(st.BusinessType), st.TaxRate, st.ProfitMargin,
		st.MiscPercentage, st.SalaryPercentage, boolInt(st.EnableNSSF), boolInt(st.EnableSHIF),
		st.Allocation.Savings, st.Allocation.FutureDev, st.Allocation.CSR)
	if err != nil {
		return fmt.Errorf("update studio settings: %w", err)
	}
	return mustAffect(res, "studio settings", "1")
}

// ListCatalog returns active catalog materials by name.
func (s *Store) ListCatalog(ctx context.Context) ([]CatalogMaterial, error) {
	rows, err := s.query(ctx, `SELECT id, name, unit, unit_cost FROM material_catalog WHERE active = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query material catalog: %w", err)
	}
	defer rows.Close()

	items := []CatalogMaterial{}
	for rows.Next() {
		var m CatalogMaterial
		if err := rows.Scan(&m.ID, &m.Name, &m.Unit, &m.UnitCost); err != nil {
			return nil, fmt.Errorf("scan catalog material: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate material catalog: %w", err)
	}
	return items, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
