package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/atelier/internal/crm"
)

const (
	propertyColumns = `id, client_id, name, address, property_type, size_sqm, created_at`
	projectColumns  = `id, client_id, property_id, name, status, budget, start_date, end_date, created_at, updated_at`
)

func (s *Store) CreateProperty(ctx context.Context, p crm.Property) error {
	if _, err := s.exec(ctx, `
		INSERT INTO properties (`+propertyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.ClientID, p.Name, p.Address, p.PropertyType, p.SizeSqm, formatTime(p.CreatedAt)); err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

func (s *Store) DeleteProperty(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	return mustAffect(res, "property", id)
}

func (s *Store) ListProperties(ctx context.Context) ([]crm.Property, error) {
	rows, err := s.query(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	properties := []crm.Property{}
	for rows.Next() {
		var (
			p         crm.Property
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Name, &p.Address, &p.PropertyType, &p.SizeSqm, &createdAt); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}
	return properties, nil
}

func (s *Store) CreateProject(ctx context.Context, p crm.Project) error {
	if _, err := s.exec(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.ClientID, nullString(p.PropertyID), p.Name, string(p.Status), p.Budget,
		p.StartDate, p.EndDate, formatTime(p.CreatedAt), formatTime(p.UpdatedAt)); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *Store) UpdateProject(ctx context.Context, p crm.Project) error {
	res, err := s.exec(ctx, `
		UPDATE projects
		SET client_id = ?, property_id = ?, name = ?, status = ?, budget = ?,
			start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?
	`, p.ClientID, nullString(p.PropertyID), p.Name, string(p.Status), p.Budget,
		p.StartDate, p.EndDate, formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return mustAffect(res, "project", p.ID)
}

// DeleteProject removes a project and its quotes.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return mustAffect(res, "project", id)
}

func (s *Store) GetProject(ctx context.Context, id string) (crm.Project, error) {
	p, err := scanProject(s.queryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return crm.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return crm.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]crm.Project, error) {
	rows, err := s.query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := []crm.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

func scanProject(row scanner) (crm.Project, error) {
	var (
		p                    crm.Project
		propertyID           sql.NullString
		status               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.ClientID, &propertyID, &p.Name, &status, &p.Budget,
		&p.StartDate, &p.EndDate, &createdAt, &updatedAt); err != nil {
		return crm.Project{}, err
	}
	p.PropertyID = propertyID.String
	p.Status = crm.ProjectStatus(status)

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return crm.Project{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return crm.Project{}, err
	}
	return p, nil
}
