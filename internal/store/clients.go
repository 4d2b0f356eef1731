package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/atelier/internal/crm"
)

const clientColumns = `id, name, email, phone, company, notes, created_at, updated_at`

func (s *Store) CreateClient(ctx context.Context, c crm.Client) error {
	if _, err := s.exec(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Email, c.Phone, c.Company, c.Notes, formatTime(c.CreatedAt), formatTime(c.UpdatedAt)); err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *Store) UpdateClient(ctx context.Context, c crm.Client) error {
	res, err := s.exec(ctx, `
		UPDATE clients
		SET name = ?, email = ?, phone = ?, company = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Email, c.Phone, c.Company, c.Notes, formatTime(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return mustAffect(res, "client", c.ID)
}

// DeleteClient removes a client with its properties, projects, quotes and
// invoices.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return mustAffect(res, "client", id)
}

func (s *Store) GetClient(ctx context.Context, id string) (crm.Client, error) {
	c, err := scanClient(s.queryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return crm.Client{}, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return crm.Client{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]crm.Client, error) {
	rows, err := s.query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	clients := []crm.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return clients, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(row scanner) (crm.Client, error) {
	var (
		c                    crm.Client
		createdAt, updatedAt string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes, &createdAt, &updatedAt); err != nil {
		return crm.Client{}, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return crm.Client{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return crm.Client{}, err
	}
	return c, nil
}
