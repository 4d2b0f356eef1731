package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/atelier/internal/invoice"
)

const invoiceColumns = `id, number, quote_id, client_id, amount, status, issued_at, due_at`

func (s *Store) CreateInvoice(ctx context.Context, inv invoice.Invoice) error {
	if _, err := s.exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.Number, inv.QuoteID, inv.ClientID, inv.Amount, string(inv.Status),
		formatTime(inv.IssuedAt), formatTime(inv.DueAt)); err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (invoice.Invoice, error) {
	inv, err := scanInvoice(s.queryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return invoice.Invoice{}, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return invoice.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]invoice.Invoice, error) {
	rows, err := s.query(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY issued_at DESC, number DESC`)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	invoices := []invoice.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}
	return invoices, nil
}

func (s *Store) CountInvoicesWithPrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE number LIKE ?`, prefix+"%").Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}

// InvoicedRevenue sums the amount of every invoice that is not void.
func (s *Store) InvoicedRevenue(ctx context.Context) (float64, error) {
	var total sql.NullFloat64
	if err := s.queryRow(ctx, `SELECT SUM(amount) FROM invoices WHERE status <> ?`, string(invoice.StatusVoid)).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum invoiced revenue: %w", err)
	}
	return total.Float64, nil
}

func scanInvoice(row scanner) (invoice.Invoice, error) {
	var (
		inv             invoice.Invoice
		status          string
		issuedAt, dueAt string
	)
	if err := row.Scan(&inv.ID, &inv.Number, &inv.QuoteID, &inv.ClientID, &inv.Amount, &status, &issuedAt, &dueAt); err != nil {
		return invoice.Invoice{}, err
	}
	inv.Status = invoice.Status(status)

	var err error
	if inv.IssuedAt, err = parseTime(issuedAt); err != nil {
		return invoice.Invoice{}, err
	}
	if inv.DueAt, err = parseTime(dueAt); err != nil {
		return invoice.Invoice{}, err
	}
	return inv, nil
}
