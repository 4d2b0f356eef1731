package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/atelier/internal/quote"
)

const quoteColumns = `id, number, client_id, project_id, status, form_values, allocations,
	calculations, suggested_calculations, final_price_override, notes, created_at, updated_at`

// quoteBlobs is the JSON encoding of a quote's snapshot columns.
type quoteBlobs struct {
	formValues, allocations, calculations, suggested string
}

func encodeQuote(q quote.Quote) (quoteBlobs, error) {
	var (
		b   quoteBlobs
		err error
	)
	if b.formValues, err = marshalText(q.FormValues); err != nil {
		return b, fmt.Errorf("marshal form values: %w", err)
	}
	if b.allocations, err = marshalText(q.Allocations); err != nil {
		return b, fmt.Errorf("marshal allocations: %w", err)
	}
	if b.calculations, err = marshalText(q.Calculations); err != nil {
		return b, fmt.Errorf("marshal calculations: %w", err)
	}
	if b.suggested, err = marshalText(q.SuggestedCalculations); err != nil {
		return b, fmt.Errorf("marshal suggested calculations: %w", err)
	}
	return b, nil
}

func marshalText(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// CreateQuote stores a published snapshot.
func (s *Store) CreateQuote(ctx context.Context, q quote.Quote) error {
	b, err := encodeQuote(q)
	if err != nil {
		return err
	}
	if _, err := s.exec(ctx, `
		INSERT INTO quotes (`+quoteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.Number, q.ClientID, q.ProjectID, string(q.Status),
		b.formValues, b.allocations, b.calculations, b.suggested,
		nullFloat(q.FinalPriceOverride), q.Notes, formatTime(q.CreatedAt), formatTime(q.UpdatedAt)); err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// UpdateQuote overwrites every mutable column of a quote. The number and
// creation time never change.
func (s *Store) UpdateQuote(ctx context.Context, q quote.Quote) error {
	b, err := encodeQuote(q)
	if err != nil {
		return err
	}
	res, err := s.exec(ctx, `
		UPDATE quotes
		SET client_id = ?, project_id = ?, status = ?, form_values = ?, allocations = ?,
			calculations = ?, suggested_calculations = ?, final_price_override = ?,
			notes = ?, updated_at = ?
		WHERE id = ?
	`, q.ClientID, q.ProjectID, string(q.Status), b.formValues, b.allocations,
		b.calculations, b.suggested, nullFloat(q.FinalPriceOverride),
		q.Notes, formatTime(q.UpdatedAt), q.ID)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	return mustAffect(res, "quote", q.ID)
}

// GetQuote reads a stored snapshot back without recalculating it.
func (s *Store) GetQuote(ctx context.Context, id string) (quote.Quote, error) {
	q, err := scanQuote(s.queryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return quote.Quote{}, fmt.Errorf("quote %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return quote.Quote{}, fmt.Errorf("get quote: %w", err)
	}
	return q, nil
}

// ListQuotes returns quotes newest first. A non-empty search matches the
// quote number or notes, case-insensitively.
func (s *Store) ListQuotes(ctx context.Context, search string) ([]quote.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes`
	var args []any
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query += ` WHERE LOWER(number) LIKE ? OR LOWER(notes) LIKE ?`
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY created_at DESC, number DESC`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := []quote.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return quotes, nil
}

// CountQuotesWithPrefix counts quote numbers starting with prefix.
func (s *Store) CountQuotesWithPrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM quotes WHERE number LIKE ?`, prefix+"%").Scan(&n); err != nil {
		return 0, fmt.Errorf("count quotes: %w", err)
	}
	return n, nil
}

// QuoteStatusCounts returns the number of quotes in each status.
func (s *Store) QuoteStatusCounts(ctx context.Context) (map[quote.Status]int, error) {
	rows, err := s.query(ctx, `SELECT status, COUNT(*) FROM quotes GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("query quote status counts: %w", err)
	}
	defer rows.Close()

	counts := map[quote.Status]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan quote status count: %w", err)
		}
		counts[quote.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote status counts: %w", err)
	}
	return counts, nil
}

func scanQuote(row scanner) (quote.Quote, error) {
	var (
		q                                                   quote.Quote
		status                                              string
		formValues, allocations, calculations, suggestedRaw string
		override                                            sql.NullFloat64
		createdAt, updatedAt                                string
	)
	if err := row.Scan(&q.ID, &q.Number, &q.ClientID, &q.ProjectID, &status,
		&formValues, &allocations, &calculations, &suggestedRaw,
		&override, &q.Notes, &createdAt, &updatedAt); err != nil {
		return quote.Quote{}, err
	}
	q.Status = quote.Status(status)

	if err := json.Unmarshal([]byte(formValues), &q.FormValues); err != nil {
		return quote.Quote{}, fmt.Errorf("decode form values for quote %s: %w", q.ID, err)
	}
	if err := json.Unmarshal([]byte(allocations), &q.Allocations); err != nil {
		return quote.Quote{}, fmt.Errorf("decode allocations for quote %s: %w", q.ID, err)
	}
	if err := json.Unmarshal([]byte(calculations), &q.Calculations); err != nil {
		return quote.Quote{}, fmt.Errorf("decode calculations for quote %s: %w", q.ID, err)
	}
	if err := json.Unmarshal([]byte(suggestedRaw), &q.SuggestedCalculations); err != nil {
		return quote.Quote{}, fmt.Errorf("decode suggested calculations for quote %s: %w", q.ID, err)
	}
	if override.Valid {
		v := override.Float64
		q.FinalPriceOverride = &v
	}

	var err error
	if q.CreatedAt, err = parseTime(createdAt); err != nil {
		return quote.Quote{}, err
	}
	if q.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return quote.Quote{}, err
	}
	return q, nil
}
