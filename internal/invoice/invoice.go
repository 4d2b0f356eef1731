// Package invoice issues invoices for approved quotes.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/atelier/internal/numbering"
	"github.com/Simplici0/atelier/internal/quote"
)

const (
	numberPrefix = "INV"
	// DefaultTermsDays is the payment window when none is configured.
	DefaultTermsDays = 30
)

// Status of an invoice.
type Status string

const (
	StatusIssued Status = "issued"
	StatusPaid   Status = "paid"
	StatusVoid   Status = "void"
)

// ErrNotApproved is returned when invoicing a quote that is not approved.
var ErrNotApproved = errors.New("only approved quotes can be invoiced")

// Invoice bills the final price of a quote.
type Invoice struct {
	ID       string    `json:"id"`
	Number   string    `json:"number"`
	QuoteID  string    `json:"quoteId"`
	ClientID string    `json:"clientId"`
	Amount   float64   `json:"amount"`
	Status   Status    `json:"status"`
	IssuedAt time.Time `json:"issuedAt"`
	DueAt    time.Time `json:"dueAt"`
}

// Issue builds the invoice for q. The amount is the quote's final price,
// which includes any manual override.
func Issue(q quote.Quote, sequence int, now time.Time, termsDays int) (Invoice, error) {
	if q.Status != quote.StatusApproved {
		return Invoice{}, fmt.Errorf("%w (quote %s is %s)", ErrNotApproved, q.Number, q.Status)
	}
	if termsDays <= 0 {
		termsDays = DefaultTermsDays
	}
	return Invoice{
		ID:       uuid.NewString(),
		Number:   numbering.Format(numberPrefix, numbering.FiscalYear(now), sequence),
		QuoteID:  q.ID,
		ClientID: q.ClientID,
		Amount:   q.Calculations.TotalPrice,
		Status:   StatusIssued,
		IssuedAt: now,
		DueAt:    now.AddDate(0, 0, termsDays),
	}, nil
}

// Repository persists invoices.
type Repository interface {
	CreateInvoice(ctx context.Context, inv Invoice) error
	CountInvoicesWithPrefix(ctx context.Context, prefix string) (int, error)
}

// QuoteSource loads quotes and moves them through the status flow.
type QuoteSource interface {
	GetQuote(ctx context.Context, id string) (quote.Quote, error)
	Transition(ctx context.Context, id, event string) (quote.Quote, error)
}

// Service issues invoices and marks their quotes invoiced.
type Service struct {
	repo      Repository
	quotes    QuoteSource
	termsDays int
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, quotes QuoteSource, termsDays int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		quotes:    quotes,
		termsDays: termsDays,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// IssueForQuote invoices an approved quote.
func (s *Service) IssueForQuote(ctx context.Context, quoteID string) (Invoice, error) {
	q, err := s.quotes.GetQuote(ctx, quoteID)
	if err != nil {
		return Invoice{}, err
	}

	now := s.now()
	count, err := s.repo.CountInvoicesWithPrefix(ctx, numbering.Prefix(numberPrefix, numbering.FiscalYear(now)))
	if err != nil {
		return Invoice{}, fmt.Errorf("count invoices for numbering: %w", err)
	}

	inv, err := Issue(q, count+1, now, s.termsDays)
	if err != nil {
		return Invoice{}, err
	}
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	if _, err := s.quotes.Transition(ctx, quoteID, quote.EventInvoice); err != nil {
		return Invoice{}, fmt.Errorf("mark quote invoiced: %w", err)
	}

	s.logger.Info("invoice issued",
		slog.String("invoice", inv.Number),
		slog.String("quote_id", q.ID),
		slog.Float64("amount", inv.Amount),
	)
	return inv, nil
}
