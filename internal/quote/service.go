package quote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Simplici0/atelier/internal/numbering"
	"github.com/Simplici0/atelier/internal/pricing"
)

const numberPrefix = "Q"

// Repository persists quotes.
type Repository interface {
	CreateQuote(ctx context.Context, q Quote) error
	UpdateQuote(ctx context.Context, q Quote) error
	GetQuote(ctx context.Context, id string) (Quote, error)
	CountQuotesWithPrefix(ctx context.Context, prefix string) (int, error)
}

// Recorder receives publish and transition events for metrics.
type Recorder interface {
	QuotePublished(overridden bool)
	QuoteTransitioned(event string)
}

type nopRecorder struct{}

func (nopRecorder) QuotePublished(bool)      {}
func (nopRecorder) QuoteTransitioned(string) {}

// Service runs the publish, re-publish and status workflows against a
// Repository.
type Service struct {
	repo     Repository
	opts     pricing.Options
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
}

// NewService wires a Service. A nil recorder disables metrics.
func NewService(repo Repository, opts pricing.Options, logger *slog.Logger, recorder Recorder) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		repo:     repo,
		opts:     opts,
		logger:   logger,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Options returns the engine options quotes are calculated with.
func (s *Service) Options() pricing.Options { return s.opts }

// GetQuote reads a stored quote.
func (s *Service) GetQuote(ctx context.Context, id string) (Quote, error) {
	return s.repo.GetQuote(ctx, id)
}

// Publish stores a new quote built from in.
func (s *Service) Publish(ctx context.Context, in PublishInput) (Quote, error) {
	now := s.now()
	number, err := s.nextNumber(ctx, now)
	if err != nil {
		return Quote{}, err
	}

	q, err := Publish(s.opts, in, number, now)
	if err != nil {
		return Quote{}, err
	}
	if err := s.repo.CreateQuote(ctx, q); err != nil {
		return Quote{}, fmt.Errorf("create quote: %w", err)
	}

	s.recorder.QuotePublished(q.Overridden())
	s.logger.Info("quote published",
		slog.String("quote_id", q.ID),
		slog.String("number", q.Number),
		slog.Float64("suggested_total", q.SuggestedCalculations.TotalPrice),
		slog.Float64("final_total", q.Calculations.TotalPrice),
	)
	return q, nil
}

// Republish overwrites the snapshot of quote id and resets it to draft.
func (s *Service) Republish(ctx context.Context, id string, in PublishInput) (Quote, error) {
	existing, err := s.repo.GetQuote(ctx, id)
	if err != nil {
		return Quote{}, err
	}

	q, err := Republish(s.opts, existing, in, s.now())
	if err != nil {
		return Quote{}, err
	}
	if err := s.repo.UpdateQuote(ctx, q); err != nil {
		return Quote{}, fmt.Errorf("update quote: %w", err)
	}

	s.recorder.QuotePublished(q.Overridden())
	s.logger.Info("quote republished",
		slog.String("quote_id", q.ID),
		slog.String("previous_status", string(existing.Status)),
		slog.Float64("final_total", q.Calculations.TotalPrice),
	)
	return q, nil
}

// PublishDraft publishes d as a new quote, or re-publishes the quote it was
// loaded from. On failure the draft is left exactly as it was.
func (s *Service) PublishDraft(ctx context.Context, d *Draft, override *float64, notes string) (Quote, error) {
	in := d.Input(override, notes)

	var (
		q   Quote
		err error
	)
	if d.QuoteID() == "" {
		q, err = s.Publish(ctx, in)
	} else {
		q, err = s.Republish(ctx, d.QuoteID(), in)
	}
	if err != nil {
		return Quote{}, err
	}

	d.quoteID = q.ID
	return q, nil
}

// Transition moves quote id through the status machine.
func (s *Service) Transition(ctx context.Context, id, event string) (Quote, error) {
	q, err := s.repo.GetQuote(ctx, id)
	if err != nil {
		return Quote{}, err
	}

	next, err := NextStatus(q.Status, q.ID, event)
	if err != nil {
		return Quote{}, err
	}

	previous := q.Status
	q.Status = next
	q.UpdatedAt = s.now()
	if err := s.repo.UpdateQuote(ctx, q); err != nil {
		return Quote{}, fmt.Errorf("update quote status: %w", err)
	}

	s.recorder.QuoteTransitioned(event)
	s.logger.Info("quote status changed",
		slog.String("quote_id", q.ID),
		slog.String("from", string(previous)),
		slog.String("to", string(next)),
	)
	return q, nil
}

func (s *Service) nextNumber(ctx context.Context, now time.Time) (string, error) {
	fy := numbering.FiscalYear(now)
	count, err := s.repo.CountQuotesWithPrefix(ctx, numbering.Prefix(numberPrefix, fy))
	if err != nil {
		return "", fmt.Errorf("count quotes for numbering: %w", err)
	}
	return numbering.Format(numberPrefix, fy, count+1), nil
}
