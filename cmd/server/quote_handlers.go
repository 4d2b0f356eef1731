package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/atelier/internal/advisory"
	"github.com/Simplici0/atelier/internal/blob"
	"github.com/Simplici0/atelier/internal/export"
	"github.com/Simplici0/atelier/internal/pricing"
	"github.com/Simplici0/atelier/internal/quote"
)

// quoteRequest is the publish and re-publish body.
type quoteRequest struct {
	FormValues         pricing.FormValues  `json:"formValues"`
	Allocations        *pricing.Allocation `json:"allocations,omitempty"`
	FinalPriceOverride *float64            `json:"finalPriceOverride,omitempty"`
	Notes              string              `json:"notes,omitempty"`
}

func (req quoteRequest) input() quote.PublishInput {
	alloc := pricing.DefaultAllocation()
	if req.Allocations != nil {
		alloc = *req.Allocations
	}
	return quote.PublishInput{
		FormValues:  req.FormValues,
		Allocations: alloc,
		Override:    req.FinalPriceOverride,
		Notes:       req.Notes,
	}
}

type quoteListItem struct {
	ID         string       `json:"id"`
	Number     string       `json:"number"`
	ClientID   string       `json:"clientId"`
	ProjectID  string       `json:"projectId"`
	Status     quote.Status `json:"status"`
	TotalPrice float64      `json:"totalPrice"`
	Overridden bool         `json:"overridden"`
	CreatedAt  time.Time    `json:"createdAt"`
}

type quoteDetail struct {
	quote.Quote
	Variance    pricing.VarianceReport  `json:"variance"`
	ProfitSplit pricing.AllocationSplit `json:"profitSplit"`
	Formatted   string                  `json:"formattedTotal"`
}

func newQuoteDetail(q quote.Quote) quoteDetail {
	return quoteDetail{
		Quote:       q,
		Variance:    q.Variance(),
		ProfitSplit: q.ProfitSplit(),
		Formatted:   pricing.FormatKES(q.Calculations.TotalPrice),
	}
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var fv pricing.FormValues
	if err := decodeJSON(w, r, &fv); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := fv.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.CalculationRun()
	writeJSON(w, http.StatusOK, pricing.CalculateWith(s.quotes.Options(), fv))
}

func (s *server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.store.ListQuotes(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items := make([]quoteListItem, 0, len(quotes))
	for _, q := range quotes {
		items = append(items, quoteListItem{
			ID:         q.ID,
			Number:     q.Number,
			ClientID:   q.ClientID,
			ProjectID:  q.ProjectID,
			Status:     q.Status,
			TotalPrice: q.Calculations.TotalPrice,
			Overridden: q.Overridden(),
			CreatedAt:  q.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handlePublishQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	q, err := s.quotes.Publish(r.Context(), req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newQuoteDetail(q))
}

func (s *server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuoteDetail(q))
}

func (s *server) handleRepublishQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	q, err := s.quotes.Republish(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuoteDetail(q))
}

func (s *server) handleQuoteTransition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Event string `json:"event"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if req.Event == "" {
		writeBadRequest(w, errors.New("event is required"))
		return
	}
	q, err := s.quotes.Transition(r.Context(), chi.URLParam(r, "id"), req.Event)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("quote transition requested",
		slog.String("quote_id", q.ID),
		slog.String("event", req.Event),
		slog.String("by", subjectFrom(r.Context())),
	)
	writeJSON(w, http.StatusOK, newQuoteDetail(q))
}

func (s *server) handleQuoteVariance(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q.Variance())
}

// quoteDocument loads quote id and builds its render-ready document.
func (s *server) quoteDocument(r *http.Request) (quote.Quote, export.QuoteDocument, error) {
	q, err := s.quotes.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return quote.Quote{}, export.QuoteDocument{}, err
	}
	var clientName, projectName string
	if c, ok := s.state.Client(q.ClientID); ok {
		clientName = c.Name
	}
	if p, ok := s.state.Project(q.ProjectID); ok {
		projectName = p.Name
	}
	return q, export.NewQuoteDocument(q, clientName, projectName), nil
}

func (s *server) serveExport(w http.ResponseWriter, r *http.Request, format export.Format, attachment bool) {
	_, doc, err := s.quoteDocument(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := export.Render(doc, format)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("render %s: %w", format, err))
		return
	}
	s.metrics.ExportRendered(string(format))

	w.Header().Set("Content-Type", out.ContentType)
	if attachment {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename(doc)))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, export.FormatText, false)
}

func (s *server) handleQuoteExcel(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, export.FormatXLSX, true)
}

func (s *server) handleQuotePDF(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, export.FormatPDF, true)
}

func (s *server) handleArchiveQuote(w http.ResponseWriter, r *http.Request) {
	format := export.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatPDF
	}
	q, doc, err := s.quoteDocument(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := export.Render(doc, format)
	if errors.Is(err, export.ErrUnknownFormat) {
		writeBadRequest(w, err)
		return
	}
	if err != nil {
		s.writeError(w, r, fmt.Errorf("render %s: %w", format, err))
		return
	}
	s.metrics.ExportRendered(string(format))

	key := blob.QuoteArchiveKey(q.ID, out.Ext, s.clock())
	info, err := s.blobs.Put(r.Context(), key, bytes.NewReader(out.Body), blob.PutOptions{
		ContentType: out.ContentType,
		Metadata: map[string]string{
			"quote-number": q.Number,
			"quote-status": string(q.Status),
		},
	})
	if err != nil {
		s.writeError(w, r, fmt.Errorf("archive quote: %w", err))
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (s *server) handleListArchive(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items, err := s.blobs.List(r.Context(), "quotes/"+q.ID+"/")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("list archive: %w", err))
		return
	}
	if items == nil {
		items = []blob.Info{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleRequestInsight(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ins := s.advisor.Request(q.ID, advisory.InputsFrom(q.FormValues, q.Calculations))
	writeJSON(w, http.StatusAccepted, ins)
}

func (s *server) handleGetInsight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ins, ok := s.advisor.Insight(id)
	if !ok {
		s.writeError(w, r, notFoundError("insight for quote", id))
		return
	}
	writeJSON(w, http.StatusOK, ins)
}

func (s *server) handleIssueInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.invoices.IssueForQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.InvoiceIssued()
	s.logger.Info("invoice issued via api",
		slog.String("invoice", inv.Number),
		slog.String("by", subjectFrom(r.Context())),
	)
	writeJSON(w, http.StatusCreated, inv)
}
