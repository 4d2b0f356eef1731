package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Simplici0/atelier/internal/advisory"
	"github.com/Simplici0/atelier/internal/blob"
	"github.com/Simplici0/atelier/internal/invoice"
	"github.com/Simplici0/atelier/internal/metrics"
	"github.com/Simplici0/atelier/internal/pricing"
	"github.com/Simplici0/atelier/internal/quote"
	"github.com/Simplici0/atelier/internal/session"
	"github.com/Simplici0/atelier/internal/store"
	"github.com/Simplici0/atelier/internal/studio"
)

const maxBodyBytes = 1 << 20

type server struct {
	logger   *slog.Logger
	store    *store.Store
	state    *studio.State
	quotes   *quote.Service
	invoices *invoice.Service
	blobs    blob.Store
	advisor  *advisory.Advisor
	metrics  *metrics.Registry
	sessions *session.Signer
	now      func() time.Time
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/calculate", s.handleCalculate)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleSaveSettings)
		r.Get("/catalog", s.handleCatalog)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", s.handleListClients)
			r.Post("/", s.handleCreateClient)
			r.Get("/{id}", s.handleGetClient)
			r.Put("/{id}", s.handleUpdateClient)
			r.Delete("/{id}", s.handleDeleteClient)
			r.Get("/{id}/hydrated", s.handleHydratedClient)
		})

		r.Post("/properties", s.handleCreateProperty)
		r.Delete("/properties/{id}", s.handleDeleteProperty)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.handleListProjects)
			r.Post("/", s.handleCreateProject)
			r.Get("/{id}", s.handleGetProject)
			r.Put("/{id}", s.handleUpdateProject)
			r.Delete("/{id}", s.handleDeleteProject)
			r.Get("/{id}/hydrated", s.handleHydratedProject)
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", s.handleListQuotes)
			r.Post("/", s.handlePublishQuote)
			r.Get("/{id}", s.handleGetQuote)
			r.Put("/{id}", s.handleRepublishQuote)
			r.Post("/{id}/transitions", s.handleQuoteTransition)
			r.Get("/{id}/variance", s.handleQuoteVariance)
			r.Get("/{id}/text", s.handleQuoteText)
			r.Get("/{id}/export.xlsx", s.handleQuoteExcel)
			r.Get("/{id}/export.pdf", s.handleQuotePDF)
			r.Post("/{id}/archive", s.handleArchiveQuote)
			r.Get("/{id}/archive", s.handleListArchive)
			r.Post("/{id}/insights", s.handleRequestInsight)
			r.Get("/{id}/insights", s.handleGetInsight)
			r.Post("/{id}/invoice", s.handleIssueInvoice)
		})

		r.Get("/invoices", s.handleListInvoices)
	})

	return r
}

func (s *server) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.HTTPRequest(route, status)
		s.logger.Info("http request",
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid json body: trailing data")
	}
	return nil
}

// validationFields reports whether err is a user input problem and, if so,
// the per-field messages.
func validationFields(err error) (map[string]string, bool) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return pricing.FieldErrors(err), true
	case errors.Is(err, pricing.ErrAllocationSum):
		return map[string]string{"allocations": err.Error()}, true
	case errors.Is(err, quote.ErrInvalidOverride):
		return map[string]string{"finalPriceOverride": err.Error()}, true
	}
	return nil, false
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if fields, ok := validationFields(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: fields})
		return
	}
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, blob.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, quote.ErrInvalidTransition), errors.Is(err, invoice.ErrNotApproved), errors.Is(err, blob.ErrExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("err", err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}
