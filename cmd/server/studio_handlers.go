package main

import (
	"net/http"

	"github.com/Simplici0/atelier/internal/pricing"
	"github.com/Simplici0/atelier/internal/quote"
	"github.com/Simplici0/atelier/internal/store"
)

type dashboard struct {
	Clients          int                  `json:"clients"`
	Projects         int                  `json:"projects"`
	QuotesByStatus   map[quote.Status]int `json:"quotesByStatus"`
	InvoicedRevenue  float64              `json:"invoicedRevenue"`
	InvoicedRevenueF string               `json:"invoicedRevenueFormatted"`
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.QuoteStatusCounts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	revenue, err := s.store.InvoicedRevenue(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard{
		Clients:          len(s.state.Clients()),
		Projects:         len(s.state.Projects()),
		QuotesByStatus:   counts,
		InvoicedRevenue:  revenue,
		InvoicedRevenueF: pricing.FormatKES(revenue),
	})
}

type settingsResponse struct {
	store.Settings
	DefaultForm pricing.FormValues `json:"defaultForm"`
}

func (s *server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.GetSettings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: st, DefaultForm: st.DefaultForm()})
}

func (s *server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var st store.Settings
	if err := decodeJSON(w, r, &st); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := st.DefaultForm().Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := st.Allocation.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.SaveSettings(r.Context(), st); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: st, DefaultForm: st.DefaultForm()})
}

func (s *server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListCatalog(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.store.ListInvoices(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}
