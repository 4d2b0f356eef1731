package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/atelier/internal/crm"
	"github.com/Simplici0/atelier/internal/store"
)

func notFoundError(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, store.ErrNotFound)
}

func (s *server) handleListClients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Clients())
}

func (s *server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var c crm.Client
	if err := decodeJSON(w, r, &c); err != nil {
		writeBadRequest(w, err)
		return
	}
	created, err := s.state.CreateClient(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := s.state.Client(id)
	if !ok {
		s.writeError(w, r, notFoundError("client", id))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var c crm.Client
	if err := decodeJSON(w, r, &c); err != nil {
		writeBadRequest(w, err)
		return
	}
	c.ID = chi.URLParam(r, "id")
	updated, err := s.state.UpdateClient(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := s.state.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleHydratedClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, ok := s.state.HydratedClient(id)
	if !ok {
		s.writeError(w, r, notFoundError("client", id))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var p crm.Property
	if err := decodeJSON(w, r, &p); err != nil {
		writeBadRequest(w, err)
		return
	}
	created, err := s.state.CreateProperty(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := s.state.DeleteProperty(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Projects())
}

func (s *server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var p crm.Project
	if err := decodeJSON(w, r, &p); err != nil {
		writeBadRequest(w, err)
		return
	}
	created, err := s.state.CreateProject(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := s.state.Project(id)
	if !ok {
		s.writeError(w, r, notFoundError("project", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var p crm.Project
	if err := decodeJSON(w, r, &p); err != nil {
		writeBadRequest(w, err)
		return
	}
	p.ID = chi.URLParam(r, "id")
	updated, err := s.state.UpdateProject(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.state.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleHydratedProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, ok := s.state.HydratedProject(id)
	if !ok {
		s.writeError(w, r, notFoundError("project", id))
		return
	}
	writeJSON(w, http.StatusOK, view)
}
