package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/dmitrijs2005/lawhelper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := s.deps.Cases.List(r.Context(), accountFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cases == nil {
		cases = []*models.Case{}
	}
	s.writeJSON(w, http.StatusOK, cases)
}

func (s *Server) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	var in services.CaseInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.deps.Cases.Create(r.Context(), accountFrom(r.Context()).ID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Cases.Get(r.Context(), accountFrom(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCase(w http.ResponseWriter, r *http.Request) {
	var in services.CaseInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.deps.Cases.Update(r.Context(), accountFrom(r.Context()).ID, chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCase(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Cases.Delete(r.Context(), accountFrom(r.Context()).ID, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
