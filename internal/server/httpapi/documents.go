package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// sourceURLTTL mirrors the presign expiry of the blob store, in seconds.
const sourceURLTTL = 15 * 60

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.deps.Documents.List(r.Context(), accountFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []*models.SavedDocument{}
	}
	s.writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Documents.Get(r.Context(), accountFrom(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Documents.Delete(r.Context(), accountFrom(r.Context()).ID, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDocumentSource(w http.ResponseWriter, r *http.Request) {
	url, err := s.deps.Documents.SourceURL(r.Context(), accountFrom(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"url": url, "expiresIn": sourceURLTTL})
}
