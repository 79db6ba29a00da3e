package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/lawhelper/internal/server/medimport"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/dmitrijs2005/lawhelper/internal/server/upload"
	"github.com/go-chi/chi/v5"
)

const (
	importMemory = 8 << 20
	// importFraming covers boundaries and part headers around the file.
	importFraming = 64 << 10
)

func (s *Server) handleListMedical(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Medical.List(r.Context(), accountFrom(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []*models.MedicalRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

// handleImportMedical parses an uploaded billing sheet and stores every row
// on the case, or none of them.
func (s *Server) handleImportMedical(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.UploadMaxBytes
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+importFraming)
	}
	if err := r.ParseMultipartForm(importMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.writeError(w, r, err)
			return
		}
		s.writeError(w, r, fmt.Errorf("%w: %v", upload.ErrMalformed, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, upload.ErrNoFile)
		return
	}
	defer file.Close()
	if limit > 0 && header.Size > limit {
		s.writeError(w, r, fmt.Errorf("%w: limit is %d bytes", upload.ErrTooLarge, limit))
		return
	}

	records, err := medimport.Parse(file, header.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	n, err := s.deps.Medical.Import(r.Context(), accountFrom(r.Context()).ID, chi.URLParam(r, "id"), records)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]int{"imported": n})
}
