package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/lawhelper/internal/server/export"
)

type exportRequest struct {
	Format  string          `json:"format"`
	Content export.Document `json:"content"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := export.Render(&req.Content, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(req.Content.Title, out.Extension)))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Bytes)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Bytes); err != nil {
		s.logger.Warn(r.Context(), "failed to write export", "error", err)
	}
}
