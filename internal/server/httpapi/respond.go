package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/dmitrijs2005/lawhelper/internal/server/ai"
	"github.com/dmitrijs2005/lawhelper/internal/server/export"
	"github.com/dmitrijs2005/lawhelper/internal/server/extract"
	"github.com/dmitrijs2005/lawhelper/internal/server/medimport"
	"github.com/dmitrijs2005/lawhelper/internal/server/upload"
)

const maxJSONBody = 10 << 20

type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(context.Background(), "failed to write response", "error", err)
	}
}

// writeError maps err onto a status code. Server-side failures are logged
// and answered with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, body)
}

func classify(err error) (int, errorBody) {
	var fe *common.FieldError
	var rowErr *medimport.RowError
	var maxBytes *http.MaxBytesError

	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest, errorBody{Message: fe.Error(), Field: fe.Field}
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, errorBody{Message: err.Error()}
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusBadRequest, errorBody{Message: "already exists"}
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, errorBody{Message: "authentication required"}
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, errorBody{Message: "not found"}
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, errorBody{Message: err.Error()}
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, errorBody{Message: upload.ErrTooLarge.Error()}
	case errors.Is(err, upload.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, errorBody{Message: err.Error()}
	case errors.Is(err, upload.ErrNoFile),
		errors.Is(err, upload.ErrMalformed),
		errors.Is(err, extract.ErrEmptyText),
		errors.Is(err, extract.ErrUnsupportedFormat),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, medimport.ErrUnsupportedFile),
		errors.Is(err, medimport.ErrNoRows),
		errors.Is(err, medimport.ErrMissingColumn),
		errors.As(err, &rowErr):
		return http.StatusBadRequest, errorBody{Message: err.Error()}
	case errors.Is(err, ai.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorBody{Message: "the AI service did not answer in time"}
	default:
		return http.StatusInternalServerError, errorBody{Message: "internal server error"}
	}
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return common.NewFieldError("", "request body is empty")
		}
		return common.NewFieldError("", "request body is not valid JSON")
	}
	return nil
}
