package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/dmitrijs2005/lawhelper/internal/server/services"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	account, session, err := s.deps.Accounts.Register(r.Context(), in)
	if errors.Is(err, common.ErrAlreadyExists) {
		err = common.NewFieldError("email", "is already registered")
	}
	s.startSession(w, r, http.StatusCreated, account, session, err)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	account, session, err := s.deps.Accounts.Login(r.Context(), in)
	s.startSession(w, r, http.StatusOK, account, session, err)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, status int, account *models.Account, session *models.Session, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.setSessionCookie(w, session); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, status, account)
}

// handleLogout succeeds whether or not the caller still has a session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(common.SessionCookieName); err == nil && c.Value != "" {
		if sessionID, err := s.deps.Sessions.Decode(c.Value); err == nil {
			if err := s.deps.Accounts.Logout(r.Context(), sessionID); err != nil {
				s.writeError(w, r, err)
				return
			}
		}
	}

	s.clearSessionCookie(w)
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, accountFrom(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health(r.Context()); err != nil {
			s.logger.Error(r.Context(), "health check failed", "error", err)
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
