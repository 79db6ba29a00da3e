// Package services contains the LawHelper business logic that sits between
// the HTTP routes and the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/dmitrijs2005/lawhelper/internal/cryptox"
	"github.com/dmitrijs2005/lawhelper/internal/dbx"
	"github.com/dmitrijs2005/lawhelper/internal/logging"
	"github.com/dmitrijs2005/lawhelper/internal/server/config"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/repomanager"
)

const minPasswordLength = 8

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *RegisterInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		return common.NewFieldError("name", "is required")
	}
	if in.Email == "" {
		return common.NewFieldError("email", "is required")
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return common.NewFieldError("email", "must be a valid email address")
	}
	if len(in.Password) < minPasswordLength {
		return common.NewFieldError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	return nil
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *LoginInput) Validate() error {
	if strings.TrimSpace(in.Email) == "" {
		return common.NewFieldError("email", "is required")
	}
	if in.Password == "" {
		return common.NewFieldError("password", "is required")
	}
	return nil
}

// AccountService registers accounts and manages their server-side sessions.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessionTTL  time.Duration
	logger      logging.Logger
	now         func() time.Time
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		sessionTTL:  cfg.SessionTTL,
		logger:      logger.With("component", "accounts"),
		now:         time.Now,
	}
}

// Register creates the account and logs it in. A taken email yields
// common.ErrAlreadyExists.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.Account, *models.Session, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	if _, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, in.Email); err == nil {
		return nil, nil, common.ErrAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, nil, fmt.Errorf("register: %w", err)
	}

	salt, hash := cryptox.HashPassword(in.Password)
	account := &models.Account{Name: in.Name, Email: in.Email, PasswordHash: hash, PasswordSalt: salt}

	var session *models.Session
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if account, err = s.repomanager.Accounts(tx).Create(ctx, account); err != nil {
			return err
		}
		session, err = s.openSession(ctx, tx, account.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, nil, common.ErrAlreadyExists
		}
		return nil, nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID)
	return account, session, nil
}

// Login checks the credentials and opens a new session. Unknown emails and
// wrong passwords are indistinguishable to the caller and in the logs.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*models.Account, *models.Session, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, nil, fmt.Errorf("login: %w", err)
		}
		cryptox.BurnPasswordCheck(in.Password)
		s.logger.Warn(ctx, "login rejected")
		return nil, nil, common.ErrorUnauthorized
	}

	if !cryptox.VerifyPassword(in.Password, account.PasswordSalt, account.PasswordHash) {
		s.logger.Warn(ctx, "login rejected")
		return nil, nil, common.ErrorUnauthorized
	}

	session, err := s.openSession(ctx, s.db, account.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	return account, session, nil
}

// Resolve returns the account behind a live session, or
// common.ErrorUnauthorized.
func (s *AccountService) Resolve(ctx context.Context, sessionID string) (*models.Account, error) {
	session, err := s.repomanager.Sessions(s.db).Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	if session.Expired(s.now()) {
		if err := s.repomanager.Sessions(s.db).Delete(ctx, session.ID); err != nil {
			s.logger.Warn(ctx, "failed to drop expired session", "error", err)
		}
		return nil, common.ErrorUnauthorized
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	return account, nil
}

// Logout destroys the session. It is idempotent.
func (s *AccountService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.repomanager.Sessions(s.db).Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AccountService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
}

func (s *AccountService) openSession(ctx context.Context, db dbx.DBTX, accountID string) (*models.Session, error) {
	id, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, err
	}
	session := &models.Session{ID: id, AccountID: accountID, ExpiresAt: s.now().Add(s.sessionTTL)}
	if err := s.repomanager.Sessions(db).Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
