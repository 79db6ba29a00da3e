// Package admin implements the operator CLI: schema migrations, account
// seeding, medical record import and session cleanup.
package admin

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/lawhelper/internal/dbx"
	"github.com/dmitrijs2005/lawhelper/internal/logging"
	"github.com/dmitrijs2005/lawhelper/internal/server/config"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lawhelper/internal/server/services"
)

// Backend is what the commands need from the database.
type Backend interface {
	Migrate(ctx context.Context) error
	CreateAccount(ctx context.Context, in services.RegisterInput) (*models.Account, error)
	ImportMedical(ctx context.Context, accountID, caseID string, records []*models.MedicalRecord) (int, error)
	PurgeSessions(ctx context.Context) (int64, error)
	Close() error
}

// Opener connects a Backend for one command run.
type Opener func(ctx context.Context, cfg *config.Config, logger logging.Logger) (Backend, error)

type postgresBackend struct {
	db       *sql.DB
	rm       repomanager.RepositoryManager
	accounts *services.AccountService
	medical  *services.MedicalService
}

// OpenPostgres is the Opener used by cmd/admin.
func OpenPostgres(ctx context.Context, cfg *config.Config, logger logging.Logger) (Backend, error) {
	db, err := dbx.Open(ctx, dbx.PostgresDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	rm := repomanager.NewPostgresRepositoryManager()
	return &postgresBackend{
		db:       db,
		rm:       rm,
		accounts: services.NewAccountService(db, rm, cfg, logger),
		medical:  services.NewMedicalService(db, rm, services.NewOwnership(db, rm), logger),
	}, nil
}

func (b *postgresBackend) Migrate(ctx context.Context) error {
	return b.rm.RunMigrations(ctx, b.db)
}

// CreateAccount registers the account and drops the session that
// registration opens.
func (b *postgresBackend) CreateAccount(ctx context.Context, in services.RegisterInput) (*models.Account, error) {
	account, session, err := b.accounts.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := b.accounts.Logout(ctx, session.ID); err != nil {
		return nil, err
	}
	return account, nil
}

func (b *postgresBackend) ImportMedical(ctx context.Context, accountID, caseID string, records []*models.MedicalRecord) (int, error) {
	return b.medical.Import(ctx, accountID, caseID, records)
}

func (b *postgresBackend) PurgeSessions(ctx context.Context) (int64, error) {
	return b.accounts.PurgeExpiredSessions(ctx)
}

func (b *postgresBackend) Close() error {
	return b.db.Close()
}
