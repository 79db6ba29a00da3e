package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/lawhelper/internal/dbx"
	"github.com/dmitrijs2005/lawhelper/internal/server/migrations"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/cases"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/documents"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/history"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/medicalrecords"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/sessions"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager binds the PostgreSQL repositories to a pool or
// a transaction.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) History(db dbx.DBTX) history.Repository {
	return history.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Cases(db dbx.DBTX) cases.Repository {
	return cases.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Documents(db dbx.DBTX) documents.Repository {
	return documents.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) MedicalRecords(db dbx.DBTX) medicalrecords.Repository {
	return medicalrecords.NewPostgresRepository(db)
}

// migrateUp is replaced in tests.
var migrateUp = goose.UpContext

// RunMigrations applies every pending migration embedded in the binary.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dbx.PostgresDriver); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := migrateUp(ctx, db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
