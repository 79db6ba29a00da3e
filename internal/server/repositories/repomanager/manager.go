// Package repomanager vends repositories bound to a *sql.DB or *sql.Tx and
// applies the embedded schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/lawhelper/internal/dbx"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/cases"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/documents"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/history"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/medicalrecords"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/sessions"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	History(db dbx.DBTX) history.Repository
	Cases(db dbx.DBTX) cases.Repository
	Documents(db dbx.DBTX) documents.Repository
	MedicalRecords(db dbx.DBTX) medicalrecords.Repository
}
