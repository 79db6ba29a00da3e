package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Ownership loads records on behalf of an account. Foreign, missing and
// malformed ids all yield common.ErrorNotFound.
type Ownership struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewOwnership(db *sql.DB, m repomanager.RepositoryManager) *Ownership {
	return &Ownership{db: db, repomanager: m}
}

func (o *Ownership) Case(ctx context.Context, accountID, caseID string) (*models.Case, error) {
	if !validID(caseID) {
		return nil, common.ErrorNotFound
	}
	return o.repomanager.Cases(o.db).Get(ctx, accountID, caseID)
}

func (o *Ownership) Document(ctx context.Context, accountID, docID string) (*models.SavedDocument, error) {
	if !validID(docID) {
		return nil, common.ErrorNotFound
	}
	return o.repomanager.Documents(o.db).Get(ctx, accountID, docID)
}

func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
