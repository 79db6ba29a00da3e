package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/lawhelper/internal/dbx"
	"github.com/dmitrijs2005/lawhelper/internal/logging"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/repomanager"
)

type MedicalService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ownership   *Ownership
	logger      logging.Logger
}

func NewMedicalService(db *sql.DB, m repomanager.RepositoryManager, o *Ownership, logger logging.Logger) *MedicalService {
	return &MedicalService{db: db, repomanager: m, ownership: o, logger: logger.With("component", "medical")}
}

func (s *MedicalService) List(ctx context.Context, accountID, caseID string) ([]*models.MedicalRecord, error) {
	if _, err := s.ownership.Case(ctx, accountID, caseID); err != nil {
		return nil, err
	}
	return s.repomanager.MedicalRecords(s.db).ListByCase(ctx, accountID, caseID)
}

// Import attaches records to the case in one transaction: either every row
// is stored or none is.
func (s *MedicalService) Import(ctx context.Context, accountID, caseID string, records []*models.MedicalRecord) (int, error) {
	if _, err := s.ownership.Case(ctx, accountID, caseID); err != nil {
		return 0, err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.MedicalRecords(tx)
		for i, r := range records {
			r.AccountID = accountID
			r.CaseID = caseID
			if _, err := repo.Create(ctx, r); err != nil {
				return fmt.Errorf("record %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import medical records: %w", err)
	}

	s.logger.Info(ctx, "medical records imported", "case_id", caseID, "count", len(records))
	return len(records), nil
}
