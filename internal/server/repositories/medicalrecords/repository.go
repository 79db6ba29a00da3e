// Package medicalrecords stores treatment and billing lines attached to a case.
package medicalrecords

import (
	"context"

	"github.com/dmitrijs2005/lawhelper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, r *models.MedicalRecord) (*models.MedicalRecord, error)
	ListByCase(ctx context.Context, accountID, caseID string) ([]*models.MedicalRecord, error)
}
