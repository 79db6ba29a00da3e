// Package documents stores generated and analyzed documents per account.
package documents

import (
	"context"

	"github.com/dmitrijs2005/lawhelper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, d *models.SavedDocument) (*models.SavedDocument, error)
	Get(ctx context.Context, accountID, id string) (*models.SavedDocument, error)
	List(ctx context.Context, accountID string) ([]*models.SavedDocument, error)
	Delete(ctx context.Context, accountID, id string) error
}
