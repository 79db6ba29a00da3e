// Package cases stores legal matters. Every query is scoped to the owning
// account, so a foreign id behaves exactly like a missing one.
package cases

import (
	"context"

	"github.com/dmitrijs2005/lawhelper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Case) (*models.Case, error)
	Get(ctx context.Context, accountID, id string) (*models.Case, error)
	List(ctx context.Context, accountID string) ([]*models.Case, error)
	Update(ctx context.Context, c *models.Case) (*models.Case, error)
	Delete(ctx context.Context, accountID, id string) error
}
