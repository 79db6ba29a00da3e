// Package history keeps the append-only log of AI tool calls per account.
package history

import (
	"context"

	"github.com/dmitrijs2005/lawhelper/internal/server/models"
)

type Repository interface {
	Add(ctx context.Context, e *models.HistoryEntry) error
	ListRecent(ctx context.Context, accountID string, limit int) ([]*models.HistoryEntry, error)
}
