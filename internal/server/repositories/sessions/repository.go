// Package sessions is the server-side session store. Rows expire by
// expires_at, so every server instance sees the same sessions.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lawhelper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
