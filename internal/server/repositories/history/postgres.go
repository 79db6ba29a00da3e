package history

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/lawhelper/internal/dbx"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, e *models.HistoryEntry) error {
	query :=
		`INSERT INTO search_history (account_id, type, query, results)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	var results any
	if len(e.Result) > 0 {
		results = string(e.Result)
	}

	err := r.db.QueryRowContext(ctx, query, e.AccountID, e.Type, e.Query, results).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListRecent returns at most limit entries, newest first.
func (r *PostgresRepository) ListRecent(ctx context.Context, accountID string, limit int) ([]*models.HistoryEntry, error) {
	query :=
		`SELECT id, account_id, type, query, results, created_at
		 FROM search_history
		 WHERE account_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]*models.HistoryEntry, 0, limit)
	for rows.Next() {
		e := &models.HistoryEntry{}
		var results []byte
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Type, &e.Query, &results, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.Result = results
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}
