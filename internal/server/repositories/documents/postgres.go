package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/dmitrijs2005/lawhelper/internal/dbx"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
)

const columns = `id, account_id, case_id, title, document_type, content, file_format,
		 generated_by, ai_model, version, metadata, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, d *models.SavedDocument) (*models.SavedDocument, error) {
	query :=
		`INSERT INTO saved_documents (account_id, case_id, title, document_type, content,
		 file_format, generated_by, ai_model, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, version, created_at, updated_at`

	var metadata any
	if len(d.Metadata) > 0 {
		metadata = string(d.Metadata)
	}

	err := r.db.QueryRowContext(ctx, query,
		d.AccountID, d.CaseID, d.Title, d.DocumentType, d.Content,
		d.FileFormat, d.GeneratedBy, d.AIModel, metadata,
	).Scan(&d.ID, &d.Version, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) Get(ctx context.Context, accountID, id string) (*models.SavedDocument, error) {
	query := `SELECT ` + columns + `
		 FROM saved_documents
		 WHERE id = $1 AND account_id = $2`

	d, err := scanDocument(r.db.QueryRowContext(ctx, query, id, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) List(ctx context.Context, accountID string) ([]*models.SavedDocument, error) {
	query := `SELECT ` + columns + `
		 FROM saved_documents
		 WHERE account_id = $1
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.SavedDocument{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, accountID, id string) error {
	query := `DELETE FROM saved_documents WHERE id = $1 AND account_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, accountID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func scanDocument(s dbx.Scanner) (*models.SavedDocument, error) {
	d := &models.SavedDocument{}
	var metadata []byte
	err := s.Scan(&d.ID, &d.AccountID, &d.CaseID, &d.Title, &d.DocumentType, &d.Content,
		&d.FileFormat, &d.GeneratedBy, &d.AIModel, &d.Version, &metadata, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.Metadata = metadata
	return d, nil
}
