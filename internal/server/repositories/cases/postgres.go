package cases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/dmitrijs2005/lawhelper/internal/dbx"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
)

const columns = `id, account_id, case_name, case_number, client_name, case_type, status,
		 description, jurisdiction, practice_area, attorney, opposing_party,
		 estimated_value_low, estimated_value_high, key_deadlines,
		 opened_at, closed_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Case) (*models.Case, error) {
	query :=
		`INSERT INTO cases (account_id, case_name, case_number, client_name, case_type, status,
		 description, jurisdiction, practice_area, attorney, opposing_party,
		 estimated_value_low, estimated_value_high, key_deadlines, closed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, opened_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		c.AccountID, c.CaseName, c.CaseNumber, c.ClientName, c.CaseType, c.Status,
		c.Description, c.Jurisdiction, c.PracticeArea, c.Attorney, c.OpposingParty,
		c.ValueLow, c.ValueHigh, jsonArg(c.KeyDeadlines), c.ClosedAt,
	).Scan(&c.ID, &c.OpenedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) Get(ctx context.Context, accountID, id string) (*models.Case, error) {
	query := `SELECT ` + columns + `
		 FROM cases
		 WHERE id = $1 AND account_id = $2`

	c, err := scanCase(r.db.QueryRowContext(ctx, query, id, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context, accountID string) ([]*models.Case, error) {
	query := `SELECT ` + columns + `
		 FROM cases
		 WHERE account_id = $1
		 ORDER BY opened_at DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// Update overwrites every editable column of the case owned by c.AccountID.
func (r *PostgresRepository) Update(ctx context.Context, c *models.Case) (*models.Case, error) {
	query :=
		`UPDATE cases SET case_name = $3, case_number = $4, client_name = $5, case_type = $6,
		 status = $7, description = $8, jurisdiction = $9, practice_area = $10, attorney = $11,
		 opposing_party = $12, estimated_value_low = $13, estimated_value_high = $14,
		 key_deadlines = $15, closed_at = $16, updated_at = now()
		 WHERE id = $1 AND account_id = $2
		 RETURNING opened_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.AccountID, c.CaseName, c.CaseNumber, c.ClientName, c.CaseType,
		c.Status, c.Description, c.Jurisdiction, c.PracticeArea, c.Attorney,
		c.OpposingParty, c.ValueLow, c.ValueHigh, jsonArg(c.KeyDeadlines), c.ClosedAt,
	).Scan(&c.OpenedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// Delete removes the case; its medical records cascade and saved documents
// are detached.
func (r *PostgresRepository) Delete(ctx context.Context, accountID, id string) error {
	query := `DELETE FROM cases WHERE id = $1 AND account_id = $2`

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

func scanCase(s dbx.Scanner) (*models.Case, error) {
	c := &models.Case{}
	var deadlines []byte
	err := s.Scan(
		&c.ID, &c.AccountID, &c.CaseName, &c.CaseNumber, &c.ClientName, &c.CaseType, &c.Status,
		&c.Description, &c.Jurisdiction, &c.PracticeArea, &c.Attorney, &c.OpposingParty,
		&c.ValueLow, &c.ValueHigh, &deadlines,
		&c.OpenedAt, &c.ClosedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.KeyDeadlines = deadlines
	return c, nil
}

func jsonArg(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
