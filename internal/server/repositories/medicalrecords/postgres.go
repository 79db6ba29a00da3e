package medicalrecords

import (
	"context"
	"encoding/json"
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

func (r *PostgresRepository) Create(ctx context.Context, m *models.MedicalRecord) (*models.MedicalRecord, error) {
	query :=
		`INSERT INTO medical_records (account_id, case_id, record_type, provider_name, service_date,
		 diagnosis_codes, procedure_codes, treatment, medications, charged_amount, paid_amount,
		 notes, raw_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`

	diagnosis, err := encodeList(m.DiagnosisCodes)
	if err != nil {
		return nil, err
	}
	procedures, err := encodeList(m.ProcedureCodes)
	if err != nil {
		return nil, err
	}
	medications, err := encodeList(m.Medications)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, query,
		m.AccountID, m.CaseID, m.RecordType, m.ProviderName, m.ServiceDate,
		diagnosis, procedures, m.Treatment, medications, m.ChargedAmount, m.PaidAmount,
		m.Notes, m.RawText,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// ListByCase returns the case's records ordered by service date.
func (r *PostgresRepository) ListByCase(ctx context.Context, accountID, caseID string) ([]*models.MedicalRecord, error) {
	query :=
		`SELECT id, account_id, case_id, record_type, provider_name, service_date,
		 diagnosis_codes, procedure_codes, treatment, medications, charged_amount, paid_amount,
		 notes, raw_text, created_at, updated_at
		 FROM medical_records
		 WHERE account_id = $1 AND case_id = $2
		 ORDER BY service_date NULLS LAST, created_at`

	rows, err := r.db.QueryContext(ctx, query, accountID, caseID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.MedicalRecord{}
	for rows.Next() {
		m := &models.MedicalRecord{}
		var diagnosis, procedures, medications []byte
		err := rows.Scan(&m.ID, &m.AccountID, &m.CaseID, &m.RecordType, &m.ProviderName, &m.ServiceDate,
			&diagnosis, &procedures, &m.Treatment, &medications, &m.ChargedAmount, &m.PaidAmount,
			&m.Notes, &m.RawText, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if m.DiagnosisCodes, err = decodeList(diagnosis); err != nil {
			return nil, err
		}
		if m.ProcedureCodes, err = decodeList(procedures); err != nil {
			return nil, err
		}
		if m.Medications, err = decodeList(medications); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(b []byte) ([]string, error) {
	out := []string{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return out, nil
}
