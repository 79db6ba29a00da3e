package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxAmount is the exclusive upper bound of a NUMERIC(12,2) money column.
var MaxAmount = decimal.New(1, 10)

type MedicalRecord struct {
	ID             string          `json:"id"`
	AccountID      string          `json:"-"`
	CaseID         string          `json:"caseId"`
	RecordType     string          `json:"recordType"`
	ProviderName   string          `json:"providerName"`
	ServiceDate    *time.Time      `json:"serviceDate,omitempty"`
	DiagnosisCodes []string        `json:"diagnosisCodes"`
	ProcedureCodes []string        `json:"procedureCodes"`
	Treatment      string          `json:"treatment"`
	Medications    []string        `json:"medications"`
	ChargedAmount  decimal.Decimal `json:"chargedAmount"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	Notes          string          `json:"notes"`
	RawText        string          `json:"-"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
