package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Case struct {
	ID            string              `json:"id"`
	AccountID     string              `json:"-"`
	CaseName      string              `json:"caseName"`
	CaseNumber    *string             `json:"caseNumber,omitempty"`
	ClientName    string              `json:"clientName"`
	CaseType      CaseType            `json:"caseType"`
	Status        CaseStatus          `json:"status"`
	Description   string              `json:"description"`
	Jurisdiction  string              `json:"jurisdiction"`
	PracticeArea  string              `json:"practiceArea"`
	Attorney      string              `json:"attorney"`
	OpposingParty string              `json:"opposingParty"`
	ValueLow      decimal.NullDecimal `json:"estimatedValueLow"`
	ValueHigh     decimal.NullDecimal `json:"estimatedValueHigh"`
	KeyDeadlines  json.RawMessage     `json:"keyDeadlines,omitempty"`
	OpenedAt      time.Time           `json:"openedAt"`
	ClosedAt      *time.Time          `json:"closedAt,omitempty"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}
