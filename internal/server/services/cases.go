package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/dmitrijs2005/lawhelper/internal/logging"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
)

// CaseInput is the request body for creating or replacing a case.
type CaseInput struct {
	CaseName           string              `json:"caseName"`
	CaseNumber         *string             `json:"caseNumber"`
	ClientName         string              `json:"clientName"`
	CaseType           string              `json:"caseType"`
	Status             string              `json:"status"`
	Description        string              `json:"description"`
	Jurisdiction       string              `json:"jurisdiction"`
	PracticeArea       string              `json:"practiceArea"`
	Attorney           string              `json:"attorney"`
	OpposingParty      string              `json:"opposingParty"`
	EstimatedValueLow  decimal.NullDecimal `json:"estimatedValueLow"`
	EstimatedValueHigh decimal.NullDecimal `json:"estimatedValueHigh"`
	KeyDeadlines       json.RawMessage     `json:"keyDeadlines"`
}

// apply validates the input and copies it onto c.
func (in *CaseInput) apply(c *models.Case) error {
	name := strings.TrimSpace(in.CaseName)
	if name == "" {
		return common.NewFieldError("caseName", "is required")
	}
	client := strings.TrimSpace(in.ClientName)
	if client == "" {
		return common.NewFieldError("clientName", "is required")
	}
	caseType, err := models.ParseCaseType(in.CaseType)
	if err != nil {
		return err
	}
	status, err := models.ParseCaseStatus(in.Status)
	if err != nil {
		return err
	}
	for _, v := range []struct {
		field string
		val   decimal.NullDecimal
	}{{"estimatedValueLow", in.EstimatedValueLow}, {"estimatedValueHigh", in.EstimatedValueHigh}} {
		if !v.val.Valid {
			continue
		}
		d := v.val.Decimal
		switch {
		case d.IsNegative():
			return common.NewFieldError(v.field, "must not be negative")
		case d.GreaterThanOrEqual(models.MaxAmount):
			return common.NewFieldError(v.field, "must be less than "+models.MaxAmount.String())
		case !d.Equal(d.Truncate(2)):
			return common.NewFieldError(v.field, "must have at most two decimal places")
		}
	}
	if in.EstimatedValueLow.Valid && in.EstimatedValueHigh.Valid &&
		in.EstimatedValueLow.Decimal.GreaterThan(in.EstimatedValueHigh.Decimal) {
		return common.NewFieldError("estimatedValueHigh", "must not be less than estimatedValueLow")
	}

	deadlines := in.KeyDeadlines
	if string(deadlines) == "null" {
		deadlines = nil
	}
	if len(deadlines) > 0 && !json.Valid(deadlines) {
		return common.NewFieldError("keyDeadlines", "must be valid JSON")
	}

	var number *string
	if in.CaseNumber != nil {
		if n := strings.TrimSpace(*in.CaseNumber); n != "" {
			number = &n
		}
	}

	c.CaseName = name
	c.CaseNumber = number
	c.ClientName = client
	c.CaseType = caseType
	c.Status = status
	c.Description = strings.TrimSpace(in.Description)
	c.Jurisdiction = strings.TrimSpace(in.Jurisdiction)
	c.PracticeArea = strings.TrimSpace(in.PracticeArea)
	c.Attorney = strings.TrimSpace(in.Attorney)
	c.OpposingParty = strings.TrimSpace(in.OpposingParty)
	c.ValueLow = in.EstimatedValueLow
	c.ValueHigh = in.EstimatedValueHigh
	c.KeyDeadlines = deadlines
	return nil
}

type CaseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ownership   *Ownership
	logger      logging.Logger
	now         func() time.Time
}

func NewCaseService(db *sql.DB, m repomanager.RepositoryManager, o *Ownership, logger logging.Logger) *CaseService {
	return &CaseService{db: db, repomanager: m, ownership: o, logger: logger.With("component", "cases"), now: time.Now}
}

func (s *CaseService) Create(ctx context.Context, accountID string, in CaseInput) (*models.Case, error) {
	c := &models.Case{AccountID: accountID}
	if err := in.apply(c); err != nil {
		return nil, err
	}
	if c.Status == models.CaseStatusClosed {
		now := s.now()
		c.ClosedAt = &now
	}

	created, err := s.repomanager.Cases(s.db).Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	s.logger.Info(ctx, "case created", "case_id", created.ID, "account_id", accountID)
	return created, nil
}

func (s *CaseService) List(ctx context.Context, accountID string) ([]*models.Case, error) {
	return s.repomanager.Cases(s.db).List(ctx, accountID)
}

func (s *CaseService) Get(ctx context.Context, accountID, id string) (*models.Case, error) {
	return s.ownership.Case(ctx, accountID, id)
}

// Update replaces the editable fields. ClosedAt is stamped when the case
// first moves to closed and cleared when it is reopened.
func (s *CaseService) Update(ctx context.Context, accountID, id string, in CaseInput) (*models.Case, error) {
	c, err := s.ownership.Case(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	wasClosed := c.Status == models.CaseStatusClosed
	if err := in.apply(c); err != nil {
		return nil, err
	}

	switch {
	case c.Status == models.CaseStatusClosed && (!wasClosed || c.ClosedAt == nil):
		now := s.now()
		c.ClosedAt = &now
	case c.Status != models.CaseStatusClosed:
		c.ClosedAt = nil
	}

	return s.repomanager.Cases(s.db).Update(ctx, c)
}

func (s *CaseService) Delete(ctx context.Context, accountID, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Cases(s.db).Delete(ctx, accountID, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "case deleted", "case_id", id, "account_id", accountID)
	return nil
}
