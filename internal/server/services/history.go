package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/lawhelper/internal/server/config"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/repomanager"
)

type HistoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	limit       int
}

func NewHistoryService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *HistoryService {
	return &HistoryService{db: db, repomanager: m, limit: cfg.HistoryLimit}
}

// Record appends one tool call with its JSON-encoded result.
func (s *HistoryService) Record(ctx context.Context, accountID, toolType, query string, result any) error {
	var raw json.RawMessage
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode history result: %w", err)
		}
		raw = b
	}
	entry := &models.HistoryEntry{AccountID: accountID, Type: toolType, Query: query, Result: raw}
	if err := s.repomanager.History(s.db).Add(ctx, entry); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// Recent returns the newest entries, at most the configured limit.
func (s *HistoryService) Recent(ctx context.Context, accountID string) ([]*models.HistoryEntry, error) {
	return s.repomanager.History(s.db).ListRecent(ctx, accountID, s.limit)
}
