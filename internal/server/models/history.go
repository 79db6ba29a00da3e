package models

import (
	"encoding/json"
	"time"
)

// HistoryEntry records one successful AI tool call.
type HistoryEntry struct {
	ID        string          `json:"id"`
	AccountID string          `json:"-"`
	Type      string          `json:"type"`
	Query     string          `json:"query"`
	Result    json.RawMessage `json:"results,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
