package models

import (
	"encoding/json"
	"time"
)

// SavedDocument is a generated or analyzed document kept for the account.
type SavedDocument struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"-"`
	CaseID       *string         `json:"caseId,omitempty"`
	Title        string          `json:"title"`
	DocumentType DocumentType    `json:"documentType"`
	Content      string          `json:"content"`
	FileFormat   *string         `json:"fileFormat,omitempty"`
	GeneratedBy  *string         `json:"generatedBy,omitempty"`
	AIModel      *string         `json:"aiModel,omitempty"`
	Version      int             `json:"version"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// DocumentMetadata is the JSON stored in SavedDocument.Metadata.
type DocumentMetadata struct {
	FileName  string `json:"fileName,omitempty"`
	FileSize  int64  `json:"fileSize,omitempty"`
	SourceKey string `json:"sourceKey,omitempty"`
	Fidelity  string `json:"fidelity,omitempty"`
}
