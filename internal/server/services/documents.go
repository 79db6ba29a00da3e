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
)

// SaveDocumentInput describes a document produced by an AI tool.
type SaveDocumentInput struct {
	CaseID       *string
	Title        string
	DocumentType models.DocumentType
	Content      string
	FileFormat   string
	GeneratedBy  string
	AIModel      string
	Metadata     *models.DocumentMetadata
}

type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ownership   *Ownership
	blobs       BlobStore
	logger      logging.Logger
	now         func() time.Time
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, o *Ownership, blobs BlobStore, logger logging.Logger) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: m,
		ownership:   o,
		blobs:       blobs,
		logger:      logger.With("component", "documents"),
		now:         time.Now,
	}
}

func (s *DocumentService) Save(ctx context.Context, accountID string, in SaveDocumentInput) (*models.SavedDocument, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, common.NewFieldError("title", "is required")
	}
	if _, err := models.ParseDocumentType(string(in.DocumentType)); err != nil {
		return nil, err
	}
	if in.CaseID != nil {
		if _, err := s.ownership.Case(ctx, accountID, *in.CaseID); err != nil {
			return nil, err
		}
	}

	d := &models.SavedDocument{
		AccountID:    accountID,
		CaseID:       in.CaseID,
		Title:        title,
		DocumentType: in.DocumentType,
		Content:      in.Content,
		FileFormat:   optional(in.FileFormat),
		GeneratedBy:  optional(in.GeneratedBy),
		AIModel:      optional(in.AIModel),
	}
	if in.Metadata != nil {
		b, err := json.Marshal(in.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		d.Metadata = b
	}

	saved, err := s.repomanager.Documents(s.db).Create(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return saved, nil
}

func (s *DocumentService) List(ctx context.Context, accountID string) ([]*models.SavedDocument, error) {
	return s.repomanager.Documents(s.db).List(ctx, accountID)
}

func (s *DocumentService) Get(ctx context.Context, accountID, id string) (*models.SavedDocument, error) {
	return s.ownership.Document(ctx, accountID, id)
}

func (s *DocumentService) Delete(ctx context.Context, accountID, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	return s.repomanager.Documents(s.db).Delete(ctx, accountID, id)
}

// ArchiveSource stores an uploaded file and returns its key, or "" when
// archiving is disabled.
func (s *DocumentService) ArchiveSource(ctx context.Context, accountID, contentType string, body []byte) (string, error) {
	if !s.blobs.Enabled() {
		return "", nil
	}
	key := StorageKey(accountID, s.now())
	if err := s.blobs.Put(ctx, key, contentType, body); err != nil {
		return "", fmt.Errorf("archive source: %w", err)
	}
	return key, nil
}

// SourceURL presigns the archived source of a saved document.
func (s *DocumentService) SourceURL(ctx context.Context, accountID, id string) (string, error) {
	d, err := s.ownership.Document(ctx, accountID, id)
	if err != nil {
		return "", err
	}
	if !s.blobs.Enabled() || len(d.Metadata) == 0 {
		return "", common.ErrorNotFound
	}

	var meta models.DocumentMetadata
	if err := json.Unmarshal(d.Metadata, &meta); err != nil || meta.SourceKey == "" {
		return "", common.ErrorNotFound
	}
	return s.blobs.PresignGet(ctx, meta.SourceKey)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
