package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/lawhelper/internal/server/ai"
	"github.com/dmitrijs2005/lawhelper/internal/server/extract"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/dmitrijs2005/lawhelper/internal/server/services"
	"github.com/dmitrijs2005/lawhelper/internal/server/upload"
)

const generatedBy = "ai"

// aiRoute serves a JSON-in, JSON-out AI feature and records the call in the
// search history.
func aiRoute[In, Out any](s *Server, op ai.Operation, query func(*In) string, call func(context.Context, In) (*Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decodeJSON(w, r, &in); err != nil {
			s.writeError(w, r, err)
			return
		}

		out, err := call(r.Context(), in)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.record(r.Context(), op, query(&in), out)
		s.writeJSON(w, http.StatusOK, out)
	}
}

// record stores a history entry. A failure is logged and never fails the
// request that produced the result.
func (s *Server) record(ctx context.Context, op ai.Operation, query string, result any) {
	account := accountFrom(ctx)
	if err := s.deps.History.Record(ctx, account.ID, string(op), query, result); err != nil {
		s.logger.Warn(ctx, "failed to record search history", "operation", op, "error", err)
	}
}

// saveDocument keeps an AI result as a saved document, logging failures.
func (s *Server) saveDocument(ctx context.Context, in services.SaveDocumentInput) string {
	in.GeneratedBy = generatedBy
	in.AIModel = s.deps.Gateway.Model()
	doc, err := s.deps.Documents.Save(ctx, accountFrom(ctx).ID, in)
	if err != nil {
		s.logger.Warn(ctx, "failed to save document", "document_type", in.DocumentType, "error", err)
		return ""
	}
	return doc.ID
}

// checkCase verifies an optional case reference before any AI work starts.
func (s *Server) checkCase(ctx context.Context, caseID *string) error {
	if caseID == nil {
		return nil
	}
	_, err := s.deps.Cases.Get(ctx, accountFrom(ctx).ID, *caseID)
	return err
}

type generateRequest struct {
	ai.GenerateInput
	CaseID *string `json:"caseId,omitempty"`
}

type generateResponse struct {
	*ai.GeneratedDocument
	DocumentID string `json:"documentId,omitempty"`
}

func (s *Server) handleGenerateDocument(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.checkCase(r.Context(), req.CaseID); err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.deps.Gateway.GenerateDocument(r.Context(), req.GenerateInput)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r.Context(), ai.OpGenerateDocument, req.DocumentType, out)
	id := s.saveDocument(r.Context(), services.SaveDocumentInput{
		CaseID:       req.CaseID,
		Title:        out.Title,
		DocumentType: models.DocumentType(req.DocumentType),
		Content:      out.Text(),
		FileFormat:   "text",
	})
	s.writeJSON(w, http.StatusOK, generateResponse{GeneratedDocument: out, DocumentID: id})
}

// uploadedText reads the multipart file and extracts its text.
func (s *Server) uploadedText(r *http.Request, maxBytes int64) (*upload.Upload, *extract.Result, error) {
	u, err := upload.Read(r, "file", upload.Limits{MaxBytes: maxBytes})
	if err != nil {
		return nil, nil, err
	}
	res, err := s.deps.Extractor.Extract(u.File)
	if err != nil {
		return nil, nil, err
	}
	return u, res, nil
}

// archive stores the uploaded source when object storage is configured. The
// upload still succeeds without it.
func (s *Server) archive(ctx context.Context, f *upload.File) string {
	key, err := s.deps.Documents.ArchiveSource(ctx, accountFrom(ctx).ID, f.ContentType, f.Data)
	if err != nil {
		s.logger.Warn(ctx, "failed to archive upload", "file_name", f.Name, "error", err)
		return ""
	}
	return key
}

// optionalField returns nil for an empty form value.
func optionalField(u *upload.Upload, name string) *string {
	if v := u.Field(name); v != "" {
		return &v
	}
	return nil
}

type summarizeResponse struct {
	*ai.DocumentSummary
	FileName   string `json:"fileName"`
	FileSize   int64  `json:"fileSize"`
	Fidelity   string `json:"fidelity"`
	DocumentID string `json:"documentId,omitempty"`
}

func (s *Server) handleSummarizeDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, res, err := s.uploadedText(r, s.cfg.UploadMaxBytes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	caseID := optionalField(u, "caseId")
	if err := s.checkCase(ctx, caseID); err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.deps.Gateway.SummarizeDocument(ctx, ai.SummarizeInput{Text: res.Text, SummaryType: u.Field("summaryType")})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(ctx, ai.OpSummarize, u.File.Name, out)
	id := s.saveDocument(ctx, services.SaveDocumentInput{
		CaseID:       caseID,
		Title:        "Summary of " + u.File.Name,
		DocumentType: models.DocumentTypeSummary,
		Content:      out.Summary,
		FileFormat:   string(res.Kind),
		Metadata: &models.DocumentMetadata{
			FileName:  u.File.Name,
			FileSize:  u.File.Size,
			SourceKey: s.archive(ctx, u.File),
			Fidelity:  res.Fidelity,
		},
	})

	s.writeJSON(w, http.StatusOK, summarizeResponse{
		DocumentSummary: out,
		FileName:        u.File.Name,
		FileSize:        u.File.Size,
		Fidelity:        res.Fidelity,
		DocumentID:      id,
	})
}

type analyzeResponse struct {
	Content    string               `json:"content"`
	Analysis   *ai.DocumentAnalysis `json:"analysis"`
	FileName   string               `json:"fileName"`
	FileSize   int64                `json:"fileSize"`
	Fidelity   string               `json:"fidelity"`
	DocumentID string               `json:"documentId,omitempty"`
}

func (s *Server) handleAnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, res, err := s.uploadedText(r, s.cfg.AnalyzeMaxBytes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	caseID := optionalField(u, "caseId")
	if err := s.checkCase(ctx, caseID); err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.deps.Gateway.AnalyzeDocument(ctx, ai.AnalyzeInput{Text: res.Text, FileName: u.File.Name})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(ctx, ai.OpAnalyzeDocument, u.File.Name, out)
	id := s.saveDocument(ctx, services.SaveDocumentInput{
		CaseID:       caseID,
		Title:        analysisTitle(u.File.Name),
		DocumentType: models.DocumentTypeAnalysis,
		Content:      res.Text,
		FileFormat:   string(res.Kind),
		Metadata: &models.DocumentMetadata{
			FileName:  u.File.Name,
			FileSize:  u.File.Size,
			SourceKey: s.archive(ctx, u.File),
			Fidelity:  res.Fidelity,
		},
	})

	s.writeJSON(w, http.StatusOK, analyzeResponse{
		Content:    res.Text,
		Analysis:   out,
		FileName:   u.File.Name,
		FileSize:   u.File.Size,
		Fidelity:   res.Fidelity,
		DocumentID: id,
	})
}

func analysisTitle(fileName string) string {
	name := strings.TrimSpace(fileName)
	if name == "" {
		name = "uploaded document"
	}
	return fmt.Sprintf("Analysis of %s", name)
}

func (s *Server) handleSearchHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.History.Recent(r.Context(), accountFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*models.HistoryEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}
