// Package httpapi exposes the LawHelper REST API over chi. Handlers decode
// one request struct per route, call a service and shape the JSON reply.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/lawhelper/internal/logging"
	"github.com/dmitrijs2005/lawhelper/internal/server/ai"
	"github.com/dmitrijs2005/lawhelper/internal/server/auth"
	"github.com/dmitrijs2005/lawhelper/internal/server/config"
	"github.com/dmitrijs2005/lawhelper/internal/server/extract"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/dmitrijs2005/lawhelper/internal/server/services"
	"github.com/dmitrijs2005/lawhelper/internal/server/upload"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

// AccountService registers accounts and maps session ids to accounts.
type AccountService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.Account, *models.Session, error)
	Login(ctx context.Context, in services.LoginInput) (*models.Account, *models.Session, error)
	Resolve(ctx context.Context, sessionID string) (*models.Account, error)
	Logout(ctx context.Context, sessionID string) error
}

// CaseService manages cases. Every method is scoped to accountID; a case
// owned by another account is reported as not found.
type CaseService interface {
	Create(ctx context.Context, accountID string, in services.CaseInput) (*models.Case, error)
	List(ctx context.Context, accountID string) ([]*models.Case, error)
	Get(ctx context.Context, accountID, id string) (*models.Case, error)
	Update(ctx context.Context, accountID, id string, in services.CaseInput) (*models.Case, error)
	Delete(ctx context.Context, accountID, id string) error
}

// DocumentService stores saved documents and their archived sources.
type DocumentService interface {
	Save(ctx context.Context, accountID string, in services.SaveDocumentInput) (*models.SavedDocument, error)
	List(ctx context.Context, accountID string) ([]*models.SavedDocument, error)
	Get(ctx context.Context, accountID, id string) (*models.SavedDocument, error)
	Delete(ctx context.Context, accountID, id string) error
	ArchiveSource(ctx context.Context, accountID, contentType string, body []byte) (string, error)
	SourceURL(ctx context.Context, accountID, id string) (string, error)
}

// HistoryService keeps the per-account search history.
type HistoryService interface {
	Record(ctx context.Context, accountID, toolType, query string, result any) error
	Recent(ctx context.Context, accountID string) ([]*models.HistoryEntry, error)
}

// MedicalService lists and bulk-imports the medical records of a case.
type MedicalService interface {
	List(ctx context.Context, accountID, caseID string) ([]*models.MedicalRecord, error)
	Import(ctx context.Context, accountID, caseID string, records []*models.MedicalRecord) (int, error)
}

// Gateway is the set of AI features served by the API.
type Gateway interface {
	Model() string
	LegalSearch(ctx context.Context, in ai.LegalSearchInput) (*ai.LegalSearchResult, error)
	SummarizeDocument(ctx context.Context, in ai.SummarizeInput) (*ai.DocumentSummary, error)
	AnalyzeRisk(ctx context.Context, in ai.RiskInput) (*ai.RiskAnalysis, error)
	LawAgent(ctx context.Context, in ai.QuestionInput) (*ai.AgentAnswer, error)
	WebSearch(ctx context.Context, in ai.WebSearchInput) (*ai.WebSearchResult, error)
	QuickQuestion(ctx context.Context, in ai.QuestionInput) (*ai.QuickAnswer, error)
	GenerateDocument(ctx context.Context, in ai.GenerateInput) (*ai.GeneratedDocument, error)
	AnalyzeDocument(ctx context.Context, in ai.AnalyzeInput) (*ai.DocumentAnalysis, error)
	ImproveSection(ctx context.Context, in ai.ImproveInput) (*ai.ImprovedSection, error)
}

// Extractor turns an uploaded file into plain text.
type Extractor interface {
	Extract(f *upload.File) (*extract.Result, error)
}

// Deps wires the server to its services. Health is optional.
type Deps struct {
	Accounts  AccountService
	Cases     CaseService
	Documents DocumentService
	History   HistoryService
	Medical   MedicalService
	Gateway   Gateway
	Extractor Extractor
	Sessions  auth.SessionCodec
	Health    func(ctx context.Context) error
}

type Server struct {
	cfg    *config.Config
	deps   Deps
	logger logging.Logger
	router chi.Router
}

func NewServer(cfg *config.Config, deps Deps, logger logging.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger.With("module", "http_server"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Get("/user", s.handleUser)

			r.Post("/legal-search", aiRoute(s, ai.OpLegalSearch,
				func(in *ai.LegalSearchInput) string { return in.Query }, s.deps.Gateway.LegalSearch))
			r.Post("/analyze-risk", aiRoute(s, ai.OpRiskAnalysis,
				func(in *ai.RiskInput) string { return in.Description }, s.deps.Gateway.AnalyzeRisk))
			r.Post("/law-agent", aiRoute(s, ai.OpLawAgent,
				func(in *ai.QuestionInput) string { return in.Question }, s.deps.Gateway.LawAgent))
			r.Post("/web-search", aiRoute(s, ai.OpWebSearch,
				func(in *ai.WebSearchInput) string { return in.Query }, s.deps.Gateway.WebSearch))
			r.Post("/quick-question", aiRoute(s, ai.OpQuickQuestion,
				func(in *ai.QuestionInput) string { return in.Question }, s.deps.Gateway.QuickQuestion))
			r.Post("/improve-document-section", aiRoute(s, ai.OpImproveSection,
				func(in *ai.ImproveInput) string { return in.Item }, s.deps.Gateway.ImproveSection))
			r.Post("/generate-document", s.handleGenerateDocument)
			r.Post("/summarize-document", s.handleSummarizeDocument)
			r.Post("/analyze-document", s.handleAnalyzeDocument)
			r.Get("/search-history", s.handleSearchHistory)

			r.Route("/cases", func(r chi.Router) {
				r.Get("/", s.handleListCases)
				r.Post("/", s.handleCreateCase)
				r.Get("/{id}", s.handleGetCase)
				r.Put("/{id}", s.handleUpdateCase)
				r.Delete("/{id}", s.handleDeleteCase)
				r.Get("/{id}/medical-records", s.handleListMedical)
				r.Post("/{id}/medical-records/import", s.handleImportMedical)
			})

			r.Route("/saved-documents", func(r chi.Router) {
				r.Get("/", s.handleListDocuments)
				r.Get("/{id}", s.handleGetDocument)
				r.Delete("/{id}", s.handleDeleteDocument)
				r.Get("/{id}/source", s.handleDocumentSource)
			})

			r.Post("/export-document", s.handleExport)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.cfg.HTTPAddr)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      s.writeTimeout(),
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}

// writeTimeout leaves room for the AI call behind a slow request.
func (s *Server) writeTimeout() time.Duration {
	if s.cfg.RequestTimeout > 0 {
		return s.cfg.RequestTimeout + 15*time.Second
	}
	return 2 * time.Minute
}
