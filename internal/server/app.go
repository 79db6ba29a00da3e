// Package server wires the LawHelper services together and runs the HTTP
// API until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/lawhelper/internal/dbx"
	"github.com/dmitrijs2005/lawhelper/internal/logging"
	"github.com/dmitrijs2005/lawhelper/internal/server/ai"
	"github.com/dmitrijs2005/lawhelper/internal/server/auth"
	"github.com/dmitrijs2005/lawhelper/internal/server/config"
	"github.com/dmitrijs2005/lawhelper/internal/server/extract"
	"github.com/dmitrijs2005/lawhelper/internal/server/httpapi"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lawhelper/internal/server/services"
)

const sessionPurgeInterval = 15 * time.Minute

// SessionPurger drops expired sessions.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	accounts SessionPurger
	http     *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := dbx.Open(ctx, dbx.PostgresDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if cfg.AutoMigrate {
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}

	provider, err := ai.NewProvider(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ai provider init error: %w", err)
	}
	logger.Info(ctx, "AI provider selected", "provider", provider.Name(), "model", provider.Model())
	if provider.Name() == "mock" {
		logger.Warn(ctx, "MOCK AI PROVIDER IN USE: answers are canned and not legal advice; set OPENAI_API_KEY or GEMINI_API_KEY")
	}

	ownership := services.NewOwnership(db, rm)
	accounts := services.NewAccountService(db, rm, cfg, logger)

	srv := httpapi.NewServer(cfg, httpapi.Deps{
		Accounts:  accounts,
		Cases:     services.NewCaseService(db, rm, ownership, logger),
		Documents: services.NewDocumentService(db, rm, ownership, services.NewBlobStore(cfg), logger),
		History:   services.NewHistoryService(db, rm, cfg),
		Medical:   services.NewMedicalService(db, rm, ownership, logger),
		Gateway:   ai.NewGateway(provider, cfg.AITimeout, logger),
		Extractor: extract.NewExtractor(),
		Sessions:  auth.NewJWTCodec([]byte(cfg.SessionSecret)),
		Health:    db.PingContext,
	}, logger)

	return &App{config: cfg, logger: logger, db: db, accounts: accounts, http: srv}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// purgeSessions removes expired sessions on a timer until ctx is done.
func (app *App) purgeSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.accounts.PurgeExpiredSessions(ctx)
			if err != nil {
				app.logger.Warn(ctx, "session purge failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired sessions purged", "count", n)
			}
		}
	}
}

// Run blocks until a signal arrives, ctx is cancelled or the server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeSessions(ctx, sessionPurgeInterval)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "db close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
