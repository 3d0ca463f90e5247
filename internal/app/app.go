package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/data/db"
	"github.com/yungbote/pylearn-backend/internal/http"
	"github.com/yungbote/pylearn-backend/internal/observability"
	"github.com/yungbote/pylearn-backend/internal/platform/dbctx"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDatabase connects using DB_DRIVER and friends and runs migrations when asked.
func OpenDatabase(log *logger.Logger, migrate bool) (*db.Service, error) {
	svc, err := db.NewService(log, db.ConfigFromEnv(log))
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if migrate {
		if err := db.AutoMigrateAll(svc.DB()); err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("database automigrate: %w", err)
		}
	}
	return svc, nil
}

func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfigFromEnv(cfg.ServiceName, cfg.Environment))

	dbService, err := OpenDatabase(log, true)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}
	theDB := dbService.DB()

	reposet := wireRepos(theDB, log)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = dbService.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	serviceset, err := wireServices(theDB, log, cfg, reposet, clients)
	if err != nil {
		_ = clients.Close()
		_ = dbService.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	middleware := wireMiddleware(log, cfg, serviceset)
	handlerset := wireHandlers(log, theDB, serviceset, clients, middleware)
	server := wireServer(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background work. Only the db session store needs a sweeper; redis and
// memory entries expire on their own.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Cfg.SessionStore == SessionStoreDB && a.Cfg.SessionSweepInterval > 0 {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.sweepSessions(ctx)
		}()
	}
}

func (a *App) sweepSessions(ctx context.Context) {
	log := a.Log.With("worker", "SessionSweeper")
	ticker := time.NewTicker(a.Cfg.SessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-a.Cfg.SessionTTL)
			n, err := a.Repos.UserSessionState.DeleteIdleSince(dbctx.Context{Ctx: ctx}, cutoff)
			if err != nil {
				log.Warn("Session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				log.Info("Swept idle sessions", "count", n, "cutoff", cutoff)
			}
		}
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, a.Cfg.Addr(), a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.wg.Wait()
	if err := a.Clients.Close(); err != nil && a.Log != nil {
		a.Log.Warn("Closing clients failed", "error", err)
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
