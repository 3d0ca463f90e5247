package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/http"
	httpH "github.com/yungbote/pylearn-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pylearn-backend/internal/http/middleware"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

type Middleware struct {
	Session *httpMW.SessionMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	Session  *httpH.SessionHandler
	Video    *httpH.VideoHandler
	Quiz     *httpH.QuizHandler
	Activity *httpH.ActivityHandler
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Session: httpMW.NewSessionMiddleware(log, services.Auth, services.Session, httpMW.CookieConfig{
			Name:   cfg.CookieName,
			Domain: cfg.CookieDomain,
			Secure: cfg.CookieSecure,
		}),
	}
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services, clients Clients, middleware Middleware) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(readinessChecks(db, clients)),
		Auth:     httpH.NewAuthHandler(services.Auth, middleware.Session),
		Session:  httpH.NewSessionHandler(services.Session),
		Video:    httpH.NewVideoHandler(log, services.Video),
		Quiz:     httpH.NewQuizHandler(services.Quiz),
		Activity: httpH.NewActivityHandler(services.Activity),
	}
}

func readinessChecks(db *gorm.DB, clients Clients) map[string]httpH.Check {
	checks := map[string]httpH.Check{}
	if db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if clients.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return clients.Redis.Ping(ctx).Err()
		}
	}
	if clients.Media != nil {
		checks["ffmpeg"] = func(ctx context.Context) error {
			if err := clients.Media.AssertReady(ctx); err != nil {
				return fmt.Errorf("media tools: %w", err)
			}
			return nil
		}
	}
	return checks
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:               log,
		ServiceName:       cfg.ServiceName,
		CORSOrigins:       cfg.CORSOrigins,
		SessionMiddleware: middleware.Session,
		AuthHandler:       handlers.Auth,
		SessionHandler:    handlers.Session,
		VideoHandler:      handlers.Video,
		QuizHandler:       handlers.Quiz,
		ActivityHandler:   handlers.Activity,
		HealthHandler:     handlers.Health,
	})
}
