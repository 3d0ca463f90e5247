package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/learning/quizgen"
	"github.com/yungbote/pylearn-backend/internal/learning/render"
	"github.com/yungbote/pylearn-backend/internal/learning/videogen"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
	"github.com/yungbote/pylearn-backend/internal/services"
)

type Services struct {
	Store    services.SessionStore
	Session  services.SessionService
	Auth     services.AuthService
	Activity services.ActivityService
	Quiz     services.QuizService
	Video    services.VideoService
}

func wireSessionStore(log *logger.Logger, cfg Config, repos Repos, clients Clients) (services.SessionStore, error) {
	switch cfg.SessionStore {
	case SessionStoreDB:
		return services.NewDBSessionStore(log, repos.UserSessionState), nil
	case SessionStoreRedis:
		if clients.Redis == nil {
			return nil, fmt.Errorf("session store %q requires a redis client", cfg.SessionStore)
		}
		return services.NewRedisSessionStore(log, clients.Redis, cfg.SessionTTL), nil
	case SessionStoreMemory:
		return services.NewMemorySessionStore(cfg.SessionTTL), nil
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.SessionStore)
	}
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	store, err := wireSessionStore(log, cfg, repos, clients)
	if err != nil {
		return Services{}, err
	}
	sessions := services.NewSessionService(log, store)
	auth := services.NewAuthService(db, log, repos.User, sessions, cfg.JWTSecretKey, cfg.SessionTTL)
	activity := services.NewActivityService(db, log, repos.VideoLog, repos.QuizAttempt)

	quizGen := quizgen.NewGenerator(log, clients.OpenaiClient)
	quiz := services.NewQuizService(log, sessions, quizGen, activity, clients.Fonts, cfg.QuizQuestionCount)

	videoGen := videogen.NewGenerator(
		log,
		clients.OpenaiClient,
		clients.Media,
		render.NewSlideRenderer(clients.Fonts),
		clients.Artifacts,
		videogen.Config{
			SlideCount:        cfg.VideoSlideCount,
			FPS:               cfg.VideoFPS,
			RenderConcurrency: cfg.RenderConcurrency,
		},
	)
	video := services.NewVideoService(log, sessions, videoGen, clients.Artifacts, activity, quiz, cfg.PipelineTimeout)

	return Services{
		Store:    store,
		Session:  sessions,
		Auth:     auth,
		Activity: activity,
		Quiz:     quiz,
		Video:    video,
	}, nil
}
