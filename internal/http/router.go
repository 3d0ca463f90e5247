package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/pylearn-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pylearn-backend/internal/http/middleware"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	SessionMiddleware *httpMW.SessionMiddleware

	AuthHandler     *httpH.AuthHandler
	SessionHandler  *httpH.SessionHandler
	VideoHandler    *httpH.VideoHandler
	QuizHandler     *httpH.QuizHandler
	ActivityHandler *httpH.ActivityHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	if cfg.SessionMiddleware != nil {
		api.Use(cfg.SessionMiddleware.AttachSession())
	}
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Session (render pass works logged out and returns the login view)
		if cfg.SessionHandler != nil {
			api.GET("/session", cfg.SessionHandler.GetState)
			api.GET("/session/view", cfg.SessionHandler.Render)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.SessionMiddleware != nil {
			protected.Use(cfg.SessionMiddleware.RequireAuth())
		}

		if cfg.SessionHandler != nil {
			protected.POST("/session/navigate", cfg.SessionHandler.Navigate)
		}

		// Video
		if cfg.VideoHandler != nil {
			protected.PUT("/video/topic", cfg.VideoHandler.SetTopic)
			protected.POST("/video/generate", cfg.VideoHandler.Generate)
			protected.GET("/video/download", cfg.VideoHandler.Download)
			protected.POST("/video/quiz", cfg.VideoHandler.QuizFromVideo)
		}

		// Quiz
		if cfg.QuizHandler != nil {
			protected.PUT("/quiz/topic", cfg.QuizHandler.SetTopic)
			protected.POST("/quiz/start", cfg.QuizHandler.Start)
			protected.POST("/quiz/answers", cfg.QuizHandler.Submit)
			protected.POST("/quiz/restart", cfg.QuizHandler.Restart)
			protected.GET("/quiz/analysis", cfg.QuizHandler.Analysis)
			protected.GET("/quiz/chart.png", cfg.QuizHandler.Chart)
			protected.POST("/quiz/video", cfg.QuizHandler.VideoFromQuiz)
		}

		// Progress
		if cfg.ActivityHandler != nil {
			protected.GET("/progress", cfg.ActivityHandler.Progress)
		}
	}

	return r
}
