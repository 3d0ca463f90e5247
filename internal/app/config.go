package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/pylearn-backend/internal/platform/envutil"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

const (
	SessionStoreDB     = "db"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"

	ArtifactStoreLocal = "local"
	ArtifactStoreGCS   = "gcs"
)

type Config struct {
	ServiceName string
	Environment string
	Port        string

	JWTSecretKey         string
	SessionTTL           time.Duration
	SessionStore         string
	SessionSweepInterval time.Duration
	CookieName           string
	CookieDomain         string
	CookieSecure         bool
	CORSOrigins          []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MediaRoot     string
	ArtifactStore string
	SlideFont     string

	VideoSlideCount   int
	VideoFPS          int
	RenderConcurrency int
	PipelineTimeout   time.Duration

	QuizQuestionCount int

	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "pylearn-backend", log),
		Environment: envutil.String("APP_ENV", "development", log),
		Port:        envutil.String("PORT", "8080", log),

		JWTSecretKey:         envutil.String("JWT_SECRET_KEY", "defaultsecret", nil),
		SessionTTL:           envutil.Seconds("SESSION_TTL", 24*time.Hour, log),
		SessionStore:         strings.ToLower(envutil.String("SESSION_STORE", SessionStoreDB, log)),
		SessionSweepInterval: envutil.Seconds("SESSION_SWEEP_INTERVAL", 15*time.Minute, log),
		CookieName:           envutil.String("SESSION_COOKIE_NAME", "pylearn_session", log),
		CookieDomain:         envutil.String("SESSION_COOKIE_DOMAIN", "", log),
		CookieSecure:         envutil.Bool("SESSION_COOKIE_SECURE", false),
		CORSOrigins:          splitList(envutil.String("CORS_ALLOWED_ORIGINS", "", log)),

		RedisAddr:     envutil.String("REDIS_ADDR", "localhost:6379", log),
		RedisPassword: envutil.String("REDIS_PASSWORD", "", nil),
		RedisDB:       envutil.Int("REDIS_DB", 0, log),

		MediaRoot:     envutil.String("MEDIA_ROOT", "./media", log),
		ArtifactStore: strings.ToLower(envutil.String("ARTIFACT_STORE", ArtifactStoreLocal, log)),
		SlideFont:     envutil.String("SLIDE_FONT", "", log),

		VideoSlideCount:   envutil.Int("VIDEO_SLIDE_COUNT", 6, log),
		VideoFPS:          envutil.Int("VIDEO_FPS", 24, log),
		RenderConcurrency: envutil.Int("RENDER_CONCURRENCY", 4, log),
		PipelineTimeout:   envutil.Seconds("VIDEO_PIPELINE_TIMEOUT", 15*time.Minute, log),

		QuizQuestionCount: envutil.Int("QUIZ_QUESTION_COUNT", 5, log),

		ShutdownTimeout: envutil.Seconds("SHUTDOWN_TIMEOUT", 20*time.Second, log),
	}
}

func (c Config) Validate() error {
	switch c.SessionStore {
	case SessionStoreDB, SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("invalid SESSION_STORE=%q (allowed: %s, %s, %s)", c.SessionStore, SessionStoreDB, SessionStoreRedis, SessionStoreMemory)
	}
	switch c.ArtifactStore {
	case ArtifactStoreLocal, ArtifactStoreGCS:
	default:
		return fmt.Errorf("invalid ARTIFACT_STORE=%q (allowed: %s, %s)", c.ArtifactStore, ArtifactStoreLocal, ArtifactStoreGCS)
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("missing JWT_SECRET_KEY")
	}
	if c.Environment == "production" && c.JWTSecretKey == "defaultsecret" {
		return fmt.Errorf("JWT_SECRET_KEY must be set in production")
	}
	return nil
}

func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
