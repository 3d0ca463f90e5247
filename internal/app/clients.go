package app

import (
	"context"
	"fmt"
	"path/filepath"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pylearn-backend/internal/learning/render"
	"github.com/yungbote/pylearn-backend/internal/platform/artifacts"
	"github.com/yungbote/pylearn-backend/internal/platform/localmedia"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
	"github.com/yungbote/pylearn-backend/internal/platform/openai"
)

type Clients struct {
	OpenaiClient openai.Client
	Media        localmedia.Tools
	Fonts        *render.FontSet
	Artifacts    artifacts.Store
	Redis        goredis.UniversalClient

	closers []func() error
}

func (c *Clients) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Openai
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	out.OpenaiClient = openaiClient

	// ffmpeg
	media := localmedia.New(log, filepath.Join(cfg.MediaRoot, "work"))
	if err := media.AssertReady(ctx); err != nil {
		log.Warn("Media tools not ready; video rendering will fail until ffmpeg is installed", "error", err)
	}
	out.Media = media

	// Fonts
	fonts, err := render.LoadFontSet(cfg.SlideFont)
	if err != nil {
		return Clients{}, fmt.Errorf("load slide font: %w", err)
	}
	out.Fonts = fonts

	// Artifacts
	store, closeStore, err := resolveArtifactStore(ctx, log, cfg)
	if err != nil {
		return Clients{}, err
	}
	out.Artifacts = store
	out.closers = append(out.closers, closeStore)

	// Redis
	if cfg.SessionStore == SessionStoreRedis {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			_ = out.Close()
			return Clients{}, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		log.Info("Redis connected", "addr", cfg.RedisAddr)
		out.Redis = rdb
		out.closers = append(out.closers, rdb.Close)
	}

	return out, nil
}
