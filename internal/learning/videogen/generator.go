package videogen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/pylearn-backend/internal/learning/prompts"
	"github.com/yungbote/pylearn-backend/internal/learning/render"
	"github.com/yungbote/pylearn-backend/internal/platform/artifacts"
	"github.com/yungbote/pylearn-backend/internal/platform/localmedia"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
	"github.com/yungbote/pylearn-backend/internal/platform/openai"
)

// Generator is the five-step tutorial pipeline. Every step returns a non-empty
// result or an error.
type Generator interface {
	GenerateScript(ctx context.Context, topic string) (string, error)
	GenerateAnimationCode(ctx context.Context, topic, script string) (string, error)
	RenderAnimation(ctx context.Context, code, topic string) (string, error)
	GenerateAudio(ctx context.Context, script, topic string) (string, error)
	// MergeVideoAudio returns the artifact key of the published tutorial.
	MergeVideoAudio(ctx context.Context, videoPath, audioPath, topic string) (string, error)
}

type Config struct {
	WorkRoot          string
	SlideCount        int
	FPS               int
	Voice             string
	RenderConcurrency int
}

type generator struct {
	log      *logger.Logger
	ai       openai.Client
	media    localmedia.Tools
	renderer *render.SlideRenderer
	store    artifacts.Store
	cfg      Config
}

func NewGenerator(log *logger.Logger, ai openai.Client, media localmedia.Tools, renderer *render.SlideRenderer, store artifacts.Store, cfg Config) Generator {
	if cfg.WorkRoot == "" {
		cfg.WorkRoot = media.WorkRoot()
	}
	if cfg.SlideCount <= 0 {
		cfg.SlideCount = 6
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 24
	}
	if cfg.RenderConcurrency <= 0 {
		cfg.RenderConcurrency = 4
	}
	return &generator{
		log:      log.With("service", "VideoGenerator"),
		ai:       ai,
		media:    media,
		renderer: renderer,
		store:    store,
		cfg:      cfg,
	}
}

func (g *generator) GenerateScript(ctx context.Context, topic string) (string, error) {
	p, err := prompts.Build(prompts.PromptVideoScript, prompts.Input{Topic: topic})
	if err != nil {
		return "", err
	}
	g.log.Debug("Calling model", "prompt", p.Label())
	script, err := g.ai.GenerateText(ctx, p.System, p.User)
	if err != nil {
		return "", fmt.Errorf("generate script: %w", err)
	}
	script = strings.TrimSpace(script)
	if script == "" {
		return "", fmt.Errorf("generate script: empty output")
	}
	return script, nil
}

func (g *generator) GenerateAnimationCode(ctx context.Context, topic, script string) (string, error) {
	p, err := prompts.Build(prompts.PromptVideoStoryboard, prompts.Input{
		Topic:      topic,
		Script:     script,
		SlideCount: g.cfg.SlideCount,
	})
	if err != nil {
		return "", err
	}
	g.log.Debug("Calling model", "prompt", p.Label())
	obj, err := g.ai.GenerateJSON(ctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		return "", fmt.Errorf("generate storyboard: %w", err)
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("encode storyboard: %w", err)
	}
	sb, err := ParseStoryboard(string(raw))
	if err != nil {
		return "", err
	}
	return sb.Encode()
}

func (g *generator) RenderAnimation(ctx context.Context, code, topic string) (string, error) {
	sb, err := ParseStoryboard(code)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(g.topicDir(topic), "render-"+shortHash(code))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir render dir: %w", err)
	}

	start := time.Now()
	frames := make([]localmedia.Frame, len(sb.Slides))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.RenderConcurrency)
	for i, slide := range sb.Slides {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			png, err := g.renderer.RenderPNG(slide.drawable(), i, len(sb.Slides))
			if err != nil {
				return fmt.Errorf("slide %d: %w", i, err)
			}
			path := filepath.Join(dir, fmt.Sprintf("frame_%03d.png", i))
			if err := os.WriteFile(path, png, 0o644); err != nil {
				return fmt.Errorf("write slide %d: %w", i, err)
			}
			frames[i] = localmedia.Frame{Path: path, Seconds: float64(slide.Seconds)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", err
	}

	out, err := g.media.EncodeSlideshow(ctx, frames, filepath.Join(dir, "animation.mp4"), localmedia.SlideshowOptions{FPS: g.cfg.FPS})
	if err != nil {
		return "", err
	}
	g.log.Info("Animation rendered", "topic", topic, "slides", len(frames), "seconds", sb.TotalSeconds(), "duration_ms", time.Since(start).Milliseconds())
	return out, nil
}

func (g *generator) GenerateAudio(ctx context.Context, script, topic string) (string, error) {
	script = strings.TrimSpace(script)
	if script == "" {
		return "", fmt.Errorf("script required")
	}
	audio, err := g.ai.SynthesizeSpeech(ctx, script, openai.SpeechOptions{Voice: g.cfg.Voice, Format: "mp3"})
	if err != nil {
		return "", fmt.Errorf("synthesize narration: %w", err)
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("synthesize narration: empty audio")
	}
	// Kept on disk for MergeVideoAudio.
	path, _, err := g.media.WriteTempFile(ctx, audio, "mp3")
	if err != nil {
		return "", fmt.Errorf("write narration: %w", err)
	}
	g.log.Debug("Narration written", "topic", topic, "path", path, "bytes", len(audio))
	return path, nil
}

func (g *generator) MergeVideoAudio(ctx context.Context, videoPath, audioPath, topic string) (string, error) {
	id := uuid.NewString()
	local := filepath.Join(g.topicDir(topic), "final-"+id+".mp4")
	if _, err := g.media.MergeAudioVideo(ctx, videoPath, audioPath, local); err != nil {
		return "", err
	}
	defer os.Remove(local)

	key := fmt.Sprintf("videos/%s/%s.mp4", Slug(topic), id)
	if err := g.store.Put(ctx, key, local); err != nil {
		return "", fmt.Errorf("publish tutorial: %w", err)
	}
	g.log.Info("Tutorial published", "topic", topic, "key", key)
	return key, nil
}

func (g *generator) topicDir(topic string) string {
	return filepath.Join(g.cfg.WorkRoot, Slug(topic))
}

// Slug maps a topic to a lowercase filesystem-safe name.
func Slug(topic string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(topic)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
		if b.Len() >= 48 {
			break
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "topic"
	}
	return s
}

func shortHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])[:12]
}
