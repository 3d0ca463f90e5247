package videogen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/pylearn-backend/internal/learning/render"
	"github.com/yungbote/pylearn-backend/internal/platform/artifacts"
	"github.com/yungbote/pylearn-backend/internal/platform/localmedia"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
	"github.com/yungbote/pylearn-backend/internal/platform/openai"
)

type fakeAI struct {
	text   string
	json   map[string]any
	speech []byte
	err    error
}

func (f *fakeAI) GenerateText(ctx context.Context, system, user string) (string, error) {
	return f.text, f.err
}

func (f *fakeAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	return f.json, f.err
}

func (f *fakeAI) SynthesizeSpeech(ctx context.Context, text string, opts openai.SpeechOptions) ([]byte, error) {
	return f.speech, f.err
}

type fakeMedia struct {
	root string

	mu      sync.Mutex
	frames  []localmedia.Frame
	encoded int
	temps   []string
}

func (m *fakeMedia) AssertReady(ctx context.Context) error { return nil }
func (m *fakeMedia) WorkRoot() string                     { return m.root }

func (m *fakeMedia) EncodeSlideshow(ctx context.Context, frames []localmedia.Frame, outPath string, opts localmedia.SlideshowOptions) (string, error) {
	m.mu.Lock()
	m.frames = frames
	m.encoded++
	m.mu.Unlock()
	return outPath, os.WriteFile(outPath, []byte("video"), 0o644)
}

func (m *fakeMedia) MergeAudioVideo(ctx context.Context, videoPath, audioPath, outPath string) (string, error) {
	return outPath, os.WriteFile(outPath, []byte("merged"), 0o644)
}

func (m *fakeMedia) WriteTempFile(ctx context.Context, data []byte, suffix string) (string, func(), error) {
	if len(data) == 0 {
		return "", func() {}, errors.New("empty data")
	}
	path := filepath.Join(m.root, fmt.Sprintf("temp-%d.%s", len(m.temps), suffix))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", func() {}, err
	}
	m.mu.Lock()
	m.temps = append(m.temps, path)
	m.mu.Unlock()
	return path, func() { _ = os.Remove(path) }, nil
}

func newTestGenerator(t *testing.T, ai *fakeAI) (Generator, *fakeMedia, artifacts.Store) {
	t.Helper()
	media := &fakeMedia{root: t.TempDir()}
	store, err := artifacts.NewLocalStore(logger.Nop(), t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	g := NewGenerator(logger.Nop(), ai, media, render.NewSlideRenderer(nil), store, Config{})
	return g, media, store
}

func TestGenerateScriptRejectsEmptyOutput(t *testing.T) {
	g, _, _ := newTestGenerator(t, &fakeAI{text: "   "})
	if _, err := g.GenerateScript(context.Background(), "Lists"); err == nil {
		t.Fatal("expected error for empty script")
	}
}

func TestGenerateAnimationCodeNormalizes(t *testing.T) {
	g, _, _ := newTestGenerator(t, &fakeAI{json: map[string]any{
		"slides": []any{
			map[string]any{"title": " Lists ", "bullets": []any{"ordered", " "}, "code": "", "seconds": 0},
			map[string]any{"title": "", "bullets": []any{}, "code": "", "seconds": 5},
			map[string]any{"title": "Append", "bullets": []any{}, "code": "xs.append(1)\n", "seconds": 99},
		},
	}})
	code, err := g.GenerateAnimationCode(context.Background(), "Lists", "script")
	if err != nil {
		t.Fatalf("GenerateAnimationCode: %v", err)
	}
	sb, err := ParseStoryboard(code)
	if err != nil {
		t.Fatalf("ParseStoryboard: %v", err)
	}
	if len(sb.Slides) != 2 {
		t.Fatalf("empty slide should be dropped: %+v", sb.Slides)
	}
	if sb.Slides[0].Title != "Lists" || len(sb.Slides[0].Bullets) != 1 || sb.Slides[0].Seconds != minSlideSeconds {
		t.Fatalf("slide 0 not normalized: %+v", sb.Slides[0])
	}
	if sb.Slides[1].Seconds != maxSlideSeconds || sb.Slides[1].Code != "xs.append(1)" {
		t.Fatalf("slide 1 not normalized: %+v", sb.Slides[1])
	}
}

func TestRenderAnimationRendersEveryFrame(t *testing.T) {
	g, media, _ := newTestGenerator(t, &fakeAI{})
	code := `{"slides":[{"title":"A","bullets":["x"],"code":"","seconds":3},{"title":"B","bullets":[],"code":"print(1)","seconds":4},{"title":"C","bullets":[],"code":"","seconds":5}]}`

	out, err := g.RenderAnimation(context.Background(), code, "Lists")
	if err != nil {
		t.Fatalf("RenderAnimation: %v", err)
	}
	if !strings.HasSuffix(out, "animation.mp4") {
		t.Fatalf("unexpected output path %q", out)
	}
	if len(media.frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(media.frames))
	}
	for i, f := range media.frames {
		if f.Seconds != float64(3+i) {
			t.Fatalf("frame %d duration %v", i, f.Seconds)
		}
		if _, err := os.Stat(f.Path); err != nil {
			t.Fatalf("frame %d missing: %v", i, err)
		}
	}
}

func TestRenderAnimationStopsOnCanceledContext(t *testing.T) {
	g, media, _ := newTestGenerator(t, &fakeAI{})
	code := `{"slides":[{"title":"A","bullets":["x"],"code":"","seconds":3},{"title":"B","bullets":["y"],"code":"","seconds":3}]}`

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.RenderAnimation(ctx, code, "Lists"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if media.encoded != 0 {
		t.Fatal("slideshow should not be encoded after cancellation")
	}
}

func TestRenderAnimationRejectsInvalidCode(t *testing.T) {
	g, _, _ := newTestGenerator(t, &fakeAI{})
	if _, err := g.RenderAnimation(context.Background(), "from manim import *", "Lists"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAudioAndMergePublish(t *testing.T) {
	ctx := context.Background()
	g, _, store := newTestGenerator(t, &fakeAI{speech: []byte("ID3")})

	audio, err := g.GenerateAudio(ctx, "Lists hold items.", "Python Lists")
	if err != nil {
		t.Fatalf("GenerateAudio: %v", err)
	}
	if !strings.HasSuffix(audio, ".mp3") {
		t.Fatalf("unexpected audio path %q", audio)
	}
	media := g.(*generator).media.(*fakeMedia)
	if len(media.temps) != 1 || media.temps[0] != audio {
		t.Fatalf("narration should go through the media temp files, got %v", media.temps)
	}
	if raw, err := os.ReadFile(audio); err != nil || string(raw) != "ID3" {
		t.Fatalf("narration content %q err %v", raw, err)
	}

	key, err := g.MergeVideoAudio(ctx, "/tmp/video.mp4", audio, "Python Lists")
	if err != nil {
		t.Fatalf("MergeVideoAudio: %v", err)
	}
	if !strings.HasPrefix(key, "videos/python-lists/") {
		t.Fatalf("unexpected key %q", key)
	}
	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "merged" {
		t.Fatalf("published content %q", got)
	}
}

func TestGenerateAudioRequiresSpeech(t *testing.T) {
	g, _, _ := newTestGenerator(t, &fakeAI{})
	if _, err := g.GenerateAudio(context.Background(), "hello", "Lists"); err == nil {
		t.Fatal("expected error for empty audio")
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Python Lists":          "python-lists",
		"  List Comprehensions ": "list-comprehensions",
		"__init__ & self":       "init-self",
		"!!!":                   "topic",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q)=%q want %q", in, got, want)
		}
	}
}
