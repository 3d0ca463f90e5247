package localmedia

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/pylearn-backend/internal/platform/ctxutil"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

// Tools is the glue around the ffmpeg binary.
//
// REQUIRED BINARIES in the server runtime:
// - ffmpeg for slideshow encoding and audio/video muxing
//
// Calls are synchronous and bounded by defaultTimeout.
type Tools interface {
	AssertReady(ctx context.Context) error

	// EncodeSlideshow turns still frames into an H.264 mp4, holding each frame for its duration.
	EncodeSlideshow(ctx context.Context, frames []Frame, outPath string, opts SlideshowOptions) (string, error)

	// MergeAudioVideo muxes audio onto video. The output runs as long as the longer
	// stream: the last frame is held and the audio padded with silence.
	MergeAudioVideo(ctx context.Context, videoPath, audioPath, outPath string) (string, error)

	WorkRoot() string

	// Helpers for callers who only have bytes:
	WriteTempFile(ctx context.Context, data []byte, suffix string) (string, func(), error)
}

type Frame struct {
	Path    string
	Seconds float64
}

type SlideshowOptions struct {
	FPS int
}

type tools struct {
	log *logger.Logger

	ffmpegPath string
	workRoot   string

	defaultTimeout time.Duration
}

func New(log *logger.Logger, workRoot string) Tools {
	slog := log.With("service", "MediaTools")
	if strings.TrimSpace(workRoot) == "" {
		workRoot = filepath.Join(os.TempDir(), "pylearn-media")
	}
	ffmpeg := strings.TrimSpace(os.Getenv("FFMPEG_PATH"))
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &tools{
		log:            slog,
		ffmpegPath:     ffmpeg,
		workRoot:       workRoot,
		defaultTimeout: 10 * time.Minute,
	}
}

func (m *tools) WorkRoot() string { return m.workRoot }

func (m *tools) AssertReady(ctx context.Context) error {
	if _, err := exec.LookPath(m.ffmpegPath); err != nil {
		return fmt.Errorf("missing required binary %q in PATH: %w", m.ffmpegPath, err)
	}
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return fmt.Errorf("create workRoot: %w", err)
	}
	return nil
}

func (m *tools) WriteTempFile(ctx context.Context, data []byte, suffix string) (string, func(), error) {
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("mkdir workRoot: %w", err)
	}
	h := sha256.Sum256(data)
	base := hex.EncodeToString(h[:])[:16]
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	path := filepath.Join(m.workRoot, base+suffix)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", func() {}, fmt.Errorf("write temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(path) }
	return path, cleanup, nil
}

func (m *tools) EncodeSlideshow(ctx context.Context, frames []Frame, outPath string, opts SlideshowOptions) (string, error) {
	ctx = ctxutil.Default(ctx)
	if len(frames) == 0 {
		return "", fmt.Errorf("frames required")
	}
	if outPath == "" {
		return "", fmt.Errorf("outPath required")
	}
	if err := m.AssertReady(ctx); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("mkdir outPath dir: %w", err)
	}

	listPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".concat.txt"
	if err := os.WriteFile(listPath, []byte(concatList(frames)), 0o644); err != nil {
		return "", fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listPath)

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, m.ffmpegPath, slideshowArgs(listPath, outPath, opts)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg slideshow failed: %w; out=%s", err, tail(out))
	}
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("video output missing at %s", outPath)
	}
	m.log.Debug("Slideshow encoded", "frames", len(frames), "out", outPath, "duration_ms", time.Since(start).Milliseconds())
	return outPath, nil
}

func (m *tools) MergeAudioVideo(ctx context.Context, videoPath, audioPath, outPath string) (string, error) {
	ctx = ctxutil.Default(ctx)
	if videoPath == "" {
		return "", fmt.Errorf("videoPath required")
	}
	if audioPath == "" {
		return "", fmt.Errorf("audioPath required")
	}
	if outPath == "" {
		return "", fmt.Errorf("outPath required")
	}
	if err := m.AssertReady(ctx); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("mkdir outPath dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	videoSecs, err := m.durationSeconds(ctx, videoPath)
	if err != nil {
		m.log.Warn("read video duration failed", "path", videoPath, "error", err)
	}
	audioSecs, err := m.durationSeconds(ctx, audioPath)
	if err != nil {
		m.log.Warn("read audio duration failed", "path", audioPath, "error", err)
	}

	cmd := exec.CommandContext(ctx, m.ffmpegPath, mergeArgs(videoPath, audioPath, outPath, videoSecs, audioSecs)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg merge failed: %w; out=%s", err, tail(out))
	}
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("merged output missing at %s", outPath)
	}
	m.log.Debug("Audio merged", "out", outPath, "video_seconds", videoSecs, "audio_seconds", audioSecs)
	return outPath, nil
}

// durationSeconds reads the container duration from ffmpeg's input banner. ffmpeg exits
// non-zero without an output file, so only the parse result counts.
func (m *tools) durationSeconds(ctx context.Context, path string) (float64, error) {
	out, _ := exec.CommandContext(ctx, m.ffmpegPath, "-hide_banner", "-i", path).CombinedOutput()
	return parseDuration(out)
}

// ---------- helpers ----------

var durationRe = regexp.MustCompile(`Duration: (\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

func parseDuration(out []byte) (float64, error) {
	m := durationRe.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("no duration in ffmpeg output")
	}
	h, _ := strconv.Atoi(string(m[1]))
	mins, _ := strconv.Atoi(string(m[2]))
	sec, err := strconv.ParseFloat(string(m[3]), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return float64(h*3600+mins*60) + sec, nil
}

// concatList renders an ffconcat script. The last frame is repeated because the concat
// demuxer ignores the final duration directive.
func concatList(frames []Frame) string {
	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for _, f := range frames {
		secs := f.Seconds
		if secs <= 0 {
			secs = 1
		}
		b.WriteString("file '" + escapeConcatPath(f.Path) + "'\n")
		b.WriteString("duration " + strconv.FormatFloat(secs, 'f', 3, 64) + "\n")
	}
	b.WriteString("file '" + escapeConcatPath(frames[len(frames)-1].Path) + "'\n")
	return b.String()
}

func escapeConcatPath(p string) string {
	return strings.ReplaceAll(p, "'", `'\''`)
}

func slideshowArgs(listPath, outPath string, opts SlideshowOptions) []string {
	fps := opts.FPS
	if fps <= 0 {
		fps = 24
	}
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-vf", "fps=" + strconv.Itoa(fps) + ",format=yuv420p",
		"-c:v", "libx264",
		"-movflags", "+faststart",
		outPath,
	}
}

// mergeArgs holds the last frame and pads the audio indefinitely, then cuts at the
// longer of the two durations. With an unknown duration the narration bounds the output.
func mergeArgs(videoPath, audioPath, outPath string, videoSecs, audioSecs float64) []string {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
	}
	if videoSecs > 0 && audioSecs > 0 {
		args = append(args,
			"-filter_complex", "[0:v]tpad=stop=-1:stop_mode=clone,format=yuv420p[v];[1:a]apad[a]",
			"-map", "[v]",
			"-map", "[a]",
			"-t", strconv.FormatFloat(max(videoSecs, audioSecs), 'f', 3, 64),
		)
	} else {
		args = append(args,
			"-filter_complex", "[0:v]tpad=stop=-1:stop_mode=clone,format=yuv420p[v]",
			"-map", "[v]",
			"-map", "1:a:0",
			"-shortest",
		)
	}
	return append(args,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-movflags", "+faststart",
		outPath,
	)
}

func tail(out []byte) string {
	const max = 2048
	if len(out) <= max {
		return string(out)
	}
	return string(out[len(out)-max:])
}
