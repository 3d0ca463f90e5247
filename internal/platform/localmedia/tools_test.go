package localmedia

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

func TestConcatListRepeatsLastFrame(t *testing.T) {
	got := concatList([]Frame{
		{Path: "/tmp/a.png", Seconds: 2},
		{Path: "/tmp/b.png", Seconds: 0},
	})
	want := "ffconcat version 1.0\n" +
		"file '/tmp/a.png'\nduration 2.000\n" +
		"file '/tmp/b.png'\nduration 1.000\n" +
		"file '/tmp/b.png'\n"
	if got != want {
		t.Fatalf("concat list mismatch:\n%s\nwant:\n%s", got, want)
	}
}

func TestEscapeConcatPath(t *testing.T) {
	if got := escapeConcatPath("/tmp/it's.png"); got != `/tmp/it'\''s.png` {
		t.Fatalf("got %q", got)
	}
}

func TestSlideshowArgsDefaultFPS(t *testing.T) {
	args := strings.Join(slideshowArgs("list.txt", "out.mp4", SlideshowOptions{}), " ")
	if !strings.Contains(args, "fps=24,format=yuv420p") {
		t.Fatalf("default fps missing: %s", args)
	}
	if !strings.HasSuffix(args, "out.mp4") {
		t.Fatalf("output must be last: %s", args)
	}
}

func TestMergeArgsKeepsFullNarration(t *testing.T) {
	args := strings.Join(mergeArgs("v.mp4", "a.mp3", "o.mp4", 12, 47.25), " ")
	for _, want := range []string{"-i v.mp4", "-i a.mp3", "tpad=stop=-1:stop_mode=clone", "apad", "-map [v]", "-map [a]", "-t 47.250"} {
		if !strings.Contains(args, want) {
			t.Fatalf("missing %q in %s", want, args)
		}
	}
	if strings.Contains(args, "-shortest") {
		t.Fatalf("known durations must not cut at the shorter stream: %s", args)
	}

	args = strings.Join(mergeArgs("v.mp4", "a.mp3", "o.mp4", 30, 8), " ")
	if !strings.Contains(args, "-t 30.000") {
		t.Fatalf("longer video should bound the output: %s", args)
	}
}

func TestMergeArgsUnknownDurationFollowsAudio(t *testing.T) {
	args := strings.Join(mergeArgs("v.mp4", "a.mp3", "o.mp4", 0, 0), " ")
	for _, want := range []string{"tpad=stop=-1:stop_mode=clone", "-map 1:a:0", "-shortest"} {
		if !strings.Contains(args, want) {
			t.Fatalf("missing %q in %s", want, args)
		}
	}
	if !strings.HasSuffix(args, "o.mp4") {
		t.Fatalf("output must be last: %s", args)
	}
}

func TestParseDuration(t *testing.T) {
	out := []byte("Input #0, mp3, from 'a.mp3':\n  Duration: 00:01:07.48, start: 0.025057, bitrate: 160 kb/s\n")
	got, err := parseDuration(out)
	if err != nil {
		t.Fatalf("parseDuration: %v", err)
	}
	if got < 67.47 || got > 67.49 {
		t.Fatalf("got %v", got)
	}
	if _, err := parseDuration([]byte("a.mp3: No such file or directory")); err == nil {
		t.Fatal("expected error without a duration line")
	}
}

func TestWriteTempFile(t *testing.T) {
	m := New(logger.Nop(), t.TempDir())
	path, cleanup, err := m.WriteTempFile(context.Background(), []byte("abc"), "mp3")
	if err != nil {
		t.Fatalf("WriteTempFile: %v", err)
	}
	if !strings.HasSuffix(path, ".mp3") {
		t.Fatalf("suffix missing: %s", path)
	}
	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, err=%v", err)
	}
}

func TestMergeRequiresInputs(t *testing.T) {
	m := New(logger.Nop(), t.TempDir())
	if _, err := m.MergeAudioVideo(context.Background(), "", "a.mp3", "o.mp4"); err == nil {
		t.Fatal("expected error for missing video")
	}
	if _, err := m.EncodeSlideshow(context.Background(), nil, "o.mp4", SlideshowOptions{}); err == nil {
		t.Fatal("expected error for missing frames")
	}
}
