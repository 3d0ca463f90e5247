package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pylearn-backend/internal/data/repos"
	"github.com/yungbote/pylearn-backend/internal/data/repos/testutil"
	"github.com/yungbote/pylearn-backend/internal/domain/session"
	"github.com/yungbote/pylearn-backend/internal/learning/quizgen"
	"github.com/yungbote/pylearn-backend/internal/platform/apierr"
	"github.com/yungbote/pylearn-backend/internal/platform/artifacts"
)

type fakeVideoGen struct {
	mu     sync.Mutex
	calls  []string
	failAt string
	empty  bool
	store  artifacts.Store
	dir    string
	// afterStep runs outside the lock once a step has been recorded.
	afterStep func(name string)
}

func (f *fakeVideoGen) step(name, out string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	hook := f.afterStep
	f.mu.Unlock()
	if hook != nil {
		hook(name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt == name {
		if f.empty {
			return "", nil
		}
		return "", errors.New(name + " exploded")
	}
	return out, nil
}

func (f *fakeVideoGen) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeVideoGen) GenerateScript(ctx context.Context, topic string) (string, error) {
	return f.step(StepScript, "Today we learn "+topic)
}

func (f *fakeVideoGen) GenerateAnimationCode(ctx context.Context, topic, script string) (string, error) {
	return f.step(StepAnimationCode, `{"slides":[{"title":"`+topic+`"}]}`)
}

func (f *fakeVideoGen) RenderAnimation(ctx context.Context, code, topic string) (string, error) {
	return f.step(StepRender, "/work/video.mp4")
}

func (f *fakeVideoGen) GenerateAudio(ctx context.Context, script, topic string) (string, error) {
	return f.step(StepAudio, "/work/audio.mp3")
}

func (f *fakeVideoGen) MergeVideoAudio(ctx context.Context, videoPath, audioPath, topic string) (string, error) {
	out, err := f.step(StepMerge, "videos/test/"+uuid.NewString()+".mp4")
	if err != nil || out == "" || f.store == nil {
		return out, err
	}
	src := filepath.Join(f.dir, "final.mp4")
	if err := os.WriteFile(src, []byte("mp4-bytes"), 0o644); err != nil {
		return "", err
	}
	if err := f.store.Put(ctx, out, src); err != nil {
		return "", err
	}
	return out, nil
}

type fakeQuizGen struct {
	questions   []session.Question
	genErr      error
	feedback    string
	feedbackErr error
}

func (f *fakeQuizGen) GenerateQuestions(ctx context.Context, topic string, count int) ([]session.Question, error) {
	if f.genErr != nil {
		return nil, f.genErr
	}
	return append([]session.Question(nil), f.questions...), nil
}

func (f *fakeQuizGen) Feedback(ctx context.Context, topic string, a quizgen.Analysis) (string, error) {
	return f.feedback, f.feedbackErr
}

func sampleQuestions() []session.Question {
	return []session.Question{
		{Question: "len([1,2])?", Options: []string{"1", "2", "3"}, Answer: "2", Category: "lists", Difficulty: 2},
		{Question: "type({})?", Options: []string{"dict", "set"}, Answer: "dict", Category: "dicts", Difficulty: 1},
		{Question: "Tuples are?", Options: []string{"mutable", "immutable"}, Answer: "immutable", Category: "tuples", Difficulty: 3},
	}
}

type harness struct {
	db       *gorm.DB
	sessions SessionService
	auth     AuthService
	activity ActivityService
	quiz     QuizService
	video    VideoService
	videoGen *fakeVideoGen
	quizGen  *fakeQuizGen
	store    artifacts.Store
	videos   repos.VideoLogRepo
	attempts repos.QuizAttemptRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := testutil.Logger(t)
	db := testutil.DB(t)

	store, err := artifacts.NewLocalStore(log, t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	h := &harness{
		db:       db,
		store:    store,
		videoGen: &fakeVideoGen{store: store, dir: t.TempDir()},
		quizGen:  &fakeQuizGen{questions: sampleQuestions(), feedback: "Keep going."},
		videos:   repos.NewVideoLogRepo(db, log),
		attempts: repos.NewQuizAttemptRepo(db, log),
	}
	h.sessions = NewSessionService(log, NewMemorySessionStore(0))
	h.auth = NewAuthService(db, log, repos.NewUserRepo(db, log), h.sessions, "test-secret", time.Hour)
	h.activity = NewActivityService(db, log, h.videos, h.attempts)
	h.quiz = NewQuizService(log, h.sessions, h.quizGen, h.activity, nil, 3)
	h.video = NewVideoService(log, h.sessions, h.videoGen, store, h.activity, h.quiz, time.Minute)
	return h
}

// login registers a fresh user and logs a new session in as that user.
func (h *harness) login(t *testing.T) (uuid.UUID, session.State) {
	t.Helper()
	ctx := context.Background()
	name := uniqueName("ada")
	if _, err := h.auth.Register(ctx, name, name+"@example.com", "lovelace", "Ada Lovelace"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	res, err := h.auth.Login(ctx, uuid.New(), name, "lovelace")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return res.SessionID, res.State
}

func apiCode(err error) string {
	if err == nil {
		return ""
	}
	_, code := apierr.StatusAndCode(err)
	return code
}

func uniqueName(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}
