package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/pylearn-backend/internal/domain/learning"
	"github.com/yungbote/pylearn-backend/internal/domain/session"
	"github.com/yungbote/pylearn-backend/internal/platform/dbctx"
)

func startQuiz(t *testing.T, h *harness, topic string) (uuid.UUID, session.State) {
	t.Helper()
	ctx := context.Background()
	sid, _ := h.login(t)
	if _, err := h.quiz.SetTopic(ctx, sid, topic); err != nil {
		t.Fatalf("SetTopic: %v", err)
	}
	st, err := h.quiz.Start(ctx, sid)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return sid, st
}

func TestStartRequiresTopic(t *testing.T) {
	h := newHarness(t)
	sid, _ := h.login(t)
	if _, err := h.quiz.Start(context.Background(), sid); apiCode(err) != "topic_required" {
		t.Fatalf("expected topic_required, got %v", err)
	}
}

func TestStartGenerationFailure(t *testing.T) {
	h := newHarness(t)
	h.quizGen.genErr = errors.New("upstream down")
	sid, _ := h.login(t)
	_, _ = h.quiz.SetTopic(context.Background(), sid, "Sets")
	if _, err := h.quiz.Start(context.Background(), sid); apiCode(err) != "quiz_generation_failed" {
		t.Fatalf("expected quiz_generation_failed, got %v", err)
	}
}

func TestStartResetsProgress(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid, st := startQuiz(t, h, "Collections")
	if _, err := h.quiz.Submit(ctx, sid, 0, st.Questions[0].Answer); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	st, err := h.quiz.Start(ctx, sid)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if st.Score != 0 || st.CurrentQuestion != 0 || len(st.Answers) != 0 || len(st.QuestionCategories) != 0 || st.Completed {
		t.Fatalf("progress not reset: %+v", st)
	}
}

func TestSubmitUpdatesOnlyThatIndex(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid, st := startQuiz(t, h, "Collections")

	out, err := h.quiz.Submit(ctx, sid, 0, st.Questions[0].Options[0])
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(out.State.Answers) != 1 || out.State.Answers[0] != st.Questions[0].Options[0] {
		t.Fatalf("unexpected answers %v", out.State.Answers)
	}
	if out.State.CurrentQuestion != 1 {
		t.Fatalf("expected to advance, got %d", out.State.CurrentQuestion)
	}
}

func TestSubmitErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	sid, _ := h.login(t)
	if _, err := h.quiz.Submit(ctx, sid, 0, "x"); apiCode(err) != "quiz_not_started" {
		t.Fatalf("expected quiz_not_started, got %v", err)
	}

	sid, st := startQuiz(t, h, "Collections")
	if _, err := h.quiz.Submit(ctx, sid, 2, st.Questions[2].Answer); apiCode(err) != "question_not_current" {
		t.Fatalf("expected question_not_current, got %v", err)
	}
	if _, err := h.quiz.Submit(ctx, sid, 0, "definitely not an option"); apiCode(err) != "invalid_answer" {
		t.Fatalf("expected invalid_answer, got %v", err)
	}
	loaded, _ := h.sessions.Load(ctx, sid)
	if len(loaded.Answers) != 0 {
		t.Fatalf("rejected submissions must not store answers: %v", loaded.Answers)
	}
}

func TestCompletionLogsAttemptOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid, st := startQuiz(t, h, "Collections")
	userID := st.UserID()

	var out *SubmitOutcome
	for i := 0; i < len(st.Questions); i++ {
		cur, _ := h.sessions.Load(ctx, sid)
		q := cur.Questions[cur.CurrentQuestion]
		var err error
		out, err = h.quiz.Submit(ctx, sid, cur.CurrentQuestion, q.Answer)
		if err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		if !out.Correct {
			t.Fatalf("answer %d should be correct", i)
		}
	}
	if !out.Completed || out.State.Score != 3 {
		t.Fatalf("expected completed perfect quiz: %+v", out.State)
	}
	if _, err := h.quiz.Submit(ctx, sid, out.State.CurrentQuestion, "dict"); apiCode(err) != "quiz_completed" {
		t.Fatalf("expected quiz_completed, got %v", err)
	}

	attempts, err := h.attempts.ListByUser(dbctx.Context{Ctx: ctx}, userID, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("expected exactly one attempt, got %d", len(attempts))
	}
	a := attempts[0]
	if a.Topic != "Collections" || a.Score != 3 || a.Total != 3 {
		t.Fatalf("unexpected attempt %+v", a)
	}
	var detail []learning.QuestionResult
	if err := json.Unmarshal(a.Detail, &detail); err != nil || len(detail) != 3 {
		t.Fatalf("unexpected detail %s (%v)", a.Detail, err)
	}
}

func TestAnalysisAndChart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid, st := startQuiz(t, h, "Collections")

	if _, err := h.quiz.Analysis(ctx, sid); apiCode(err) != "quiz_not_completed" {
		t.Fatalf("expected quiz_not_completed, got %v", err)
	}

	for range st.Questions {
		cur, _ := h.sessions.Load(ctx, sid)
		q := cur.Questions[cur.CurrentQuestion]
		answer := q.Answer
		if q.Category == "tuples" {
			answer = "mutable"
		}
		if _, err := h.quiz.Submit(ctx, sid, cur.CurrentQuestion, answer); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	an, err := h.quiz.Analysis(ctx, sid)
	if err != nil {
		t.Fatalf("Analysis: %v", err)
	}
	if an.Score != 2 || an.Total != 3 {
		t.Fatalf("unexpected score %d/%d", an.Score, an.Total)
	}
	if strings.Join(an.Strengths, ",") != "dicts,lists" || strings.Join(an.Weaknesses, ",") != "tuples" {
		t.Fatalf("unexpected classification: %+v", an)
	}
	if an.Feedback != "Keep going." {
		t.Fatalf("unexpected feedback %q", an.Feedback)
	}

	h.quizGen.feedbackErr = errors.New("boom")
	an, err = h.quiz.Analysis(ctx, sid)
	if err != nil {
		t.Fatalf("Analysis with fallback: %v", err)
	}
	if !strings.Contains(an.Feedback, "docs.python.org") {
		t.Fatalf("expected fallback feedback, got %q", an.Feedback)
	}

	png, err := h.quiz.Chart(ctx, sid)
	if err != nil {
		t.Fatalf("Chart: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Fatalf("chart is not a PNG")
	}
}

func TestRestartKeepsTopic(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid, st := startQuiz(t, h, "Strings")
	_, _ = h.quiz.Submit(ctx, sid, 0, st.Questions[0].Answer)

	st, err := h.quiz.Restart(ctx, sid)
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if st.Topic != "Strings" || len(st.Questions) != 0 || st.Score != 0 || len(st.Answers) != 0 {
		t.Fatalf("unexpected state after restart: %+v", st)
	}
}

func TestVideoFromQuizCarriesTopic(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid, _ := h.login(t)
	if _, err := h.quiz.VideoFromQuiz(ctx, sid); apiCode(err) != "topic_required" {
		t.Fatalf("expected topic_required, got %v", err)
	}
	_, _ = h.quiz.SetTopic(ctx, sid, "Exceptions")
	st, err := h.quiz.VideoFromQuiz(ctx, sid)
	if err != nil {
		t.Fatalf("VideoFromQuiz: %v", err)
	}
	if st.VideoTopic != "Exceptions" || st.Page != session.PageVideoGenerator {
		t.Fatalf("unexpected state: %+v", st)
	}
	v, _ := h.sessions.Render(ctx, sid)
	if v.Video == nil || v.Video.Topic != "Exceptions" {
		t.Fatalf("video page should be pre-filled: %+v", v.Video)
	}
}

func TestProgress(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid, st := h.login(t)
	_, _ = h.video.SetTopic(ctx, sid, "Modules")
	if res, err := h.video.Generate(ctx, sid); err != nil || !res.Success {
		t.Fatalf("Generate: %+v %v", res, err)
	}
	p, err := h.activity.Progress(ctx, st.UserID(), 0)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if p.VideoCount != 1 || len(p.Videos) != 1 || len(p.Attempts) != 0 {
		t.Fatalf("unexpected progress %+v", p)
	}
	if _, err := h.activity.Progress(ctx, uuid.Nil, 0); apiCode(err) != "not_authenticated" {
		t.Fatalf("expected not_authenticated, got %v", err)
	}
}
