package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/pylearn-backend/internal/domain/session"
)

func authedState(page session.Page) session.State {
	st := session.Defaults()
	st.AuthStatus = true
	st.User = &session.UserRef{ID: uuid.New(), Username: "ada", FullName: "Ada Lovelace"}
	st.Page = page
	return st
}

func TestBuildViewUnauthenticatedRendersLogin(t *testing.T) {
	st := session.Defaults()
	st.Page = session.PageQuizGenerator
	v := BuildView(st)
	if v.View != ViewLogin {
		t.Fatalf("expected login view, got %q", v.View)
	}
	if v.Sidebar != nil || v.Dashboard != nil || v.Video != nil || v.Quiz != nil {
		t.Fatalf("login view should carry no page data: %+v", v)
	}
}

func TestBuildViewPicksExactlyOnePage(t *testing.T) {
	cases := []struct {
		page session.Page
		want string
	}{
		{session.PageDashboard, "dashboard"},
		{session.PageVideoGenerator, "video_generator"},
		{session.PageQuizGenerator, "quiz_generator"},
		{session.Page("settings"), "dashboard"},
	}
	for _, tc := range cases {
		v := BuildView(authedState(tc.page))
		if v.View != tc.want {
			t.Fatalf("page %q: got view %q want %q", tc.page, v.View, tc.want)
		}
		set := 0
		if v.Dashboard != nil {
			set++
		}
		if v.Video != nil {
			set++
		}
		if v.Quiz != nil {
			set++
		}
		if set != 1 {
			t.Fatalf("page %q: expected one page view, got %d", tc.page, set)
		}
		if v.Sidebar == nil || v.Sidebar.Welcome != "Welcome, ada" {
			t.Fatalf("page %q: sidebar missing or wrong: %+v", tc.page, v.Sidebar)
		}
	}
}

func TestBuildViewSidebarMarksActivePage(t *testing.T) {
	v := BuildView(authedState(session.PageVideoGenerator))
	if len(v.Sidebar.Nav) != 3 {
		t.Fatalf("expected 3 nav entries, got %d", len(v.Sidebar.Nav))
	}
	for _, n := range v.Sidebar.Nav {
		if n.Active != (n.Page == session.PageVideoGenerator) {
			t.Fatalf("unexpected active flag on %q", n.Page)
		}
	}
}

func TestBuildViewVideoDownloadName(t *testing.T) {
	st := authedState(session.PageVideoGenerator)
	st.VideoTopic = "list comprehensions"
	st.FinalVideoPath = "videos/list-comprehensions/x.mp4"
	v := BuildView(st)
	if !v.Video.HasVideo || !v.Video.CanMakeQuiz {
		t.Fatalf("expected finished video: %+v", v.Video)
	}
	if v.Video.DownloadName != "list_comprehensions_tutorial.mp4" {
		t.Fatalf("unexpected download name %q", v.Video.DownloadName)
	}
}

func TestBuildViewQuizCurrentQuestion(t *testing.T) {
	st := authedState(session.PageQuizGenerator)
	st.Topic = "Collections"
	st.Questions = sampleQuestions()
	st.CurrentQuestion = 1
	v := BuildView(st)
	if v.Quiz.Question == nil || v.Quiz.Question.Number != 2 || v.Quiz.Question.Total != 3 {
		t.Fatalf("unexpected question view: %+v", v.Quiz.Question)
	}
	if v.Quiz.Progress <= 0.3 || v.Quiz.Progress >= 0.4 {
		t.Fatalf("unexpected progress %v", v.Quiz.Progress)
	}

	st.Completed = true
	v = BuildView(st)
	if v.Quiz.Question != nil || v.Quiz.Progress != 1 {
		t.Fatalf("completed quiz should show no question: %+v", v.Quiz)
	}
}
