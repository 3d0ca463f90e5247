package services

import (
	"strings"

	"github.com/yungbote/pylearn-backend/internal/domain/session"
)

// View is the render pass: exactly one of Dashboard, Video or Quiz is set for an
// authenticated session, none for the login view.
type View struct {
	View      string         `json:"view"`
	Sidebar   *Sidebar       `json:"sidebar,omitempty"`
	Dashboard *DashboardView `json:"dashboard,omitempty"`
	Video     *VideoView     `json:"video,omitempty"`
	Quiz      *QuizView      `json:"quiz,omitempty"`
}

type NavEntry struct {
	Page   session.Page `json:"page"`
	Label  string       `json:"label"`
	Active bool         `json:"active"`
}

type Sidebar struct {
	Title   string     `json:"title"`
	Welcome string     `json:"welcome"`
	Nav     []NavEntry `json:"nav"`
	Footer  string     `json:"footer"`
}

type DashboardView struct {
	Greeting string `json:"greeting"`
	FullName string `json:"full_name"`
}

type VideoView struct {
	Topic        string `json:"topic"`
	CanGenerate  bool   `json:"can_generate"`
	HasScript    bool   `json:"has_script"`
	HasVideo     bool   `json:"has_video"`
	DownloadName string `json:"download_name,omitempty"`
	CanMakeQuiz  bool   `json:"can_make_quiz"`
}

type QuestionView struct {
	Index    int      `json:"index"`
	Number   int      `json:"number"`
	Total    int      `json:"total"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Category string   `json:"category"`
}

type QuizView struct {
	Topic     string        `json:"topic"`
	Started   bool          `json:"started"`
	Question  *QuestionView `json:"question,omitempty"`
	Progress  float64       `json:"progress"`
	Completed bool          `json:"completed"`
	Score     int           `json:"score"`
	Total     int           `json:"total"`
}

// BuildView projects the stored state onto the page it selects.
func BuildView(st session.State) View {
	st.Normalize()
	if !st.AuthStatus || st.User == nil {
		return View{View: ViewLogin}
	}
	v := View{View: string(st.Page), Sidebar: buildSidebar(st)}
	switch st.Page {
	case session.PageVideoGenerator:
		v.Video = buildVideoView(st)
	case session.PageQuizGenerator:
		v.Quiz = buildQuizView(st)
	default:
		v.View = string(session.PageDashboard)
		v.Dashboard = &DashboardView{
			Greeting: "Welcome, " + st.User.Username + "!",
			FullName: st.User.FullName,
		}
	}
	return v
}

func buildSidebar(st session.State) *Sidebar {
	nav := make([]NavEntry, 0, len(session.Pages))
	for _, p := range session.Pages {
		nav = append(nav, NavEntry{Page: p, Label: pageLabels[p], Active: p == st.Page})
	}
	return &Sidebar{
		Title:   sidebarTitle,
		Welcome: "Welcome, " + st.User.Username,
		Nav:     nav,
		Footer:  sidebarFooter,
	}
}

func buildVideoView(st session.State) *VideoView {
	v := &VideoView{
		Topic:       st.VideoTopic,
		CanGenerate: strings.TrimSpace(st.VideoTopic) != "",
		HasScript:   st.Script != "",
		HasVideo:    st.FinalVideoPath != "",
	}
	if v.HasVideo {
		v.DownloadName = DownloadFilename(st.VideoTopic)
		v.CanMakeQuiz = true
	}
	return v
}

func buildQuizView(st session.State) *QuizView {
	total := len(st.Questions)
	v := &QuizView{
		Topic:     st.Topic,
		Started:   total > 0,
		Completed: st.Completed,
		Score:     st.Score,
		Total:     total,
	}
	if total == 0 {
		return v
	}
	if st.Completed {
		v.Progress = 1
		return v
	}
	i := st.CurrentQuestion
	if i < 0 || i >= total {
		return v
	}
	q := st.Questions[i]
	v.Progress = float64(i) / float64(total)
	v.Question = &QuestionView{
		Index:    i,
		Number:   i + 1,
		Total:    total,
		Question: q.Question,
		Options:  append([]string(nil), q.Options...),
		Category: q.Category,
	}
	return v
}

// DownloadFilename is the attachment name offered for a tutorial on topic.
func DownloadFilename(topic string) string {
	return strings.ReplaceAll(strings.TrimSpace(topic), " ", "_") + "_tutorial.mp4"
}
