package session

import (
	"strings"

	"github.com/google/uuid"
)

type Page string

const (
	PageDashboard      Page = "dashboard"
	PageVideoGenerator Page = "video_generator"
	PageQuizGenerator  Page = "quiz_generator"
)

// Pages lists the navigable pages in sidebar order.
var Pages = []Page{PageDashboard, PageVideoGenerator, PageQuizGenerator}

func ParsePage(raw string) (Page, bool) {
	p := Page(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Pages {
		if p == known {
			return p, true
		}
	}
	return "", false
}

type UserRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
}

// Question is one multiple-choice item. Answer holds the text of the correct option.
// Difficulty runs from 1 (easiest) to 3 (hardest).
type Question struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Category    string   `json:"category"`
	Difficulty  int      `json:"difficulty"`
	Explanation string   `json:"explanation,omitempty"`
}

type CategoryTally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// State is everything a browser session carries between interactions.
type State struct {
	AuthStatus bool     `json:"auth_status"`
	User       *UserRef `json:"user"`
	Page       Page     `json:"page"`

	VideoTopic     string `json:"video_topic"`
	Script         string `json:"script"`
	AnimationCode  string `json:"animation_code"`
	VideoPath      string `json:"video_path"`
	AudioPath      string `json:"audio_path"`
	FinalVideoPath string `json:"final_video_path"`

	Questions          []Question               `json:"questions"`
	CurrentQuestion    int                      `json:"current_question"`
	Score              int                      `json:"score"`
	Completed          bool                     `json:"completed"`
	Answers            map[int]string           `json:"answers"`
	Topic              string                   `json:"topic"`
	QuestionCategories map[string]CategoryTally `json:"question_categories"`
}

func Defaults() State {
	return State{
		Page:               PageDashboard,
		Questions:          []Question{},
		Answers:            map[int]string{},
		QuestionCategories: map[string]CategoryTally{},
	}
}

// Normalize fills nil collections and replaces an unknown page with the dashboard.
func (s *State) Normalize() {
	if s.Questions == nil {
		s.Questions = []Question{}
	}
	if s.Answers == nil {
		s.Answers = map[int]string{}
	}
	if s.QuestionCategories == nil {
		s.QuestionCategories = map[string]CategoryTally{}
	}
	if _, ok := ParsePage(string(s.Page)); !ok {
		s.Page = PageDashboard
	}
}

func (s *State) ResetPipeline() {
	s.Script = ""
	s.AnimationCode = ""
	s.VideoPath = ""
	s.AudioPath = ""
	s.FinalVideoPath = ""
}

// ResetQuiz clears quiz progress and keeps the topic.
func (s *State) ResetQuiz() {
	s.Questions = []Question{}
	s.CurrentQuestion = 0
	s.Score = 0
	s.Completed = false
	s.Answers = map[int]string{}
	s.QuestionCategories = map[string]CategoryTally{}
}

func (s *State) UserID() uuid.UUID {
	if s.User == nil {
		return uuid.Nil
	}
	return s.User.ID
}
