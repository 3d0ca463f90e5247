package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/pylearn-backend/internal/domain/learning"
	"github.com/yungbote/pylearn-backend/internal/domain/session"
	"github.com/yungbote/pylearn-backend/internal/learning/quizgen"
	"github.com/yungbote/pylearn-backend/internal/learning/render"
	"github.com/yungbote/pylearn-backend/internal/platform/apierr"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
)

const defaultQuestionCount = 5

type SubmitOutcome struct {
	Correct       bool          `json:"correct"`
	Selected      string        `json:"selected"`
	CorrectAnswer string        `json:"correct_answer"`
	Explanation   string        `json:"explanation,omitempty"`
	Completed     bool          `json:"completed"`
	State         session.State `json:"state"`
}

type QuizAnalysis struct {
	Topic       string                        `json:"topic"`
	Score       int                           `json:"score"`
	Total       int                           `json:"total"`
	Performance []quizgen.CategoryPerformance `json:"performance"`
	Strengths   []string                      `json:"strengths"`
	Weaknesses  []string                      `json:"weaknesses"`
	Feedback    string                        `json:"feedback"`
}

type QuizService interface {
	SetTopic(ctx context.Context, sid uuid.UUID, topic string) (session.State, error)
	Start(ctx context.Context, sid uuid.UUID) (session.State, error)
	Submit(ctx context.Context, sid uuid.UUID, index int, answer string) (*SubmitOutcome, error)
	Restart(ctx context.Context, sid uuid.UUID) (session.State, error)
	Analysis(ctx context.Context, sid uuid.UUID) (*QuizAnalysis, error)
	Chart(ctx context.Context, sid uuid.UUID) ([]byte, error)
	VideoFromQuiz(ctx context.Context, sid uuid.UUID) (session.State, error)
}

type quizService struct {
	log           *logger.Logger
	sessions      SessionService
	generator     quizgen.Generator
	activity      ActivityService
	fonts         *render.FontSet
	questionCount int
}

func NewQuizService(
	log *logger.Logger,
	sessions SessionService,
	generator quizgen.Generator,
	activity ActivityService,
	fonts *render.FontSet,
	questionCount int,
) QuizService {
	if questionCount <= 0 {
		questionCount = defaultQuestionCount
	}
	return &quizService{
		log:           log.With("service", "QuizService"),
		sessions:      sessions,
		generator:     generator,
		activity:      activity,
		fonts:         fonts,
		questionCount: questionCount,
	}
}

func (s *quizService) SetTopic(ctx context.Context, sid uuid.UUID, topic string) (session.State, error) {
	return s.sessions.Update(ctx, sid, func(st *session.State) error {
		if err := requireAuth(st); err != nil {
			return err
		}
		st.Topic = strings.TrimSpace(topic)
		return nil
	})
}

// Start resets quiz progress and generates a fresh question set for the stored topic.
// Generation runs outside the session lock.
func (s *quizService) Start(ctx context.Context, sid uuid.UUID) (session.State, error) {
	var topic string
	st, err := s.sessions.Update(ctx, sid, func(st *session.State) error {
		if err := requireAuth(st); err != nil {
			return err
		}
		topic = strings.TrimSpace(st.Topic)
		if topic == "" {
			return apierr.BadRequest("topic_required", "Please enter a topic")
		}
		st.ResetQuiz()
		return nil
	})
	if err != nil {
		return st, err
	}

	qs, err := s.generator.GenerateQuestions(ctx, topic, s.questionCount)
	if err != nil {
		s.log.Error("quiz generation failed", "topic", topic, "error", err)
		return st, apierr.New(http.StatusBadGateway, "quiz_generation_failed", errors.New("Could not generate quiz questions"))
	}

	return s.sessions.Update(ctx, sid, func(st *session.State) error {
		if err := requireAuth(st); err != nil {
			return err
		}
		if strings.TrimSpace(st.Topic) != topic {
			return apierr.Conflict("topic_changed", "Topic changed while generating questions")
		}
		st.ResetQuiz()
		st.Questions = qs
		return nil
	})
}

func (s *quizService) Submit(ctx context.Context, sid uuid.UUID, index int, answer string) (*SubmitOutcome, error) {
	out := &SubmitOutcome{}
	var (
		finished bool
		userID   uuid.UUID
		topic    string
		detail   []learning.QuestionResult
	)
	st, err := s.sessions.Update(ctx, sid, func(st *session.State) error {
		if err := requireAuth(st); err != nil {
			return err
		}
		wasCompleted := st.Completed
		res, err := quizgen.Submit(st, index, answer)
		if err != nil {
			return mapQuizErr(err)
		}
		q := st.Questions[index]
		out.Correct = res.Correct
		out.Selected = res.Answer
		out.CorrectAnswer = q.Answer
		out.Explanation = q.Explanation
		out.Completed = res.Completed
		if !wasCompleted && res.Completed {
			finished = true
			userID = st.UserID()
			topic = st.Topic
			detail = quizgen.Detail(st)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.State = st

	if finished {
		if err := s.activity.LogQuizAttempt(ctx, userID, topic, st.Score, len(st.Questions), detail); err != nil {
			s.log.Warn("log quiz attempt failed", "user_id", userID, "error", err)
		}
	}
	return out, nil
}

func (s *quizService) Restart(ctx context.Context, sid uuid.UUID) (session.State, error) {
	return s.sessions.Update(ctx, sid, func(st *session.State) error {
		if err := requireAuth(st); err != nil {
			return err
		}
		st.ResetQuiz()
		return nil
	})
}

func (s *quizService) completedState(ctx context.Context, sid uuid.UUID) (session.State, quizgen.Analysis, error) {
	st, err := s.sessions.Load(ctx, sid)
	if err != nil {
		return st, quizgen.Analysis{}, err
	}
	if err := requireAuth(&st); err != nil {
		return st, quizgen.Analysis{}, err
	}
	if !st.Completed {
		return st, quizgen.Analysis{}, mapQuizErr(quizgen.ErrNotCompleted)
	}
	return st, quizgen.Analyze(st.QuestionCategories), nil
}

func (s *quizService) Analysis(ctx context.Context, sid uuid.UUID) (*QuizAnalysis, error) {
	st, a, err := s.completedState(ctx, sid)
	if err != nil {
		return nil, err
	}
	feedback, err := s.generator.Feedback(ctx, st.Topic, a)
	if err != nil || strings.TrimSpace(feedback) == "" {
		s.log.Warn("feedback generation failed, using fallback", "topic", st.Topic, "error", err)
		feedback = quizgen.FallbackFeedback(st.Topic, a)
	}
	return &QuizAnalysis{
		Topic:       st.Topic,
		Score:       st.Score,
		Total:       len(st.Questions),
		Performance: a.Performance,
		Strengths:   a.Strengths,
		Weaknesses:  a.Weaknesses,
		Feedback:    feedback,
	}, nil
}

func (s *quizService) Chart(ctx context.Context, sid uuid.UUID) ([]byte, error) {
	st, a, err := s.completedState(ctx, sid)
	if err != nil {
		return nil, err
	}
	png, err := quizgen.ChartPNG(s.fonts, st.Topic, a)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return png, nil
}

func (s *quizService) VideoFromQuiz(ctx context.Context, sid uuid.UUID) (session.State, error) {
	return s.sessions.Update(ctx, sid, func(st *session.State) error {
		if err := requireAuth(st); err != nil {
			return err
		}
		if strings.TrimSpace(st.Topic) == "" {
			return apierr.BadRequest("topic_required", "Please enter a topic")
		}
		st.VideoTopic = st.Topic
		st.Page = session.PageVideoGenerator
		return nil
	})
}

func mapQuizErr(err error) error {
	switch {
	case errors.Is(err, quizgen.ErrNotStarted):
		return apierr.Conflict("quiz_not_started", "Start a quiz first")
	case errors.Is(err, quizgen.ErrCompleted):
		return apierr.Conflict("quiz_completed", "Quiz already completed")
	case errors.Is(err, quizgen.ErrNotCurrent):
		return apierr.Conflict("question_not_current", "Only the current question can be answered")
	case errors.Is(err, quizgen.ErrInvalidAnswer):
		return apierr.BadRequest("invalid_answer", "Answer must be one of the options")
	case errors.Is(err, quizgen.ErrNotCompleted):
		return apierr.Conflict("quiz_not_completed", "Finish the quiz first")
	default:
		return err
	}
}
