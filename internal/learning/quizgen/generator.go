package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/pylearn-backend/internal/domain/session"
	"github.com/yungbote/pylearn-backend/internal/learning/prompts"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
	"github.com/yungbote/pylearn-backend/internal/platform/openai"
)

// Generator produces quiz content.
type Generator interface {
	GenerateQuestions(ctx context.Context, topic string, count int) ([]session.Question, error)
	Feedback(ctx context.Context, topic string, a Analysis) (string, error)
}

type generator struct {
	log *logger.Logger
	ai  openai.Client
}

func NewGenerator(log *logger.Logger, ai openai.Client) Generator {
	return &generator{log: log.With("service", "QuizGenerator"), ai: ai}
}

func (g *generator) GenerateQuestions(ctx context.Context, topic string, count int) ([]session.Question, error) {
	p, err := prompts.Build(prompts.PromptQuizQuestions, prompts.Input{Topic: topic, QuestionCount: count})
	if err != nil {
		return nil, err
	}
	g.log.Debug("Calling model", "prompt", p.Label())
	obj, err := g.ai.GenerateJSON(ctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Questions []session.Question `json:"questions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	qs := NormalizeQuestions(payload.Questions, count)
	if len(qs) == 0 {
		return nil, fmt.Errorf("generate questions: no usable questions")
	}
	if dropped := len(payload.Questions) - len(qs); dropped > 0 {
		g.log.Warn("Dropped malformed quiz questions", "topic", topic, "dropped", dropped)
	}
	OrderForStart(qs)
	return qs, nil
}

// NormalizeQuestions drops items without a question, with fewer than two options, or whose
// answer is not an option. A letter answer ("B") is mapped to its option.
func NormalizeQuestions(in []session.Question, limit int) []session.Question {
	out := make([]session.Question, 0, len(in))
	for _, q := range in {
		q.Question = strings.TrimSpace(q.Question)
		opts := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			if o = strings.TrimSpace(o); o != "" {
				opts = append(opts, o)
			}
		}
		q.Options = opts
		if q.Question == "" || len(q.Options) < 2 {
			continue
		}
		answer, ok := matchOption(q.Options, q.Answer)
		if !ok {
			answer, ok = letterOption(q.Options, q.Answer)
		}
		if !ok {
			continue
		}
		q.Answer = answer
		q.Category = strings.ToLower(strings.TrimSpace(q.Category))
		if q.Category == "" {
			q.Category = "general"
		}
		if q.Difficulty < minDifficulty {
			q.Difficulty = minDifficulty
		}
		if q.Difficulty > maxDifficulty {
			q.Difficulty = maxDifficulty
		}
		out = append(out, q)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func letterOption(options []string, answer string) (string, bool) {
	a := strings.ToUpper(strings.Trim(strings.TrimSpace(answer), ").:"))
	if len(a) != 1 {
		return "", false
	}
	i := int(a[0] - 'A')
	if i < 0 || i >= len(options) {
		return "", false
	}
	return options[i], true
}

func (g *generator) Feedback(ctx context.Context, topic string, a Analysis) (string, error) {
	perf, err := json.Marshal(a.Performance)
	if err != nil {
		return "", err
	}
	p, err := prompts.Build(prompts.PromptQuizFeedback, prompts.Input{
		Topic:           topic,
		StrengthsCSV:    csvOrNone(a.Strengths),
		WeaknessesCSV:   csvOrNone(a.Weaknesses),
		PerformanceJSON: string(perf),
	})
	if err != nil {
		return "", err
	}
	g.log.Debug("Calling model", "prompt", p.Label())
	text, err := g.ai.GenerateText(ctx, p.System, p.User)
	if err != nil {
		return "", fmt.Errorf("generate feedback: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("generate feedback: empty output")
	}
	return strings.TrimSpace(text), nil
}

func csvOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

// FallbackFeedback is shown when the feedback model is unavailable.
func FallbackFeedback(topic string, a Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Feedback on %s\n\n", topic)
	if len(a.Strengths) > 0 {
		fmt.Fprintf(&b, "**Strong areas:** %s\n\n", strings.Join(a.Strengths, ", "))
	}
	if len(a.Weaknesses) > 0 {
		fmt.Fprintf(&b, "**Review next:** %s\n\n", strings.Join(a.Weaknesses, ", "))
	} else {
		b.WriteString("No weak areas detected. Try a harder topic next.\n\n")
	}
	b.WriteString("**Resources**\n\n")
	b.WriteString("- [The Python Tutorial](https://docs.python.org/3/tutorial/)\n")
	b.WriteString("- [Python Standard Library reference](https://docs.python.org/3/library/)\n")
	b.WriteString("- [Python Glossary](https://docs.python.org/3/glossary.html)\n")
	return b.String()
}
