package quizgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/pylearn-backend/internal/platform/logger"
	"github.com/yungbote/pylearn-backend/internal/platform/openai"
)

type fakeAI struct {
	json     map[string]any
	text     string
	err      error
	lastUser string
}

func (f *fakeAI) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.lastUser = user
	return f.text, f.err
}

func (f *fakeAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.lastUser = user
	return f.json, f.err
}

func (f *fakeAI) SynthesizeSpeech(ctx context.Context, text string, opts openai.SpeechOptions) ([]byte, error) {
	return nil, errors.New("unused")
}

func TestGenerateQuestions(t *testing.T) {
	ai := &fakeAI{json: map[string]any{
		"questions": []any{
			map[string]any{"question": "len([1,2])?", "options": []any{"1", "2", "3", "4"}, "answer": "2", "category": "builtins", "difficulty": 1.0, "explanation": ""},
			map[string]any{"question": "xs[-1]?", "options": []any{"first", "last", "error", "none"}, "answer": "last", "category": "indexing", "difficulty": 2.0, "explanation": ""},
			map[string]any{"question": "broken", "options": []any{"a"}, "answer": "a", "category": "x", "difficulty": 1.0, "explanation": ""},
		},
	}}
	g := NewGenerator(logger.Nop(), ai)
	qs, err := g.GenerateQuestions(context.Background(), "Lists", 5)
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[0].Difficulty != 2 {
		t.Fatalf("medium question should open the quiz: %+v", qs[0])
	}
	if !strings.Contains(ai.lastUser, "Lists") {
		t.Fatalf("topic missing from prompt: %s", ai.lastUser)
	}
}

func TestGenerateQuestionsNoneUsable(t *testing.T) {
	g := NewGenerator(logger.Nop(), &fakeAI{json: map[string]any{"questions": []any{}}})
	if _, err := g.GenerateQuestions(context.Background(), "Lists", 5); err == nil {
		t.Fatal("expected error")
	}
}

func TestFeedbackPassesAnalysis(t *testing.T) {
	ai := &fakeAI{text: " Review slicing. "}
	g := NewGenerator(logger.Nop(), ai)
	a := Analysis{Strengths: []string{"syntax"}, Weaknesses: []string{"slicing"}}
	fb, err := g.Feedback(context.Background(), "Lists", a)
	if err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	if fb != "Review slicing." {
		t.Fatalf("feedback=%q", fb)
	}
	if !strings.Contains(ai.lastUser, "Weak categories: slicing") {
		t.Fatalf("weaknesses missing from prompt: %s", ai.lastUser)
	}
}
