package quizgen

import (
	"errors"
	"sort"
	"strings"

	"github.com/yungbote/pylearn-backend/internal/domain/learning"
	"github.com/yungbote/pylearn-backend/internal/domain/session"
)

const (
	// A category at or above StrengthThreshold is a strength; below WeaknessThreshold a weakness.
	StrengthThreshold = 0.7
	WeaknessThreshold = 0.5

	minDifficulty = 1
	maxDifficulty = 3
)

var (
	ErrNotStarted    = errors.New("quiz not started")
	ErrCompleted     = errors.New("quiz already completed")
	ErrNotCurrent    = errors.New("question is not the current question")
	ErrInvalidAnswer = errors.New("answer is not one of the options")
	ErrNotCompleted  = errors.New("quiz not completed")
)

type SubmitResult struct {
	Correct   bool
	Answer    string
	Completed bool
}

// Submit records the answer for the current question, scores it, tallies its category
// and moves to the next question. After a correct answer the hardest remaining question
// comes next, after a wrong one the easiest.
func Submit(st *session.State, index int, answer string) (SubmitResult, error) {
	if len(st.Questions) == 0 {
		return SubmitResult{}, ErrNotStarted
	}
	if st.Completed {
		return SubmitResult{}, ErrCompleted
	}
	if index != st.CurrentQuestion || index < 0 || index >= len(st.Questions) {
		return SubmitResult{}, ErrNotCurrent
	}
	q := st.Questions[index]
	selected, ok := matchOption(q.Options, answer)
	if !ok {
		return SubmitResult{}, ErrInvalidAnswer
	}

	if st.Answers == nil {
		st.Answers = map[int]string{}
	}
	if st.QuestionCategories == nil {
		st.QuestionCategories = map[string]session.CategoryTally{}
	}
	st.Answers[index] = selected

	correct := selected == q.Answer
	tally := st.QuestionCategories[q.Category]
	tally.Total++
	if correct {
		st.Score++
		tally.Correct++
	}
	st.QuestionCategories[q.Category] = tally

	next := index + 1
	if next >= len(st.Questions) {
		st.Completed = true
	} else {
		promoteNext(st.Questions, next, correct)
		st.CurrentQuestion = next
	}
	return SubmitResult{Correct: correct, Answer: selected, Completed: st.Completed}, nil
}

// promoteNext swaps the hardest (or easiest) question among questions[from:] into position from.
// Ties keep the earliest question.
func promoteNext(qs []session.Question, from int, harder bool) {
	best := from
	for i := from + 1; i < len(qs); i++ {
		if harder && qs[i].Difficulty > qs[best].Difficulty {
			best = i
		}
		if !harder && qs[i].Difficulty < qs[best].Difficulty {
			best = i
		}
	}
	qs[from], qs[best] = qs[best], qs[from]
}

// OrderForStart puts a medium question first so the first answer can move either way.
func OrderForStart(qs []session.Question) {
	for i, q := range qs {
		if q.Difficulty == 2 {
			qs[0], qs[i] = qs[i], qs[0]
			return
		}
	}
}

func matchOption(options []string, answer string) (string, bool) {
	a := strings.TrimSpace(answer)
	for _, o := range options {
		if o == a {
			return o, true
		}
	}
	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), a) {
			return o, true
		}
	}
	return "", false
}

type CategoryPerformance struct {
	Category string  `json:"category"`
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Ratio    float64 `json:"ratio"`
}

type Analysis struct {
	Performance []CategoryPerformance `json:"performance"`
	Strengths   []string              `json:"strengths"`
	Weaknesses  []string              `json:"weaknesses"`
}

// Analyze classifies each answered category, ordered by category name.
func Analyze(categories map[string]session.CategoryTally) Analysis {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	a := Analysis{
		Performance: make([]CategoryPerformance, 0, len(names)),
		Strengths:   []string{},
		Weaknesses:  []string{},
	}
	for _, name := range names {
		t := categories[name]
		if t.Total <= 0 {
			continue
		}
		ratio := float64(t.Correct) / float64(t.Total)
		a.Performance = append(a.Performance, CategoryPerformance{Category: name, Correct: t.Correct, Total: t.Total, Ratio: ratio})
		switch {
		case ratio >= StrengthThreshold:
			a.Strengths = append(a.Strengths, name)
		case ratio < WeaknessThreshold:
			a.Weaknesses = append(a.Weaknesses, name)
		}
	}
	return a
}

// Detail lists every question with the stored answer, in presentation order.
func Detail(st *session.State) []learning.QuestionResult {
	out := make([]learning.QuestionResult, 0, len(st.Questions))
	for i, q := range st.Questions {
		selected := st.Answers[i]
		out = append(out, learning.QuestionResult{
			Question:   q.Question,
			Category:   q.Category,
			Difficulty: q.Difficulty,
			Selected:   selected,
			Correct:    q.Answer,
			IsCorrect:  selected != "" && selected == q.Answer,
		})
	}
	return out
}
