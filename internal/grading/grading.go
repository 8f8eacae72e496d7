// Package grading scores module quizzes and lesson inline checks. Grading
// is pure and deterministic: the same quiz and answers always produce the
// same result, and nothing here talks to the network.
package grading

import (
	"errors"
	"fmt"

	"github.com/ai-academy/academy-web/internal/academy"
)

var (
	ErrEmptyQuiz   = errors.New("quiz has no questions")
	ErrNoSelection = errors.New("no answer selected")
)

// passThreshold matches the share of correct answers presented as a pass.
const passThreshold = 0.7

// Verdict is the per-question outcome kept for display after submission.
type Verdict struct {
	QuestionID int64
	Selected   string
	Correct    bool
}

type Result struct {
	CorrectCount int
	Total        int
	Verdicts     []Verdict
}

// Score is the fraction of correct answers, 0 for an empty quiz. GradeQuiz
// refuses empty quizzes, so the zero-denominator case only arises on a
// zero-valued Result.
func (r Result) Score() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.CorrectCount) / float64(r.Total)
}

func (r Result) Passed() bool { return r.Score() >= passThreshold }

// GradeQuiz compares the submitted answers (question id to chosen option
// string) against each question's correct answer. An unanswered question
// counts as wrong. No partial credit, no negative marking.
func GradeQuiz(quiz *academy.Quiz, answers map[int64]string) (Result, error) {
	if quiz == nil || len(quiz.Questions) == 0 {
		return Result{}, ErrEmptyQuiz
	}
	res := Result{
		Total:    len(quiz.Questions),
		Verdicts: make([]Verdict, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		selected := answers[q.ID]
		correct := selected != "" && selected == q.CorrectAnswer
		if correct {
			res.CorrectCount++
		}
		res.Verdicts = append(res.Verdicts, Verdict{
			QuestionID: q.ID,
			Selected:   selected,
			Correct:    correct,
		})
	}
	return res, nil
}

// CheckOutcome is the graded inline lesson check, with the feedback line
// shown under the form.
type CheckOutcome struct {
	Selected string
	Correct  bool
	Feedback string
}

// CheckAnswer grades a lesson's single-choice check. An empty selection is
// a local validation error; no request is made and the form stays open.
func CheckAnswer(selected, correctAnswer string) (CheckOutcome, error) {
	if selected == "" {
		return CheckOutcome{}, ErrNoSelection
	}
	out := CheckOutcome{Selected: selected, Correct: selected == correctAnswer}
	if out.Correct {
		out.Feedback = "Correct! Well done."
	} else {
		out.Feedback = fmt.Sprintf("Not quite. The correct answer is: %q", correctAnswer)
	}
	return out, nil
}
