package academy

import (
	"errors"
	"fmt"
)

type CourseStatus string

const (
	StatusDraft     CourseStatus = "DRAFT"
	StatusPublished CourseStatus = "PUBLISHED"
)

type ModuleType string

const (
	ModuleContent    ModuleType = "CONTENT"
	ModuleAssessment ModuleType = "ASSESSMENT"
)

// Course is the nested document the API returns. It is treated as an
// immutable snapshot: edits go through the API and are observed by
// refetching the whole course.
type Course struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      CourseStatus `json:"status"`
	CreatedBy   string       `json:"created_by,omitempty"`
	Modules     []Module     `json:"modules,omitempty"`
}

// Module is either a CONTENT module owning lessons or an ASSESSMENT module
// owning at most one quiz. Quiz stays nil until the quiz is created.
type Module struct {
	ID      int64      `json:"id"`
	Title   string     `json:"title"`
	Type    ModuleType `json:"module_type"`
	Order   int        `json:"order"`
	Lessons []Lesson   `json:"lessons,omitempty"`
	Quiz    *Quiz      `json:"quiz,omitempty"`
}

type Lesson struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	VideoID string `json:"video_id,omitempty"`

	// Optional single embedded check. All three fields are set together.
	MCQQuestion      string   `json:"mcq_question,omitempty"`
	MCQOptions       []string `json:"mcq_options,omitempty"`
	MCQCorrectAnswer string   `json:"mcq_correct_answer,omitempty"`
}

// HasCheck reports whether the lesson carries an inline check.
func (l Lesson) HasCheck() bool { return l.MCQQuestion != "" }

type Quiz struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

type Question struct {
	ID            int64    `json:"id"`
	QuestionText  string   `json:"question_text"`
	Order         int      `json:"order,omitempty"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

var ErrAnswerNotAnOption = errors.New("correct answer is not one of the options")

// ValidateQuestionChoices enforces at write time that the correct answer is
// one of the option strings. The API tolerates a mismatch, which makes a
// question unanswerable, so the editor refuses to save one.
func ValidateQuestionChoices(options []string, correctAnswer string) error {
	if len(options) == 0 {
		return errors.New("question needs at least one option")
	}
	for _, opt := range options {
		if opt == correctAnswer {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrAnswerNotAnOption, correctAnswer)
}
