// Package player turns a nested course document into the linear sequence
// the course viewer steps through, and tracks the current position in it.
package player

import "github.com/ai-academy/academy-web/internal/academy"

type ItemKind string

const (
	KindLesson ItemKind = "lesson"
	KindQuiz   ItemKind = "quiz"
)

// Item is one viewable step: exactly one of Lesson or Quiz is set,
// according to Kind. ModuleID names the owning module so the sidebar can
// group items back under their modules.
type Item struct {
	Kind     ItemKind
	Lesson   *academy.Lesson
	Quiz     *academy.Quiz
	ModuleID int64
}

// Title is the item's display name regardless of kind.
func (it Item) Title() string {
	switch it.Kind {
	case KindLesson:
		return it.Lesson.Title
	case KindQuiz:
		return it.Quiz.Title
	}
	return ""
}

// Flatten builds the ordered sequence of viewable items: modules in course
// order, lessons in lesson order within a CONTENT module, and one quiz item
// per ASSESSMENT module. An ASSESSMENT module whose quiz has not been
// created yet contributes nothing. Pure function of the course document;
// a course with no modules yields an empty sequence.
func Flatten(course *academy.Course) []Item {
	if course == nil {
		return nil
	}
	var items []Item
	for i := range course.Modules {
		mod := &course.Modules[i]
		switch mod.Type {
		case academy.ModuleContent:
			for j := range mod.Lessons {
				items = append(items, Item{
					Kind:     KindLesson,
					Lesson:   &mod.Lessons[j],
					ModuleID: mod.ID,
				})
			}
		case academy.ModuleAssessment:
			if mod.Quiz != nil {
				items = append(items, Item{
					Kind:     KindQuiz,
					Quiz:     mod.Quiz,
					ModuleID: mod.ID,
				})
			}
		}
	}
	return items
}

// IndexOf locates the item of the given kind and id in the flattened
// sequence, -1 when absent. The sidebar uses this to map a lesson or quiz
// back to its global position.
func IndexOf(items []Item, kind ItemKind, id int64) int {
	for i, it := range items {
		if it.Kind != kind {
			continue
		}
		switch kind {
		case KindLesson:
			if it.Lesson.ID == id {
				return i
			}
		case KindQuiz:
			if it.Quiz.ID == id {
				return i
			}
		}
	}
	return -1
}
