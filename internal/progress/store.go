// Package progress remembers what a signed-in user has already submitted,
// so graded quizzes and answered lesson checks stay locked against
// re-submission and keep showing their result. State is process-local:
// a restart forgets it, which matches the session-scoped lock the viewer
// needs.
package progress

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ai-academy/academy-web/internal/grading"
)

type QuizAttempt struct {
	ID          string
	Username    string
	QuizID      int64
	Result      grading.Result
	SubmittedAt time.Time
}

type CheckAttempt struct {
	ID          string
	Username    string
	LessonID    int64
	Outcome     grading.CheckOutcome
	SubmittedAt time.Time
}

// Store records one attempt per (user, quiz) and per (user, lesson check).
// Record calls report false when an attempt already exists; the first
// submission wins and later ones are dropped.
type Store interface {
	RecordQuiz(username string, quizID int64, result grading.Result) (QuizAttempt, bool)
	QuizAttempt(username string, quizID int64) (QuizAttempt, bool)
	RecordCheck(username string, lessonID int64, outcome grading.CheckOutcome) (CheckAttempt, bool)
	CheckAttempt(username string, lessonID int64) (CheckAttempt, bool)
}

type memoryStore struct {
	mu      sync.RWMutex
	quizzes map[attemptKey]QuizAttempt
	checks  map[attemptKey]CheckAttempt
}

type attemptKey struct {
	username string
	id       int64
}

func NewMemoryStore() Store {
	return &memoryStore{
		quizzes: map[attemptKey]QuizAttempt{},
		checks:  map[attemptKey]CheckAttempt{},
	}
}

func (m *memoryStore) RecordQuiz(username string, quizID int64, result grading.Result) (QuizAttempt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := attemptKey{username, quizID}
	if prev, ok := m.quizzes[k]; ok {
		return prev, false
	}
	a := QuizAttempt{
		ID:          uuid.NewString(),
		Username:    username,
		QuizID:      quizID,
		Result:      result,
		SubmittedAt: time.Now(),
	}
	m.quizzes[k] = a
	return a, true
}

func (m *memoryStore) QuizAttempt(username string, quizID int64) (QuizAttempt, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.quizzes[attemptKey{username, quizID}]
	return a, ok
}

func (m *memoryStore) RecordCheck(username string, lessonID int64, outcome grading.CheckOutcome) (CheckAttempt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := attemptKey{username, lessonID}
	if prev, ok := m.checks[k]; ok {
		return prev, false
	}
	a := CheckAttempt{
		ID:          uuid.NewString(),
		Username:    username,
		LessonID:    lessonID,
		Outcome:     outcome,
		SubmittedAt: time.Now(),
	}
	m.checks[k] = a
	return a, true
}

func (m *memoryStore) CheckAttempt(username string, lessonID int64) (CheckAttempt, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.checks[attemptKey{username, lessonID}]
	return a, ok
}
