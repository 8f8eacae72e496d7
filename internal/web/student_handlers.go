package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ai-academy/academy-web/internal/academy"
	"github.com/ai-academy/academy-web/internal/grading"
	"github.com/ai-academy/academy-web/internal/player"
	"github.com/ai-academy/academy-web/internal/progress"
	"github.com/ai-academy/academy-web/internal/session"
)

type studentDashboardPage struct {
	base
	Courses []academy.Course
}

// handleStudentDashboard lists published courses only; drafts stay
// invisible to learners until an author publishes them.
func (s *Server) handleStudentDashboard(w http.ResponseWriter, r *http.Request) {
	page := studentDashboardPage{base: s.page(r, "My Dashboard")}
	courses, err := s.apiFor(r).ListCourses(r.Context())
	if err != nil {
		page.Error = err.Error()
	}
	for _, c := range courses {
		if c.Status == academy.StatusPublished {
			page.Courses = append(page.Courses, c)
		}
	}
	s.render(w, "student_dashboard.html", page)
}

/* ---------------- course player ---------------- */

type sidebarItem struct {
	Index  int
	Title  string
	IsQuiz bool
	Active bool
	URL    string
}

type sidebarModule struct {
	Title string
	Items []sidebarItem
}

// quizVerdict is the per-question outcome resolved for display. Graded is
// false for a question added to the quiz after the attempt was recorded.
type quizVerdict struct {
	Selected string
	Correct  bool
	Graded   bool
}

type playerPage struct {
	base
	Course  *academy.Course
	Sidebar []sidebarModule

	HasCurrent bool
	Index      int
	Total      int

	Lesson       *academy.Lesson
	CheckAttempt *progress.CheckAttempt
	CheckLocked  bool

	Quiz         *academy.Quiz
	QuizAttempt  *progress.QuizAttempt
	QuizLocked   bool
	QuizVerdicts map[int64]quizVerdict

	PrevURL string
	NextURL string
	AtEnd   bool
}

func playerPath(courseID int64, index int) string {
	return fmt.Sprintf("/courses/%d/?item=%d", courseID, index)
}

// playerRedirect is redirectErr for player URLs, which already carry the
// item index in the query string.
func playerRedirect(w http.ResponseWriter, r *http.Request, courseID int64, index int, errMsg string) {
	target := playerPath(courseID, index)
	if errMsg != "" {
		target += "&error=" + url.QueryEscape(errMsg)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// loadCourse fetches the course for a player route and refuses drafts for
// anyone who cannot author them.
func (s *Server) loadCourse(r *http.Request) (*academy.Course, error) {
	courseID, err := pathID(r, "courseID")
	if err != nil {
		return nil, err
	}
	course, err := s.apiFor(r).GetCourse(r.Context(), courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, errors.New("Course not found.")
	}
	if course.Status != academy.StatusPublished {
		sess := sessionFrom(r.Context())
		if sess == nil || sess.Role != session.RoleAdmin {
			return nil, errors.New("Course not found.")
		}
	}
	return course, nil
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	course, err := s.loadCourse(r)
	if err != nil {
		redirectErr(w, r, "/dashboard", err)
		return
	}
	sess := sessionFrom(r.Context())

	items := player.Flatten(course)
	nav := player.NewNavigator(items)
	if idx, err := strconv.Atoi(r.URL.Query().Get("item")); err == nil {
		nav.Select(idx)
	}

	page := playerPage{
		base:   s.page(r, course.Title),
		Course: course,
		Index:  nav.Index(),
		Total:  nav.Len(),
		AtEnd:  nav.AtEnd(),
	}

	cur, ok := nav.Current()
	page.HasCurrent = ok
	if ok {
		switch cur.Kind {
		case player.KindLesson:
			page.Lesson = cur.Lesson
			if a, found := s.progress.CheckAttempt(sess.Username, cur.Lesson.ID); found {
				page.CheckAttempt = &a
				page.CheckLocked = true
			}
		case player.KindQuiz:
			page.Quiz = cur.Quiz
			if a, found := s.progress.QuizAttempt(sess.Username, cur.Quiz.ID); found {
				page.QuizAttempt = &a
				page.QuizLocked = true
				// Keyed by question id, not position: the quiz may have
				// gained or lost questions since the attempt was graded.
				page.QuizVerdicts = make(map[int64]quizVerdict, len(a.Result.Verdicts))
				for _, v := range a.Result.Verdicts {
					page.QuizVerdicts[v.QuestionID] = quizVerdict{
						Selected: v.Selected,
						Correct:  v.Correct,
						Graded:   true,
					}
				}
			}
		}
		if !nav.AtStart() {
			page.PrevURL = playerPath(course.ID, nav.Index()-1)
		}
		if !nav.AtEnd() {
			page.NextURL = playerPath(course.ID, nav.Index()+1)
		}
	}

	// Group the flat sequence back under its modules for the sidebar,
	// keeping the global index so every entry links straight to its item.
	for _, mod := range course.Modules {
		sm := sidebarModule{Title: mod.Title}
		for i, it := range items {
			if it.ModuleID != mod.ID {
				continue
			}
			sm.Items = append(sm.Items, sidebarItem{
				Index:  i,
				Title:  it.Title(),
				IsQuiz: it.Kind == player.KindQuiz,
				Active: ok && i == nav.Index(),
				URL:    playerPath(course.ID, i),
			})
		}
		page.Sidebar = append(page.Sidebar, sm)
	}

	s.render(w, "course_player.html", page)
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	course, err := s.loadCourse(r)
	if err != nil {
		redirectErr(w, r, "/dashboard", err)
		return
	}
	quizID, err := pathID(r, "quizID")
	if err != nil {
		redirectErr(w, r, "/dashboard", err)
		return
	}
	sess := sessionFrom(r.Context())

	items := player.Flatten(course)
	idx := player.IndexOf(items, player.KindQuiz, quizID)
	if idx < 0 {
		playerRedirect(w, r, course.ID, 0, "Quiz not found in this course.")
		return
	}
	quiz := items[idx].Quiz

	if _, found := s.progress.QuizAttempt(sess.Username, quizID); found {
		playerRedirect(w, r, course.ID, idx, "You have already submitted this quiz.")
		return
	}

	if err := r.ParseForm(); err != nil {
		playerRedirect(w, r, course.ID, idx, "Could not read your answers.")
		return
	}
	answers := make(map[int64]string, len(quiz.Questions))
	for _, q := range quiz.Questions {
		if v := r.PostFormValue("q" + strconv.FormatInt(q.ID, 10)); v != "" {
			answers[q.ID] = v
		}
	}

	result, err := grading.GradeQuiz(quiz, answers)
	if err != nil {
		playerRedirect(w, r, course.ID, idx, err.Error())
		return
	}
	attempt, first := s.progress.RecordQuiz(sess.Username, quizID, result)
	if !first {
		s.log.Info("quiz resubmission dropped", "user", sess.Username, "quiz", quizID, "attempt", attempt.ID)
	}
	playerRedirect(w, r, course.ID, idx, "")
}

func (s *Server) handleSubmitCheck(w http.ResponseWriter, r *http.Request) {
	course, err := s.loadCourse(r)
	if err != nil {
		redirectErr(w, r, "/dashboard", err)
		return
	}
	lessonID, err := pathID(r, "lessonID")
	if err != nil {
		redirectErr(w, r, "/dashboard", err)
		return
	}
	sess := sessionFrom(r.Context())

	items := player.Flatten(course)
	idx := player.IndexOf(items, player.KindLesson, lessonID)
	if idx < 0 {
		playerRedirect(w, r, course.ID, 0, "Lesson not found in this course.")
		return
	}
	lesson := items[idx].Lesson
	if !lesson.HasCheck() {
		playerRedirect(w, r, course.ID, idx, "This lesson has no question to answer.")
		return
	}

	if _, found := s.progress.CheckAttempt(sess.Username, lessonID); found {
		playerRedirect(w, r, course.ID, idx, "You have already answered this question.")
		return
	}

	outcome, err := grading.CheckAnswer(r.FormValue("mcq"), lesson.MCQCorrectAnswer)
	if err != nil {
		// Nothing is recorded on an empty selection; the form stays open.
		playerRedirect(w, r, course.ID, idx, "Please select an answer.")
		return
	}
	s.progress.RecordCheck(sess.Username, lessonID, outcome)
	playerRedirect(w, r, course.ID, idx, "")
}
