package web

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ai-academy/academy-web/internal/academy"
)

type adminDashboardPage struct {
	base
	Courses []academy.Course
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	page := adminDashboardPage{base: s.page(r, "Admin Dashboard")}
	courses, err := s.apiFor(r).ListCourses(r.Context())
	if err != nil {
		page.Error = err.Error()
	}
	page.Courses = courses
	s.render(w, "admin_dashboard.html", page)
}

func (s *Server) handleGenerateCourse(w http.ResponseWriter, r *http.Request) {
	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		redirectErr(w, r, "/admin", errors.New("Course topic is required."))
		return
	}
	req := academy.GenerateCourseRequest{
		Prompt:              prompt,
		NumContentModules:   formCount(r, "num_content_modules", 3),
		NumLessonsPerModule: formCount(r, "num_lessons_per_module", 3),
		NumTestModules:      formCount(r, "num_test_modules", 1),
	}

	// Generation can take minutes; the request blocks until the course
	// exists or the backend reports an error.
	course, err := s.apiFor(r).GenerateCourse(r.Context(), req)
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	if course == nil {
		redirectNotice(w, r, "/admin", "Course generated.")
		return
	}
	redirectNotice(w, r, editPath(course.ID), "Course generated.")
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "courseID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	back := editPath(id)

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		redirectErr(w, r, back, errors.New("Course title cannot be empty."))
		return
	}
	description := strings.TrimSpace(r.FormValue("description"))
	patch := academy.CoursePatch{Title: &title, Description: &description}
	if _, err := s.apiFor(r).UpdateCourse(r.Context(), id, patch); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	redirectNotice(w, r, back, "Course updated.")
}

func (s *Server) handlePublishCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "courseID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	if _, err := s.apiFor(r).PublishCourse(r.Context(), id); err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	redirectNotice(w, r, "/admin", "Course published.")
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "courseID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	if err := s.apiFor(r).DeleteCourse(r.Context(), id); err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	redirectNotice(w, r, "/admin", "Course deleted.")
}

/* ---------------- course editor ---------------- */

type editorModule struct {
	academy.Module
	NextLessonOrder   int
	NextQuestionOrder int
}

type courseEditorPage struct {
	base
	Course          *academy.Course
	Modules         []editorModule
	NextModuleOrder int
}

func (s *Server) handleCourseEditor(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "courseID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	course, err := s.apiFor(r).GetCourse(r.Context(), courseID)
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	if course == nil {
		redirectErr(w, r, "/admin", errors.New("Course not found."))
		return
	}

	page := courseEditorPage{
		base:            s.page(r, "Editing: "+course.Title),
		Course:          course,
		NextModuleOrder: len(course.Modules) + 1,
	}
	for _, m := range course.Modules {
		em := editorModule{Module: m, NextLessonOrder: len(m.Lessons) + 1}
		if m.Quiz != nil {
			em.NextQuestionOrder = len(m.Quiz.Questions) + 1
		} else {
			em.NextQuestionOrder = 1
		}
		page.Modules = append(page.Modules, em)
	}
	s.render(w, "admin_course_edit.html", page)
}

func (s *Server) handleGenerateModule(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "courseID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	back := editPath(courseID)

	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		redirectErr(w, r, back, errors.New("Module topic is required."))
		return
	}
	moduleType := moduleTypeFromForm(r)
	if _, err := s.apiFor(r).GenerateModule(r.Context(), courseID, prompt, moduleType); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	redirectNotice(w, r, back, "Module generated.")
}

func (s *Server) handleCreateModule(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "courseID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	back := editPath(courseID)

	moduleType := moduleTypeFromForm(r)
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		if moduleType == academy.ModuleAssessment {
			title = "New Test Module"
		} else {
			title = "New Content Module"
		}
	}
	order := formCount(r, "order", 1)
	if _, err := s.apiFor(r).CreateModule(r.Context(), courseID, title, order, moduleType); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	redirect(w, r, back)
}

func (s *Server) handleUpdateModule(w http.ResponseWriter, r *http.Request) {
	_, moduleID, back, err := editorIDs(r, "moduleID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		redirectErr(w, r, back, errors.New("Module title cannot be empty."))
		return
	}
	if _, err := s.apiFor(r).UpdateModule(r.Context(), moduleID, academy.ModulePatch{Title: &title}); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	redirect(w, r, back)
}

func (s *Server) handleDeleteModule(w http.ResponseWriter, r *http.Request) {
	_, moduleID, back, err := editorIDs(r, "moduleID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	if err := s.apiFor(r).DeleteModule(r.Context(), moduleID); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	redirect(w, r, back)
}

func (s *Server) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	_, moduleID, back, err := editorIDs(r, "moduleID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = "New Lesson"
	}
	order := formCount(r, "order", 1)
	content := "<p>Start writing your lesson content here...</p>"
	if _, err := s.apiFor(r).CreateLesson(r.Context(), moduleID, title, order, content); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	redirect(w, r, back)
}

func (s *Server) handleUpdateLesson(w http.ResponseWriter, r *http.Request) {
	_, lessonID, back, err := editorIDs(r, "lessonID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		redirectErr(w, r, back, errors.New("Lesson title cannot be empty."))
		return
	}
	content := r.FormValue("content")
	videoID := youtubeID(strings.TrimSpace(r.FormValue("video_id")))
	patch := academy.LessonPatch{Title: &title, Content: &content, VideoID: &videoID}

	// The inline check is all-or-nothing: a question needs options and a
	// correct answer drawn from them.
	mcqQuestion := strings.TrimSpace(r.FormValue("mcq_question"))
	if mcqQuestion != "" {
		options := splitLines(r.FormValue("mcq_options"))
		correct := strings.TrimSpace(r.FormValue("mcq_correct_answer"))
		if err := academy.ValidateQuestionChoices(options, correct); err != nil {
			redirectErr(w, r, back, err)
			return
		}
		patch.MCQQuestion = &mcqQuestion
		patch.MCQOptions = &options
		patch.MCQCorrectAnswer = &correct
	}

	if _, err := s.apiFor(r).UpdateLesson(r.Context(), lessonID, patch); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	redirectNotice(w, r, back, "Lesson saved.")
}

func (s *Server) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	_, lessonID, back, err := editorIDs(r, "lessonID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	if err := s.apiFor(r).DeleteLesson(r.Context(), lessonID); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	redirect(w, r, back)
}

func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	_, moduleID, back, err := editorIDs(r, "moduleID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = "Module Quiz"
	}
	if _, err := s.apiFor(r).CreateQuiz(r.Context(), moduleID, title); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	redirect(w, r, back)
}

func (s *Server) handleUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	_, quizID, back, err := editorIDs(r, "quizID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		redirectErr(w, r, back, errors.New("Quiz title cannot be empty."))
		return
	}
	if _, err := s.apiFor(r).UpdateQuiz(r.Context(), quizID, academy.QuizPatch{Title: &title}); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	redirect(w, r, back)
}

func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	_, quizID, back, err := editorIDs(r, "quizID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}

	text := strings.TrimSpace(r.FormValue("question_text"))
	if text == "" {
		redirectErr(w, r, back, errors.New("Question text is required."))
		return
	}
	options := splitLines(r.FormValue("options"))
	correct := strings.TrimSpace(r.FormValue("correct_answer"))
	if err := academy.ValidateQuestionChoices(options, correct); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	order := formCount(r, "order", 1)
	if _, err := s.apiFor(r).CreateQuestion(r.Context(), quizID, text, order, options, correct); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	redirect(w, r, back)
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	_, questionID, back, err := editorIDs(r, "questionID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}

	text := strings.TrimSpace(r.FormValue("question_text"))
	if text == "" {
		redirectErr(w, r, back, errors.New("Question text is required."))
		return
	}
	options := splitLines(r.FormValue("options"))
	correct := strings.TrimSpace(r.FormValue("correct_answer"))
	if err := academy.ValidateQuestionChoices(options, correct); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	patch := academy.QuestionPatch{QuestionText: &text, Options: &options, CorrectAnswer: &correct}
	if _, err := s.apiFor(r).UpdateQuestion(r.Context(), questionID, patch); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	redirect(w, r, back)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	_, questionID, back, err := editorIDs(r, "questionID")
	if err != nil {
		redirectErr(w, r, "/admin", err)
		return
	}
	if err := s.apiFor(r).DeleteQuestion(r.Context(), questionID); err != nil {
		redirectErr(w, r, back, err)
		return
	}
	redirect(w, r, back)
}

/* ---------------- helpers ---------------- */

func editPath(courseID int64) string {
	return "/admin/courses/" + strconv.FormatInt(courseID, 10) + "/edit"
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id in URL")
	}
	return id, nil
}

// editorIDs pulls the course id plus one resource id out of an editor
// route and precomputes the redirect target.
func editorIDs(r *http.Request, name string) (courseID, resourceID int64, back string, err error) {
	courseID, err = pathID(r, "courseID")
	if err != nil {
		return 0, 0, "", err
	}
	resourceID, err = pathID(r, name)
	if err != nil {
		return 0, 0, "", err
	}
	return courseID, resourceID, editPath(courseID), nil
}

func moduleTypeFromForm(r *http.Request) academy.ModuleType {
	if r.FormValue("module_type") == string(academy.ModuleAssessment) {
		return academy.ModuleAssessment
	}
	return academy.ModuleContent
}

func formCount(r *http.Request, field string, def int) int {
	v, err := strconv.Atoi(r.FormValue(field))
	if err != nil || v < 1 {
		return def
	}
	return v
}

var youtubeURLPattern = regexp.MustCompile(
	`(?:https?://)?(?:www\.)?(?:youtube\.com/(?:[^/\n\s]+/\S+/|(?:v|e(?:mbed)?)/|\S*?[?&]v=)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// youtubeID accepts either a bare video id or a pasted YouTube URL and
// stores just the 11-character id. Anything unrecognized passes through
// unchanged.
func youtubeID(s string) string {
	if m := youtubeURLPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}
