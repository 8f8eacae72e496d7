package web_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ai-academy/academy-web/internal/academy"
	"github.com/ai-academy/academy-web/internal/logging"
	"github.com/ai-academy/academy-web/internal/progress"
	"github.com/ai-academy/academy-web/internal/session"
	"github.com/ai-academy/academy-web/internal/web"
)

/* ---------------- fake course API ---------------- */

func fakeCourse() academy.Course {
	return academy.Course{
		ID:     1,
		Title:  "Astronomy 101",
		Status: academy.StatusPublished,
		Modules: []academy.Module{
			{
				ID: 10, Title: "The Solar System", Type: academy.ModuleContent, Order: 1,
				Lessons: []academy.Lesson{
					{
						ID: 100, Title: "The Sun", Content: "# Our star",
						MCQQuestion:      "What is the Sun?",
						MCQOptions:       []string{"A star", "A planet"},
						MCQCorrectAnswer: "A star",
					},
				},
			},
			{
				ID: 11, Title: "Checkpoint", Type: academy.ModuleAssessment, Order: 2,
				Quiz: &academy.Quiz{
					ID: 200, Title: "Module Quiz",
					Questions: []academy.Question{
						{ID: 1, QuestionText: "Capital of France?", Options: []string{"Paris", "London"}, CorrectAnswer: "Paris"},
						{ID: 2, QuestionText: "Capital of Spain?", Options: []string{"Madrid", "Rome"}, CorrectAnswer: "Madrid"},
					},
				},
			},
		},
	}
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/courses/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/courses/":
			draft := academy.Course{ID: 2, Title: "Unfinished draft", Status: academy.StatusDraft}
			json.NewEncoder(w).Encode([]academy.Course{fakeCourse(), draft})
		case "/courses/1/":
			json.NewEncoder(w).Encode(fakeCourse())
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Not found."}`))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newMutableApp serves the pointed-to course, so a test can edit it
// between requests the way a live admin would.
func newMutableApp(t *testing.T, course *academy.Course) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/courses/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/courses/":
			json.NewEncoder(w).Encode([]academy.Course{*course})
		case "/courses/1/":
			json.NewEncoder(w).Encode(course)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Not found."}`))
		}
	})
	backend := httptest.NewServer(mux)
	t.Cleanup(backend.Close)

	api := academy.NewClient(backend.URL, backend.Client())
	sessions := session.NewStore(false, "dark")
	store := progress.NewMemoryStore()
	srv, err := web.NewServer(api, sessions, store, logging.NewNop(), []string{"http://localhost:3000"})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv.Router()
}

func newApp(t *testing.T) http.Handler {
	t.Helper()
	backend := newBackend(t)
	api := academy.NewClient(backend.URL, backend.Client())
	sessions := session.NewStore(false, "dark")
	store := progress.NewMemoryStore()
	srv, err := web.NewServer(api, sessions, store, logging.NewNop(), []string{"http://localhost:3000"})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv.Router()
}

func sessionCookie(t *testing.T, username, role string) *http.Cookie {
	t.Helper()
	claims := jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return &http.Cookie{Name: "academy_access_token", Value: tok}
}

func do(t *testing.T, app http.Handler, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

/* ---------------- route guarding ---------------- */

func TestAnonymousUserIsSentToLogin(t *testing.T) {
	app := newApp(t)
	for _, target := range []string{"/dashboard/", "/admin/", "/courses/1/"} {
		rec := do(t, app, http.MethodGet, target, nil)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("GET %s = %d, want 303", target, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Fatalf("GET %s redirected to %q, want /login", target, loc)
		}
	}
}

func TestStudentCannotOpenAdminPages(t *testing.T) {
	app := newApp(t)
	rec := do(t, app, http.MethodGet, "/admin/", nil, sessionCookie(t, "bob", "STUDENT"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("code=%d loc=%q, want redirect to /dashboard", rec.Code, rec.Header().Get("Location"))
	}
}

func TestStaleCookieIsClearedAndRedirected(t *testing.T) {
	app := newApp(t)
	rec := do(t, app, http.MethodGet, "/dashboard/", nil, &http.Cookie{Name: "academy_access_token", Value: "garbage"})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("code=%d loc=%q", rec.Code, rec.Header().Get("Location"))
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "academy_access_token" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("stale session cookie was not cleared")
	}
}

/* ---------------- dashboards ---------------- */

func TestAdminDashboardListsAllCourses(t *testing.T) {
	app := newApp(t)
	rec := do(t, app, http.MethodGet, "/admin/", nil, sessionCookie(t, "ada", "ADMIN"))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Astronomy 101") || !strings.Contains(body, "Unfinished draft") {
		t.Fatal("admin dashboard missing courses")
	}
}

func TestStudentDashboardHidesDrafts(t *testing.T) {
	app := newApp(t)
	rec := do(t, app, http.MethodGet, "/dashboard/", nil, sessionCookie(t, "bob", "STUDENT"))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Astronomy 101") {
		t.Fatal("published course missing from student dashboard")
	}
	if strings.Contains(body, "Unfinished draft") {
		t.Fatal("draft course shown to a student")
	}
}

func TestThemeToggleStaysOnSite(t *testing.T) {
	app := newApp(t)
	cases := []struct {
		back string
		want string
	}{
		{"/dashboard/", "/dashboard/"},
		{"//evil.example/phish", "/"},
		{"https://evil.example", "/"},
		{"", "/"},
	}
	for _, tc := range cases {
		rec := do(t, app, http.MethodPost, "/theme", url.Values{"back": {tc.back}})
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("back=%q code = %d", tc.back, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != tc.want {
			t.Fatalf("back=%q redirected to %q, want %q", tc.back, loc, tc.want)
		}
	}
}

/* ---------------- course editor ---------------- */

func TestCourseEditorRendersEveryLevel(t *testing.T) {
	app := newApp(t)
	rec := do(t, app, http.MethodGet, "/admin/courses/1/edit", nil, sessionCookie(t, "ada", "ADMIN"))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Astronomy 101", "The Solar System", "The Sun", "Module Quiz", "Capital of France?"} {
		if !strings.Contains(body, want) {
			t.Fatalf("editor missing %q", want)
		}
	}
}

func TestUpdateCourseFollowsPostRedirectGet(t *testing.T) {
	app := newApp(t)
	form := url.Values{"title": {"Astronomy 102"}, "description": {"Updated"}}
	rec := do(t, app, http.MethodPost, "/admin/courses/1/update", form, sessionCookie(t, "ada", "ADMIN"))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("code = %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/admin/courses/1/edit") || !strings.Contains(loc, "notice=") {
		t.Fatalf("redirected to %q", loc)
	}
}

func TestCreateQuestionRejectsAnswerOutsideOptions(t *testing.T) {
	app := newApp(t)
	form := url.Values{
		"question_text":  {"Capital of Italy?"},
		"options":        {"Rome\nMilan"},
		"correct_answer": {"Madrid"},
	}
	rec := do(t, app, http.MethodPost, "/admin/courses/1/quizzes/200/questions", form, sessionCookie(t, "ada", "ADMIN"))
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "error=") {
		t.Fatalf("invalid question accepted: %q", loc)
	}
}

/* ---------------- course player ---------------- */

func TestPlayerShowsLessonAndSidebar(t *testing.T) {
	app := newApp(t)
	rec := do(t, app, http.MethodGet, "/courses/1/?item=0", nil, sessionCookie(t, "bob", "STUDENT"))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "The Sun") {
		t.Fatal("lesson title missing")
	}
	if !strings.Contains(body, "Our star") {
		t.Fatal("rendered lesson content missing")
	}
	if !strings.Contains(body, "Module Quiz") {
		t.Fatal("sidebar does not list the quiz")
	}
	if !strings.Contains(body, "What is the Sun?") {
		t.Fatal("inline check missing")
	}
}

func TestPlayerShowsQuizAtItsIndex(t *testing.T) {
	app := newApp(t)
	rec := do(t, app, http.MethodGet, "/courses/1/?item=1", nil, sessionCookie(t, "bob", "STUDENT"))
	body := rec.Body.String()
	if !strings.Contains(body, "Capital of France?") {
		t.Fatal("quiz questions missing at item=1")
	}
	if !strings.Contains(body, "Finish Course") {
		t.Fatal("last item should offer Finish Course")
	}
}

func TestQuizSubmitGradesAndLocks(t *testing.T) {
	app := newApp(t)
	student := sessionCookie(t, "bob", "STUDENT")

	form := url.Values{"q1": {"Paris"}, "q2": {"Rome"}}
	rec := do(t, app, http.MethodPost, "/courses/1/quizzes/200/submit", form, student)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("submit code = %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "/courses/1/") || !strings.Contains(loc, "item=1") {
		t.Fatalf("submit redirected to %q", loc)
	}

	rec = do(t, app, http.MethodGet, loc, nil, student)
	body := rec.Body.String()
	if !strings.Contains(body, "50%") {
		t.Fatal("score not shown after submission")
	}
	if !strings.Contains(body, "1 of 2 correct") {
		t.Fatal("result summary missing")
	}

	rec = do(t, app, http.MethodPost, "/courses/1/quizzes/200/submit", url.Values{"q1": {"Paris"}, "q2": {"Madrid"}}, student)
	loc = rec.Header().Get("Location")
	if !strings.Contains(loc, "error=") {
		t.Fatalf("resubmission not refused: %q", loc)
	}

	// the first result stays
	rec = do(t, app, http.MethodGet, "/courses/1/?item=1", nil, student)
	if !strings.Contains(rec.Body.String(), "1 of 2 correct") {
		t.Fatal("later submission replaced the first result")
	}
}

func TestQuizResultsSurviveLaterEdits(t *testing.T) {
	course := fakeCourse()
	app := newMutableApp(t, &course)
	student := sessionCookie(t, "bob", "STUDENT")

	form := url.Values{"q1": {"Paris"}, "q2": {"Rome"}}
	rec := do(t, app, http.MethodPost, "/courses/1/quizzes/200/submit", form, student)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("submit code = %d", rec.Code)
	}

	// an admin extends the quiz while the attempt is on record
	quiz := course.Modules[1].Quiz
	quiz.Questions = append(quiz.Questions, academy.Question{
		ID: 3, QuestionText: "Capital of Italy?", Options: []string{"Rome", "Milan"}, CorrectAnswer: "Rome",
	})

	rec = do(t, app, http.MethodGet, "/courses/1/?item=1", nil, student)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "Internal Server Error") {
		t.Fatal("results page crashed after the quiz grew")
	}
	if !strings.Contains(body, "1 of 2 correct") {
		t.Fatal("recorded result missing")
	}
	if !strings.Contains(body, "Capital of Italy?") {
		t.Fatal("new question missing from results view")
	}
	if !strings.Contains(body, "not graded") {
		t.Fatal("ungraded question not marked as such")
	}
	if !strings.Contains(body, "Finish Course") {
		t.Fatal("page truncated before the pager")
	}
}

func TestCheckSubmitRequiresSelection(t *testing.T) {
	app := newApp(t)
	student := sessionCookie(t, "bob", "STUDENT")

	rec := do(t, app, http.MethodPost, "/courses/1/lessons/100/check", url.Values{}, student)
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "error=") {
		t.Fatalf("empty selection accepted: %q", loc)
	}

	rec = do(t, app, http.MethodPost, "/courses/1/lessons/100/check", url.Values{"mcq": {"A star"}}, student)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("check code = %d", rec.Code)
	}

	rec = do(t, app, http.MethodGet, "/courses/1/?item=0", nil, student)
	if !strings.Contains(rec.Body.String(), "Correct! Well done.") {
		t.Fatal("check feedback not shown")
	}
}
