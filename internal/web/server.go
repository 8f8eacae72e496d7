// Package web serves the HTML frontend: dashboards for course authors,
// the editor, and the student course viewer. Every page is rendered
// server-side from the latest API state; mutations POST here, call the
// course API, and redirect back to a fresh GET so the page never shows a
// locally mutated course document.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ai-academy/academy-web/internal/academy"
	"github.com/ai-academy/academy-web/internal/logging"
	"github.com/ai-academy/academy-web/internal/progress"
	"github.com/ai-academy/academy-web/internal/rbac"
	"github.com/ai-academy/academy-web/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

type Server struct {
	api       *academy.Client
	sessions  *session.Store
	progress  progress.Store
	rbac      *rbac.Checker
	log       *logging.Logger
	templates *template.Template

	corsOrigins []string
}

func NewServer(api *academy.Client, sessions *session.Store, store progress.Store, log *logging.Logger, corsOrigins []string) (*Server, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			// Lesson bodies arrive as trusted rich text from the course
			// API and may already be HTML.
			html.WithUnsafe(),
		),
	)

	funcMap := template.FuncMap{
		"richtext": func(s string) template.HTML {
			var buf bytes.Buffer
			if err := md.Convert([]byte(s), &buf); err != nil {
				return template.HTML("<p>could not render content</p>")
			}
			return template.HTML(buf.String())
		},
		"add":  func(a, b int) int { return a + b },
		"pct":  func(f float64) int { return int(f * 100) },
		"join": func(ss []string, sep string) string { return strings.Join(ss, sep) },
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		api:         api,
		sessions:    sessions,
		progress:    store,
		rbac:        rbac.NewChecker(nil),
		log:         log,
		templates:   tmpl,
		corsOrigins: corsOrigins,
	}, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(s.withSession)

	staticSub, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	r.Get("/", s.handleHome)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Get("/signup", s.handleSignupPage)
	r.Post("/signup", s.handleSignup)
	r.Post("/logout", s.handleLogout)
	r.Post("/theme", s.handleTheme)

	r.Route("/admin", func(ar chi.Router) {
		ar.Use(s.guard("course:author"))
		ar.Get("/", s.handleAdminDashboard)
		ar.With(s.guard("generate:course")).Post("/courses/generate", s.handleGenerateCourse)
		ar.Route("/courses/{courseID}", func(cr chi.Router) {
			cr.Post("/update", s.handleUpdateCourse)
			cr.Post("/publish", s.handlePublishCourse)
			cr.Post("/delete", s.handleDeleteCourse)
			cr.Get("/edit", s.handleCourseEditor)
			cr.With(s.guard("generate:module")).Post("/modules/generate", s.handleGenerateModule)
			cr.Post("/modules", s.handleCreateModule)
			cr.Post("/modules/{moduleID}/update", s.handleUpdateModule)
			cr.Post("/modules/{moduleID}/delete", s.handleDeleteModule)
			cr.Post("/modules/{moduleID}/lessons", s.handleCreateLesson)
			cr.Post("/modules/{moduleID}/quiz", s.handleCreateQuiz)
			cr.Post("/lessons/{lessonID}/update", s.handleUpdateLesson)
			cr.Post("/lessons/{lessonID}/delete", s.handleDeleteLesson)
			cr.Post("/quizzes/{quizID}/update", s.handleUpdateQuiz)
			cr.Post("/quizzes/{quizID}/questions", s.handleCreateQuestion)
			cr.Post("/questions/{questionID}/update", s.handleUpdateQuestion)
			cr.Post("/questions/{questionID}/delete", s.handleDeleteQuestion)
		})
	})

	r.Route("/dashboard", func(sr chi.Router) {
		sr.Use(s.guard("course:learn"))
		sr.Get("/", s.handleStudentDashboard)
	})
	r.Route("/courses/{courseID}", func(sr chi.Router) {
		sr.Use(s.guard("course:learn"))
		sr.Get("/", s.handlePlayer)
		sr.Post("/quizzes/{quizID}/submit", s.handleSubmitQuiz)
		sr.Post("/lessons/{lessonID}/check", s.handleSubmitCheck)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	return r
}

/* ---------------- rendering helpers ---------------- */

// base carries the fields every page template reads. Error and Notice come
// back through query params after a redirect so messages survive the
// POST-redirect-GET cycle.
type base struct {
	Title   string
	Theme   string
	Session *session.Session
	Error   string
	Notice  string
	Path    string
	Now     time.Time
}

func (s *Server) page(r *http.Request, title string) base {
	return base{
		Title:   title,
		Theme:   s.sessions.Theme(r),
		Session: sessionFrom(r.Context()),
		Error:   r.URL.Query().Get("error"),
		Notice:  r.URL.Query().Get("notice"),
		Path:    r.URL.RequestURI(),
		Now:     time.Now(),
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("render template", "template", name, "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectErr sends the user back with the failure message inline on the
// destination page. API errors surface their message verbatim.
func redirectErr(w http.ResponseWriter, r *http.Request, path string, err error) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
}

func redirectNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	http.Redirect(w, r, path+"?notice="+url.QueryEscape(notice), http.StatusSeeOther)
}

func dashboardPath(role session.Role) string {
	if role == session.RoleAdmin {
		return "/admin"
	}
	return "/dashboard"
}
