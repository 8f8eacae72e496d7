package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ai-academy/academy-web/internal/session"
)

type homePage struct {
	base
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, "home.html", homePage{base: s.page(r, "AI Academy")})
}

type authPage struct {
	base
	Username string
	Email    string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess := sessionFrom(r.Context()); sess != nil {
		redirect(w, r, dashboardPath(sess.Role))
		return
	}
	s.render(w, "login.html", authPage{base: s.page(r, "Sign in")})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		s.renderLoginError(w, r, username, "Username and password are required.")
		return
	}

	token, err := s.api.Login(r.Context(), username, password)
	if err != nil {
		s.renderLoginError(w, r, username, err.Error())
		return
	}

	sess, err := session.Decode(token)
	if err != nil {
		s.log.Warn("token from API did not decode", "err", err)
		s.renderLoginError(w, r, username, "Sign-in succeeded but the session could not be established.")
		return
	}

	s.sessions.Write(w, token, sess.ExpiresAt)
	redirect(w, r, dashboardPath(sess.Role))
}

func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, username, msg string) {
	page := authPage{base: s.page(r, "Sign in"), Username: username}
	page.Error = msg
	s.render(w, "login.html", page)
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	if sess := sessionFrom(r.Context()); sess != nil {
		redirect(w, r, dashboardPath(sess.Role))
		return
	}
	s.render(w, "signup.html", authPage{base: s.page(r, "Create account")})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	page := authPage{base: s.page(r, "Create account"), Username: username, Email: email}
	switch {
	case username == "" || email == "" || password == "":
		page.Error = "All fields are required."
	case !strings.Contains(email, "@"):
		page.Error = "Enter a valid email address."
	case len(password) < 8:
		page.Error = "Password must be at least 8 characters."
	}
	if page.Error != "" {
		s.render(w, "signup.html", page)
		return
	}

	if err := s.api.Register(r.Context(), username, email, password); err != nil {
		page.Error = err.Error()
		s.render(w, "signup.html", page)
		return
	}
	redirectNotice(w, r, "/login", "Account created. Sign in to get started.")
}

// handleLogout clears the session and lands on the anonymous home page.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	redirect(w, r, "/")
}

// handleTheme flips the stored theme and returns to the page the toggle
// was pressed on.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	next := "dark"
	if s.sessions.Theme(r) == "dark" {
		next = "light"
	}
	s.sessions.WriteTheme(w, next)

	// Only same-site paths: "//host" is scheme-relative and would leave
	// the site, so it is rejected along with anything non-rooted.
	back := r.FormValue("back")
	if back == "" || !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") {
		back = "/"
	}
	if u, err := url.Parse(back); err != nil || u.Host != "" {
		back = "/"
	}
	redirect(w, r, back)
}
