// Package session holds the per-browser auth state: a bearer credential
// issued by the course API, decoded locally to learn who is signed in. The
// credential's signature is the issuer's concern; this tier only reads the
// claims and the expiry, mirroring what the API will enforce on each call.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
)

var (
	ErrExpired     = errors.New("session credential expired")
	ErrUnknownRole = errors.New("credential carries no known role")
)

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the decoded identity behind a bearer credential.
type Session struct {
	Token     string
	Username  string
	Role      Role
	ExpiresAt time.Time
}

func (s *Session) IsAdmin() bool   { return s != nil && s.Role == RoleAdmin }
func (s *Session) IsStudent() bool { return s != nil && s.Role == RoleStudent }

// Decode parses the credential without verifying its signature and rejects
// expired or role-less tokens. Callers treat any error as "no session".
func Decode(token string) (*Session, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, ErrExpired
	}
	role := Role(claims.Role)
	if role != RoleAdmin && role != RoleStudent {
		return nil, ErrUnknownRole
	}
	sess := &Session{Token: token, Username: claims.Username, Role: role}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

const (
	tokenCookie = "academy_access_token"
	themeCookie = "academy_theme"
)

// Store reads and writes the two persisted pieces of client state: the
// bearer credential and the theme preference.
type Store struct {
	Secure       bool
	DefaultTheme string
}

func NewStore(secure bool, defaultTheme string) *Store {
	if defaultTheme == "" {
		defaultTheme = "dark"
	}
	return &Store{Secure: secure, DefaultTheme: defaultTheme}
}

// Read returns the session for the request, or nil. stale is true when a
// cookie was present but undecodable or expired, in which case the caller
// must clear it.
func (s *Store) Read(r *http.Request) (sess *Session, stale bool) {
	c, err := r.Cookie(tokenCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	sess, err = Decode(c.Value)
	if err != nil {
		return nil, true
	}
	return sess, false
}

// Write stores the credential. The caller has already validated it against
// the API (a successful /token/ call), so it is stored unconditionally.
func (s *Store) Write(w http.ResponseWriter, token string, expiresAt time.Time) {
	c := &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if !expiresAt.IsZero() {
		c.Expires = expiresAt
	}
	http.SetCookie(w, c)
}

func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Theme returns the stored preference, falling back to the default.
func (s *Store) Theme(r *http.Request) string {
	c, err := r.Cookie(themeCookie)
	if err != nil {
		return s.DefaultTheme
	}
	switch c.Value {
	case "dark", "light":
		return c.Value
	}
	return s.DefaultTheme
}

func (s *Store) WriteTheme(w http.ResponseWriter, theme string) {
	if theme != "dark" && theme != "light" {
		theme = s.DefaultTheme
	}
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    theme,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
