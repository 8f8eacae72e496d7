package web

import (
	"context"
	"net/http"

	"github.com/ai-academy/academy-web/internal/academy"
	"github.com/ai-academy/academy-web/internal/session"
)

type ctxKey struct{}

var ctxKeySession ctxKey

func sessionFrom(ctx context.Context) *session.Session {
	if v := ctx.Value(ctxKeySession); v != nil {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}

// withSession decodes the stored credential once per request. A cookie that
// no longer decodes, or has expired, is cleared on the spot so the browser
// arrives at the next page anonymous rather than half signed in.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, stale := s.sessions.Read(r)
		if stale {
			s.sessions.Clear(w)
		}
		if sess != nil {
			r = r.WithContext(context.WithValue(r.Context(), ctxKeySession, sess))
		}
		next.ServeHTTP(w, r)
	})
}

// guard gates a route on a permission. Anonymous users go to the login
// page; signed-in users lacking the permission go to the dashboard their
// role does have. Raw 401/403 pages are never shown.
func (s *Server) guard(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := sessionFrom(r.Context())
			if sess == nil {
				redirect(w, r, "/login")
				return
			}
			if !s.rbac.Has(string(sess.Role), perm) {
				redirect(w, r, dashboardPath(sess.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// apiFor binds the API client to the request's credential, or leaves it
// anonymous when there is none.
func (s *Server) apiFor(r *http.Request) *academy.Client {
	if sess := sessionFrom(r.Context()); sess != nil {
		return s.api.WithToken(sess.Token)
	}
	return s.api
}
