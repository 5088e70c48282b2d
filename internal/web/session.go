package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/radial/internal/core"
	"github.com/JonMunkholm/radial/internal/logging"
)

type ctxKey int

const sessionCtxKey ctxKey = iota

// withSession attaches the browser's chart session to the request, creating
// one (and its cookie) when the cookie is missing or the session expired.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			id = c.Value
		}

		sess, created := s.service.SessionOrNew(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Session.CookieName,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(s.cfg.Session.TTL.Seconds()),
				HttpOnly: true,
				Secure:   s.cfg.Security.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey, sess)
		ctx = logging.ContextWithSession(ctx, sess.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session attached by withSession.
func sessionFrom(r *http.Request) *core.Session {
	sess, _ := r.Context().Value(sessionCtxKey).(*core.Session)
	return sess
}

// clientIP returns the host part of RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
