package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodify/internal/auth"
)

// SessionCookie is the name of the session identifier cookie.
const SessionCookie = "moodify_session"

type contextKey string

const sessionKey contextKey = "session"

// SessionFrom extracts the session placed in the request context by
// [WithSessions]. The second return is false for requests that bypassed the
// middleware.
func SessionFrom(ctx context.Context) (*auth.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*auth.Session)
	return sess, ok
}

// WithSessions resolves the request's session from its cookie, creating a new
// session (and setting the cookie) when none exists or the old one expired.
func WithSessions(store *auth.SessionStore, logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *auth.Session

			if cookie, err := r.Cookie(SessionCookie); err == nil {
				if existing, ok := store.Get(cookie.Value); ok {
					sess = existing
				}
			}

			if sess == nil {
				created, err := store.Create()
				if err != nil {
					logger.Error("failed to create session", "error", err)
					http.Error(w, "session unavailable", http.StatusInternalServerError)
					return
				}
				sess = created
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// LogRequests logs method, path, status, and duration for every request.
func LogRequests(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}
