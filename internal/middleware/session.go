package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type sessionKey struct{}

// WithSession returns a copy of ctx carrying the cart session id.
func WithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the cart session id set by CartSession.
func SessionFromContext(ctx context.Context) string {
	session, _ := ctx.Value(sessionKey{}).(string)
	return session
}

// CartSession attaches the cart session id from the named cookie to the request
// context, issuing a fresh id when the cookie is missing or malformed. The cookie
// is refreshed on every request so active carts do not expire.
func CartSession(cookieName string, secure bool, ttl time.Duration, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := ""
			if c, err := r.Cookie(cookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					session = c.Value
				}
			}
			if session == "" {
				session = uuid.NewString()
				logger.Debug().Str("session", session).Msg("issued cart session")
			}

			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    session,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}
