package middleware

import (
	"context"
	"net/http"
	"strings"

	"wellspring/internal/auth"
	"wellspring/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying the authenticated caller.
func WithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller attached by Authenticate or OptionalAuth.
func PrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*model.Principal)
	return p, ok && p != nil
}

// AdminChecker reports whether a user holds the admin role.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate requires a valid bearer token and attaches its principal.
func Authenticate(verifier auth.Verifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, model.ErrUnauthorised.Message)
				return
			}

			principal, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, model.ErrUnauthorised.Message)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// OptionalAuth attaches the principal of a valid bearer token and lets
// anonymous requests through. A present but invalid token is rejected.
func OptionalAuth(verifier auth.Verifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	required := Authenticate(verifier, logger)
	return func(next http.Handler) http.Handler {
		withAuth := required(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			withAuth.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects callers whose profile lacks the admin role. It must run
// after Authenticate.
func RequireAdmin(checker AdminChecker, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, model.ErrUnauthorised.Message)
				return
			}

			admin, err := checker.IsAdmin(r.Context(), principal.UserID)
			if err != nil {
				logger.Error().Err(err).Str("user_id", principal.UserID.String()).Msg("failed to check admin role")
				writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
				return
			}
			if !admin {
				logger.Warn().
					Str("user_id", principal.UserID.String()).
					Str("path", r.URL.Path).
					Msg("admin access denied")
				writeError(w, http.StatusForbidden, model.ErrCodeForbidden, model.ErrForbidden.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
