package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/orbit-dashboard/orbit/internal/domain"
	jwtinfra "github.com/orbit-dashboard/orbit/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// TokenVerifier checks a bearer's signature and expiry.
type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// SessionAuthorizer confirms the session behind a bearer is still live.
type SessionAuthorizer interface {
	Authorize(ctx context.Context, token string) (*domain.Session, error)
}

// Auth returns middleware that validates the Bearer JWT, checks that its
// session has not been logged out or expired, and injects claims into context.
func Auth(verifier TokenVerifier, sessions SessionAuthorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, domain.KindUnauthorized, "missing or invalid authorization header")
				return
			}
			claims, err := verifier.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, domain.KindUnauthorized, "invalid or expired token")
				return
			}
			sess, err := sessions.Authorize(r.Context(), claims.SessionID)
			switch {
			case errors.Is(err, domain.ErrUnauthorized):
				writeJSONError(w, http.StatusUnauthorized, domain.KindUnauthorized, "session expired")
				return
			case err != nil:
				writeJSONError(w, http.StatusInternalServerError, domain.KindOf(err), "could not check session")
				return
			case sess.AccountID != claims.AccountID:
				writeJSONError(w, http.StatusUnauthorized, domain.KindUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}
