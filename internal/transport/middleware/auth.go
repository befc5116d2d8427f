package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/pkg/logger"
)

// TokenVerifier turns a bearer token into the request principal.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*internal.Principal, error)
}

// Authentication parses the bearer token once and places the typed
// principal on the request context for every downstream component.
func Authentication(verifier TokenVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			principal, err := verifier.VerifyAccessToken(token)
			if err != nil {
				log.Warn("token verification failed", "error", err, "path", r.URL.Path)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := internal.ContextWithPrincipal(r.Context(), principal)
			ctx = logger.With(ctx, "userID", principal.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}
