package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lazypos/admin-api/internal"
)

// Authorizer decides whether a principal may invoke a controller action.
type Authorizer interface {
	Allow(ctx context.Context, principal *internal.Principal, controller, action string) (bool, error)
}

// RequireAllow gates a route on the permission behind controller/action.
// It must run after Authentication so the principal is on the context.
func RequireAllow(authorizer Authorizer, log *slog.Logger, controller, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			allowed, err := authorizer.Allow(r.Context(), principal, controller, action)
			if err != nil {
				log.Error("permission check failed",
					"error", err,
					"user_id", principal.UserID,
					"controller", controller,
					"action", action)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if !allowed {
				log.Warn("access denied",
					"user_id", principal.UserID,
					"controller", controller,
					"action", action)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
