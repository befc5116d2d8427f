package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/lazypos/admin-api/internal/auth"
	"github.com/lazypos/admin-api/internal/department"
	"github.com/lazypos/admin-api/internal/notification"
	"github.com/lazypos/admin-api/internal/permission"
	"github.com/lazypos/admin-api/internal/role"
	"github.com/lazypos/admin-api/internal/team"
	"github.com/lazypos/admin-api/internal/transport/middleware"
	"github.com/lazypos/admin-api/internal/transport/swagger"
	"github.com/lazypos/admin-api/internal/user"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Role         *role.Handler
	Team         *team.Handler
	Department   *department.Handler
	Permission   *permission.Handler
	Notification *notification.Handler
	Utility      *UtilityHandler
}

// RegisterAllRoutes mounts the API under /api/v1. Every admin route runs
// behind Authentication and a permission gate keyed by controller/action.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, handlers Handlers, verifier middleware.TokenVerifier, authorizer middleware.Authorizer, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", handlers.Auth.Login)
			sr.Post("/refresh", handlers.Auth.Refresh)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Authentication(verifier, logger))

			// Account-scoped routes, no permission gate beyond the token.
			pr.Get("/users/me", handlers.User.Profile)
			pr.Get("/navigation", handlers.Permission.Navigation)
			pr.Get("/permissions/mine", handlers.Permission.Mine)
			pr.Get("/notifications", handlers.Notification.List)
			pr.Post("/notifications/{id}/read", handlers.Notification.MarkRead)

			pr.Route("/users", func(ur chi.Router) {
				ur.With(middleware.RequireAllow(authorizer, logger, "users", "items")).Get("/", handlers.User.Items)
				ur.With(middleware.RequireAllow(authorizer, logger, "users", "item")).Get("/{id}", handlers.User.Item)
				ur.With(middleware.RequireAllow(authorizer, logger, "users", "save")).Post("/", handlers.User.Save)
				ur.With(middleware.RequireAllow(authorizer, logger, "users", "delete")).Post("/{id}/trash", handlers.User.Trash)
				ur.With(middleware.RequireAllow(authorizer, logger, "users", "lookup")).Get("/lookup/{property}", handlers.User.Lookup)
				ur.With(middleware.RequireAllow(authorizer, logger, "users", "lookupexists")).Get("/exists/{property}", handlers.User.Exists)
			})

			pr.Route("/roles", func(rr chi.Router) {
				rr.With(middleware.RequireAllow(authorizer, logger, "roles", "items")).Get("/", handlers.Role.Items)
				rr.With(middleware.RequireAllow(authorizer, logger, "roles", "item")).Get("/{id}", handlers.Role.Item)
				rr.With(middleware.RequireAllow(authorizer, logger, "roles", "save")).Post("/", handlers.Role.Save)
				rr.With(middleware.RequireAllow(authorizer, logger, "roles", "delete")).Post("/{id}/trash", handlers.Role.Trash)
				rr.With(middleware.RequireAllow(authorizer, logger, "roles", "edit")).Put("/{id}/users", handlers.Role.UpdateUsers)
				rr.With(middleware.RequireAllow(authorizer, logger, "roles", "edit")).Put("/{id}/permissions", handlers.Role.UpdatePermissions)
				rr.With(middleware.RequireAllow(authorizer, logger, "roles", "item")).Get("/{id}/permissions", handlers.Role.Permissions)
			})

			pr.Route("/teams", func(tr chi.Router) {
				tr.With(middleware.RequireAllow(authorizer, logger, "teams", "items")).Get("/", handlers.Team.Items)
				tr.With(middleware.RequireAllow(authorizer, logger, "teams", "item")).Get("/{id}", handlers.Team.Item)
				tr.With(middleware.RequireAllow(authorizer, logger, "teams", "save")).Post("/", handlers.Team.Save)
				tr.With(middleware.RequireAllow(authorizer, logger, "teams", "delete")).Post("/{id}/trash", handlers.Team.Trash)
				tr.With(middleware.RequireAllow(authorizer, logger, "teams", "edit")).Put("/{id}/users", handlers.Team.UpdateUsers)
			})

			pr.Route("/departments", func(dr chi.Router) {
				dr.With(middleware.RequireAllow(authorizer, logger, "departments", "items")).Get("/", handlers.Department.Items)
				dr.With(middleware.RequireAllow(authorizer, logger, "departments", "item")).Get("/{id}", handlers.Department.Item)
				dr.With(middleware.RequireAllow(authorizer, logger, "departments", "save")).Post("/", handlers.Department.Save)
				dr.With(middleware.RequireAllow(authorizer, logger, "departments", "delete")).Post("/{id}/trash", handlers.Department.Trash)
				dr.With(middleware.RequireAllow(authorizer, logger, "departments", "edit")).Put("/{id}/users", handlers.Department.UpdateUsers)
			})

			pr.Route("/permissions", func(pmr chi.Router) {
				pmr.With(middleware.RequireAllow(authorizer, logger, "permissions", "items")).Get("/", handlers.Permission.Items)
				pmr.With(middleware.RequireAllow(authorizer, logger, "permissions", "save")).Post("/", handlers.Permission.Save)
				pmr.With(middleware.RequireAllow(authorizer, logger, "permissions", "lookup")).Get("/lookup/{property}", handlers.Permission.Lookup)
				pmr.With(middleware.RequireAllow(authorizer, logger, "permissions", "lookupexists")).Get("/exists/{property}", handlers.Permission.Exists)
			})

			pr.Route("/links", func(lr chi.Router) {
				lr.With(middleware.RequireAllow(authorizer, logger, "links", "items")).Get("/", handlers.Permission.AllLinks)
				lr.With(middleware.RequireAllow(authorizer, logger, "links", "save")).Post("/", handlers.Permission.SaveLink)
			})

			pr.With(middleware.RequireAllow(authorizer, logger, "utility", "edit")).Post("/utility/cache/reset", handlers.Utility.ResetCache)
		})
	})
}
