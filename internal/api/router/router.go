package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/pratik-mahalle/dashlist/internal/api/handlers"
	"github.com/pratik-mahalle/dashlist/internal/api/middleware"
	"github.com/pratik-mahalle/dashlist/internal/config"
	"github.com/pratik-mahalle/dashlist/internal/domain/role"
	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/internal/pkg/metrics"
)

type Handlers struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Role      *handlers.RoleHandler
	Dashboard *handlers.DashboardHandler

	// Permissions resolves what the caller's role grants on dashboards
	Permissions middleware.PermissionResolver
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if limiter != nil {
		r.Use(middleware.RateLimit(limiter))
	}

	// Public routes
	r.Group(func(r chi.Router) {
		// Swagger documentation
		r.Get("/swagger/*", httpSwagger.WrapHandler)
		r.Handle("/metrics", metrics.Handler())

		// Health checks
		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)

		r.Post("/api/v1/auth/register", h.Auth.Register)
		r.Post("/api/v1/auth/login", h.Auth.Login)
		r.Post("/api/v1/auth/refresh", h.Auth.RefreshToken)
		r.Post("/api/v1/auth/logout", h.Auth.Logout)
	})

	dashboardPerms := middleware.ResolvePermissions(h.Permissions, role.ViewDashboard)

	r.Route("/api/v1/dashboard", func(r chi.Router) {
		// Readable without a session; favorites and permissions depend on it
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuthMiddleware(cfg.Auth.JWTSecret))
			r.Use(dashboardPerms)
			r.Get("/", h.Dashboard.List)
			r.Get("/_info", h.Dashboard.Info)
			r.Get("/related/{column}", h.Dashboard.Related)
			r.Get("/{id}", h.Dashboard.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
			r.Use(dashboardPerms)
			r.Post("/", h.Dashboard.Create)
			r.Delete("/", h.Dashboard.BulkDelete)
			r.Put("/{id}", h.Dashboard.Update)
			r.Delete("/{id}", h.Dashboard.Delete)
			r.Get("/favorite_status/", h.Dashboard.FavoriteStatus)
			r.Post("/{id}/favorites/", h.Dashboard.AddFavorite)
			r.Delete("/{id}/favorites/", h.Dashboard.RemoveFavorite)
		})
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
		r.Use(dashboardPerms)

		r.Get("/api/v1/me/", h.Auth.Me)
		r.Get("/api/v1/user/{email}", h.User.GetByEmail)
		r.Get("/api/v1/role/name/{name}", h.Role.GetByName)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleAdmin))
			r.Post("/api/v1/user/", h.User.Create)
			r.Delete("/api/v1/user/{id:[0-9]+}", h.User.Delete)
			r.Post("/api/v1/role/", h.Role.Create)
			r.Delete("/api/v1/role/name/{name}", h.Role.Delete)
		})
	})

	return r
}
