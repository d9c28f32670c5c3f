package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/ops-console/app"
	"github.com/upb/ops-console/internal/auth"
	"github.com/upb/ops-console/internal/observability"
	"github.com/upb/ops-console/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	if timeout := deps.Config.Server.RequestTimeout; timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	r.Post("/auth/logout", deps.AuthHandler.HandleLogout)

	r.Route("/api/v1", func(r chi.Router) {
		// Public: the navigation renderer reads the registry before sign-in
		r.Get("/views", deps.ConsoleHandler.HandleRegistry)

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)

			r.Get("/users/me", deps.UserHandler.HandleMe)
			r.Get("/navigation", deps.ConsoleHandler.HandleNavigation)
			r.Get("/capabilities", deps.ConsoleHandler.HandleCapabilities)
			r.Get("/views/{view}", deps.ConsoleHandler.HandleView)

			r.Route("/admin", func(r chi.Router) {
				r.Use(deps.AuthMiddleware.RequireCapability(auth.ViewAdmin))
				r.Get("/users", deps.UserHandler.HandleListUsers)
				r.Patch("/users/{id}/role", deps.UserHandler.HandleUpdateRole)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}
