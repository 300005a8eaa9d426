package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/greengalaxy/vr-gateway/app"
	"github.com/greengalaxy/vr-gateway/handlers"
	"github.com/greengalaxy/vr-gateway/middleware"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()
	cfg := deps.Config

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))
	if cfg.Observability.MetricsEnabled {
		r.Use(deps.Metrics.Middleware)
	}
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
	}

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(deps.GeminiConfigured(), deps.Capability.Mode(), deps.Logger)
	authHandler := handlers.NewAuthHandler(deps.Gate, deps.Logger)
	workspaceHandler := handlers.NewWorkspaceHandler(deps.Workspace, deps.Logger)
	discoveryHandler := handlers.NewDiscoveryHandler(deps.Discovery, deps.Logger)

	// Status and health endpoints
	r.Get("/", health.HandleRoot)
	r.Get("/health", health.HandleHealth)
	r.Get("/healthz", health.HandleLiveness)
	if cfg.Observability.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Session login validates the token carried in the body
		r.Post("/auth/google", authHandler.HandleGoogleLogin)

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)

			r.Post("/ai/generate-layout", workspaceHandler.HandleGenerateLayout)
			r.Post("/ai/process-request", workspaceHandler.HandleProcessRequest)
			r.Post("/nexus/discovery", discoveryHandler.HandleDiscovery)
		})
	})

	r.NotFound(handlers.NotFoundHandler())
	r.MethodNotAllowed(handlers.MethodNotAllowedHandler())

	return r
}
