package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	v1 "github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/api/v1"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/config"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/server/middleware"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/tenant"
)

// Server is the HTTP server that wires all bridge routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	registry   *tenant.Registry
	cfg        *config.Config
}

// New creates a Server with all routes wired. ctx bounds background work
// owned by the middleware stack (rate limiter cleanup).
func New(ctx context.Context, cfg *config.Config, registry *tenant.Registry) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router:   router,
		registry: registry,
		cfg:      cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// All task-inbox routes live under the tenant path prefix. The chain is
	// claims extraction, tenant match, per-tenant rate limit, then actor
	// resolution; the admin group additionally requires the admin authority.
	router.Route("/{tenantID}", func(r chi.Router) {
		r.Use(middleware.Auth())
		r.Use(middleware.ResolveTenant(registry))
		r.Use(middleware.RateLimit(ctx, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
		r.Use(middleware.ResolveActor(cfg.AdminRole))

		r.Group(func(r chi.Router) {
			userConfig := huma.DefaultConfig("User Tasks Bridge API", "1.0.0")
			userAPI := humachi.New(r, userConfig)
			v1.RegisterUserTaskRoutes(userAPI)
			v1.RegisterCommentRoutes(userAPI)
			v1.RegisterUserIdentityRoutes(userAPI)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())

			adminConfig := huma.DefaultConfig("User Tasks Bridge Admin API", "1.0.0")
			adminAPI := humachi.New(r, adminConfig)
			v1.RegisterAdminTaskRoutes(adminAPI)
			v1.RegisterAdminIdentityRoutes(adminAPI)
		})
	})

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
