// Package router assembles the HTTP surface: middleware, public endpoints,
// authenticated todo endpoints and admin endpoints.
package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"

	"github.com/tendant/simple-todo/pkg/auth"
	"github.com/tendant/simple-todo/pkg/client"
	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/httputil"
	"github.com/tendant/simple-todo/pkg/logging"
	"github.com/tendant/simple-todo/pkg/metrics"
	"github.com/tendant/simple-todo/pkg/ratelimit"
	"github.com/tendant/simple-todo/pkg/role"
	"github.com/tendant/simple-todo/pkg/todo"
	"github.com/tendant/simple-todo/pkg/user"
)

// Config holds all the dependencies and handlers needed to setup routes
type Config struct {
	// Role required by the admin endpoints
	AdminRole string

	// Verifies bearer tokens issued by the auth service
	JWTAuth *jwtauth.JWTAuth

	// Reports store health for /healthz. Nil means always healthy.
	HealthCheck func(ctx context.Context) error

	// Throttles /api/auth. Optional.
	AuthRateLimit *ratelimit.Middleware

	AuthHandle auth.Handle
	TodoHandle todo.Handle
	UserHandle user.Handle
	RoleHandle role.Handle
}

// New returns a router with every endpoint mounted.
func New(cfg Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(metrics.Middleware)
	r.Use(errs.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errs.Render(w, r, errs.New(errs.ErrCodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	SetupRoutes(r, cfg)
	return r
}

// SetupRoutes mounts all routes on the provided router
func SetupRoutes(router chi.Router, cfg Config) {
	router.Get("/healthz", healthz(cfg.HealthCheck))
	router.Handle("/metrics", metrics.Handler())

	router.Route("/api/auth", func(r chi.Router) {
		if cfg.AuthRateLimit != nil {
			r.Use(cfg.AuthRateLimit.Handler)
		}
		cfg.AuthHandle.RegisterRoutes(r)
	})

	// Mount authenticated routes
	router.Group(func(r chi.Router) {
		r.Use(client.Verifier(cfg.JWTAuth))
		r.Use(client.AuthUserMiddleware)
		r.Use(client.RequireAuth)

		r.Route("/api/todo-items", func(r chi.Router) {
			cfg.TodoHandle.RegisterRoutes(r)
			r.With(client.RequireRole(cfg.AdminRole)).Delete("/", cfg.TodoHandle.DeleteAll)
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(client.RequireRole(cfg.AdminRole))
			r.Route("/api/users", cfg.UserHandle.RegisterRoutes)
			r.Route("/api/roles", cfg.RoleHandle.RegisterRoutes)
			r.Post("/api/test-data/generate-todo-items", cfg.TodoHandle.Generate)
		})
	})
}

func healthz(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				slog.Error("Health check failed", "err", err)
				errs.Render(w, r, errs.StoreUnavailable(err))
				return
			}
		}
		httputil.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
