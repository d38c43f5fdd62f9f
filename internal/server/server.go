package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/govguide/govguide/internal/config"
	apperrors "github.com/govguide/govguide/internal/errors"
	"github.com/govguide/govguide/internal/guide"
	"github.com/govguide/govguide/internal/observability"
	"github.com/govguide/govguide/internal/ratelimit"
	"github.com/govguide/govguide/internal/server/handlers"
	servermw "github.com/govguide/govguide/internal/server/middleware"
)

// Deps are the services behind the API routes.
type Deps struct {
	Guide    handlers.GuideGenerator
	Feedback handlers.FeedbackSubmitter
	Catalog  *guide.Catalog
	Limiter  ratelimit.Checker
	Health   *handlers.HealthManager

	RateLimit   config.RateLimitConfig
	MetricsPort int
	// AdminToken enables POST /admin/signal when set.
	AdminToken string
	// DisableHealth drops the /health routes.
	DisableHealth bool
	// Pprof mounts the runtime profiler under /debug.
	Pprof bool
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
	deps   Deps

	limits      atomic.Pointer[config.RateLimitConfig]
	metricsPort int
}

// New creates a new HTTP server instance
func New(cfg config.ServerConfig, deps Deps) (*Server, error) {
	if deps.Guide == nil || deps.Feedback == nil {
		return nil, fmt.Errorf("server requires guide and feedback services")
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NewMemory()
	}
	if deps.Health == nil {
		deps.Health = handlers.NewHealthManager(handlers.AppVersion)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	s := &Server{
		router:      r,
		cfg:         cfg,
		deps:        deps,
		metricsPort: deps.MetricsPort,
	}
	limits := deps.RateLimit
	s.limits.Store(&limits)

	s.registerRoutes()
	return s, nil
}

// UpdateRateLimits swaps the per-endpoint budgets used by the API routes.
// The backend and algorithm are fixed for the life of the server.
func (s *Server) UpdateRateLimits(cfg config.RateLimitConfig) {
	s.limits.Store(&cfg)
}

func (s *Server) limitFor(endpoint string) LimitSource {
	return func() ratelimit.Config {
		return s.limits.Load().For(endpoint)
	}
}

// Start starts the HTTP server and blocks until it stops. A graceful
// shutdown returns nil.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       durationOr(s.cfg.ReadTimeout, 30*time.Second),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      durationOr(s.cfg.WriteTimeout, 90*time.Second),
		IdleTimeout:       durationOr(s.cfg.IdleTimeout, 120*time.Second),
	}

	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Starting HTTP server",
			zap.String("host", s.cfg.Host),
			zap.Int("port", s.cfg.Port),
			zap.String("addr", addr))
	}

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the server port for testing
func (s *Server) Port() int {
	return s.cfg.Port
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
