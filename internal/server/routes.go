package server

import (
	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/govguide/govguide/internal/config"
	"github.com/govguide/govguide/internal/observability"
	"github.com/govguide/govguide/internal/ratelimit"
	"github.com/govguide/govguide/internal/server/handlers"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	if !s.deps.DisableHealth {
		health := s.deps.Health
		s.router.Get("/health", health.HealthHandler)
		s.router.Get("/health/live", health.LivenessHandler)
		s.router.Get("/health/ready", health.ReadinessHandler)
		s.router.Get("/health/startup", health.StartupHandler)
	}
	if s.deps.Pprof {
		s.router.Mount("/debug", middleware.Profiler())
	}

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Get("/metrics", s.metricsHandler)

	s.router.Route("/api", func(r chi.Router) {
		rl := s.limits.Load()
		policy := rl.UnknownClientPolicy
		clientID := ratelimit.NewClientIdentifier(rl.ClientIPHeaders, rl.TrustRemoteAddr)

		r.With(RateLimit(s.deps.Limiter, config.EndpointGenerate, s.limitFor(config.EndpointGenerate), policy, clientID)).
			Post("/generate", handlers.NewGuideHandler(s.deps.Guide, s.cfg.MaxBodyBytes).ServeHTTP)
		r.With(RateLimit(s.deps.Limiter, config.EndpointFeedback, s.limitFor(config.EndpointFeedback), policy, clientID)).
			Post("/feedback", handlers.NewFeedbackHandler(s.deps.Feedback, handlers.ClientIdentifier(clientID), s.cfg.MaxBodyBytes).ServeHTTP)

		if s.deps.Catalog != nil {
			agencies := handlers.NewAgenciesHandler(s.deps.Catalog)
			r.Get("/agencies", agencies.List)
			r.Get("/agencies/{agency}", agencies.Get)
		}
	})

	s.registerAdminEndpoint()
}

// registerAdminEndpoint optionally registers the admin signal endpoint
func (s *Server) registerAdminEndpoint() {
	logger := observability.ServerLogger
	if s.deps.AdminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no GOVGUIDE_ADMIN_TOKEN set)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: s.deps.AdminToken,
		RateLimit: 10,
		RateBurst: 5,
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
