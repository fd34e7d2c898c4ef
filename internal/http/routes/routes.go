package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sessionfeature "github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/features/session"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/features/workspace"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/config"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/health"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/middleware"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
)

// Register wires all feature routes onto the engine. apiMiddleware runs on
// /api after the session is resolved.
func Register(engine *gin.Engine, cfg *config.Config, logger *slog.Logger, sessions *session.Store, catalog workspace.Catalog, registry *workspace.Registry, checks map[string]health.Check, apiMiddleware ...gin.HandlerFunc) {
	// Health check endpoints (no /api prefix for Kubernetes probes)
	healthHandler := health.NewHandler(logger, checks)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/version", healthHandler.Version)

	// Metrics endpoint for Prometheus
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.Use(middleware.SessionLoader(sessions, cfg.Session.CookieName, logger))
	api.Use(apiMiddleware...)
	requireSession := middleware.RequireSession()

	sessionHandler := sessionfeature.NewHandler(sessions, logger, sessionfeature.CookieConfig{
		Name:   cfg.Session.CookieName,
		MaxAge: int(cfg.Session.TTL.Seconds()),
		Secure: cfg.IsProduction(),
	}, func(sessionID string) {
		registry.Drop(sessionID)
	})
	sessionfeature.RegisterRoutes(api, sessionHandler, requireSession)

	workspaceHandler := workspace.NewHandler(registry, catalog, logger, cfg.Locale)
	workspace.RegisterRoutes(api, workspaceHandler, requireSession)
}
