package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/features/workspace"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/gateway"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/http/routes"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/cache"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/config"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/health"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/jobs"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/logger"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/metrics"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/middleware"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/request"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokenCache := openTokenCache(cfg, appLogger)
	defer func() {
		if err := tokenCache.Close(); err != nil {
			appLogger.Error("session cache close failed", slog.String("error", err.Error()))
		}
	}()
	sessions := session.NewStore(tokenCache, cfg.Session.TTL)

	backend := gateway.New(cfg.API.BaseURL, cfg.API.Timeout, appLogger)

	// Advisory only: the console starts even when the backend is down.
	probe := jobs.NewBackendProbeJob(backend, appLogger)
	if cfg.Health.ProbeOnStartup {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = probe.Execute(probeCtx)
		cancel()
	}

	scheduler := jobs.NewScheduler(appLogger)
	scheduler.AddJob(probe, cfg.Health.ProbeInterval)
	if scheduler.Len() > 0 {
		scheduler.Start()
		defer scheduler.Stop()
	}

	registry := workspace.NewRegistry(backend, appLogger, cfg.Workspace.TTL)
	defer registry.Close()

	rateLimiter := middleware.NewRateLimiter(cfg.Limits.RequestsPerMinute, time.Minute)
	defer rateLimiter.Close()

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.NoStore())
	router.Use(middleware.RequestSizeLimit(cfg.Limits.MaxBodyBytes))
	router.Use(metrics.Middleware())
	router.Use(request.Handler(appLogger))

	routes.Register(router, cfg, appLogger, sessions, backend, registry, map[string]health.Check{
		"session_store": tokenCache.Ping,
		"backend":       backend.HealthCheck,
	}, rateLimiter.Middleware())

	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadTimeout:       5 * time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		appLogger.Info("server starting",
			slog.String("addr", cfg.ServerAddress()),
			slog.String("env", cfg.Env),
			slog.String("api_base_url", cfg.API.BaseURL),
			slog.String("log_level", cfg.LogLevel),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server listen failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", slog.String("error", err.Error()))
	} else {
		appLogger.Info("server stopped gracefully")
	}
}

// openTokenCache uses Redis when configured and falls back to process memory.
func openTokenCache(cfg *config.Config, appLogger *slog.Logger) cache.Client {
	if cfg.Redis.Addr == "" {
		appLogger.Info("session store: in-memory")
		return cache.NewMemoryCache()
	}

	client, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		if cfg.IsProduction() {
			appLogger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		appLogger.Warn("redis unavailable, using in-memory session store", slog.String("error", err.Error()))
		return cache.NewMemoryCache()
	}

	appLogger.Info("session store: redis", slog.String("addr", cfg.Redis.Addr))
	return client
}
