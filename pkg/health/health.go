package health

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Version information, typically set at build time
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// Handler handles health check endpoints.
type Handler struct {
	checks  map[string]Check
	logger  *slog.Logger
	timeout time.Duration
}

// NewHandler creates a health handler running checks on readiness probes.
func NewHandler(logger *slog.Logger, checks map[string]Check) *Handler {
	return &Handler{
		checks:  checks,
		logger:  logger,
		timeout: 2 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health is a liveness probe that always returns OK.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   Version,
	})
}

// Ready runs every dependency check. The console is not ready while the
// session store or the platform backend is unreachable.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	results := h.Run(ctx)
	status, code := "ready", http.StatusOK
	for _, result := range results {
		if result != "ok" {
			status, code = "not_ready", http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   Version,
		Checks:    results,
	})
}

// Version returns version information about the service.
func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    Version,
		"git_commit": GitCommit,
		"build_time": BuildTime,
	})
}

// Run executes the checks in name order and returns "ok" or "unhealthy" per check.
func (h *Handler) Run(ctx context.Context) map[string]string {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Error("health check failed", slog.String("check", name), slog.String("error", err.Error()))
			results[name] = "unhealthy"
			continue
		}
		results[name] = "ok"
	}
	return results
}
