package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pinger checks connectivity to a remote dependency.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// BackendProbeJob periodically checks the platform backend and remembers
// the last outcome. It never blocks or fails the console.
type BackendProbeJob struct {
	target Pinger
	logger *slog.Logger

	mu       sync.Mutex
	lastErr  error
	lastSeen time.Time
}

// NewBackendProbeJob creates a probe for target.
func NewBackendProbeJob(target Pinger, logger *slog.Logger) *BackendProbeJob {
	return &BackendProbeJob{target: target, logger: logger}
}

// Name returns the job name.
func (j *BackendProbeJob) Name() string {
	return "backend_probe"
}

// Execute pings the backend and logs the outcome. Failures are advisory
// and are not returned.
func (j *BackendProbeJob) Execute(ctx context.Context) error {
	err := j.target.HealthCheck(ctx)

	j.mu.Lock()
	j.lastErr = err
	j.lastSeen = time.Now()
	j.mu.Unlock()

	if err != nil {
		j.logger.Warn("backend connectivity check failed", slog.String("error", err.Error()))
		return nil
	}
	j.logger.Info("backend connectivity check succeeded")
	return nil
}

// Last returns the outcome of the most recent probe. The time is zero before the first run.
func (j *BackendProbeJob) Last() (time.Time, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastSeen, j.lastErr
}
