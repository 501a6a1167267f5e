package jobs

import (
	"context"
	"time"

	"rentacar-calendar/internal/config"
	"rentacar-calendar/internal/events"
	"rentacar-calendar/internal/logger"
	"rentacar-calendar/internal/security"
)

// Refresher reloads the calendar's visible window
type Refresher interface {
	Refresh(ctx context.Context) error
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	calendar Refresher
	tokens   security.TokenInspector
	bus      *events.Bus
	config   *config.Config
	timeout  time.Duration
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(calendar Refresher, tokens security.TokenInspector, bus *events.Bus, cfg *config.Config) *JobRunner {
	return &JobRunner{
		calendar: calendar,
		tokens:   tokens,
		bus:      bus,
		config:   cfg,
		timeout:  cfg.APITimeout() * 2,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.RefreshVisibleWindow()
	jr.WarnExpiringToken()
}
