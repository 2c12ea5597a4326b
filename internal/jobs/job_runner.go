package jobs

import (
	"servibook-backend/internal/config"
	"servibook-backend/internal/logger"
	"servibook-backend/internal/repository/postgres"
	"servibook-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store     *postgres.Store
	refundSvc service.RefundService
	config    *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store *postgres.Store, refundSvc service.RefundService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:     store,
		refundSvc: refundSvc,
		config:    cfg,
	}
}

// Config exposes the loaded configuration to the scheduler
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
	jr.ExpireQuotes()
	jr.RetryFailedRefunds()
}
