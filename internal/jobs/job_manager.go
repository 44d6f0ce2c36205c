package jobs

import (
	"fmt"
	"log/slog"

	"partnerfeed/internal/core/application/feed"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	feedRefreshJob *FeedRefreshJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(synchronizer *feed.Synchronizer, refreshSchedule string, logger *slog.Logger) *JobManager {
	return &JobManager{
		feedRefreshJob: NewFeedRefreshJob(synchronizer, refreshSchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.feedRefreshJob.Start(); err != nil {
		return fmt.Errorf("failed to start feed refresh job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.feedRefreshJob.Stop()
}
