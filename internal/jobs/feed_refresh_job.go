package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"partnerfeed/internal/core/application/feed"
)

// FeedRefreshJob periodically forces a feed re-derivation. It backstops the
// change stream: a dropped notification or a failed derivation is healed on
// the next scheduled refresh.
type FeedRefreshJob struct {
	synchronizer *feed.Synchronizer
	schedule     string
	cron         *cron.Cron
	logger       *slog.Logger
}

// NewFeedRefreshJob creates the refresh job with a cron schedule using the
// seconds field, e.g. "*/30 * * * * *" for every thirty seconds.
func NewFeedRefreshJob(synchronizer *feed.Synchronizer, schedule string, logger *slog.Logger) *FeedRefreshJob {
	return &FeedRefreshJob{
		synchronizer: synchronizer,
		schedule:     schedule,
		cron:         cron.New(cron.WithSeconds()),
		logger:       logger.With("component", "feed_refresh_job"),
	}
}

// Start begins the scheduled refreshes.
func (j *FeedRefreshJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.synchronizer.Refresh(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Feed refresh job started", "schedule", j.schedule)
	return nil
}

// Stop stops the scheduled refreshes.
func (j *FeedRefreshJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Feed refresh job stopped")
}
