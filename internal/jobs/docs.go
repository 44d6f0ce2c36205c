// Package jobs provides scheduled background tasks for the partner client.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. FeedRefreshJob - Periodically re-derives the live order feed so a missed
// change notification never leaves the feed stale for long. This is the
// retry policy for failed derivations: the synchronizer itself keeps the
// previous set on failure and the next scheduled refresh recovers.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(synchronizer, refreshSchedule, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
package jobs
