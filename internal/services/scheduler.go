package services

import (
	"context"
	"log/slog"
	"time"
)

const defaultSchedulerInterval = 5 * time.Minute

// SchedulerConfig controls the background expiry processing
type SchedulerConfig struct {
	Interval     time.Duration
	BatchLimit   int
	ArchiveAfter time.Duration
}

type Scheduler struct {
	reports ReportService
	logger  *slog.Logger
	config  SchedulerConfig
}

func NewScheduler(reports ReportService, logger *slog.Logger, config SchedulerConfig) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = defaultSchedulerInterval
	}
	return &Scheduler{
		reports: reports,
		logger:  logger,
		config:  config,
	}
}

// Start runs one pass immediately and then one per interval, in a goroutine,
// until ctx is cancelled. The returned channel is closed once the loop has exited.
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	s.logger.Info("Starting expiry scheduler", "interval", s.config.Interval)
	done := make(chan struct{})

	go func() {
		defer close(done)
		// Sessions that expired while the process was down are handled right away
		s.RunOnce(ctx)

		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("Expiry scheduler stopped")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()

	return done
}

// RunOnce processes expired sessions and then archives stale ones
func (s *Scheduler) RunOnce(ctx context.Context) {
	summary, err := s.reports.ProcessExpiredSessions(ctx, ProcessOptions{Limit: s.config.BatchLimit})
	if err != nil {
		s.logger.Error("Expired session run failed", "error", err)
	} else if summary.Found > 0 {
		s.logger.Info("Expired session run complete",
			"found", summary.Found,
			"processed", summary.Processed,
			"failed", summary.Failed)
	}

	if s.config.ArchiveAfter <= 0 {
		return
	}
	if _, err := s.reports.ArchiveStaleSessions(ctx, s.config.ArchiveAfter); err != nil {
		s.logger.Error("Archive run failed", "error", err)
	}
}
