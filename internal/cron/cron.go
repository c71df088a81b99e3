package cron

import (
	"context"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/Marga-Ghale/projecthub-backend/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// NotificationCleaner deletes old notifications. Implemented by
// repository.NotificationRepository.
type NotificationCleaner interface {
	DeleteOlderThan(ctx context.Context, olderThan time.Time, readOnly bool) (int, error)
}

// SubscriptionSweeper expires overdue subscriptions. Implemented by
// service.CompanyService.
type SubscriptionSweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// Options configures the scheduled jobs.
type Options struct {
	NotificationRetention time.Duration
	SessionIdle           time.Duration
	// SweepSchedule is a cron expression. Empty disables the scheduled sweep.
	SweepSchedule string
}

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron          *cron.Cron
	opts          Options
	notifications NotificationCleaner
	sessions      *session.Registry
	sweeper       SubscriptionSweeper
	pool          *pgxpool.Pool
	now           func() time.Time
}

// NewScheduler creates a new scheduler. pool may be nil.
func NewScheduler(opts Options, notifications NotificationCleaner, sessions *session.Registry, sweeper SubscriptionSweeper, pool *pgxpool.Pool) *Scheduler {
	if opts.NotificationRetention <= 0 {
		opts.NotificationRetention = 30 * 24 * time.Hour
	}
	if opts.SessionIdle <= 0 {
		opts.SessionIdle = 30 * time.Minute
	}
	return &Scheduler{
		cron:          cron.New(),
		opts:          opts,
		notifications: notifications,
		sessions:      sessions,
		sweeper:       sweeper,
		pool:          pool,
		now:           time.Now,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	// Clean up old read notifications - every Sunday at midnight
	if _, err := s.cron.AddFunc("0 0 * * 0", s.cleanupOldNotifications); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("*/10 * * * *", s.pruneSessions); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("@every 1m", s.samplePool); err != nil {
		return err
	}

	if s.opts.SweepSchedule != "" {
		if _, err := s.cron.AddFunc(s.opts.SweepSchedule, s.sweepSubscriptions); err != nil {
			return err
		}
		logger.L().Infow("[Cron] Subscription sweep scheduled", "schedule", s.opts.SweepSchedule)
	}

	s.cron.Start()
	logger.L().Info("[Cron] Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.L().Info("[Cron] Scheduler stopped")
}

func (s *Scheduler) cleanupOldNotifications() {
	if s.notifications == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := s.now().Add(-s.opts.NotificationRetention)
	deleted, err := s.notifications.DeleteOlderThan(ctx, cutoff, true)
	if err != nil {
		logger.L().Errorw("[Cron] Notification cleanup failed", "error", err)
		return
	}
	logger.L().Infow("[Cron] Notification cleanup done", "deleted", deleted, "cutoff", cutoff)
}

func (s *Scheduler) pruneSessions() {
	if s.sessions == nil {
		return
	}
	if evicted := s.sessions.Prune(s.now(), s.opts.SessionIdle); evicted > 0 {
		logger.L().Debugw("[Cron] Idle sessions evicted", "count", evicted)
	}
	telemetry.ActiveSessions.Set(float64(s.sessions.Len()))
}

func (s *Scheduler) samplePool() {
	telemetry.SamplePool(s.pool)
}

func (s *Scheduler) sweepSubscriptions() {
	if s.sweeper == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	expired, err := s.sweeper.Sweep(ctx, s.now())
	if err != nil {
		logger.L().Errorw("[Cron] Subscription sweep failed", "error", err)
		return
	}
	logger.L().Infow("[Cron] Subscription sweep done", "expired", expired)
}

// ManualTrigger runs one job immediately.
func (s *Scheduler) ManualTrigger(job string) {
	switch job {
	case "cleanup":
		s.cleanupOldNotifications()
	case "sessions":
		s.pruneSessions()
	case "sweep":
		s.sweepSubscriptions()
	case "all":
		s.cleanupOldNotifications()
		s.pruneSessions()
		s.sweepSubscriptions()
	}
}
