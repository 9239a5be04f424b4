package worker

import (
	"context"
	"time"

	"github.com/hmsd/hospital-api/pkg/logger"
	"github.com/hmsd/hospital-api/pkg/metrics"

	"github.com/hmsd/hospital-api/internal/service/notification"
)

const (
	dailyReminderHour = 8
	monthlyDigestHour = 7
	schedulerTick     = time.Minute
	taskDailyReminder = "daily_reminder"
	taskMonthlyDigest = "monthly_digest"
)

// Scheduler fires the recurring notification tasks: appointment reminders
// every morning and the doctor activity digest on the first of the month.
// Each task runs at most once per due window.
type Scheduler struct {
	notificationSvc *notification.Service
	logger          *logger.Logger
	metrics         *metrics.Metrics

	lastDailyRun   string
	lastMonthlyRun string
}

func NewScheduler(
	notificationSvc *notification.Service,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Scheduler {
	return &Scheduler{
		notificationSvc: notificationSvc,
		logger:          logger,
		metrics:         metrics,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(schedulerTick)
	defer ticker.Stop()

	s.logger.Info("Starting notification scheduler")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Shutting down notification scheduler")
			return
		case now := <-ticker.C:
			s.tick(ctx, now)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	day := now.Format("2006-01-02")
	if now.Hour() == dailyReminderHour && s.lastDailyRun != day {
		s.lastDailyRun = day
		s.runDaily(ctx, now)
	}

	month := now.Format("2006-01")
	if now.Day() == 1 && now.Hour() == monthlyDigestHour && s.lastMonthlyRun != month {
		s.lastMonthlyRun = month
		s.runMonthly(ctx, now)
	}
}

func (s *Scheduler) runDaily(ctx context.Context, now time.Time) {
	sent, failed, err := s.notificationSvc.RunDailyReminders(ctx, now)
	if err != nil {
		s.metrics.ScheduledRuns.WithLabelValues(taskDailyReminder, "error").Inc()
		s.logger.Error(err, "Daily reminder run failed")
		return
	}
	s.metrics.ScheduledRuns.WithLabelValues(taskDailyReminder, "ok").Inc()
	s.logger.Info("Daily reminder run finished", "sent", sent, "failed", failed)
}

func (s *Scheduler) runMonthly(ctx context.Context, now time.Time) {
	sent, failed, err := s.notificationSvc.RunMonthlyDigest(ctx, now)
	if err != nil {
		s.metrics.ScheduledRuns.WithLabelValues(taskMonthlyDigest, "error").Inc()
		s.logger.Error(err, "Monthly digest run failed")
		return
	}
	s.metrics.ScheduledRuns.WithLabelValues(taskMonthlyDigest, "ok").Inc()
	s.logger.Info("Monthly digest run finished", "sent", sent, "failed", failed)
}
