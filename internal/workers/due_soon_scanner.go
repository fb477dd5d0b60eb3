// Package workers holds scheduled background jobs.
package workers

import (
	"time"

	"github.com/robfig/cron/v3"

	"taskflow_backend/internal/logger"
	"taskflow_backend/internal/repositories"
	"taskflow_backend/internal/services"
)

const (
	// dueSoonWindow is how far ahead the scanner looks for deadlines.
	dueSoonWindow = 24 * time.Hour
	// dedupWindow suppresses repeat reminders for the same task.
	dedupWindow = 24 * time.Hour

	scanSchedule = "0 * * * *"

	// notificationRetention bounds how long delivered notifications
	// stay in the table before the nightly sweep removes them.
	notificationRetention = 90 * 24 * time.Hour

	cleanupSchedule = "30 3 * * *"
)

// DueSoonScanner periodically reminds assignees about tasks whose due
// date falls inside the lookahead window.
type DueSoonScanner struct {
	taskRepo         repositories.TaskRepository
	notificationRepo repositories.NotificationRepository
	notifier         services.NotificationService
	cron             *cron.Cron
}

func NewDueSoonScanner(
	taskRepo repositories.TaskRepository,
	notificationRepo repositories.NotificationRepository,
	notifier services.NotificationService,
) *DueSoonScanner {
	return &DueSoonScanner{
		taskRepo:         taskRepo,
		notificationRepo: notificationRepo,
		notifier:         notifier,
		cron:             cron.New(),
	}
}

// Start schedules the hourly scan and the nightly notification sweep.
// Returns an error only on a bad schedule expression.
func (s *DueSoonScanner) Start() error {
	if _, err := s.cron.AddFunc(scanSchedule, s.Scan); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(cleanupSchedule, s.CleanOldNotifications); err != nil {
		return err
	}
	s.cron.Start()
	logger.Info("due-soon scanner started", "schedule", scanSchedule)
	return nil
}

func (s *DueSoonScanner) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("due-soon scanner stopped")
}

// Scan runs one pass. Exported so a deploy hook or test can trigger it
// outside the schedule.
func (s *DueSoonScanner) Scan() {
	now := time.Now()
	tasks, err := s.taskRepo.FindDueWithin(dueSoonWindow, now)
	if err != nil {
		logger.Error("due-soon scan failed", "error", err)
		return
	}

	var sent int
	for i := range tasks {
		task := &tasks[i]

		already, err := s.notificationRepo.HasDueSoonSince(task.ID, now.Add(-dedupWindow))
		if err != nil {
			logger.Warn("due-soon dedup check failed", "task_id", task.ID, "error", err)
			continue
		}
		if already {
			continue
		}

		s.notifier.NotifyTaskDueSoon(task.ID)
		sent++
	}

	if sent > 0 {
		logger.Info("due-soon scan complete", "candidates", len(tasks), "notified", sent)
	}
}

// CleanOldNotifications removes notifications older than the retention
// window.
func (s *DueSoonScanner) CleanOldNotifications() {
	removed, err := s.notificationRepo.CleanOld(time.Now().Add(-notificationRetention))
	if err != nil {
		logger.Error("notification cleanup failed", "error", err)
		return
	}
	if removed > 0 {
		logger.Info("old notifications removed", "count", removed)
	}
}
