// Package queue runs the asynchronous email channel for notifications.
// Jobs are buffered in memory; delivery is retried a fixed number of
// times with exponential backoff and then dropped.
package queue

import (
	"context"
	"fmt"
	"time"

	"taskflow_backend/internal/config"
	"taskflow_backend/internal/email"
	"taskflow_backend/internal/logger"
	"taskflow_backend/internal/models"
	"taskflow_backend/internal/repositories"
)

type job struct {
	userID       string
	notification *models.Notification
}

// EmailQueue buffers notification emails and delivers them from a
// single worker goroutine.
type EmailQueue struct {
	jobs        chan job
	provider    email.Provider
	userRepo    repositories.UserRepository
	maxAttempts int
	baseBackoff time.Duration
}

func NewEmailQueue(cfg *config.Config, provider email.Provider, userRepo repositories.UserRepository) *EmailQueue {
	return &EmailQueue{
		jobs:        make(chan job, cfg.Queue.BufferSize),
		provider:    provider,
		userRepo:    userRepo,
		maxAttempts: cfg.Queue.MaxAttempts,
		baseBackoff: time.Duration(cfg.Queue.BackoffSeconds) * time.Second,
	}
}

// Enqueue queues the email job without blocking. When the buffer is
// full the job is dropped; email is a best-effort secondary channel.
func (q *EmailQueue) Enqueue(userID string, notification *models.Notification) {
	select {
	case q.jobs <- job{userID: userID, notification: notification}:
	default:
		logger.Warn("email queue full, job dropped", "user_id", userID, "notification_id", notification.ID)
	}
}

// Run consumes jobs until the context is cancelled.
func (q *EmailQueue) Run(ctx context.Context) {
	logger.Info("email queue worker started", "buffer", cap(q.jobs), "max_attempts", q.maxAttempts)
	for {
		select {
		case <-ctx.Done():
			logger.Info("email queue worker stopped")
			return
		case j := <-q.jobs:
			q.process(ctx, j)
		}
	}
}

func (q *EmailQueue) process(ctx context.Context, j job) {
	user, err := q.userRepo.FindByID(j.userID)
	if err != nil {
		logger.Warn("email job skipped, user lookup failed", "user_id", j.userID, "error", err)
		return
	}

	msg := &email.Message{
		To:      user.Email,
		Subject: j.notification.Title,
		Body:    fmt.Sprintf("Hi %s,\n\n%s\n", user.FirstName, j.notification.Message),
	}

	backoff := q.baseBackoff
	for attempt := 1; attempt <= q.maxAttempts; attempt++ {
		if err := q.provider.Send(msg); err == nil {
			logger.Debug("notification email sent", "to", user.Email, "notification_id", j.notification.ID, "attempt", attempt)
			return
		} else if attempt == q.maxAttempts {
			logger.Error("notification email failed, giving up", "to", user.Email, "notification_id", j.notification.ID, "attempts", attempt, "error", err)
			return
		} else {
			logger.Warn("notification email failed, will retry", "to", user.Email, "attempt", attempt, "backoff", backoff, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
