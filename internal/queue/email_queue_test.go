package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow_backend/internal/config"
	"taskflow_backend/internal/email"
	"taskflow_backend/internal/models"
)

type stubUserRepo struct {
	user *models.User
}

func (r *stubUserRepo) Create(user *models.User) error { return nil }

func (r *stubUserRepo) FindByID(id string) (*models.User, error) {
	if r.user == nil || r.user.ID != id {
		return nil, errors.New("user not found")
	}
	return r.user, nil
}

func (r *stubUserRepo) FindByEmail(email string) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (r *stubUserRepo) Update(user *models.User) error { return nil }

func (r *stubUserRepo) List(limit, offset int) ([]models.User, int64, error) {
	return nil, 0, nil
}

type stubProvider struct {
	mu       sync.Mutex
	failures int
	sent     []*email.Message
}

func (p *stubProvider) Send(msg *email.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("smtp unavailable")
	}
	p.sent = append(p.sent, msg)
	return nil
}

func (p *stubProvider) sentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func queueConfig(bufferSize int) *config.Config {
	cfg := &config.Config{}
	cfg.Queue.BufferSize = bufferSize
	cfg.Queue.MaxAttempts = 3
	cfg.Queue.BackoffSeconds = 0
	return cfg
}

func testUser() *models.User {
	u := &models.User{Email: "ann@example.com", FirstName: "Ann"}
	u.ID = "u1"
	return u
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestQueueDeliversEmail(t *testing.T) {
	provider := &stubProvider{}
	q := NewEmailQueue(queueConfig(4), provider, &stubUserRepo{user: testUser()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	q.Enqueue("u1", &models.Notification{Title: "Task assigned", Message: "You own it now"})

	waitFor(t, func() bool { return provider.sentCount() == 1 })
	msg := provider.sent[0]
	assert.Equal(t, "ann@example.com", msg.To)
	assert.Equal(t, "Task assigned", msg.Subject)
	assert.Contains(t, msg.Body, "Ann")
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	provider := &stubProvider{failures: 2}
	q := NewEmailQueue(queueConfig(4), provider, &stubUserRepo{user: testUser()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	q.Enqueue("u1", &models.Notification{Title: "Due soon", Message: "24 hours left"})

	waitFor(t, func() bool { return provider.sentCount() == 1 })
}

func TestQueueGivesUpAfterMaxAttempts(t *testing.T) {
	provider := &stubProvider{failures: 10}
	q := NewEmailQueue(queueConfig(4), provider, &stubUserRepo{user: testUser()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	q.Enqueue("u1", &models.Notification{Title: "Doomed", Message: "never arrives"})

	// Three attempts burn three failures, none are delivered.
	waitFor(t, func() bool {
		provider.mu.Lock()
		defer provider.mu.Unlock()
		return provider.failures == 7
	})
	assert.Equal(t, 0, provider.sentCount())
}

func TestQueueSkipsUnknownUser(t *testing.T) {
	provider := &stubProvider{}
	q := NewEmailQueue(queueConfig(4), provider, &stubUserRepo{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	q.Enqueue("ghost", &models.Notification{Title: "Hello"})

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, provider.sentCount())
}

func TestEnqueueDropsWhenBufferFull(t *testing.T) {
	provider := &stubProvider{}
	// No worker running, buffer of one.
	q := NewEmailQueue(queueConfig(1), provider, &stubUserRepo{user: testUser()})

	q.Enqueue("u1", &models.Notification{Title: "first"})
	q.Enqueue("u1", &models.Notification{Title: "second"})

	require.Len(t, q.jobs, 1)
	j := <-q.jobs
	assert.Equal(t, "first", j.notification.Title)
}
