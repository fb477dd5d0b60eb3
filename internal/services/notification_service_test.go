package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow_backend/internal/models"
	"taskflow_backend/internal/services/dto"
	"taskflow_backend/pkg/apperrors"
)

type notificationFixture struct {
	service     NotificationService
	repo        *fakeNotificationRepo
	users       *fakeUserRepo
	tasks       *fakeTaskRepo
	projects    *fakeProjectRepo
	broadcaster *fakeBroadcaster
	queue       *fakeEmailQueue
}

func newNotificationFixture(users ...*models.User) *notificationFixture {
	f := &notificationFixture{
		repo:        newFakeNotificationRepo(),
		users:       newFakeUserRepo(users...),
		tasks:       newFakeTaskRepo(),
		projects:    newFakeProjectRepo(),
		broadcaster: &fakeBroadcaster{},
		queue:       &fakeEmailQueue{},
	}
	f.service = NewNotificationService(f.repo, f.users, f.tasks, f.projects, f.broadcaster, f.queue)
	return f
}

func createReq(userID string) *dto.CreateNotificationRequest {
	return &dto.CreateNotificationRequest{
		UserID:  userID,
		Kind:    models.NotificationTaskAssigned,
		Title:   "Task assigned to you",
		Message: "someone assigned you a task",
	}
}

func TestCreateBroadcastsAndEnqueuesEmail(t *testing.T) {
	f := newNotificationFixture()

	resp, err := f.service.Create(createReq("u1"))
	require.NoError(t, err)
	assert.False(t, resp.IsRead)
	assert.Nil(t, resp.ReadAt)

	assert.Equal(t, []string{"notification:new"}, f.broadcaster.eventNames("user:u1"))
	assert.Equal(t, 1, f.queue.count())
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	f := newNotificationFixture()

	req := createReq("u1")
	req.Kind = "carrier-pigeon"
	_, err := f.service.Create(req)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.HTTPCode)
}

func TestPreferenceGatesOnlyEmailChannel(t *testing.T) {
	f := newNotificationFixture()

	prefs, _ := f.repo.GetPreferences("u1")
	prefs.TaskAssignmentNotifications = false

	_, err := f.service.Create(createReq("u1"))
	require.NoError(t, err)

	// The live push always fires; only the email job is suppressed.
	assert.Equal(t, []string{"notification:new"}, f.broadcaster.eventNames("user:u1"))
	assert.Zero(t, f.queue.count())
}

func TestEmailDisabledSuppressesAllKinds(t *testing.T) {
	f := newNotificationFixture()

	prefs, _ := f.repo.GetPreferences("u1")
	prefs.EmailEnabled = false

	req := createReq("u1")
	req.Kind = models.NotificationOther
	_, err := f.service.Create(req)
	require.NoError(t, err)

	assert.Zero(t, f.queue.count())
}

func TestUnmappedKindAlwaysEmails(t *testing.T) {
	f := newNotificationFixture()

	req := createReq("u1")
	req.Kind = models.NotificationTaskCompleted
	_, err := f.service.Create(req)
	require.NoError(t, err)

	assert.Equal(t, 1, f.queue.count())
}

func TestMarkAsReadSetsFlagAndTimestampTogether(t *testing.T) {
	f := newNotificationFixture()
	created, err := f.service.Create(createReq("u1"))
	require.NoError(t, err)

	resp, err := f.service.MarkAsRead(created.ID, "u1")
	require.NoError(t, err)

	assert.True(t, resp.IsRead)
	require.NotNil(t, resp.ReadAt)
	assert.Contains(t, f.broadcaster.eventNames("user:u1"), "notification:read")

	stored, _ := f.repo.FindByID(created.ID)
	assert.True(t, stored.IsRead)
	assert.NotNil(t, stored.ReadAt)
}

func TestMarkAsReadWrongOwnerIsUnauthorized(t *testing.T) {
	f := newNotificationFixture()
	created, err := f.service.Create(createReq("u1"))
	require.NoError(t, err)

	_, err = f.service.MarkAsRead(created.ID, "intruder")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)

	// State must be untouched.
	stored, _ := f.repo.FindByID(created.ID)
	assert.False(t, stored.IsRead)
	assert.Nil(t, stored.ReadAt)
}

func TestMarkAsReadMissingIsNotFound(t *testing.T) {
	f := newNotificationFixture()

	_, err := f.service.MarkAsRead("ghost", "u1")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestMarkAllAsReadReturnsCountAndClearsUnread(t *testing.T) {
	f := newNotificationFixture()
	for i := 0; i < 3; i++ {
		_, err := f.service.Create(createReq("u1"))
		require.NoError(t, err)
	}
	_, err := f.service.Create(createReq("someone-else"))
	require.NoError(t, err)

	count, err := f.service.MarkAllAsRead("u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Contains(t, f.broadcaster.eventNames("user:u1"), "notification:allRead")

	list, err := f.service.FindByUser("u1", &dto.ListNotificationsQuery{UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, list.Notifications)
	assert.Zero(t, list.Unread)

	// The other user's notification stays unread.
	other, err := f.service.UnreadCount("someone-else")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}

func TestDeleteOwnershipCheck(t *testing.T) {
	f := newNotificationFixture()
	created, err := f.service.Create(createReq("u1"))
	require.NoError(t, err)

	err = f.service.Delete(created.ID, "intruder")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)

	require.NoError(t, f.service.Delete(created.ID, "u1"))
	assert.Contains(t, f.broadcaster.eventNames("user:u1"), "notification:deleted")

	_, err = f.repo.FindByID(created.ID)
	assert.Error(t, err)
}

func TestNotifyTaskAssignmentSkipsMissingReferents(t *testing.T) {
	f := newNotificationFixture()

	// Neither task nor actor exists; no notification and no error.
	f.service.NotifyTaskAssignment("ghost-task", "u1", "ghost-actor")
	assert.Empty(t, f.broadcaster.eventNames("user:u1"))
}

func TestNotifyTaskAssignmentResolvesContext(t *testing.T) {
	actor := &models.User{Email: "amy@example.com", FirstName: "Amy", LastName: "Ng"}
	actor.ID = "actor-1"
	f := newNotificationFixture(actor)

	task := &models.Task{Title: "Ship the release", ProjectID: "p1"}
	task.ID = "task-1"
	require.NoError(t, f.tasks.Create(task))

	f.service.NotifyTaskAssignment("task-1", "assignee-1", "actor-1")

	list, err := f.service.FindByUser("assignee-1", &dto.ListNotificationsQuery{})
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)

	n := list.Notifications[0]
	assert.Equal(t, models.NotificationTaskAssigned, n.Kind)
	assert.Contains(t, n.Message, "Amy Ng")
	assert.Contains(t, n.Message, "Ship the release")
	require.NotNil(t, n.Meta)
	assert.Equal(t, "task-1", n.Meta.TaskID)
	assert.Equal(t, "p1", n.Meta.ProjectID)
}

func TestUpdatePreferencesPartial(t *testing.T) {
	f := newNotificationFixture()

	off := false
	resp, err := f.service.UpdatePreferences("u1", &dto.UpdatePreferencesRequest{
		MentionNotifications: &off,
	})
	require.NoError(t, err)

	assert.False(t, resp.MentionNotifications)
	assert.True(t, resp.EmailEnabled)
	assert.True(t, resp.TaskAssignmentNotifications)
}
