package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow_backend/internal/models"
	"taskflow_backend/internal/services/dto"
	"taskflow_backend/pkg/apperrors"
)

type taskFixture struct {
	service     TaskService
	tasks       *fakeTaskRepo
	projects    *fakeProjectRepo
	broadcaster *fakeBroadcaster
	notifier    NotificationService
	users       *fakeUserRepo
}

func newTaskFixture() *taskFixture {
	f := &taskFixture{
		tasks:       newFakeTaskRepo(),
		projects:    newFakeProjectRepo(),
		users:       newFakeUserRepo(),
		broadcaster: &fakeBroadcaster{},
	}
	f.notifier = NewNotificationService(newFakeNotificationRepo(), f.users, f.tasks, f.projects, f.broadcaster, &fakeEmailQueue{})
	f.service = NewTaskService(f.tasks, f.projects, f.notifier, f.broadcaster)

	f.projects.Create(&models.Project{BaseModel: models.BaseModel{ID: "p1"}, Name: "Demo", IsActive: true})
	f.projects.addMember("p1", "owner", models.ProjectRoleOwner, nil)
	f.projects.addMember("p1", "member", models.ProjectRoleMember, nil)
	f.projects.addMember("p1", "viewer", models.ProjectRoleViewer, nil)
	return f
}

func TestCreateTaskAssignsNextPosition(t *testing.T) {
	f := newTaskFixture()

	first, err := f.service.Create("p1", "member", &dto.CreateTaskRequest{Title: "one"})
	require.NoError(t, err)
	second, err := f.service.Create("p1", "member", &dto.CreateTaskRequest{Title: "two"})
	require.NoError(t, err)

	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)
	assert.Equal(t, models.TaskStatusTodo, first.Status)
	assert.Equal(t, models.TaskPriorityMedium, first.Priority)
	assert.Contains(t, f.broadcaster.eventNames("project:p1"), "task:created")
}

func TestCreateTaskViewerForbidden(t *testing.T) {
	f := newTaskFixture()

	_, err := f.service.Create("p1", "viewer", &dto.CreateTaskRequest{Title: "nope"})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestCreateTaskRejectsNonMemberAssignee(t *testing.T) {
	f := newTaskFixture()

	outsider := "outsider"
	_, err := f.service.Create("p1", "member", &dto.CreateTaskRequest{Title: "x", AssigneeID: &outsider})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.HTTPCode)
}

func TestCreateDoneTaskGetsCompletedAt(t *testing.T) {
	f := newTaskFixture()

	resp, err := f.service.Create("p1", "member", &dto.CreateTaskRequest{Title: "x", Status: models.TaskStatusDone})
	require.NoError(t, err)

	assert.Equal(t, models.TaskStatusDone, resp.Status)
	assert.NotNil(t, resp.CompletedAt)
}

func TestUpdateStatusTogglesCompletedAt(t *testing.T) {
	f := newTaskFixture()
	created, err := f.service.Create("p1", "member", &dto.CreateTaskRequest{Title: "x"})
	require.NoError(t, err)

	done := models.TaskStatusDone
	resp, err := f.service.Update(created.ID, "member", &dto.UpdateTaskRequest{Status: &done})
	require.NoError(t, err)
	require.NotNil(t, resp.CompletedAt)
	assert.WithinDuration(t, time.Now(), *resp.CompletedAt, time.Minute)

	reopened := models.TaskStatusInProgress
	resp, err = f.service.Update(created.ID, "member", &dto.UpdateTaskRequest{Status: &reopened})
	require.NoError(t, err)
	assert.Nil(t, resp.CompletedAt)

	assert.Contains(t, f.broadcaster.eventNames("project:p1"), "task:updated")
	assert.Contains(t, f.broadcaster.eventNames("task:"+created.ID), "task:updated")
}

func TestUpdateAssignmentNotifiesNewAssignee(t *testing.T) {
	f := newTaskFixture()

	assignee := &models.User{Email: "bob@example.com", FirstName: "Bob"}
	assignee.ID = "member"
	f.users.Create(assignee)
	actor := &models.User{Email: "ann@example.com", FirstName: "Ann"}
	actor.ID = "owner"
	f.users.Create(actor)

	created, err := f.service.Create("p1", "owner", &dto.CreateTaskRequest{Title: "x"})
	require.NoError(t, err)

	memberID := "member"
	_, err = f.service.Update(created.ID, "owner", &dto.UpdateTaskRequest{AssigneeID: &memberID})
	require.NoError(t, err)

	assert.Contains(t, f.broadcaster.eventNames("user:member"), "notification:new")
}

func TestSelfAssignmentDoesNotNotify(t *testing.T) {
	f := newTaskFixture()

	self := "member"
	_, err := f.service.Create("p1", "member", &dto.CreateTaskRequest{Title: "x", AssigneeID: &self})
	require.NoError(t, err)

	assert.Empty(t, f.broadcaster.eventNames("user:member"))
}

func TestDeleteTaskRequiresAdminOrAuthor(t *testing.T) {
	f := newTaskFixture()
	created, err := f.service.Create("p1", "owner", &dto.CreateTaskRequest{Title: "x"})
	require.NoError(t, err)

	err = f.service.Delete(created.ID, "member")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	require.NoError(t, f.service.Delete(created.ID, "owner"))
	assert.Contains(t, f.broadcaster.eventNames("project:p1"), "task:deleted")

	_, err = f.service.Get(created.ID, "owner")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestAuthorCanDeleteOwnTask(t *testing.T) {
	f := newTaskFixture()
	created, err := f.service.Create("p1", "member", &dto.CreateTaskRequest{Title: "mine"})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(created.ID, "member"))
}
