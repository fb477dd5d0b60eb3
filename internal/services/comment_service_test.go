package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow_backend/internal/models"
	"taskflow_backend/internal/repositories"
	"taskflow_backend/internal/services/dto"
	"taskflow_backend/pkg/apperrors"
)

type fakeCommentRepo struct {
	comments map[string]*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*models.Comment)}
}

func (r *fakeCommentRepo) Create(comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = fmt.Sprintf("comment-%d", len(r.comments)+1)
	}
	r.comments[comment.ID] = comment
	return nil
}

func (r *fakeCommentRepo) FindByID(id string) (*models.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCommentRepo) FindByTask(taskID string) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range r.comments {
		if c.TaskID == taskID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) Update(comment *models.Comment) error {
	if _, ok := r.comments[comment.ID]; !ok {
		return repositories.ErrCommentNotFound
	}
	copied := *comment
	r.comments[comment.ID] = &copied
	return nil
}

func (r *fakeCommentRepo) Delete(id string) error {
	if _, ok := r.comments[id]; !ok {
		return repositories.ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

type commentFixture struct {
	service     CommentService
	comments    *fakeCommentRepo
	broadcaster *fakeBroadcaster
}

func newCommentFixture() *commentFixture {
	author := &models.User{Email: "ann@example.com", FirstName: "Ann"}
	author.ID = "author"
	colleague := &models.User{Email: "bob@example.com", FirstName: "Bob"}
	colleague.ID = "bob"

	users := newFakeUserRepo(author, colleague)
	tasks := newFakeTaskRepo()
	projects := newFakeProjectRepo()
	comments := newFakeCommentRepo()
	broadcaster := &fakeBroadcaster{}

	projects.Create(&models.Project{BaseModel: models.BaseModel{ID: "p1"}, Name: "Demo", IsActive: true})
	projects.addMember("p1", "author", models.ProjectRoleMember, author)
	projects.addMember("p1", "bob", models.ProjectRoleMember, colleague)
	projects.addMember("p1", "admin", models.ProjectRoleAdmin, nil)

	task := &models.Task{Title: "Ship it", ProjectID: "p1", CreatorID: "author"}
	task.ID = "t1"
	tasks.Create(task)

	notifier := NewNotificationService(newFakeNotificationRepo(), users, tasks, projects, broadcaster, &fakeEmailQueue{})
	return &commentFixture{
		service:     NewCommentService(comments, tasks, projects, notifier, broadcaster),
		comments:    comments,
		broadcaster: broadcaster,
	}
}

func TestCreateCommentBroadcastsToTaskRoom(t *testing.T) {
	f := newCommentFixture()

	resp, err := f.service.Create("t1", "author", &dto.CreateCommentRequest{Content: "looks good"})
	require.NoError(t, err)
	assert.Equal(t, "t1", resp.TaskID)
	assert.Contains(t, f.broadcaster.eventNames("task:t1"), "comment:created")
}

func TestMentionNotifiesReferencedMember(t *testing.T) {
	f := newCommentFixture()

	_, err := f.service.Create("t1", "author", &dto.CreateCommentRequest{Content: "ping @bob, can you review?"})
	require.NoError(t, err)

	assert.Contains(t, f.broadcaster.eventNames("user:bob"), "notification:new")
}

func TestSelfMentionIgnored(t *testing.T) {
	f := newCommentFixture()

	_, err := f.service.Create("t1", "author", &dto.CreateCommentRequest{Content: "note to @ann"})
	require.NoError(t, err)

	assert.Empty(t, f.broadcaster.eventNames("user:author"))
}

func TestMentionOfNonMemberIgnored(t *testing.T) {
	f := newCommentFixture()

	_, err := f.service.Create("t1", "author", &dto.CreateCommentRequest{Content: "cc @stranger"})
	require.NoError(t, err)

	for _, ev := range f.broadcaster.events {
		assert.NotEqual(t, "notification:new", ev.Event)
	}
}

func TestDuplicateMentionNotifiesOnce(t *testing.T) {
	f := newCommentFixture()

	_, err := f.service.Create("t1", "author", &dto.CreateCommentRequest{Content: "@bob @bob @bob"})
	require.NoError(t, err)

	assert.Equal(t, []string{"notification:new"}, f.broadcaster.eventNames("user:bob"))
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	f := newCommentFixture()
	created, err := f.service.Create("t1", "author", &dto.CreateCommentRequest{Content: "v1"})
	require.NoError(t, err)

	_, err = f.service.Update(created.ID, "bob", &dto.UpdateCommentRequest{Content: "hijacked"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	resp, err := f.service.Update(created.ID, "author", &dto.UpdateCommentRequest{Content: "v2"})
	require.NoError(t, err)
	assert.Equal(t, "v2", resp.Content)
}

func TestDeleteCommentAuthorOrAdmin(t *testing.T) {
	f := newCommentFixture()
	created, err := f.service.Create("t1", "author", &dto.CreateCommentRequest{Content: "v1"})
	require.NoError(t, err)

	err = f.service.Delete(created.ID, "bob")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	require.NoError(t, f.service.Delete(created.ID, "admin"))
	assert.Contains(t, f.broadcaster.eventNames("task:t1"), "comment:deleted")
}
