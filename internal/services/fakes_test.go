package services

import (
	"fmt"
	"sync"
	"time"

	"taskflow_backend/internal/models"
	"taskflow_backend/internal/repositories"
)

// In-memory fakes for the repository and delivery interfaces. Only the
// behavior the services under test exercise is implemented; anything
// else panics so an unexpected call fails loudly.

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Room    string
	Event   string
	Payload any
}

func (b *fakeBroadcaster) record(room, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Room: room, Event: event, Payload: payload})
}

func (b *fakeBroadcaster) EmitToUser(userID, event string, payload any) {
	b.record("user:"+userID, event, payload)
}

func (b *fakeBroadcaster) EmitToProject(projectID, event string, payload any) {
	b.record("project:"+projectID, event, payload)
}

func (b *fakeBroadcaster) EmitToTask(taskID, event string, payload any) {
	b.record("task:"+taskID, event, payload)
}

func (b *fakeBroadcaster) eventNames(room string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var names []string
	for _, ev := range b.events {
		if ev.Room == room {
			names = append(names, ev.Event)
		}
	}
	return names
}

type fakeEmailQueue struct {
	mu       sync.Mutex
	enqueued []string // user ids
}

func (q *fakeEmailQueue) Enqueue(userID string, _ *models.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, userID)
}

func (q *fakeEmailQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.enqueued)
}

// fakeUserRepo

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) List(limit, offset int) ([]models.User, int64, error) {
	panic("List not implemented in fake")
}

// fakeTaskRepo

type fakeTaskRepo struct {
	tasks map[string]*models.Task
}

func newFakeTaskRepo(tasks ...*models.Task) *fakeTaskRepo {
	repo := &fakeTaskRepo{tasks: make(map[string]*models.Task)}
	for _, t := range tasks {
		repo.tasks[t.ID] = t
	}
	return repo
}

func (r *fakeTaskRepo) Create(task *models.Task) error {
	if task.ID == "" {
		task.ID = fmt.Sprintf("task-%d", len(r.tasks)+1)
	}
	r.tasks[task.ID] = task
	return nil
}

func (r *fakeTaskRepo) FindByID(id string) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, repositories.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTaskRepo) FindPage(projectIDs []string, criteria repositories.TaskCriteria) ([]models.Task, int64, error) {
	var out []models.Task
	for _, t := range r.tasks {
		for _, pid := range projectIDs {
			if t.ProjectID == pid {
				out = append(out, *t)
			}
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTaskRepo) Update(task *models.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return repositories.ErrTaskNotFound
	}
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) Delete(id string) error {
	if _, ok := r.tasks[id]; !ok {
		return repositories.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) MaxPosition(projectID string) (int, error) {
	max := -1
	for _, t := range r.tasks {
		if t.ProjectID == projectID && t.Position > max {
			max = t.Position
		}
	}
	return max, nil
}

func (r *fakeTaskRepo) FindByProject(projectID string) ([]models.Task, error) {
	var out []models.Task
	for _, t := range r.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) FindTouchedInRange(projectID string, start, end time.Time) ([]models.Task, error) {
	return r.FindByProject(projectID)
}

func (r *fakeTaskRepo) FindCreatedOnOrBefore(projectID string, end time.Time) ([]models.Task, error) {
	return r.FindByProject(projectID)
}

func (r *fakeTaskRepo) FindAssigned(projectID string, start, end time.Time) ([]models.Task, error) {
	var out []models.Task
	for _, t := range r.tasks {
		if t.ProjectID == projectID && t.AssigneeID != nil {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) FindDueWithin(window time.Duration, now time.Time) ([]models.Task, error) {
	var out []models.Task
	for _, t := range r.tasks {
		if t.Status == models.TaskStatusDone || t.AssigneeID == nil || t.DueDate == nil {
			continue
		}
		if t.DueDate.After(now) && t.DueDate.Before(now.Add(window)) {
			out = append(out, *t)
		}
	}
	return out, nil
}

// fakeProjectRepo

type fakeProjectRepo struct {
	projects map[string]*models.Project
	members  map[string]*models.ProjectMember // key projectID + "/" + userID
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{
		projects: make(map[string]*models.Project),
		members:  make(map[string]*models.ProjectMember),
	}
}

func memberKey(projectID, userID string) string {
	return projectID + "/" + userID
}

func (r *fakeProjectRepo) addMember(projectID, userID string, role models.ProjectRole, user *models.User) {
	m := &models.ProjectMember{ProjectID: projectID, UserID: userID, Role: role, User: user}
	r.members[memberKey(projectID, userID)] = m
}

func (r *fakeProjectRepo) Create(project *models.Project) error {
	if project.ID == "" {
		project.ID = fmt.Sprintf("project-%d", len(r.projects)+1)
	}
	r.projects[project.ID] = project
	return nil
}

func (r *fakeProjectRepo) FindByID(id string) (*models.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, repositories.ErrProjectNotFound
	}
	return p, nil
}

func (r *fakeProjectRepo) FindForUser(userID string, criteria repositories.ProjectCriteria) ([]models.Project, int64, error) {
	var out []models.Project
	for _, p := range r.projects {
		if _, ok := r.members[memberKey(p.ID, userID)]; ok {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeProjectRepo) Update(project *models.Project) error {
	r.projects[project.ID] = project
	return nil
}

func (r *fakeProjectRepo) Deactivate(id string) error {
	p, ok := r.projects[id]
	if !ok {
		return repositories.ErrProjectNotFound
	}
	p.IsActive = false
	return nil
}

func (r *fakeProjectRepo) Stats(projectID string) (*repositories.ProjectStats, error) {
	return &repositories.ProjectStats{}, nil
}

func (r *fakeProjectRepo) AddMember(member *models.ProjectMember) error {
	key := memberKey(member.ProjectID, member.UserID)
	if _, ok := r.members[key]; ok {
		return repositories.ErrAlreadyMember
	}
	r.members[key] = member
	return nil
}

func (r *fakeProjectRepo) FindMember(projectID, userID string) (*models.ProjectMember, error) {
	m, ok := r.members[memberKey(projectID, userID)]
	if !ok {
		return nil, repositories.ErrMemberNotFound
	}
	return m, nil
}

func (r *fakeProjectRepo) UpdateMemberRole(projectID, userID string, role models.ProjectRole) error {
	m, ok := r.members[memberKey(projectID, userID)]
	if !ok {
		return repositories.ErrMemberNotFound
	}
	m.Role = role
	return nil
}

func (r *fakeProjectRepo) RemoveMember(projectID, userID string) error {
	delete(r.members, memberKey(projectID, userID))
	return nil
}

func (r *fakeProjectRepo) ListMembers(projectID string) ([]models.ProjectMember, error) {
	var out []models.ProjectMember
	for _, m := range r.members {
		if m.ProjectID == projectID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) ProjectIDsForUser(userID string) ([]string, error) {
	var out []string
	for _, m := range r.members {
		if m.UserID == userID {
			out = append(out, m.ProjectID)
		}
	}
	return out, nil
}

// fakeNotificationRepo

type fakeNotificationRepo struct {
	notifications map[string]*models.Notification
	prefs         map[string]*models.NotificationPreference
	nextID        int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		notifications: make(map[string]*models.Notification),
		prefs:         make(map[string]*models.NotificationPreference),
	}
}

func (r *fakeNotificationRepo) Create(n *models.Notification) error {
	r.nextID++
	if n.ID == "" {
		n.ID = fmt.Sprintf("notif-%d", r.nextID)
	}
	n.CreatedAt = time.Now()
	r.notifications[n.ID] = n
	return nil
}

func (r *fakeNotificationRepo) FindByID(id string) (*models.Notification, error) {
	n, ok := r.notifications[id]
	if !ok {
		return nil, repositories.ErrNotificationNotFound
	}
	copied := *n
	return &copied, nil
}

func (r *fakeNotificationRepo) FindByUser(userID string, criteria repositories.NotificationCriteria) ([]models.Notification, int64, int64, error) {
	var out []models.Notification
	var unread int64
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if !n.IsRead {
			unread++
		}
		if criteria.UnreadOnly && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	return out, int64(len(out)), unread, nil
}

func (r *fakeNotificationRepo) MarkAsRead(id string, at time.Time) error {
	n, ok := r.notifications[id]
	if !ok {
		return repositories.ErrNotificationNotFound
	}
	n.IsRead = true
	n.ReadAt = &at
	return nil
}

func (r *fakeNotificationRepo) MarkAllAsRead(userID string, at time.Time) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) Delete(id string) error {
	if _, ok := r.notifications[id]; !ok {
		return repositories.ErrNotificationNotFound
	}
	delete(r.notifications, id)
	return nil
}

func (r *fakeNotificationRepo) UnreadCount(userID string) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) HasDueSoonSince(taskID string, since time.Time) (bool, error) {
	return false, nil
}

func (r *fakeNotificationRepo) CleanOld(olderThan time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeNotificationRepo) GetPreferences(userID string) (*models.NotificationPreference, error) {
	if p, ok := r.prefs[userID]; ok {
		return p, nil
	}
	p := &models.NotificationPreference{
		UserID:                      userID,
		EmailEnabled:                true,
		MentionNotifications:        true,
		TaskAssignmentNotifications: true,
		DueDateNotifications:        true,
		ProjectUpdateNotifications:  true,
	}
	r.prefs[userID] = p
	return p, nil
}

func (r *fakeNotificationRepo) SavePreferences(prefs *models.NotificationPreference) error {
	r.prefs[prefs.UserID] = prefs
	return nil
}
