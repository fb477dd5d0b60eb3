package services

import (
	"encoding/json"
	"fmt"
	"time"

	"taskflow_backend/internal/logger"
	"taskflow_backend/internal/models"
	"taskflow_backend/internal/repositories"
	"taskflow_backend/internal/services/dto"
	"taskflow_backend/pkg/apperrors"
)

const maxNotificationPageSize = 100

type NotificationService interface {
	Create(req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error)
	FindByUser(userID string, q *dto.ListNotificationsQuery) (*dto.NotificationListResponse, error)
	MarkAsRead(id, userID string) (*dto.NotificationResponse, error)
	MarkAllAsRead(userID string) (int64, error)
	Delete(id, userID string) error
	UnreadCount(userID string) (int64, error)

	GetPreferences(userID string) (*dto.PreferencesResponse, error)
	UpdatePreferences(userID string, req *dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error)

	NotifyTaskAssignment(taskID, assigneeID, actorID string)
	NotifyTaskDueSoon(taskID string)
	NotifyProjectInvitation(projectID, userID, actorID string, role models.ProjectRole)
	NotifyProjectRoleChanged(projectID, userID, actorID string, role models.ProjectRole)
	NotifyCommentMention(commentID, taskID, mentionedUserID, actorID string)
}

type notificationServiceImpl struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	taskRepo         repositories.TaskRepository
	projectRepo      repositories.ProjectRepository
	broadcaster      Broadcaster
	emailQueue       EmailEnqueuer
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	taskRepo repositories.TaskRepository,
	projectRepo repositories.ProjectRepository,
	broadcaster Broadcaster,
	emailQueue EmailEnqueuer,
) NotificationService {
	if broadcaster == nil {
		// A nil hub is a wiring bug.
		logger.Fatal("notification service constructed without a broadcaster")
	}
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		taskRepo:         taskRepo,
		projectRepo:      projectRepo,
		broadcaster:      broadcaster,
		emailQueue:       emailQueue,
	}
}

// Create persists the notification, pushes notification:new to the
// owner's room unconditionally, then consults preferences for the
// secondary email channel only.
func (s *notificationServiceImpl) Create(req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error) {
	if !models.IsValidNotificationKind(req.Kind) {
		return nil, apperrors.NewBadRequestError("unknown notification kind")
	}

	notification := &models.Notification{
		UserID:  req.UserID,
		Kind:    req.Kind,
		Title:   req.Title,
		Message: req.Message,
	}
	if req.Meta != nil {
		raw, err := json.Marshal(req.Meta)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		notification.Metadata = raw
	}

	if err := s.notificationRepo.Create(notification); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := dto.NewNotificationResponse(notification)
	s.broadcaster.EmitToUser(req.UserID, "notification:new", resp)

	if s.shouldEmail(req.UserID, req.Kind) {
		s.emailQueue.Enqueue(req.UserID, notification)
	}

	return &resp, nil
}

// shouldEmail applies the fixed kind-to-preference mapping. Preference
// lookup failures disable the email channel for this event only.
func (s *notificationServiceImpl) shouldEmail(userID string, kind models.NotificationKind) bool {
	if s.emailQueue == nil {
		return false
	}
	prefs, err := s.notificationRepo.GetPreferences(userID)
	if err != nil {
		logger.Warn("preference lookup failed, skipping email", "user_id", userID, "error", err)
		return false
	}
	if !prefs.EmailEnabled {
		return false
	}
	switch kind {
	case models.NotificationCommentMention:
		return prefs.MentionNotifications
	case models.NotificationTaskAssigned:
		return prefs.TaskAssignmentNotifications
	case models.NotificationTaskDueSoon:
		return prefs.DueDateNotifications
	case models.NotificationProjectInvitation, models.NotificationProjectRoleChanged:
		return prefs.ProjectUpdateNotifications
	default:
		return true
	}
}

func (s *notificationServiceImpl) FindByUser(userID string, q *dto.ListNotificationsQuery) (*dto.NotificationListResponse, error) {
	criteria := repositories.NotificationCriteria{
		UnreadOnly: q.UnreadOnly,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	if criteria.Limit <= 0 || criteria.Limit > maxNotificationPageSize {
		criteria.Limit = maxNotificationPageSize
	}
	if criteria.Offset < 0 {
		criteria.Offset = 0
	}

	items, total, unread, err := s.notificationRepo.FindByUser(userID, criteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.NotificationListResponse{
		Notifications: dto.NewNotificationResponses(items),
		Total:         total,
		Unread:        unread,
	}, nil
}

// findOwned loads the notification and enforces ownership. A record
// owned by someone else yields Unauthorized, not NotFound, so the
// caller can distinguish the two cases.
func (s *notificationServiceImpl) findOwned(id, userID string) (*models.Notification, error) {
	notification, err := s.notificationRepo.FindByID(id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrNotificationNotFound) {
			return nil, apperrors.NewNotFoundError("notification", "notification not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if notification.UserID != userID {
		return nil, apperrors.NewUnauthorizedError("notification belongs to another user")
	}
	return notification, nil
}

func (s *notificationServiceImpl) MarkAsRead(id, userID string) (*dto.NotificationResponse, error) {
	notification, err := s.findOwned(id, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !notification.IsRead {
		if err := s.notificationRepo.MarkAsRead(id, now); err != nil {
			if apperrors.Is(err, repositories.ErrNotificationNotFound) {
				return nil, apperrors.NewNotFoundError("notification", "notification not found")
			}
			return nil, apperrors.InternalError(err)
		}
		notification.IsRead = true
		notification.ReadAt = &now
	}

	s.broadcaster.EmitToUser(userID, "notification:read", map[string]string{"id": id})
	resp := dto.NewNotificationResponse(notification)
	return &resp, nil
}

func (s *notificationServiceImpl) MarkAllAsRead(userID string) (int64, error) {
	count, err := s.notificationRepo.MarkAllAsRead(userID, time.Now())
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	s.broadcaster.EmitToUser(userID, "notification:allRead", map[string]any{})
	return count, nil
}

func (s *notificationServiceImpl) Delete(id, userID string) error {
	if _, err := s.findOwned(id, userID); err != nil {
		return err
	}
	if err := s.notificationRepo.Delete(id); err != nil {
		if apperrors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.NewNotFoundError("notification", "notification not found")
		}
		return apperrors.InternalError(err)
	}
	s.broadcaster.EmitToUser(userID, "notification:deleted", map[string]string{"id": id})
	return nil
}

func (s *notificationServiceImpl) UnreadCount(userID string) (int64, error) {
	count, err := s.notificationRepo.UnreadCount(userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *notificationServiceImpl) GetPreferences(userID string) (*dto.PreferencesResponse, error) {
	prefs, err := s.notificationRepo.GetPreferences(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewPreferencesResponse(prefs)
	return &resp, nil
}

func (s *notificationServiceImpl) UpdatePreferences(userID string, req *dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error) {
	prefs, err := s.notificationRepo.GetPreferences(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if req.EmailEnabled != nil {
		prefs.EmailEnabled = *req.EmailEnabled
	}
	if req.MentionNotifications != nil {
		prefs.MentionNotifications = *req.MentionNotifications
	}
	if req.TaskAssignmentNotifications != nil {
		prefs.TaskAssignmentNotifications = *req.TaskAssignmentNotifications
	}
	if req.DueDateNotifications != nil {
		prefs.DueDateNotifications = *req.DueDateNotifications
	}
	if req.ProjectUpdateNotifications != nil {
		prefs.ProjectUpdateNotifications = *req.ProjectUpdateNotifications
	}

	if err := s.notificationRepo.SavePreferences(prefs); err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewPreferencesResponse(prefs)
	return &resp, nil
}

// The notify helpers resolve display context before calling Create.
// Missing referents mean the triggering entity vanished mid-flight, so
// the notification is skipped without surfacing an error.

func (s *notificationServiceImpl) NotifyTaskAssignment(taskID, assigneeID, actorID string) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		logger.Debug("assignment notification skipped, task gone", "task_id", taskID)
		return
	}
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		logger.Debug("assignment notification skipped, actor gone", "actor_id", actorID)
		return
	}

	s.createSilently(&dto.CreateNotificationRequest{
		UserID:  assigneeID,
		Kind:    models.NotificationTaskAssigned,
		Title:   "Task assigned to you",
		Message: fmt.Sprintf("%s assigned you the task \"%s\"", actor.FullName(), task.Title),
		Meta:    &models.NotificationMeta{TaskID: task.ID, ProjectID: task.ProjectID},
	})
}

func (s *notificationServiceImpl) NotifyTaskDueSoon(taskID string) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		logger.Debug("due-soon notification skipped, task gone", "task_id", taskID)
		return
	}
	if task.AssigneeID == nil || task.DueDate == nil {
		return
	}

	s.createSilently(&dto.CreateNotificationRequest{
		UserID:  *task.AssigneeID,
		Kind:    models.NotificationTaskDueSoon,
		Title:   "Task due soon",
		Message: fmt.Sprintf("The task \"%s\" is due %s", task.Title, task.DueDate.Format("Jan 2, 15:04")),
		Meta:    &models.NotificationMeta{TaskID: task.ID, ProjectID: task.ProjectID, DueDate: task.DueDate},
	})
}

func (s *notificationServiceImpl) NotifyProjectInvitation(projectID, userID, actorID string, role models.ProjectRole) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		logger.Debug("invitation notification skipped, project gone", "project_id", projectID)
		return
	}
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		logger.Debug("invitation notification skipped, actor gone", "actor_id", actorID)
		return
	}

	s.createSilently(&dto.CreateNotificationRequest{
		UserID:  userID,
		Kind:    models.NotificationProjectInvitation,
		Title:   "Added to a project",
		Message: fmt.Sprintf("%s added you to the project \"%s\" as %s", actor.FullName(), project.Name, role),
		Meta:    &models.NotificationMeta{ProjectID: project.ID, Role: string(role)},
	})
}

func (s *notificationServiceImpl) NotifyProjectRoleChanged(projectID, userID, actorID string, role models.ProjectRole) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		logger.Debug("role-change notification skipped, project gone", "project_id", projectID)
		return
	}
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		logger.Debug("role-change notification skipped, actor gone", "actor_id", actorID)
		return
	}

	s.createSilently(&dto.CreateNotificationRequest{
		UserID:  userID,
		Kind:    models.NotificationProjectRoleChanged,
		Title:   "Project role changed",
		Message: fmt.Sprintf("%s changed your role in \"%s\" to %s", actor.FullName(), project.Name, role),
		Meta:    &models.NotificationMeta{ProjectID: project.ID, Role: string(role)},
	})
}

func (s *notificationServiceImpl) NotifyCommentMention(commentID, taskID, mentionedUserID, actorID string) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		logger.Debug("mention notification skipped, task gone", "task_id", taskID)
		return
	}
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		logger.Debug("mention notification skipped, actor gone", "actor_id", actorID)
		return
	}

	s.createSilently(&dto.CreateNotificationRequest{
		UserID:  mentionedUserID,
		Kind:    models.NotificationCommentMention,
		Title:   "You were mentioned",
		Message: fmt.Sprintf("%s mentioned you in a comment on \"%s\"", actor.FullName(), task.Title),
		Meta:    &models.NotificationMeta{TaskID: task.ID, ProjectID: task.ProjectID, CommentID: commentID},
	})
}

func (s *notificationServiceImpl) createSilently(req *dto.CreateNotificationRequest) {
	if _, err := s.Create(req); err != nil {
		logger.Warn("notification create failed", "user_id", req.UserID, "kind", req.Kind, "error", err)
	}
}
