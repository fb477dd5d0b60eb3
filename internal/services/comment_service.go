package services

import (
	"regexp"
	"strings"

	"taskflow_backend/internal/models"
	"taskflow_backend/internal/repositories"
	"taskflow_backend/internal/services/dto"
	"taskflow_backend/pkg/apperrors"
)

// mentionPattern captures @username tokens in comment bodies. The
// token is matched against the local part of member email addresses.
var mentionPattern = regexp.MustCompile(`@(\w+)`)

type CommentService interface {
	Create(taskID, userID string, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	ListByTask(taskID, userID string) ([]dto.CommentResponse, error)
	Update(commentID, userID string, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	Delete(commentID, userID string) error
}

type commentServiceImpl struct {
	commentRepo repositories.CommentRepository
	taskRepo    repositories.TaskRepository
	projectRepo repositories.ProjectRepository
	notifier    NotificationService
	broadcaster Broadcaster
}

func NewCommentService(
	commentRepo repositories.CommentRepository,
	taskRepo repositories.TaskRepository,
	projectRepo repositories.ProjectRepository,
	notifier NotificationService,
	broadcaster Broadcaster,
) CommentService {
	return &commentServiceImpl{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		notifier:    notifier,
		broadcaster: broadcaster,
	}
}

func (s *commentServiceImpl) Create(taskID, userID string, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if _, err := requireProjectRole(s.projectRepo, task.ProjectID, userID, models.ProjectRoleMember); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: req.Content,
		TaskID:  taskID,
		UserID:  userID,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, apperrors.InternalError(err)
	}

	created, err := s.commentRepo.FindByID(comment.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewCommentResponse(created)

	s.broadcaster.EmitToTask(taskID, "comment:created", resp)
	s.notifyMentions(comment.ID, task, userID, req.Content)

	return &resp, nil
}

// notifyMentions resolves each @token against project member emails
// and notifies every distinct mentioned member except the author.
func (s *commentServiceImpl) notifyMentions(commentID string, task *models.Task, authorID, content string) {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return
	}

	members, err := s.projectRepo.ListMembers(task.ProjectID)
	if err != nil {
		return
	}

	tokens := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		tokens[strings.ToLower(m[1])] = struct{}{}
	}

	notified := make(map[string]struct{})
	for i := range members {
		user := members[i].User
		if user == nil {
			continue
		}
		local := strings.ToLower(strings.SplitN(user.Email, "@", 2)[0])
		if _, mentioned := tokens[local]; !mentioned {
			continue
		}
		if user.ID == authorID {
			continue
		}
		if _, done := notified[user.ID]; done {
			continue
		}
		notified[user.ID] = struct{}{}
		s.notifier.NotifyCommentMention(commentID, task.ID, user.ID, authorID)
	}
}

func (s *commentServiceImpl) ListByTask(taskID, userID string) ([]dto.CommentResponse, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if _, err := requireProjectRole(s.projectRepo, task.ProjectID, userID, models.ProjectRoleViewer); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.FindByTask(taskID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewCommentResponses(comments), nil
}

// Update is restricted to the comment author.
func (s *commentServiceImpl) Update(commentID, userID string, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.findComment(commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, apperrors.NewForbiddenError("comment", "only the author can edit a comment")
	}

	comment.Content = req.Content
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := dto.NewCommentResponse(comment)
	s.broadcaster.EmitToTask(comment.TaskID, "comment:updated", resp)
	return &resp, nil
}

// Delete is allowed for the author or a project admin.
func (s *commentServiceImpl) Delete(commentID, userID string) error {
	comment, err := s.findComment(commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		task, err := s.findTask(comment.TaskID)
		if err != nil {
			return err
		}
		if _, err := requireProjectRole(s.projectRepo, task.ProjectID, userID, models.ProjectRoleAdmin); err != nil {
			return err
		}
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		if apperrors.Is(err, repositories.ErrCommentNotFound) {
			return apperrors.NewNotFoundError("comment", "comment not found")
		}
		return apperrors.InternalError(err)
	}

	s.broadcaster.EmitToTask(comment.TaskID, "comment:deleted", map[string]string{"id": commentID})
	return nil
}

func (s *commentServiceImpl) findTask(taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTaskNotFound) {
			return nil, apperrors.NewNotFoundError("task", "task not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return task, nil
}

func (s *commentServiceImpl) findComment(commentID string) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCommentNotFound) {
			return nil, apperrors.NewNotFoundError("comment", "comment not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return comment, nil
}
