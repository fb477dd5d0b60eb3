package services

import (
	"time"

	"taskflow_backend/internal/logger"
	"taskflow_backend/internal/models"
	"taskflow_backend/internal/repositories"
	"taskflow_backend/internal/services/dto"
	"taskflow_backend/pkg/apperrors"
)

const defaultTaskPageSize = 50

type TaskService interface {
	Create(projectID, userID string, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	List(projectID, userID string, q *dto.ListTasksQuery) (*dto.TaskListResponse, error)
	ListMine(userID string, q *dto.ListTasksQuery) (*dto.TaskListResponse, error)
	Get(taskID, userID string) (*dto.TaskResponse, error)
	Update(taskID, userID string, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	Delete(taskID, userID string) error
}

type taskServiceImpl struct {
	taskRepo    repositories.TaskRepository
	projectRepo repositories.ProjectRepository
	notifier    NotificationService
	broadcaster Broadcaster
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	projectRepo repositories.ProjectRepository,
	notifier NotificationService,
	broadcaster Broadcaster,
) TaskService {
	return &taskServiceImpl{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		notifier:    notifier,
		broadcaster: broadcaster,
	}
}

func (s *taskServiceImpl) Create(projectID, userID string, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if _, err := requireProjectRole(s.projectRepo, projectID, userID, models.ProjectRoleMember); err != nil {
		return nil, err
	}
	if req.AssigneeID != nil {
		if _, err := s.projectRepo.FindMember(projectID, *req.AssigneeID); err != nil {
			return nil, apperrors.NewBadRequestError("assignee is not a project member")
		}
	}

	maxPos, err := s.taskRepo.MaxPosition(projectID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatusTodo,
		Priority:    models.TaskPriorityMedium,
		DueDate:     req.DueDate,
		Position:    maxPos + 1,
		ProjectID:   projectID,
		CreatorID:   userID,
		AssigneeID:  req.AssigneeID,
	}
	if req.Status != "" {
		task.Status = req.Status
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	if task.Status == models.TaskStatusDone {
		now := time.Now()
		task.CompletedAt = &now
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, apperrors.InternalError(err)
	}

	created, err := s.taskRepo.FindByID(task.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewTaskResponse(created)

	s.broadcaster.EmitToProject(projectID, "task:created", resp)
	s.broadcaster.EmitToTask(task.ID, "task:created", resp)

	if task.AssigneeID != nil && *task.AssigneeID != userID {
		s.notifier.NotifyTaskAssignment(task.ID, *task.AssigneeID, userID)
	}

	logger.Info("task created", "task_id", task.ID, "project_id", projectID, "user_id", userID)
	return &resp, nil
}

func (s *taskServiceImpl) List(projectID, userID string, q *dto.ListTasksQuery) (*dto.TaskListResponse, error) {
	if _, err := requireProjectRole(s.projectRepo, projectID, userID, models.ProjectRoleViewer); err != nil {
		return nil, err
	}
	return s.page([]string{projectID}, q)
}

// ListMine pages tasks across every project the user belongs to.
func (s *taskServiceImpl) ListMine(userID string, q *dto.ListTasksQuery) (*dto.TaskListResponse, error) {
	projectIDs, err := s.projectRepo.ProjectIDsForUser(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if len(projectIDs) == 0 {
		return &dto.TaskListResponse{Tasks: []dto.TaskResponse{}, Page: 1, PageSize: defaultTaskPageSize}, nil
	}
	if q.AssigneeID == "" {
		q.AssigneeID = userID
	}
	return s.page(projectIDs, q)
}

func (s *taskServiceImpl) page(projectIDs []string, q *dto.ListTasksQuery) (*dto.TaskListResponse, error) {
	criteria := repositories.TaskCriteria{
		Search:     q.Search,
		AssigneeID: q.AssigneeID,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
	if q.Status != "" {
		criteria.Status = []models.TaskStatus{models.TaskStatus(q.Status)}
	}
	if q.Priority != "" {
		criteria.Priority = []models.TaskPriority{models.TaskPriority(q.Priority)}
	}
	if criteria.Page < 1 {
		criteria.Page = 1
	}
	if criteria.PageSize < 1 || criteria.PageSize > 200 {
		criteria.PageSize = defaultTaskPageSize
	}

	tasks, total, err := s.taskRepo.FindPage(projectIDs, criteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.TaskListResponse{
		Tasks:    dto.NewTaskResponses(tasks),
		Total:    total,
		Page:     criteria.Page,
		PageSize: criteria.PageSize,
	}, nil
}

func (s *taskServiceImpl) Get(taskID, userID string) (*dto.TaskResponse, error) {
	task, err := s.findAccessible(taskID, userID, models.ProjectRoleViewer)
	if err != nil {
		return nil, err
	}
	resp := dto.NewTaskResponse(task)
	return &resp, nil
}

func (s *taskServiceImpl) Update(taskID, userID string, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	task, err := s.findAccessible(taskID, userID, models.ProjectRoleMember)
	if err != nil {
		return nil, err
	}

	previousAssignee := task.AssigneeID

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Position != nil {
		task.Position = *req.Position
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			task.AssigneeID = nil
		} else {
			if _, err := s.projectRepo.FindMember(task.ProjectID, *req.AssigneeID); err != nil {
				return nil, apperrors.NewBadRequestError("assignee is not a project member")
			}
			task.AssigneeID = req.AssigneeID
		}
	}
	if req.Status != nil && *req.Status != task.Status {
		task.Status = *req.Status
		// CompletedAt tracks the done status exactly: set on entering
		// done, cleared on leaving it.
		if task.Status == models.TaskStatusDone {
			now := time.Now()
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}

	if err := s.taskRepo.Update(task); err != nil {
		if apperrors.Is(err, repositories.ErrTaskNotFound) {
			return nil, apperrors.NewNotFoundError("task", "task not found")
		}
		return nil, apperrors.InternalError(err)
	}

	updated, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewTaskResponse(updated)

	s.broadcaster.EmitToProject(task.ProjectID, "task:updated", resp)
	s.broadcaster.EmitToTask(taskID, "task:updated", resp)

	newlyAssigned := task.AssigneeID != nil &&
		(previousAssignee == nil || *previousAssignee != *task.AssigneeID)
	if newlyAssigned && *task.AssigneeID != userID {
		s.notifier.NotifyTaskAssignment(taskID, *task.AssigneeID, userID)
	}

	return &resp, nil
}

// Delete requires a project admin role or task authorship.
func (s *taskServiceImpl) Delete(taskID, userID string) error {
	task, err := s.findAccessible(taskID, userID, models.ProjectRoleViewer)
	if err != nil {
		return err
	}
	if task.CreatorID != userID {
		if _, err := requireProjectRole(s.projectRepo, task.ProjectID, userID, models.ProjectRoleAdmin); err != nil {
			return err
		}
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		if apperrors.Is(err, repositories.ErrTaskNotFound) {
			return apperrors.NewNotFoundError("task", "task not found")
		}
		return apperrors.InternalError(err)
	}

	payload := map[string]string{"id": taskID}
	s.broadcaster.EmitToProject(task.ProjectID, "task:deleted", payload)
	s.broadcaster.EmitToTask(taskID, "task:deleted", payload)

	logger.Info("task deleted", "task_id", taskID, "user_id", userID)
	return nil
}

// findAccessible resolves the task and checks the requester holds at
// least minRole in its project.
func (s *taskServiceImpl) findAccessible(taskID, userID string, minRole models.ProjectRole) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTaskNotFound) {
			return nil, apperrors.NewNotFoundError("task", "task not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if _, err := requireProjectRole(s.projectRepo, task.ProjectID, userID, minRole); err != nil {
		return nil, err
	}
	return task, nil
}
