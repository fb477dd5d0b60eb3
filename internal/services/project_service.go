package services

import (
	"taskflow_backend/internal/logger"
	"taskflow_backend/internal/models"
	"taskflow_backend/internal/repositories"
	"taskflow_backend/internal/services/dto"
	"taskflow_backend/pkg/apperrors"
)

const defaultProjectPageSize = 20

type ProjectService interface {
	Create(userID string, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	List(userID string, q *dto.ListProjectsQuery) (*dto.ProjectListResponse, error)
	Get(projectID, userID string) (*dto.ProjectResponse, error)
	Update(projectID, userID string, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	Delete(projectID, userID string) error
	Stats(projectID, userID string) (*dto.ProjectStatsResponse, error)

	AddMember(projectID, actorID string, req *dto.AddMemberRequest) (*dto.ProjectMemberResponse, error)
	UpdateMemberRole(projectID, memberUserID, actorID string, req *dto.UpdateMemberRoleRequest) (*dto.ProjectMemberResponse, error)
	RemoveMember(projectID, memberUserID, actorID string) error
	ListMembers(projectID, userID string) ([]dto.ProjectMemberResponse, error)

	// CanAccessProject and CanAccessTask back the websocket room-join
	// authorization.
	CanAccessProject(userID, projectID string) bool
	CanAccessTask(userID, taskID string) (string, bool)
}

type projectServiceImpl struct {
	projectRepo repositories.ProjectRepository
	taskRepo    repositories.TaskRepository
	userRepo    repositories.UserRepository
	notifier    NotificationService
}

func NewProjectService(
	projectRepo repositories.ProjectRepository,
	taskRepo repositories.TaskRepository,
	userRepo repositories.UserRepository,
	notifier NotificationService,
) ProjectService {
	return &projectServiceImpl{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

func (s *projectServiceImpl) Create(userID string, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	project := &models.Project{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		IsActive:    true,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := s.projectRepo.Create(project); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.projectRepo.AddMember(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    userID,
		Role:      models.ProjectRoleOwner,
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Info("project created", "project_id", project.ID, "owner_id", userID)
	return s.Get(project.ID, userID)
}

func (s *projectServiceImpl) List(userID string, q *dto.ListProjectsQuery) (*dto.ProjectListResponse, error) {
	criteria := repositories.ProjectCriteria{
		Search:   q.Search,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if criteria.Page < 1 {
		criteria.Page = 1
	}
	if criteria.PageSize < 1 || criteria.PageSize > 100 {
		criteria.PageSize = defaultProjectPageSize
	}

	projects, total, err := s.projectRepo.FindForUser(userID, criteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.ProjectListResponse{
		Projects: dto.NewProjectResponses(projects),
		Total:    total,
		Page:     criteria.Page,
		PageSize: criteria.PageSize,
	}, nil
}

func (s *projectServiceImpl) Get(projectID, userID string) (*dto.ProjectResponse, error) {
	if _, err := requireProjectRole(s.projectRepo, projectID, userID, models.ProjectRoleViewer); err != nil {
		return nil, err
	}
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProjectNotFound) {
			return nil, apperrors.NewNotFoundError("project", "project not found")
		}
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewProjectResponse(project)
	return &resp, nil
}

func (s *projectServiceImpl) Update(projectID, userID string, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	if _, err := requireProjectRole(s.projectRepo, projectID, userID, models.ProjectRoleAdmin); err != nil {
		return nil, err
	}
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProjectNotFound) {
			return nil, apperrors.NewNotFoundError("project", "project not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Color != nil {
		project.Color = *req.Color
	}
	if req.Icon != nil {
		project.Icon = *req.Icon
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewProjectResponse(project)
	return &resp, nil
}

// Delete deactivates the project. Only the owner may do this.
func (s *projectServiceImpl) Delete(projectID, userID string) error {
	if _, err := requireProjectRole(s.projectRepo, projectID, userID, models.ProjectRoleOwner); err != nil {
		return err
	}
	if err := s.projectRepo.Deactivate(projectID); err != nil {
		if apperrors.Is(err, repositories.ErrProjectNotFound) {
			return apperrors.NewNotFoundError("project", "project not found")
		}
		return apperrors.InternalError(err)
	}
	logger.Info("project deactivated", "project_id", projectID, "user_id", userID)
	return nil
}

func (s *projectServiceImpl) Stats(projectID, userID string) (*dto.ProjectStatsResponse, error) {
	if _, err := requireProjectRole(s.projectRepo, projectID, userID, models.ProjectRoleViewer); err != nil {
		return nil, err
	}
	stats, err := s.projectRepo.Stats(projectID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.ProjectStatsResponse{
		TaskCount:          stats.TaskCount,
		CompletedTaskCount: stats.CompletedTaskCount,
		MemberCount:        stats.MemberCount,
	}, nil
}

func (s *projectServiceImpl) AddMember(projectID, actorID string, req *dto.AddMemberRequest) (*dto.ProjectMemberResponse, error) {
	if _, err := requireProjectRole(s.projectRepo, projectID, actorID, models.ProjectRoleAdmin); err != nil {
		return nil, err
	}
	if req.Role == models.ProjectRoleOwner {
		return nil, apperrors.NewBadRequestError("a project has exactly one owner")
	}
	if _, err := s.userRepo.FindByID(req.UserID); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", "user not found")
		}
		return nil, apperrors.InternalError(err)
	}

	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      req.Role,
	}
	if err := s.projectRepo.AddMember(member); err != nil {
		if apperrors.Is(err, repositories.ErrAlreadyMember) {
			return nil, apperrors.NewConflictError("project", "user is already a member")
		}
		return nil, apperrors.InternalError(err)
	}

	s.notifier.NotifyProjectInvitation(projectID, req.UserID, actorID, req.Role)

	added, err := s.projectRepo.FindMember(projectID, req.UserID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewProjectMemberResponse(added)
	return &resp, nil
}

func (s *projectServiceImpl) UpdateMemberRole(projectID, memberUserID, actorID string, req *dto.UpdateMemberRoleRequest) (*dto.ProjectMemberResponse, error) {
	if _, err := requireProjectRole(s.projectRepo, projectID, actorID, models.ProjectRoleAdmin); err != nil {
		return nil, err
	}
	member, err := s.projectRepo.FindMember(projectID, memberUserID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrMemberNotFound) {
			return nil, apperrors.NewNotFoundError("project", "member not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if member.Role == models.ProjectRoleOwner || req.Role == models.ProjectRoleOwner {
		return nil, apperrors.NewBadRequestError("ownership cannot be reassigned here")
	}

	if err := s.projectRepo.UpdateMemberRole(projectID, memberUserID, req.Role); err != nil {
		return nil, apperrors.InternalError(err)
	}
	member.Role = req.Role

	s.notifier.NotifyProjectRoleChanged(projectID, memberUserID, actorID, req.Role)

	resp := dto.NewProjectMemberResponse(member)
	return &resp, nil
}

// RemoveMember allows admins to remove others and any member to leave
// on their own. The owner can never be removed.
func (s *projectServiceImpl) RemoveMember(projectID, memberUserID, actorID string) error {
	if actorID != memberUserID {
		if _, err := requireProjectRole(s.projectRepo, projectID, actorID, models.ProjectRoleAdmin); err != nil {
			return err
		}
	}
	member, err := s.projectRepo.FindMember(projectID, memberUserID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrMemberNotFound) {
			return apperrors.NewNotFoundError("project", "member not found")
		}
		return apperrors.InternalError(err)
	}
	if member.Role == models.ProjectRoleOwner {
		return apperrors.NewBadRequestError("the project owner cannot be removed")
	}
	if err := s.projectRepo.RemoveMember(projectID, memberUserID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *projectServiceImpl) ListMembers(projectID, userID string) ([]dto.ProjectMemberResponse, error) {
	if _, err := requireProjectRole(s.projectRepo, projectID, userID, models.ProjectRoleViewer); err != nil {
		return nil, err
	}
	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]dto.ProjectMemberResponse, 0, len(members))
	for i := range members {
		out = append(out, dto.NewProjectMemberResponse(&members[i]))
	}
	return out, nil
}

func (s *projectServiceImpl) CanAccessProject(userID, projectID string) bool {
	_, err := s.projectRepo.FindMember(projectID, userID)
	return err == nil
}

func (s *projectServiceImpl) CanAccessTask(userID, taskID string) (string, bool) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return "", false
	}
	if !s.CanAccessProject(userID, task.ProjectID) {
		return "", false
	}
	return task.ProjectID, true
}
