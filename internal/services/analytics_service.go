package services

import (
	"time"

	"taskflow_backend/internal/analytics"
	"taskflow_backend/internal/models"
	"taskflow_backend/internal/repositories"
	"taskflow_backend/internal/services/dto"
	"taskflow_backend/pkg/apperrors"
)

type AnalyticsService interface {
	ProjectMetrics(projectID, userID string) (*dto.ProjectMetrics, error)
	TaskVelocity(projectID, userID string, start, end time.Time) ([]dto.VelocityPoint, error)
	BurndownChart(projectID, userID string, start, end time.Time) ([]dto.BurndownPoint, error)
	TeamProductivity(projectID, userID string, start, end time.Time) ([]dto.ProductivityEntry, error)
	ProjectTimeline(projectID, userID string, days int) (*dto.Timeline, error)
}

type analyticsServiceImpl struct {
	taskRepo    repositories.TaskRepository
	projectRepo repositories.ProjectRepository
}

func NewAnalyticsService(taskRepo repositories.TaskRepository, projectRepo repositories.ProjectRepository) AnalyticsService {
	return &analyticsServiceImpl{taskRepo: taskRepo, projectRepo: projectRepo}
}

func (s *analyticsServiceImpl) ProjectMetrics(projectID, userID string) (*dto.ProjectMetrics, error) {
	if _, err := requireProjectRole(s.projectRepo, projectID, userID, models.ProjectRoleViewer); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.FindByProject(projectID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	metrics := analytics.ProjectMetrics(tasks, time.Now())
	return &metrics, nil
}

func (s *analyticsServiceImpl) TaskVelocity(projectID, userID string, start, end time.Time) ([]dto.VelocityPoint, error) {
	if _, err := requireProjectRole(s.projectRepo, projectID, userID, models.ProjectRoleViewer); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, apperrors.NewBadRequestError("end date precedes start date")
	}
	tasks, err := s.taskRepo.FindTouchedInRange(projectID, start, end)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return analytics.TaskVelocity(tasks, start, end), nil
}

func (s *analyticsServiceImpl) BurndownChart(projectID, userID string, start, end time.Time) ([]dto.BurndownPoint, error) {
	if _, err := requireProjectRole(s.projectRepo, projectID, userID, models.ProjectRoleViewer); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, apperrors.NewBadRequestError("end date precedes start date")
	}
	tasks, err := s.taskRepo.FindCreatedOnOrBefore(projectID, end)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return analytics.BurndownChart(tasks, start, end), nil
}

func (s *analyticsServiceImpl) TeamProductivity(projectID, userID string, start, end time.Time) ([]dto.ProductivityEntry, error) {
	if _, err := requireProjectRole(s.projectRepo, projectID, userID, models.ProjectRoleAdmin); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.FindAssigned(projectID, start, end)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return analytics.TeamProductivity(tasks, time.Now()), nil
}

func (s *analyticsServiceImpl) ProjectTimeline(projectID, userID string, days int) (*dto.Timeline, error) {
	if days < 1 || days > 365 {
		return nil, apperrors.NewBadRequestError("days must be between 1 and 365")
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	points, err := s.TaskVelocity(projectID, userID, start, end)
	if err != nil {
		return nil, err
	}
	timeline := analytics.Timeline(points)
	return &timeline, nil
}
