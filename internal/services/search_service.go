package services

import (
	"taskflow_backend/internal/repositories"
	"taskflow_backend/internal/services/dto"
	"taskflow_backend/pkg/apperrors"
)

const defaultSearchLimit = 10

// SearchService runs a case-insensitive substring search over the
// projects the user belongs to and the tasks inside them.
type SearchService interface {
	Search(userID string, q *dto.SearchQuery) (*dto.SearchResponse, error)
}

type searchServiceImpl struct {
	projectRepo repositories.ProjectRepository
	taskRepo    repositories.TaskRepository
}

func NewSearchService(projectRepo repositories.ProjectRepository, taskRepo repositories.TaskRepository) SearchService {
	return &searchServiceImpl{projectRepo: projectRepo, taskRepo: taskRepo}
}

func (s *searchServiceImpl) Search(userID string, q *dto.SearchQuery) (*dto.SearchResponse, error) {
	limit := q.Limit
	if limit < 1 || limit > 50 {
		limit = defaultSearchLimit
	}

	projects, _, err := s.projectRepo.FindForUser(userID, repositories.ProjectCriteria{
		Search:   q.Query,
		Page:     1,
		PageSize: limit,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	projectIDs, err := s.projectRepo.ProjectIDsForUser(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.SearchResponse{
		Query:    q.Query,
		Projects: dto.NewProjectResponses(projects),
		Tasks:    []dto.TaskResponse{},
	}
	if len(projectIDs) == 0 {
		return resp, nil
	}

	tasks, _, err := s.taskRepo.FindPage(projectIDs, repositories.TaskCriteria{
		Search:   q.Query,
		Page:     1,
		PageSize: limit,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp.Tasks = dto.NewTaskResponses(tasks)
	return resp, nil
}
