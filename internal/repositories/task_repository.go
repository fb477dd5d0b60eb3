package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"taskflow_backend/internal/models"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskCriteria narrows task listings and searches.
type TaskCriteria struct {
	Search     string
	Status     []models.TaskStatus
	Priority   []models.TaskPriority
	AssigneeID string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

type TaskRepository interface {
	Create(task *models.Task) error
	FindByID(id string) (*models.Task, error)
	FindPage(projectIDs []string, criteria TaskCriteria) ([]models.Task, int64, error)
	Update(task *models.Task) error
	Delete(id string) error
	MaxPosition(projectID string) (int, error)

	// Analytics snapshots
	FindByProject(projectID string) ([]models.Task, error)
	FindTouchedInRange(projectID string, start, end time.Time) ([]models.Task, error)
	FindCreatedOnOrBefore(projectID string, end time.Time) ([]models.Task, error)
	FindAssigned(projectID string, start, end time.Time) ([]models.Task, error)

	// Due-soon scanning
	FindDueWithin(window time.Duration, now time.Time) ([]models.Task, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

func (r *taskRepository) FindByID(id string) (*models.Task, error) {
	var task models.Task
	err := r.db.Preload("Creator").Preload("Assignee").Preload("Project").
		First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) FindPage(projectIDs []string, criteria TaskCriteria) ([]models.Task, int64, error) {
	var tasks []models.Task
	var total int64

	if len(projectIDs) == 0 {
		return tasks, 0, nil
	}

	query := r.db.Model(&models.Task{}).Where("project_id IN ?", projectIDs)

	if criteria.Search != "" {
		pattern := "%" + criteria.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if len(criteria.Status) > 0 {
		query = query.Where("status IN ?", criteria.Status)
	}
	if len(criteria.Priority) > 0 {
		query = query.Where("priority IN ?", criteria.Priority)
	}
	if criteria.AssigneeID != "" {
		query = query.Where("assignee_id = ?", criteria.AssigneeID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := criteria.SortBy
	switch sortBy {
	case "created_at", "updated_at", "due_date", "priority", "position", "title":
	default:
		sortBy = "created_at"
	}
	order := sortBy + " DESC"
	if criteria.SortOrder == "asc" {
		order = sortBy + " ASC"
	}

	offset := (criteria.Page - 1) * criteria.PageSize
	err := query.Preload("Creator").Preload("Assignee").Preload("Project").
		Order(order).Limit(criteria.PageSize).Offset(offset).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *taskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

func (r *taskRepository) Delete(id string) error {
	result := r.db.Delete(&models.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) MaxPosition(projectID string) (int, error) {
	var max *int
	err := r.db.Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Select("MAX(position)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

func (r *taskRepository) FindByProject(projectID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Preload("Assignee").Where("project_id = ?", projectID).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindTouchedInRange returns tasks created or completed inside the range;
// this is the velocity snapshot.
func (r *taskRepository) FindTouchedInRange(projectID string, start, end time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("project_id = ?", projectID).
		Where("(created_at BETWEEN ? AND ?) OR (completed_at BETWEEN ? AND ?)", start, end, start, end).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindCreatedOnOrBefore(projectID string, end time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("project_id = ? AND created_at <= ?", projectID, end).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindAssigned(projectID string, start, end time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Preload("Assignee").
		Where("project_id = ? AND assignee_id IS NOT NULL", projectID).
		Where("created_at <= ?", end).
		Where("(completed_at IS NULL OR completed_at >= ?)", start).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindDueWithin(window time.Duration, now time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Preload("Assignee").Preload("Project").
		Where("status <> ?", models.TaskStatusDone).
		Where("assignee_id IS NOT NULL").
		Where("due_date BETWEEN ? AND ?", now, now.Add(window)).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
