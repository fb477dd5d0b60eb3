package repositories

import (
	"errors"

	"gorm.io/gorm"

	"taskflow_backend/internal/models"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrMemberNotFound  = errors.New("project member not found")
	ErrAlreadyMember   = errors.New("user is already a member of this project")
)

// ProjectCriteria narrows project listings.
type ProjectCriteria struct {
	Search   string
	Page     int
	PageSize int
}

// ProjectStats are the per-project counters shown on listing pages.
type ProjectStats struct {
	TaskCount          int64 `json:"taskCount"`
	CompletedTaskCount int64 `json:"completedTaskCount"`
	MemberCount        int64 `json:"memberCount"`
}

type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id string) (*models.Project, error)
	FindForUser(userID string, criteria ProjectCriteria) ([]models.Project, int64, error)
	Update(project *models.Project) error
	Deactivate(id string) error
	Stats(projectID string) (*ProjectStats, error)

	AddMember(member *models.ProjectMember) error
	FindMember(projectID, userID string) (*models.ProjectMember, error)
	UpdateMemberRole(projectID, userID string, role models.ProjectRole) error
	RemoveMember(projectID, userID string) error
	ListMembers(projectID string) ([]models.ProjectMember, error)
	ProjectIDsForUser(userID string) ([]string, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

func (r *projectRepository) FindByID(id string) (*models.Project, error) {
	var project models.Project
	err := r.db.Preload("Members").Preload("Members.User").
		First(&project, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindForUser(userID string, criteria ProjectCriteria) ([]models.Project, int64, error) {
	var projects []models.Project
	var total int64

	query := r.db.Model(&models.Project{}).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ? AND projects.is_active = ?", userID, true)

	if criteria.Search != "" {
		pattern := "%" + criteria.Search + "%"
		query = query.Where("projects.name ILIKE ? OR projects.description ILIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (criteria.Page - 1) * criteria.PageSize
	err := query.Preload("Members").Preload("Members.User").
		Order("projects.created_at DESC").
		Limit(criteria.PageSize).Offset(offset).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *projectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Deactivate soft-disables the project. Rows stay in place so analytics
// over historical tasks keep working.
func (r *projectRepository) Deactivate(id string) error {
	result := r.db.Model(&models.Project{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *projectRepository) Stats(projectID string) (*ProjectStats, error) {
	var stats ProjectStats

	if err := r.db.Model(&models.Task{}).Where("project_id = ?", projectID).Count(&stats.TaskCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Task{}).
		Where("project_id = ? AND status = ?", projectID, models.TaskStatusDone).
		Count(&stats.CompletedTaskCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.ProjectMember{}).Where("project_id = ?", projectID).Count(&stats.MemberCount).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *projectRepository) AddMember(member *models.ProjectMember) error {
	var count int64
	err := r.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", member.ProjectID, member.UserID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyMember
	}
	return r.db.Create(member).Error
}

func (r *projectRepository) FindMember(projectID, userID string) (*models.ProjectMember, error) {
	var member models.ProjectMember
	err := r.db.First(&member, "project_id = ? AND user_id = ?", projectID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *projectRepository) UpdateMemberRole(projectID, userID string, role models.ProjectRole) error {
	result := r.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *projectRepository) RemoveMember(projectID, userID string) error {
	result := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *projectRepository) ListMembers(projectID string) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	err := r.db.Preload("User").Where("project_id = ?", projectID).Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *projectRepository) ProjectIDsForUser(userID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.ProjectMember{}).
		Where("user_id = ?", userID).
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
