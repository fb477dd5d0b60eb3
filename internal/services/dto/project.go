package dto

import (
	"time"

	"taskflow_backend/internal/models"
)

type CreateProjectRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Color       string     `json:"color" validate:"omitempty,max=20"`
	Icon        string     `json:"icon" validate:"omitempty,max=50"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

type UpdateProjectRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Color       *string    `json:"color,omitempty" validate:"omitempty,max=20"`
	Icon        *string    `json:"icon,omitempty" validate:"omitempty,max=50"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

type ListProjectsQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

type AddMemberRequest struct {
	UserID string             `json:"userId" validate:"required,uuid"`
	Role   models.ProjectRole `json:"role" validate:"required,oneof=admin member viewer"`
}

type UpdateMemberRoleRequest struct {
	Role models.ProjectRole `json:"role" validate:"required,oneof=admin member viewer"`
}

type ProjectMemberResponse struct {
	ID       string             `json:"id"`
	Role     models.ProjectRole `json:"role"`
	JoinedAt time.Time          `json:"joinedAt"`
	User     UserResponse       `json:"user"`
}

type ProjectResponse struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Color       string                  `json:"color"`
	Icon        string                  `json:"icon,omitempty"`
	IsActive    bool                    `json:"isActive"`
	StartDate   *time.Time              `json:"startDate,omitempty"`
	EndDate     *time.Time              `json:"endDate,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
	Members     []ProjectMemberResponse `json:"members,omitempty"`
}

type ProjectStatsResponse struct {
	TaskCount          int64 `json:"taskCount"`
	CompletedTaskCount int64 `json:"completedTaskCount"`
	MemberCount        int64 `json:"memberCount"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

func NewProjectMemberResponse(m *models.ProjectMember) ProjectMemberResponse {
	resp := ProjectMemberResponse{
		ID:       m.ID,
		Role:     m.Role,
		JoinedAt: m.CreatedAt,
	}
	if m.User != nil {
		resp.User = NewUserResponse(m.User)
	} else {
		resp.User = UserResponse{ID: m.UserID}
	}
	return resp
}

func NewProjectResponse(p *models.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		Icon:        p.Icon,
		IsActive:    p.IsActive,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for i := range p.Members {
		resp.Members = append(resp.Members, NewProjectMemberResponse(&p.Members[i]))
	}
	return resp
}

func NewProjectResponses(projects []models.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, NewProjectResponse(&projects[i]))
	}
	return out
}
