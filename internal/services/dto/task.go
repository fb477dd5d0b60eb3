package dto

import (
	"time"

	"taskflow_backend/internal/models"
)

type CreateTaskRequest struct {
	Title       string              `json:"title" validate:"required,max=300"`
	Description string              `json:"description" validate:"max=5000"`
	Status      models.TaskStatus   `json:"status" validate:"omitempty,oneof=todo in_progress in_review done"`
	Priority    models.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
	AssigneeID  *string             `json:"assigneeId,omitempty" validate:"omitempty,uuid"`
}

type UpdateTaskRequest struct {
	Title       *string              `json:"title,omitempty" validate:"omitempty,max=300"`
	Description *string              `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      *models.TaskStatus   `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress in_review done"`
	Priority    *models.TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	DueDate     *time.Time           `json:"dueDate,omitempty"`
	AssigneeID  *string              `json:"assigneeId,omitempty"`
	Position    *int                 `json:"position,omitempty" validate:"omitempty,min=0"`
}

type ListTasksQuery struct {
	Search     string `form:"search"`
	Status     string `form:"status" validate:"omitempty,oneof=todo in_progress in_review done"`
	Priority   string `form:"priority" validate:"omitempty,oneof=low medium high critical"`
	AssigneeID string `form:"assigneeId" validate:"omitempty,uuid"`
	SortBy     string `form:"sortBy"`
	SortOrder  string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
}

type TaskResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
	CompletedAt *time.Time          `json:"completedAt,omitempty"`
	Position    int                 `json:"position"`
	ProjectID   string              `json:"projectId"`
	CreatorID   string              `json:"creatorId"`
	AssigneeID  *string             `json:"assigneeId,omitempty"`
	Assignee    *UserResponse       `json:"assignee,omitempty"`
	Creator     *UserResponse       `json:"creator,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type TaskListResponse struct {
	Tasks    []TaskResponse `json:"tasks"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

func NewTaskResponse(t *models.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		Position:    t.Position,
		ProjectID:   t.ProjectID,
		CreatorID:   t.CreatorID,
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Assignee != nil {
		r := NewUserResponse(t.Assignee)
		resp.Assignee = &r
	}
	if t.Creator != nil {
		r := NewUserResponse(t.Creator)
		resp.Creator = &r
	}
	return resp
}

func NewTaskResponses(tasks []models.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTaskResponse(&tasks[i]))
	}
	return out
}
