package dto

import (
	"time"

	"taskflow_backend/internal/models"
)

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type CommentResponse struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	TaskID    string        `json:"taskId"`
	UserID    string        `json:"userId"`
	User      *UserResponse `json:"user,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func NewCommentResponse(c *models.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		TaskID:    c.TaskID,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.User != nil {
		r := NewUserResponse(c.User)
		resp.User = &r
	}
	return resp
}

func NewCommentResponses(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, NewCommentResponse(&comments[i]))
	}
	return out
}
