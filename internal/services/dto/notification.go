package dto

import (
	"encoding/json"
	"time"

	"taskflow_backend/internal/models"
)

type CreateNotificationRequest struct {
	UserID  string                   `json:"userId" validate:"required,uuid"`
	Kind    models.NotificationKind  `json:"kind" validate:"required"`
	Title   string                   `json:"title" validate:"required,max=300"`
	Message string                   `json:"message" validate:"max=2000"`
	Meta    *models.NotificationMeta `json:"meta,omitempty"`
}

type ListNotificationsQuery struct {
	UnreadOnly bool `form:"unreadOnly"`
	Limit      int  `form:"limit"`
	Offset     int  `form:"offset"`
}

type NotificationResponse struct {
	ID        string                   `json:"id"`
	UserID    string                   `json:"userId"`
	Kind      models.NotificationKind  `json:"kind"`
	Title     string                   `json:"title"`
	Message   string                   `json:"message,omitempty"`
	Meta      *models.NotificationMeta `json:"meta,omitempty"`
	IsRead    bool                     `json:"isRead"`
	ReadAt    *time.Time               `json:"readAt,omitempty"`
	CreatedAt time.Time                `json:"createdAt"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int64                  `json:"total"`
	Unread        int64                  `json:"unread"`
}

type MarkAllReadResponse struct {
	Marked int64 `json:"marked"`
}

type UpdatePreferencesRequest struct {
	EmailEnabled                *bool `json:"emailEnabled,omitempty"`
	MentionNotifications        *bool `json:"mentionNotifications,omitempty"`
	TaskAssignmentNotifications *bool `json:"taskAssignmentNotifications,omitempty"`
	DueDateNotifications        *bool `json:"dueDateNotifications,omitempty"`
	ProjectUpdateNotifications  *bool `json:"projectUpdateNotifications,omitempty"`
}

type PreferencesResponse struct {
	EmailEnabled                bool `json:"emailEnabled"`
	MentionNotifications        bool `json:"mentionNotifications"`
	TaskAssignmentNotifications bool `json:"taskAssignmentNotifications"`
	DueDateNotifications        bool `json:"dueDateNotifications"`
	ProjectUpdateNotifications  bool `json:"projectUpdateNotifications"`
}

func NewNotificationResponse(n *models.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if len(n.Metadata) > 0 {
		var meta models.NotificationMeta
		if err := json.Unmarshal(n.Metadata, &meta); err == nil {
			resp.Meta = &meta
		}
	}
	return resp
}

func NewNotificationResponses(notifications []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for i := range notifications {
		out = append(out, NewNotificationResponse(&notifications[i]))
	}
	return out
}

func NewPreferencesResponse(p *models.NotificationPreference) PreferencesResponse {
	return PreferencesResponse{
		EmailEnabled:                p.EmailEnabled,
		MentionNotifications:        p.MentionNotifications,
		TaskAssignmentNotifications: p.TaskAssignmentNotifications,
		DueDateNotifications:        p.DueDateNotifications,
		ProjectUpdateNotifications:  p.ProjectUpdateNotifications,
	}
}
