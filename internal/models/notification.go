package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationKind string

const (
	NotificationTaskAssigned       NotificationKind = "task_assigned"
	NotificationTaskDueSoon        NotificationKind = "task_due_soon"
	NotificationCommentMention     NotificationKind = "comment_mention"
	NotificationProjectInvitation  NotificationKind = "project_invitation"
	NotificationProjectRoleChanged NotificationKind = "project_role_changed"
	NotificationTaskCompleted      NotificationKind = "task_completed"
	NotificationOther              NotificationKind = "other"
)

// IsValidNotificationKind reports whether kind is one of the known kinds.
func IsValidNotificationKind(kind NotificationKind) bool {
	switch kind {
	case NotificationTaskAssigned, NotificationTaskDueSoon, NotificationCommentMention,
		NotificationProjectInvitation, NotificationProjectRoleChanged,
		NotificationTaskCompleted, NotificationOther:
		return true
	}
	return false
}

type Notification struct {
	BaseModel
	UserID  string           `gorm:"not null;index" json:"userId"`
	Kind    NotificationKind `gorm:"type:varchar(30);not null" json:"kind"`
	Title   string           `gorm:"not null" json:"title"`
	Message string           `json:"message"`
	// Metadata is a NotificationMeta serialized as JSONB. The owning user
	// and kind never change after creation; only IsRead/ReadAt are mutated.
	Metadata datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	IsRead   bool           `gorm:"default:false;index" json:"isRead"`
	ReadAt   *time.Time     `json:"readAt,omitempty"`
}

// NotificationMeta is the closed set of references a notification may
// carry. Zero-valued fields are omitted on the wire.
type NotificationMeta struct {
	TaskID    string     `json:"taskId,omitempty"`
	ProjectID string     `json:"projectId,omitempty"`
	CommentID string     `json:"commentId,omitempty"`
	Role      string     `json:"role,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
}

// NotificationPreference holds the per-user toggles for the secondary
// email channel. The live websocket push is never gated by these.
type NotificationPreference struct {
	BaseModel
	UserID                      string `gorm:"not null;uniqueIndex" json:"userId"`
	EmailEnabled                bool   `gorm:"default:true" json:"emailEnabled"`
	MentionNotifications        bool   `gorm:"default:true" json:"mentionNotifications"`
	TaskAssignmentNotifications bool   `gorm:"default:true" json:"taskAssignmentNotifications"`
	DueDateNotifications        bool   `gorm:"default:true" json:"dueDateNotifications"`
	ProjectUpdateNotifications  bool   `gorm:"default:true" json:"projectUpdateNotifications"`
}
