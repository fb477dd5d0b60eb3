package models

import "time"

type Task struct {
	BaseModel
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `gorm:"type:varchar(20);default:'todo';index" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);default:'medium'" json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	Position    int          `gorm:"default:0" json:"position"`

	ProjectID  string  `gorm:"not null;index" json:"projectId"`
	CreatorID  string  `gorm:"not null" json:"creatorId"`
	AssigneeID *string `gorm:"index" json:"assigneeId,omitempty"`

	// Relations
	Project  *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Creator  *User    `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignee *User    `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`

	Comments    []Comment    `gorm:"foreignKey:TaskID" json:"-"`
	Attachments []Attachment `gorm:"foreignKey:TaskID" json:"-"`
}

// IsOverdue reports whether the task has a due date in the past and is
// not done.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != TaskStatusDone && t.DueDate != nil && t.DueDate.Before(now)
}
