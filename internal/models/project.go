package models

import "time"

type Project struct {
	BaseModel
	Name        string     `gorm:"not null;index" json:"name"`
	Description string     `json:"description,omitempty"`
	Color       string     `gorm:"default:'#3b82f6'" json:"color"`
	Icon        string     `json:"icon,omitempty"`
	IsActive    bool       `gorm:"default:true" json:"isActive"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`

	// Relations
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Tasks   []Task          `gorm:"foreignKey:ProjectID" json:"-"`
}

// ProjectMember links a user to a project with a role.
type ProjectMember struct {
	BaseModel
	UserID    string      `gorm:"not null;uniqueIndex:idx_member_user_project" json:"userId"`
	ProjectID string      `gorm:"not null;uniqueIndex:idx_member_user_project;index" json:"projectId"`
	Role      ProjectRole `gorm:"type:varchar(20);not null" json:"role"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
