package models

type Comment struct {
	BaseModel
	Content string `gorm:"not null" json:"content"`
	TaskID  string `gorm:"not null;index" json:"taskId"`
	UserID  string `gorm:"not null" json:"userId"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Task *Task `gorm:"foreignKey:TaskID" json:"-"`
}
