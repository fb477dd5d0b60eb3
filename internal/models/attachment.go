package models

type Attachment struct {
	BaseModel
	Filename     string `gorm:"not null" json:"filename"`
	OriginalName string `gorm:"not null" json:"originalName"`
	MimeType     string `gorm:"not null" json:"mimeType"`
	Size         int64  `gorm:"not null" json:"size"`
	Path         string `gorm:"not null" json:"-"`
	URL          string `json:"url"`

	TaskID       string `gorm:"not null;index" json:"taskId"`
	UploadedByID string `gorm:"not null" json:"uploadedById"`

	UploadedBy *User `gorm:"foreignKey:UploadedByID" json:"uploadedBy,omitempty"`
	Task       *Task `gorm:"foreignKey:TaskID" json:"-"`
}
