package dto

import (
	"time"

	"taskflow_backend/internal/models"
)

type AttachmentResponse struct {
	ID           string        `json:"id"`
	Filename     string        `json:"filename"`
	OriginalName string        `json:"originalName"`
	MimeType     string        `json:"mimeType"`
	Size         int64         `json:"size"`
	URL          string        `json:"url"`
	TaskID       string        `json:"taskId"`
	UploadedByID string        `json:"uploadedById"`
	UploadedBy   *UserResponse `json:"uploadedBy,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

func NewAttachmentResponse(a *models.Attachment) AttachmentResponse {
	resp := AttachmentResponse{
		ID:           a.ID,
		Filename:     a.Filename,
		OriginalName: a.OriginalName,
		MimeType:     a.MimeType,
		Size:         a.Size,
		URL:          a.URL,
		TaskID:       a.TaskID,
		UploadedByID: a.UploadedByID,
		CreatedAt:    a.CreatedAt,
	}
	if a.UploadedBy != nil {
		r := NewUserResponse(a.UploadedBy)
		resp.UploadedBy = &r
	}
	return resp
}

func NewAttachmentResponses(attachments []models.Attachment) []AttachmentResponse {
	out := make([]AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		out = append(out, NewAttachmentResponse(&attachments[i]))
	}
	return out
}
