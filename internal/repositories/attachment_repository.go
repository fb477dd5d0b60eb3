package repositories

import (
	"errors"

	"gorm.io/gorm"

	"taskflow_backend/internal/models"
)

var ErrAttachmentNotFound = errors.New("attachment not found")

type AttachmentRepository interface {
	Create(attachment *models.Attachment) error
	FindByID(id string) (*models.Attachment, error)
	FindByTask(taskID string) ([]models.Attachment, error)
	Delete(id string) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(attachment *models.Attachment) error {
	return r.db.Create(attachment).Error
}

func (r *attachmentRepository) FindByID(id string) (*models.Attachment, error) {
	var attachment models.Attachment
	err := r.db.Preload("UploadedBy").First(&attachment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) FindByTask(taskID string) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := r.db.Preload("UploadedBy").
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *attachmentRepository) Delete(id string) error {
	result := r.db.Delete(&models.Attachment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}
