package services

import (
	"mime/multipart"

	"taskflow_backend/internal/logger"
	"taskflow_backend/internal/models"
	"taskflow_backend/internal/repositories"
	"taskflow_backend/internal/services/dto"
	"taskflow_backend/internal/storage"
	"taskflow_backend/pkg/apperrors"
)

type AttachmentService interface {
	Upload(taskID, userID string, file *multipart.FileHeader) (*dto.AttachmentResponse, error)
	ListByTask(taskID, userID string) ([]dto.AttachmentResponse, error)
	Delete(attachmentID, userID string) error
	ResolvePath(attachmentID, userID string) (*models.Attachment, error)
}

type attachmentServiceImpl struct {
	attachmentRepo repositories.AttachmentRepository
	taskRepo       repositories.TaskRepository
	projectRepo    repositories.ProjectRepository
	store          storage.Storage
	broadcaster    Broadcaster
}

func NewAttachmentService(
	attachmentRepo repositories.AttachmentRepository,
	taskRepo repositories.TaskRepository,
	projectRepo repositories.ProjectRepository,
	store storage.Storage,
	broadcaster Broadcaster,
) AttachmentService {
	return &attachmentServiceImpl{
		attachmentRepo: attachmentRepo,
		taskRepo:       taskRepo,
		projectRepo:    projectRepo,
		store:          store,
		broadcaster:    broadcaster,
	}
}

func (s *attachmentServiceImpl) Upload(taskID, userID string, file *multipart.FileHeader) (*dto.AttachmentResponse, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTaskNotFound) {
			return nil, apperrors.NewNotFoundError("task", "task not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if _, err := requireProjectRole(s.projectRepo, task.ProjectID, userID, models.ProjectRoleMember); err != nil {
		return nil, err
	}

	stored, err := s.store.Save(file)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	attachment := &models.Attachment{
		Filename:     stored.Filename,
		OriginalName: file.Filename,
		MimeType:     file.Header.Get("Content-Type"),
		Size:         stored.Size,
		Path:         stored.Path,
		URL:          stored.URL,
		TaskID:       taskID,
		UploadedByID: userID,
	}
	if err := s.attachmentRepo.Create(attachment); err != nil {
		if removeErr := s.store.Remove(stored.Path); removeErr != nil {
			logger.Warn("orphaned upload left on disk", "path", stored.Path, "error", removeErr)
		}
		return nil, apperrors.InternalError(err)
	}

	created, err := s.attachmentRepo.FindByID(attachment.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewAttachmentResponse(created)

	s.broadcaster.EmitToTask(taskID, "attachment:created", resp)
	return &resp, nil
}

func (s *attachmentServiceImpl) ListByTask(taskID, userID string) ([]dto.AttachmentResponse, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTaskNotFound) {
			return nil, apperrors.NewNotFoundError("task", "task not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if _, err := requireProjectRole(s.projectRepo, task.ProjectID, userID, models.ProjectRoleViewer); err != nil {
		return nil, err
	}

	attachments, err := s.attachmentRepo.FindByTask(taskID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewAttachmentResponses(attachments), nil
}

// Delete is allowed for the uploader or a project admin. The database
// row goes first; a failed disk removal only logs.
func (s *attachmentServiceImpl) Delete(attachmentID, userID string) error {
	attachment, err := s.findAttachment(attachmentID)
	if err != nil {
		return err
	}
	if attachment.UploadedByID != userID {
		task, err := s.taskRepo.FindByID(attachment.TaskID)
		if err != nil {
			return apperrors.InternalError(err)
		}
		if _, err := requireProjectRole(s.projectRepo, task.ProjectID, userID, models.ProjectRoleAdmin); err != nil {
			return err
		}
	}

	if err := s.attachmentRepo.Delete(attachmentID); err != nil {
		if apperrors.Is(err, repositories.ErrAttachmentNotFound) {
			return apperrors.NewNotFoundError("attachment", "attachment not found")
		}
		return apperrors.InternalError(err)
	}
	if err := s.store.Remove(attachment.Path); err != nil {
		logger.Warn("attachment file removal failed", "path", attachment.Path, "error", err)
	}

	s.broadcaster.EmitToTask(attachment.TaskID, "attachment:deleted", map[string]string{"id": attachmentID})
	return nil
}

// ResolvePath returns the attachment record after a membership check,
// for handlers that stream the file from disk.
func (s *attachmentServiceImpl) ResolvePath(attachmentID, userID string) (*models.Attachment, error) {
	attachment, err := s.findAttachment(attachmentID)
	if err != nil {
		return nil, err
	}
	task, err := s.taskRepo.FindByID(attachment.TaskID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if _, err := requireProjectRole(s.projectRepo, task.ProjectID, userID, models.ProjectRoleViewer); err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *attachmentServiceImpl) findAttachment(attachmentID string) (*models.Attachment, error) {
	attachment, err := s.attachmentRepo.FindByID(attachmentID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrAttachmentNotFound) {
			return nil, apperrors.NewNotFoundError("attachment", "attachment not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return attachment, nil
}
