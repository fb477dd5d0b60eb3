package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow_backend/internal/middleware"
	"taskflow_backend/internal/services"
	"taskflow_backend/pkg/apperrors"
)

type AttachmentHandler struct {
	*BaseHandler
	attachmentService services.AttachmentService
}

func NewAttachmentHandler(base *BaseHandler, attachmentService services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{BaseHandler: base, attachmentService: attachmentService}
}

func (h *AttachmentHandler) RegisterRoutes(r *gin.RouterGroup) {
	tasks := r.Group("/tasks")
	tasks.Use(middleware.AuthMiddleware())
	{
		tasks.POST("/:taskId/attachments", h.Upload)
		tasks.GET("/:taskId/attachments", h.List)
	}

	attachments := r.Group("/attachments")
	attachments.Use(middleware.AuthMiddleware())
	{
		attachments.GET("/:attachmentId/download", h.Download)
		attachments.DELETE("/:attachmentId", h.Delete)
	}
}

func (h *AttachmentHandler) Upload(c *gin.Context) {
	userID, ok := h.AuthUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("missing file field"))
		return
	}

	resp, err := h.attachmentService.Upload(c.Param("taskId"), userID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AttachmentHandler) List(c *gin.Context) {
	userID, ok := h.AuthUserID(c)
	if !ok {
		return
	}

	resp, err := h.attachmentService.ListByTask(c.Param("taskId"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AttachmentHandler) Download(c *gin.Context) {
	userID, ok := h.AuthUserID(c)
	if !ok {
		return
	}

	attachment, err := h.attachmentService.ResolvePath(c.Param("attachmentId"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.FileAttachment(attachment.Path, attachment.OriginalName)
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	userID, ok := h.AuthUserID(c)
	if !ok {
		return
	}

	if err := h.attachmentService.Delete(c.Param("attachmentId"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
