package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow_backend/internal/middleware"
	"taskflow_backend/internal/services"
	"taskflow_backend/internal/services/dto"
)

type CommentHandler struct {
	*BaseHandler
	commentService services.CommentService
}

func NewCommentHandler(base *BaseHandler, commentService services.CommentService) *CommentHandler {
	return &CommentHandler{BaseHandler: base, commentService: commentService}
}

func (h *CommentHandler) RegisterRoutes(r *gin.RouterGroup) {
	tasks := r.Group("/tasks")
	tasks.Use(middleware.AuthMiddleware())
	{
		tasks.POST("/:taskId/comments", h.Create)
		tasks.GET("/:taskId/comments", h.List)
	}

	comments := r.Group("/comments")
	comments.Use(middleware.AuthMiddleware())
	{
		comments.PUT("/:commentId", h.Update)
		comments.DELETE("/:commentId", h.Delete)
	}
}

func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := h.AuthUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.commentService.Create(c.Param("taskId"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CommentHandler) List(c *gin.Context) {
	userID, ok := h.AuthUserID(c)
	if !ok {
		return
	}

	resp, err := h.commentService.ListByTask(c.Param("taskId"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) Update(c *gin.Context) {
	userID, ok := h.AuthUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.commentService.Update(c.Param("commentId"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := h.AuthUserID(c)
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Param("commentId"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
