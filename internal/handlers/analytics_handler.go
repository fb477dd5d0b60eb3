package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskflow_backend/internal/middleware"
	"taskflow_backend/internal/services"
	"taskflow_backend/pkg/apperrors"
)

type AnalyticsHandler struct {
	*BaseHandler
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(base *BaseHandler, analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{BaseHandler: base, analyticsService: analyticsService}
}

func (h *AnalyticsHandler) RegisterRoutes(r *gin.RouterGroup) {
	analytics := r.Group("/projects/:projectId/analytics")
	analytics.Use(middleware.AuthMiddleware())
	{
		analytics.GET("/metrics", h.Metrics)
		analytics.GET("/velocity", h.Velocity)
		analytics.GET("/burndown", h.Burndown)
		analytics.GET("/productivity", h.Productivity)
		analytics.GET("/timeline", h.Timeline)
	}
}

func (h *AnalyticsHandler) Metrics(c *gin.Context) {
	userID, ok := h.AuthUserID(c)
	if !ok {
		return
	}

	resp, err := h.analyticsService.ProjectMetrics(c.Param("projectId"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) Velocity(c *gin.Context) {
	userID, ok := h.AuthUserID(c)
	if !ok {
		return
	}
	start, end, ok := h.DateRange(c)
	if !ok {
		return
	}

	resp, err := h.analyticsService.TaskVelocity(c.Param("projectId"), userID, start, end)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) Burndown(c *gin.Context) {
	userID, ok := h.AuthUserID(c)
	if !ok {
		return
	}
	start, end, ok := h.DateRange(c)
	if !ok {
		return
	}

	resp, err := h.analyticsService.BurndownChart(c.Param("projectId"), userID, start, end)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) Productivity(c *gin.Context) {
	userID, ok := h.AuthUserID(c)
	if !ok {
		return
	}
	start, end, ok := h.DateRange(c)
	if !ok {
		return
	}

	resp, err := h.analyticsService.TeamProductivity(c.Param("projectId"), userID, start, end)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) Timeline(c *gin.Context) {
	userID, ok := h.AuthUserID(c)
	if !ok {
		return
	}

	days := analyticsDefaultRangeDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			apperrors.HandleError(c, apperrors.NewBadRequestError("invalid days parameter"))
			return
		}
		days = parsed
	}

	resp, err := h.analyticsService.ProjectTimeline(c.Param("projectId"), userID, days)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
