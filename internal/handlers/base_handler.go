package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"taskflow_backend/internal/validator"
	"taskflow_backend/pkg/apperrors"
)

const analyticsDefaultRangeDays = 30

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{validator: v}
}

// BindJSON decodes and validates a JSON body. On failure the error
// response has already been written and false is returned.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("malformed request body"))
		return false
	}
	return h.validate(c, obj)
}

// BindQuery decodes and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("malformed query parameters"))
		return false
	}
	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj any) bool {
	err := h.validator.Validate(obj)
	if err == nil {
		return true
	}
	var vErr *validator.ValidationError
	if apperrors.As(err, &vErr) {
		apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
	} else {
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
	return false
}

// HandleServiceError maps a service error onto the HTTP response.
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	apperrors.HandleError(c, err)
}

// AuthUserID returns the authenticated user id set by the auth
// middleware, writing a 401 when absent.
func (h *BaseHandler) AuthUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("userID")
	if userID == "" {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("authentication required"))
		return "", false
	}
	return userID, true
}

// DateRange reads startDate/endDate (RFC 3339 or date-only) query
// parameters, defaulting to the trailing 30 days.
func (h *BaseHandler) DateRange(c *gin.Context) (start, end time.Time, ok bool) {
	now := time.Now()
	start = now.AddDate(0, 0, -analyticsDefaultRangeDays)
	end = now

	if raw := c.Query("startDate"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			apperrors.HandleError(c, apperrors.NewBadRequestError("invalid startDate"))
			return start, end, false
		}
		start = parsed
	}
	if raw := c.Query("endDate"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			apperrors.HandleError(c, apperrors.NewBadRequestError("invalid endDate"))
			return start, end, false
		}
		end = parsed
	}
	if end.Before(start) {
		apperrors.HandleError(c, apperrors.NewBadRequestError("endDate precedes startDate"))
		return start, end, false
	}
	return start, end, true
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
