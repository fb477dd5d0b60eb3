package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow_backend/internal/config"
	"taskflow_backend/internal/handlers"
	"taskflow_backend/internal/middleware"
	"taskflow_backend/ws"
)

// SetupRouter builds the gin engine, wires middleware, and registers
// every handler group under /api/v1.
func SetupRouter(cfg *config.Config, h *handlers.AppHandlers, hub *ws.Hub, access ws.AccessChecker) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": hub.ClientCount()})
	})

	api := router.Group("/api/v1")
	{
		h.AuthHandler.RegisterRoutes(api)
		h.UserHandler.RegisterRoutes(api)
		h.ProjectHandler.RegisterRoutes(api)
		h.TaskHandler.RegisterRoutes(api)
		h.CommentHandler.RegisterRoutes(api)
		h.AttachmentHandler.RegisterRoutes(api)
		h.NotificationHandler.RegisterRoutes(api)
		h.AnalyticsHandler.RegisterRoutes(api)
		h.SearchHandler.RegisterRoutes(api)

		api.GET("/ws", middleware.AuthMiddleware(), ws.ServeWS(hub, access))
	}

	router.Static(cfg.Storage.BaseURL, cfg.Storage.BasePath)

	return router
}
