package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"taskflow_backend/database"
	"taskflow_backend/internal/config"
	"taskflow_backend/internal/email"
	"taskflow_backend/internal/handlers"
	"taskflow_backend/internal/logger"
	"taskflow_backend/internal/queue"
	"taskflow_backend/internal/repositories"
	"taskflow_backend/internal/routes"
	"taskflow_backend/internal/services"
	"taskflow_backend/internal/storage"
	"taskflow_backend/internal/validator"
	"taskflow_backend/internal/workers"
	"taskflow_backend/ws"
)

// Run wires the whole application together and blocks until the
// process receives an interrupt.
func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("database connection failed", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("failed to unwrap *sql.DB", "error", err)
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Fatal("database unavailable", "error", err)
	}
	logger.Info("database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("migration failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories
	userRepo := repositories.NewUserRepository(gormDB)
	projectRepo := repositories.NewProjectRepository(gormDB)
	taskRepo := repositories.NewTaskRepository(gormDB)
	commentRepo := repositories.NewCommentRepository(gormDB)
	attachmentRepo := repositories.NewAttachmentRepository(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)

	// Infrastructure
	hub := ws.NewHub()

	store, err := storage.NewLocalStorage(cfg)
	if err != nil {
		logger.Fatal("storage initialization failed", "error", err)
	}

	var provider email.Provider
	if cfg.Email.SMTPHost != "" {
		provider, err = email.NewSMTPProvider(cfg)
		if err != nil {
			logger.Fatal("smtp initialization failed", "error", err)
		}
	} else {
		logger.Warn("smtp not configured, notification emails disabled")
		provider = email.NewNoopProvider()
	}

	emailQueue := queue.NewEmailQueue(cfg, provider, userRepo)
	go emailQueue.Run(ctx)

	// Services
	notificationService := services.NewNotificationService(notificationRepo, userRepo, taskRepo, projectRepo, hub, emailQueue)
	projectService := services.NewProjectService(projectRepo, taskRepo, userRepo, notificationService)
	container := &services.ServiceContainer{
		AuthService:         services.NewAuthService(userRepo),
		UserService:         services.NewUserService(userRepo),
		ProjectService:      projectService,
		TaskService:         services.NewTaskService(taskRepo, projectRepo, notificationService, hub),
		CommentService:      services.NewCommentService(commentRepo, taskRepo, projectRepo, notificationService, hub),
		AttachmentService:   services.NewAttachmentService(attachmentRepo, taskRepo, projectRepo, store, hub),
		NotificationService: notificationService,
		AnalyticsService:    services.NewAnalyticsService(taskRepo, projectRepo),
		SearchService:       services.NewSearchService(projectRepo, taskRepo),
	}

	// Handlers
	base := handlers.NewBaseHandler(validator.New())
	appHandlers := &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(base, container.AuthService, container.UserService),
		UserHandler:         handlers.NewUserHandler(base, container.UserService),
		ProjectHandler:      handlers.NewProjectHandler(base, container.ProjectService),
		TaskHandler:         handlers.NewTaskHandler(base, container.TaskService),
		CommentHandler:      handlers.NewCommentHandler(base, container.CommentService),
		AttachmentHandler:   handlers.NewAttachmentHandler(base, container.AttachmentService),
		NotificationHandler: handlers.NewNotificationHandler(base, container.NotificationService),
		AnalyticsHandler:    handlers.NewAnalyticsHandler(base, container.AnalyticsService),
		SearchHandler:       handlers.NewSearchHandler(base, container.SearchService),
	}

	scanner := workers.NewDueSoonScanner(taskRepo, notificationRepo, notificationService)
	if err := scanner.Start(); err != nil {
		logger.Fatal("due-soon scanner failed to start", "error", err)
	}
	defer scanner.Stop()

	router := routes.SetupRouter(cfg, appHandlers, hub, projectService)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting", "address", address)
	if err := router.Run(address); err != nil {
		logger.Fatal("server startup error", "error", err)
	}
}
