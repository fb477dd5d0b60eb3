package services

// ServiceContainer holds every application service for wiring into the
// handler layer.
type ServiceContainer struct {
	AuthService         AuthService
	UserService         UserService
	ProjectService      ProjectService
	TaskService         TaskService
	CommentService      CommentService
	AttachmentService   AttachmentService
	NotificationService NotificationService
	AnalyticsService    AnalyticsService
	SearchService       SearchService
}
