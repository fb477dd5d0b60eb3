package handlers

// AppHandlers holds every HTTP handler for route registration.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	UserHandler         *UserHandler
	ProjectHandler      *ProjectHandler
	TaskHandler         *TaskHandler
	CommentHandler      *CommentHandler
	AttachmentHandler   *AttachmentHandler
	NotificationHandler *NotificationHandler
	AnalyticsHandler    *AnalyticsHandler
	SearchHandler       *SearchHandler
}
