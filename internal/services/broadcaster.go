package services

import (
	"taskflow_backend/internal/models"
	"taskflow_backend/internal/repositories"
	"taskflow_backend/pkg/apperrors"
)

// Broadcaster pushes named events into the live fan-out layer. The hub
// implements it; services never import the ws package directly.
type Broadcaster interface {
	EmitToUser(userID, event string, payload any)
	EmitToProject(projectID, event string, payload any)
	EmitToTask(taskID, event string, payload any)
}

// EmailEnqueuer hands a notification off to the asynchronous email
// channel. Enqueue must never block the caller.
type EmailEnqueuer interface {
	Enqueue(userID string, notification *models.Notification)
}

// roleRank orders project roles for minimum-role checks.
var roleRank = map[models.ProjectRole]int{
	models.ProjectRoleViewer: 1,
	models.ProjectRoleMember: 2,
	models.ProjectRoleAdmin:  3,
	models.ProjectRoleOwner:  4,
}

// requireProjectRole verifies the user holds at least minRole in the
// project. Non-members get Forbidden, matching the membership checks
// the analytics and mutation paths both rely on.
func requireProjectRole(projectRepo repositories.ProjectRepository, projectID, userID string, minRole models.ProjectRole) (*models.ProjectMember, error) {
	member, err := projectRepo.FindMember(projectID, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrMemberNotFound) {
			return nil, apperrors.NewForbiddenError("project", "you are not a member of this project")
		}
		return nil, apperrors.InternalError(err)
	}
	if roleRank[member.Role] < roleRank[minRole] {
		return nil, apperrors.NewForbiddenError("project", "insufficient project role")
	}
	return member, nil
}
