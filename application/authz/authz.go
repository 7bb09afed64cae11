// Package authz evaluates the role/ownership policy table in front of every
// repository call. Evaluation is a pure function: it never reads or writes the
// store and never mutates its inputs.
package authz

import (
	"pm-backend/domain/core/entities"
	"pm-backend/pkg/auth"
	apperrors "pm-backend/pkg/errors"
)

// Action is an operation class gated by the policy table
type Action string

const (
	ActionReadProject    Action = "read_project"
	ActionCreateProject  Action = "create_project"
	ActionEditProject    Action = "edit_project"
	ActionDeleteProject  Action = "delete_project"
	ActionReadTask       Action = "read_task"
	ActionEditTask       Action = "edit_task"
	ActionApproveTask    Action = "approve_task"
	ActionManageAccounts Action = "manage_accounts"
)

// Authorize decides whether the caller may perform the action against the
// partition owned by tenantID. For project- and task-scoped actions the
// target project supplies membership and manager information; it is nil for
// create-project and manage-accounts.
//
// Ownership of the partition (caller id equals tenant id) always grants
// project-level edit and delete regardless of role.
func Authorize(caller *auth.CallerContext, action Action, tenantID string, project *entities.Project) error {
	if caller == nil {
		return apperrors.NewUnauthorizedError("missing caller context")
	}

	role := entities.Role(caller.Role)
	isOwner := caller.AccountID == tenantID
	isManager := project != nil && project.IsManagedBy(caller.AccountID)
	isMember := project != nil && project.HasMember(caller.AccountID)

	switch action {
	case ActionCreateProject:
		// Any authenticated account may create a project and becomes its owner.
		return nil

	case ActionReadProject, ActionReadTask:
		if role == entities.RoleAdmin || isOwner || isMember {
			return nil
		}
		return apperrors.NewForbiddenError("not a member of this project")

	case ActionEditTask:
		if role == entities.RoleAdmin || isOwner || isManager || isMember {
			return nil
		}
		return apperrors.NewForbiddenError("not a member of this project")

	case ActionEditProject:
		if role == entities.RoleAdmin || isOwner || isManager {
			return nil
		}
		return apperrors.NewForbiddenError("only the project owner, its manager, or an admin can edit the project")

	case ActionDeleteProject:
		if role == entities.RoleAdmin || isOwner {
			return nil
		}
		if role == entities.RoleProjectManager && isManager {
			return nil
		}
		return apperrors.NewForbiddenError("only the project owner, its manager, or an admin can delete the project")

	case ActionApproveTask:
		if role == entities.RoleAdmin || role == entities.RoleProjectManager || isOwner {
			return nil
		}
		return apperrors.NewForbiddenError("only a project manager, the project owner, or an admin can approve tasks")

	case ActionManageAccounts:
		if role == entities.RoleAdmin {
			return nil
		}
		return apperrors.NewForbiddenError("only an admin can manage accounts")
	}

	return apperrors.NewForbiddenError("unknown action")
}
