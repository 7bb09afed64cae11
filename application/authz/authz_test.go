package authz

import (
	"testing"

	"pm-backend/domain/core/entities"
	"pm-backend/pkg/auth"
	apperrors "pm-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func caller(id string, role entities.Role) *auth.CallerContext {
	return &auth.CallerContext{AccountID: id, Name: id, Role: string(role)}
}

func sampleProject(t *testing.T) *entities.Project {
	t.Helper()
	owner, err := entities.NewAccount("pm@x.com", "PM", entities.RoleProjectManager, "hash")
	require.NoError(t, err)
	project, err := entities.NewProject(owner, "Launch", "", entities.ProjectStatusActive, entities.ProgressOnTrack, "2030-06-01")
	require.NoError(t, err)
	require.NoError(t, project.AddMember(entities.Member{Email: "dev@x.com", Name: "Dev", Role: entities.RoleMember}))
	return project
}

func TestAuthorize_NilCaller(t *testing.T) {
	err := Authorize(nil, ActionReadProject, "pm@x.com", nil)

	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestAuthorize_CreateProjectOpenToAllRoles(t *testing.T) {
	for _, role := range []entities.Role{entities.RoleAdmin, entities.RoleProjectManager, entities.RoleMember} {
		err := Authorize(caller("someone@x.com", role), ActionCreateProject, "someone@x.com", nil)
		assert.NoError(t, err, "role %s", role)
	}
}

func TestAuthorize_ReadProject(t *testing.T) {
	project := sampleProject(t)

	tests := []struct {
		name    string
		caller  *auth.CallerContext
		allowed bool
	}{
		{"owner", caller("pm@x.com", entities.RoleProjectManager), true},
		{"member", caller("dev@x.com", entities.RoleMember), true},
		{"admin outsider", caller("root@x.com", entities.RoleAdmin), true},
		{"non-member", caller("stranger@x.com", entities.RoleMember), false},
		{"non-member pm", caller("otherpm@x.com", entities.RoleProjectManager), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.caller, ActionReadProject, "pm@x.com", project)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperrors.IsForbidden(err))
			}
		})
	}
}

func TestAuthorize_EditTask(t *testing.T) {
	project := sampleProject(t)

	assert.NoError(t, Authorize(caller("dev@x.com", entities.RoleMember), ActionEditTask, "pm@x.com", project))
	assert.NoError(t, Authorize(caller("pm@x.com", entities.RoleProjectManager), ActionEditTask, "pm@x.com", project))

	err := Authorize(caller("stranger@x.com", entities.RoleMember), ActionEditTask, "pm@x.com", project)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestAuthorize_EditProject(t *testing.T) {
	project := sampleProject(t)

	// Plain membership does not grant project edits.
	err := Authorize(caller("dev@x.com", entities.RoleMember), ActionEditProject, "pm@x.com", project)
	assert.True(t, apperrors.IsForbidden(err))

	assert.NoError(t, Authorize(caller("pm@x.com", entities.RoleProjectManager), ActionEditProject, "pm@x.com", project))
	assert.NoError(t, Authorize(caller("root@x.com", entities.RoleAdmin), ActionEditProject, "pm@x.com", project))
}

func TestAuthorize_DeleteProject(t *testing.T) {
	project := sampleProject(t)
	// Hand management to someone who is not the owner.
	project.ManagerID = "lead@x.com"

	assert.NoError(t, Authorize(caller("pm@x.com", entities.RoleProjectManager), ActionDeleteProject, "pm@x.com", project))
	assert.NoError(t, Authorize(caller("lead@x.com", entities.RoleProjectManager), ActionDeleteProject, "pm@x.com", project))
	assert.NoError(t, Authorize(caller("root@x.com", entities.RoleAdmin), ActionDeleteProject, "pm@x.com", project))

	// A manager without the project_manager role cannot delete.
	err := Authorize(caller("lead@x.com", entities.RoleMember), ActionDeleteProject, "pm@x.com", project)
	assert.True(t, apperrors.IsForbidden(err))

	err = Authorize(caller("dev@x.com", entities.RoleMember), ActionDeleteProject, "pm@x.com", project)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestAuthorize_ApproveTask(t *testing.T) {
	project := sampleProject(t)

	assert.NoError(t, Authorize(caller("pm@x.com", entities.RoleProjectManager), ActionApproveTask, "pm@x.com", project))
	assert.NoError(t, Authorize(caller("anypm@x.com", entities.RoleProjectManager), ActionApproveTask, "pm@x.com", project))
	assert.NoError(t, Authorize(caller("root@x.com", entities.RoleAdmin), ActionApproveTask, "pm@x.com", project))

	err := Authorize(caller("dev@x.com", entities.RoleMember), ActionApproveTask, "pm@x.com", project)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestAuthorize_ManageAccounts(t *testing.T) {
	assert.NoError(t, Authorize(caller("root@x.com", entities.RoleAdmin), ActionManageAccounts, "", nil))

	for _, role := range []entities.Role{entities.RoleProjectManager, entities.RoleMember} {
		err := Authorize(caller("someone@x.com", role), ActionManageAccounts, "", nil)
		assert.True(t, apperrors.IsForbidden(err), "role %s", role)
	}
}

func TestAuthorize_OwnershipOverridesRole(t *testing.T) {
	project := sampleProject(t)
	project.ManagerID = "lead@x.com"

	// The owner keeps edit and delete even after handing off management,
	// whatever their system role says.
	owner := caller("pm@x.com", entities.RoleMember)
	assert.NoError(t, Authorize(owner, ActionEditProject, "pm@x.com", project))
	assert.NoError(t, Authorize(owner, ActionDeleteProject, "pm@x.com", project))
	assert.NoError(t, Authorize(owner, ActionApproveTask, "pm@x.com", project))
}
