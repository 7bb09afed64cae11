package services

import (
	"context"
	"testing"

	apperrors "pm-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCoordinator_CascadeDeleteIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coordinator := NewCoordinator(env.repos.Projects, env.repos.Tasks, zap.NewNop())

	project := env.createProject(t, env.pm, "Launch")
	env.createTask(t, env.pm, env.pm.AccountID, project.ProjectID, "One", env.pm.AccountID)
	env.createTask(t, env.pm, env.pm.AccountID, project.ProjectID, "Two", env.pm.AccountID)

	require.NoError(t, coordinator.CascadeDeleteProject(ctx, env.pm.AccountID, project.ProjectID))

	// Re-issuing the cascade after everything is gone converges on the same
	// end state instead of failing.
	require.NoError(t, coordinator.CascadeDeleteProject(ctx, env.pm.AccountID, project.ProjectID))

	projects, err := env.repos.Projects.List(ctx, env.pm.AccountID)
	require.NoError(t, err)
	assert.Empty(t, projects)

	tasks, err := env.repos.Tasks.List(ctx, env.pm.AccountID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCoordinator_SnapshotsStayStaleOnAccountRename(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	project := env.createProject(t, env.pm, "Launch")
	env.addMember(t, env.pm, env.pm.AccountID, project.ProjectID, env.member.AccountID)
	task := env.createTask(t, env.pm, env.pm.AccountID, project.ProjectID, "Build", env.member.AccountID)

	name := "Devon Renamed"
	_, err := env.accounts.Update(ctx, env.member, env.member.AccountID, UpdateAccountInput{Name: &name})
	require.NoError(t, err)

	// Existing snapshots keep the name captured at join/assignment time.
	got, err := env.projects.Get(ctx, env.pm, env.pm.AccountID, project.ProjectID)
	require.NoError(t, err)
	require.Len(t, got.Members, 2)
	assert.Equal(t, "Devon Dev", got.Members[1].Name)

	gotTask, err := env.tasks.Get(ctx, env.pm, env.pm.AccountID, task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, "Devon Dev", gotTask.AssigneeName)
}

func TestCoordinator_RemoveMemberAbsentEmail(t *testing.T) {
	env := newTestEnv(t)
	coordinator := NewCoordinator(env.repos.Projects, env.repos.Tasks, zap.NewNop())
	project := env.createProject(t, env.pm, "Launch")

	_, err := coordinator.RemoveMember(context.Background(), env.pm.AccountID, project.ProjectID, "ghost@x.com", false)

	assert.True(t, apperrors.IsNotFound(err))
}
