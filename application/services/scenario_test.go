package services

import (
	"context"
	"testing"

	"pm-backend/domain/core/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The full collaboration flow: a project manager sets up a project, brings a
// developer on board and assigns them work; the developer finds the task by
// listing the manager's partition, works it to completion; the manager
// approves it and finally tears the project down.
func TestCollaborationFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	project, err := env.projects.Create(ctx, env.pm, CreateProjectInput{
		Name:        "Launch",
		Description: "Ship the first release",
		DueDate:     futureDate(),
	})
	require.NoError(t, err)

	_, err = env.projects.AddMember(ctx, env.pm, env.pm.AccountID, project.ProjectID, AddMemberInput{Email: env.member.AccountID})
	require.NoError(t, err)

	task, err := env.tasks.Create(ctx, env.pm, env.pm.AccountID, CreateTaskInput{
		ProjectID:      project.ProjectID,
		Title:          "Implement the API",
		AssigneeID:     env.member.AccountID,
		EstimatedHours: 8,
		DueDate:        futureDate(),
	})
	require.NoError(t, err)

	// The developer reads the manager's partition through their membership.
	visible, err := env.tasks.List(ctx, env.member, env.pm.AccountID, TaskFilter{ProjectID: project.ProjectID})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, task.TaskID, visible[0].TaskID)
	assert.Equal(t, entities.TaskStatusTodo, visible[0].Status)

	for _, status := range []string{
		string(entities.TaskStatusInProgress),
		string(entities.TaskStatusInReview),
		string(entities.TaskStatusCompleted),
	} {
		s := status
		_, err = env.tasks.Update(ctx, env.member, env.pm.AccountID, task.TaskID, UpdateTaskInput{Status: &s})
		require.NoError(t, err, "transition to %s", status)
	}

	approved, err := env.tasks.Approve(ctx, env.pm, env.pm.AccountID, task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusApproved, approved.Status)
	assert.Equal(t, 5, approved.Version)

	require.NoError(t, env.projects.Delete(ctx, env.pm, env.pm.AccountID, project.ProjectID))

	remaining, err := env.tasks.List(ctx, env.pm, env.pm.AccountID, TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
