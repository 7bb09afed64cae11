package services

import (
	"context"
	"testing"

	"pm-backend/domain/core/entities"
	apperrors "pm-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskService_CreateDefaultsAndSnapshot(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, env.pm, "Launch")
	env.addMember(t, env.pm, env.pm.AccountID, project.ProjectID, env.member.AccountID)

	task, err := env.tasks.Create(context.Background(), env.pm, env.pm.AccountID, CreateTaskInput{
		ProjectID:      project.ProjectID,
		Title:          "Build the thing",
		AssigneeID:     env.member.AccountID,
		EstimatedHours: 3,
		DueDate:        futureDate(),
	})

	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusTodo, task.Status)
	assert.Equal(t, entities.PriorityMedium, task.Priority)
	assert.Equal(t, entities.CategoryImportant, task.Category)
	assert.Equal(t, env.member.AccountID, task.AssigneeID)
	assert.Equal(t, "Devon Dev", task.AssigneeName)
	assert.Equal(t, 1, task.Version)
}

func TestTaskService_CreateRejectsNonMemberAssignee(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, env.pm, "Launch")

	_, err := env.tasks.Create(context.Background(), env.pm, env.pm.AccountID, CreateTaskInput{
		ProjectID:      project.ProjectID,
		Title:          "Build",
		AssigneeID:     env.member.AccountID,
		EstimatedHours: 1,
		DueDate:        futureDate(),
	})

	assert.True(t, apperrors.IsValidation(err))
}

func TestTaskService_CreateRejectsPastDueDate(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, env.pm, "Launch")

	_, err := env.tasks.Create(context.Background(), env.pm, env.pm.AccountID, CreateTaskInput{
		ProjectID:      project.ProjectID,
		Title:          "Build",
		AssigneeID:     env.pm.AccountID,
		EstimatedHours: 1,
		DueDate:        "2020-01-01",
	})

	assert.True(t, apperrors.IsValidation(err))
}

func TestTaskService_CreateRejectsTinyEstimate(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, env.pm, "Launch")

	_, err := env.tasks.Create(context.Background(), env.pm, env.pm.AccountID, CreateTaskInput{
		ProjectID:      project.ProjectID,
		Title:          "Build",
		AssigneeID:     env.pm.AccountID,
		EstimatedHours: 0.25,
		DueDate:        futureDate(),
	})

	assert.True(t, apperrors.IsValidation(err))
}

func TestTaskService_CreateUnknownProject(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.tasks.Create(context.Background(), env.pm, env.pm.AccountID, CreateTaskInput{
		ProjectID:      "nope",
		Title:          "Build",
		AssigneeID:     env.pm.AccountID,
		EstimatedHours: 1,
		DueDate:        futureDate(),
	})

	assert.True(t, apperrors.IsNotFound(err))
}

func TestTaskService_UpdateRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, env.pm, "Launch")
	task := env.createTask(t, env.pm, env.pm.AccountID, project.ProjectID, "Build", env.pm.AccountID)

	bad := "blocked"
	_, err := env.tasks.Update(context.Background(), env.pm, env.pm.AccountID, task.TaskID, UpdateTaskInput{Status: &bad})
	assert.True(t, apperrors.IsValidation(err))

	got, err := env.tasks.Get(context.Background(), env.pm, env.pm.AccountID, task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusTodo, got.Status)
	assert.Equal(t, 1, got.Version)
}

func TestTaskService_MemberMayProgressButNotApprove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.createProject(t, env.pm, "Launch")
	env.addMember(t, env.pm, env.pm.AccountID, project.ProjectID, env.member.AccountID)
	task := env.createTask(t, env.pm, env.pm.AccountID, project.ProjectID, "Build", env.member.AccountID)

	inProgress := string(entities.TaskStatusInProgress)
	updated, err := env.tasks.Update(ctx, env.member, env.pm.AccountID, task.TaskID, UpdateTaskInput{Status: &inProgress})
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusInProgress, updated.Status)

	approved := string(entities.TaskStatusApproved)
	_, err = env.tasks.Update(ctx, env.member, env.pm.AccountID, task.TaskID, UpdateTaskInput{Status: &approved})
	assert.True(t, apperrors.IsForbidden(err))

	// The same transition succeeds for the project manager.
	final, err := env.tasks.Update(ctx, env.pm, env.pm.AccountID, task.TaskID, UpdateTaskInput{Status: &approved})
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusApproved, final.Status)
}

func TestTaskService_Approve(t *testing.T) {
	env := newTestEnv(t)
	project := env.createProject(t, env.pm, "Launch")
	task := env.createTask(t, env.pm, env.pm.AccountID, project.ProjectID, "Build", env.pm.AccountID)

	approved, err := env.tasks.Approve(context.Background(), env.pm, env.pm.AccountID, task.TaskID)

	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusApproved, approved.Status)
	assert.Equal(t, 2, approved.Version)
}

func TestTaskService_UpdateReassignmentRefreshesSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.createProject(t, env.pm, "Launch")
	env.addMember(t, env.pm, env.pm.AccountID, project.ProjectID, env.member.AccountID)
	task := env.createTask(t, env.pm, env.pm.AccountID, project.ProjectID, "Build", env.pm.AccountID)

	assignee := env.member.AccountID
	updated, err := env.tasks.Update(ctx, env.pm, env.pm.AccountID, task.TaskID, UpdateTaskInput{AssigneeID: &assignee})
	require.NoError(t, err)
	assert.Equal(t, env.member.AccountID, updated.AssigneeID)
	assert.Equal(t, "Devon Dev", updated.AssigneeName)

	outsider := "ghost@x.com"
	_, err = env.tasks.Update(ctx, env.pm, env.pm.AccountID, task.TaskID, UpdateTaskInput{AssigneeID: &outsider})
	assert.True(t, apperrors.IsValidation(err))
}

func TestTaskService_ListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.createProject(t, env.pm, "Launch")
	other := env.createProject(t, env.pm, "Side Quest")
	first := env.createTask(t, env.pm, env.pm.AccountID, project.ProjectID, "Build", env.pm.AccountID)
	env.createTask(t, env.pm, env.pm.AccountID, other.ProjectID, "Elsewhere", env.pm.AccountID)

	inProgress := string(entities.TaskStatusInProgress)
	_, err := env.tasks.Update(ctx, env.pm, env.pm.AccountID, first.TaskID, UpdateTaskInput{Status: &inProgress})
	require.NoError(t, err)

	byProject, err := env.tasks.List(ctx, env.pm, env.pm.AccountID, TaskFilter{ProjectID: project.ProjectID})
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	assert.Equal(t, first.TaskID, byProject[0].TaskID)

	byStatus, err := env.tasks.List(ctx, env.pm, env.pm.AccountID, TaskFilter{Status: "todo"})
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)

	all, err := env.tasks.List(ctx, env.pm, env.pm.AccountID, TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTaskService_ListByOutsiderRequiresProjectMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.createProject(t, env.pm, "Launch")
	env.createTask(t, env.pm, env.pm.AccountID, project.ProjectID, "Build", env.pm.AccountID)

	// Without a project filter a foreign partition cannot be listed at all.
	_, err := env.tasks.List(ctx, env.member, env.pm.AccountID, TaskFilter{})
	assert.True(t, apperrors.IsForbidden(err))

	// With a project filter the caller still needs membership.
	_, err = env.tasks.List(ctx, env.member, env.pm.AccountID, TaskFilter{ProjectID: project.ProjectID})
	assert.True(t, apperrors.IsForbidden(err))

	env.addMember(t, env.pm, env.pm.AccountID, project.ProjectID, env.member.AccountID)

	tasks, err := env.tasks.List(ctx, env.member, env.pm.AccountID, TaskFilter{ProjectID: project.ProjectID})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestTaskService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.createProject(t, env.pm, "Launch")
	task := env.createTask(t, env.pm, env.pm.AccountID, project.ProjectID, "Build", env.pm.AccountID)

	require.NoError(t, env.tasks.Delete(ctx, env.pm, env.pm.AccountID, task.TaskID))

	err := env.tasks.Delete(ctx, env.pm, env.pm.AccountID, task.TaskID)
	assert.True(t, apperrors.IsNotFound(err))
}
