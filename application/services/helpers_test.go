package services

import (
	"context"
	"testing"
	"time"

	"pm-backend/domain/core/entities"
	"pm-backend/infrastructure/persistence/keys"
	"pm-backend/infrastructure/persistence/memory"
	"pm-backend/pkg/auth"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// testEnv wires the services against the in-memory store with three seeded
// accounts: an admin, a project manager, and a member.
type testEnv struct {
	store    *memory.ItemStore
	repos    *Repositories
	accounts *AccountService
	projects *ProjectService
	tasks    *TaskService

	admin  *auth.CallerContext
	pm     *auth.CallerContext
	member *auth.CallerContext
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	store := memory.NewItemStore()
	repos := NewRepositories(store, logger)
	coordinator := NewCoordinator(repos.Projects, repos.Tasks, logger)

	jwtService, err := auth.NewJWTService("test-secret", "pm-backend-test", time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		store:    store,
		repos:    repos,
		accounts: NewAccountService(repos, jwtService, bcrypt.MinCost, logger),
		projects: NewProjectService(repos, coordinator, logger),
		tasks:    NewTaskService(repos, logger),
	}

	env.admin = env.seedAccount(t, "admin@x.com", "Admin", entities.RoleAdmin)
	env.pm = env.seedAccount(t, "pm@x.com", "Paula Manager", entities.RoleProjectManager)
	env.member = env.seedAccount(t, "dev@x.com", "Devon Dev", entities.RoleMember)
	return env
}

func (e *testEnv) seedAccount(t *testing.T, email, name string, role entities.Role) *auth.CallerContext {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	account, err := entities.NewAccount(email, name, role, string(hash))
	require.NoError(t, err)
	require.NoError(t, e.repos.Accounts.Create(context.Background(), keys.AccountPartition, account))

	return &auth.CallerContext{AccountID: email, Name: name, Role: string(role)}
}

// futureDate gives a due date safely ahead of the not-in-the-past check.
func futureDate() string {
	return time.Now().UTC().AddDate(1, 0, 0).Format("2006-01-02")
}

func (e *testEnv) createProject(t *testing.T, caller *auth.CallerContext, name string) *entities.Project {
	t.Helper()

	project, err := e.projects.Create(context.Background(), caller, CreateProjectInput{
		Name:    name,
		DueDate: futureDate(),
	})
	require.NoError(t, err)
	return project
}

func (e *testEnv) addMember(t *testing.T, caller *auth.CallerContext, tenantID, projectID, email string) {
	t.Helper()

	_, err := e.projects.AddMember(context.Background(), caller, tenantID, projectID, AddMemberInput{Email: email})
	require.NoError(t, err)
}

func (e *testEnv) createTask(t *testing.T, caller *auth.CallerContext, tenantID, projectID, title, assignee string) *entities.Task {
	t.Helper()

	task, err := e.tasks.Create(context.Background(), caller, tenantID, CreateTaskInput{
		ProjectID:      projectID,
		Title:          title,
		AssigneeID:     assignee,
		EstimatedHours: 2,
		DueDate:        futureDate(),
	})
	require.NoError(t, err)
	return task
}
