package services

import (
	"context"
	"time"

	"pm-backend/application/authz"
	"pm-backend/domain/core/entities"
	"pm-backend/domain/core/validators"
	"pm-backend/pkg/auth"
	apperrors "pm-backend/pkg/errors"

	"go.uber.org/zap"
)

// TaskService executes task operations. Tasks are stored in the partition of
// the account that owns their parent project, so the tenant id for every task
// operation is the project owner's account id.
type TaskService struct {
	repos  *Repositories
	logger *zap.Logger
}

// NewTaskService creates a task service
func NewTaskService(repos *Repositories, logger *zap.Logger) *TaskService {
	return &TaskService{
		repos:  repos,
		logger: logger,
	}
}

// CreateTaskInput is the payload for creating a task
type CreateTaskInput struct {
	ProjectID      string  `json:"projectId" validate:"required"`
	Title          string  `json:"title" validate:"required"`
	Description    string  `json:"description" validate:"max=500"`
	Priority       string  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Category       string  `json:"category" validate:"omitempty,oneof=important notes link"`
	AssigneeID     string  `json:"assigneeId" validate:"required,email"`
	EstimatedHours float64 `json:"estimatedHours" validate:"gte=0.5"`
	DueDate        string  `json:"dueDate" validate:"required"`
}

// UpdateTaskInput is the payload for editing a task. Absent fields are left
// unchanged.
type UpdateTaskInput struct {
	Title          *string  `json:"title" validate:"omitempty,min=1"`
	Description    *string  `json:"description" validate:"omitempty,max=500"`
	Status         *string  `json:"status" validate:"omitempty,oneof=todo in_progress in_review completed approved"`
	Priority       *string  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Category       *string  `json:"category" validate:"omitempty,oneof=important notes link"`
	AssigneeID     *string  `json:"assigneeId" validate:"omitempty,email"`
	EstimatedHours *float64 `json:"estimatedHours" validate:"omitempty,gte=0.5"`
	DueDate        *string  `json:"dueDate" validate:"omitempty"`
}

// TaskFilter narrows a task listing after the partition query
type TaskFilter struct {
	ProjectID string
	Status    string
	Priority  string
}

const dateLayout = "2006-01-02"

// Create creates a task under an existing project, assigned to one of the
// project's members
func (s *TaskService) Create(ctx context.Context, caller *auth.CallerContext, tenantID string, input CreateTaskInput) (*entities.Task, error) {
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}

	project, err := s.repos.Projects.Get(ctx, tenantID, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.ActionEditTask, tenantID, project); err != nil {
		return nil, err
	}

	if !project.HasMember(input.AssigneeID) {
		return nil, apperrors.NewValidationError("assignee must be a member of the project")
	}
	if due, err := time.Parse(dateLayout, input.DueDate); err != nil {
		return nil, apperrors.NewValidationError("due date must be in YYYY-MM-DD format")
	} else if due.Before(time.Now().UTC().Truncate(24 * time.Hour)) {
		return nil, apperrors.NewValidationError("due date cannot be in the past")
	}

	if input.Priority == "" {
		input.Priority = string(entities.PriorityMedium)
	}
	if input.Category == "" {
		input.Category = string(entities.CategoryImportant)
	}

	var assignee entities.Member
	for _, m := range project.Members {
		if m.Email == input.AssigneeID {
			assignee = m
			break
		}
	}

	task, err := entities.NewTask(project.ProjectID, input.Title, input.Description,
		entities.TaskPriority(input.Priority), entities.TaskCategory(input.Category),
		assignee, input.EstimatedHours, input.DueDate)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Tasks.Create(ctx, tenantID, task); err != nil {
		return nil, err
	}

	s.logger.Info("Task created",
		zap.String("task", task.TaskID),
		zap.String("project", project.ProjectID),
		zap.String("assignee", task.AssigneeID),
	)
	return task, nil
}

// Get returns a single task the caller may read
func (s *TaskService) Get(ctx context.Context, caller *auth.CallerContext, tenantID, taskID string) (*entities.Task, error) {
	task, err := s.repos.Tasks.Get(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}
	project, err := s.repos.Projects.Get(ctx, tenantID, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.ActionReadTask, tenantID, project); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns the tenant's tasks matching the filter. The partition owner
// and admins see the whole partition; anyone else must filter by a project
// they are a member of.
func (s *TaskService) List(ctx context.Context, caller *auth.CallerContext, tenantID string, filter TaskFilter) ([]*entities.Task, error) {
	if caller.AccountID != tenantID && entities.Role(caller.Role) != entities.RoleAdmin {
		if filter.ProjectID == "" {
			return nil, apperrors.NewForbiddenError("cannot list another account's tasks without a project")
		}
		project, err := s.repos.Projects.Get(ctx, tenantID, filter.ProjectID)
		if err != nil {
			return nil, err
		}
		if err := authz.Authorize(caller, authz.ActionReadTask, tenantID, project); err != nil {
			return nil, err
		}
	}

	tasks, err := s.repos.Tasks.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	filtered := make([]*entities.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Status != "" && string(t.Status) != filter.Status {
			continue
		}
		if filter.Priority != "" && string(t.Priority) != filter.Priority {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered, nil
}

// Update edits a task with a version-checked write. A status change to
// approved goes through the approval policy: only a project manager, the
// partition owner, or an admin may approve.
func (s *TaskService) Update(ctx context.Context, caller *auth.CallerContext, tenantID, taskID string, input UpdateTaskInput) (*entities.Task, error) {
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}

	task, err := s.repos.Tasks.Get(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}
	project, err := s.repos.Projects.Get(ctx, tenantID, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.ActionEditTask, tenantID, project); err != nil {
		return nil, err
	}

	if input.Status != nil && entities.TaskStatus(*input.Status) == entities.TaskStatusApproved && task.Status != entities.TaskStatusApproved {
		if err := authz.Authorize(caller, authz.ActionApproveTask, tenantID, project); err != nil {
			return nil, err
		}
	}

	var assignee *entities.Member
	if input.AssigneeID != nil && *input.AssigneeID != task.AssigneeID {
		if !project.HasMember(*input.AssigneeID) {
			return nil, apperrors.NewValidationError("assignee must be a member of the project")
		}
		for _, m := range project.Members {
			if m.Email == *input.AssigneeID {
				snapshot := m
				assignee = &snapshot
				break
			}
		}
	}

	return s.repos.Tasks.Update(ctx, tenantID, taskID, func(t *entities.Task) error {
		if input.Title != nil {
			t.Title = *input.Title
		}
		if input.Description != nil {
			t.Description = *input.Description
		}
		if input.Status != nil {
			t.Status = entities.TaskStatus(*input.Status)
		}
		if input.Priority != nil {
			t.Priority = entities.TaskPriority(*input.Priority)
		}
		if input.Category != nil {
			t.Category = entities.TaskCategory(*input.Category)
		}
		if assignee != nil {
			t.AssigneeID = assignee.Email
			t.AssigneeName = assignee.Name
		}
		if input.EstimatedHours != nil {
			t.EstimatedHours = *input.EstimatedHours
		}
		if input.DueDate != nil {
			t.DueDate = *input.DueDate
		}
		return nil
	})
}

// Approve marks a task approved
func (s *TaskService) Approve(ctx context.Context, caller *auth.CallerContext, tenantID, taskID string) (*entities.Task, error) {
	status := string(entities.TaskStatusApproved)
	return s.Update(ctx, caller, tenantID, taskID, UpdateTaskInput{Status: &status})
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, caller *auth.CallerContext, tenantID, taskID string) error {
	task, err := s.repos.Tasks.Get(ctx, tenantID, taskID)
	if err != nil {
		return err
	}
	project, err := s.repos.Projects.Get(ctx, tenantID, task.ProjectID)
	if err != nil {
		return err
	}
	if err := authz.Authorize(caller, authz.ActionEditTask, tenantID, project); err != nil {
		return err
	}
	return s.repos.Tasks.Delete(ctx, tenantID, taskID)
}
