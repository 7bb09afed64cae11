package services

import (
	"context"

	"pm-backend/application/authz"
	"pm-backend/domain/core/entities"
	"pm-backend/domain/core/validators"
	"pm-backend/infrastructure/persistence/keys"
	"pm-backend/pkg/auth"
	apperrors "pm-backend/pkg/errors"

	"go.uber.org/zap"
)

// ProjectService executes project operations behind the
// authorize -> validate -> execute pipeline. The creating account becomes the
// project's owner and tenant: the project and all of its tasks live in that
// account's partition.
type ProjectService struct {
	repos       *Repositories
	coordinator *Coordinator
	logger      *zap.Logger
}

// NewProjectService creates a project service
func NewProjectService(repos *Repositories, coordinator *Coordinator, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		repos:       repos,
		coordinator: coordinator,
		logger:      logger,
	}
}

// CreateProjectInput is the payload for creating a project
type CreateProjectInput struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
	Status      string `json:"status" validate:"omitempty,oneof=active paused"`
	Progress    string `json:"progress" validate:"omitempty,oneof=on_track at_risk delayed completed"`
	DueDate     string `json:"dueDate" validate:"required"`
}

// UpdateProjectInput is the payload for editing project fields. Absent fields
// are left unchanged.
type UpdateProjectInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Status      *string `json:"status" validate:"omitempty,oneof=active paused"`
	Progress    *string `json:"progress" validate:"omitempty,oneof=on_track at_risk delayed completed"`
	DueDate     *string `json:"dueDate" validate:"omitempty"`
}

// AddMemberInput is the payload for adding a project member
type AddMemberInput struct {
	Email string `json:"email" validate:"required,email"`
}

// Create creates a project owned by the caller
func (s *ProjectService) Create(ctx context.Context, caller *auth.CallerContext, input CreateProjectInput) (*entities.Project, error) {
	if err := authz.Authorize(caller, authz.ActionCreateProject, caller.AccountID, nil); err != nil {
		return nil, err
	}
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = string(entities.ProjectStatusActive)
	}
	if input.Progress == "" {
		input.Progress = string(entities.ProgressOnTrack)
	}

	owner, err := s.repos.Accounts.Get(ctx, keys.AccountPartition, caller.AccountID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError("caller account no longer exists")
		}
		return nil, err
	}

	project, err := entities.NewProject(owner, input.Name, input.Description,
		entities.ProjectStatus(input.Status), entities.ProjectProgress(input.Progress), input.DueDate)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Projects.Create(ctx, caller.AccountID, project); err != nil {
		return nil, err
	}

	s.logger.Info("Project created",
		zap.String("project", project.ProjectID),
		zap.String("owner", caller.AccountID),
	)
	return project, nil
}

// Get returns a single project the caller may read
func (s *ProjectService) Get(ctx context.Context, caller *auth.CallerContext, tenantID, projectID string) (*entities.Project, error) {
	project, err := s.repos.Projects.Get(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.ActionReadProject, tenantID, project); err != nil {
		return nil, err
	}
	return project, nil
}

// List returns all projects in a tenant's partition. Only the tenant itself
// or an admin may list a partition; partition isolation between tenants is an
// invariant, not a convention.
func (s *ProjectService) List(ctx context.Context, caller *auth.CallerContext, tenantID string) ([]*entities.Project, error) {
	if caller.AccountID != tenantID && entities.Role(caller.Role) != entities.RoleAdmin {
		return nil, apperrors.NewForbiddenError("cannot list another account's projects")
	}
	return s.repos.Projects.List(ctx, tenantID)
}

// Update edits project fields with a version-checked write
func (s *ProjectService) Update(ctx context.Context, caller *auth.CallerContext, tenantID, projectID string, input UpdateProjectInput) (*entities.Project, error) {
	project, err := s.repos.Projects.Get(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.ActionEditProject, tenantID, project); err != nil {
		return nil, err
	}
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}

	return s.repos.Projects.Update(ctx, tenantID, projectID, func(p *entities.Project) error {
		if input.Name != nil {
			p.Name = *input.Name
		}
		if input.Description != nil {
			p.Description = *input.Description
		}
		if input.Status != nil {
			p.Status = entities.ProjectStatus(*input.Status)
		}
		if input.Progress != nil {
			p.Progress = entities.ProjectProgress(*input.Progress)
		}
		if input.DueDate != nil {
			p.DueDate = *input.DueDate
		}
		return nil
	})
}

// Delete removes a project and cascades to its tasks
func (s *ProjectService) Delete(ctx context.Context, caller *auth.CallerContext, tenantID, projectID string) error {
	project, err := s.repos.Projects.Get(ctx, tenantID, projectID)
	if err != nil {
		return err
	}
	if err := authz.Authorize(caller, authz.ActionDeleteProject, tenantID, project); err != nil {
		return err
	}
	return s.coordinator.CascadeDeleteProject(ctx, tenantID, projectID)
}

// AddMember adds an account to the project's membership list, snapshotting
// its current name and role
func (s *ProjectService) AddMember(ctx context.Context, caller *auth.CallerContext, tenantID, projectID string, input AddMemberInput) (*entities.Project, error) {
	project, err := s.repos.Projects.Get(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.ActionEditProject, tenantID, project); err != nil {
		return nil, err
	}
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}

	account, err := s.repos.Accounts.Get(ctx, keys.AccountPartition, input.Email)
	if err != nil {
		return nil, err
	}

	return s.coordinator.AddMember(ctx, tenantID, projectID, entities.Member{
		Email: account.AccountID,
		Name:  account.Name,
		Role:  account.Role,
	})
}

// RemoveMember removes a membership entry. Removal is refused while the
// member holds active task assignments in the project unless force is set.
func (s *ProjectService) RemoveMember(ctx context.Context, caller *auth.CallerContext, tenantID, projectID, email string, force bool) (*entities.Project, error) {
	project, err := s.repos.Projects.Get(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.ActionEditProject, tenantID, project); err != nil {
		return nil, err
	}
	if email == project.OwnerID {
		return nil, apperrors.NewConflictError("the project owner cannot be removed from the project")
	}
	return s.coordinator.RemoveMember(ctx, tenantID, projectID, email, force)
}
