package services

import (
	"context"
	"fmt"

	"pm-backend/domain/core/entities"
	"pm-backend/infrastructure/persistence"
	apperrors "pm-backend/pkg/errors"

	"go.uber.org/zap"
)

// Coordinator keeps denormalized copies consistent where the store offers no
// joins or multi-item transactions: the membership snapshots embedded in a
// project, the assignee snapshot embedded in a task, and the task cascade on
// project deletion.
//
// Account renames and role changes deliberately do NOT rewrite existing
// snapshots; they are point-in-time denormalizations and their staleness is
// accepted.
type Coordinator struct {
	projects *persistence.Repository[*entities.Project]
	tasks    *persistence.Repository[*entities.Task]
	logger   *zap.Logger
}

// NewCoordinator creates a consistency coordinator
func NewCoordinator(
	projects *persistence.Repository[*entities.Project],
	tasks *persistence.Repository[*entities.Task],
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		projects: projects,
		tasks:    tasks,
		logger:   logger,
	}
}

// AddMember appends a membership snapshot to the project. Membership entries
// are unique by email; a duplicate surfaces as a conflict.
func (c *Coordinator) AddMember(ctx context.Context, tenantID, projectID string, member entities.Member) (*entities.Project, error) {
	return c.projects.Update(ctx, tenantID, projectID, func(p *entities.Project) error {
		return p.AddMember(member)
	})
}

// RemoveMember removes a membership entry. While the member still holds
// active (non-completed, non-approved) task assignments in the project the
// removal is refused, unless force is set, in which case those tasks keep
// pointing at the departed email.
func (c *Coordinator) RemoveMember(ctx context.Context, tenantID, projectID, email string, force bool) (*entities.Project, error) {
	if !force {
		active, err := c.activeAssignments(ctx, tenantID, projectID, email)
		if err != nil {
			return nil, err
		}
		if active > 0 {
			return nil, apperrors.NewConflictError(fmt.Sprintf(
				"member %s has %d active task assignment(s); reassign them or force the removal", email, active))
		}
	}

	project, err := c.projects.Update(ctx, tenantID, projectID, func(p *entities.Project) error {
		return p.RemoveMember(email)
	})
	if err != nil {
		return nil, err
	}

	if force {
		c.logger.Warn("Member removed with active assignments left dangling",
			zap.String("project", projectID),
			zap.String("member", email),
		)
	}
	return project, nil
}

// activeAssignments counts non-terminal tasks assigned to the email within
// the project.
func (c *Coordinator) activeAssignments(ctx context.Context, tenantID, projectID, email string) (int, error) {
	tasks, err := c.tasks.List(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	active := 0
	for _, t := range tasks {
		if t.ProjectID == projectID && t.AssigneeID == email && t.IsActiveAssignment() {
			active++
		}
	}
	return active, nil
}

// CascadeDeleteProject deletes every task belonging to the project and then
// the project item itself. The store has no multi-item transaction, so the
// cascade proceeds item by item; every delete is idempotent, which makes a
// retried cascade after a partial failure converge on the same end state.
func (c *Coordinator) CascadeDeleteProject(ctx context.Context, tenantID, projectID string) error {
	tasks, err := c.tasks.List(ctx, tenantID)
	if err != nil {
		return err
	}

	deleted := 0
	for _, t := range tasks {
		if t.ProjectID != projectID {
			continue
		}
		if err := c.tasks.DeleteIfExists(ctx, tenantID, t.TaskID); err != nil {
			// The project item is still present, so re-issuing the delete
			// resumes the cascade from where it stopped.
			return apperrors.Wrapf(err, "cascade interrupted after %d task(s), retry the delete", deleted)
		}
		deleted++
	}

	if err := c.projects.DeleteIfExists(ctx, tenantID, projectID); err != nil {
		return err
	}

	c.logger.Info("Project deleted with task cascade",
		zap.String("project", projectID),
		zap.String("tenant", tenantID),
		zap.Int("tasksDeleted", deleted),
	)
	return nil
}
