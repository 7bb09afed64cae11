package entities

import (
	"fmt"
	"time"

	apperrors "pm-backend/pkg/errors"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusActive ProjectStatus = "active"
	ProjectStatusPaused ProjectStatus = "paused"
)

// IsValid reports whether the status is a known value
func (s ProjectStatus) IsValid() bool {
	return s == ProjectStatusActive || s == ProjectStatusPaused
}

// ProjectProgress is the reported delivery state of a project
type ProjectProgress string

const (
	ProgressOnTrack   ProjectProgress = "on_track"
	ProgressAtRisk    ProjectProgress = "at_risk"
	ProgressDelayed   ProjectProgress = "delayed"
	ProgressCompleted ProjectProgress = "completed"
)

// IsValid reports whether the progress is a known value
func (p ProjectProgress) IsValid() bool {
	switch p {
	case ProgressOnTrack, ProgressAtRisk, ProgressDelayed, ProgressCompleted:
		return true
	}
	return false
}

// Member is a point-in-time snapshot of an account embedded in a project.
// Name and role are denormalized and are not rewritten when the source
// account changes.
type Member struct {
	Email string `dynamodbav:"Email" json:"email"`
	Name  string `dynamodbav:"Name" json:"name"`
	Role  Role   `dynamodbav:"Role" json:"role"`
}

// Project is owned exclusively by the creating account, whose id is the
// partition key for the project and all of its tasks.
type Project struct {
	ProjectID   string          `dynamodbav:"ProjectID" json:"projectId"`
	OwnerID     string          `dynamodbav:"OwnerID" json:"ownerId"`
	Name        string          `dynamodbav:"Name" json:"name"`
	Description string          `dynamodbav:"Description" json:"description"`
	Status      ProjectStatus   `dynamodbav:"Status" json:"status"`
	Progress    ProjectProgress `dynamodbav:"Progress" json:"progress"`
	ManagerID   string          `dynamodbav:"ManagerID" json:"managerId"`
	ManagerName string          `dynamodbav:"ManagerName" json:"managerName"`
	DueDate     string          `dynamodbav:"DueDate" json:"dueDate"`
	Members     []Member        `dynamodbav:"Members" json:"members"`
	CreatedAt   string          `dynamodbav:"CreatedAt" json:"createdAt"`
	UpdatedAt   string          `dynamodbav:"UpdatedAt" json:"updatedAt"`
	Version     int             `dynamodbav:"Version" json:"version"`
}

// NewProject creates a project owned and managed by the given account
func NewProject(owner *Account, name, description string, status ProjectStatus, progress ProjectProgress, dueDate string) (*Project, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidationError("status must be active or paused")
	}
	if !progress.IsValid() {
		return nil, apperrors.NewValidationError("progress must be one of: on_track, at_risk, delayed, completed")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return &Project{
		ProjectID:   uuid.NewString(),
		OwnerID:     owner.AccountID,
		Name:        name,
		Description: description,
		Status:      status,
		Progress:    progress,
		ManagerID:   owner.AccountID,
		ManagerName: owner.Name,
		DueDate:     dueDate,
		Members: []Member{
			{Email: owner.AccountID, Name: owner.Name, Role: owner.Role},
		},
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}, nil
}

func (p *Project) GetID() string { return p.ProjectID }
func (p *Project) GetVersion() int { return p.Version }
func (p *Project) SetVersion(v int) { p.Version = v }
func (p *Project) SetUpdatedAt(t time.Time) {
	p.UpdatedAt = t.UTC().Format(time.RFC3339)
}

// IsManagedBy reports whether the account manages this project
func (p *Project) IsManagedBy(accountID string) bool {
	return p.ManagerID == accountID
}

// HasMember reports whether the email is in the membership list
func (p *Project) HasMember(email string) bool {
	for _, m := range p.Members {
		if m.Email == email {
			return true
		}
	}
	return false
}

// AddMember appends a membership snapshot; entries are unique by email
func (p *Project) AddMember(m Member) error {
	if p.HasMember(m.Email) {
		return apperrors.NewConflictError(fmt.Sprintf("member %s is already in the project", m.Email))
	}
	p.Members = append(p.Members, m)
	return nil
}

// RemoveMember deletes the membership entry for the email
func (p *Project) RemoveMember(email string) error {
	for i, m := range p.Members {
		if m.Email == email {
			p.Members = append(p.Members[:i], p.Members[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFoundError(fmt.Sprintf("member %s", email))
}
