package entities

import (
	"time"

	apperrors "pm-backend/pkg/errors"
)

// Role is an account's system-wide role
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleProjectManager Role = "project_manager"
	RoleMember         Role = "member"
)

// IsValid reports whether the role is a known value
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleMember:
		return true
	}
	return false
}

// Account is a registered identity. The account's email is its identifier and
// is immutable; it also serves as the partition key (tenant id) for every
// project the account owns.
type Account struct {
	AccountID    string `dynamodbav:"AccountID" json:"accountId"`
	Name         string `dynamodbav:"Name" json:"name"`
	Role         Role   `dynamodbav:"Role" json:"role"`
	PasswordHash string `dynamodbav:"PasswordHash" json:"-"`
	CreatedAt    string `dynamodbav:"CreatedAt" json:"createdAt"`
	UpdatedAt    string `dynamodbav:"UpdatedAt" json:"updatedAt"`
	Version      int    `dynamodbav:"Version" json:"version"`
}

// NewAccount creates an account with its initial version
func NewAccount(email, name string, role Role, passwordHash string) (*Account, error) {
	if email == "" {
		return nil, apperrors.NewValidationError("email is required")
	}
	if !role.IsValid() {
		return nil, apperrors.NewValidationError("role must be one of: admin, project_manager, member")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return &Account{
		AccountID:    email,
		Name:         name,
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}, nil
}

func (a *Account) GetID() string { return a.AccountID }
func (a *Account) GetVersion() int { return a.Version }
func (a *Account) SetVersion(v int) { a.Version = v }
func (a *Account) SetUpdatedAt(t time.Time) {
	a.UpdatedAt = t.UTC().Format(time.RFC3339)
}
