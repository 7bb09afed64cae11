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
	"golang.org/x/crypto/bcrypt"
)

// AccountService manages the account directory. Creating, changing roles on,
// and deleting accounts is admin-only; an account may update its own name and
// password.
type AccountService struct {
	repos      *Repositories
	jwt        *auth.JWTService
	bcryptCost int
	logger     *zap.Logger
}

// NewAccountService creates an account service
func NewAccountService(repos *Repositories, jwt *auth.JWTService, bcryptCost int, logger *zap.Logger) *AccountService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{
		repos:      repos,
		jwt:        jwt,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// CreateAccountInput is the payload for registering an account
type CreateAccountInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin project_manager member"`
}

// UpdateAccountInput is the payload for editing an account. The email is
// immutable; absent fields are left unchanged.
type UpdateAccountInput struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin project_manager member"`
}

// LoginInput is the payload for authenticating
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the issued token and the authenticated account
type LoginResult struct {
	Token   string            `json:"token"`
	Account *entities.Account `json:"account"`
}

// Create registers a new account (admin only)
func (s *AccountService) Create(ctx context.Context, caller *auth.CallerContext, input CreateAccountInput) (*entities.Account, error) {
	if err := authz.Authorize(caller, authz.ActionManageAccounts, "", nil); err != nil {
		return nil, err
	}
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}

	if input.Role == "" {
		input.Role = string(entities.RoleMember)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password").WithCause(err)
	}

	account, err := entities.NewAccount(input.Email, input.Name, entities.Role(input.Role), string(hash))
	if err != nil {
		return nil, err
	}

	if err := s.repos.Accounts.Create(ctx, keys.AccountPartition, account); err != nil {
		return nil, err
	}

	s.logger.Info("Account created",
		zap.String("account", account.AccountID),
		zap.String("role", string(account.Role)),
	)
	return account, nil
}

// Get returns an account; admins may read any account, others only their own
func (s *AccountService) Get(ctx context.Context, caller *auth.CallerContext, accountID string) (*entities.Account, error) {
	if caller.AccountID != accountID {
		if err := authz.Authorize(caller, authz.ActionManageAccounts, "", nil); err != nil {
			return nil, err
		}
	}
	return s.repos.Accounts.Get(ctx, keys.AccountPartition, accountID)
}

// List returns all registered accounts (admin only)
func (s *AccountService) List(ctx context.Context, caller *auth.CallerContext) ([]*entities.Account, error) {
	if err := authz.Authorize(caller, authz.ActionManageAccounts, "", nil); err != nil {
		return nil, err
	}
	return s.repos.Accounts.List(ctx, keys.AccountPartition)
}

// Update edits an account. Role changes are admin-only; name and password may
// also be changed by the account itself.
func (s *AccountService) Update(ctx context.Context, caller *auth.CallerContext, accountID string, input UpdateAccountInput) (*entities.Account, error) {
	isSelf := caller.AccountID == accountID
	if !isSelf || input.Role != nil {
		if err := authz.Authorize(caller, authz.ActionManageAccounts, "", nil); err != nil {
			return nil, err
		}
	}
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}

	var hash string
	if input.Password != nil {
		h, err := bcrypt.GenerateFromPassword([]byte(*input.Password), s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to hash password").WithCause(err)
		}
		hash = string(h)
	}

	return s.repos.Accounts.Update(ctx, keys.AccountPartition, accountID, func(a *entities.Account) error {
		if input.Name != nil {
			a.Name = *input.Name
		}
		if input.Role != nil {
			a.Role = entities.Role(*input.Role)
		}
		if input.Password != nil {
			a.PasswordHash = hash
		}
		return nil
	})
}

// Delete removes an account (admin only). An account that still owns
// projects cannot be deleted, since its partition would be orphaned.
func (s *AccountService) Delete(ctx context.Context, caller *auth.CallerContext, accountID string) error {
	if err := authz.Authorize(caller, authz.ActionManageAccounts, "", nil); err != nil {
		return err
	}

	projects, err := s.repos.Projects.List(ctx, accountID)
	if err != nil {
		return err
	}
	if len(projects) > 0 {
		return apperrors.NewConflictError("account still owns projects; delete or transfer them first")
	}

	return s.repos.Accounts.Delete(ctx, keys.AccountPartition, accountID)
}

// Login verifies credentials and issues a bearer token
func (s *AccountService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}

	account, err := s.repos.Accounts.Get(ctx, keys.AccountPartition, input.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, err := s.jwt.GenerateToken(account.AccountID, account.Name, string(account.Role))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token").WithCause(err)
	}

	return &LoginResult{Token: token, Account: account}, nil
}
