package identity

import (
	"context"
	"errors"
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/domain/identity"
	"github.com/datascientist-hue/live-dashboard/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountService handles credential administration. All operations are
// reserved for the SUPER_ADMIN role; the HTTP layer enforces that before the
// service is reached.
type AccountService struct {
	accounts identity.AccountRepository
	logger   *zap.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(accounts identity.AccountRepository, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{accounts: accounts, logger: logger}
}

// CreateAccountInput carries the fields for a new account.
type CreateAccountInput struct {
	Username    string        `json:"username" binding:"required"`
	DisplayName string        `json:"display_name" binding:"required"`
	Password    string        `json:"password" binding:"required"`
	Role        identity.Role `json:"role" binding:"required,dashboardrole"`
	ScopeValues []string      `json:"scope_values"`
}

// UpdateAccountInput carries the mutable fields of an account. Nil fields are
// left unchanged. Role and ScopeValues change together or not at all.
type UpdateAccountInput struct {
	DisplayName *string        `json:"display_name"`
	Password    *string        `json:"password"`
	Role        *identity.Role `json:"role" binding:"omitempty,dashboardrole"`
	ScopeValues []string       `json:"scope_values"`
}

// AccountView is the outward representation of an account. The password hash
// never leaves the service.
type AccountView struct {
	ID          uuid.UUID     `json:"id"`
	Username    string        `json:"username"`
	DisplayName string        `json:"display_name"`
	Role        identity.Role `json:"role"`
	ScopeValues []string      `json:"scope_values"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func toView(a *identity.Account) AccountView {
	scope := a.ScopeValues
	if scope == nil {
		scope = []string{}
	}
	return AccountView{
		ID:          a.ID,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		Role:        a.Role,
		ScopeValues: scope,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// Create adds a new account. The SUPER_ADMIN role is never assignable; it
// exists only through bootstrap. A duplicate username fails without touching
// the stored account.
func (s *AccountService) Create(ctx context.Context, input CreateAccountInput) (*AccountView, error) {
	if input.Role == identity.RoleSuperAdmin {
		return nil, shared.NewDomainError("ROLE_NOT_ASSIGNABLE", "The super admin role cannot be assigned")
	}

	account, err := identity.NewAccount(input.Username, input.DisplayName, input.Password, input.Role, input.ScopeValues)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("USERNAME_TAKEN", "An account with this username already exists")
		}
		s.logger.Error("Failed to create account", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Account created",
		zap.String("username", account.Username),
		zap.String("role", string(account.Role)))

	view := toView(account)
	return &view, nil
}

// Get returns one account by ID.
func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*AccountView, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := toView(account)
	return &view, nil
}

// List returns all accounts.
func (s *AccountService) List(ctx context.Context) ([]AccountView, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]AccountView, len(accounts))
	for i, a := range accounts {
		views[i] = toView(a)
	}
	return views, nil
}

// Update applies the provided changes to an account.
func (s *AccountService) Update(ctx context.Context, id uuid.UUID, input UpdateAccountInput) (*AccountView, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		if *input.Role == identity.RoleSuperAdmin {
			return nil, shared.NewDomainError("ROLE_NOT_ASSIGNABLE", "The super admin role cannot be assigned")
		}
		if err := account.ChangeRole(*input.Role, input.ScopeValues); err != nil {
			return nil, err
		}
	} else if input.ScopeValues != nil {
		if err := account.ChangeRole(account.Role, input.ScopeValues); err != nil {
			return nil, err
		}
	}

	if input.DisplayName != nil {
		if err := account.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}
	if input.Password != nil {
		if err := account.SetPassword(*input.Password); err != nil {
			return nil, err
		}
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		s.logger.Error("Failed to update account", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Account updated", zap.String("username", account.Username))
	view := toView(account)
	return &view, nil
}

// Delete removes an account. The bootstrap super admin is protected.
func (s *AccountService) Delete(ctx context.Context, id uuid.UUID) error {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if account.IsProtected() {
		return shared.NewDomainError("ACCOUNT_PROTECTED", "The super admin account cannot be deleted")
	}
	if err := s.accounts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Account deleted", zap.String("username", account.Username))
	return nil
}

// EnsureSuperAdmin creates the bootstrap super admin on first run. Existing
// accounts are left untouched so a changed config password never silently
// rewrites credentials.
func (s *AccountService) EnsureSuperAdmin(ctx context.Context, username, password string) error {
	username = identity.NormalizeUsername(username)
	exists, err := s.accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	account, err := identity.NewAccount(username, "Super Admin", password, identity.RoleSuperAdmin, nil)
	if err != nil {
		return err
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil
		}
		return err
	}

	s.logger.Info("Bootstrap super admin created", zap.String("username", username))
	return nil
}
