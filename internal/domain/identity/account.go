package identity

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var usernameRegex = regexp.MustCompile(`^[a-z0-9_\-.]+$`)

// Account represents one dashboard credential. The password is stored only
// as a salted bcrypt hash.
type Account struct {
	ID           uuid.UUID
	Username     string // unique, lowercased
	DisplayName  string
	PasswordHash string
	Role         Role
	// ScopeValues holds the hierarchy entities this account may see. Empty
	// for SUPER_ADMIN/ADMIN, a single value for RGM/SO, one or more values
	// for DSM/ASM.
	ScopeValues []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewAccount creates an account with a validated username, role and scope
// shape, hashing the password.
func NewAccount(username, displayName, password string, role Role, scopeValues []string) (*Account, error) {
	username = NormalizeUsername(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := ValidateScope(role, scopeValues); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	return &Account{
		ID:           uuid.New(),
		Username:     username,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
		Role:         role,
		ScopeValues:  scopeValues,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
func (a *Account) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// SetPassword replaces the stored hash with one for the new password.
func (a *Account) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	a.PasswordHash = hash
	a.UpdatedAt = time.Now()
	return nil
}

// SetDisplayName updates the display name.
func (a *Account) SetDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	a.DisplayName = name
	a.UpdatedAt = time.Now()
	return nil
}

// ChangeRole moves the account to a new role with a matching scope shape.
// Role and scope change together; the scope shape is a strict function of
// the role, never independently settable.
func (a *Account) ChangeRole(role Role, scopeValues []string) error {
	if a.Role == RoleSuperAdmin {
		return shared.NewDomainError("SUPERADMIN_IMMUTABLE", "The super admin role cannot be changed")
	}
	if err := ValidateScope(role, scopeValues); err != nil {
		return err
	}
	a.Role = role
	a.ScopeValues = scopeValues
	a.UpdatedAt = time.Now()
	return nil
}

// IsProtected reports whether the account is exempt from deletion.
func (a *Account) IsProtected() bool {
	return a.Role == RoleSuperAdmin
}

// ValidateScope checks that scope values have the shape the role demands.
func ValidateScope(role Role, scopeValues []string) error {
	cap, err := CapabilityFor(role)
	if err != nil {
		return err
	}
	for _, v := range scopeValues {
		if strings.TrimSpace(v) == "" {
			return shared.NewDomainError("INVALID_SCOPE", "Scope values cannot be blank")
		}
	}
	switch cap.Match {
	case MatchAll:
		if len(scopeValues) != 0 {
			return shared.NewDomainError("INVALID_SCOPE", "Unrestricted roles do not take scope values")
		}
	case MatchScalar:
		if len(scopeValues) != 1 {
			return shared.NewDomainError("INVALID_SCOPE", "This role requires exactly one scope value")
		}
	case MatchSet:
		if len(scopeValues) == 0 {
			return shared.NewDomainError("INVALID_SCOPE", "This role requires at least one scope value")
		}
	}
	return nil
}

// AccountRepository is the durable credential store. It is read at session
// start and written on every create/update/delete; contents survive process
// restarts.
type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	List(ctx context.Context) ([]*Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// NormalizeUsername lowercases and trims a username for lookup.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateUsername(username string) error {
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain lowercase letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
