package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/datascientist-hue/live-dashboard/internal/domain/identity"
	"github.com/datascientist-hue/live-dashboard/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements identity.AccountRepository using GORM.
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository.
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByUsername finds an account by its lowercased username.
func (r *GormAccountRepository) FindByUsername(ctx context.Context, username string) (*identity.Account, error) {
	var model AccountModel
	if err := r.db.WithContext(ctx).
		Where("username = ?", identity.NormalizeUsername(username)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByID finds an account by its ID.
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	var model AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// List returns all accounts ordered by username.
func (r *GormAccountRepository) List(ctx context.Context) ([]*identity.Account, error) {
	var models []AccountModel
	if err := r.db.WithContext(ctx).Order("username asc").Find(&models).Error; err != nil {
		return nil, err
	}
	accounts := make([]*identity.Account, 0, len(models))
	for i := range models {
		account, err := models[i].ToDomain()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// ExistsByUsername reports whether an account with the username exists.
func (r *GormAccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&AccountModel{}).
		Where("username = ?", identity.NormalizeUsername(username)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create persists a new account. A duplicate username fails without writing.
func (r *GormAccountRepository) Create(ctx context.Context, account *identity.Account) error {
	model, err := FromDomain(account)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update saves changes to an existing account.
func (r *GormAccountRepository) Update(ctx context.Context, account *identity.Account) error {
	model, err := FromDomain(account)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&AccountModel{}).Where("id = ?", model.ID).Updates(map[string]interface{}{
		"display_name":  model.DisplayName,
		"password_hash": model.PasswordHash,
		"role":          model.Role,
		"scope_values":  model.ScopeValues,
		"updated_at":    model.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an account by ID.
func (r *GormAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&AccountModel{}, "id = ?", id.String())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// isUniqueViolation detects a unique-constraint failure across the drivers
// GORM may surface it through.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
