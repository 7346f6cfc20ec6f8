package persistence

import (
	"encoding/json"
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/domain/identity"
	"github.com/google/uuid"
)

// AccountModel is the GORM mapping for identity.Account. Scope values are
// stored as a JSON array; SQLite has no native array type and the values are
// only ever read back whole.
type AccountModel struct {
	ID           string `gorm:"type:text;primaryKey"`
	Username     string `gorm:"type:text;uniqueIndex;not null"`
	DisplayName  string `gorm:"type:text;not null"`
	PasswordHash string `gorm:"type:text;not null"`
	Role         string `gorm:"type:text;not null;index"`
	ScopeValues  string `gorm:"type:text;not null;default:'[]'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the default table name.
func (AccountModel) TableName() string {
	return "accounts"
}

// FromDomain converts a domain account to its persistence model.
func FromDomain(a *identity.Account) (*AccountModel, error) {
	scope, err := json.Marshal(a.ScopeValues)
	if err != nil {
		return nil, err
	}
	return &AccountModel{
		ID:           a.ID.String(),
		Username:     a.Username,
		DisplayName:  a.DisplayName,
		PasswordHash: a.PasswordHash,
		Role:         string(a.Role),
		ScopeValues:  string(scope),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}, nil
}

// ToDomain converts the persistence model back to a domain account.
func (m *AccountModel) ToDomain() (*identity.Account, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	var scope []string
	if m.ScopeValues != "" {
		if err := json.Unmarshal([]byte(m.ScopeValues), &scope); err != nil {
			return nil, err
		}
	}
	return &identity.Account{
		ID:           id,
		Username:     m.Username,
		DisplayName:  m.DisplayName,
		PasswordHash: m.PasswordHash,
		Role:         identity.Role(m.Role),
		ScopeValues:  scope,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}
