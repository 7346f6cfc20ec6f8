package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	t.Run("creates account with hashed password", func(t *testing.T) {
		acc, err := NewAccount("rgm_chennai", "Chennai RGM", "Secret123", RoleRGM, []string{"Chennai"})

		require.NoError(t, err)
		assert.Equal(t, "rgm_chennai", acc.Username)
		assert.Equal(t, RoleRGM, acc.Role)
		assert.NotEmpty(t, acc.PasswordHash)
		assert.NotEqual(t, "Secret123", acc.PasswordHash)
		assert.True(t, acc.VerifyPassword("Secret123"))
		assert.False(t, acc.VerifyPassword("wrong"))
	})

	t.Run("normalizes username to lowercase", func(t *testing.T) {
		acc, err := NewAccount("  RGM_Chennai ", "Chennai RGM", "Secret123", RoleRGM, []string{"Chennai"})
		require.NoError(t, err)
		assert.Equal(t, "rgm_chennai", acc.Username)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		_, err := NewAccount("user1", "User", "short", RoleAdmin, nil)
		assert.Error(t, err)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewAccount("user1", "User", "Secret123", Role("INTERN"), nil)
		assert.Error(t, err)
	})
}

func TestValidateScope(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		scope   []string
		wantErr bool
	}{
		{"admin takes no scope", RoleAdmin, nil, false},
		{"admin rejects scope", RoleAdmin, []string{"North"}, true},
		{"rgm takes exactly one", RoleRGM, []string{"North"}, false},
		{"rgm rejects many", RoleRGM, []string{"North", "South"}, true},
		{"rgm rejects none", RoleRGM, nil, true},
		{"dsm takes one", RoleDSM, []string{"D1"}, false},
		{"dsm takes many", RoleDSM, []string{"D1", "D2"}, false},
		{"dsm rejects none", RoleDSM, nil, true},
		{"blank scope value rejected", RoleDSM, []string{" "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScope(tt.role, tt.scope)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChangeRole(t *testing.T) {
	t.Run("role and scope change together", func(t *testing.T) {
		acc, err := NewAccount("meena", "Meena", "Secret123", RoleSO, []string{"Meena"})
		require.NoError(t, err)

		require.NoError(t, acc.ChangeRole(RoleDSM, []string{"D1", "D2"}))
		assert.Equal(t, RoleDSM, acc.Role)
		assert.Equal(t, []string{"D1", "D2"}, acc.ScopeValues)
	})

	t.Run("scope shape is validated against the new role", func(t *testing.T) {
		acc, err := NewAccount("meena", "Meena", "Secret123", RoleSO, []string{"Meena"})
		require.NoError(t, err)
		assert.Error(t, acc.ChangeRole(RoleRGM, []string{"North", "South"}))
	})
}

func TestSetPassword(t *testing.T) {
	acc, err := NewAccount("arun", "Arun", "Secret123", RoleAdmin, nil)
	require.NoError(t, err)

	require.NoError(t, acc.SetPassword("NewSecret9"))
	assert.True(t, acc.VerifyPassword("NewSecret9"))
	assert.False(t, acc.VerifyPassword("Secret123"))
}
