package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("valid account", func(t *testing.T) {
		u, err := NewUser(" Ana Morales ", " ANA@Aduanas.GT ", "s3cret-pass", RoleAgente, "")
		require.NoError(t, err)
		assert.Equal(t, "Ana Morales", u.Name)
		assert.Equal(t, "ana@aduanas.gt", u.Email)
		assert.Equal(t, RoleAgente, u.Role)
		assert.Equal(t, StatusActive, u.Status)
		assert.NotEmpty(t, u.PasswordHash)
		assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewUser("  ", "ana@aduanas.gt", "s3cret-pass", RoleAgente, StatusActive)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := NewUser("Ana", "not-an-email", "s3cret-pass", RoleAgente, StatusActive)
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := NewUser("Ana", "ana@aduanas.gt", "short", RoleAgente, StatusActive)
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := NewUser("Ana", "ana@aduanas.gt", "s3cret-pass", "SUPERVISOR", StatusActive)
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := NewUser("Ana", "ana@aduanas.gt", "s3cret-pass", RoleAgente, "FROZEN")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestCheckPassword(t *testing.T) {
	u, err := NewUser("Ana", "ana@aduanas.gt", "s3cret-pass", RoleAgente, StatusActive)
	require.NoError(t, err)

	assert.NoError(t, u.CheckPassword("s3cret-pass"))
	assert.ErrorIs(t, u.CheckPassword("wrong-pass"), ErrInvalidPassword)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleTransportista.Valid())
	assert.True(t, RoleAgente.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("transportista").Valid())
}
