package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hashed, err := hasher.Hash("pass1")
	require.NoError(t, err)

	assert.NotEqual(t, "pass1", hashed)
	assert.True(t, hasher.Verify("pass1", hashed))
	assert.False(t, hasher.Verify("pass2", hashed))
}

func TestPasswordHasher_HashesAreSalted(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("pass1")
	require.NoError(t, err)
	second, err := hasher.Hash("pass1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("pass1", first))
	assert.True(t, hasher.Verify("pass1", second))
}

func TestPasswordHasher_VerifyRejectsGarbageHash(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	assert.False(t, hasher.Verify("pass1", "not-a-bcrypt-hash"))
	assert.False(t, hasher.Verify("pass1", ""))
}

func TestNewPasswordHasher_ClampsInvalidCost(t *testing.T) {
	hasher := NewPasswordHasher(99)

	assert.Equal(t, DefaultBcryptCost, hasher.cost)

	hasher = NewPasswordHasher(-1)
	assert.Equal(t, DefaultBcryptCost, hasher.cost)
}
