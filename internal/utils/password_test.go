package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptCost(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, BcryptCost(bcrypt.MinCost))
	assert.Equal(t, 12, BcryptCost(12))
	assert.Equal(t, bcrypt.DefaultCost, BcryptCost(0))
	assert.Equal(t, bcrypt.DefaultCost, BcryptCost(-3))
	assert.Equal(t, bcrypt.DefaultCost, BcryptCost(bcrypt.MaxCost+1))
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("hunter22", 2)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
	assert.True(t, VerifyPassword(hash, "hunter22"))
}

func TestHashPasswordRejectsLongInput(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	hash, err := HashPassword(strings.Repeat("x", 72), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, strings.Repeat("x", 72)))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("", ""))
	assert.False(t, VerifyPassword("not-a-hash", "hunter22"))
}
