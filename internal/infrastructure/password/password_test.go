package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestEncoder(t *testing.T) {
	encoder := NewEncoder(bcrypt.MinCost)

	hash, err := encoder.Encode("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, encoder.Matches("s3cret", hash))
	assert.False(t, encoder.Matches("wrong", hash))

	again, err := encoder.Encode("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes must be salted")
}

func TestNewEncoder_InvalidCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewEncoder(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewEncoder(bcrypt.MaxCost+1).cost)
	assert.Equal(t, bcrypt.MinCost, NewEncoder(bcrypt.MinCost).cost)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("password")
	require.NoError(t, err)

	assert.NoError(t, CheckPassword("password", hash))
	assert.EqualError(t, CheckPassword("other", hash), "invalid password")
	assert.Error(t, CheckPassword("password", "not-a-hash"))
}
