package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword([]byte("password123"))
	require.NoError(t, err)

	assert.NotEqual(t, []byte("password123"), hash)
	assert.True(t, CheckPassword(hash, []byte("password123")))
	assert.False(t, CheckPassword(hash, []byte("password124")))
	assert.False(t, CheckPassword([]byte("not-a-hash"), []byte("password123")))
}
