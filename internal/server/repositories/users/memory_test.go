package users

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/sparkbytes/internal/common"
	"github.com/dmitrijs2005/sparkbytes/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	u := &models.User{UserID: "alice", PasswordHash: []byte("hash")}
	require.NoError(t, r.Create(ctx, u))
	assert.ErrorIs(t, r.Create(ctx, u), common.ErrAlreadyExists)

	got, err := r.GetByID(ctx, "alice")
	require.NoError(t, err)
	got.PasswordHash[0] = 'X'

	again, err := r.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("hash"), again.PasswordHash)

	updated, err := r.UpdatePreferences(ctx, "alice", models.Preferences{IsHalal: true})
	require.NoError(t, err)
	assert.True(t, updated.IsHalal)

	_, err = r.GetByID(ctx, "bob")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = r.UpdatePreferences(ctx, "bob", models.Preferences{})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
