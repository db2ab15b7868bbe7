package refreshtokens

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateFindDelete(t *testing.T) {
	r := NewMemoryRepository()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, 7, "tok", time.Hour))

	got, err := r.Find(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, fixed.Add(time.Hour), got.Expires)

	require.NoError(t, r.Delete(ctx, "tok"))
	require.NoError(t, r.Delete(ctx, "tok"))

	_, err = r.Find(ctx, "tok")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_DeleteForUser(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, 1, "a", time.Hour))
	require.NoError(t, r.Create(ctx, 1, "b", time.Hour))
	require.NoError(t, r.Create(ctx, 2, "c", time.Hour))

	require.NoError(t, r.DeleteForUser(ctx, 1))

	_, err := r.Find(ctx, "a")
	require.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.Find(ctx, "b")
	require.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.Find(ctx, "c")
	require.NoError(t, err)
}
