package kv

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSealed_RoundTripAndCiphertextAtRest(t *testing.T) {
	inner := NewMemoryRepository()
	ctx := context.Background()

	r, err := OpenSealed(ctx, inner, []byte("passphrase"))
	require.NoError(t, err)

	require.NoError(t, r.Set(ctx, "refresh_token", []byte("secret-refresh")))

	v, err := r.Get(ctx, "refresh_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("secret-refresh"), v)

	raw, err := inner.Get(ctx, "refresh_token")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-refresh")
}

func TestOpenSealed_ReusesStoredSalt(t *testing.T) {
	inner := NewMemoryRepository()
	ctx := context.Background()

	first, err := OpenSealed(ctx, inner, []byte("pw"))
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "user", []byte(`{"id":1}`)))

	second, err := OpenSealed(ctx, inner, []byte("pw"))
	require.NoError(t, err)

	v, err := second.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":1}`), v)
}

func TestOpenSealed_WrongPassphraseIsRejected(t *testing.T) {
	inner := NewMemoryRepository()
	ctx := context.Background()

	good, err := OpenSealed(ctx, inner, []byte("right"))
	require.NoError(t, err)
	require.NoError(t, good.Set(ctx, "k", []byte("v")))

	_, err = OpenSealed(ctx, inner, []byte("wrong"))
	require.ErrorIs(t, err, ErrWrongPassphrase)

	v, err := inner.Get(ctx, "k")
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestOpenSealed_WrongPassphraseOnEmptyStore(t *testing.T) {
	inner := NewMemoryRepository()
	ctx := context.Background()

	_, err := OpenSealed(ctx, inner, []byte("right"))
	require.NoError(t, err)

	_, err = OpenSealed(ctx, inner, []byte("wrong"))
	require.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestSealed_GetWithForeignKeyFails(t *testing.T) {
	inner := NewMemoryRepository()
	ctx := context.Background()

	good, err := OpenSealed(ctx, inner, []byte("right"))
	require.NoError(t, err)
	require.NoError(t, good.Set(ctx, "k", []byte("v")))

	bad := NewSealedRepository(inner, make([]byte, cryptox.KeySize))
	_, err = bad.Get(ctx, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open kv[k]")
}

func TestSealed_GetAbsentReturnsNilNil(t *testing.T) {
	r := NewSealedRepository(NewMemoryRepository(), make([]byte, cryptox.KeySize))

	v, err := r.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSealed_ListAndClearKeepSalt(t *testing.T) {
	inner := NewMemoryRepository()
	ctx := context.Background()

	r, err := OpenSealed(ctx, inner, []byte("pw"))
	require.NoError(t, err)
	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Set(ctx, "b", []byte("2")))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, m)

	require.NoError(t, r.Clear(ctx))

	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)

	salt, err := inner.Get(ctx, saltKey)
	require.NoError(t, err)
	assert.Len(t, salt, cryptox.SaltSize)

	check, err := inner.Get(ctx, checkKey)
	require.NoError(t, err)
	assert.NotNil(t, check)
}

func TestSealed_MultiRemove(t *testing.T) {
	ctx := context.Background()
	r, err := OpenSealed(ctx, NewMemoryRepository(), []byte("pw"))
	require.NoError(t, err)

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Set(ctx, "b", []byte("2")))
	require.NoError(t, r.MultiRemove(ctx, "a"))

	v, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = r.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
}
