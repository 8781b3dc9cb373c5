package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_GetAbsentIsNilNil(t *testing.T) {
	r := NewMemoryRepository()

	v, err := r.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMemoryRepository_SetGetCopiesValue(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, r.Set(ctx, "token", in))
	in[0] = 'X'

	got, err := r.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'Y'
	again, err := r.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryRepository_DeleteKeysAndClear(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "token", []byte("t")))
	require.NoError(t, r.Set(ctx, "hasCompletedOnboarding", []byte("true")))
	require.NoError(t, r.Set(ctx, "other", []byte("x")))

	require.NoError(t, r.DeleteKeys(ctx, "token", "hasCompletedOnboarding"))
	v, err := r.Get(ctx, "token")
	require.NoError(t, err)
	assert.Nil(t, v)
	v, err = r.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), v)

	require.NoError(t, r.Delete(ctx, "other"))
	require.NoError(t, r.Delete(ctx, "other"))

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Clear(ctx))
	v, err = r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, v)
}
