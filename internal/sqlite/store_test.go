package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pet-progression/internal/domain"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "pets.db")
	st, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st, path
}

func TestStore_RoundTrip(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	var got domain.PetRoster
	found, err := st.Get(ctx, "player:p1:pets", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, st.Set(ctx, "player:p1:pets", domain.PetRoster{Version: 1, PetIDs: []string{"rex"}}))
	require.NoError(t, st.Set(ctx, "player:p1:pets", domain.PetRoster{Version: 1, PetIDs: []string{"rex", "milo"}}))

	found, err = st.Get(ctx, "player:p1:pets", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"rex", "milo"}, got.PetIDs)

	require.NoError(t, st.Delete(ctx, "player:p1:pets"))
	found, err = st.Get(ctx, "player:p1:pets", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	st, path := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "k", map[string]int{"a": 1}))
	require.NoError(t, st.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	var got map[string]int
	found, err := reopened.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, got["a"])
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}
