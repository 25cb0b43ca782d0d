package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var got doc
	ok, err := m.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", doc{Name: "biscuit", Count: 3}))
	ok, err = m.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, doc{Name: "biscuit", Count: 3}, got)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Delete(ctx, "k"))
	ok, err = m.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_StoresCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	d := doc{Name: "a"}
	require.NoError(t, m.Set(ctx, "k", d))
	d.Name = "changed"

	var got doc
	_, err := m.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "pet:p1:rex:timers", PetTimersKey("p1", "rex"))
	assert.Equal(t, "player:p1:missions:season:2026-Q4", SeasonMissionsKey("p1", "2026-Q4"))
}
