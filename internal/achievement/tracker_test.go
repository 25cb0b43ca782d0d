package achievement

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/events"
	"github.com/pet-progression/internal/store"
)

type fixture struct {
	clock    *clock.Fake
	tracker  *Tracker
	unlocked []string
}

func newFixture(t *testing.T, st store.Store) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fake := clock.NewFake(time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC))
	bus := events.NewBus(logger)
	f := &fixture{clock: fake}
	bus.Subscribe(func(e events.Event) {
		f.unlocked = append(f.unlocked, e.(events.AchievementUnlocked).Achievement.ID)
	}, events.KindAchievementUnlocked)
	f.tracker = NewTracker("p1", st, clock.NewCalendar(fake, time.UTC), bus, logger)
	return f
}

func byID(t *testing.T, as []domain.Achievement, id string) domain.Achievement {
	t.Helper()
	for _, a := range as {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("achievement %s not found", id)
	return domain.Achievement{}
}

func TestUpdateProgress(t *testing.T) {
	f := newFixture(t, store.NewMemory())
	ctx := context.Background()

	res := f.tracker.UpdateProgress(ctx, "discover_25", 10)
	assert.Equal(t, domain.UpdateProgressed, res.Status)
	require.NotNil(t, res.Achievement)
	assert.Equal(t, 10, res.Achievement.Progress)
	assert.Empty(t, f.unlocked)

	res = f.tracker.UpdateProgress(ctx, "discover_25", 40)
	assert.Equal(t, domain.UpdateCompleted, res.Status)
	assert.Equal(t, 25, res.Achievement.Progress)
	require.NotNil(t, res.Achievement.CompletedAt)
	assert.Equal(t, []string{"discover_25"}, f.unlocked)

	// Completed achievements no longer move or notify.
	res = f.tracker.UpdateProgress(ctx, "discover_25", 0)
	assert.Equal(t, domain.UpdateNoop, res.Status)
	assert.Len(t, f.unlocked, 1)

	a := byID(t, f.tracker.Achievements(ctx), "discover_25")
	assert.True(t, a.Completed)
	assert.Equal(t, 25, a.Progress)
}

func TestUpdateProgress_Unknown(t *testing.T) {
	f := newFixture(t, store.NewMemory())

	res := f.tracker.UpdateProgress(context.Background(), "missing", 5)
	assert.Equal(t, domain.UpdateNoop, res.Status)
	assert.Nil(t, res.Achievement)
}

func TestCheckInventory(t *testing.T) {
	f := newFixture(t, store.NewMemory())
	ctx := context.Background()

	inv := domain.Inventory{Items: map[string]*domain.InventoryItem{
		"moss_tuft":     {ResourceID: "moss_tuft", Rarity: domain.RarityCommon, Quantity: 8},
		"glow_mushroom": {ResourceID: "glow_mushroom", Rarity: domain.RarityUncommon, Quantity: 1},
		"moon_petal":    {ResourceID: "moon_petal", Rarity: domain.RarityRare, Quantity: 1},
	}}
	unlocked := f.tracker.CheckInventory(ctx, inv)

	ids := make([]string, 0, len(unlocked))
	for _, a := range unlocked {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []string{"collector_10", "rarity_3"}, ids)
	assert.ElementsMatch(t, ids, f.unlocked)

	all := f.tracker.Achievements(ctx)
	assert.Equal(t, 10, byID(t, all, "collector_50").Progress)
	assert.Equal(t, 3, byID(t, all, "rarity_5").Progress)

	// Same measurement again changes nothing.
	assert.Empty(t, f.tracker.CheckInventory(ctx, inv))
}

func TestCheckDiscoveries(t *testing.T) {
	f := newFixture(t, store.NewMemory())

	unlocked := f.tracker.CheckDiscoveries(context.Background(), 1)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "discover_1", unlocked[0].ID)
}

func TestCustomAchievements(t *testing.T) {
	f := newFixture(t, store.NewMemory())
	ctx := context.Background()

	_, res := f.tracker.AddCustom(ctx, CustomSpec{Title: " "})
	assert.False(t, res.Success)

	a, res := f.tracker.AddCustom(ctx, CustomSpec{Title: "Walkies", Target: 3})
	require.True(t, res.Success)
	assert.Contains(t, a.ID, "custom_")
	assert.True(t, a.Custom)

	upd := f.tracker.UpdateProgress(ctx, a.ID, 3)
	assert.Equal(t, domain.UpdateCompleted, upd.Status)
	assert.Equal(t, []string{a.ID}, f.unlocked)
	assert.True(t, byID(t, f.tracker.Achievements(ctx), a.ID).Completed)

	require.True(t, f.tracker.RemoveCustom(ctx, a.ID).Success)
	for _, got := range f.tracker.Achievements(ctx) {
		assert.NotEqual(t, a.ID, got.ID)
	}
	assert.False(t, f.tracker.RemoveCustom(ctx, a.ID).Success)
	assert.False(t, f.tracker.RemoveCustom(ctx, "discover_1").Success)
}

func TestStorageFailure(t *testing.T) {
	f := newFixture(t, store.Broken{})
	ctx := context.Background()

	assert.NotEmpty(t, f.tracker.Achievements(ctx))
	assert.Equal(t, domain.UpdateNoop, f.tracker.UpdateProgress(ctx, "discover_1", 1).Status)
	assert.Empty(t, f.tracker.CheckDiscoveries(ctx, 5))
	assert.Empty(t, f.unlocked)
}
