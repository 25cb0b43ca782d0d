package rewards

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
	"github.com/pet-progression/internal/store"
)

func newTestEconomy(t *testing.T) (*Economy, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New("p1", store.NewMemory(), clock.NewCalendar(fake, time.UTC), logger), fake
}

func TestMultiplier(t *testing.T) {
	assert.Equal(t, []float64{1, 1.1, 1.2, 1.3, 1.4},
		[]float64{Multiplier(1), Multiplier(2), Multiplier(3), Multiplier(4), Multiplier(5)})
	assert.Equal(t, 1.0, Multiplier(0))

	// floor(base * mult) for the table actions.
	assert.Equal(t, 11, scaledPoints(10, 2))
	assert.Equal(t, 16, scaledPoints(15, 2))
	assert.Equal(t, 6, scaledPoints(5, 3))
	assert.Equal(t, 14, scaledPoints(10, 5))
}

func TestAward_ThreePetsWithGoal(t *testing.T) {
	e, _ := newTestEconomy(t)
	ctx := context.Background()

	award, ok := e.AwardInteractionPoints(context.Background(), "rex", domain.ActionFeed, true)
	require.True(t, ok)

	assert.Equal(t, 10, award.BasePoints)
	assert.Equal(t, 1.2, award.Multiplier)
	assert.Equal(t, 12, award.Points)
	assert.Equal(t, 6, award.GoalBonus)
	assert.Equal(t, 1, award.StreakBonus)
	assert.Equal(t, 19, award.Total)
	assert.Equal(t, 3, award.PetCount)
	assert.Contains(t, award.Description, "= 19 points")

	acct := e.Points(ctx)
	// milo: 5+1, luna: floor(5*1.1)+1, rex: 19
	assert.Equal(t, 6+6+19, acct.TotalPoints)
	require.Contains(t, acct.Pets, "rex")
	assert.Equal(t, 19, acct.Pets["rex"].TotalPoints)
	assert.Equal(t, 6, acct.Pets["rex"].MoodBonusPoints)
	assert.Equal(t, 1, acct.Pets["rex"].InteractionCount)
}

func TestAward_PetCountIsInteractedPets(t *testing.T) {
	e, _ := newTestEconomy(t)
	ctx := context.Background()

	// An entry without interactions does not count towards the multiplier.
	require.NoError(t, e.store.Set(ctx, store.PointsKey("p1"), domain.PointsAccount{
		Pets: map[string]*domain.PetPoints{"milo": {}, "luna": nil},
	}))

	award, ok := e.AwardInteractionPoints(ctx, "rex", domain.ActionFeed, false)
	require.True(t, ok)
	assert.Equal(t, 1, award.PetCount)
	assert.Equal(t, 1.0, award.Multiplier)
	assert.Equal(t, 10, award.Points)

	// Repeat interactions with the same pet do not raise the count.
	award, _ = e.AwardInteractionPoints(ctx, "rex", domain.ActionFeed, false)
	assert.Equal(t, 1, award.PetCount)

	award, _ = e.AwardInteractionPoints(ctx, "milo", domain.ActionFeed, false)
	assert.Equal(t, 2, award.PetCount)
	assert.Equal(t, 11, award.Points)
}

func TestAward_StreakRules(t *testing.T) {
	e, fake := newTestEconomy(t)
	ctx := context.Background()

	award, _ := e.AwardInteractionPoints(ctx, "rex", domain.ActionChat, false)
	assert.Equal(t, 1, award.Streak)

	// Same day keeps the streak.
	award, _ = e.AwardInteractionPoints(ctx, "rex", domain.ActionChat, false)
	assert.Equal(t, 1, award.Streak)
	assert.Equal(t, 5+1, award.Total)

	fake.Advance(24 * time.Hour)
	award, _ = e.AwardInteractionPoints(ctx, "rex", domain.ActionChat, false)
	assert.Equal(t, 2, award.Streak)

	fake.Advance(24 * time.Hour)
	award, _ = e.AwardInteractionPoints(ctx, "rex", domain.ActionChat, false)
	assert.Equal(t, 3, award.Streak)

	// Two-day gap resets.
	fake.Advance(48 * time.Hour)
	award, _ = e.AwardInteractionPoints(ctx, "rex", domain.ActionChat, false)
	assert.Equal(t, 1, award.Streak)

	acct := e.Points(ctx)
	assert.Equal(t, 1, acct.CurrentStreak)
	assert.Equal(t, 3, acct.LongestStreak)
	assert.Equal(t, 6, acct.DailyPoints)
}

func TestAward_StreakBonusCapped(t *testing.T) {
	e, _ := newTestEconomy(t)
	ctx := context.Background()

	require.NoError(t, e.store.Set(ctx, store.PointsKey("p1"), domain.PointsAccount{
		CurrentStreak:       80,
		LastInteractionDate: "2026-10-14",
	}))

	award, ok := e.AwardInteractionPoints(ctx, "rex", domain.ActionSleep, false)
	require.True(t, ok)
	assert.Equal(t, 81, award.Streak)
	assert.Equal(t, MaxStreakBonus, award.StreakBonus)
	assert.Equal(t, 15+MaxStreakBonus, award.Total)
}

func TestAward_StorageFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := New("p1", store.Broken{}, clock.NewCalendar(nil, nil), logger)

	award, ok := e.AwardInteractionPoints(context.Background(), "rex", domain.ActionFeed, false)
	assert.False(t, ok)
	assert.Zero(t, award.Total)
	assert.Zero(t, e.Points(context.Background()).TotalPoints)
}
