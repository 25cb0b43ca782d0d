package service

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pet-progression/internal/achievement"
	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/discovery"
	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/events"
	"github.com/pet-progression/internal/store"
)

type fixture struct {
	clock   *clock.Fake
	store   *store.Memory
	session *Session

	mu     sync.Mutex
	events []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fake := clock.NewFake(time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC))
	bus := events.NewBus(logger)
	f := &fixture{clock: fake, store: store.NewMemory()}
	bus.Subscribe(func(e events.Event) {
		f.mu.Lock()
		f.events = append(f.events, e)
		f.mu.Unlock()
	})
	f.session = NewSession("p1", f.store, clock.NewCalendar(fake, time.UTC), bus,
		rand.New(rand.NewSource(1)), discovery.DefaultDefaults(), logger)
	return f
}

func (f *fixture) kinds() []events.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.Kind, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Kind())
	}
	return out
}

func (f *fixture) reset() {
	f.mu.Lock()
	f.events = nil
	f.mu.Unlock()
}

func feed(petID string) ActionRequest {
	return ActionRequest{PetID: petID, Action: domain.ActionFeed}
}

func TestRecordAction_ThreePetsGoalBonus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"rex", "milo", "luna"} {
		require.True(t, f.session.AdoptPet(ctx, id).Success)
	}
	for _, id := range []string{"milo", "luna"} {
		require.True(t, f.session.RecordAction(ctx, ActionRequest{PetID: id, Action: domain.ActionPlay}).Success)
	}
	f.reset()

	out := f.session.RecordAction(ctx, ActionRequest{PetID: "rex", Action: domain.ActionFeed, AchievedGoal: true})
	require.True(t, out.Success, out.Message)
	require.NotNil(t, out.Points)
	assert.Equal(t, 3, out.Points.PetCount)
	assert.Equal(t, 12, out.Points.Points)
	assert.Equal(t, 6, out.Points.GoalBonus)
	assert.Equal(t, 1, out.Points.StreakBonus)
	assert.Equal(t, 19, out.Points.Total)

	assert.Equal(t, []events.Kind{events.KindActionRecorded, events.KindPointsAwarded}, f.kinds())
	// milo: 10+1, luna: floor(10*1.1)+1, rex: 19
	assert.Equal(t, 11+12+19, f.session.Points(ctx).TotalPoints)
}

func TestRecordAction_UntouchedPetsDoNotMultiply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"rex", "milo", "luna"} {
		require.True(t, f.session.AdoptPet(ctx, id).Success)
	}

	out := f.session.RecordAction(ctx, feed("rex"))
	require.True(t, out.Success, out.Message)
	require.NotNil(t, out.Points)
	assert.Equal(t, 1, out.Points.PetCount)
	assert.Equal(t, 1.0, out.Points.Multiplier)
	assert.Equal(t, 10, out.Points.Points)

	out = f.session.RecordAction(ctx, feed("rex"))
	require.NotNil(t, out.Points)
	assert.Equal(t, 1, out.Points.PetCount, "repeat interactions with one pet")
}

func TestRecordAction_FeedCapAndMission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.session.AdoptPet(ctx, "rex").Success)

	for i := 0; i < 2; i++ {
		require.True(t, f.session.RecordAction(ctx, feed("rex")).Success)
	}
	third := f.session.RecordAction(ctx, feed("rex"))
	require.True(t, third.Success)
	require.Len(t, third.MissionsReady, 1)
	assert.Equal(t, "daily_feed", third.MissionsReady[0].ID)

	require.True(t, f.session.RecordAction(ctx, feed("rex")).Success)
	before, _ := f.session.Stats(ctx, "rex")
	fifth := f.session.RecordAction(ctx, feed("rex"))
	assert.False(t, fifth.Success)
	assert.Contains(t, fifth.Message, "limit")
	assert.Nil(t, fifth.Points)
	after, _ := f.session.Stats(ctx, "rex")
	assert.Equal(t, before, after)

	f.reset()
	res := f.session.CompleteMission(ctx, "daily_feed")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 20, res.StarFragments)
	assert.Contains(t, f.kinds(), events.KindMissionCompleted)
	assert.Contains(t, f.kinds(), events.KindCurrencyChanged)

	again := f.session.CompleteMission(ctx, "daily_feed")
	assert.False(t, again.Success)
	assert.Contains(t, again.Message, "already completed")
	assert.Equal(t, 20, f.session.Balance(ctx))
}

func TestRecordAction_UnknownPet(t *testing.T) {
	f := newFixture(t)

	out := f.session.RecordAction(context.Background(), feed("ghost"))
	assert.False(t, out.Success)
	assert.Empty(t, f.kinds())
}

func TestRecordAction_CareAchievementCredits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.session.AdoptPet(ctx, "rex").Success)

	var unlocked []domain.Achievement
	for i := 0; i < 10; i++ {
		out := f.session.RecordAction(ctx, ActionRequest{PetID: "rex", Action: domain.ActionChat})
		require.True(t, out.Success)
		unlocked = append(unlocked, out.Unlocked...)
	}
	require.Len(t, unlocked, 1)
	assert.Equal(t, "care_10", unlocked[0].ID)
	assert.Equal(t, unlocked[0].Reward.Amount, f.session.Balance(ctx))
	assert.Contains(t, f.kinds(), events.KindAchievementUnlocked)
}

func TestDiscover_FoldsIntoInventoryAndAchievements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	one := 1.0
	require.True(t, f.session.UpdateDiscoverySettings(ctx, discovery.SettingsUpdate{Chance: &one}).Success)

	require.True(t, f.session.ShouldDiscover(ctx))
	out := f.session.Discover(ctx)
	require.NotEmpty(t, out.Records)
	require.NotNil(t, out.Inventory)

	total := 0
	for _, r := range out.Records {
		total += r.Quantity
	}
	inv := f.session.Inventory(ctx)
	assert.Equal(t, total, inv.TotalQuantity())

	ids := make([]string, 0, len(out.Unlocked))
	for _, a := range out.Unlocked {
		ids = append(ids, a.ID)
	}
	assert.Contains(t, ids, "discover_1")
	assert.Contains(t, f.kinds(), events.KindDiscoveryMade)
	assert.Contains(t, f.kinds(), events.KindInventoryChanged)

	// Cooldown closes the gate.
	assert.Empty(t, f.session.Discover(ctx).Records)
	assert.Equal(t, len(out.Records), f.session.DiscoveryHistory(ctx).Total)
}

func TestDiscover_ZeroChance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	zero := 0.0
	require.True(t, f.session.UpdateDiscoverySettings(ctx, discovery.SettingsUpdate{Chance: &zero, IntervalHours: &zero}).Success)

	for i := 0; i < 50; i++ {
		assert.Empty(t, f.session.Discover(ctx).Records)
	}
	assert.Empty(t, f.session.Inventory(ctx).Items)
}

func TestSpendAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.False(t, f.session.Spend(ctx, 5, "snack").Success)
	require.True(t, f.session.ClaimDailyLogin(ctx).Success)
	assert.False(t, f.session.ClaimDailyLogin(ctx).Success)

	res := f.session.Spend(ctx, 5, "snack")
	require.True(t, res.Success)
	assert.Equal(t, 20, res.Balance)
	assert.Len(t, f.session.Ledger(ctx).Transactions, 2)
}

func TestCustomAchievementCredits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, res := f.session.AddCustomAchievement(ctx, achievement.CustomSpec{
		Title:  "Walkies",
		Target: 2,
		Reward: domain.Reward{Type: domain.RewardStarFragments, Amount: 15},
	})
	require.True(t, res.Success)

	assert.Equal(t, domain.UpdateProgressed, f.session.UpdateAchievement(ctx, a.ID, 1).Status)
	assert.Equal(t, domain.UpdateCompleted, f.session.UpdateAchievement(ctx, a.ID, 2).Status)
	assert.Equal(t, 15, f.session.Balance(ctx))
	require.True(t, f.session.RemoveCustomAchievement(ctx, a.ID).Success)
}

func TestRecordAction_ConcurrentFeedsRespectCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.session.AdoptPet(ctx, "rex").Success)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.session.RecordAction(ctx, feed("rex")).Success {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, succeeded)
	assert.Equal(t, 4, f.session.Points(ctx).Pets["rex"].InteractionCount)
}

func TestAllStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.session.AdoptPet(ctx, "rex").Success)
	require.True(t, f.session.AdoptPet(ctx, "milo").Success)

	f.clock.Advance(22 * time.Hour)
	stats := f.session.AllStats(ctx)
	require.Len(t, stats, 2)
	for _, st := range stats {
		assert.Equal(t, domain.MoodAngry, st.MoodState)
	}
}
