package interaction

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

var start = time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*Ledger, *store.Memory, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(start)
	mem := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := NewLedger("p1", mem, clock.NewCalendar(fake, time.UTC), logger)
	require.True(t, l.Adopt(context.Background(), "rex").Success)
	return l, mem, fake
}

func loadTimers(t *testing.T, mem *store.Memory) domain.PetTimers {
	t.Helper()
	var timers domain.PetTimers
	ok, err := mem.Get(context.Background(), store.PetTimersKey("p1", "rex"), &timers)
	require.NoError(t, err)
	require.True(t, ok)
	return timers
}

func TestAdopt(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	assert.False(t, l.Adopt(ctx, "rex").Success, "duplicate adoption")
	assert.True(t, l.Adopt(ctx, "mochi").Success)
	assert.Equal(t, []string{"rex", "mochi"}, l.Pets(ctx))

	stats, ok := l.Stats(ctx, "rex")
	require.True(t, ok)
	assert.Equal(t, 5, stats.Mood)
	assert.Equal(t, domain.MoodHappy, stats.MoodState)
}

func TestRecordAction_FeedCap(t *testing.T) {
	l, mem, fake := newTestLedger(t)
	ctx := context.Background()

	for i := 1; i <= MaxFeedsPerDay; i++ {
		fake.Advance(time.Minute)
		res := l.RecordAction(ctx, "rex", domain.ActionFeed, 1)
		require.True(t, res.Success, "feed #%d: %s", i, res.Message)
		assert.Equal(t, i, res.FeedsToday)
	}

	before := loadTimers(t, mem)
	fake.Advance(time.Minute)
	res := l.RecordAction(ctx, "rex", domain.ActionFeed, 1)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "limit")
	assert.Contains(t, res.Message, "4")
	assert.Equal(t, before, loadTimers(t, mem), "rejected feed must not mutate state")

	// Other actions still work.
	assert.True(t, l.RecordAction(ctx, "rex", domain.ActionPlay, 0).Success)

	// A new calendar day resets the cap exactly once.
	fake.Set(time.Date(2026, time.October, 16, 7, 0, 0, 0, time.UTC))
	res = l.RecordAction(ctx, "rex", domain.ActionFeed, 1)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.FeedsToday)
	res = l.RecordAction(ctx, "rex", domain.ActionFeed, 1)
	assert.Equal(t, 2, res.FeedsToday)
}

func TestRecordAction_MoodGainOncePerDay(t *testing.T) {
	l, _, fake := newTestLedger(t)
	ctx := context.Background()

	// 16h of neglect: sad (-2) plus the capped combo (-4) floors mood at 1.
	fake.Advance(16 * time.Hour)
	before, ok := l.Stats(ctx, "rex")
	require.True(t, ok)
	require.Equal(t, domain.MoodSad, before.MoodState)
	require.Equal(t, 1, before.Mood)

	res := l.RecordAction(ctx, "rex", domain.ActionChat, 0)
	require.True(t, res.Success)
	assert.True(t, res.MoodGained)
	assert.Equal(t, before.Mood+1, res.Stats.Mood)

	stats, ok := l.Stats(ctx, "rex")
	require.True(t, ok)
	assert.Equal(t, 2, stats.Mood, "the gain sticks on the next read")

	fake.Advance(time.Minute)
	res = l.RecordAction(ctx, "rex", domain.ActionPlay, 5)
	require.True(t, res.Success)
	assert.False(t, res.MoodGained)
	assert.Equal(t, 2, res.Stats.Mood)

	// Next day: angry (-3) floors mood again, and one more point is allowed.
	fake.Advance(24 * time.Hour)
	before, ok = l.Stats(ctx, "rex")
	require.True(t, ok)
	require.Equal(t, domain.MoodAngry, before.MoodState)

	res = l.RecordAction(ctx, "rex", domain.ActionFeed, 1)
	require.True(t, res.Success)
	assert.True(t, res.MoodGained)
	assert.Equal(t, before.Mood+1, res.Stats.Mood)
}

func TestRecordAction_PenaltiesFoldedOnce(t *testing.T) {
	l, _, fake := newTestLedger(t)
	ctx := context.Background()

	// Every need attended at the same time, then 10h pass: bored (-1) and
	// four timers past 9h (capped -4) leave mood at 1.
	for _, a := range []domain.ActionType{domain.ActionFeed, domain.ActionSleep, domain.ActionPlay, domain.ActionChat} {
		require.True(t, l.RecordAction(ctx, "rex", a, 0).Success)
	}
	fake.Advance(10 * time.Hour)
	before, ok := l.Stats(ctx, "rex")
	require.True(t, ok)
	assert.Equal(t, 1, before.Mood)

	// Still the adoption day, so the gain was already spent.
	res := l.RecordAction(ctx, "rex", domain.ActionPlay, 0)
	require.True(t, res.Success)
	assert.False(t, res.MoodGained)
	assert.Equal(t, 1, res.Stats.Mood)

	fake.Advance(time.Hour)
	stats, ok := l.Stats(ctx, "rex")
	require.True(t, ok)
	assert.Equal(t, domain.MoodHappy, stats.MoodState)
	assert.Equal(t, 1, stats.Mood)
}

func TestRecordAction_BoostsClamped(t *testing.T) {
	l, mem, fake := newTestLedger(t)
	ctx := context.Background()

	timers := loadTimers(t, mem)
	timers.CurrentHunger = 2
	timers.CurrentEnergy = 1
	require.NoError(t, mem.Set(ctx, store.PetTimersKey("p1", "rex"), timers))

	fake.Advance(time.Hour)
	res := l.RecordAction(ctx, "rex", domain.ActionFeed, 10)
	require.True(t, res.Success)
	assert.Equal(t, 5, res.Stats.Hunger)

	res = l.RecordAction(ctx, "rex", domain.ActionSleep, 2)
	require.True(t, res.Success)
	assert.Equal(t, 3, res.Stats.Energy)

	got := loadTimers(t, mem)
	assert.Equal(t, start.Add(time.Hour), got.LastFeed)
	assert.Equal(t, start.Add(time.Hour), got.LastSleep)
	assert.Equal(t, start.Add(time.Hour), got.LastInteraction)
}

func TestRecordAction_Rejections(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	assert.False(t, l.RecordAction(ctx, "ghost", domain.ActionFeed, 1).Success)
	assert.False(t, l.RecordAction(ctx, "rex", domain.ActionType("dance"), 1).Success)
}

func TestRecordAction_StorageFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := NewLedger("p1", store.Broken{}, clock.NewCalendar(clock.NewFake(start), time.UTC), logger)
	ctx := context.Background()

	res := l.RecordAction(ctx, "rex", domain.ActionFeed, 1)
	assert.False(t, res.Success)
	assert.Nil(t, l.Pets(ctx))
	_, ok := l.Stats(ctx, "rex")
	assert.False(t, ok)
}
