package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/config"
	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/events"
	"github.com/pet-progression/internal/service"
	"github.com/pet-progression/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeLive struct {
	entries  []domain.LeaderboardEntry
	restored map[string]int64
	err      error
}

func (f *fakeLive) GetAllScores(context.Context) ([]domain.LeaderboardEntry, error) {
	return f.entries, f.err
}

func (f *fakeLive) BatchSetScores(_ context.Context, scores map[string]int64) error {
	f.restored = scores
	return nil
}

type fakeSnapshot struct {
	batches []map[string]int64
	stored  map[string]int64
}

func (f *fakeSnapshot) BatchUpsertScores(_ context.Context, scores map[string]int64) error {
	f.batches = append(f.batches, scores)
	return nil
}

func (f *fakeSnapshot) GetAllScores(context.Context) (map[string]int64, error) {
	return f.stored, nil
}

func TestSyncToDatabase_Batches(t *testing.T) {
	live := &fakeLive{entries: []domain.LeaderboardEntry{
		{PlayerID: "a", Score: 3}, {PlayerID: "b", Score: 2}, {PlayerID: "c", Score: 1},
	}}
	snap := &fakeSnapshot{}
	w := NewSyncWorker(live, snap, &config.SyncConfig{BatchSize: 2}, testLogger())

	require.NoError(t, w.SyncToDatabase(context.Background()))
	require.Len(t, snap.batches, 2)
	assert.Len(t, snap.batches[0], 2)
	assert.Equal(t, map[string]int64{"c": 1}, snap.batches[1])
}

func TestSyncToDatabase_LiveError(t *testing.T) {
	live := &fakeLive{err: errors.New("redis down")}
	snap := &fakeSnapshot{}
	w := NewSyncWorker(live, snap, &config.SyncConfig{}, testLogger())

	assert.Error(t, w.SyncToDatabase(context.Background()))
	assert.Empty(t, snap.batches)
}

func TestSyncFromDatabase_Restores(t *testing.T) {
	live := &fakeLive{}
	snap := &fakeSnapshot{stored: map[string]int64{"a": 10}}
	w := NewSyncWorker(live, snap, &config.SyncConfig{}, testLogger())

	require.NoError(t, w.SyncFromDatabase(context.Background()))
	assert.Equal(t, map[string]int64{"a": 10}, live.restored)
}

func TestSyncWorker_StartStop(t *testing.T) {
	w := NewSyncWorker(&fakeLive{}, &fakeSnapshot{}, &config.SyncConfig{Interval: time.Hour}, testLogger())
	require.NoError(t, w.Start(context.Background()))
	assert.True(t, w.IsRunning())
	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
}

type recordingPusher struct {
	players []string
	pushed  map[string][]domain.PetStats
}

func (p *recordingPusher) SubscribedPlayers() []string { return p.players }

func (p *recordingPusher) BroadcastStats(playerID string, pets []domain.PetStats) {
	p.pushed[playerID] = pets
}

func TestRefreshWorker_PushesWithoutWriting(t *testing.T) {
	logger := testLogger()
	fake := clock.NewFake(time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC))
	st := store.NewMemory()
	reg, err := service.NewRegistry(st, events.NewBus(logger), service.Options{Clock: fake, Seed: 5}, logger)
	require.NoError(t, err)

	s, err := reg.Session("p1")
	require.NoError(t, err)
	require.True(t, s.AdoptPet(context.Background(), "rex").Success)
	docs := st.Len()

	fake.Advance(22 * time.Hour)
	pusher := &recordingPusher{players: []string{"p1", "p2"}, pushed: map[string][]domain.PetStats{}}
	w := NewRefreshWorker(reg, pusher, time.Minute, logger)

	assert.Equal(t, 1, w.RunOnce(context.Background()))
	require.Len(t, pusher.pushed["p1"], 1)
	assert.Equal(t, domain.MoodAngry, pusher.pushed["p1"][0].MoodState)
	assert.NotContains(t, pusher.pushed, "p2")
	assert.Equal(t, docs, st.Len())
}
