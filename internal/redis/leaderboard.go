package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/events"
)

const (
	scoreBufferSize    = 1024
	scoreFlushInterval = 500 * time.Millisecond
	scoreBatchSize     = 100
)

type scoreDelta struct {
	playerID string
	delta    int64
}

// Leaderboard ranks players by lifetime interaction points
type Leaderboard struct {
	client *redis.Client
	key    string
	logger *slog.Logger

	updates chan scoreDelta
	dropped atomic.Int64

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewLeaderboard creates the points leaderboard
func NewLeaderboard(client *redis.Client, prefix string, logger *slog.Logger) *Leaderboard {
	key := "leaderboard:points"
	if prefix != "" {
		key = prefix + ":" + key
	}
	return &Leaderboard{
		client:  client,
		key:     key,
		logger:  logger.With("component", "leaderboard"),
		updates: make(chan scoreDelta, scoreBufferSize),
	}
}

// IncrementScore adds delta to a player's score
func (l *Leaderboard) IncrementScore(ctx context.Context, playerID string, delta int64) (int64, error) {
	newScore, err := l.client.ZIncrBy(ctx, l.key, float64(delta), playerID).Result()
	if err != nil {
		return 0, fmt.Errorf("incrementing score: %w", err)
	}
	return int64(newScore), nil
}

// Listener returns a bus listener that queues every points award for the
// background writer started by Start. It never waits on Redis: when the queue
// is full the award is dropped and counted.
func (l *Leaderboard) Listener() events.Listener {
	return func(e events.Event) {
		awarded, ok := e.(events.PointsAwarded)
		if !ok || awarded.Award.Total <= 0 {
			return
		}
		select {
		case l.updates <- scoreDelta{playerID: awarded.PlayerID, delta: int64(awarded.Award.Total)}:
		default:
			if n := l.dropped.Add(1); n%100 == 1 {
				l.logger.Warn("leaderboard queue full, dropping awards", "dropped", n)
			}
		}
	}
}

// Dropped returns how many awards never reached Redis because the queue was full.
func (l *Leaderboard) Dropped() int64 {
	return l.dropped.Load()
}

// Start begins applying queued awards
func (l *Leaderboard) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.running = true
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	go l.run()
}

// Stop applies whatever is still queued and stops the writer
func (l *Leaderboard) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.stopCh)
	done := l.doneCh
	l.mu.Unlock()
	<-done
}

func (l *Leaderboard) run() {
	defer close(l.doneCh)

	ticker := time.NewTicker(scoreFlushInterval)
	defer ticker.Stop()

	pending := make(map[string]int64)
	for {
		select {
		case u := <-l.updates:
			pending[u.playerID] += u.delta
			if len(pending) >= scoreBatchSize {
				l.flush(pending)
			}
		case <-ticker.C:
			l.flush(pending)
		case <-l.stopCh:
			for {
				select {
				case u := <-l.updates:
					pending[u.playerID] += u.delta
				default:
					l.flush(pending)
					return
				}
			}
		}
	}
}

// flush adds the pending deltas in one pipeline and clears them.
func (l *Leaderboard) flush(pending map[string]int64) {
	if len(pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipe := l.client.Pipeline()
	for playerID, delta := range pending {
		pipe.ZIncrBy(ctx, l.key, float64(delta), playerID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warn("failed to update leaderboard", "players", len(pending), "error", err)
	}
	clear(pending)
}

func toEntries(results []redis.Z, firstRank int64) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, len(results))
	for i, result := range results {
		member, _ := result.Member.(string)
		entries[i] = domain.LeaderboardEntry{
			Rank:     firstRank + int64(i),
			PlayerID: member,
			Score:    int64(result.Score),
		}
	}
	return entries
}

// GetTopN returns the top N players (descending order)
func (l *Leaderboard) GetTopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		return []domain.LeaderboardEntry{}, nil
	}
	results, err := l.client.ZRevRangeWithScores(ctx, l.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting top n: %w", err)
	}
	return toEntries(results, 1), nil
}

// GetPlayerRank returns a player's rank and score
func (l *Leaderboard) GetPlayerRank(ctx context.Context, playerID string) (*domain.LeaderboardEntry, error) {
	// Use pipeline to get both rank and score
	pipe := l.client.Pipeline()
	rankCmd := pipe.ZRevRank(ctx, l.key, playerID)
	scoreCmd := pipe.ZScore(ctx, l.key, playerID)
	_, err := pipe.Exec(ctx)
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting player rank: %w", err)
	}

	rank, err := rankCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("getting rank result: %w", err)
	}
	score, err := scoreCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("getting score result: %w", err)
	}

	return &domain.LeaderboardEntry{
		Rank:     rank + 1, // Convert 0-indexed to 1-indexed
		PlayerID: playerID,
		Score:    int64(score),
	}, nil
}

// GetAroundPlayer returns up to count players on each side of a player
func (l *Leaderboard) GetAroundPlayer(ctx context.Context, playerID string, count int) ([]domain.LeaderboardEntry, error) {
	entry, err := l.GetPlayerRank(ctx, playerID)
	if err != nil {
		return nil, err
	}

	start := max(entry.Rank-1-int64(count), 0)
	end := entry.Rank - 1 + int64(count)
	return l.GetRange(ctx, int(start), int(end))
}

// GetRange returns players within a 0-indexed rank range
func (l *Leaderboard) GetRange(ctx context.Context, start, end int) ([]domain.LeaderboardEntry, error) {
	results, err := l.client.ZRevRangeWithScores(ctx, l.key, int64(start), int64(end)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting range: %w", err)
	}
	return toEntries(results, int64(start)+1), nil
}

// GetCount returns the number of ranked players
func (l *Leaderboard) GetCount(ctx context.Context) (int64, error) {
	count, err := l.client.ZCard(ctx, l.key).Result()
	if err != nil {
		return 0, fmt.Errorf("getting count: %w", err)
	}
	return count, nil
}

// GetAllScores returns every ranked player
func (l *Leaderboard) GetAllScores(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	results, err := l.client.ZRevRangeWithScores(ctx, l.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("getting all scores: %w", err)
	}
	return toEntries(results, 1), nil
}

// BatchSetScores sets multiple scores using pipelining
func (l *Leaderboard) BatchSetScores(ctx context.Context, scores map[string]int64) error {
	if len(scores) == 0 {
		return nil
	}
	pipe := l.client.Pipeline()
	for playerID, score := range scores {
		pipe.ZAdd(ctx, l.key, redis.Z{
			Score:  float64(score),
			Member: playerID,
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("batch setting scores: %w", err)
	}
	return nil
}

// Reset clears the leaderboard
func (l *Leaderboard) Reset(ctx context.Context) error {
	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("resetting leaderboard: %w", err)
	}
	return nil
}
