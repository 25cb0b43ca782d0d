package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pet-progression/internal/domain"
)

// BatchUpsertScores writes a leaderboard snapshot
func (r *Repository) BatchUpsertScores(ctx context.Context, scores map[string]int64) error {
	if len(scores) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO leaderboard_snapshots (player_id, score, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id)
		DO UPDATE SET score = $2, updated_at = $3
	`
	now := time.Now()

	for playerID, score := range scores {
		batch.Queue(query, playerID, score, now)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range scores {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch upserting scores: %w", err)
		}
	}
	return nil
}

// GetAllScores returns the last snapshot, used to rebuild Redis on startup
func (r *Repository) GetAllScores(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT player_id, score FROM leaderboard_snapshots`)
	if err != nil {
		return nil, fmt.Errorf("getting all scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]int64)
	for rows.Next() {
		var playerID string
		var score int64
		if err := rows.Scan(&playerID, &score); err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		scores[playerID] = score
	}
	return scores, rows.Err()
}

// GetLeaderboardEntries returns snapshot entries with pagination
func (r *Repository) GetLeaderboardEntries(ctx context.Context, limit, offset int) ([]domain.LeaderboardEntry, error) {
	query := `
		SELECT player_id, score,
			   ROW_NUMBER() OVER (ORDER BY score DESC) as rank
		FROM leaderboard_snapshots
		ORDER BY score DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.PlayerID, &entry.Score, &entry.Rank); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
