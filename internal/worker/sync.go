package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pet-progression/internal/config"
	"github.com/pet-progression/internal/domain"
)

const defaultSyncBatchSize = 1000

// LiveScores is the live points leaderboard
type LiveScores interface {
	GetAllScores(ctx context.Context) ([]domain.LeaderboardEntry, error)
	BatchSetScores(ctx context.Context, scores map[string]int64) error
}

// SnapshotStore persists leaderboard snapshots
type SnapshotStore interface {
	BatchUpsertScores(ctx context.Context, scores map[string]int64) error
	GetAllScores(ctx context.Context) (map[string]int64, error)
}

// SyncWorker periodically snapshots the live leaderboard into the database
type SyncWorker struct {
	live     LiveScores
	snapshot SnapshotStore
	config   *config.SyncConfig
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewSyncWorker creates a new sync worker
func NewSyncWorker(live LiveScores, snapshot SnapshotStore, cfg *config.SyncConfig, logger *slog.Logger) *SyncWorker {
	return &SyncWorker{
		live:     live,
		snapshot: snapshot,
		config:   cfg,
		logger:   logger.With("component", "sync_worker"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sync process
func (w *SyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("sync worker started", "interval", w.config.Interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background sync process
func (w *SyncWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("sync worker stopped")
	return nil
}

func (w *SyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce runs a single sync cycle
func (w *SyncWorker) RunOnce(ctx context.Context) {
	startTime := time.Now()
	if err := w.SyncToDatabase(ctx); err != nil {
		w.logger.Error("failed to sync leaderboard", "error", err)
		return
	}
	w.logger.Debug("sync cycle completed", "duration", time.Since(startTime))
}

// SyncToDatabase copies every live score into the snapshot store in batches
func (w *SyncWorker) SyncToDatabase(ctx context.Context) error {
	entries, err := w.live.GetAllScores(ctx)
	if err != nil {
		return fmt.Errorf("reading live scores: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	batchSize := w.config.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSyncBatchSize
	}

	batch := make(map[string]int64, batchSize)
	for _, entry := range entries {
		batch[entry.PlayerID] = entry.Score
		if len(batch) >= batchSize {
			if err := w.snapshot.BatchUpsertScores(ctx, batch); err != nil {
				return fmt.Errorf("writing snapshot batch: %w", err)
			}
			batch = make(map[string]int64, batchSize)
		}
	}
	if len(batch) > 0 {
		if err := w.snapshot.BatchUpsertScores(ctx, batch); err != nil {
			return fmt.Errorf("writing snapshot batch: %w", err)
		}
	}

	w.logger.Debug("synced leaderboard to database", "player_count", len(entries))
	return nil
}

// SyncFromDatabase restores the live leaderboard from the last snapshot
func (w *SyncWorker) SyncFromDatabase(ctx context.Context) error {
	scores, err := w.snapshot.GetAllScores(ctx)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	if len(scores) == 0 {
		w.logger.Debug("no snapshot to restore")
		return nil
	}
	if err := w.live.BatchSetScores(ctx, scores); err != nil {
		return fmt.Errorf("restoring live scores: %w", err)
	}
	w.logger.Info("restored leaderboard from database", "player_count", len(scores))
	return nil
}

// IsRunning returns whether the worker is currently running
func (w *SyncWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
