package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/service"
)

// StatsPusher delivers refreshed stats to connected players
type StatsPusher interface {
	SubscribedPlayers() []string
	BroadcastStats(playerID string, pets []domain.PetStats)
}

// Sessions resolves per-player sessions
type Sessions interface {
	Session(playerID string) (*service.Session, error)
}

// RefreshWorker recomputes time-derived pet stats on a tick and pushes them
// to subscribed players. It never writes to storage.
type RefreshWorker struct {
	sessions Sessions
	pusher   StatsPusher
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewRefreshWorker creates a refresh worker ticking every interval
func NewRefreshWorker(sessions Sessions, pusher StatsPusher, interval time.Duration, logger *slog.Logger) *RefreshWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &RefreshWorker{
		sessions: sessions,
		pusher:   pusher,
		interval: interval,
		logger:   logger.With("component", "refresh_worker"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins ticking
func (w *RefreshWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.logger.Info("refresh worker started", "interval", w.interval)
	go w.run(ctx)
}

// Stop halts the ticker and waits for the current tick to finish
func (w *RefreshWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.logger.Info("refresh worker stopped")
}

func (w *RefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
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

// RunOnce refreshes every subscribed player and returns how many were pushed
func (w *RefreshWorker) RunOnce(ctx context.Context) int {
	pushed := 0
	for _, playerID := range w.pusher.SubscribedPlayers() {
		if w.Push(ctx, playerID) {
			pushed++
		}
	}
	return pushed
}

// Push recomputes and sends one player's stats. It reports false when the
// player has no pets.
func (w *RefreshWorker) Push(ctx context.Context, playerID string) bool {
	s, err := w.sessions.Session(playerID)
	if err != nil {
		w.logger.Warn("failed to open session", "player_id", playerID, "error", err)
		return false
	}
	pets := s.AllStats(ctx)
	if len(pets) == 0 {
		return false
	}
	w.pusher.BroadcastStats(playerID, pets)
	return true
}
