// Package rewards computes interaction points and keeps the star fragment
// ledger.
package rewards

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/pet-progression/internal/catalog"
	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/store"
)

const (
	// GoalBonusPercent is the share of points added when the player met a goal.
	GoalBonusPercent = 50

	// MaxStreakBonus caps the streak bonus added to every award.
	MaxStreakBonus = 50

	// DailyLoginBonus is credited once per calendar date.
	DailyLoginBonus = 25
)

// Economy owns a player's points account and currency ledger.
type Economy struct {
	playerID   string
	store      store.Store
	cal        *clock.Calendar
	basePoints map[domain.ActionType]int
	newID      func() string
	logger     *slog.Logger
}

// Option customizes an Economy.
type Option func(*Economy)

// WithBasePoints replaces the base points table.
func WithBasePoints(table map[domain.ActionType]int) Option {
	return func(e *Economy) { e.basePoints = table }
}

// New creates the economy for one player.
func New(playerID string, st store.Store, cal *clock.Calendar, logger *slog.Logger, opts ...Option) *Economy {
	e := &Economy{
		playerID:   playerID,
		store:      st,
		cal:        cal,
		basePoints: catalog.BasePoints,
		newID:      uuid.NewString,
		logger:     logger.With("component", "rewards", "player_id", playerID),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
