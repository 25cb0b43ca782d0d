// Package interaction records player actions against pets and enforces the
// per-day caps on mood gain and feeding.
package interaction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pet-progression/internal/catalog"
	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/statclock"
	"github.com/pet-progression/internal/store"
)

const (
	// MaxFeedsPerDay caps feed actions per pet per calendar day.
	MaxFeedsPerDay = 4

	// MaxMoodGainsPerDay caps mood increases per pet per calendar day.
	MaxMoodGainsPerDay = 1
)

// ActionResult is returned by RecordAction.
type ActionResult struct {
	domain.Result
	PetID      string            `json:"pet_id"`
	Action     domain.ActionType `json:"action"`
	Stats      domain.PetStats   `json:"stats"`
	MoodGained bool              `json:"mood_gained"`
	FeedsToday int               `json:"feeds_today"`
}

// Ledger owns a player's PetTimers documents.
type Ledger struct {
	playerID string
	store    store.Store
	cal      *clock.Calendar
	logger   *slog.Logger
}

// NewLedger creates a ledger for one player.
func NewLedger(playerID string, st store.Store, cal *clock.Calendar, logger *slog.Logger) *Ledger {
	return &Ledger{
		playerID: playerID,
		store:    st,
		cal:      cal,
		logger:   logger.With("component", "interaction", "player_id", playerID),
	}
}

// Adopt creates the timers document for a new pet and adds it to the roster.
func (l *Ledger) Adopt(ctx context.Context, petID string) domain.Result {
	if petID == "" {
		return domain.Fail("A pet needs a name.")
	}

	var roster domain.PetRoster
	if _, err := l.store.Get(ctx, store.PetRosterKey(l.playerID), &roster); err != nil {
		l.logger.Warn("failed to load pet roster", "error", err)
		return domain.Fail("Couldn't reach storage, try again.")
	}
	if roster.Has(petID) {
		return domain.Fail(fmt.Sprintf("%s is already part of the family.", petID))
	}

	timers := domain.NewPetTimers(petID, l.cal.Now(), l.cal.Today())
	if err := l.store.Set(ctx, store.PetTimersKey(l.playerID, petID), timers); err != nil {
		l.logger.Warn("failed to save pet timers", "pet_id", petID, "error", err)
		return domain.Fail("Couldn't reach storage, try again.")
	}

	roster.Version = domain.PetRosterVersion
	roster.PetIDs = append(roster.PetIDs, petID)
	if err := l.store.Set(ctx, store.PetRosterKey(l.playerID), roster); err != nil {
		l.logger.Warn("failed to save pet roster", "error", err)
		return domain.Fail("Couldn't reach storage, try again.")
	}

	return domain.Ok(fmt.Sprintf("Welcome home, %s!", petID))
}

// Pets returns the adopted pet ids, or nil when storage is unavailable.
func (l *Ledger) Pets(ctx context.Context) []string {
	var roster domain.PetRoster
	if _, err := l.store.Get(ctx, store.PetRosterKey(l.playerID), &roster); err != nil {
		l.logger.Warn("failed to load pet roster", "error", err)
		return nil
	}
	return roster.PetIDs
}

// Stats derives the current stats of a pet without persisting anything.
func (l *Ledger) Stats(ctx context.Context, petID string) (domain.PetStats, bool) {
	timers, ok := l.load(ctx, petID)
	if !ok {
		return domain.PetStats{}, false
	}
	return statclock.Compute(timers, l.cal.Now()), true
}

func (l *Ledger) load(ctx context.Context, petID string) (domain.PetTimers, bool) {
	var timers domain.PetTimers
	found, err := l.store.Get(ctx, store.PetTimersKey(l.playerID, petID), &timers)
	if err != nil {
		l.logger.Warn("failed to load pet timers", "pet_id", petID, "error", err)
		return domain.PetTimers{}, false
	}
	if !found {
		return domain.PetTimers{}, false
	}
	hydrate(&timers, petID)
	return timers, true
}

// hydrate fills fields missing from documents written by older versions.
func hydrate(t *domain.PetTimers, petID string) {
	if t.PetID == "" {
		t.PetID = petID
	}
	if t.CurrentMood == 0 {
		t.CurrentMood = domain.MaxStat
	}
	if t.CurrentHunger == 0 {
		t.CurrentHunger = domain.MaxStat
	}
	if t.CurrentEnergy == 0 {
		t.CurrentEnergy = domain.MaxStat
	}
	if t.EnergyDecayTimestamp.IsZero() {
		t.EnergyDecayTimestamp = t.LastInteraction
	}
	t.Version = domain.PetTimersVersion
}

// resetDailyCounters zeroes each counter whose reset date is not today.
func resetDailyCounters(t *domain.PetTimers, today string) {
	if t.MoodActionsResetDate != today {
		t.MoodActionsToday = 0
		t.MoodActionsResetDate = today
	}
	if t.FeedActionsResetDate != today {
		t.FeedActionsToday = 0
		t.FeedActionsResetDate = today
	}
}

// RecordAction applies one action to a pet. A rejected action leaves the
// stored timers untouched.
func (l *Ledger) RecordAction(ctx context.Context, petID string, action domain.ActionType, statBoost int) ActionResult {
	res := ActionResult{PetID: petID, Action: action}

	if !action.IsValid() {
		res.Result = domain.Fail(fmt.Sprintf("Unknown action %q.", action))
		return res
	}

	var timers domain.PetTimers
	found, err := l.store.Get(ctx, store.PetTimersKey(l.playerID, petID), &timers)
	if err != nil {
		l.logger.Warn("failed to load pet timers", "pet_id", petID, "error", err)
		res.Result = domain.Fail("Couldn't reach storage, try again.")
		return res
	}
	if !found {
		res.Result = domain.Fail(fmt.Sprintf("Pet %q not found.", petID))
		return res
	}
	hydrate(&timers, petID)

	now := l.cal.Now()
	resetDailyCounters(&timers, l.cal.Today())

	if action == domain.ActionFeed && timers.FeedActionsToday >= MaxFeedsPerDay {
		res.Stats = statclock.Compute(timers, now)
		res.FeedsToday = timers.FeedActionsToday
		res.Result = domain.Fail(fmt.Sprintf(
			"%s is full! Daily feed limit reached (%d/%d). Try again tomorrow.",
			petID, timers.FeedActionsToday, MaxFeedsPerDay,
		))
		return res
	}

	statclock.Recompute(&timers, now)

	if timers.MoodActionsToday < MaxMoodGainsPerDay {
		timers.CurrentMood = domain.ClampStat(timers.CurrentMood + 1)
		timers.MoodActionsToday++
		res.MoodGained = true
	}

	if statBoost < 0 {
		statBoost = 0
	}
	switch action {
	case domain.ActionFeed:
		timers.FeedActionsToday++
		timers.CurrentHunger = domain.ClampStat(timers.CurrentHunger + statBoost)
	case domain.ActionSleep:
		timers.CurrentEnergy = domain.ClampStat(timers.CurrentEnergy + statBoost)
	}
	timers.Touch(action, now)
	statclock.Settle(&timers, now)

	if err := l.store.Set(ctx, store.PetTimersKey(l.playerID, petID), timers); err != nil {
		l.logger.Warn("failed to save pet timers", "pet_id", petID, "error", err)
		res.MoodGained = false
		res.Result = domain.Fail("Couldn't reach storage, try again.")
		return res
	}

	res.Stats = statclock.Compute(timers, now)
	res.FeedsToday = timers.FeedActionsToday
	res.Result = domain.Ok(catalog.ActionMessages[action])
	return res
}
