// Package statclock derives a pet's current mood, hunger and energy from its
// stored timers. Everything here is a pure function of the timers and now.
package statclock

import (
	"time"

	"github.com/pet-progression/internal/domain"
)

const (
	// EnergyDecayInterval is the span of one energy point of decay.
	EnergyDecayInterval = 6 * time.Hour

	// MaxComboPenalty caps the summed need-timer penalty.
	MaxComboPenalty = 4
)

// moodBand is a lower-bound threshold of the mood state machine.
type moodBand struct {
	from    time.Duration
	state   domain.MoodState
	penalty int
}

// moodBands is ordered from the longest neglect to the shortest.
var moodBands = []moodBand{
	{from: 21 * time.Hour, state: domain.MoodAngry, penalty: 3},
	{from: 15 * time.Hour, state: domain.MoodSad, penalty: 2},
	{from: 10 * time.Hour, state: domain.MoodBored, penalty: 1},
	{from: 3 * time.Hour, state: domain.MoodRelaxed, penalty: 0},
}

// comboThresholds are crossed in order; crossing the i-th adds i+1 points.
var comboThresholds = []time.Duration{
	3 * time.Hour,
	9 * time.Hour,
	15 * time.Hour,
	21 * time.Hour,
}

var needActions = []domain.ActionType{
	domain.ActionFeed,
	domain.ActionSleep,
	domain.ActionPlay,
	domain.ActionChat,
}

func elapsed(since, now time.Time) time.Duration {
	d := now.Sub(since)
	if d < 0 {
		return 0
	}
	return d
}

// MoodStateFor returns the mood state and its base penalty after d without
// interaction.
func MoodStateFor(d time.Duration) (domain.MoodState, int) {
	for _, b := range moodBands {
		if d >= b.from {
			return b.state, b.penalty
		}
	}
	return domain.MoodHappy, 0
}

// thresholdPenalty sums the indices of every combo threshold d has crossed.
func thresholdPenalty(d time.Duration) int {
	p := 0
	for i, th := range comboThresholds {
		if d >= th {
			p += i + 1
		}
	}
	return p
}

// ComboPenalty sums threshold penalties over the four need timers, capped at
// MaxComboPenalty.
func ComboPenalty(t domain.PetTimers, now time.Time) int {
	total := 0
	for _, a := range needActions {
		total += thresholdPenalty(elapsed(t.LastFor(a), now))
	}
	if total > MaxComboPenalty {
		return MaxComboPenalty
	}
	return total
}

// DecayedEnergy returns energy after every full EnergyDecayInterval since
// checkpoint, never below the stat floor.
func DecayedEnergy(energy int, checkpoint, now time.Time) int {
	blocks := int(elapsed(checkpoint, now) / EnergyDecayInterval)
	return domain.ClampStat(energy - blocks)
}

// Compute derives display stats without touching t. Only the part of each
// penalty not yet settled into CurrentMood is subtracted.
func Compute(t domain.PetTimers, now time.Time) domain.PetStats {
	state, penalty := MoodStateFor(elapsed(t.LastInteraction, now))
	combo := ComboPenalty(t, now)

	mood := domain.ClampStat(t.CurrentMood - max(penalty-t.SettledMoodPenalty, 0))
	mood = domain.ClampStat(mood - max(combo-t.SettledComboPenalty, 0))

	return domain.PetStats{
		PetID:        t.PetID,
		Mood:         mood,
		Hunger:       domain.ClampStat(t.CurrentHunger),
		Energy:       DecayedEnergy(t.CurrentEnergy, t.EnergyDecayTimestamp, now),
		MoodState:    state,
		MoodPenalty:  penalty,
		ComboPenalty: combo,
		ComputedAt:   now,
	}
}

// Recompute folds mood penalties and energy decay into t and moves the decay
// checkpoint to now.
func Recompute(t *domain.PetTimers, now time.Time) domain.PetStats {
	stats := Compute(*t, now)
	t.CurrentMood = stats.Mood
	t.CurrentEnergy = stats.Energy
	t.EnergyDecayTimestamp = now
	Settle(t, now)
	return stats
}

// Settle marks the penalties in effect at now as already folded into t. Call
// it again after timers move so that penalties count from the new timers.
func Settle(t *domain.PetTimers, now time.Time) {
	_, t.SettledMoodPenalty = MoodStateFor(elapsed(t.LastInteraction, now))
	t.SettledComboPenalty = ComboPenalty(*t, now)
}
