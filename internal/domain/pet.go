package domain

import (
	"fmt"
	"strings"
	"time"
)

// Stat bounds shared by mood, hunger and energy.
const (
	MinStat = 1
	MaxStat = 5
)

// PetTimersVersion is the schema version written with every PetTimers document.
const PetTimersVersion = 2

// ActionType is a player action against a pet.
type ActionType string

const (
	ActionFeed  ActionType = "feed"
	ActionSleep ActionType = "sleep"
	ActionPlay  ActionType = "play"
	ActionChat  ActionType = "chat"
)

func (a ActionType) IsValid() bool {
	switch a {
	case ActionFeed, ActionSleep, ActionPlay, ActionChat:
		return true
	default:
		return false
	}
}

// ParseActionType accepts user input in any case.
func ParseActionType(input string) (ActionType, error) {
	a := ActionType(strings.TrimSpace(strings.ToLower(input)))
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, input)
	}
	return a, nil
}

// MoodState is derived from elapsed time since the last interaction.
type MoodState string

const (
	MoodHappy   MoodState = "happy"
	MoodRelaxed MoodState = "relaxed"
	MoodBored   MoodState = "bored"
	MoodSad     MoodState = "sad"
	MoodAngry   MoodState = "angry"
)

// PetTimers is the persisted per-pet stat document.
type PetTimers struct {
	Version              int       `json:"version"`
	PetID                string    `json:"pet_id"`
	LastFeed             time.Time `json:"last_feed"`
	LastSleep            time.Time `json:"last_sleep"`
	LastPlay             time.Time `json:"last_play"`
	LastChat             time.Time `json:"last_chat"`
	LastInteraction      time.Time `json:"last_interaction"`
	CurrentMood          int       `json:"current_mood"`
	CurrentHunger        int       `json:"current_hunger"`
	CurrentEnergy        int       `json:"current_energy"`
	MoodActionsToday     int       `json:"mood_actions_today"`
	FeedActionsToday     int       `json:"feed_actions_today"`
	MoodActionsResetDate string    `json:"mood_actions_reset_date"`
	FeedActionsResetDate string    `json:"feed_actions_reset_date"`
	EnergyDecayTimestamp time.Time `json:"energy_decay_timestamp"`

	// Penalties already folded into CurrentMood, so a read subtracts only
	// what has accrued since the last recorded action.
	SettledMoodPenalty  int `json:"settled_mood_penalty"`
	SettledComboPenalty int `json:"settled_combo_penalty"`
}

// NewPetTimers returns the document created on adoption: full stats, every
// timer at now.
func NewPetTimers(petID string, now time.Time, today string) PetTimers {
	return PetTimers{
		Version:              PetTimersVersion,
		PetID:                petID,
		LastFeed:             now,
		LastSleep:            now,
		LastPlay:             now,
		LastChat:             now,
		LastInteraction:      now,
		CurrentMood:          MaxStat,
		CurrentHunger:        MaxStat,
		CurrentEnergy:        MaxStat,
		MoodActionsResetDate: today,
		FeedActionsResetDate: today,
		EnergyDecayTimestamp: now,
	}
}

// LastFor returns the need timer matching an action.
func (p *PetTimers) LastFor(a ActionType) time.Time {
	switch a {
	case ActionFeed:
		return p.LastFeed
	case ActionSleep:
		return p.LastSleep
	case ActionPlay:
		return p.LastPlay
	case ActionChat:
		return p.LastChat
	default:
		return time.Time{}
	}
}

// Touch stamps the need timer for a and the shared interaction timer.
func (p *PetTimers) Touch(a ActionType, now time.Time) {
	switch a {
	case ActionFeed:
		p.LastFeed = now
	case ActionSleep:
		p.LastSleep = now
	case ActionPlay:
		p.LastPlay = now
	case ActionChat:
		p.LastChat = now
	}
	p.LastInteraction = now
}

// ClampStat bounds v to [MinStat, MaxStat].
func ClampStat(v int) int {
	if v < MinStat {
		return MinStat
	}
	if v > MaxStat {
		return MaxStat
	}
	return v
}

// PetStats is the derived, display-ready view of a pet.
type PetStats struct {
	PetID        string    `json:"pet_id"`
	Mood         int       `json:"mood"`
	Hunger       int       `json:"hunger"`
	Energy       int       `json:"energy"`
	MoodState    MoodState `json:"mood_state"`
	MoodPenalty  int       `json:"mood_penalty"`
	ComboPenalty int       `json:"combo_penalty"`
	ComputedAt   time.Time `json:"computed_at"`
}

// PetRosterVersion is the schema version of PetRoster documents.
const PetRosterVersion = 1

// PetRoster lists the pets a player has adopted.
type PetRoster struct {
	Version int      `json:"version"`
	PetIDs  []string `json:"pet_ids"`
}

// Has reports whether petID is on the roster.
func (r PetRoster) Has(petID string) bool {
	for _, id := range r.PetIDs {
		if id == petID {
			return true
		}
	}
	return false
}
