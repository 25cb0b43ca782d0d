package domain

import "time"

// PointsAccountVersion is the schema version of PointsAccount documents.
const PointsAccountVersion = 1

// PetPoints is the per-pet slice of a points account.
type PetPoints struct {
	DailyPoints         int    `json:"daily_points"`
	TotalPoints         int    `json:"total_points"`
	InteractionCount    int    `json:"interaction_count"`
	MoodBonusPoints     int    `json:"mood_bonus_points"`
	StreakDays          int    `json:"streak_days"`
	LastInteractionDate string `json:"last_interaction_date,omitempty"`
}

// PointsAccount tracks interaction points for one player.
type PointsAccount struct {
	Version             int                   `json:"version"`
	PlayerID            string                `json:"player_id"`
	TotalPoints         int                   `json:"total_points"`
	DailyPoints         int                   `json:"daily_points"`
	DailyPointsDate     string                `json:"daily_points_date,omitempty"`
	CurrentStreak       int                   `json:"current_streak"`
	LongestStreak       int                   `json:"longest_streak"`
	LastInteractionDate string                `json:"last_interaction_date,omitempty"`
	Pets                map[string]*PetPoints `json:"pets"`
	LastUpdated         time.Time             `json:"last_updated"`
}

// ActivePetCount returns how many pets have at least one recorded interaction.
func (a PointsAccount) ActivePetCount() int {
	n := 0
	for _, p := range a.Pets {
		if p != nil && p.InteractionCount > 0 {
			n++
		}
	}
	return n
}

// PointsAward is the breakdown of one AwardInteractionPoints call.
type PointsAward struct {
	PetID       string     `json:"pet_id"`
	Action      ActionType `json:"action"`
	BasePoints  int        `json:"base_points"`
	Multiplier  float64    `json:"multiplier"`
	PetCount    int        `json:"pet_count"`
	Points      int        `json:"points"`
	GoalBonus   int        `json:"goal_bonus"`
	StreakBonus int        `json:"streak_bonus"`
	Streak      int        `json:"streak"`
	Total       int        `json:"total"`
	Description string     `json:"description"`
}
