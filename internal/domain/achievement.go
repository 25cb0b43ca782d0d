package domain

import "time"

// AchievementCategory groups achievements by what they measure.
type AchievementCategory string

const (
	CategoryInventory AchievementCategory = "inventory"
	CategoryRarity    AchievementCategory = "rarity"
	CategoryDiscovery AchievementCategory = "discovery"
	CategoryCare      AchievementCategory = "care"
	CategoryStreak    AchievementCategory = "streak"
	CategoryCustom    AchievementCategory = "custom"
)

// Achievement is a hydrated achievement: template plus stored progress.
type Achievement struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    AchievementCategory `json:"category"`
	Requirement Requirement         `json:"requirement"`
	Reward      Reward              `json:"reward"`
	Progress    int                 `json:"progress"`
	Completed   bool                `json:"completed"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Custom      bool                `json:"custom,omitempty"`
}

// AchievementProgress is the stored part of an achievement.
type AchievementProgress struct {
	Progress    int        `json:"progress"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// AchievementStateVersion is the schema version of AchievementState documents.
const AchievementStateVersion = 1

// AchievementState is the stored achievement document for a player.
type AchievementState struct {
	Version  int                             `json:"version"`
	Progress map[string]*AchievementProgress `json:"progress"`
	Custom   []Achievement                   `json:"custom"`
}

// UpdateStatus distinguishes what UpdateProgress did.
type UpdateStatus string

const (
	UpdateNoop       UpdateStatus = "noop"
	UpdateProgressed UpdateStatus = "progress_updated"
	UpdateCompleted  UpdateStatus = "completed"
)

// AchievementUpdate is returned by UpdateProgress.
type AchievementUpdate struct {
	Status      UpdateStatus `json:"status"`
	Achievement *Achievement `json:"achievement,omitempty"`
}
