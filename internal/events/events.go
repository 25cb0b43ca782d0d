// Package events is the typed publish/subscribe bus connecting the progression
// components to their observers (UI push, reward issuance, archive).
package events

import (
	"time"

	"github.com/pet-progression/internal/domain"
)

// Kind tags an Event.
type Kind string

const (
	KindInventoryChanged    Kind = "inventory_changed"
	KindAchievementUnlocked Kind = "achievement_unlocked"
	KindDiscoveryMade       Kind = "discovery_made"
	KindMissionCompleted    Kind = "mission_completed"
	KindPointsAwarded       Kind = "points_awarded"
	KindActionRecorded      Kind = "action_recorded"
	KindLevelUp             Kind = "level_up"
	KindCurrencyChanged     Kind = "currency_changed"
)

// Event is implemented by every event payload. The set is closed: only types
// in this package satisfy it.
type Event interface {
	Kind() Kind
	Player() string
	At() time.Time
	isEvent()
}

// Header carries the fields common to every event.
type Header struct {
	PlayerID  string    `json:"player_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (h Header) Player() string { return h.PlayerID }
func (h Header) At() time.Time  { return h.Timestamp }
func (Header) isEvent()         {}

// InventoryChanged reports quantity deltas applied to the inventory.
type InventoryChanged struct {
	Header
	Deltas        map[string]int `json:"deltas"`
	TotalQuantity int            `json:"total_quantity"`
}

func (InventoryChanged) Kind() Kind { return KindInventoryChanged }

// AchievementUnlocked is emitted once when an achievement reaches its target.
type AchievementUnlocked struct {
	Header
	Achievement domain.Achievement `json:"achievement"`
}

func (AchievementUnlocked) Kind() Kind { return KindAchievementUnlocked }

// DiscoveryMade carries the records of one successful discovery roll.
type DiscoveryMade struct {
	Header
	Records []domain.DiscoveryRecord `json:"records"`
}

func (DiscoveryMade) Kind() Kind { return KindDiscoveryMade }

// MissionCompleted is emitted when a mission reward is claimed.
type MissionCompleted struct {
	Header
	MissionID     string              `json:"mission_id"`
	Scope         domain.MissionScope `json:"scope"`
	CompletionKey string              `json:"completion_key"`
	Rewards       []domain.Reward     `json:"rewards"`
}

func (MissionCompleted) Kind() Kind { return KindMissionCompleted }

// PointsAwarded carries the breakdown of an interaction award.
type PointsAwarded struct {
	Header
	Award       domain.PointsAward `json:"award"`
	TotalPoints int                `json:"total_points"`
}

func (PointsAwarded) Kind() Kind { return KindPointsAwarded }

// ActionRecorded is emitted after a successful pet action.
type ActionRecorded struct {
	Header
	PetID  string            `json:"pet_id"`
	Action domain.ActionType `json:"action"`
	Stats  domain.PetStats   `json:"stats"`
}

func (ActionRecorded) Kind() Kind { return KindActionRecorded }

// LevelUp is emitted when experience crosses a level boundary.
type LevelUp struct {
	Header
	From  int `json:"from"`
	To    int `json:"to"`
	Bonus int `json:"bonus"`
}

func (LevelUp) Kind() Kind { return KindLevelUp }

// CurrencyChanged is emitted for every ledger transaction.
type CurrencyChanged struct {
	Header
	Transaction domain.Transaction `json:"transaction"`
	Balance     int                `json:"balance"`
}

func (CurrencyChanged) Kind() Kind { return KindCurrencyChanged }
