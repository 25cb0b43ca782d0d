package domain

import "time"

// MissionScope is the reset window of a mission.
type MissionScope string

const (
	ScopeDaily  MissionScope = "daily"
	ScopeWeekly MissionScope = "weekly"
	ScopeSeason MissionScope = "season"
)

// RequirementType names the counter a mission or achievement tracks.
type RequirementType string

const (
	ReqFeedPet        RequirementType = "feed_pet"
	ReqPlayPet        RequirementType = "play_pet"
	ReqSleepPet       RequirementType = "sleep_pet"
	ReqChatPet        RequirementType = "chat_pet"
	ReqInteract       RequirementType = "interact"
	ReqDiscoverItems  RequirementType = "discover_items"
	ReqEarnPoints     RequirementType = "earn_points"
	ReqCompleteDaily  RequirementType = "complete_daily"
	ReqInventoryCount RequirementType = "inventory_count"
	ReqRarityTypes    RequirementType = "rarity_types"
	ReqDiscoveryCount RequirementType = "discovery_count"
	ReqStreakDays     RequirementType = "streak_days"
	ReqCustom         RequirementType = "custom"
)

// RequirementForAction maps a pet action to its mission counter.
func RequirementForAction(a ActionType) RequirementType {
	switch a {
	case ActionFeed:
		return ReqFeedPet
	case ActionPlay:
		return ReqPlayPet
	case ActionSleep:
		return ReqSleepPet
	case ActionChat:
		return ReqChatPet
	default:
		return ""
	}
}

// Requirement is a counter type plus the target it must reach.
type Requirement struct {
	Type     RequirementType   `json:"type"`
	Target   int               `json:"target"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RewardType is the kind of a mission reward.
type RewardType string

const (
	RewardStarFragments RewardType = "star_fragments"
	RewardExperience    RewardType = "experience"
	RewardItem          RewardType = "item"
)

// Reward is one element of a mission's reward list.
type Reward struct {
	Type   RewardType `json:"type"`
	Amount int        `json:"amount"`
	ItemID string     `json:"item_id,omitempty"`
}

// Mission is a hydrated mission for the active window.
type Mission struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Scope         MissionScope `json:"scope"`
	Requirement   Requirement  `json:"requirement"`
	Rewards       []Reward     `json:"rewards"`
	Progress      int          `json:"progress"`
	Completed     bool         `json:"completed"`
	CompletionKey string       `json:"completion_key"`
	ExpiresAt     time.Time    `json:"expires_at"`
}

// MissionStateVersion is the schema version of MissionState documents.
const MissionStateVersion = 1

// MissionState stores progress and completion keys for one window document.
// Daily and weekly progress share the player document; season progress lives
// in a document per season so that the bare mission id can be the key.
type MissionState struct {
	Version   int                  `json:"version"`
	Progress  map[string]int       `json:"progress"`
	Completed map[string]time.Time `json:"completed"`
}

// MissionResult is returned by CompleteMission.
type MissionResult struct {
	Result
	MissionID     string       `json:"mission_id"`
	Scope         MissionScope `json:"scope,omitempty"`
	CompletionKey string       `json:"completion_key,omitempty"`
	Rewards       []Reward     `json:"rewards,omitempty"`
	StarFragments int          `json:"star_fragments"`
	Experience    int          `json:"experience"`
	LevelBefore   int          `json:"level_before"`
	LevelAfter    int          `json:"level_after"`
	LevelUpBonus  int          `json:"level_up_bonus"`
	Items         []Reward     `json:"items,omitempty"`
}
