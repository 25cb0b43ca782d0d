package catalog

import "github.com/pet-progression/internal/domain"

// MissionTemplate is the static definition of a mission.
type MissionTemplate struct {
	ID          string
	Title       string
	Description string
	Scope       domain.MissionScope
	Requirement domain.Requirement
	Rewards     []domain.Reward
}

func rewards(fragments, xp int) []domain.Reward {
	return []domain.Reward{
		{Type: domain.RewardStarFragments, Amount: fragments},
		{Type: domain.RewardExperience, Amount: xp},
	}
}

// Missions is the default mission set.
var Missions = []MissionTemplate{
	{
		ID:          "daily_feed",
		Title:       "Breakfast Club",
		Description: "Feed your pets 3 times today.",
		Scope:       domain.ScopeDaily,
		Requirement: domain.Requirement{Type: domain.ReqFeedPet, Target: 3},
		Rewards:     rewards(20, 100),
	},
	{
		ID:          "daily_play",
		Title:       "Playtime",
		Description: "Play with your pets twice today.",
		Scope:       domain.ScopeDaily,
		Requirement: domain.Requirement{Type: domain.ReqPlayPet, Target: 2},
		Rewards:     rewards(15, 75),
	},
	{
		ID:          "daily_chat",
		Title:       "Good Listener",
		Description: "Chat with a pet today.",
		Scope:       domain.ScopeDaily,
		Requirement: domain.Requirement{Type: domain.ReqChatPet, Target: 1},
		Rewards:     rewards(10, 50),
	},
	{
		ID:          "weekly_caretaker",
		Title:       "Devoted Caretaker",
		Description: "Interact with your pets 25 times this week.",
		Scope:       domain.ScopeWeekly,
		Requirement: domain.Requirement{Type: domain.ReqInteract, Target: 25},
		Rewards:     rewards(100, 500),
	},
	{
		ID:          "weekly_explorer",
		Title:       "Treasure Hunter",
		Description: "Discover 10 items this week.",
		Scope:       domain.ScopeWeekly,
		Requirement: domain.Requirement{Type: domain.ReqDiscoverItems, Target: 10},
		Rewards:     rewards(80, 400),
	},
	{
		ID:          "weekly_dailies",
		Title:       "Routine Master",
		Description: "Complete 10 daily missions this week.",
		Scope:       domain.ScopeWeekly,
		Requirement: domain.Requirement{Type: domain.ReqCompleteDaily, Target: 10},
		Rewards:     rewards(120, 600),
	},
	{
		ID:          "season_points",
		Title:       "Season of Care",
		Description: "Earn 5000 interaction points this season.",
		Scope:       domain.ScopeSeason,
		Requirement: domain.Requirement{Type: domain.ReqEarnPoints, Target: 5000},
		Rewards:     rewards(500, 2500),
	},
	{
		ID:          "season_discoveries",
		Title:       "Cartographer",
		Description: "Discover 100 items this season.",
		Scope:       domain.ScopeSeason,
		Requirement: domain.Requirement{Type: domain.ReqDiscoverItems, Target: 100},
		Rewards:     rewards(400, 2000),
	},
}
