package catalog

import "github.com/pet-progression/internal/domain"

// AchievementTemplate is the static definition of an achievement.
type AchievementTemplate struct {
	ID          string
	Title       string
	Description string
	Category    domain.AchievementCategory
	Requirement domain.Requirement
	Reward      domain.Reward
}

func fragments(n int) domain.Reward {
	return domain.Reward{Type: domain.RewardStarFragments, Amount: n}
}

// Achievements is the default achievement set.
var Achievements = []AchievementTemplate{
	// Inventory size
	{ID: "collector_10", Title: "Pocketful", Description: "Hold 10 items.", Category: domain.CategoryInventory,
		Requirement: domain.Requirement{Type: domain.ReqInventoryCount, Target: 10}, Reward: fragments(25)},
	{ID: "collector_50", Title: "Packrat", Description: "Hold 50 items.", Category: domain.CategoryInventory,
		Requirement: domain.Requirement{Type: domain.ReqInventoryCount, Target: 50}, Reward: fragments(75)},
	{ID: "collector_200", Title: "Hoarder", Description: "Hold 200 items.", Category: domain.CategoryInventory,
		Requirement: domain.Requirement{Type: domain.ReqInventoryCount, Target: 200}, Reward: fragments(200)},

	// Rarity diversity
	{ID: "rarity_3", Title: "Connoisseur", Description: "Own items of 3 rarities.", Category: domain.CategoryRarity,
		Requirement: domain.Requirement{Type: domain.ReqRarityTypes, Target: 3}, Reward: fragments(50)},
	{ID: "rarity_5", Title: "Full Spectrum", Description: "Own items of every rarity.", Category: domain.CategoryRarity,
		Requirement: domain.Requirement{Type: domain.ReqRarityTypes, Target: 5}, Reward: fragments(300)},

	// Discoveries
	{ID: "discover_1", Title: "First Find", Description: "Make your first discovery.", Category: domain.CategoryDiscovery,
		Requirement: domain.Requirement{Type: domain.ReqDiscoveryCount, Target: 1}, Reward: fragments(10)},
	{ID: "discover_25", Title: "Keen Nose", Description: "Discover 25 items.", Category: domain.CategoryDiscovery,
		Requirement: domain.Requirement{Type: domain.ReqDiscoveryCount, Target: 25}, Reward: fragments(60)},
	{ID: "discover_100", Title: "Expedition Leader", Description: "Discover 100 items.", Category: domain.CategoryDiscovery,
		Requirement: domain.Requirement{Type: domain.ReqDiscoveryCount, Target: 100}, Reward: fragments(150)},

	// Care
	{ID: "care_10", Title: "Attentive", Description: "Interact with your pets 10 times.", Category: domain.CategoryCare,
		Requirement: domain.Requirement{Type: domain.ReqInteract, Target: 10}, Reward: fragments(20)},
	{ID: "care_100", Title: "Best Friend", Description: "Interact with your pets 100 times.", Category: domain.CategoryCare,
		Requirement: domain.Requirement{Type: domain.ReqInteract, Target: 100}, Reward: fragments(100)},

	// Streaks
	{ID: "streak_7", Title: "One Week Strong", Description: "Reach a 7 day streak.", Category: domain.CategoryStreak,
		Requirement: domain.Requirement{Type: domain.ReqStreakDays, Target: 7}, Reward: fragments(70)},
	{ID: "streak_30", Title: "Creature of Habit", Description: "Reach a 30 day streak.", Category: domain.CategoryStreak,
		Requirement: domain.Requirement{Type: domain.ReqStreakDays, Target: 30}, Reward: fragments(300)},
}
