package store

import "fmt"

// PetTimersKey returns the key of a pet's stat document.
func PetTimersKey(playerID, petID string) string {
	return fmt.Sprintf("pet:%s:%s:timers", playerID, petID)
}

// PetRosterKey returns the key of a player's adopted pet list.
func PetRosterKey(playerID string) string {
	return fmt.Sprintf("player:%s:pets", playerID)
}

// PointsKey returns the key of a player's points account.
func PointsKey(playerID string) string {
	return fmt.Sprintf("player:%s:points", playerID)
}

// CurrencyKey returns the key of a player's currency ledger.
func CurrencyKey(playerID string) string {
	return fmt.Sprintf("player:%s:currency", playerID)
}

// DiscoverySettingsKey returns the key of a player's discovery gate.
func DiscoverySettingsKey(playerID string) string {
	return fmt.Sprintf("player:%s:discovery:settings", playerID)
}

// DiscoveryHistoryKey returns the key of a player's discovery history.
func DiscoveryHistoryKey(playerID string) string {
	return fmt.Sprintf("player:%s:discovery:history", playerID)
}

// InventoryKey returns the key of a player's inventory.
func InventoryKey(playerID string) string {
	return fmt.Sprintf("player:%s:inventory", playerID)
}

// MissionsKey returns the key holding daily and weekly mission progress.
func MissionsKey(playerID string) string {
	return fmt.Sprintf("player:%s:missions", playerID)
}

// SeasonMissionsKey returns the key holding one season's mission progress.
func SeasonMissionsKey(playerID, season string) string {
	return fmt.Sprintf("player:%s:missions:season:%s", playerID, season)
}

// ProgressKey returns the key of a player's experience document.
func ProgressKey(playerID string) string {
	return fmt.Sprintf("player:%s:progress", playerID)
}

// AchievementsKey returns the key of a player's achievement document.
func AchievementsKey(playerID string) string {
	return fmt.Sprintf("player:%s:achievements", playerID)
}
