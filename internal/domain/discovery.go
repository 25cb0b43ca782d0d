package domain

import "time"

// Rarity is a resource tier.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Rarities lists every tier from most to least common.
var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

// DiscoverySettingsVersion is the schema version of DiscoverySettings documents.
const DiscoverySettingsVersion = 1

// DiscoveryRecord is an immutable discovery event.
type DiscoveryRecord struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resource_id"`
	Quantity   int       `json:"quantity"`
	Rarity     Rarity    `json:"rarity"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
}

// DiscoverySettings is the per-player discovery gate.
type DiscoverySettings struct {
	Version           int       `json:"version"`
	Enabled           bool      `json:"enabled"`
	IntervalHours     float64   `json:"interval_hours"`
	LastDiscoveryTime time.Time `json:"last_discovery_time"`
	DiscoveryChance   float64   `json:"discovery_chance"`
	MaxPerDay         int       `json:"max_per_day"`
	DailyCount        int       `json:"daily_count"`
	LastResetDate     string    `json:"last_reset_date"`
}

// DiscoveryHistory is the bounded list of past discoveries.
type DiscoveryHistory struct {
	Version int               `json:"version"`
	Total   int               `json:"total"`
	Records []DiscoveryRecord `json:"records"`
}
