package domain

import "time"

// ExperiencePerLevel is the XP span of one level.
const ExperiencePerLevel = 1000

// LevelForExperience returns floor(xp/1000)+1.
func LevelForExperience(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/ExperiencePerLevel + 1
}

// PlayerProgressVersion is the schema version of PlayerProgress documents.
const PlayerProgressVersion = 1

// PlayerProgress holds experience and level.
type PlayerProgress struct {
	Version    int       `json:"version"`
	Experience int       `json:"experience"`
	Level      int       `json:"level"`
	UpdatedAt  time.Time `json:"updated_at"`
}
