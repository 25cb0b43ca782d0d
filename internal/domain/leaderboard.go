package domain

// LeaderboardEntry is one ranked player on the points leaderboard.
type LeaderboardEntry struct {
	Rank     int64  `json:"rank"`
	PlayerID string `json:"player_id"`
	Score    int64  `json:"score"`
}
