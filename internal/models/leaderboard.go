package models

import "time"

// LeaderboardEntry is one ranked row of the global leaderboard.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`

	Wins   uint64 `json:"wins"`
	Losses uint64 `json:"losses"`
	Ties   uint64 `json:"ties"`
	Rounds uint64 `json:"rounds"`

	// Predicted counts rounds where the engine called the player's throw.
	Predicted  uint64  `json:"predicted"`
	WinRate    float64 `json:"win_rate"`    // player round-win rate
	AIAccuracy float64 `json:"ai_accuracy"` // prediction hit rate against this player

	LastActive time.Time `json:"last_active"`
}

// PlayerSummary aggregates a player's lifetime record.
type PlayerSummary struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`

	Rounds uint64 `json:"rounds"`
	Wins   uint64 `json:"wins"`
	Losses uint64 `json:"losses"`
	Ties   uint64 `json:"ties"`

	Predicted  uint64  `json:"predicted"`
	AIAccuracy float64 `json:"ai_accuracy"`

	SymbolUsage map[Symbol]uint64 `json:"symbol_usage"`
	LastActive  time.Time         `json:"last_active"`
}

// PlayerAchievement is an unlocked badge.
type PlayerAchievement struct {
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
