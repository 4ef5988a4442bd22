package models

import "time"

// MoveEvent is the analytics record emitted once per round and batch
// inserted into ClickHouse by the worker pool.
type MoveEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	GameID      string    `json:"game_id"`
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	Round       int       `json:"round"`
	Choice      string    `json:"choice"`
	Prediction  string    `json:"prediction"`
	AIChoice    string    `json:"ai_choice"`
	Confidence  int       `json:"confidence"`
	PatternType string    `json:"pattern_type"`
	Correct     bool      `json:"correct"`
	Winner      string    `json:"winner"`
}
