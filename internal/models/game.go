package models

import (
	"fmt"
	"time"
)

// Symbol is one of the three throwable hand shapes.
type Symbol string

const (
	Rock     Symbol = "rock"
	Paper    Symbol = "paper"
	Scissors Symbol = "scissors"
)

// SymbolOrder is the canonical enumeration order. All tie-breaks in the
// prediction engine scan symbols in this order, so it must never change.
var SymbolOrder = []Symbol{Rock, Paper, Scissors}

// Valid reports whether s is inside the three-symbol domain.
func (s Symbol) Valid() bool {
	switch s {
	case Rock, Paper, Scissors:
		return true
	}
	return false
}

// ErrInvalidMoveSymbol is returned at ingestion when a request carries a
// choice outside the rock/paper/scissors domain.
type ErrInvalidMoveSymbol struct {
	Got string
}

func (e *ErrInvalidMoveSymbol) Error() string {
	return fmt.Sprintf("invalid move symbol %q", e.Got)
}

// Round winners.
const (
	WinnerPlayer = "player"
	WinnerAI     = "ai"
	WinnerTie    = "tie"
)

// Game statuses.
const (
	GameActive   = "active"
	GameFinished = "finished"
)

// Move is one recorded turn. It is created exactly once when a round is
// processed and never mutated afterwards; the per-game move log is
// append-only.
type Move struct {
	GameID     string    `json:"game_id"`
	Round      int       `json:"round"`
	PlayerID   string    `json:"player_id"`
	Choice     Symbol    `json:"choice"`
	Timestamp  time.Time `json:"timestamp"`
	Prediction Symbol    `json:"prediction"` // prediction in effect before the choice was revealed
	AIChoice   Symbol    `json:"ai_choice"`
	Confidence int       `json:"confidence"`
	Correct    bool      `json:"correct"` // prediction matched the revealed choice
	Winner     string    `json:"winner"`
}

// Game is a durable session row.
type Game struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	PlayerScore int       `json:"player_score"`
	AIScore     int       `json:"ai_score"`
	Ties        int       `json:"ties"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoundResult is what the caller gets back after playing a round.
type RoundResult struct {
	GameID       string     `json:"game_id"`
	Round        int        `json:"round"`
	PlayerChoice Symbol     `json:"player_choice"`
	AIChoice     Symbol     `json:"ai_choice"`
	Winner       string     `json:"winner"`
	Analysis     AIAnalysis `json:"analysis"`
	PlayerScore  int        `json:"player_score"`
	AIScore      int        `json:"ai_score"`
	Ties         int        `json:"ties"`
	CacheHit     bool       `json:"-"`
}
