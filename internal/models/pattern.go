package models

// PatternType classifies which strategy produced a prediction.
type PatternType string

const (
	PatternFrequency     PatternType = "frequency"
	PatternSequential    PatternType = "sequential"
	PatternMeta          PatternType = "meta"
	PatternPsychological PatternType = "psychological"
)

// RecencyWindow is how many trailing choices the analyzer keeps for the
// sequence-based strategies.
const RecencyWindow = 10

// PlayerPattern is the statistical summary derived from a full move
// history. It is recomputed fresh from the history on every request,
// never maintained incrementally.
type PlayerPattern struct {
	Frequencies map[Symbol]int            `json:"frequencies"`
	Transitions map[Symbol]map[Symbol]int `json:"transitions"`
	Streaks     map[Symbol]int            `json:"streaks"`
	LastMoves   []Symbol                  `json:"last_moves"` // oldest first, at most RecencyWindow
	TotalMoves  int                       `json:"total_moves"`
	// WinRate is historically misnamed: it is the fraction of rounds where
	// the prediction was WRONG (prediction-miss rate), not the player's
	// round-win rate. Downstream consumers depend on that meaning, so the
	// name is kept.
	WinRate         float64 `json:"win_rate"`
	RandomnessScore float64 `json:"randomness_score"` // 0 predictable .. 100 uniform
}

// AIAnalysis is a single prediction with its confidence and reasoning.
// It is ephemeral; callers may cache it keyed by the pattern hash.
type AIAnalysis struct {
	Prediction  Symbol      `json:"prediction"`
	Confidence  int         `json:"confidence"` // 0..85, never reports full certainty
	PatternType PatternType `json:"pattern_type"`
	Reasoning   string      `json:"reasoning"`
}
