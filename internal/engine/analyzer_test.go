package engine

import (
	"math"
	"testing"

	"github.com/depapp/rock-paper-scissors/internal/models"
)

// history builds a move log from bare choices; prediction context is
// zeroed unless a test fills it in afterwards.
func history(choices ...models.Symbol) []models.Move {
	moves := make([]models.Move, 0, len(choices))
	for i, c := range choices {
		moves = append(moves, models.Move{Round: i + 1, Choice: c})
	}
	return moves
}

func TestAnalyzePattern_FrequenciesSumToTotal(t *testing.T) {
	tests := []struct {
		name    string
		choices []models.Symbol
	}{
		{"Empty", nil},
		{"Single", []models.Symbol{models.Rock}},
		{"Mixed", []models.Symbol{models.Rock, models.Paper, models.Paper, models.Scissors}},
		{"Long", []models.Symbol{
			models.Rock, models.Rock, models.Paper, models.Scissors, models.Paper,
			models.Rock, models.Scissors, models.Scissors, models.Paper, models.Rock,
			models.Paper, models.Rock,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := AnalyzePattern(history(tt.choices...))

			sum := 0
			for _, s := range models.SymbolOrder {
				sum += p.Frequencies[s]
			}
			if sum != p.TotalMoves {
				t.Errorf("sum(frequencies) = %d, want totalMoves %d", sum, p.TotalMoves)
			}
			if p.TotalMoves != len(tt.choices) {
				t.Errorf("TotalMoves = %d, want %d", p.TotalMoves, len(tt.choices))
			}
		})
	}
}

func TestAnalyzePattern_EmptyHistory(t *testing.T) {
	p := AnalyzePattern(nil)

	if p.RandomnessScore != 100 {
		t.Errorf("RandomnessScore = %v, want 100 for empty history", p.RandomnessScore)
	}
	if p.WinRate != 0 {
		t.Errorf("WinRate = %v, want 0", p.WinRate)
	}
	if len(p.LastMoves) != 0 {
		t.Errorf("LastMoves = %v, want empty", p.LastMoves)
	}
}

func TestAnalyzePattern_AllIdentical(t *testing.T) {
	p := AnalyzePattern(history(models.Paper, models.Paper, models.Paper, models.Paper))

	if p.RandomnessScore != 0 {
		t.Errorf("RandomnessScore = %v, want 0 for single-point distribution", p.RandomnessScore)
	}
	if p.Streaks[models.Paper] != 4 {
		t.Errorf("Streaks[paper] = %d, want 4", p.Streaks[models.Paper])
	}
	if p.Transitions[models.Paper][models.Paper] != 3 {
		t.Errorf("Transitions[paper][paper] = %d, want 3", p.Transitions[models.Paper][models.Paper])
	}
}

func TestAnalyzePattern_UniformDistribution(t *testing.T) {
	p := AnalyzePattern(history(models.Rock, models.Paper, models.Scissors))

	if math.Abs(p.RandomnessScore-100) > 1e-9 {
		t.Errorf("RandomnessScore = %v, want 100 for uniform distribution", p.RandomnessScore)
	}
}

func TestAnalyzePattern_Transitions(t *testing.T) {
	p := AnalyzePattern(history(models.Rock, models.Paper, models.Rock, models.Paper, models.Scissors))

	if got := p.Transitions[models.Rock][models.Paper]; got != 2 {
		t.Errorf("Transitions[rock][paper] = %d, want 2", got)
	}
	if got := p.Transitions[models.Paper][models.Rock]; got != 1 {
		t.Errorf("Transitions[paper][rock] = %d, want 1", got)
	}
	if got := p.Transitions[models.Paper][models.Scissors]; got != 1 {
		t.Errorf("Transitions[paper][scissors] = %d, want 1", got)
	}
	if got := p.Transitions[models.Scissors][models.Rock]; got != 0 {
		t.Errorf("Transitions[scissors][rock] = %d, want 0", got)
	}
}

func TestAnalyzePattern_Streaks(t *testing.T) {
	p := AnalyzePattern(history(
		models.Rock, models.Rock, models.Paper,
		models.Rock, models.Rock, models.Rock,
		models.Scissors,
	))

	if p.Streaks[models.Rock] != 3 {
		t.Errorf("Streaks[rock] = %d, want 3", p.Streaks[models.Rock])
	}
	if p.Streaks[models.Paper] != 1 {
		t.Errorf("Streaks[paper] = %d, want 1", p.Streaks[models.Paper])
	}
	if p.Streaks[models.Scissors] != 1 {
		t.Errorf("Streaks[scissors] = %d, want 1", p.Streaks[models.Scissors])
	}
}

func TestAnalyzePattern_RecencyWindow(t *testing.T) {
	choices := make([]models.Symbol, 0, 15)
	for i := 0; i < 14; i++ {
		choices = append(choices, models.Rock)
	}
	choices = append(choices, models.Scissors)

	p := AnalyzePattern(history(choices...))

	if len(p.LastMoves) != models.RecencyWindow {
		t.Fatalf("len(LastMoves) = %d, want %d", len(p.LastMoves), models.RecencyWindow)
	}
	// Oldest first: the tail must end with the newest choice.
	if p.LastMoves[len(p.LastMoves)-1] != models.Scissors {
		t.Errorf("LastMoves tail = %v, want scissors last", p.LastMoves)
	}
}

func TestAnalyzePattern_WinRateIsPredictionMissRate(t *testing.T) {
	moves := history(models.Rock, models.Paper, models.Scissors, models.Rock)
	moves[0].Correct = true
	moves[1].Correct = false
	moves[2].Correct = false
	moves[3].Correct = true

	p := AnalyzePattern(moves)

	if p.WinRate != 0.5 {
		t.Errorf("WinRate = %v, want 0.5 (2 misses out of 4)", p.WinRate)
	}
}

func TestPatternHash_Deterministic(t *testing.T) {
	a := AnalyzePattern(history(models.Rock, models.Paper, models.Scissors, models.Rock, models.Paper))
	b := AnalyzePattern(history(models.Rock, models.Paper, models.Scissors, models.Rock, models.Paper))

	if PatternHash(a) != PatternHash(b) {
		t.Error("equal patterns must produce equal hashes")
	}
	if PatternHash(a) == "" {
		t.Error("hash must not be empty")
	}
}

func TestPatternHash_TailSensitivity(t *testing.T) {
	a := AnalyzePattern(history(models.Rock, models.Rock, models.Rock, models.Rock, models.Rock))
	b := AnalyzePattern(history(models.Rock, models.Rock, models.Rock, models.Rock, models.Paper))

	if PatternHash(a) == PatternHash(b) {
		t.Error("patterns differing inside the tail window must hash differently")
	}
}

func TestPatternHash_CollisionOutsideWindow(t *testing.T) {
	// Same tail-5 and same total: differences before the window are
	// intentionally invisible to the hash.
	a := AnalyzePattern(history(
		models.Rock, models.Rock,
		models.Paper, models.Scissors, models.Rock, models.Paper, models.Scissors,
	))
	b := AnalyzePattern(history(
		models.Scissors, models.Scissors,
		models.Paper, models.Scissors, models.Rock, models.Paper, models.Scissors,
	))

	if PatternHash(a) != PatternHash(b) {
		t.Error("histories sharing tail-5 and total must collide")
	}
}
