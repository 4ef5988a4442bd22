package engine

import "github.com/depapp/rock-paper-scissors/internal/models"

// Fixed lookup tables over the cycle rock > scissors > paper > rock.

var counterMoves = map[models.Symbol]models.Symbol{
	models.Rock:     models.Paper,
	models.Paper:    models.Scissors,
	models.Scissors: models.Rock,
}

var beats = map[models.Symbol]models.Symbol{
	models.Rock:     models.Scissors,
	models.Paper:    models.Rock,
	models.Scissors: models.Paper,
}

// CounterMove returns the symbol that beats s.
func CounterMove(s models.Symbol) models.Symbol {
	return counterMoves[s]
}

// DetermineWinner resolves a round between the player's and the AI's throw.
func DetermineWinner(player, ai models.Symbol) string {
	if player == ai {
		return models.WinnerTie
	}
	if beats[player] == ai {
		return models.WinnerPlayer
	}
	return models.WinnerAI
}
