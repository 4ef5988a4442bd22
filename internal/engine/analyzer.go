// Package engine implements the pattern-analysis and prediction core:
// it derives a statistical summary from a player's move history and runs
// a set of heuristic strategies against it to predict the next throw.
package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/depapp/rock-paper-scissors/internal/models"
)

// patternHashWindow is how many trailing choices feed the cache key.
const patternHashWindow = 5

// AnalyzePattern derives a PlayerPattern from an ordered move history.
// It is a pure function of its input; any length history is accepted,
// including empty.
func AnalyzePattern(history []models.Move) models.PlayerPattern {
	p := models.PlayerPattern{
		Frequencies: make(map[models.Symbol]int, len(models.SymbolOrder)),
		Transitions: make(map[models.Symbol]map[models.Symbol]int, len(models.SymbolOrder)),
		Streaks:     make(map[models.Symbol]int, len(models.SymbolOrder)),
		TotalMoves:  len(history),
	}
	for _, s := range models.SymbolOrder {
		p.Frequencies[s] = 0
		p.Streaks[s] = 0
		row := make(map[models.Symbol]int, len(models.SymbolOrder))
		for _, t := range models.SymbolOrder {
			row[t] = 0
		}
		p.Transitions[s] = row
	}

	misses := 0
	for _, m := range history {
		p.Frequencies[m.Choice]++
		if !m.Correct {
			misses++
		}
	}

	for i := 0; i+1 < len(history); i++ {
		p.Transitions[history[i].Choice][history[i+1].Choice]++
	}

	// Longest run of identical consecutive choices, per symbol.
	run := 0
	for i, m := range history {
		if i > 0 && m.Choice == history[i-1].Choice {
			run++
		} else {
			run = 1
		}
		if run > p.Streaks[m.Choice] {
			p.Streaks[m.Choice] = run
		}
	}

	start := len(history) - models.RecencyWindow
	if start < 0 {
		start = 0
	}
	p.LastMoves = make([]models.Symbol, 0, len(history)-start)
	for _, m := range history[start:] {
		p.LastMoves = append(p.LastMoves, m.Choice)
	}

	total := len(history)
	denom := total
	if denom < 1 {
		denom = 1
	}
	p.WinRate = float64(misses) / float64(denom)

	p.RandomnessScore = randomnessScore(p.Frequencies, total)
	return p
}

// randomnessScore is the Shannon entropy of the frequency distribution,
// normalized against the maximum entropy for three symbols and scaled to
// 0..100. An empty history is defined as maximally unpredictable.
func randomnessScore(freq map[models.Symbol]int, total int) float64 {
	if total == 0 {
		return 100
	}
	var entropy float64
	for _, s := range models.SymbolOrder {
		n := freq[s]
		if n == 0 {
			continue // no log(0) term
		}
		pr := float64(n) / float64(total)
		entropy -= pr * math.Log2(pr)
	}
	score := entropy / math.Log2(float64(len(models.SymbolOrder))) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// PatternHash returns a deterministic fingerprint of the last
// patternHashWindow entries of the recency window plus the total move
// count. It is a cache key, not a cryptographic identity: histories that
// differ only outside that window intentionally collide.
func PatternHash(p models.PlayerPattern) string {
	tail := p.LastMoves
	if len(tail) > patternHashWindow {
		tail = tail[len(tail)-patternHashWindow:]
	}
	parts := make([]string, 0, len(tail)+1)
	for _, s := range tail {
		parts = append(parts, string(s))
	}
	parts = append(parts, strconv.Itoa(p.TotalMoves))

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:16]
}
