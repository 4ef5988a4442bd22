package engine

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/depapp/rock-paper-scissors/internal/models"
)

// maxConfidence caps reported confidence; the engine never claims
// certainty about a human opponent.
const maxConfidence = 85

const coldStartConfidence = 35

// Strategy score weights.
const (
	frequencyWeight  = 0.3
	transitionWeight = 0.5
	metaWeight       = 0.4
	winStayWeight    = 0.35
	rotationWeight   = 0.6
	fallbackWeight   = 0.33
)

// metaRandomnessThreshold gates the anti-pattern strategy: it only makes
// sense against players whose frequency distribution is near uniform.
const metaRandomnessThreshold = 70

// candidate is one strategy's proposal.
type candidate struct {
	choice models.Symbol
	score  float64
	typ    models.PatternType
}

// RationaleRequest carries the pattern context handed to the external
// rationale generator. The generated text never feeds back into scoring.
type RationaleRequest struct {
	Prediction      models.Symbol
	PatternType     models.PatternType
	LastMoves       []models.Symbol
	Frequencies     map[models.Symbol]int
	RandomnessScore float64
}

// RationaleGenerator phrases a short in-character explanation for a
// prediction. Implementations are best-effort; the predictor falls back
// to canned templates on any error.
type RationaleGenerator interface {
	Generate(ctx context.Context, apiKey string, req RationaleRequest) (string, error)
}

const coldStartRationale = "Most players open with rock. Until I have seen a couple of throws, I am betting on the classic opener."

var fallbackRationales = map[models.PatternType]string{
	models.PatternFrequency:     "You keep reaching for the same throw. Habits are hard to hide.",
	models.PatternSequential:    "Your last throws form a sequence I have seen before. I know what comes next.",
	models.PatternMeta:          "You are mixing it up well, so I am betting on the throw you have been avoiding.",
	models.PatternPsychological: "After repeating a throw, almost everyone switches. I am playing the switch.",
}

const defaultRationale = "I have studied your throws and I like my chances on this one."

// PredictorConfig configures a Predictor. All fields are optional.
type PredictorConfig struct {
	// Rand is the randomness source for the win-stay/lose-shift draw.
	// Inject a seeded source in tests for reproducible draws.
	Rand *rand.Rand
	// Rationale is the external text generator; nil disables the call and
	// every prediction uses the canned templates.
	Rationale RationaleGenerator
	// RationaleTimeout bounds the single generation attempt.
	RationaleTimeout time.Duration
	Logger           *zap.Logger
}

// Predictor turns a PlayerPattern into an AIAnalysis by scoring five
// independent heuristic strategies and keeping the best candidate.
type Predictor struct {
	mu      sync.Mutex
	rng     *rand.Rand
	gen     RationaleGenerator
	timeout time.Duration
	logger  *zap.SugaredLogger
}

func NewPredictor(cfg PredictorConfig) *Predictor {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	timeout := cfg.RationaleTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Predictor{
		rng:     rng,
		gen:     cfg.Rationale,
		timeout: timeout,
		logger:  logger.Sugar(),
	}
}

// PredictNextMove produces a prediction for the player's next throw.
// It never returns an error: rationale generation is best-effort and a
// missing or rejected apiKey only degrades the reasoning text.
func (p *Predictor) PredictNextMove(ctx context.Context, pattern models.PlayerPattern, apiKey string) models.AIAnalysis {
	if pattern.TotalMoves < 2 {
		// Documented first-move bias: humans open with rock.
		return models.AIAnalysis{
			Prediction:  models.Rock,
			Confidence:  coldStartConfidence,
			PatternType: models.PatternPsychological,
			Reasoning:   coldStartRationale,
		}
	}

	candidates := p.collectCandidates(pattern)

	// Unreachable once totalMoves >= 2 (the frequency strategy always
	// fires), but kept as a safe default.
	best := candidate{choice: models.Rock, score: fallbackWeight, typ: models.PatternFrequency}
	if len(candidates) > 0 {
		best = candidates[0]
		for _, c := range candidates[1:] {
			// Strict improvement only: on ties the earlier strategy wins.
			if c.score > best.score {
				best = c
			}
		}
	}

	confidence := int(math.Round(best.score * 100))
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	analysis := models.AIAnalysis{
		Prediction:  best.choice,
		Confidence:  confidence,
		PatternType: best.typ,
	}
	analysis.Reasoning = p.rationale(ctx, pattern, analysis, apiKey)
	return analysis
}

// collectCandidates runs every applicable strategy, in declaration
// order, with no early exit.
func (p *Predictor) collectCandidates(pattern models.PlayerPattern) []candidate {
	var out []candidate

	// 1. Frequency: bet on the player's most common throw.
	if c, ok := mostFrequent(pattern.Frequencies); ok {
		out = append(out, candidate{choice: c, score: frequencyWeight, typ: models.PatternFrequency})
	}

	// 2. Transition: condition on the most recent throw.
	if len(pattern.LastMoves) > 0 {
		last := pattern.LastMoves[len(pattern.LastMoves)-1]
		if c, prob, ok := bestTransition(pattern.Transitions[last]); ok {
			out = append(out, candidate{choice: c, score: prob * transitionWeight, typ: models.PatternSequential})
		}
	}

	// 3. Meta: a near-random player is likeliest to dodge their own
	// favourite, so bet on the throw they use least.
	if pattern.RandomnessScore > metaRandomnessThreshold {
		if c, ok := leastFrequent(pattern.Frequencies); ok {
			out = append(out, candidate{choice: c, score: metaWeight, typ: models.PatternMeta})
		}
	}

	// 4. Win-stay/lose-shift: after a repeat, players switch. The pick
	// between the two remaining symbols is a genuine random draw; a fixed
	// tie-break here would be exploitable.
	if n := len(pattern.LastMoves); n >= 2 && pattern.LastMoves[n-1] == pattern.LastMoves[n-2] {
		out = append(out, candidate{
			choice: p.randomOther(pattern.LastMoves[n-1]),
			score:  winStayWeight,
			typ:    models.PatternPsychological,
		})
	}

	// 5. Rotation detection over the last three throws. Only these two
	// directions are recognized.
	if n := len(pattern.LastMoves); n >= 3 {
		a, b, c := pattern.LastMoves[n-3], pattern.LastMoves[n-2], pattern.LastMoves[n-1]
		switch {
		case a == models.Rock && b == models.Paper && c == models.Scissors:
			out = append(out, candidate{choice: models.Rock, score: rotationWeight, typ: models.PatternSequential})
		case a == models.Scissors && b == models.Rock && c == models.Paper:
			out = append(out, candidate{choice: models.Scissors, score: rotationWeight, typ: models.PatternSequential})
		}
	}

	return out
}

// randomOther draws uniformly from the two symbols other than s.
func (p *Predictor) randomOther(s models.Symbol) models.Symbol {
	others := make([]models.Symbol, 0, 2)
	for _, sym := range models.SymbolOrder {
		if sym != s {
			others = append(others, sym)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return others[p.rng.Intn(len(others))]
}

func (p *Predictor) rationale(ctx context.Context, pattern models.PlayerPattern, analysis models.AIAnalysis, apiKey string) string {
	if p.gen != nil {
		genCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		text, err := p.gen.Generate(genCtx, apiKey, RationaleRequest{
			Prediction:      analysis.Prediction,
			PatternType:     analysis.PatternType,
			LastMoves:       pattern.LastMoves,
			Frequencies:     pattern.Frequencies,
			RandomnessScore: pattern.RandomnessScore,
		})
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			p.logger.Warnw("Rationale generation failed, using template", "error", err, "patternType", analysis.PatternType)
		}
	}

	if text, ok := fallbackRationales[analysis.PatternType]; ok {
		return text
	}
	return defaultRationale
}

// mostFrequent scans in canonical order, so on ties the first-seen
// maximum wins.
func mostFrequent(freq map[models.Symbol]int) (models.Symbol, bool) {
	var (
		best  models.Symbol
		max   = -1
		found bool
	)
	for _, s := range models.SymbolOrder {
		if freq[s] > max {
			best, max, found = s, freq[s], true
		}
	}
	return best, found
}

// leastFrequent scans in canonical order, so on ties the first-seen
// minimum wins.
func leastFrequent(freq map[models.Symbol]int) (models.Symbol, bool) {
	var (
		best  models.Symbol
		min   = math.MaxInt
		found bool
	)
	for _, s := range models.SymbolOrder {
		if freq[s] < min {
			best, min, found = s, freq[s], true
		}
	}
	return best, found
}

// bestTransition returns the likeliest successor from one transition row
// together with its conditional probability. ok is false when the row
// has no observations.
func bestTransition(row map[models.Symbol]int) (models.Symbol, float64, bool) {
	total := 0
	for _, s := range models.SymbolOrder {
		total += row[s]
	}
	if total == 0 {
		return "", 0, false
	}
	best := models.SymbolOrder[0]
	max := -1
	for _, s := range models.SymbolOrder {
		if row[s] > max {
			best, max = s, row[s]
		}
	}
	return best, float64(max) / float64(total), true
}
