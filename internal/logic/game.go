package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/depapp/rock-paper-scissors/internal/engine"
	"github.com/depapp/rock-paper-scissors/internal/models"
)

var ErrGameNotFound = errors.New("game not found")

var (
	roundsPlayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rps_rounds_played_total",
		Help: "Total number of rounds played, by winner",
	}, []string{"winner"})

	predictionCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rps_prediction_cache_hits_total",
		Help: "Predictions served from the pattern-hash cache",
	})

	predictionsByType = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rps_predictions_total",
		Help: "Predictions computed, by winning pattern type",
	}, []string{"pattern_type"})
)

type gameService struct {
	pg        PgPool
	cache     Cache
	queue     EventQueue
	predictor *engine.Predictor
	cacheTTL  time.Duration
	logger    *zap.SugaredLogger
}

// GameServiceConfig wires the game service dependencies. Cache and
// Queue may be nil; both are optimizations, not correctness
// dependencies.
type GameServiceConfig struct {
	Postgres  PgPool
	Cache     Cache
	Queue     EventQueue
	Predictor *engine.Predictor
	CacheTTL  time.Duration
	Logger    *zap.Logger
}

func NewGameService(cfg GameServiceConfig) GameService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameService{
		pg:        cfg.Postgres,
		cache:     cfg.Cache,
		queue:     cfg.Queue,
		predictor: cfg.Predictor,
		cacheTTL:  cfg.CacheTTL,
		logger:    logger.Sugar(),
	}
}

func (s *gameService) CreateGame(ctx context.Context, playerID, playerName string) (*models.Game, error) {
	now := time.Now().UTC()
	game := &models.Game{
		ID:         uuid.New().String(),
		PlayerID:   playerID,
		PlayerName: playerName,
		Status:     models.GameActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := s.pg.Exec(ctx, `
		INSERT INTO games (id, player_id, player_name, player_score, ai_score, ties, status, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, 0, $4, $5, $5)
	`, game.ID, game.PlayerID, game.PlayerName, game.Status, now)
	if err != nil {
		return nil, fmt.Errorf("insert game: %w", err)
	}
	return game, nil
}

func (s *gameService) GetGame(ctx context.Context, gameID string) (*models.Game, []models.Move, error) {
	game, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	moves, err := s.loadMoves(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	return game, moves, nil
}

// PlayRound processes one turn: it predicts from the history as it was
// BEFORE the revealed choice, counters, scores the round, and appends
// the move to the game's log.
func (s *gameService) PlayRound(ctx context.Context, gameID string, choice models.Symbol, rationaleKey string) (*models.RoundResult, error) {
	game, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	moves, err := s.loadMoves(ctx, gameID)
	if err != nil {
		return nil, err
	}

	pattern := engine.AnalyzePattern(moves)
	analysis, cacheHit := s.predict(ctx, pattern, rationaleKey)

	aiChoice := engine.CounterMove(analysis.Prediction)
	winner := engine.DetermineWinner(choice, aiChoice)
	correct := analysis.Prediction == choice
	now := time.Now().UTC()

	move := models.Move{
		GameID:     gameID,
		Round:      len(moves) + 1,
		PlayerID:   game.PlayerID,
		Choice:     choice,
		Timestamp:  now,
		Prediction: analysis.Prediction,
		AIChoice:   aiChoice,
		Confidence: analysis.Confidence,
		Correct:    correct,
		Winner:     winner,
	}

	_, err = s.pg.Exec(ctx, `
		INSERT INTO moves (game_id, round, player_id, choice, prediction, ai_choice, confidence, pattern_type, prediction_correct, winner, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, move.GameID, move.Round, move.PlayerID, move.Choice, move.Prediction, move.AIChoice,
		move.Confidence, analysis.PatternType, move.Correct, move.Winner, now)
	if err != nil {
		return nil, fmt.Errorf("insert move: %w", err)
	}

	switch winner {
	case models.WinnerPlayer:
		game.PlayerScore++
	case models.WinnerAI:
		game.AIScore++
	default:
		game.Ties++
	}
	_, err = s.pg.Exec(ctx, `
		UPDATE games SET player_score = $2, ai_score = $3, ties = $4, updated_at = $5 WHERE id = $1
	`, gameID, game.PlayerScore, game.AIScore, game.Ties, now)
	if err != nil {
		return nil, fmt.Errorf("update game: %w", err)
	}

	roundsPlayed.WithLabelValues(winner).Inc()

	if s.queue != nil {
		ok := s.queue.Enqueue(&models.MoveEvent{
			Timestamp:   now,
			GameID:      gameID,
			PlayerID:    game.PlayerID,
			PlayerName:  game.PlayerName,
			Round:       move.Round,
			Choice:      string(choice),
			Prediction:  string(analysis.Prediction),
			AIChoice:    string(aiChoice),
			Confidence:  analysis.Confidence,
			PatternType: string(analysis.PatternType),
			Correct:     correct,
			Winner:      winner,
		})
		if !ok {
			s.logger.Warnw("Move event dropped, queue unavailable", "gameID", gameID, "round", move.Round)
		}
	}

	return &models.RoundResult{
		GameID:       gameID,
		Round:        move.Round,
		PlayerChoice: choice,
		AIChoice:     aiChoice,
		Winner:       winner,
		Analysis:     analysis,
		PlayerScore:  game.PlayerScore,
		AIScore:      game.AIScore,
		Ties:         game.Ties,
		CacheHit:     cacheHit,
	}, nil
}

// predict serves the analysis from the pattern-hash cache when possible.
// Cache failures are logged and ignored: the cache is a performance
// optimization, never a correctness dependency.
func (s *gameService) predict(ctx context.Context, pattern models.PlayerPattern, rationaleKey string) (models.AIAnalysis, bool) {
	var key string
	if s.cache != nil {
		key = "pattern:" + engine.PatternHash(pattern)
		if raw, err := s.cache.Get(ctx, key).Result(); err == nil {
			var cached models.AIAnalysis
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				predictionCacheHits.Inc()
				return cached, true
			}
			s.logger.Warnw("Discarding malformed cached analysis", "key", key, "error", err)
		}
	}

	analysis := s.predictor.PredictNextMove(ctx, pattern, rationaleKey)
	predictionsByType.WithLabelValues(string(analysis.PatternType)).Inc()

	if s.cache != nil {
		if data, err := json.Marshal(analysis); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warnw("Failed to cache analysis", "key", key, "error", err)
			}
		}
	}
	return analysis, false
}

func (s *gameService) GetPlayerHistory(ctx context.Context, playerID string) ([]models.Move, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT game_id, round, player_id, choice, prediction, ai_choice, confidence, prediction_correct, winner, created_at
		FROM moves
		WHERE player_id = $1
		ORDER BY created_at ASC, round ASC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query player history: %w", err)
	}
	defer rows.Close()

	return scanMoves(rows)
}

func (s *gameService) loadGame(ctx context.Context, gameID string) (*models.Game, error) {
	game := &models.Game{}
	err := s.pg.QueryRow(ctx, `
		SELECT id, player_id, player_name, player_score, ai_score, ties, status, created_at, updated_at
		FROM games WHERE id = $1
	`, gameID).Scan(&game.ID, &game.PlayerID, &game.PlayerName, &game.PlayerScore,
		&game.AIScore, &game.Ties, &game.Status, &game.CreatedAt, &game.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query game: %w", err)
	}
	return game, nil
}

func (s *gameService) loadMoves(ctx context.Context, gameID string) ([]models.Move, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT game_id, round, player_id, choice, prediction, ai_choice, confidence, prediction_correct, winner, created_at
		FROM moves
		WHERE game_id = $1
		ORDER BY round ASC
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()

	return scanMoves(rows)
}

func scanMoves(rows pgx.Rows) ([]models.Move, error) {
	moves := make([]models.Move, 0)
	for rows.Next() {
		var m models.Move
		if err := rows.Scan(&m.GameID, &m.Round, &m.PlayerID, &m.Choice, &m.Prediction,
			&m.AIChoice, &m.Confidence, &m.Correct, &m.Winner, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}
