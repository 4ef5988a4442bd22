package logic

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/depapp/rock-paper-scissors/internal/models"
)

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Cache defines the slice of the Redis client used for analysis caching
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// EventQueue accepts move events for async analytics processing
type EventQueue interface {
	Enqueue(event *models.MoveEvent) bool
}

// GameService owns the game session lifecycle and round processing
type GameService interface {
	CreateGame(ctx context.Context, playerID, playerName string) (*models.Game, error)
	GetGame(ctx context.Context, gameID string) (*models.Game, []models.Move, error)
	PlayRound(ctx context.Context, gameID string, choice models.Symbol, rationaleKey string) (*models.RoundResult, error)
	GetPlayerHistory(ctx context.Context, playerID string) ([]models.Move, error)
}

// PlayerStatsService aggregates a player's lifetime record
type PlayerStatsService interface {
	GetPlayerSummary(ctx context.Context, playerID string) (*models.PlayerSummary, error)
}

// AchievementsService lists unlocked badges
type AchievementsService interface {
	GetPlayerAchievements(ctx context.Context, playerID string) ([]models.PlayerAchievement, error)
}
