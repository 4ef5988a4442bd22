package handlers

import (
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/depapp/rock-paper-scissors/internal/logic"
)

// MaxBodySize limits the size of request bodies to 64KB
const MaxBodySize = 65536

// IngestQueue defines the interface for the move-event worker pool
type IngestQueue interface {
	QueueDepth() int
}

type Config struct {
	WorkerPool IngestQueue
	Postgres   *pgxpool.Pool
	ClickHouse driver.Conn
	Redis      *redis.Client
	Logger     *zap.Logger
	// Services
	Games        logic.GameService
	PlayerStats  logic.PlayerStatsService
	Achievements logic.AchievementsService
}

type Handler struct {
	pool         IngestQueue
	pg           *pgxpool.Pool
	ch           driver.Conn
	redis        *redis.Client
	logger       *zap.SugaredLogger
	validator    *validator.Validate
	games        logic.GameService
	playerStats  logic.PlayerStatsService
	achievements logic.AchievementsService
}

func New(cfg Config) *Handler {
	return &Handler{
		pool:         cfg.WorkerPool,
		pg:           cfg.Postgres,
		ch:           cfg.ClickHouse,
		redis:        cfg.Redis,
		logger:       cfg.Logger.Sugar(),
		validator:    validator.New(),
		games:        cfg.Games,
		playerStats:  cfg.PlayerStats,
		achievements: cfg.Achievements,
	}
}
