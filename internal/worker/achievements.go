package worker

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Achievement thresholds
var (
	winThresholds = map[int64]string{
		10:   "WIN_10",
		50:   "WIN_50",
		100:  "WIN_100",
		500:  "WIN_500",
		1000: "WIN_1000",
	}
	streakThresholds = map[int64]string{
		3:  "STREAK_3",
		5:  "STREAK_5",
		10: "STREAK_10",
	}
)

// AchievementWorker unlocks badges when a player's win counters cross a
// threshold. A redis set guards against double unlocks; Postgres is the
// durable record.
type AchievementWorker struct {
	pg     *pgxpool.Pool
	redis  *redis.Client
	logger *zap.SugaredLogger
}

func NewAchievementWorker(pg *pgxpool.Pool, rdb *redis.Client, logger *zap.SugaredLogger) *AchievementWorker {
	return &AchievementWorker{pg: pg, redis: rdb, logger: logger}
}

// CheckThresholds evaluates the post-increment counter values for one
// won round. Called from the side-effect path, so failures are logged
// and never propagated.
func (w *AchievementWorker) CheckThresholds(ctx context.Context, playerID string, wins, streak int64) {
	if id, ok := winThresholds[wins]; ok {
		w.unlock(ctx, playerID, id)
	}
	if id, ok := streakThresholds[streak]; ok {
		w.unlock(ctx, playerID, id)
	}
}

func (w *AchievementWorker) unlock(ctx context.Context, playerID, achievementID string) {
	guard := "player:" + playerID + ":achievements"

	if w.redis != nil {
		member, err := w.redis.SIsMember(ctx, guard, achievementID).Result()
		if err == nil && member {
			return
		}
	}

	if w.pg != nil {
		_, err := w.pg.Exec(ctx, `
			INSERT INTO achievements (player_id, achievement_id, unlocked_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (player_id, achievement_id) DO NOTHING
		`, playerID, achievementID, time.Now().UTC())
		if err != nil {
			w.logger.Errorw("Failed to record achievement", "error", err, "playerID", playerID, "achievement", achievementID)
			return
		}
	}

	if w.redis != nil {
		if err := w.redis.SAdd(ctx, guard, achievementID).Err(); err != nil {
			w.logger.Warnw("Failed to update achievement guard set", "error", err, "playerID", playerID)
		}
	}

	w.logger.Infow("Achievement unlocked", "playerID", playerID, "achievement", achievementID)
}
