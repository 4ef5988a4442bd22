package logic

import (
	"context"
	"fmt"

	"github.com/depapp/rock-paper-scissors/internal/models"
)

type achievementsService struct {
	pg PgPool
}

func NewAchievementsService(pg PgPool) AchievementsService {
	return &achievementsService{pg: pg}
}

func (s *achievementsService) GetPlayerAchievements(ctx context.Context, playerID string) ([]models.PlayerAchievement, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT achievement_id, unlocked_at
		FROM achievements
		WHERE player_id = $1
		ORDER BY unlocked_at ASC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}
	defer rows.Close()

	out := make([]models.PlayerAchievement, 0)
	for rows.Next() {
		var a models.PlayerAchievement
		if err := rows.Scan(&a.AchievementID, &a.UnlockedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
