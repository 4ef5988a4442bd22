package logic

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"golang.org/x/sync/errgroup"

	"github.com/depapp/rock-paper-scissors/internal/models"
)

type playerStatsService struct {
	ch driver.Conn
}

func NewPlayerStatsService(ch driver.Conn) PlayerStatsService {
	return &playerStatsService{ch: ch}
}

// GetPlayerSummary fetches the lifetime record and symbol usage for a
// player from the move-event store.
func (s *playerStatsService) GetPlayerSummary(ctx context.Context, playerID string) (*models.PlayerSummary, error) {
	summary := &models.PlayerSummary{
		PlayerID:    playerID,
		SymbolUsage: make(map[models.Symbol]uint64, len(models.SymbolOrder)),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.fillTotals(ctx, playerID, summary); err != nil {
			return fmt.Errorf("totals: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := s.fillSymbolUsage(ctx, playerID, summary); err != nil {
			return fmt.Errorf("symbol usage: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if summary.Rounds > 0 {
		summary.AIAccuracy = float64(summary.Predicted) / float64(summary.Rounds) * 100.0
	}
	return summary, nil
}

func (s *playerStatsService) fillTotals(ctx context.Context, playerID string, summary *models.PlayerSummary) error {
	return s.ch.QueryRow(ctx, `
		SELECT
			any(player_name),
			count() as rounds,
			countIf(winner = 'player') as wins,
			countIf(winner = 'ai') as losses,
			countIf(winner = 'tie') as ties,
			countIf(prediction_correct) as predicted,
			max(timestamp) as last_active
		FROM rps_stats.move_events
		WHERE player_id = ?
	`, playerID).Scan(&summary.PlayerName, &summary.Rounds, &summary.Wins,
		&summary.Losses, &summary.Ties, &summary.Predicted, &summary.LastActive)
}

func (s *playerStatsService) fillSymbolUsage(ctx context.Context, playerID string, summary *models.PlayerSummary) error {
	rows, err := s.ch.Query(ctx, `
		SELECT choice, count() as uses
		FROM rps_stats.move_events
		WHERE player_id = ?
		GROUP BY choice
	`, playerID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var choice string
		var uses uint64
		if err := rows.Scan(&choice, &uses); err != nil {
			return err
		}
		summary.SymbolUsage[models.Symbol(choice)] = uses
	}
	return rows.Err()
}
