package handlers

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/depapp/rock-paper-scissors/internal/models"
)

// MockGameService
type MockGameService struct {
	CreateGameFunc       func(ctx context.Context, playerID, playerName string) (*models.Game, error)
	GetGameFunc          func(ctx context.Context, gameID string) (*models.Game, []models.Move, error)
	PlayRoundFunc        func(ctx context.Context, gameID string, choice models.Symbol, rationaleKey string) (*models.RoundResult, error)
	GetPlayerHistoryFunc func(ctx context.Context, playerID string) ([]models.Move, error)
}

func (m *MockGameService) CreateGame(ctx context.Context, playerID, playerName string) (*models.Game, error) {
	if m.CreateGameFunc != nil {
		return m.CreateGameFunc(ctx, playerID, playerName)
	}
	return &models.Game{ID: "mock-game", PlayerID: playerID, PlayerName: playerName, Status: models.GameActive}, nil
}

func (m *MockGameService) GetGame(ctx context.Context, gameID string) (*models.Game, []models.Move, error) {
	if m.GetGameFunc != nil {
		return m.GetGameFunc(ctx, gameID)
	}
	return &models.Game{ID: gameID}, nil, nil
}

func (m *MockGameService) PlayRound(ctx context.Context, gameID string, choice models.Symbol, rationaleKey string) (*models.RoundResult, error) {
	if m.PlayRoundFunc != nil {
		return m.PlayRoundFunc(ctx, gameID, choice, rationaleKey)
	}
	return &models.RoundResult{GameID: gameID, PlayerChoice: choice}, nil
}

func (m *MockGameService) GetPlayerHistory(ctx context.Context, playerID string) ([]models.Move, error) {
	if m.GetPlayerHistoryFunc != nil {
		return m.GetPlayerHistoryFunc(ctx, playerID)
	}
	return nil, nil
}

// MockPlayerStatsService
type MockPlayerStatsService struct {
	GetPlayerSummaryFunc func(ctx context.Context, playerID string) (*models.PlayerSummary, error)
}

func (m *MockPlayerStatsService) GetPlayerSummary(ctx context.Context, playerID string) (*models.PlayerSummary, error) {
	if m.GetPlayerSummaryFunc != nil {
		return m.GetPlayerSummaryFunc(ctx, playerID)
	}
	return &models.PlayerSummary{PlayerID: playerID}, nil
}

// MockAchievementsService
type MockAchievementsService struct {
	GetPlayerAchievementsFunc func(ctx context.Context, playerID string) ([]models.PlayerAchievement, error)
}

func (m *MockAchievementsService) GetPlayerAchievements(ctx context.Context, playerID string) ([]models.PlayerAchievement, error) {
	if m.GetPlayerAchievementsFunc != nil {
		return m.GetPlayerAchievementsFunc(ctx, playerID)
	}
	return nil, nil
}

// MockCH captures queries for verification
type MockCH struct {
	driver.Conn
	CapturedQuery string
	CapturedArgs  []interface{}
}

func (m *MockCH) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	m.CapturedQuery = query
	m.CapturedArgs = args
	return &EmptyRows{}, nil
}

func (m *MockCH) QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row {
	return &EmptyRow{}
}

type EmptyRows struct {
	driver.Rows
}

func (m *EmptyRows) Next() bool   { return false }
func (m *EmptyRows) Close() error { return nil }

type EmptyRow struct{}

func (m *EmptyRow) Scan(dest ...interface{}) error    { return nil }
func (m *EmptyRow) ScanStruct(dest interface{}) error { return nil }
func (m *EmptyRow) Err() error                        { return nil }
