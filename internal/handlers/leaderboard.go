package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/depapp/rock-paper-scissors/internal/models"
)

// GetLeaderboard returns ranked players by a supported metric
// @Summary Global Leaderboard
// @Description Get ranked list of players by wins, rounds, win_rate or ai_accuracy
// @Tags Leaderboards
// @Produce json
// @Param stat path string false "Stat to sort by" default(wins)
// @Param period query string false "Period (all, week, month)" default(all)
// @Param limit query int false "Limit" default(25)
// @Param page query int false "Page" default(1)
// @Success 200 {object} map[string]interface{} "Leaderboard Data"
// @Failure 500 {object} map[string]string "Internal Error"
// @Router /leaderboard/{stat} [get]
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stat := chi.URLParam(r, "stat")
	if stat == "" {
		stat = r.URL.Query().Get("stat")
	}
	if stat == "" {
		stat = "wins"
	}

	limit := 25
	page := 1
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "all"
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	offset := (page - 1) * limit

	// Map stat name to ClickHouse expression; unknown stats fall back to
	// wins so the path parameter can never reach the query verbatim.
	orderExpr := "wins"
	switch stat {
	case "wins":
		orderExpr = "wins"
	case "rounds":
		orderExpr = "rounds"
	case "win_rate":
		orderExpr = "wins / nullIf(rounds, 0)"
	case "predicted":
		orderExpr = "predicted"
	case "ai_accuracy":
		orderExpr = "predicted / nullIf(rounds, 0)"
	case "ties":
		orderExpr = "ties"
	default:
		orderExpr = "wins"
	}

	whereExpr := "player_id != ''"
	switch period {
	case "week":
		whereExpr += " AND timestamp >= now() - INTERVAL 7 DAY"
	case "month":
		whereExpr += " AND timestamp >= now() - INTERVAL 30 DAY"
	case "year":
		whereExpr += " AND timestamp >= now() - INTERVAL 365 DAY"
	}

	query := fmt.Sprintf(`
		SELECT
			player_id,
			any(player_name) as player_name,
			countIf(winner = 'player') as wins,
			countIf(winner = 'ai') as losses,
			countIf(winner = 'tie') as ties,
			count() as rounds,
			countIf(prediction_correct) as predicted,
			max(timestamp) as last_active
		FROM rps_stats.move_events
		WHERE %s
		GROUP BY player_id
		HAVING rounds > 0
		ORDER BY %s DESC
		LIMIT ? OFFSET ?
	`, whereExpr, orderExpr)

	rows, err := h.ch.Query(ctx, query, limit, offset)
	if err != nil {
		h.logger.Errorw("Failed to query leaderboard", "stat", stat, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Query failed")
		return
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0)
	rank := offset + 1
	for rows.Next() {
		var entry models.LeaderboardEntry
		var lastActive time.Time
		if err := rows.Scan(
			&entry.PlayerID, &entry.PlayerName, &entry.Wins, &entry.Losses,
			&entry.Ties, &entry.Rounds, &entry.Predicted, &lastActive,
		); err != nil {
			h.logger.Warnw("Failed to scan leaderboard row", "error", err)
			continue
		}

		if entry.Rounds > 0 {
			entry.WinRate = float64(entry.Wins) / float64(entry.Rounds) * 100.0
			entry.AIAccuracy = float64(entry.Predicted) / float64(entry.Rounds) * 100.0
		}
		entry.LastActive = lastActive
		entry.Rank = rank
		entries = append(entries, entry)
		rank++
	}

	var total uint64
	h.ch.QueryRow(ctx, "SELECT uniq(player_id) FROM rps_stats.move_events").Scan(&total)

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"players": entries,
		"total":   total,
		"page":    page,
		"stat":    stat,
		"period":  period,
	})
}
