package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/depapp/rock-paper-scissors/internal/engine"
	"github.com/depapp/rock-paper-scissors/internal/models"
)

// GetPlayerPattern returns the statistical pattern summary for a player
// @Summary Get Player Pattern
// @Tags Players
// @Produce json
// @Param playerId path string true "Player ID"
// @Success 200 {object} models.PatternResponse
// @Router /players/{playerId}/pattern [get]
func (h *Handler) GetPlayerPattern(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerId")
	if playerID == "" {
		h.errorResponse(w, http.StatusBadRequest, "Player ID is required")
		return
	}

	history, err := h.games.GetPlayerHistory(r.Context(), playerID)
	if err != nil {
		h.logger.Errorw("Failed to load player history", "error", err, "playerID", playerID)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	pattern := engine.AnalyzePattern(history)
	h.jsonResponse(w, http.StatusOK, models.PatternResponse{
		PlayerID:    playerID,
		Pattern:     pattern,
		PatternHash: engine.PatternHash(pattern),
	})
}

// GetPlayerStats returns lifetime aggregates for a player
// @Summary Get Player Stats
// @Tags Players
// @Produce json
// @Param playerId path string true "Player ID"
// @Success 200 {object} models.PlayerSummary
// @Failure 500 {object} map[string]string "Internal Error"
// @Router /players/{playerId}/stats [get]
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerId")
	if playerID == "" {
		h.errorResponse(w, http.StatusBadRequest, "Player ID is required")
		return
	}

	summary, err := h.playerStats.GetPlayerSummary(r.Context(), playerID)
	if err != nil {
		h.logger.Errorw("Failed to get player summary", "error", err, "playerID", playerID)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get stats")
		return
	}

	h.jsonResponse(w, http.StatusOK, summary)
}

// GetPlayerAchievements returns the badges a player has unlocked
// @Summary Get Player Achievements
// @Tags Players
// @Produce json
// @Param playerId path string true "Player ID"
// @Success 200 {array} models.PlayerAchievement
// @Router /players/{playerId}/achievements [get]
func (h *Handler) GetPlayerAchievements(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerId")
	if playerID == "" {
		h.errorResponse(w, http.StatusBadRequest, "Player ID is required")
		return
	}

	achievements, err := h.achievements.GetPlayerAchievements(r.Context(), playerID)
	if err != nil {
		h.logger.Errorw("Failed to get achievements", "error", err, "playerID", playerID)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get achievements")
		return
	}

	h.jsonResponse(w, http.StatusOK, achievements)
}
