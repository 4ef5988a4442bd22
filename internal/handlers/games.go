package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/depapp/rock-paper-scissors/internal/logic"
	"github.com/depapp/rock-paper-scissors/internal/models"
)

// CreateGame starts a new game session for a player
// @Summary Create Game
// @Tags Games
// @Accept json
// @Produce json
// @Param body body models.CreateGameRequest true "Player"
// @Success 201 {object} models.CreateGameResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /games [post]
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	var req models.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "player_id is required")
		return
	}
	if req.PlayerName == "" {
		req.PlayerName = req.PlayerID
	}

	game, err := h.games.CreateGame(r.Context(), req.PlayerID, req.PlayerName)
	if err != nil {
		h.logger.Errorw("Failed to create game", "error", err, "playerID", req.PlayerID)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to create game")
		return
	}

	h.jsonResponse(w, http.StatusCreated, models.CreateGameResponse{Game: game})
}

// GetGame returns a game's state and full move history
// @Summary Get Game
// @Tags Games
// @Produce json
// @Param gameId path string true "Game ID"
// @Success 200 {object} models.GameStateResponse
// @Failure 404 {object} map[string]string "Not Found"
// @Router /games/{gameId} [get]
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameId")
	if gameID == "" {
		h.errorResponse(w, http.StatusBadRequest, "Game ID is required")
		return
	}

	game, moves, err := h.games.GetGame(r.Context(), gameID)
	if errors.Is(err, logic.ErrGameNotFound) {
		h.errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}
	if err != nil {
		h.logger.Errorw("Failed to get game", "error", err, "gameID", gameID)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get game")
		return
	}

	h.jsonResponse(w, http.StatusOK, models.GameStateResponse{Game: game, Moves: moves})
}

// PlayMove plays one round against the AI
// @Summary Play Move
// @Description Reveals the player's choice; the AI predicts from the history before the reveal
// @Tags Games
// @Accept json
// @Produce json
// @Param gameId path string true "Game ID"
// @Param body body models.PlayMoveRequest true "Choice"
// @Success 200 {object} models.RoundResult
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /games/{gameId}/moves [post]
func (h *Handler) PlayMove(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameId")
	if gameID == "" {
		h.errorResponse(w, http.StatusBadRequest, "Game ID is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	var req models.PlayMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		// Out-of-domain symbols are rejected here; the engine assumes a
		// validated three-symbol history.
		h.errorResponse(w, http.StatusBadRequest, (&models.ErrInvalidMoveSymbol{Got: req.Choice}).Error())
		return
	}

	result, err := h.games.PlayRound(r.Context(), gameID, models.Symbol(req.Choice), r.Header.Get(rationaleKeyHeader))
	if errors.Is(err, logic.ErrGameNotFound) {
		h.errorResponse(w, http.StatusNotFound, "Game not found")
		return
	}
	if err != nil {
		h.logger.Errorw("Failed to play round", "error", err, "gameID", gameID)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to play round")
		return
	}

	h.jsonResponse(w, http.StatusOK, result)
}
