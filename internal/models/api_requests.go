package models

type CreateGameRequest struct {
	PlayerID   string `json:"player_id" validate:"required,max=64"`
	PlayerName string `json:"player_name" validate:"max=64"`
}

type CreateGameResponse struct {
	Game *Game `json:"game"`
}

type PlayMoveRequest struct {
	Choice string `json:"choice" validate:"required,oneof=rock paper scissors"`
}

type GameStateResponse struct {
	Game  *Game  `json:"game"`
	Moves []Move `json:"moves"`
}

type PatternResponse struct {
	PlayerID    string        `json:"player_id"`
	Pattern     PlayerPattern `json:"pattern"`
	PatternHash string        `json:"pattern_hash"`
}
