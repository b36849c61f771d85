// FILE: internal/core/api.go
package core

// Request types

type CreateGameRequest struct {
	FEN string `json:"fen,omitempty" validate:"omitempty,max=100"`
}

type MoveRequest struct {
	From string `json:"from" validate:"required,square"`
	To   string `json:"to" validate:"required,square"`
}

type UndoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=300"`
}

// Response types

type GameResponse struct {
	GameID    string          `json:"gameId"`
	FEN       string          `json:"fen"`
	Turn      string          `json:"turn"`  // "w" or "b"
	State     string          `json:"state"` // "ongoing", "white wins", "black wins"
	Check     bool            `json:"check"`
	EnPassant string          `json:"enPassant,omitempty"`
	Board     [8][8]*Piece    `json:"board"`
	Moves     []MoveInfo      `json:"moves"`
	Players   PlayersResponse `json:"players"`
	LastMove  *MoveInfo       `json:"lastMove,omitempty"`
}

type MoveInfo struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Piece       string `json:"piece"`
	PlayerColor string `json:"playerColor,omitempty"` // "w" or "b"
}

type MoveResponse struct {
	Game    GameResponse `json:"game"`
	Outcome string       `json:"outcome"` // "continue" or "checkmate"
	Winner  string       `json:"winner,omitempty"`
	Check   bool         `json:"check"`
}

type LegalMovesResponse struct {
	From  string   `json:"from"`
	Moves []string `json:"moves"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
