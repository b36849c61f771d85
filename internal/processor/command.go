// FILE: internal/processor/command.go
package processor

import (
	"fmt"

	"chesscore/internal/core"
)

// CommandType names a processor operation
type CommandType int

const (
	CmdCreateGame CommandType = iota
	CmdGetGame
	CmdDeleteGame
	CmdMakeMove
	CmdUndoMove
	CmdGetBoard
	CmdLegalMoves
)

var commandNames = [...]string{
	CmdCreateGame: "create-game",
	CmdGetGame:    "get-game",
	CmdDeleteGame: "delete-game",
	CmdMakeMove:   "make-move",
	CmdUndoMove:   "undo-move",
	CmdGetBoard:   "get-board",
	CmdLegalMoves: "legal-moves",
}

func (t CommandType) String() string {
	if t >= 0 && int(t) < len(commandNames) {
		return commandNames[t]
	}
	return fmt.Sprintf("command(%d)", int(t))
}

// Command is one request to the processor. Args carries the operation's
// payload: core.CreateGameRequest, core.MoveRequest, core.UndoRequest, or the
// square name for CmdLegalMoves.
type Command struct {
	Type   CommandType
	GameID string
	Args   any
}

// ProcessorResponse is the transport-neutral result of a command
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func onGame(t CommandType, gameID string, args any) Command {
	return Command{Type: t, GameID: gameID, Args: args}
}

func NewCreateGameCommand(req core.CreateGameRequest) Command {
	return Command{Type: CmdCreateGame, Args: req}
}

func NewGetGameCommand(gameID string) Command    { return onGame(CmdGetGame, gameID, nil) }
func NewDeleteGameCommand(gameID string) Command { return onGame(CmdDeleteGame, gameID, nil) }
func NewGetBoardCommand(gameID string) Command   { return onGame(CmdGetBoard, gameID, nil) }

func NewMakeMoveCommand(gameID string, req core.MoveRequest) Command {
	return onGame(CmdMakeMove, gameID, req)
}

func NewUndoMoveCommand(gameID string, req core.UndoRequest) Command {
	return onGame(CmdUndoMove, gameID, req)
}

// NewLegalMovesCommand asks for the destinations of the piece on square from
func NewLegalMovesCommand(gameID, from string) Command {
	return onGame(CmdLegalMoves, gameID, from)
}
