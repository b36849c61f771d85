// FILE: internal/processor/processor.go
package processor

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"

	"chesscore/internal/core"
	"chesscore/internal/engine"
	"chesscore/internal/game"
	"chesscore/internal/service"
)

// FEN validation regex
var fenPattern = regexp.MustCompile(`^[rnbqkpRNBQKP1-8/]+ [wb] [KQkq-]+ [a-h1-8-]+ \d+ \d+$`)

// Processor executes commands against the service and shapes responses
type Processor struct {
	svc *service.Service
}

func New(svc *service.Service) *Processor {
	return &Processor{svc: svc}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdUndoMove:
		return p.handleUndoMove(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdLegalMoves:
		return p.handleLegalMoves(cmd)
	default:
		return p.errorResponse(fmt.Sprintf("unknown command %s", cmd.Type), core.ErrInvalidRequest)
	}
}

// isFENSafe check for control characters and FEN pattern match
func (p *Processor) isFENSafe(fen string) bool {
	for _, r := range fen {
		if unicode.IsControl(r) && r != ' ' {
			return false
		}
	}

	return fenPattern.MatchString(fen)
}

// handleCreateGame creates a new game from the standard setup or a FEN
func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	if args.FEN != "" && !p.isFENSafe(args.FEN) {
		return p.errorResponse("invalid FEN format or characters", core.ErrInvalidFEN)
	}

	gameID := p.svc.GenerateGameID()
	if err := p.svc.CreateGame(gameID, args.FEN); err != nil {
		if args.FEN != "" {
			return p.errorResponse(fmt.Sprintf("invalid FEN: %v", err), core.ErrInvalidFEN)
		}
		return p.errorResponse(fmt.Sprintf("failed to create game: %v", err), core.ErrInternalError)
	}

	return p.gameResponse(gameID)
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	return p.gameResponse(cmd.GameID)
}

// handleMakeMove submits a move for the side to move
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	from, err := core.ParseSquare(args.From)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}
	to, err := core.ParseSquare(args.To)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}

	var resp core.MoveResponse
	outcome, err := p.svc.SubmitMoveThen(cmd.GameID, from, to, func(g *game.Game) {
		resp.Game = p.buildGameResponse(cmd.GameID, g)
	})
	if err != nil {
		return p.errorResponse(err.Error(), errorCode(err))
	}
	resp.Outcome = outcome.Kind.String()
	resp.Check = outcome.Check
	if outcome.Kind == engine.OutcomeCheckmate {
		resp.Winner = outcome.Winner.String()
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// handleUndoMove reverts game state
func (p *Processor) handleUndoMove(cmd Command) ProcessorResponse {
	args := core.UndoRequest{Count: 1}
	if cmd.Args != nil {
		if req, ok := cmd.Args.(core.UndoRequest); ok {
			args = req
		}
	}

	var resp core.GameResponse
	if err := p.svc.UndoMovesThen(cmd.GameID, args.Count, func(g *game.Game) {
		resp = p.buildGameResponse(cmd.GameID, g)
	}); err != nil {
		return p.errorResponse(err.Error(), errorCode(err))
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	if err := p.svc.DeleteGame(cmd.GameID); err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
	}
}

// handleGetBoard returns board visualization
func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	var resp core.BoardResponse
	if err := p.svc.Inspect(cmd.GameID, func(g *game.Game) {
		resp.FEN = g.FEN()
		resp.Board = g.Board().ToASCII()
	}); err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

func (p *Processor) handleLegalMoves(cmd Command) ProcessorResponse {
	square, _ := cmd.Args.(string)
	from, err := core.ParseSquare(square)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}

	moves, err := p.svc.LegalMoves(cmd.GameID, from)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	resp := core.LegalMovesResponse{From: from.String(), Moves: []string{}}
	for _, to := range moves {
		resp.Moves = append(resp.Moves, to.String())
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

func (p *Processor) gameResponse(gameID string) ProcessorResponse {
	var resp core.GameResponse
	if err := p.svc.Inspect(gameID, func(g *game.Game) {
		resp = p.buildGameResponse(gameID, g)
	}); err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

// buildGameResponse constructs standard game response
func (p *Processor) buildGameResponse(gameID string, g *game.Game) core.GameResponse {
	turn := g.Turn()
	resp := core.GameResponse{
		GameID: gameID,
		FEN:    g.FEN(),
		Turn:   turn.String(),
		State:  g.State().String(),
		Check:  g.InCheck(turn),
		Board:  g.Snapshot(),
		Moves:  []core.MoveInfo{},
		Players: core.PlayersResponse{
			White: g.GetPlayer(core.ColorWhite),
			Black: g.GetPlayer(core.ColorBlack),
		},
	}

	if ep := g.EnPassantTarget(); ep != nil {
		resp.EnPassant = ep.String()
	}

	for _, m := range g.MoveLog() {
		info := core.MoveInfo{From: m.From.String(), To: m.To.String(), Piece: m.Piece}
		if len(m.Piece) > 0 {
			info.PlayerColor = m.Piece[:1]
		}
		resp.Moves = append(resp.Moves, info)
	}

	if n := len(resp.Moves); n > 0 {
		last := resp.Moves[n-1]
		resp.LastMove = &last
	}

	return resp
}

// errorCode maps service and engine errors to API error codes
func errorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return core.ErrGameNotFound
	case errors.Is(err, engine.ErrNoPieceAtSource):
		return core.ErrNoPiece
	case errors.Is(err, engine.ErrWrongTurn):
		return core.ErrWrongTurn
	case errors.Is(err, engine.ErrIllegalMove):
		return core.ErrInvalidMove
	case errors.Is(err, game.ErrGameOver):
		return core.ErrGameOver
	default:
		return core.ErrInvalidRequest
	}
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}
