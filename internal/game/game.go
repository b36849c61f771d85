// FILE: internal/game/game.go
package game

import (
	"errors"
	"fmt"

	"chesscore/internal/board"
	"chesscore/internal/core"
	"chesscore/internal/engine"
)

var ErrGameOver = errors.New("game is over")

// MoveRecord is one entry of the move log
type MoveRecord struct {
	From  core.Position `json:"from"`
	To    core.Position `json:"to"`
	Piece string        `json:"piece"`
}

// Options configures move validation for a game
type Options struct {
	AllowSelfCheck bool
}

// snapshot is the position before a move, kept for undo
type snapshot struct {
	board   board.Board
	state   engine.State
	outcome engine.Outcome
}

type Game struct {
	board      board.Board
	state      engine.State
	rules      engine.Rules
	moves      []MoveRecord
	history    []snapshot
	players    map[core.Color]*core.Player
	status     core.State
	outcome    engine.Outcome
	initialFEN string
}

// New starts a game from the standard initial setup, white to move
func New(whitePlayer, blackPlayer *core.Player, opts Options) *Game {
	b := board.NewStandard()
	return newGame(b, engine.NewState(b, core.ColorWhite), whitePlayer, blackPlayer, opts)
}

// FromFEN starts a game from an arbitrary position
func FromFEN(fen string, whitePlayer, blackPlayer *core.Player, opts Options) (*Game, error) {
	b, st, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	g := newGame(b, st, whitePlayer, blackPlayer, opts)

	// A position can be handed over already decided
	side := st.Turn
	if engine.IsCheckmate(&g.board, &g.state, side) {
		g.status = core.WinState(core.OppositeColor(side))
		g.outcome = engine.Outcome{Kind: engine.OutcomeCheckmate, Winner: core.OppositeColor(side), Check: true}
	} else {
		g.outcome.Check = engine.InCheck(&g.board, &g.state, side)
	}
	return g, nil
}

func newGame(b *board.Board, st engine.State, whitePlayer, blackPlayer *core.Player, opts Options) *Game {
	g := &Game{
		board: *b,
		state: st,
		rules: engine.Rules{AllowSelfCheck: opts.AllowSelfCheck},
		players: map[core.Color]*core.Player{
			core.ColorWhite: whitePlayer,
			core.ColorBlack: blackPlayer,
		},
		status: core.StateOngoing,
	}
	g.initialFEN = g.FEN()
	return g
}

// Submit validates and plays one move for the side to move. Nothing changes
// when an error is returned.
func (g *Game) Submit(from, to core.Position) (engine.Outcome, error) {
	if g.status != core.StateOngoing {
		return engine.Outcome{}, fmt.Errorf("%w: %s", ErrGameOver, g.status)
	}

	before := snapshot{board: g.board, state: g.state, outcome: g.outcome}
	ply, outcome, err := g.rules.Execute(&g.board, &g.state, from, to)
	if err != nil {
		return engine.Outcome{}, err
	}

	g.history = append(g.history, before)
	g.moves = append(g.moves, MoveRecord{From: ply.From, To: ply.To, Piece: ply.Piece.Label()})
	g.outcome = outcome
	if outcome.Kind == engine.OutcomeCheckmate {
		g.status = core.WinState(outcome.Winner)
	}

	return outcome, nil
}

// UndoMoves takes back the last count plies and reopens a finished game
func (g *Game) UndoMoves(count int) error {
	if count < 1 {
		return fmt.Errorf("invalid undo count: %d", count)
	}

	availableMoves := len(g.history)
	if availableMoves < count {
		return fmt.Errorf("cannot undo %d moves: only %d moves available", count, availableMoves)
	}

	restore := g.history[availableMoves-count]
	g.board = restore.board
	g.state = restore.state
	g.outcome = restore.outcome
	g.history = g.history[:availableMoves-count]
	g.moves = g.moves[:len(g.moves)-count]
	g.status = core.StateOngoing
	return nil
}

func (g *Game) Turn() core.Color {
	return g.state.Turn
}

// Snapshot returns the board grid for rendering
func (g *Game) Snapshot() [8][8]*core.Piece {
	return g.board.Snapshot()
}

// Board returns a copy of the current board
func (g *Game) Board() *board.Board {
	b := g.board
	return &b
}

// MoveLog returns the moves played so far, oldest first
func (g *Game) MoveLog() []MoveRecord {
	moves := make([]MoveRecord, len(g.moves))
	copy(moves, g.moves)
	return moves
}

func (g *Game) MoveCount() int {
	return len(g.moves)
}

func (g *Game) State() core.State {
	return g.status
}

// LastOutcome is the outcome reported by the most recent accepted move
func (g *Game) LastOutcome() engine.Outcome {
	return g.outcome
}

func (g *Game) EnPassantTarget() *core.Position {
	if g.state.EnPassant == nil {
		return nil
	}
	ep := *g.state.EnPassant
	return &ep
}

// KingPosition returns the indexed square of color's king
func (g *Game) KingPosition(color core.Color) core.Position {
	return g.state.Kings.Of(color)
}

func (g *Game) Castling() engine.Castling {
	return g.state.Castling
}

func (g *Game) InCheck(color core.Color) bool {
	return engine.InCheck(&g.board, &g.state, color)
}

func (g *Game) IsCheckmate(color core.Color) bool {
	return engine.IsCheckmate(&g.board, &g.state, color)
}

// LegalMoves lists where the piece on from may go, regardless of whose turn it is
func (g *Game) LegalMoves(from core.Position) []core.Position {
	if g.rules.AllowSelfCheck {
		var moves []core.Position
		for r := 0; r < 8; r++ {
			for c := 0; c < 8; c++ {
				to := core.Pos(r, c)
				if target, _ := g.board.At(to); target.Kind != core.King && engine.IsLegal(&g.board, &g.state, from, to) {
					moves = append(moves, to)
				}
			}
		}
		return moves
	}
	return engine.LegalMoves(&g.board, &g.state, from)
}

func (g *Game) FEN() string {
	return FormatFEN(&g.board, &g.state)
}

func (g *Game) InitialFEN() string {
	return g.initialFEN
}

func (g *Game) GetPlayer(color core.Color) *core.Player {
	return g.players[color]
}

func (g *Game) UpdatePlayers(whitePlayer, blackPlayer *core.Player) {
	g.players[core.ColorWhite] = whitePlayer
	g.players[core.ColorBlack] = blackPlayer
}
