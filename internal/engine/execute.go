package engine

import (
	"errors"
	"fmt"

	"chesscore/internal/board"
	"chesscore/internal/core"
)

var (
	ErrNoPieceAtSource = errors.New("no piece at source square")
	ErrWrongTurn       = errors.New("piece does not belong to the side to move")
	ErrIllegalMove     = errors.New("illegal move")
)

type OutcomeKind int

const (
	OutcomeContinue OutcomeKind = iota
	OutcomeCheckmate
)

func (k OutcomeKind) String() string {
	if k == OutcomeCheckmate {
		return "checkmate"
	}
	return "continue"
}

// Outcome is reported after every accepted move. Winner is only set on
// checkmate; Check tells whether the side now to move is in check.
type Outcome struct {
	Kind   OutcomeKind
	Winner core.Color
	Check  bool
}

// Ply records what a single applied move changed on the board
type Ply struct {
	From       core.Position
	To         core.Position
	Piece      core.Piece
	Captured   core.Piece
	CapturedAt core.Position
	Castle     *Castle
	EnPassant  bool
	Promotion  core.PieceKind
}

// Apply plays from->to on b and advances st: king index, en passant capture
// and target, promotion to queen, castling rook and rights, clocks and turn.
// The move must already have been validated.
func Apply(b *board.Board, st *State, from, to core.Position) Ply {
	piece, _ := b.At(from)
	ply := Ply{From: from, To: to, Piece: piece, CapturedAt: to}

	if piece.Kind == core.King && from.Row == to.Row && abs(to.Col-from.Col) == 2 {
		castle := castleRook(from, to)
		b.Move(castle.RookFrom, castle.RookTo)
		ply.Castle = &castle
	}

	ply.Captured = b.Move(from, to)

	if piece.Kind == core.King {
		st.Kings.Set(piece.Color, to)
	}

	if piece.Kind == core.Pawn && from.Col != to.Col && st.EnPassant != nil && *st.EnPassant == to && ply.Captured.IsZero() {
		victim := core.Pos(from.Row, to.Col)
		ply.Captured, _ = b.At(victim)
		ply.CapturedAt = victim
		ply.EnPassant = true
		b.Clear(victim)
	}

	if piece.Kind == core.Pawn && to.Row == promotionRow(piece.Color) {
		b.Set(to, core.NewPiece(core.Queen, piece.Color))
		ply.Promotion = core.Queen
	}

	if piece.Kind == core.Pawn && abs(to.Row-from.Row) == 2 {
		mid := core.Pos((from.Row+to.Row)/2, from.Col)
		st.EnPassant = &mid
	} else {
		st.EnPassant = nil
	}

	st.Castling = updateCastling(st.Castling, piece, from, ply.CapturedAt, ply.Captured)

	if piece.Kind == core.Pawn || !ply.Captured.IsZero() {
		st.HalfMove = 0
	} else {
		st.HalfMove++
	}
	if piece.Color == core.ColorBlack {
		st.FullMove++
	}
	st.Turn = core.OppositeColor(piece.Color)

	return ply
}

func castleRook(from, to core.Position) Castle {
	if to.Col > from.Col {
		return Castle{Side: Kingside, RookFrom: core.Pos(from.Row, 7), RookTo: core.Pos(from.Row, 5)}
	}
	return Castle{Side: Queenside, RookFrom: core.Pos(from.Row, 0), RookTo: core.Pos(from.Row, 3)}
}

func updateCastling(rights Castling, piece core.Piece, from, capturedAt core.Position, captured core.Piece) Castling {
	if piece.Kind == core.King {
		rights = rights.Without(piece.Color, Kingside).Without(piece.Color, Queenside)
	}
	if piece.Kind == core.Rook {
		rights = dropCornerRight(rights, piece.Color, from)
	}
	if captured.Kind == core.Rook {
		rights = dropCornerRight(rights, captured.Color, capturedAt)
	}
	return rights
}

func dropCornerRight(rights Castling, c core.Color, pos core.Position) Castling {
	switch pos {
	case core.Pos(homeRow(c), 7):
		return rights.Without(c, Kingside)
	case core.Pos(homeRow(c), 0):
		return rights.Without(c, Queenside)
	}
	return rights
}

// Rules holds the policy knobs of move validation
type Rules struct {
	// AllowSelfCheck accepts moves that leave the mover's own king attacked
	AllowSelfCheck bool
}

// Validate checks a submitted move without changing anything
func (r Rules) Validate(b *board.Board, st *State, from, to core.Position) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("%w: square off the board", ErrIllegalMove)
	}
	piece, ok := b.At(from)
	if !ok {
		return ErrNoPieceAtSource
	}
	if piece.Color != st.Turn {
		return fmt.Errorf("%w: it is %s's turn", ErrWrongTurn, st.Turn.Name())
	}
	if !IsLegal(b, st, from, to) {
		return fmt.Errorf("%w: %s cannot move from %s to %s", ErrIllegalMove, piece.Kind, from, to)
	}
	if target, _ := b.At(to); target.Kind == core.King {
		return fmt.Errorf("%w: kings cannot be captured", ErrIllegalMove)
	}
	if !r.AllowSelfCheck && !escapes(b, st, from, to) {
		return fmt.Errorf("%w: own king would be in check", ErrIllegalMove)
	}
	return nil
}

// Execute validates and applies one ply, then evaluates the position for the
// side now to move. On error b and st are unchanged.
func (r Rules) Execute(b *board.Board, st *State, from, to core.Position) (Ply, Outcome, error) {
	if err := r.Validate(b, st, from, to); err != nil {
		return Ply{}, Outcome{}, err
	}

	ply := Apply(b, st, from, to)

	next := st.Turn
	outcome := Outcome{Kind: OutcomeContinue, Check: InCheck(b, st, next)}
	if outcome.Check && IsCheckmate(b, st, next) {
		outcome.Kind = OutcomeCheckmate
		outcome.Winner = ply.Piece.Color
	}
	return ply, outcome, nil
}
