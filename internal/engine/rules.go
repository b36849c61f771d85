package engine

import (
	"chesscore/internal/board"
	"chesscore/internal/core"
)

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// PathClear reports whether every square strictly between from and to is
// empty and to is empty or holds a piece of the other color than the piece on
// from. from and to must share a row, column or diagonal.
func PathClear(b *board.Board, from, to core.Position) bool {
	dr, dc := to.Row-from.Row, to.Col-from.Col
	if dr != 0 && dc != 0 && abs(dr) != abs(dc) {
		return false
	}

	stepR, stepC := sign(dr), sign(dc)
	r, c := from.Row+stepR, from.Col+stepC
	for r != to.Row || c != to.Col {
		if b.Occupied(core.Pos(r, c)) {
			return false
		}
		r += stepR
		c += stepC
	}

	mover, _ := b.At(from)
	target, occupied := b.At(to)
	return !occupied || target.Color != mover.Color
}

// IsLegal is the per-piece movement predicate, castling included. It does not
// look at whose turn it is and does not filter moves that leave the own king
// in check.
func IsLegal(b *board.Board, st *State, from, to core.Position) bool {
	if reaches(b, st, from, to) {
		return true
	}
	_, ok := PlanCastle(b, st, from, to)
	return ok
}

// reaches is IsLegal without castling; it doubles as the attack test
func reaches(b *board.Board, st *State, from, to core.Position) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	p, ok := b.At(from)
	if !ok {
		return false
	}
	if target, occupied := b.At(to); occupied && target.Color == p.Color {
		return false
	}

	switch p.Kind {
	case core.Pawn:
		return pawnMove(b, st, p, from, to)
	case core.Knight:
		return knightMove(from, to)
	case core.Bishop:
		return bishopMove(b, from, to)
	case core.Rook:
		return rookMove(b, from, to)
	case core.Queen:
		return queenMove(b, from, to)
	case core.King:
		return kingStep(from, to)
	}
	return false
}

func pawnMove(b *board.Board, st *State, p core.Piece, from, to core.Position) bool {
	dir := pawnDirection(p.Color)
	dr, dc := to.Row-from.Row, to.Col-from.Col
	target, occupied := b.At(to)

	switch {
	case dc == 0 && dr == dir:
		return !occupied
	case dc == 0 && dr == 2*dir:
		return from.Row == pawnStartRow(p.Color) &&
			!b.Occupied(core.Pos(from.Row+dir, from.Col)) && !occupied
	case abs(dc) == 1 && dr == dir:
		if occupied {
			return target.Color != p.Color
		}
		return st.EnPassant != nil && *st.EnPassant == to
	}
	return false
}

func knightMove(from, to core.Position) bool {
	dr, dc := abs(to.Row-from.Row), abs(to.Col-from.Col)
	return (dr == 2 && dc == 1) || (dr == 1 && dc == 2)
}

func bishopMove(b *board.Board, from, to core.Position) bool {
	dr, dc := abs(to.Row-from.Row), abs(to.Col-from.Col)
	return dr == dc && dr > 0 && PathClear(b, from, to)
}

func rookMove(b *board.Board, from, to core.Position) bool {
	dr, dc := to.Row-from.Row, to.Col-from.Col
	return (dr == 0) != (dc == 0) && PathClear(b, from, to)
}

func queenMove(b *board.Board, from, to core.Position) bool {
	return rookMove(b, from, to) || bishopMove(b, from, to)
}

func kingStep(from, to core.Position) bool {
	return max(abs(to.Row-from.Row), abs(to.Col-from.Col)) == 1
}

// Castle describes the rook half of a castling move
type Castle struct {
	Side     Side
	RookFrom core.Position
	RookTo   core.Position
}

// PlanCastle validates a castling move without touching the board and
// returns the rook relocation that Apply will perform.
func PlanCastle(b *board.Board, st *State, from, to core.Position) (Castle, bool) {
	king, ok := b.At(from)
	if !ok || king.Kind != core.King {
		return Castle{}, false
	}
	home := homeRow(king.Color)
	if from != core.Pos(home, 4) || to.Row != home || abs(to.Col-from.Col) != 2 {
		return Castle{}, false
	}

	side, rookCol := Queenside, 0
	if to.Col > from.Col {
		side, rookCol = Kingside, 7
	}
	if !st.Castling.Has(king.Color, side) {
		return Castle{}, false
	}
	rookFrom := core.Pos(home, rookCol)
	if rook, _ := b.At(rookFrom); !rook.Is(core.Rook, king.Color) {
		return Castle{}, false
	}
	for c := min(from.Col, rookCol) + 1; c < max(from.Col, rookCol); c++ {
		if b.Occupied(core.Pos(home, c)) {
			return Castle{}, false
		}
	}

	transit := core.Pos(home, (from.Col+to.Col)/2)
	opponent := core.OppositeColor(king.Color)
	for _, sq := range []core.Position{from, transit, to} {
		if Attacked(b, st, sq, opponent) {
			return Castle{}, false
		}
	}

	return Castle{Side: side, RookFrom: rookFrom, RookTo: transit}, true
}
