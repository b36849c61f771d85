package engine

import (
	"chesscore/internal/board"
	"chesscore/internal/core"
)

// Attacked reports whether any piece of color by could move onto sq, ignoring
// whose turn it is. The full movement predicate is used, so a pawn counts as
// attacking the empty square in front of it but not an empty diagonal unless
// that diagonal is the en passant target.
func Attacked(b *board.Board, st *State, sq core.Position, by core.Color) bool {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			from := core.Pos(r, c)
			p, ok := b.At(from)
			if !ok || p.Color != by {
				continue
			}
			if reaches(b, st, from, sq) {
				return true
			}
		}
	}
	return false
}

// InCheck reports whether color's king is attacked by the opponent. A color
// without a king on the board is never in check.
func InCheck(b *board.Board, st *State, color core.Color) bool {
	king := core.NewPiece(core.King, color)
	pos := st.Kings.Of(color)
	if p, _ := b.At(pos); p != king {
		var ok bool
		if pos, ok = b.Find(king); !ok {
			return false
		}
	}
	return Attacked(b, st, pos, core.OppositeColor(color))
}

// escapes simulates from->to on copies of b and st and reports whether the
// mover's king is safe afterwards. b and st are left untouched.
func escapes(b *board.Board, st *State, from, to core.Position) bool {
	mover, _ := b.At(from)
	scratch := *b
	next := *st
	Apply(&scratch, &next, from, to)
	return !InCheck(&scratch, &next, mover.Color)
}

// candidate reports whether from->to is a move the side owning from may try:
// legal by movement rules and not a king capture
func candidate(b *board.Board, st *State, from, to core.Position) bool {
	if target, _ := b.At(to); target.Kind == core.King {
		return false
	}
	return IsLegal(b, st, from, to)
}

// LegalMoves lists the destinations of the piece on from that are legal and
// do not leave its own king in check
func LegalMoves(b *board.Board, st *State, from core.Position) []core.Position {
	if !b.Occupied(from) {
		return nil
	}
	var moves []core.Position
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			to := core.Pos(r, c)
			if candidate(b, st, from, to) && escapes(b, st, from, to) {
				moves = append(moves, to)
			}
		}
	}
	return moves
}

// IsCheckmate reports whether color is in check and no move of any of its
// pieces gets it out. Every candidate is played on a scratch copy, the
// caller's board is never mutated.
func IsCheckmate(b *board.Board, st *State, color core.Color) bool {
	if !InCheck(b, st, color) {
		return false
	}

	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			from := core.Pos(r, c)
			p, ok := b.At(from)
			if !ok || p.Color != color {
				continue
			}
			for tr := 0; tr < 8; tr++ {
				for tc := 0; tc < 8; tc++ {
					to := core.Pos(tr, tc)
					if candidate(b, st, from, to) && escapes(b, st, from, to) {
						return false
					}
				}
			}
		}
	}
	return true
}
