// FILE: internal/board/board.go
package board

import (
	"fmt"
	"strings"

	"chesscore/internal/core"
)

const (
	StartingPlacement = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"
)

var backRank = [8]core.PieceKind{
	core.Rook, core.Knight, core.Bishop, core.Queen,
	core.King, core.Bishop, core.Knight, core.Rook,
}

// Board is an 8x8 grid of optional pieces. It is a plain value: assigning a
// Board copies every square, which is what move simulation relies on.
type Board struct {
	squares [8][8]core.Piece
}

// NewStandard returns the standard initial setup, black on rows 0-1
func NewStandard() *Board {
	b := &Board{}
	for col := 0; col < 8; col++ {
		b.squares[0][col] = core.NewPiece(backRank[col], core.ColorBlack)
		b.squares[1][col] = core.NewPiece(core.Pawn, core.ColorBlack)
		b.squares[6][col] = core.NewPiece(core.Pawn, core.ColorWhite)
		b.squares[7][col] = core.NewPiece(backRank[col], core.ColorWhite)
	}
	return b
}

// At returns the piece on pos and whether the square is occupied
func (b *Board) At(pos core.Position) (core.Piece, bool) {
	if !pos.Valid() {
		return core.Piece{}, false
	}
	p := b.squares[pos.Row][pos.Col]
	return p, !p.IsZero()
}

func (b *Board) Occupied(pos core.Position) bool {
	_, ok := b.At(pos)
	return ok
}

func (b *Board) Set(pos core.Position, p core.Piece) {
	b.squares[pos.Row][pos.Col] = p
}

func (b *Board) Clear(pos core.Position) {
	b.squares[pos.Row][pos.Col] = core.Piece{}
}

// Move relocates the piece on from to to and returns whatever stood on to.
// The captured piece is simply dropped from the board.
func (b *Board) Move(from, to core.Position) core.Piece {
	captured := b.squares[to.Row][to.Col]
	b.squares[to.Row][to.Col] = b.squares[from.Row][from.Col]
	b.squares[from.Row][from.Col] = core.Piece{}
	return captured
}

// Find returns the first square holding p, scanning from row 0
func (b *Board) Find(p core.Piece) (core.Position, bool) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if b.squares[r][c] == p {
				return core.Pos(r, c), true
			}
		}
	}
	return core.Position{}, false
}

// Each calls fn for every occupied square in row-major order
func (b *Board) Each(fn func(pos core.Position, p core.Piece)) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if p := b.squares[r][c]; !p.IsZero() {
				fn(core.Pos(r, c), p)
			}
		}
	}
}

// Snapshot returns a detached grid for presentation layers, nil for empty squares
func (b *Board) Snapshot() [8][8]*core.Piece {
	var grid [8][8]*core.Piece
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if p := b.squares[r][c]; !p.IsZero() {
				grid[r][c] = &p
			}
		}
	}
	return grid
}

// ParsePlacement reads the piece placement field of a FEN string
func ParsePlacement(placement string) (*Board, error) {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("invalid FEN: expected 8 ranks")
	}

	b := &Board{}
	for r := 0; r < 8; r++ {
		file := 0
		for i := 0; i < len(ranks[r]); i++ {
			ch := ranks[r][i]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file >= 8 {
				return nil, fmt.Errorf("invalid FEN: too many pieces in rank %d", 8-r)
			}
			p, ok := core.PieceFromSymbol(ch)
			if !ok {
				return nil, fmt.Errorf("invalid FEN: unknown piece %q", ch)
			}
			b.squares[r][file] = p
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("invalid FEN: rank %d has %d files", 8-r, file)
		}
	}

	return b, nil
}

// Placement renders the piece placement field of a FEN string
func (b *Board) Placement() string {
	var sb strings.Builder
	for r := 0; r < 8; r++ {
		empty := 0
		for c := 0; c < 8; c++ {
			p := b.squares[r][c]
			if p.IsZero() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Symbol())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r < 7 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// ToASCII creates an ASCII representation of the board
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 0; r < 8; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for f := 0; f < 8; f++ {
			piece := b.squares[r][f]

			if piece.IsZero() {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", piece.Symbol()))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
