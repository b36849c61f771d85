// FILE: internal/engine/state.go
package engine

import (
	"strings"

	"chesscore/internal/board"
	"chesscore/internal/core"
)

// Kings indexes the square of each color's king
type Kings [2]core.Position

var noSquare = core.Pos(-1, -1)

// Of returns an off-board position for a color other than white or black
func (k Kings) Of(c core.Color) core.Position {
	if !c.Valid() {
		return noSquare
	}
	return k[c-1]
}

func (k *Kings) Set(c core.Color, pos core.Position) {
	if c.Valid() {
		k[c-1] = pos
	}
}

type Side int

const (
	Kingside Side = iota
	Queenside
)

// Castling is a bit set of remaining castling rights
type Castling uint8

const (
	WhiteKingside Castling = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside
)

const (
	NoCastling  Castling = 0
	AllCastling Castling = WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside
)

func castlingFlag(c core.Color, side Side) Castling {
	switch {
	case c == core.ColorWhite && side == Kingside:
		return WhiteKingside
	case c == core.ColorWhite:
		return WhiteQueenside
	case side == Kingside:
		return BlackKingside
	default:
		return BlackQueenside
	}
}

func (c Castling) Has(color core.Color, side Side) bool {
	return c&castlingFlag(color, side) != 0
}

func (c Castling) Without(color core.Color, side Side) Castling {
	return c &^ castlingFlag(color, side)
}

// String renders the FEN castling field
func (c Castling) String() string {
	if c == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for _, f := range []struct {
		flag Castling
		ch   byte
	}{{WhiteKingside, 'K'}, {WhiteQueenside, 'Q'}, {BlackKingside, 'k'}, {BlackQueenside, 'q'}} {
		if c&f.flag != 0 {
			sb.WriteByte(f.ch)
		}
	}
	return sb.String()
}

// ParseCastling reads the FEN castling field
func ParseCastling(s string) (Castling, bool) {
	if s == "-" {
		return NoCastling, true
	}
	var c Castling
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'K':
			c |= WhiteKingside
		case 'Q':
			c |= WhiteQueenside
		case 'k':
			c |= BlackKingside
		case 'q':
			c |= BlackQueenside
		default:
			return NoCastling, false
		}
	}
	return c, s != ""
}

// State is everything besides piece placement that move legality depends on
type State struct {
	Turn      core.Color
	Kings     Kings
	EnPassant *core.Position
	Castling  Castling
	HalfMove  int
	FullMove  int
}

// NewState derives a State for b. Castling rights are granted wherever king
// and rook still stand on their home squares.
func NewState(b *board.Board, turn core.Color) State {
	st := State{Turn: turn, FullMove: 1}
	for _, c := range []core.Color{core.ColorWhite, core.ColorBlack} {
		if pos, ok := b.Find(core.NewPiece(core.King, c)); ok {
			st.Kings.Set(c, pos)
		}
		home := homeRow(c)
		if p, _ := b.At(core.Pos(home, 4)); !p.Is(core.King, c) {
			continue
		}
		if p, _ := b.At(core.Pos(home, 7)); p.Is(core.Rook, c) {
			st.Castling |= castlingFlag(c, Kingside)
		}
		if p, _ := b.At(core.Pos(home, 0)); p.Is(core.Rook, c) {
			st.Castling |= castlingFlag(c, Queenside)
		}
	}
	return st
}

func homeRow(c core.Color) int {
	if c == core.ColorWhite {
		return 7
	}
	return 0
}

func pawnDirection(c core.Color) int {
	if c == core.ColorWhite {
		return -1
	}
	return 1
}

func pawnStartRow(c core.Color) int {
	return homeRow(c) + pawnDirection(c)
}

func promotionRow(c core.Color) int {
	return homeRow(core.OppositeColor(c))
}
