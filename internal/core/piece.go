package core

import (
	"encoding/json"
	"fmt"
)

type PieceKind byte

const (
	Pawn PieceKind = iota + 1
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = map[PieceKind]byte{
	Pawn:   'P',
	Knight: 'N',
	Bishop: 'B',
	Rook:   'R',
	Queen:  'Q',
	King:   'K',
}

var kindNames = map[PieceKind]string{
	Pawn:   "pawn",
	Knight: "knight",
	Bishop: "bishop",
	Rook:   "rook",
	Queen:  "queen",
	King:   "king",
}

func (k PieceKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "none"
}

// Letter returns the upper case FEN letter of the kind, 0 for an invalid kind
func (k PieceKind) Letter() byte {
	return kindLetters[k]
}

// Piece is an immutable value. The zero Piece means an empty square.
type Piece struct {
	Kind  PieceKind
	Color Color
}

func NewPiece(kind PieceKind, color Color) Piece {
	return Piece{Kind: kind, Color: color}
}

func (p Piece) IsZero() bool {
	return p.Kind == 0
}

func (p Piece) Is(kind PieceKind, color Color) bool {
	return p.Kind == kind && p.Color == color
}

// Symbol returns the FEN character: upper case for white, lower case for black
func (p Piece) Symbol() byte {
	letter := p.Kind.Letter()
	if letter == 0 {
		return 0
	}
	if p.Color == ColorBlack {
		return letter + ('a' - 'A')
	}
	return letter
}

// Label is the short move log form, e.g. "wP", "bN"
func (p Piece) Label() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s%c", p.Color, p.Kind.Letter())
}

func (p Piece) String() string {
	if p.IsZero() {
		return "empty"
	}
	return p.Color.Name() + " " + p.Kind.String()
}

// PieceFromSymbol parses a FEN piece character
func PieceFromSymbol(ch byte) (Piece, bool) {
	color := ColorWhite
	upper := ch
	if ch >= 'a' && ch <= 'z' {
		color = ColorBlack
		upper = ch - ('a' - 'A')
	}
	for kind, letter := range kindLetters {
		if letter == upper {
			return Piece{Kind: kind, Color: color}, true
		}
	}
	return Piece{}, false
}

type pieceJSON struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

func (p Piece) MarshalJSON() ([]byte, error) {
	return json.Marshal(pieceJSON{Type: p.Kind.String(), Color: p.Color.String()})
}

func (p *Piece) UnmarshalJSON(data []byte) error {
	var raw pieceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	color, ok := ParseColor(raw.Color)
	if !ok {
		return fmt.Errorf("invalid piece color %q", raw.Color)
	}
	for kind, name := range kindNames {
		if name == raw.Type {
			*p = Piece{Kind: kind, Color: color}
			return nil
		}
	}
	return fmt.Errorf("invalid piece type %q", raw.Type)
}
