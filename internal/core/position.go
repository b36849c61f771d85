package core

import "fmt"

// Position is a board coordinate. Row 0 is black's back rank, row 7 white's.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < 8 && p.Col >= 0 && p.Col < 8
}

// String returns the square name, e.g. row 6 col 4 is "e2"
func (p Position) String() string {
	if !p.Valid() {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return fmt.Sprintf("%c%c", 'a'+p.Col, '8'-p.Row)
}

// ParseSquare converts a square name such as "e4" into a Position
func ParseSquare(square string) (Position, error) {
	if len(square) != 2 {
		return Position{}, fmt.Errorf("invalid square %q", square)
	}
	file, rank := square[0], square[1]
	if file >= 'A' && file <= 'H' {
		file += 'a' - 'A'
	}
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Position{}, fmt.Errorf("invalid square %q", square)
	}
	return Position{Row: int('8' - rank), Col: int(file - 'a')}, nil
}
