package game

import (
	"fmt"
	"strconv"
	"strings"

	"chesscore/internal/board"
	"chesscore/internal/core"
	"chesscore/internal/engine"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// ParseFEN reads a full six field FEN string into a board and engine state
func ParseFEN(fen string) (*board.Board, engine.State, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return nil, engine.State{}, fmt.Errorf("invalid FEN: expected 6 parts, got %d", len(parts))
	}

	b, err := board.ParsePlacement(parts[0])
	if err != nil {
		return nil, engine.State{}, err
	}

	turn, ok := core.ParseColor(parts[1])
	if !ok {
		return nil, engine.State{}, fmt.Errorf("invalid FEN: turn must be 'w' or 'b'")
	}

	st := engine.NewState(b, turn)
	for _, c := range []core.Color{core.ColorWhite, core.ColorBlack} {
		if n := countKings(b, c); n != 1 {
			return nil, engine.State{}, fmt.Errorf("invalid FEN: %s has %d kings", c.Name(), n)
		}
	}

	castling, ok := engine.ParseCastling(parts[2])
	if !ok {
		return nil, engine.State{}, fmt.Errorf("invalid FEN: castling field %q", parts[2])
	}
	// Rights the placement cannot support are dropped
	st.Castling = castling & st.Castling

	if parts[3] != "-" {
		ep, err := core.ParseSquare(parts[3])
		if err != nil {
			return nil, engine.State{}, fmt.Errorf("invalid FEN: en passant square: %w", err)
		}
		if (turn == core.ColorWhite && ep.Row != 2) || (turn == core.ColorBlack && ep.Row != 5) {
			return nil, engine.State{}, fmt.Errorf("invalid FEN: en passant square %s for %s to move", ep, turn.Name())
		}
		st.EnPassant = &ep
	}

	if st.HalfMove, err = strconv.Atoi(parts[4]); err != nil || st.HalfMove < 0 {
		return nil, engine.State{}, fmt.Errorf("invalid FEN: halfmove counter")
	}
	if st.FullMove, err = strconv.Atoi(parts[5]); err != nil || st.FullMove < 1 {
		return nil, engine.State{}, fmt.Errorf("invalid FEN: fullmove counter")
	}

	return b, st, nil
}

// FormatFEN renders b and st as a six field FEN string
func FormatFEN(b *board.Board, st *engine.State) string {
	ep := "-"
	if st.EnPassant != nil {
		ep = st.EnPassant.String()
	}
	return fmt.Sprintf("%s %s %s %s %d %d",
		b.Placement(), st.Turn, st.Castling, ep, st.HalfMove, st.FullMove)
}

func countKings(b *board.Board, c core.Color) int {
	n := 0
	b.Each(func(_ core.Position, p core.Piece) {
		if p.Is(core.King, c) {
			n++
		}
	})
	return n
}
