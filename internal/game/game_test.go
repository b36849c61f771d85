package game

import (
	"errors"
	"testing"

	"chesscore/internal/core"
	"chesscore/internal/engine"

	"github.com/google/go-cmp/cmp"
)

const foolsMateFEN = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"

func sq(name string) core.Position {
	pos, err := core.ParseSquare(name)
	if err != nil {
		panic(err)
	}
	return pos
}

func newTestGame() *Game {
	return New(core.NewPlayer(core.ColorWhite), core.NewPlayer(core.ColorBlack), Options{})
}

func play(t *testing.T, g *Game, moves ...string) engine.Outcome {
	t.Helper()
	var outcome engine.Outcome
	for i := 0; i+1 < len(moves); i += 2 {
		var err error
		outcome, err = g.Submit(sq(moves[i]), sq(moves[i+1]))
		if err != nil {
			t.Fatalf("%s-%s: %v", moves[i], moves[i+1], err)
		}
	}
	return outcome
}

func TestNewGame(t *testing.T) {
	g := newTestGame()

	if g.Turn() != core.ColorWhite {
		t.Errorf("Turn() = %s, want w", g.Turn())
	}
	if g.State() != core.StateOngoing {
		t.Errorf("State() = %s, want ongoing", g.State())
	}
	if g.FEN() != StartingFEN || g.InitialFEN() != StartingFEN {
		t.Errorf("FEN() = %q, InitialFEN() = %q", g.FEN(), g.InitialFEN())
	}
	if g.MoveCount() != 0 || len(g.MoveLog()) != 0 {
		t.Errorf("fresh game has %d moves", g.MoveCount())
	}
	if g.KingPosition(core.ColorWhite) != sq("e1") || g.KingPosition(core.ColorBlack) != sq("e8") {
		t.Error("king index not initialised to e1/e8")
	}
	if g.Castling() != engine.AllCastling {
		t.Errorf("Castling() = %s, want KQkq", g.Castling())
	}
	if g.GetPlayer(core.ColorWhite).Color != core.ColorWhite || g.GetPlayer(core.ColorBlack).Color != core.ColorBlack {
		t.Error("players not seated by color")
	}
}

func TestOpeningPawnPush(t *testing.T) {
	g := newTestGame()

	outcome := play(t, g, "e2", "e4")
	if outcome != (engine.Outcome{Kind: engine.OutcomeContinue}) {
		t.Errorf("outcome = %+v, want plain continue", outcome)
	}
	if g.Turn() != core.ColorBlack {
		t.Errorf("Turn() = %s, want b", g.Turn())
	}
	if ep := g.EnPassantTarget(); ep == nil || *ep != core.Pos(5, 4) {
		t.Errorf("EnPassantTarget() = %v, want row 5 col 4", ep)
	}

	want := []MoveRecord{{From: sq("e2"), To: sq("e4"), Piece: "wP"}}
	if diff := cmp.Diff(want, g.MoveLog()); diff != "" {
		t.Errorf("MoveLog() mismatch (-want +got):\n%s", diff)
	}

	grid := g.Snapshot()
	if grid[6][4] != nil {
		t.Error("e2 still occupied")
	}
	if p := grid[4][4]; p == nil || *p != core.NewPiece(core.Pawn, core.ColorWhite) {
		t.Errorf("e4 = %v, want white pawn", p)
	}
	if got := g.FEN(); got != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1" {
		t.Errorf("FEN() = %q", got)
	}
}

func TestWrongTurnLeavesGameUntouched(t *testing.T) {
	g := newTestGame()
	before := g.Snapshot()

	_, err := g.Submit(sq("e7"), sq("e5"))
	if !errors.Is(err, engine.ErrWrongTurn) {
		t.Fatalf("Submit(e7, e5) = %v, want ErrWrongTurn", err)
	}
	if diff := cmp.Diff(before, g.Snapshot()); diff != "" {
		t.Errorf("board changed (-want +got):\n%s", diff)
	}
	if g.Turn() != core.ColorWhite || g.MoveCount() != 0 || g.FEN() != StartingFEN {
		t.Error("game state changed after rejected move")
	}
}

func TestSubmitErrors(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     error
	}{
		{"empty square", "e4", "e5", engine.ErrNoPieceAtSource},
		{"opponent piece", "b8", "c6", engine.ErrWrongTurn},
		{"illegal pattern", "b1", "b3", engine.ErrIllegalMove},
		{"own piece", "d1", "d2", engine.ErrIllegalMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame()
			if _, err := g.Submit(sq(tt.from), sq(tt.to)); !errors.Is(err, tt.want) {
				t.Errorf("Submit(%s, %s) = %v, want %v", tt.from, tt.to, err, tt.want)
			}
			if g.FEN() != StartingFEN {
				t.Errorf("FEN() = %q after rejected move", g.FEN())
			}
		})
	}
}

func TestTurnAlternation(t *testing.T) {
	g := newTestGame()
	moves := []string{"e2", "e4", "e7", "e5", "g1", "f3", "b8", "c6"}
	for i := 0; i < len(moves); i += 2 {
		want := core.ColorWhite
		if (i/2)%2 == 1 {
			want = core.ColorBlack
		}
		if g.Turn() != want {
			t.Fatalf("before ply %d Turn() = %s, want %s", i/2+1, g.Turn(), want)
		}
		play(t, g, moves[i], moves[i+1])
	}
	if g.MoveCount() != 4 {
		t.Errorf("MoveCount() = %d, want 4", g.MoveCount())
	}
}

func TestPromotion(t *testing.T) {
	g, err := FromFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1", nil, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}

	play(t, g, "a7", "a8")
	grid := g.Snapshot()
	if p := grid[0][0]; p == nil || *p != core.NewPiece(core.Queen, core.ColorWhite) {
		t.Errorf("a8 = %v, want white queen", p)
	}
	for r := range grid {
		for c := range grid[r] {
			if p := grid[r][c]; p != nil && p.Kind == core.Pawn {
				t.Errorf("pawn left on %s", core.Pos(r, c))
			}
		}
	}
	// The log keeps the piece that moved
	if moves := g.MoveLog(); moves[0].Piece != "wP" {
		t.Errorf("logged piece = %q, want wP", moves[0].Piece)
	}
}

func TestFoolsMate(t *testing.T) {
	g := newTestGame()

	outcome := play(t, g, "f2", "f3", "e7", "e5", "g2", "g4", "d8", "h4")
	want := engine.Outcome{Kind: engine.OutcomeCheckmate, Winner: core.ColorBlack, Check: true}
	if diff := cmp.Diff(want, outcome); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	if !g.IsCheckmate(core.ColorWhite) {
		t.Error("IsCheckmate(white) = false")
	}
	if g.State() != core.StateBlackWins {
		t.Errorf("State() = %s, want black wins", g.State())
	}
	if g.FEN() != foolsMateFEN {
		t.Errorf("FEN() = %q, want %q", g.FEN(), foolsMateFEN)
	}
	if diff := cmp.Diff(want, g.LastOutcome()); diff != "" {
		t.Errorf("LastOutcome() mismatch (-want +got):\n%s", diff)
	}

	if _, err := g.Submit(sq("a2"), sq("a3")); !errors.Is(err, ErrGameOver) {
		t.Errorf("Submit after mate = %v, want ErrGameOver", err)
	}
}

func TestFromFENAlreadyMated(t *testing.T) {
	g, err := FromFEN(foolsMateFEN, nil, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if g.State() != core.StateBlackWins {
		t.Errorf("State() = %s, want black wins", g.State())
	}
	if !g.LastOutcome().Check {
		t.Error("LastOutcome() does not report check")
	}
}

func TestFromFENInvalid(t *testing.T) {
	if _, err := FromFEN("not a fen", nil, nil, Options{}); err == nil {
		t.Error("FromFEN accepted garbage")
	}
}

func TestUndo(t *testing.T) {
	g := newTestGame()
	play(t, g, "e2", "e4", "e7", "e5", "g1", "f3")
	afterThree := g.FEN()
	play(t, g, "b8", "c6")

	if err := g.UndoMoves(1); err != nil {
		t.Fatal(err)
	}
	if g.FEN() != afterThree {
		t.Errorf("FEN() after undo = %q, want %q", g.FEN(), afterThree)
	}
	if g.Turn() != core.ColorBlack || g.MoveCount() != 3 {
		t.Errorf("Turn() = %s, MoveCount() = %d after undo", g.Turn(), g.MoveCount())
	}

	if err := g.UndoMoves(3); err != nil {
		t.Fatal(err)
	}
	if g.FEN() != StartingFEN || g.MoveCount() != 0 {
		t.Errorf("full undo left FEN %q with %d moves", g.FEN(), g.MoveCount())
	}

	if err := g.UndoMoves(1); err == nil {
		t.Error("undo past the start succeeded")
	}
	if err := g.UndoMoves(0); err == nil {
		t.Error("undo of zero moves succeeded")
	}
}

func TestUndoReopensFinishedGame(t *testing.T) {
	g := newTestGame()
	play(t, g, "f2", "f3", "e7", "e5", "g2", "g4", "d8", "h4")

	if err := g.UndoMoves(1); err != nil {
		t.Fatal(err)
	}
	if g.State() != core.StateOngoing || g.Turn() != core.ColorBlack {
		t.Errorf("State() = %s, Turn() = %s after undo", g.State(), g.Turn())
	}
	if g.LastOutcome().Kind != engine.OutcomeContinue {
		t.Errorf("LastOutcome() = %+v after undo", g.LastOutcome())
	}

	play(t, g, "d8", "e7")
	if g.State() != core.StateOngoing {
		t.Errorf("State() = %s after a different reply", g.State())
	}
}

func TestUndoRestoresCastling(t *testing.T) {
	g, err := FromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", nil, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	play(t, g, "e1", "g1")
	if g.Castling() != engine.BlackKingside|engine.BlackQueenside {
		t.Errorf("Castling() = %s after O-O", g.Castling())
	}
	if err := g.UndoMoves(1); err != nil {
		t.Fatal(err)
	}
	if g.FEN() != "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1" {
		t.Errorf("FEN() after undo = %q", g.FEN())
	}
	if g.KingPosition(core.ColorWhite) != sq("e1") {
		t.Errorf("king index = %s after undo", g.KingPosition(core.ColorWhite))
	}
}

func TestSelfCheckOption(t *testing.T) {
	const pinned = "4k3/4r3/8/8/8/8/4B3/4K3 w - - 0 1"

	strict, err := FromFEN(pinned, nil, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := strict.Submit(sq("e2"), sq("d3")); !errors.Is(err, engine.ErrIllegalMove) {
		t.Errorf("pinned move = %v, want ErrIllegalMove", err)
	}
	if moves := strict.LegalMoves(sq("e2")); len(moves) != 0 {
		t.Errorf("LegalMoves(e2) = %v, want none", moves)
	}

	lax, err := FromFEN(pinned, nil, nil, Options{AllowSelfCheck: true})
	if err != nil {
		t.Fatal(err)
	}
	if moves := lax.LegalMoves(sq("e2")); len(moves) == 0 {
		t.Error("LegalMoves(e2) empty with self-check allowed")
	}
	if _, err := lax.Submit(sq("e2"), sq("d3")); err != nil {
		t.Errorf("pinned move with self-check allowed = %v", err)
	}
	if !lax.InCheck(core.ColorWhite) {
		t.Error("white should be left in check")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	g := newTestGame()
	play(t, g, "e2", "e4")

	moves := g.MoveLog()
	moves[0].Piece = "xx"
	if g.MoveLog()[0].Piece != "wP" {
		t.Error("MoveLog() exposes internal storage")
	}

	b := g.Board()
	b.Clear(sq("e4"))
	if g.Snapshot()[4][4] == nil {
		t.Error("Board() exposes internal storage")
	}

	ep := g.EnPassantTarget()
	*ep = sq("a1")
	if *g.EnPassantTarget() != sq("e3") {
		t.Error("EnPassantTarget() exposes internal storage")
	}
}

func TestUpdatePlayers(t *testing.T) {
	g := newTestGame()
	white, black := core.NewPlayer(core.ColorWhite), core.NewPlayer(core.ColorBlack)
	g.UpdatePlayers(white, black)
	if g.GetPlayer(core.ColorWhite) != white || g.GetPlayer(core.ColorBlack) != black {
		t.Error("UpdatePlayers did not replace both seats")
	}
}
