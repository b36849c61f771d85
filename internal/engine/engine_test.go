package engine

import (
	"errors"
	"math/rand/v2"
	"testing"

	"chesscore/internal/board"
	"chesscore/internal/core"

	"github.com/google/go-cmp/cmp"
)

func setup(t *testing.T, placement string, turn core.Color) (*board.Board, *State) {
	t.Helper()
	b, err := board.ParsePlacement(placement)
	if err != nil {
		t.Fatalf("ParsePlacement(%q): %v", placement, err)
	}
	st := NewState(b, turn)
	return b, &st
}

func sq(name string) core.Position {
	pos, err := core.ParseSquare(name)
	if err != nil {
		panic(err)
	}
	return pos
}

type moveCase struct {
	name      string
	placement string
	from, to  string
	want      bool
}

func runMoveCases(t *testing.T, cases []moveCase) {
	t.Helper()
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			b, st := setup(t, tt.placement, core.ColorWhite)
			if got := IsLegal(b, st, sq(tt.from), sq(tt.to)); got != tt.want {
				t.Errorf("IsLegal(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestKnightGrid(t *testing.T) {
	knight := core.NewPiece(core.Knight, core.ColorWhite)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			from := core.Pos(r, c)
			var b board.Board
			b.Set(from, knight)
			st := NewState(&b, core.ColorWhite)

			for tr := 0; tr < 8; tr++ {
				for tc := 0; tc < 8; tc++ {
					to := core.Pos(tr, tc)
					dr, dc := abs(tr-r), abs(tc-c)
					want := (dr == 1 && dc == 2) || (dr == 2 && dc == 1)
					if got := IsLegal(&b, &st, from, to); got != want {
						t.Errorf("knight %s -> %s = %v, want %v", from, to, got, want)
					}
				}
			}
		}
	}
}

func TestSliders(t *testing.T) {
	runMoveCases(t, []moveCase{
		{"rook along file", "8/8/8/8/8/8/8/R7", "a1", "a8", true},
		{"rook along rank", "8/8/8/8/8/8/8/R7", "a1", "h1", true},
		{"rook diagonal", "8/8/8/8/8/8/8/R7", "a1", "b2", false},
		{"rook before own blocker", "8/8/8/8/P7/8/8/R7", "a1", "a3", true},
		{"rook onto own blocker", "8/8/8/8/P7/8/8/R7", "a1", "a4", false},
		{"rook past own blocker", "8/8/8/8/P7/8/8/R7", "a1", "a5", false},
		{"rook captures blocker", "8/8/8/8/p7/8/8/R7", "a1", "a4", true},
		{"rook past enemy blocker", "8/8/8/8/p7/8/8/R7", "a1", "a5", false},
		{"bishop long diagonal", "8/8/8/8/8/8/8/2B5", "c1", "h6", true},
		{"bishop short diagonal", "8/8/8/8/8/8/8/2B5", "c1", "a3", true},
		{"bishop straight", "8/8/8/8/8/8/8/2B5", "c1", "c2", false},
		{"bishop captures blocker", "8/8/8/8/8/4p3/8/2B5", "c1", "e3", true},
		{"bishop past blocker", "8/8/8/8/8/4p3/8/2B5", "c1", "f4", false},
		{"queen file", "8/8/8/8/3Q4/8/8/8", "d4", "d8", true},
		{"queen diagonal up", "8/8/8/8/3Q4/8/8/8", "d4", "h8", true},
		{"queen diagonal down", "8/8/8/8/3Q4/8/8/8", "d4", "a1", true},
		{"queen knight jump", "8/8/8/8/3Q4/8/8/8", "d4", "e6", false},
		{"king step", "8/8/8/8/3K4/8/8/8", "d4", "e5", true},
		{"king two squares", "8/8/8/8/3K4/8/8/8", "d4", "d6", false},
		{"capture own piece", "8/8/8/8/8/8/8/RN6", "a1", "b1", false},
		{"knight onto own piece", "8/8/8/8/8/8/3P4/1N6", "b1", "d2", false},
		{"null move", "8/8/8/8/3Q4/8/8/8", "d4", "d4", false},
		{"empty source", "8/8/8/8/8/8/8/8", "d4", "d5", false},
	})
}

func TestPathClear(t *testing.T) {
	b, _ := setup(t, "8/8/8/8/3p4/8/8/R7", core.ColorWhite)
	tests := []struct {
		from, to string
		want     bool
	}{
		{"a1", "a8", true},
		{"a1", "h8", false}, // d4 in the way
		{"a1", "d4", true},  // enemy on the destination
		{"a1", "b3", false}, // not on a line
	}
	for _, tt := range tests {
		if got := PathClear(b, sq(tt.from), sq(tt.to)); got != tt.want {
			t.Errorf("PathClear(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

// TestSliderObstructions places a blocker on every square strictly between
// every pair of squares on a slider's line. No such move may be legal.
func TestSliderObstructions(t *testing.T) {
	onLine := map[core.PieceKind]func(dr, dc int) bool{
		core.Rook:   func(dr, dc int) bool { return dr == 0 || dc == 0 },
		core.Bishop: func(dr, dc int) bool { return abs(dr) == abs(dc) },
		core.Queen:  func(dr, dc int) bool { return dr == 0 || dc == 0 || abs(dr) == abs(dc) },
	}
	blockers := []core.Piece{
		core.NewPiece(core.Pawn, core.ColorWhite),
		core.NewPiece(core.Pawn, core.ColorBlack),
	}

	for kind, lined := range onLine {
		slider := core.NewPiece(kind, core.ColorWhite)
		checked := 0
		for from := 0; from < 64; from++ {
			for to := 0; to < 64; to++ {
				f, d := core.Pos(from/8, from%8), core.Pos(to/8, to%8)
				dr, dc := d.Row-f.Row, d.Col-f.Col
				if from == to || !lined(dr, dc) {
					continue
				}
				sr, sc := sign(dr), sign(dc)
				for step := 1; ; step++ {
					mid := core.Pos(f.Row+sr*step, f.Col+sc*step)
					if mid == d {
						break
					}
					for _, blocker := range blockers {
						var b board.Board
						b.Set(f, slider)
						b.Set(mid, blocker)
						st := NewState(&b, core.ColorWhite)
						if IsLegal(&b, &st, f, d) {
							t.Errorf("%s %s -> %s accepted through %s on %s", kind, f, d, blocker, mid)
						}
						checked++
					}
				}
			}
		}
		if checked == 0 {
			t.Errorf("%s: no obstructed moves generated", kind)
		}
	}
}

// quiet reports whether from->to is a plain relocation onto an empty square:
// no capture, castling, en passant or promotion.
func quiet(b *board.Board, from, to core.Position) bool {
	if b.Occupied(to) {
		return false
	}
	p, _ := b.At(from)
	switch p.Kind {
	case core.King:
		return abs(to.Col-from.Col) < 2
	case core.Pawn:
		return to.Col == from.Col && to.Row != 0 && to.Row != 7
	}
	return true
}

func TestKnightShuffleRestoresBoard(t *testing.T) {
	b := board.NewStandard()
	st := NewState(b, core.ColorWhite)
	for _, mv := range [][2]string{{"g1", "f3"}, {"g8", "f6"}, {"f3", "g1"}, {"f6", "g8"}} {
		if _, _, err := (Rules{}).Execute(b, &st, sq(mv[0]), sq(mv[1])); err != nil {
			t.Fatalf("%s-%s: %v", mv[0], mv[1], err)
		}
	}
	if got := b.Placement(); got != board.StartingPlacement {
		t.Errorf("placement = %q, want %q", got, board.StartingPlacement)
	}
}

// TestQuietMoveInverse plays seeded random games. Before each ply, every
// quiet legal move is applied to a scratch board and undone by moving the
// piece straight back, which must reproduce the original placement.
func TestQuietMoveInverse(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for game := 0; game < 5; game++ {
		b := board.NewStandard()
		st := NewState(b, core.ColorWhite)

		for ply := 0; ply < 40; ply++ {
			before := b.Placement()
			var quietMoves [][2]core.Position
			b.Each(func(from core.Position, p core.Piece) {
				if p.Color != st.Turn {
					return
				}
				for _, to := range LegalMoves(b, &st, from) {
					if quiet(b, from, to) {
						quietMoves = append(quietMoves, [2]core.Position{from, to})
					}
				}
			})
			if len(quietMoves) == 0 {
				break
			}

			for _, mv := range quietMoves {
				scratch, scratchState := *b, st
				if _, _, err := (Rules{}).Execute(&scratch, &scratchState, mv[0], mv[1]); err != nil {
					t.Fatalf("game %d ply %d %s-%s: %v", game, ply, mv[0], mv[1], err)
				}
				scratch.Move(mv[1], mv[0])
				if got := scratch.Placement(); got != before {
					t.Errorf("%s-%s and back: placement %q, want %q", mv[0], mv[1], got, before)
				}
			}

			mv := quietMoves[rng.IntN(len(quietMoves))]
			if _, outcome, err := (Rules{}).Execute(b, &st, mv[0], mv[1]); err != nil {
				t.Fatalf("game %d ply %d %s-%s: %v", game, ply, mv[0], mv[1], err)
			} else if outcome.Kind == OutcomeCheckmate {
				break
			}
		}
	}
}

func TestPawnMoves(t *testing.T) {
	runMoveCases(t, []moveCase{
		{"single push", "8/8/8/8/8/8/4P3/8", "e2", "e3", true},
		{"double push", "8/8/8/8/8/8/4P3/8", "e2", "e4", true},
		{"triple push", "8/8/8/8/8/8/4P3/8", "e2", "e5", false},
		{"empty diagonal", "8/8/8/8/8/8/4P3/8", "e2", "d3", false},
		{"backward", "8/8/8/8/8/8/4P3/8", "e2", "e1", false},
		{"push into piece", "8/8/8/8/8/4p3/4P3/8", "e2", "e3", false},
		{"double push over piece", "8/8/8/8/8/4p3/4P3/8", "e2", "e4", false},
		{"double push onto piece", "8/8/8/8/4p3/8/4P3/8", "e2", "e4", false},
		{"double push off start row", "8/8/8/8/8/4P3/8/8", "e3", "e5", false},
		{"diagonal capture", "8/8/8/8/8/3p4/4P3/8", "e2", "d3", true},
		{"diagonal onto own", "8/8/8/8/8/3P4/4P3/8", "e2", "d3", false},
		{"black single push", "8/4p3/8/8/8/8/8/8", "e7", "e6", true},
		{"black double push", "8/4p3/8/8/8/8/8/8", "e7", "e5", true},
		{"black backward", "8/4p3/8/8/8/8/8/8", "e7", "e8", false},
	})
}

func TestEnPassant(t *testing.T) {
	b, st := setup(t, "4k3/3p4/8/4P3/8/8/8/4K3", core.ColorBlack)
	rules := Rules{}

	if _, _, err := rules.Execute(b, st, sq("d7"), sq("d5")); err != nil {
		t.Fatalf("d7-d5: %v", err)
	}
	if st.EnPassant == nil || *st.EnPassant != sq("d6") {
		t.Fatalf("en passant target = %v, want d6", st.EnPassant)
	}
	if !IsLegal(b, st, sq("e5"), sq("d6")) {
		t.Fatal("e5xd6 en passant not legal")
	}

	ply, _, err := rules.Execute(b, st, sq("e5"), sq("d6"))
	if err != nil {
		t.Fatalf("e5xd6: %v", err)
	}
	if !ply.EnPassant || ply.CapturedAt != sq("d5") {
		t.Errorf("ply = %+v, want en passant capture on d5", ply)
	}
	if ply.Captured != core.NewPiece(core.Pawn, core.ColorBlack) {
		t.Errorf("captured %v, want black pawn", ply.Captured)
	}
	if b.Occupied(sq("d5")) {
		t.Error("captured pawn still on d5")
	}
	if p, _ := b.At(sq("d6")); p != core.NewPiece(core.Pawn, core.ColorWhite) {
		t.Errorf("d6 holds %v, want white pawn", p)
	}
	if st.EnPassant != nil {
		t.Errorf("en passant target = %v after capture, want none", st.EnPassant)
	}
}

func TestEnPassantExpires(t *testing.T) {
	b, st := setup(t, "4k3/3p4/8/4P3/8/8/8/4K3", core.ColorBlack)
	rules := Rules{}

	for _, m := range [][2]string{{"d7", "d5"}, {"e1", "d1"}, {"e8", "f8"}} {
		if _, _, err := rules.Execute(b, st, sq(m[0]), sq(m[1])); err != nil {
			t.Fatalf("%s-%s: %v", m[0], m[1], err)
		}
	}
	if st.EnPassant != nil {
		t.Errorf("en passant target = %v, want none", st.EnPassant)
	}
	if _, _, err := rules.Execute(b, st, sq("e5"), sq("d6")); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("late en passant error = %v, want ErrIllegalMove", err)
	}
}

func TestAttackedPawnAsymmetry(t *testing.T) {
	b, st := setup(t, "8/8/8/8/8/8/4P3/8", core.ColorWhite)

	if !Attacked(b, st, sq("e3"), core.ColorWhite) {
		t.Error("empty square ahead of pawn not counted as attacked")
	}
	if Attacked(b, st, sq("d3"), core.ColorWhite) {
		t.Error("empty diagonal counted as attacked")
	}

	target := sq("d3")
	st.EnPassant = &target
	if !Attacked(b, st, sq("d3"), core.ColorWhite) {
		t.Error("en passant target diagonal not counted as attacked")
	}
	if Attacked(b, st, sq("e3"), core.ColorBlack) {
		t.Error("square attacked by a color with no pieces")
	}
}

func TestInCheck(t *testing.T) {
	b, st := setup(t, "4k3/8/8/8/8/8/8/r3K3", core.ColorWhite)
	if !InCheck(b, st, core.ColorWhite) {
		t.Error("king on e1 not in check from a1 rook")
	}
	if InCheck(b, st, core.ColorBlack) {
		t.Error("black reported in check")
	}

	// A stale king index falls back to a board search
	st.Kings.Set(core.ColorWhite, sq("a8"))
	if !InCheck(b, st, core.ColorWhite) {
		t.Error("stale king index hid the check")
	}

	b, st = setup(t, "4k3/8/8/8/8/8/8/r7", core.ColorWhite)
	if InCheck(b, st, core.ColorWhite) {
		t.Error("side without a king reported in check")
	}
}

func TestCastling(t *testing.T) {
	runMoveCases(t, []moveCase{
		{"kingside", "r3k2r/8/8/8/8/8/8/R3K2R", "e1", "g1", true},
		{"queenside", "r3k2r/8/8/8/8/8/8/R3K2R", "e1", "c1", true},
		{"kingside blocked", "4k3/8/8/8/8/8/8/RN2K1NR", "e1", "g1", false},
		{"queenside blocked", "4k3/8/8/8/8/8/8/RN2K1NR", "e1", "c1", false},
		{"transit attacked", "4kr2/8/8/8/8/8/8/R3K2R", "e1", "g1", false},
		{"other side unaffected", "4kr2/8/8/8/8/8/8/R3K2R", "e1", "c1", true},
		{"destination attacked", "4k1r1/8/8/8/8/8/8/R3K2R", "e1", "g1", false},
		{"king in check", "4k3/8/8/8/4r3/8/8/R3K2R", "e1", "g1", false},
		{"queenside king in check", "4k3/8/8/8/4r3/8/8/R3K2R", "e1", "c1", false},
		{"no rook", "4k3/8/8/8/8/8/8/4K3", "e1", "g1", false},
		{"three squares", "4k3/8/8/8/8/8/8/R3K2R", "e1", "b1", false},
	})

	t.Run("black", func(t *testing.T) {
		b, st := setup(t, "r3k2r/8/8/8/8/8/8/4K3", core.ColorBlack)
		if !IsLegal(b, st, sq("e8"), sq("g8")) || !IsLegal(b, st, sq("e8"), sq("c8")) {
			t.Error("black castling not legal")
		}
	})

	t.Run("rights revoked", func(t *testing.T) {
		b, st := setup(t, "r3k2r/8/8/8/8/8/8/R3K2R", core.ColorWhite)
		st.Castling = st.Castling.Without(core.ColorWhite, Kingside)
		if IsLegal(b, st, sq("e1"), sq("g1")) {
			t.Error("castled without the right")
		}
		if !IsLegal(b, st, sq("e1"), sq("c1")) {
			t.Error("revoking kingside removed queenside")
		}
	})
}

func TestPlanCastlePure(t *testing.T) {
	b, st := setup(t, "r3k2r/8/8/8/8/8/8/R3K2R", core.ColorWhite)
	before := b.Snapshot()
	stateBefore := *st

	castle, ok := PlanCastle(b, st, sq("e1"), sq("c1"))
	if !ok {
		t.Fatal("queenside castle rejected")
	}
	want := Castle{Side: Queenside, RookFrom: sq("a1"), RookTo: sq("d1")}
	if diff := cmp.Diff(want, castle); diff != "" {
		t.Errorf("PlanCastle mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, b.Snapshot()); diff != "" {
		t.Errorf("PlanCastle changed the board (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(stateBefore, *st); diff != "" {
		t.Errorf("PlanCastle changed the state (-want +got):\n%s", diff)
	}
}

func TestExecuteCastle(t *testing.T) {
	b, st := setup(t, "r3k2r/8/8/8/8/8/8/R3K2R", core.ColorWhite)

	ply, _, err := Rules{}.Execute(b, st, sq("e1"), sq("g1"))
	if err != nil {
		t.Fatalf("e1-g1: %v", err)
	}
	if ply.Castle == nil || ply.Castle.RookFrom != sq("h1") || ply.Castle.RookTo != sq("f1") {
		t.Errorf("ply.Castle = %+v, want h1 -> f1", ply.Castle)
	}
	if got := b.Placement(); got != "r3k2r/8/8/8/8/8/8/R4RK1" {
		t.Errorf("placement after castling = %q", got)
	}
	if st.Kings.Of(core.ColorWhite) != sq("g1") {
		t.Errorf("king index = %v, want g1", st.Kings.Of(core.ColorWhite))
	}
	if st.Castling != BlackKingside|BlackQueenside {
		t.Errorf("castling rights = %s, want kq", st.Castling)
	}
}

func TestCastlingRightsOnRookCapture(t *testing.T) {
	b, st := setup(t, "r3k2r/8/8/8/8/8/8/R3K2R", core.ColorWhite)
	if st.Castling != AllCastling {
		t.Fatalf("initial rights = %s, want KQkq", st.Castling)
	}

	if _, _, err := (Rules{}).Execute(b, st, sq("a1"), sq("a8")); err != nil {
		t.Fatalf("a1xa8: %v", err)
	}
	if st.Castling != WhiteKingside|BlackKingside {
		t.Errorf("rights after a1xa8 = %s, want Kk", st.Castling)
	}
}

func TestPromotion(t *testing.T) {
	tests := []struct {
		name      string
		placement string
		turn      core.Color
		from, to  string
		want      core.Piece
		check     bool
	}{
		{"white", "8/P6k/8/8/8/8/8/K7", core.ColorWhite, "a7", "a8", core.NewPiece(core.Queen, core.ColorWhite), false},
		{"black with check", "k7/8/8/8/8/8/7p/K7", core.ColorBlack, "h2", "h1", core.NewPiece(core.Queen, core.ColorBlack), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, st := setup(t, tt.placement, tt.turn)
			ply, outcome, err := Rules{}.Execute(b, st, sq(tt.from), sq(tt.to))
			if err != nil {
				t.Fatal(err)
			}
			if ply.Promotion != core.Queen {
				t.Errorf("ply.Promotion = %v, want queen", ply.Promotion)
			}
			if got, _ := b.At(sq(tt.to)); got != tt.want {
				t.Errorf("%s holds %v, want %v", tt.to, got, tt.want)
			}
			if _, ok := b.Find(core.NewPiece(core.Pawn, tt.turn)); ok {
				t.Error("promoted pawn still on the board")
			}
			if outcome.Check != tt.check || outcome.Kind != OutcomeContinue {
				t.Errorf("outcome = %+v, want continue with check=%v", outcome, tt.check)
			}
		})
	}
}

func TestFoolsMate(t *testing.T) {
	b := board.NewStandard()
	st := NewState(b, core.ColorWhite)
	rules := Rules{}

	moves := [][2]string{{"f2", "f3"}, {"e7", "e5"}, {"g2", "g4"}, {"d8", "h4"}}
	var outcome Outcome
	for i, m := range moves {
		var err error
		_, outcome, err = rules.Execute(b, &st, sq(m[0]), sq(m[1]))
		if err != nil {
			t.Fatalf("ply %d %s-%s: %v", i+1, m[0], m[1], err)
		}
		if i < len(moves)-1 && outcome.Kind != OutcomeContinue {
			t.Fatalf("ply %d ended the game: %+v", i+1, outcome)
		}
	}

	want := Outcome{Kind: OutcomeCheckmate, Winner: core.ColorBlack, Check: true}
	if diff := cmp.Diff(want, outcome); diff != "" {
		t.Errorf("final outcome mismatch (-want +got):\n%s", diff)
	}

	before := b.Snapshot()
	stateBefore := st
	if !IsCheckmate(b, &st, core.ColorWhite) {
		t.Error("IsCheckmate(white) = false")
	}
	if IsCheckmate(b, &st, core.ColorBlack) {
		t.Error("IsCheckmate(black) = true")
	}
	if diff := cmp.Diff(before, b.Snapshot()); diff != "" {
		t.Errorf("checkmate sweep changed the board (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(stateBefore, st); diff != "" {
		t.Errorf("checkmate sweep changed the state (-want +got):\n%s", diff)
	}
}

func TestCheckWithEscape(t *testing.T) {
	// Rook gives check along the back rank, the king steps up
	b, st := setup(t, "4k3/8/8/8/8/8/8/r3K3", core.ColorWhite)
	if IsCheckmate(b, st, core.ColorWhite) {
		t.Error("escapable check reported as checkmate")
	}

	// Stalemate is not checkmate
	b, st = setup(t, "7k/5Q2/6K1/8/8/8/8/8", core.ColorBlack)
	if IsCheckmate(b, st, core.ColorBlack) {
		t.Error("position without check reported as checkmate")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name      string
		placement string
		turn      core.Color
		rules     Rules
		from, to  core.Position
		wantErr   error
	}{
		{"no piece", board.StartingPlacement, core.ColorWhite, Rules{}, sq("e4"), sq("e5"), ErrNoPieceAtSource},
		{"wrong turn", board.StartingPlacement, core.ColorWhite, Rules{}, sq("e7"), sq("e5"), ErrWrongTurn},
		{"illegal", board.StartingPlacement, core.ColorWhite, Rules{}, sq("e2"), sq("e5"), ErrIllegalMove},
		{"off board", board.StartingPlacement, core.ColorWhite, Rules{}, sq("e2"), core.Pos(8, 4), ErrIllegalMove},
		{"king capture", "4k2R/8/8/8/8/8/8/4K3", core.ColorWhite, Rules{}, sq("h8"), sq("e8"), ErrIllegalMove},
		{"king capture with self-check allowed", "4k2R/8/8/8/8/8/8/4K3", core.ColorWhite, Rules{AllowSelfCheck: true}, sq("h8"), sq("e8"), ErrIllegalMove},
		{"pinned piece", "4k3/4r3/8/8/8/8/4B3/4K3", core.ColorWhite, Rules{}, sq("e2"), sq("d3"), ErrIllegalMove},
		{"pinned piece with self-check allowed", "4k3/4r3/8/8/8/8/4B3/4K3", core.ColorWhite, Rules{AllowSelfCheck: true}, sq("e2"), sq("d3"), nil},
		{"pinned piece along the pin", "4k3/4r3/8/8/8/8/4R3/4K3", core.ColorWhite, Rules{}, sq("e2"), sq("e7"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, st := setup(t, tt.placement, tt.turn)
			err := tt.rules.Validate(b, st, tt.from, tt.to)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExecuteErrorLeavesPositionUntouched(t *testing.T) {
	b, st := setup(t, "4k3/4r3/8/8/8/8/4B3/4K3", core.ColorWhite)
	before := b.Snapshot()
	stateBefore := *st

	if _, _, err := (Rules{}).Execute(b, st, sq("e2"), sq("d3")); err == nil {
		t.Fatal("pinned bishop move accepted")
	}
	if diff := cmp.Diff(before, b.Snapshot()); diff != "" {
		t.Errorf("board changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(stateBefore, *st); diff != "" {
		t.Errorf("state changed (-want +got):\n%s", diff)
	}
}

func TestApplyClocks(t *testing.T) {
	b := board.NewStandard()
	st := NewState(b, core.ColorWhite)

	Apply(b, &st, sq("g1"), sq("f3"))
	if st.HalfMove != 1 || st.FullMove != 1 || st.Turn != core.ColorBlack {
		t.Errorf("after Nf3: half=%d full=%d turn=%s", st.HalfMove, st.FullMove, st.Turn)
	}
	Apply(b, &st, sq("e7"), sq("e5"))
	if st.HalfMove != 0 || st.FullMove != 2 || st.Turn != core.ColorWhite {
		t.Errorf("after e5: half=%d full=%d turn=%s", st.HalfMove, st.FullMove, st.Turn)
	}
	if st.EnPassant == nil || *st.EnPassant != sq("e6") {
		t.Errorf("en passant target = %v, want e6", st.EnPassant)
	}
}

func TestLegalMoves(t *testing.T) {
	b := board.NewStandard()
	st := NewState(b, core.ColorWhite)

	tests := []struct {
		from string
		want []core.Position
	}{
		{"e2", []core.Position{sq("e4"), sq("e3")}},
		{"g1", []core.Position{sq("f3"), sq("h3")}},
		{"e1", nil},
		{"e4", nil},
	}
	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			got := LegalMoves(b, &st, sq(tt.from))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("LegalMoves(%s) mismatch (-want +got):\n%s", tt.from, diff)
			}
		})
	}

	// A pinned piece has no moves off the pin line
	b, pinned := setup(t, "4k3/4r3/8/8/8/8/4B3/4K3", core.ColorWhite)
	if got := LegalMoves(b, pinned, sq("e2")); len(got) != 0 {
		t.Errorf("pinned bishop moves = %v, want none", got)
	}
}

func TestCastlingString(t *testing.T) {
	tests := []struct {
		text string
		want Castling
		ok   bool
	}{
		{"KQkq", AllCastling, true},
		{"Kq", WhiteKingside | BlackQueenside, true},
		{"-", NoCastling, true},
		{"", NoCastling, false},
		{"KX", NoCastling, false},
	}
	for _, tt := range tests {
		got, ok := ParseCastling(tt.text)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseCastling(%q) = %v, %v; want %v, %v", tt.text, got, ok, tt.want, tt.ok)
		}
		if tt.ok && got.String() != tt.text {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), tt.text)
		}
	}
}

func TestKingsIgnoreInvalidColor(t *testing.T) {
	b, st := setup(t, "4k3/8/8/8/8/8/8/4K3", core.ColorWhite)
	before := st.Kings

	st.Kings.Set(0, sq("a1"))
	if st.Kings != before {
		t.Errorf("Set with zero color changed the index to %v", st.Kings)
	}
	if pos := st.Kings.Of(0); pos.Valid() {
		t.Errorf("Of(zero color) = %v, want an off-board square", pos)
	}
	if InCheck(b, st, 0) {
		t.Error("zero color reported in check")
	}
}
