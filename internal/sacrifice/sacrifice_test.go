package sacrifice

import (
	"testing"

	"github.com/chessreview/analysis-worker/internal/board"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func mkPly(t *testing.T, fenBefore, uci, fenAfter string, mover board.Color, moverCP, bestCP int, isBest bool) Ply {
	t.Helper()
	before := mustFEN(t, fenBefore)
	after := mustFEN(t, fenAfter)
	mv, err := board.ParseMove(uci, before)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", uci, err)
	}
	return Ply{
		BoardBefore: before,
		BoardAfter:  after,
		Move:        mv,
		Mover:       mover,
		MoverEvalCP: moverCP,
		BestEvalCP:  bestCP,
		IsBestMove:  isBest,
		PieceCount:  before.AllOccupied.PopCount(),
	}
}

// White's queen takes a defended pawn, black's queen recaptures, and white
// never gets the material back: a textbook capture-sacrifice.
func TestDetectQueenCaptureSacrifice(t *testing.T) {
	plies := []Ply{
		mkPly(t,
			"rnbqk3/ppp5/8/3p4/8/8/PPP5/RNBQK3 w - - 0 1", "d1d5",
			"rnbqk3/ppp5/8/3Q4/8/8/PPP5/RNB1K3 b - - 0 1",
			board.White, 100, 50, true),
		mkPly(t,
			"rnbqk3/ppp5/8/3Q4/8/8/PPP5/RNB1K3 b - - 0 1", "d8d5",
			"rnb1k3/ppp5/8/3q4/8/8/PPP5/RNB1K3 w - - 0 2",
			board.Black, -100, -50, true),
		mkPly(t,
			"rnb1k3/ppp5/8/3q4/8/8/PPP5/RNB1K3 w - - 0 2", "a2a3",
			"rnb1k3/ppp5/8/3q4/8/P7/1PP5/RNB1K3 b - - 0 2",
			board.White, 100, 100, true),
	}

	found := Detect(plies, board.White)
	if len(found) != 1 {
		t.Fatalf("got %d candidates, want 1: %+v", len(found), found)
	}
	if found[0].Piece != board.Queen || found[0].Kind != "capture" || found[0].PlyIndex != 0 {
		t.Errorf("candidate = %+v, want queen capture at ply 0", found[0])
	}
}

// Queen takes queen is a trade, not a sacrifice, even when recaptured.
func TestDetectRejectsQueenTrade(t *testing.T) {
	plies := []Ply{
		mkPly(t,
			"rnb1k3/pp6/2p5/3q4/8/8/PPP5/RNBQK3 w - - 0 1", "d1d5",
			"rnb1k3/pp6/2p5/3Q4/8/8/PPP5/RNB1K3 b - - 0 1",
			board.White, 0, 0, true),
		mkPly(t,
			"rnb1k3/pp6/2p5/3Q4/8/8/PPP5/RNB1K3 b - - 0 1", "c6d5",
			"rnb1k3/pp6/8/3p4/8/8/PPP5/RNB1K3 w - - 0 2",
			board.Black, 0, 0, true),
		mkPly(t,
			"rnb1k3/pp6/8/3p4/8/8/PPP5/RNB1K3 w - - 0 2", "a2a3",
			"rnb1k3/pp6/8/3p4/8/P7/1PP5/RNB1K3 b - - 0 2",
			board.White, 0, 0, true),
	}

	if found := Detect(plies, board.White); len(found) != 0 {
		t.Errorf("queen trade flagged as sacrifice: %+v", found)
	}
}

// A mate-losing sacrifice is rejected by the evaluation filter even when the
// state machine accepts the shape.
func TestFilterRejectsMateLostSacrifice(t *testing.T) {
	plies := []Ply{
		mkPly(t,
			"rnbqk3/ppp5/8/3p4/8/8/PPP5/RNBQK3 w - - 0 1", "d1d5",
			"rnbqk3/ppp5/8/3Q4/8/8/PPP5/RNB1K3 b - - 0 1",
			board.White, 200, 9990, false), // mate was on the board, the sac lost it
		mkPly(t,
			"rnbqk3/ppp5/8/3Q4/8/8/PPP5/RNB1K3 b - - 0 1", "d8d5",
			"rnb1k3/ppp5/8/3q4/8/8/PPP5/RNB1K3 w - - 0 2",
			board.Black, -200, -200, true),
		mkPly(t,
			"rnb1k3/ppp5/8/3q4/8/8/PPP5/RNB1K3 w - - 0 2", "a2a3",
			"rnb1k3/ppp5/8/3q4/8/P7/1PP5/RNB1K3 b - - 0 2",
			board.White, 200, 200, true),
	}

	if found := Detect(plies, board.White); len(found) != 0 {
		t.Errorf("mate-losing sacrifice passed the filter: %+v", found)
	}
}

func TestClassifyFinalMateSmothered(t *testing.T) {
	pos := mustFEN(t, "r5rk/1p3Npp/p7/3p4/1P6/P4N2/2q3PP/4R1K1 b - - 1 31")
	from, _ := board.ParseSquare("g5")
	to, _ := board.ParseSquare("f7")
	lastMove := board.NewMove(from, to)

	if got := ClassifyFinalMate(pos, lastMove, board.White); got != Smothered {
		t.Errorf("ClassifyFinalMate(white delivered) = %q, want %q", got, Smothered)
	}
	if got := ClassifyFinalMate(pos, lastMove, board.Black); got != NoMate {
		t.Errorf("ClassifyFinalMate(black attributed) = %q, want %q", got, NoMate)
	}
}

func TestClassifyFinalMateNotMate(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	from, _ := board.ParseSquare("h1")
	to, _ := board.ParseSquare("h2")
	if got := ClassifyFinalMate(pos, board.NewMove(from, to), board.Black); got != NoMate {
		t.Errorf("ClassifyFinalMate on non-mate = %q, want %q", got, NoMate)
	}
}
