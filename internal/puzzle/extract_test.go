package puzzle

import (
	"math"
	"testing"

	"github.com/chessreview/analysis-worker/internal/board"
	"github.com/chessreview/analysis-worker/internal/engineclient"
)

// stubEngine replays a canned sequence of multipv responses, one per call.
type stubEngine struct {
	responses [][]engineclient.PvLine
	calls     int
}

func (s *stubEngine) EvaluateMultiPV(fen string, nodes, k int) ([]engineclient.PvLine, error) {
	if s.calls >= len(s.responses) {
		return nil, nil
	}
	r := s.responses[s.calls]
	s.calls++
	return r, nil
}

func TestWinChancesBounds(t *testing.T) {
	if wc := WinChances(0); math.Abs(wc) > 1e-9 {
		t.Errorf("WinChances(0) = %v, want 0", wc)
	}
	// At +/-10000 the logistic saturates to exactly +/-1 in float64.
	if wc := WinChances(10000); wc != 1 {
		t.Errorf("WinChances(10000) = %v, want 1", wc)
	}
	if wc := WinChances(-10000); wc != -1 {
		t.Errorf("WinChances(-10000) = %v, want -1", wc)
	}
}

func TestExtractRejectsShortLine(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/4K3/4Q3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	// No legal continuation lines offered -> extension stops immediately,
	// mainline length stays at 1 (just the blunder), rejected.
	eng := &stubEngine{responses: nil}
	blunderMove, _ := board.ParseMove("e2e1", pos)

	_, ok, err := Extract(eng, "game1", 4, blunderMove, pos, pos, board.White, 100000)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ok {
		t.Errorf("expected puzzle to be rejected for short mainline")
	}
}

func TestPvScoreMateConversion(t *testing.T) {
	score, isMate := pvScore(engineclient.PvLine{HasMate: true, MateInPlies: 2})
	if !isMate || score != 10000-20 {
		t.Errorf("pvScore(mate=2) = (%d,%v), want (%d,true)", score, isMate, 10000-20)
	}
	score, isMate = pvScore(engineclient.PvLine{HasCP: true, Centipawns: 55})
	if isMate || score != 55 {
		t.Errorf("pvScore(cp=55) = (%d,%v), want (55,false)", score, isMate)
	}
}

func TestWinChancesCalibration(t *testing.T) {
	if wc := WinChances(250); math.Abs(wc-0.462) > 0.01 {
		t.Errorf("WinChances(250) = %v, want ~0.462", wc)
	}
	if wc := evalWinChances(engineclient.PvLine{HasMate: true, MateInPlies: 3}); wc != 1.0 {
		t.Errorf("evalWinChances(mate for mover) = %v, want 1.0", wc)
	}
	if wc := evalWinChances(engineclient.PvLine{HasMate: true, MateInPlies: -3}); wc != -1.0 {
		t.Errorf("evalWinChances(mate against mover) = %v, want -1.0", wc)
	}
}

// fenStubEngine answers by exact FEN, so a probe of any position the test
// did not anticipate comes back empty.
type fenStubEngine struct {
	responses map[string][]engineclient.PvLine
}

func (s *fenStubEngine) EvaluateMultiPV(fen string, nodes, k int) ([]engineclient.PvLine, error) {
	return s.responses[fen], nil
}

func TestDetectZugzwangEvaluatesOpponentPosition(t *testing.T) {
	pos0, err := board.ParseFEN("8/8/8/8/5k2/8/5P2/5K2 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	mv0, err := board.ParseMove("f4f5", pos0)
	if err != nil {
		t.Fatal(err)
	}
	after0 := pos0.Copy()
	after0.MakeMove(mv0)
	mv1, err := board.ParseMove("f2f3", after0)
	if err != nil {
		t.Fatal(err)
	}
	after1 := after0.Copy()
	after1.MakeMove(mv1)

	p := &Puzzle{
		ID: "g_m0",
		Mainline: []Node{
			{BoardBefore: pos0, BoardAfter: after0, Move: mv0, PlyIndex: 0},
			{BoardBefore: after0, BoardAfter: after1, Move: mv1, PlyIndex: 1},
		},
		SolverColor: board.White,
		Centipawns:  300,
	}

	// The probe must evaluate the solver move's RESULTING position (the
	// opponent to move) and its null-move flip; any other board draws an
	// empty response and cannot trigger the detector.
	realFEN := after1.ToFEN()
	nullFEN := nullMoveFEN(after1)

	eng := &fenStubEngine{responses: map[string][]engineclient.PvLine{
		// Opponent to move: badly lost when forced to move.
		realFEN: {{PV: []string{"f5f6"}, HasCP: true, Centipawns: -500}},
		// After the pass, the solver (now to move) stands slightly worse:
		// the opponent would be fine if they could stand still.
		nullFEN: {{PV: []string{"f3f4"}, HasCP: true, Centipawns: -100}},
	}}

	zz, err := DetectZugzwang(eng, p, 100000)
	if err != nil {
		t.Fatalf("DetectZugzwang: %v", err)
	}
	if !zz {
		t.Error("expected zugzwang when the opponent collapses only because they must move")
	}

	// Opponent comfortable even when forced to move: not zugzwang.
	eng.responses[realFEN] = []engineclient.PvLine{{PV: []string{"f5f6"}, HasCP: true, Centipawns: 50}}
	zz, err = DetectZugzwang(eng, p, 100000)
	if err != nil {
		t.Fatalf("DetectZugzwang: %v", err)
	}
	if zz {
		t.Error("did not expect zugzwang when the opponent is fine moving")
	}
}
